package lib

const (
	DEFAULT_PAGE_SIZE        = 4096
	DEFAULT_BUFFER_POOL_SIZE = 40
	FILE_TABLE_SIZE          = 20
	INDEX_TABLE_SIZE         = 20
	MAX_INDEX_SCANS          = 20

	DB_DIR = "minirel_db"

	// smallest page that can still hold the AM header and a node with two keys.
	MIN_PAGE_SIZE = 64
)
