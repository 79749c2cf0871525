package lib

import (
	"fmt"
	"os"
	"strconv"
)

type Options struct {
	PageSize       int
	BufferPoolSize int
	FileTableSize  int
	IndexTableSize int
	MaxIndexScans  int
	DBDir          string
}

func DefaultOptions() *Options {
	return &Options{
		PageSize:       DEFAULT_PAGE_SIZE,
		BufferPoolSize: DEFAULT_BUFFER_POOL_SIZE,
		FileTableSize:  FILE_TABLE_SIZE,
		IndexTableSize: INDEX_TABLE_SIZE,
		MaxIndexScans:  MAX_INDEX_SCANS,
		DBDir:          DB_DIR,
	}
}

// OptionsFromEnv. default options overlaid with MINIREL_* environment variables.
func OptionsFromEnv() (*Options, error) {
	opts := DefaultOptions()

	ints := []struct {
		name string
		dst  *int
	}{
		{"MINIREL_PAGE_SIZE", &opts.PageSize},
		{"MINIREL_BUFFER_POOL_SIZE", &opts.BufferPoolSize},
		{"MINIREL_FILE_TABLE_SIZE", &opts.FileTableSize},
		{"MINIREL_INDEX_TABLE_SIZE", &opts.IndexTableSize},
		{"MINIREL_MAX_INDEX_SCANS", &opts.MaxIndexScans},
	}
	for _, v := range ints {
		s := os.Getenv(v.name)
		if s == "" {
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", v.name, s, err)
		}
		*v.dst = n
	}
	if dir := os.Getenv("MINIREL_DB_DIR"); dir != "" {
		opts.DBDir = dir
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

func (o *Options) Validate() error {
	if o.PageSize < MIN_PAGE_SIZE {
		return fmt.Errorf("page size %d below minimum %d", o.PageSize, MIN_PAGE_SIZE)
	}
	if o.BufferPoolSize <= 0 {
		return fmt.Errorf("buffer pool size must be positive, got %d", o.BufferPoolSize)
	}
	if o.FileTableSize <= 0 || o.IndexTableSize <= 0 || o.MaxIndexScans <= 0 {
		return fmt.Errorf("table sizes must be positive")
	}
	return nil
}
