package index

// PageStore . paged file layer yang dipakai index. diimplementasikan page.Store.
type PageStore interface {
	CreateFile(name string) error
	DestroyFile(name string) error
	OpenFile(name string) (int, error)
	CloseFile(fd int) error
	Exists(name string) bool
	AllocatePage(fd int) (int32, []byte, error)
	GetPage(fd int, pageNum int32) ([]byte, error)
	UnpinPage(fd int, pageNum int32, dirty bool) error
	Reserved(fd int) ([]byte, error)
	MarkHeaderDirty(fd int) error
	PageSize() int
}
