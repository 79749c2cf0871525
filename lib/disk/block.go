package disk

import "fmt"

// PageID. identitas page di buffer pool: file descriptor (index file table) + nomor page di file tsb.
type PageID struct {
	FileID  int
	PageNum int32
}

func NewPageID(fileID int, pageNum int32) PageID {
	return PageID{
		FileID:  fileID,
		PageNum: pageNum,
	}
}

func (p PageID) String() string {
	return fmt.Sprintf("(%d,%d)", p.FileID, p.PageNum)
}
