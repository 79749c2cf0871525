package page

import "github.com/lintang-b-s/minirel/lib/disk"

const numPagesOffset = 0

// fileHeader . header file = numPages + reserved region sebesar satu page yang dipakai layer di atas (AM header).
type fileHeader struct {
	*disk.Page
}

func newFileHeader(pageSize int) fileHeader {
	return fileHeader{disk.NewPage(disk.HeaderSize(pageSize))}
}

func (h fileHeader) numPages() int32 {
	return h.GetInt(numPagesOffset)
}

func (h fileHeader) setNumPages(n int32) {
	h.PutInt(numPagesOffset, n)
}

// reserved. region reserved header, di-share (bukan copy) ke caller.
func (h fileHeader) reserved() []byte {
	return h.Contents()[4:]
}
