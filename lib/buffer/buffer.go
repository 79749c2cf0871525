package buffer

import "github.com/lintang-b-s/minirel/lib/disk"

// PageFile. file tempat page disimpan, diimplementasi disk.DiskManager.
type PageFile interface {
	ReadPage(pageNum int32, buf []byte) error
	WritePage(pageNum int32, buf []byte) error
}

// Request. page yang diminta + file OS pemiliknya.
type Request struct {
	ID   disk.PageID
	File PageFile
}

func NewRequest(fileID int, pageNum int32, file PageFile) Request {
	return Request{ID: disk.NewPageID(fileID, pageNum), File: file}
}

// Buffer . satu frame buffer pool. menyimpan isi page selama resident; pins > 0 berarti frame tidak boleh di evict / dipakai ulang.
type Buffer struct {
	id       disk.PageID
	file     PageFile
	contents []byte
	pins     int
	isDirty  bool // page diupdate, harus diwrite ke disk sebelum frame dipakai page lain
	resident bool
}

func NewBuffer(pageSize int) *Buffer {
	return &Buffer{contents: make([]byte, pageSize)}
}

// assign. pasang identitas page baru ke frame, pin = 1.
func (buf *Buffer) assign(req Request) {
	buf.id = req.ID
	buf.file = req.File
	buf.pins = 1
	buf.isDirty = false
	buf.resident = true
}

// read. read page dari disk ke buf.contents.
func (buf *Buffer) read() error {
	return buf.file.ReadPage(buf.id.PageNum, buf.contents)
}

// flush. write isi buffer ke disk.
func (buf *Buffer) flush() error {
	return buf.file.WritePage(buf.id.PageNum, buf.contents)
}

// reset. kosongkan frame & zero isinya sebelum dikembalikan ke free list.
func (buf *Buffer) reset() {
	clear(buf.contents)
	buf.id = disk.PageID{}
	buf.file = nil
	buf.pins = 0
	buf.isDirty = false
	buf.resident = false
}

func (buf *Buffer) isPinned() bool {
	return buf.pins > 0
}
