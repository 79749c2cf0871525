package disk

import (
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	ErrFileExists = errors.New("file already exists")
	ErrShortRead  = errors.New("short read")
	ErrShortWrite = errors.New("short write")
)

// HeaderSize. file header = numPages (int32) + reserved region sebesar satu page.
func HeaderSize(pageSize int) int {
	return 4 + pageSize
}

// PageOffset. offset byte page ke pageNum di file.
func PageOffset(pageSize int, pageNum int32) int64 {
	return int64(HeaderSize(pageSize)) + int64(pageSize)*int64(pageNum)
}

// DiskManager. pegang satu file OS yang sudah dibuka dan baca/tulis header & page pada offset tetap.
type DiskManager struct {
	path     string
	pageSize int
	file     *os.File
}

// CreateFile. buat file baru dengan header kosong (numPages = 0). gagal kalau file sudah ada.
func CreateFile(path string, pageSize int) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrFileExists, path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}

	hdr := make([]byte, HeaderSize(pageSize))
	n, err := f.WriteAt(hdr, 0)
	if err == nil && n != len(hdr) {
		err = ErrShortWrite
	}
	if err != nil {
		f.Close()
		return fmt.Errorf("write header of %s: %w", path, err)
	}
	return f.Close()
}

func OpenDiskManager(path string, pageSize int) (*DiskManager, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	return &DiskManager{
		path:     path,
		pageSize: pageSize,
		file:     f,
	}, nil
}

// ReadHeader. baca header file (HeaderSize bytes) ke buf.
func (dm *DiskManager) ReadHeader(buf []byte) error {
	return dm.readAt(buf[:HeaderSize(dm.pageSize)], 0)
}

func (dm *DiskManager) WriteHeader(buf []byte) error {
	return dm.writeAt(buf[:HeaderSize(dm.pageSize)], 0)
}

// ReadPage. membaca satu page dari disk ke buf.
func (dm *DiskManager) ReadPage(pageNum int32, buf []byte) error {
	return dm.readAt(buf[:dm.pageSize], PageOffset(dm.pageSize, pageNum))
}

// WritePage. menulis satu page ke disk.
func (dm *DiskManager) WritePage(pageNum int32, buf []byte) error {
	return dm.writeAt(buf[:dm.pageSize], PageOffset(dm.pageSize, pageNum))
}

func (dm *DiskManager) readAt(buf []byte, off int64) error {
	n, err := dm.file.ReadAt(buf, off)
	if n == len(buf) {
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		err = ErrShortRead
	}
	return fmt.Errorf("read %s at %d: %w", dm.path, off, err)
}

func (dm *DiskManager) writeAt(buf []byte, off int64) error {
	n, err := dm.file.WriteAt(buf, off)
	if err == nil && n != len(buf) {
		err = ErrShortWrite
	}
	if err != nil {
		return fmt.Errorf("write %s at %d: %w", dm.path, off, err)
	}
	return nil
}

func (dm *DiskManager) Path() string {
	return dm.path
}

func (dm *DiskManager) PageSize() int {
	return dm.pageSize
}

func (dm *DiskManager) Stat() (os.FileInfo, error) {
	return dm.file.Stat()
}

func (dm *DiskManager) Close() error {
	return dm.file.Close()
}
