package page

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/lintang-b-s/minirel/lib"
	"github.com/lintang-b-s/minirel/lib/buffer"
	"github.com/lintang-b-s/minirel/lib/disk"
)

// fileEntry. satu entry file table: file yang sedang dibuka + header nya di memori.
type fileEntry struct {
	valid      bool
	path       string
	dm         *disk.DiskManager
	hdr        fileHeader
	hdrChanged bool // header diubah sejak dibuka, diwrite balik saat close
}

// Store . paged file layer. buka/tutup file, alokasi page baru, dan akses page lewat buffer pool.
// file descriptor yang dikembalikan adalah index file table.
type Store struct {
	pageSize int
	dir      string
	pool     *buffer.BufferPool
	files    []fileEntry
}

func NewStore(opts *lib.Options, pool *buffer.BufferPool) (*Store, error) {
	if pool.PageSize() != opts.PageSize {
		return nil, fmt.Errorf("%w: pool %d, store %d", ErrPageSize, pool.PageSize(), opts.PageSize)
	}
	return &Store{
		pageSize: opts.PageSize,
		dir:      opts.DBDir,
		pool:     pool,
		files:    make([]fileEntry, opts.FileTableSize),
	}, nil
}

func (s *Store) PageSize() int {
	return s.pageSize
}

func (s *Store) Pool() *buffer.BufferPool {
	return s.pool
}

func (s *Store) path(name string) string {
	return lib.DBPath(s.dir, name)
}

// CreateFile. buat file baru dengan header kosong. gagal kalau file sudah ada.
func (s *Store) CreateFile(name string) error {
	path := s.path(name)
	if err := disk.CreateFile(path, s.pageSize); err != nil {
		if errors.Is(err, disk.ErrFileExists) {
			return fmt.Errorf("create %s: %w", path, ErrFileExists)
		}
		return fmt.Errorf("create %s: %w: %w", path, ErrIO, err)
	}
	slog.Debug("page: create file", "path", path)
	return nil
}

// DestroyFile. hapus file. gagal kalau file masih dibuka atau tidak ada.
func (s *Store) DestroyFile(name string) error {
	path := s.path(name)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("destroy %s: %w: %w", path, ErrIO, err)
	}
	for i := range s.files {
		if s.files[i].valid && s.files[i].path == path {
			return fmt.Errorf("destroy %s: %w", path, ErrFileOpen)
		}
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("destroy %s: %w: %w", path, ErrIO, err)
	}
	slog.Debug("page: destroy file", "path", path)
	return nil
}

// OpenFile. buka file & baca header nya ke entry file table yang kosong. return file descriptor.
func (s *Store) OpenFile(name string) (int, error) {
	path := s.path(name)
	free := -1
	for i := range s.files {
		if s.files[i].valid && s.files[i].path == path {
			return -1, fmt.Errorf("open %s: %w", path, ErrAlreadyOpen)
		}
		if !s.files[i].valid && free < 0 {
			free = i
		}
	}
	if free < 0 {
		return -1, fmt.Errorf("open %s: %w", path, ErrFileTableFull)
	}

	dm, err := disk.OpenDiskManager(path, s.pageSize)
	if err != nil {
		return -1, fmt.Errorf("open %s: %w: %w", path, ErrIO, err)
	}
	hdr := newFileHeader(s.pageSize)
	if err := dm.ReadHeader(hdr.Contents()); err != nil {
		dm.Close()
		return -1, fmt.Errorf("open %s: %w: %w", path, ErrIO, err)
	}

	s.files[free] = fileEntry{
		valid: true,
		path:  path,
		dm:    dm,
		hdr:   hdr,
	}
	slog.Debug("page: open file", "path", path, "fd", free, "pages", hdr.numPages())
	return free, nil
}

/*
CloseFile. release semua page file ini dari buffer pool (dirty page diwrite ke disk),
write header kalau berubah, lalu invalidate entry file table.
kalau masih ada page yang dipin, close gagal dan entry tidak berubah.
*/
func (s *Store) CloseFile(fd int) error {
	f, err := s.entry(fd)
	if err != nil {
		return fmt.Errorf("close: %w", err)
	}

	if err := s.pool.FlushFile(fd); err != nil {
		return fmt.Errorf("close %s: %w: %w", f.path, ErrBuffer, err)
	}

	if f.hdrChanged {
		if err := f.dm.WriteHeader(f.hdr.Contents()); err != nil {
			return fmt.Errorf("close %s: %w: %w", f.path, ErrIO, err)
		}
		f.hdrChanged = false
	}
	if err := f.dm.Close(); err != nil {
		return fmt.Errorf("close %s: %w: %w", f.path, ErrIO, err)
	}

	slog.Debug("page: close file", "path", f.path, "fd", fd)
	*f = fileEntry{}
	return nil
}

/*
AllocatePage. append page baru di akhir file. nomor page = numPages di header.
page dikembalikan dalam keadaan pinned & dirty; numPages di header +1 (baru diwrite ke disk saat close).
*/
func (s *Store) AllocatePage(fd int) (int32, []byte, error) {
	f, err := s.entry(fd)
	if err != nil {
		return -1, nil, fmt.Errorf("allocate page: %w", err)
	}

	pageNum := f.hdr.numPages()
	req := buffer.NewRequest(fd, pageNum, f.dm)
	buf, err := s.pool.Allocate(req)
	if err != nil {
		return -1, nil, fmt.Errorf("allocate page %d of %s: %w: %w", pageNum, f.path, ErrBuffer, err)
	}
	if err := s.pool.Touch(req.ID); err != nil {
		return -1, nil, fmt.Errorf("allocate page %d of %s: %w: %w", pageNum, f.path, ErrBuffer, err)
	}

	f.hdr.setNumPages(pageNum + 1)
	f.hdrChanged = true
	return pageNum, buf, nil
}

// GetPage. fetch page pageNum (pinned). pageNum == numPages -> ErrEOF.
func (s *Store) GetPage(fd int, pageNum int32) ([]byte, error) {
	f, err := s.entry(fd)
	if err != nil {
		return nil, fmt.Errorf("get page: %w", err)
	}
	if err := f.checkPage(pageNum, true); err != nil {
		return nil, err
	}

	buf, err := s.pool.Fetch(buffer.NewRequest(fd, pageNum, f.dm))
	if err != nil {
		return nil, fmt.Errorf("get page %d of %s: %w: %w", pageNum, f.path, ErrBuffer, err)
	}
	return buf, nil
}

// GetFirstPage. sama dengan GetPage(fd, 0); file kosong -> ErrEOF.
func (s *Store) GetFirstPage(fd int) (int32, []byte, error) {
	return s.GetNextPage(fd, -1)
}

// GetNextPage. page setelah pageNum, buat sequential scan tanpa tau layout file.
func (s *Store) GetNextPage(fd int, pageNum int32) (int32, []byte, error) {
	buf, err := s.GetPage(fd, pageNum+1)
	if err != nil {
		return -1, nil, err
	}
	return pageNum + 1, buf, nil
}

// UnpinPage. pageNum == numPages di sini invalid, bukan EOF.
func (s *Store) UnpinPage(fd int, pageNum int32, dirty bool) error {
	f, err := s.entry(fd)
	if err != nil {
		return fmt.Errorf("unpin page: %w", err)
	}
	if err := f.checkPage(pageNum, false); err != nil {
		return err
	}
	if err := s.pool.Unpin(disk.NewPageID(fd, pageNum), dirty); err != nil {
		return fmt.Errorf("unpin page %d of %s: %w: %w", pageNum, f.path, ErrBuffer, err)
	}
	return nil
}

func (s *Store) MarkDirty(fd int, pageNum int32) error {
	f, err := s.entry(fd)
	if err != nil {
		return fmt.Errorf("mark dirty: %w", err)
	}
	if err := f.checkPage(pageNum, false); err != nil {
		return err
	}
	if err := s.pool.Touch(disk.NewPageID(fd, pageNum)); err != nil {
		return fmt.Errorf("mark dirty page %d of %s: %w: %w", pageNum, f.path, ErrBuffer, err)
	}
	return nil
}

// NumPages. jumlah page file menurut header di memori.
func (s *Store) NumPages(fd int) (int32, error) {
	f, err := s.entry(fd)
	if err != nil {
		return -1, err
	}
	return f.hdr.numPages(), nil
}

// Reserved. reserved region header file. perubahan harus diikuti MarkHeaderDirty.
func (s *Store) Reserved(fd int) ([]byte, error) {
	f, err := s.entry(fd)
	if err != nil {
		return nil, err
	}
	return f.hdr.reserved(), nil
}

func (s *Store) MarkHeaderDirty(fd int) error {
	f, err := s.entry(fd)
	if err != nil {
		return err
	}
	f.hdrChanged = true
	return nil
}

// Exists. true kalau file ada di disk.
func (s *Store) Exists(name string) bool {
	_, err := os.Stat(s.path(name))
	return err == nil
}

// IsOpen. true kalau file dengan nama tsb ada di file table.
func (s *Store) IsOpen(name string) bool {
	path := s.path(name)
	for i := range s.files {
		if s.files[i].valid && s.files[i].path == path {
			return true
		}
	}
	return false
}

func (s *Store) entry(fd int) (*fileEntry, error) {
	if fd < 0 || fd >= len(s.files) || !s.files[fd].valid {
		return nil, fmt.Errorf("fd %d: %w", fd, ErrNotOpen)
	}
	return &s.files[fd], nil
}

func (f *fileEntry) checkPage(pageNum int32, allowEOF bool) error {
	numPages := f.hdr.numPages()
	if allowEOF && pageNum == numPages {
		return fmt.Errorf("page %d of %s: %w", pageNum, f.path, ErrEOF)
	}
	if pageNum < 0 || pageNum >= numPages {
		return fmt.Errorf("page %d of %s (%d pages): %w", pageNum, f.path, numPages, ErrInvalidPage)
	}
	return nil
}
