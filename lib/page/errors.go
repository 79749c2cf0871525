package page

import "errors"

var (
	ErrFileExists    = errors.New("file already exists")
	ErrFileOpen      = errors.New("file is open")
	ErrAlreadyOpen   = errors.New("file already open")
	ErrFileTableFull = errors.New("file table full")
	ErrNotOpen       = errors.New("file not open")
	ErrInvalidPage   = errors.New("invalid page number")
	ErrEOF           = errors.New("end of file")
	ErrIO            = errors.New("page file io error")
	ErrBuffer        = errors.New("buffer pool error")
	ErrPageSize      = errors.New("page size mismatch")
)
