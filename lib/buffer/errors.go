package buffer

import "errors"

var (
	ErrAlreadyCached = errors.New("page already in buffer pool")
	ErrPoolExhausted = errors.New("all pages are pinned")
	ErrNotResident   = errors.New("page not in buffer pool")
	ErrNotPinned     = errors.New("page not pinned")
	ErrStillPinned   = errors.New("page still pinned")
	ErrIO            = errors.New("buffer io error")
)
