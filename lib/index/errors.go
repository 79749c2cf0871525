package index

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrInvalidAttrType      = fmt.Errorf("%w: attribute type", ErrInvalidArgument)
	ErrInvalidAttrLength    = fmt.Errorf("%w: attribute length", ErrInvalidArgument)
	ErrNotFound             = errors.New("not found")
	ErrKeyNotFound          = fmt.Errorf("key %w", ErrNotFound)
	ErrRecordNotFound       = fmt.Errorf("record %w", ErrNotFound)
	ErrDuplicateRecordID    = errors.New("duplicate record id")
	ErrTooManyRecordsPerKey = errors.New("too many records for one key")
	ErrIndexTableFull       = errors.New("index table full")
	ErrScanTableFull        = errors.New("scan table full")
	ErrNotOpen              = errors.New("index or scan not open")
	ErrScanOpen             = errors.New("index has open scans")
	ErrCorrupt              = errors.New("index file corrupt")
	ErrEOF                  = errors.New("end of scan")
	ErrPF                   = errors.New("paged file layer failure")
)

func pfError(err error) error {
	return fmt.Errorf("%w: %w", ErrPF, err)
}
