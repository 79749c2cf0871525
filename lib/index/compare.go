package index

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	"github.com/lintang-b-s/minirel/types"
)

const maxStringLength = 255

type comparator func(a, b []byte) int

// ValidateAttr. hanya {int,4}, {real,4} dan {string,1..255} yang valid.
func ValidateAttr(attrType types.AttrType, attrLength int) error {
	switch attrType {
	case types.IntType, types.RealType:
		if attrLength != 4 {
			return fmt.Errorf("%w: %s needs 4 bytes, got %d", ErrInvalidAttrLength, attrType, attrLength)
		}
	case types.StringType:
		if attrLength < 1 || attrLength > maxStringLength {
			return fmt.Errorf("%w: string length %d not in [1,%d]", ErrInvalidAttrLength, attrLength, maxStringLength)
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidAttrType, byte(attrType))
	}
	return nil
}

func newComparator(attrType types.AttrType, attrLength int) (comparator, error) {
	if err := ValidateAttr(attrType, attrLength); err != nil {
		return nil, err
	}
	switch attrType {
	case types.IntType:
		return func(a, b []byte) int {
			x, y := int32(binary.LittleEndian.Uint32(a)), int32(binary.LittleEndian.Uint32(b))
			return cmpOrdered(x, y)
		}, nil
	case types.RealType:
		return func(a, b []byte) int {
			x := math.Float32frombits(binary.LittleEndian.Uint32(a))
			y := math.Float32frombits(binary.LittleEndian.Uint32(b))
			return cmpOrdered(x, y)
		}, nil
	}
	return func(a, b []byte) int {
		return bytes.Compare(a[:attrLength], b[:attrLength])
	}, nil
}

func cmpOrdered[T int32 | float32](x, y T) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

// Compare. -1, 0, 1 kalau a <, ==, > b. a & b minimal attrLength bytes.
func Compare(a, b []byte, attrType types.AttrType, attrLength int) (int, error) {
	cmp, err := newComparator(attrType, attrLength)
	if err != nil {
		return 0, err
	}
	if len(a) < attrLength || len(b) < attrLength {
		return 0, fmt.Errorf("%w: key shorter than %d bytes", ErrInvalidArgument, attrLength)
	}
	return cmp(a, b), nil
}

func IntKey(v int32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, uint32(v))
	return b
}

func RealKey(v float32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, math.Float32bits(v))
	return b
}

// StringKey. s dipotong atau di-pad dengan nol sampai length bytes.
func StringKey(s string, length int) []byte {
	b := make([]byte, length)
	copy(b, s)
	return b
}

// FormatKey. key sebagai teks untuk output debug. string tanpa padding nol.
func FormatKey(key []byte, attrType types.AttrType) string {
	switch attrType {
	case types.IntType:
		return strconv.Itoa(int(int32(binary.LittleEndian.Uint32(key))))
	case types.RealType:
		return strconv.FormatFloat(float64(math.Float32frombits(binary.LittleEndian.Uint32(key))), 'g', -1, 32)
	}
	return strconv.Quote(string(bytes.TrimRight(key, "\x00")))
}
