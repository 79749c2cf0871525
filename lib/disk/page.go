package disk

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/lintang-b-s/minirel/types"
)

var ErrOutOfBound = errors.New("page access out of bound")

// Page . view di atas byte array satu page (ukuran pageSize) yang dipegang buffer pool.
// semua offset dihitung manual oleh layer di atasnya.
type Page struct {
	b []byte
}

func NewPage(pageSize int) *Page {
	return &Page{make([]byte, pageSize)}
}

func NewPageFromByteSlice(b []byte) *Page {
	return &Page{b}
}

func (p *Page) Size() int {
	return len(p.b)
}

func (p *Page) inBound(offset, n int) bool {
	return offset >= 0 && offset+n <= len(p.b)
}

func (p *Page) GetInt(offset int) int32 {
	return int32(binary.LittleEndian.Uint32(p.b[offset:]))
}

// PutInt. set int ke byte array page di posisi = offset.
func (p *Page) PutInt(offset int, val int32) {
	binary.LittleEndian.PutUint32(p.b[offset:], uint32(val))
}

func (p *Page) GetFloat(offset int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(p.b[offset:]))
}

func (p *Page) PutFloat(offset int, val float32) {
	binary.LittleEndian.PutUint32(p.b[offset:], math.Float32bits(val))
}

func (p *Page) GetByte(offset int) byte {
	return p.b[offset]
}

func (p *Page) PutByte(offset int, val byte) {
	p.b[offset] = val
}

func (p *Page) PutBool(offset int, val bool) {
	var bitSetVar byte
	if val {
		bitSetVar = 1
	}
	p.b[offset] = bitSetVar
}

func (p *Page) GetBool(offset int) bool {
	return p.b[offset] == byte(1)
}

func (p *Page) GetRecordID(offset int) types.RecordID {
	return types.DecodeRecordID(p.b[offset:])
}

func (p *Page) PutRecordID(offset int, rid types.RecordID) {
	rid.Encode(p.b[offset:])
}

// GetBytes. copy n bytes mulai dari offset.
func (p *Page) GetBytes(offset, n int) ([]byte, error) {
	if !p.inBound(offset, n) {
		return nil, ErrOutOfBound
	}
	b := make([]byte, n)
	copy(b, p.b[offset:offset+n])
	return b, nil
}

// Slice. return sub slice tanpa copy, dipakai buat compare key in place.
func (p *Page) Slice(offset, n int) ([]byte, error) {
	if !p.inBound(offset, n) {
		return nil, ErrOutOfBound
	}
	return p.b[offset : offset+n], nil
}

// PutBytes. set byte array ke byte array page di posisi = offset.
func (p *Page) PutBytes(offset int, b []byte) error {
	if !p.inBound(offset, len(b)) {
		return ErrOutOfBound
	}
	copy(p.b[offset:], b)
	return nil
}

// Zero. reset range [offset, offset+n) jadi 0.
func (p *Page) Zero(offset, n int) {
	clear(p.b[offset : offset+n])
}

func (p *Page) Contents() []byte {
	return p.b
}
