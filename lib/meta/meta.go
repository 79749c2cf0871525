package meta

import (
	"errors"
	"fmt"

	"github.com/lintang-b-s/minirel/lib/disk"
	"github.com/lintang-b-s/minirel/types"
)

const (
	indexNoOffset    = 0
	attrTypeOffset   = 4
	attrLengthOffset = 5
	maxKeysOffset    = 9
	numNodesOffset   = 13
	numRecsOffset    = 17
	isUniqueOffset   = 21
	rootOffset       = 22

	// MetaSize. ukuran AM header di reserved region file header.
	MetaSize = rootOffset + types.RecordIDSize
)

var ErrMetaTooSmall = errors.New("buffer too small for index header")

// Meta. header index B+ tree, disimpan di reserved region header file index.
type Meta struct {
	IndexNo    int32
	AttrType   types.AttrType
	AttrLength int32
	MaxKeys    int32
	NumNodes   int32
	NumRecs    int32
	IsUnique   bool
	Root       types.RecordID
}

func NewMeta(indexNo int32, attrType types.AttrType, attrLength, maxKeys int32, isUnique bool) *Meta {
	return &Meta{
		IndexNo:    indexNo,
		AttrType:   attrType,
		AttrLength: attrLength,
		MaxKeys:    maxKeys,
		IsUnique:   isUnique,
		Root:       types.NilRecordID(),
	}
}

func (m *Meta) Serialize(buf []byte) error {
	if len(buf) < MetaSize {
		return fmt.Errorf("%w: %d < %d", ErrMetaTooSmall, len(buf), MetaSize)
	}
	p := disk.NewPageFromByteSlice(buf)
	p.PutInt(indexNoOffset, m.IndexNo)
	p.PutByte(attrTypeOffset, byte(m.AttrType))
	p.PutInt(attrLengthOffset, m.AttrLength)
	p.PutInt(maxKeysOffset, m.MaxKeys)
	p.PutInt(numNodesOffset, m.NumNodes)
	p.PutInt(numRecsOffset, m.NumRecs)
	p.PutBool(isUniqueOffset, m.IsUnique)
	p.PutRecordID(rootOffset, m.Root)
	return nil
}

func Deserialize(buf []byte) (*Meta, error) {
	if len(buf) < MetaSize {
		return nil, fmt.Errorf("%w: %d < %d", ErrMetaTooSmall, len(buf), MetaSize)
	}
	p := disk.NewPageFromByteSlice(buf)
	return &Meta{
		IndexNo:    p.GetInt(indexNoOffset),
		AttrType:   types.AttrType(p.GetByte(attrTypeOffset)),
		AttrLength: p.GetInt(attrLengthOffset),
		MaxKeys:    p.GetInt(maxKeysOffset),
		NumNodes:   p.GetInt(numNodesOffset),
		NumRecs:    p.GetInt(numRecsOffset),
		IsUnique:   p.GetBool(isUniqueOffset),
		Root:       p.GetRecordID(rootOffset),
	}, nil
}
