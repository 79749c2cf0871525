package types

import "encoding/binary"

const (
	Int32Size    = 4
	RecordIDSize = 8
)

// sentinel record numbers used inside tree nodes.
const (
	NodeNullPtr int32 = -1 // no pointer
	NodeIntNull int32 = -2 // pointer to a child node, not a data record
	NodeParent  int32 = -3 // pointer slot index that addresses the parent pointer
	LeafIdxPrev int32 = -1 // leaf slot index of the previous-leaf pointer
	LeafIdxNext int32 = -2 // leaf slot index of the next-leaf pointer
)

// RecordID . locator (page, slot). inside a tree node the slot number may carry a sentinel,
// NodeIntNull marks a child pointer and NodeNullPtr an empty or adjacency pointer.
type RecordID struct {
	PageNum int32
	SlotNum int32
}

func NewRecordID(pageNum, slotNum int32) RecordID {
	return RecordID{PageNum: pageNum, SlotNum: slotNum}
}

// NilRecordID. {-1,-1}, also used as the end of scan marker.
func NilRecordID() RecordID {
	return RecordID{PageNum: NodeNullPtr, SlotNum: NodeNullPtr}
}

func (r RecordID) IsNil() bool {
	return r.PageNum == NodeNullPtr
}

func (r RecordID) Encode(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:], uint32(r.PageNum))
	binary.LittleEndian.PutUint32(buf[4:], uint32(r.SlotNum))
}

func DecodeRecordID(buf []byte) RecordID {
	return RecordID{
		PageNum: int32(binary.LittleEndian.Uint32(buf[0:])),
		SlotNum: int32(binary.LittleEndian.Uint32(buf[4:])),
	}
}

// AttrType. type of an indexed attribute.
type AttrType byte

const (
	IntType    AttrType = 'i'
	RealType   AttrType = 'f'
	StringType AttrType = 'c'
)

func (a AttrType) String() string {
	switch a {
	case IntType:
		return "int"
	case RealType:
		return "real"
	case StringType:
		return "string"
	}
	return "unknown"
}
