package index

import (
	"fmt"

	"github.com/lintang-b-s/minirel/lib/disk"
	"github.com/lintang-b-s/minirel/types"
)

/*
layout node (satu page):

	header : entries int32 @0 | parent RecordID @4 | duplicate byte @12
	leaf   : PREV | (ptr,key) * maxKeys | NEXT
	intern : (ptr,key) * maxKeys | ptr

pointer internal node punya slot NodeIntNull, pointer leaf (data, PREV, NEXT) slot >= 0 / NodeNullPtr.
*/
const (
	entriesOffset  = 0
	parentOffset   = 4
	dupOffset      = 12
	nodeHeaderSize = 13
)

// MaxKeys. jumlah (ptr,key) yang muat di satu leaf: header + maxKeys*(ptr+key) + PREV + NEXT <= pageSize.
// internal node pakai maxKeys yang sama.
func MaxKeys(pageSize, attrLength int) int {
	return (pageSize - nodeHeaderSize - 2*types.RecordIDSize) / (types.RecordIDSize + attrLength)
}

type node struct {
	pageNum int32
	page    *disk.Page
	maxKeys int
	attrLen int
	leaf    bool
	dirty   bool
}

func newNode(pageNum int32, buf []byte, maxKeys, attrLen int) *node {
	p := disk.NewPageFromByteSlice(buf)
	return &node{
		pageNum: pageNum,
		page:    p,
		maxKeys: maxKeys,
		attrLen: attrLen,
		leaf:    p.GetRecordID(nodeHeaderSize).SlotNum == types.NodeNullPtr,
	}
}

func (n *node) stride() int {
	return types.RecordIDSize + n.attrLen
}

func (n *node) markDirty() {
	n.dirty = true
}

// isLeaf. slot pointer pertama leaf (PREV) NodeNullPtr, internal node NodeIntNull.
func (n *node) isLeaf() bool {
	return n.leaf
}

func (n *node) entries() int {
	return int(n.page.GetInt(entriesOffset))
}

func (n *node) setEntries(c int) {
	n.page.PutInt(entriesOffset, int32(c))
	n.dirty = true
}

func (n *node) isDup() bool {
	return n.page.GetBool(dupOffset)
}

func (n *node) setDup(dup bool) {
	n.page.PutBool(dupOffset, dup)
	n.dirty = true
}

func (n *node) parent() types.RecordID {
	return n.page.GetRecordID(parentOffset)
}

func (n *node) setParent(parent int32) {
	n.page.PutRecordID(parentOffset, childPointer(parent))
	n.dirty = true
}

func childPointer(pageNum int32) types.RecordID {
	return types.NewRecordID(pageNum, types.NodeIntNull)
}

func leafLink(pageNum int32) types.RecordID {
	return types.NewRecordID(pageNum, types.NodeNullPtr)
}

// initLeaf. leaf kosong: semua pointer {-1,-1}, tanpa parent.
func (n *node) initLeaf() {
	n.leaf = true
	n.page.Zero(0, n.page.Size())
	n.page.PutRecordID(parentOffset, types.NilRecordID())
	n.page.PutRecordID(n.prevOffset(), types.NilRecordID())
	for i := 0; i < n.maxKeys; i++ {
		n.page.PutRecordID(n.ptrOffset(i), types.NilRecordID())
	}
	n.page.PutRecordID(n.nextOffset(), types.NilRecordID())
	n.dirty = true
}

// initInternal. internal node kosong: semua pointer {-1,-2}.
func (n *node) initInternal() {
	n.leaf = false
	n.page.Zero(0, n.page.Size())
	n.page.PutRecordID(parentOffset, types.NilRecordID())
	for i := 0; i <= n.maxKeys; i++ {
		n.page.PutRecordID(n.ptrOffset(i), childPointer(types.NodeNullPtr))
	}
	n.dirty = true
}

// offsets

func (n *node) ptrOffset(i int) int {
	if n.isLeaf() {
		return nodeHeaderSize + types.RecordIDSize + i*n.stride()
	}
	return nodeHeaderSize + i*n.stride()
}

func (n *node) keyOffset(i int) int {
	return n.ptrOffset(i) + types.RecordIDSize
}

func (n *node) prevOffset() int {
	return nodeHeaderSize
}

func (n *node) nextOffset() int {
	return nodeHeaderSize + types.RecordIDSize + n.maxKeys*n.stride()
}

// checked accessors

// Pointer. slot i: [0,maxKeys) untuk leaf, [0,maxKeys] untuk internal node,
// NodeParent untuk parent, LeafIdxPrev/LeafIdxNext untuk adjacency pointer leaf.
func (n *node) Pointer(i int) (types.RecordID, error) {
	off, err := n.pointerSlot(i)
	if err != nil {
		return types.RecordID{}, err
	}
	return n.page.GetRecordID(off), nil
}

func (n *node) SetPointer(i int, rid types.RecordID) error {
	off, err := n.pointerSlot(i)
	if err != nil {
		return err
	}
	n.page.PutRecordID(off, rid)
	n.dirty = true
	return nil
}

func (n *node) pointerSlot(i int) (int, error) {
	leaf := n.isLeaf()
	switch {
	case i == int(types.NodeParent):
		return parentOffset, nil
	case leaf && i == int(types.LeafIdxPrev):
		return n.prevOffset(), nil
	case leaf && i == int(types.LeafIdxNext):
		return n.nextOffset(), nil
	case i < 0:
		return 0, fmt.Errorf("%w: pointer slot %d", ErrInvalidArgument, i)
	case leaf && i >= n.maxKeys, !leaf && i > n.maxKeys:
		return 0, fmt.Errorf("%w: pointer slot %d out of range (maxKeys %d)", ErrInvalidArgument, i, n.maxKeys)
	}
	return n.ptrOffset(i), nil
}

// Key. key slot i, i in [0,maxKeys). slice menunjuk langsung ke buffer page.
func (n *node) Key(i int) ([]byte, error) {
	if i < 0 || i >= n.maxKeys {
		return nil, fmt.Errorf("%w: key slot %d out of range (maxKeys %d)", ErrInvalidArgument, i, n.maxKeys)
	}
	return n.page.Slice(n.keyOffset(i), n.attrLen)
}

func (n *node) SetKey(i int, key []byte) error {
	if i < 0 || i >= n.maxKeys {
		return fmt.Errorf("%w: key slot %d out of range (maxKeys %d)", ErrInvalidArgument, i, n.maxKeys)
	}
	if len(key) < n.attrLen {
		return fmt.Errorf("%w: key of %d bytes, need %d", ErrInvalidArgument, len(key), n.attrLen)
	}
	n.dirty = true
	return n.page.PutBytes(n.keyOffset(i), key[:n.attrLen])
}

// unchecked helpers, slot sudah dijamin valid oleh caller.

func (n *node) ptrAt(i int) types.RecordID {
	return n.page.GetRecordID(n.ptrOffset(i))
}

func (n *node) setPtrAt(i int, rid types.RecordID) {
	n.page.PutRecordID(n.ptrOffset(i), rid)
	n.dirty = true
}

func (n *node) keyAt(i int) []byte {
	off := n.keyOffset(i)
	return n.page.Contents()[off : off+n.attrLen]
}

func (n *node) setKeyAt(i int, key []byte) {
	off := n.keyOffset(i)
	copy(n.page.Contents()[off:off+n.attrLen], key)
	n.dirty = true
}

func (n *node) prev() int32 {
	return n.page.GetRecordID(n.prevOffset()).PageNum
}

func (n *node) next() int32 {
	return n.page.GetRecordID(n.nextOffset()).PageNum
}

func (n *node) setPrev(pageNum int32) {
	n.page.PutRecordID(n.prevOffset(), leafLink(pageNum))
	n.dirty = true
}

func (n *node) setNext(pageNum int32) {
	n.page.PutRecordID(n.nextOffset(), leafLink(pageNum))
	n.dirty = true
}

// leaf entries

type entry struct {
	key []byte
	rid types.RecordID
}

func (n *node) entryAt(i int) entry {
	return entry{key: append([]byte(nil), n.keyAt(i)...), rid: n.ptrAt(i)}
}

func (n *node) setEntryAt(i int, e entry) {
	n.setPtrAt(i, e.rid)
	n.setKeyAt(i, e.key)
}

func (n *node) clearEntryAt(i int) {
	n.setPtrAt(i, types.NilRecordID())
	n.page.Zero(n.keyOffset(i), n.attrLen)
}

// insertEntry. geser entry [i,entries) ke kanan satu slot lalu tulis e di slot i.
func (n *node) insertEntry(i int, e entry) {
	c := n.entries()
	buf := n.page.Contents()
	copy(buf[n.ptrOffset(i+1):n.ptrOffset(c+1)], buf[n.ptrOffset(i):n.ptrOffset(c)])
	n.setEntryAt(i, e)
	n.setEntries(c + 1)
}

// removeEntry. geser entry (i,entries) ke kiri satu slot.
func (n *node) removeEntry(i int) {
	c := n.entries()
	buf := n.page.Contents()
	copy(buf[n.ptrOffset(i):n.ptrOffset(c-1)], buf[n.ptrOffset(i+1):n.ptrOffset(c)])
	n.clearEntryAt(c - 1)
	n.setEntries(c - 1)
}

// truncateEntries. buang entry [from,entries) dan kembalikan copy nya.
func (n *node) truncateEntries(from int) []entry {
	c := n.entries()
	moved := make([]entry, 0, c-from)
	for i := from; i < c; i++ {
		moved = append(moved, n.entryAt(i))
		n.clearEntryAt(i)
	}
	n.setEntries(from)
	return moved
}

func (n *node) appendEntries(es []entry) {
	c := n.entries()
	for i, e := range es {
		n.setEntryAt(c+i, e)
	}
	n.setEntries(c + len(es))
}

// searchPos. slot pertama dengan key > value.
func (n *node) searchPos(value []byte, cmp comparator) int {
	c := n.entries()
	for i := 0; i < c; i++ {
		if cmp(value, n.keyAt(i)) < 0 {
			return i
		}
	}
	return c
}

// internal node

// numChildren. root hasil create belum punya separator tapi sudah punya dua child.
func (n *node) numChildren() int {
	return max(n.entries(), 1) + 1
}

// childIndex. slot pointer yang menunjuk ke child, -1 kalau tidak ada.
func (n *node) childIndex(child int32) int {
	for i := 0; i < n.numChildren(); i++ {
		if n.ptrAt(i).PageNum == child {
			return i
		}
	}
	return -1
}

// childFor. child yang range nya memuat value: pointer pertama dengan value < key, atau pointer terakhir.
func (n *node) childFor(value []byte, cmp comparator) int32 {
	c := n.entries()
	for i := 0; i < c; i++ {
		if cmp(value, n.keyAt(i)) < 0 {
			return n.ptrAt(i).PageNum
		}
	}
	return n.ptrAt(c).PageNum
}

// insertChild. sisipkan separator key di slot i dan child di pointer slot i+1.
func (n *node) insertChild(i int, key []byte, child int32) {
	c := n.entries()
	buf := n.page.Contents()
	copy(buf[n.keyOffset(i+1):n.keyOffset(c+1)], buf[n.keyOffset(i):n.keyOffset(c)])
	n.setKeyAt(i, key)
	n.setPtrAt(i+1, childPointer(child))
	n.setEntries(c + 1)
}

// children. copy separator & pointer internal node.
func (n *node) children() ([][]byte, []int32) {
	c := n.entries()
	keys := make([][]byte, 0, c+1)
	ptrs := make([]int32, 0, c+2)
	for i := 0; i < c; i++ {
		keys = append(keys, append([]byte(nil), n.keyAt(i)...))
	}
	for i := 0; i <= c; i++ {
		ptrs = append(ptrs, n.ptrAt(i).PageNum)
	}
	return keys, ptrs
}

// setChildren. tulis ulang isi internal node, slot sisa direset ke {-1,-2}.
func (n *node) setChildren(keys [][]byte, ptrs []int32) {
	for i := 0; i <= n.maxKeys; i++ {
		if i < len(ptrs) {
			n.setPtrAt(i, childPointer(ptrs[i]))
		} else {
			n.setPtrAt(i, childPointer(types.NodeNullPtr))
		}
		if i == n.maxKeys {
			break
		}
		if i < len(keys) {
			n.setKeyAt(i, keys[i])
		} else {
			n.page.Zero(n.keyOffset(i), n.attrLen)
		}
	}
	n.setEntries(len(keys))
}
