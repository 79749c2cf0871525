package index

import (
	"errors"
	"fmt"

	"github.com/lintang-b-s/minirel/types"
)

// Op . operator pembanding scan.
type Op int

const (
	EQ Op = iota + 1
	LT
	GT
	LE
	GE
	NE
)

func (op Op) String() string {
	switch op {
	case EQ:
		return "="
	case LT:
		return "<"
	case GT:
		return ">"
	case LE:
		return "<="
	case GE:
		return ">="
	case NE:
		return "<>"
	}
	return fmt.Sprintf("Op(%d)", int(op))
}

// match. cmp = compare(key, value).
func (op Op) match(cmp int) bool {
	switch op {
	case EQ:
		return cmp == 0
	case LT:
		return cmp < 0
	case GT:
		return cmp > 0
	case LE:
		return cmp <= 0
	case GE:
		return cmp >= 0
	case NE:
		return cmp != 0
	}
	return false
}

// exhausted. key sudah lewat value, tidak ada lagi entry yang cocok karena leaf urut.
func (op Op) exhausted(cmp int) bool {
	return cmp > 0 && (op == EQ || op == LT || op == LE)
}

// Cursor . posisi entry di leaf. Node = (page leaf, slot entry).
type Cursor struct {
	Node     types.RecordID
	RecordID types.RecordID
	Key      []byte
}

func eofCursor() Cursor {
	return Cursor{Node: types.NilRecordID(), RecordID: types.NilRecordID()}
}

func (n *node) cursorAt(slot int) Cursor {
	return Cursor{
		Node:     types.NewRecordID(n.pageNum, int32(slot)),
		RecordID: n.ptrAt(slot),
		Key:      append([]byte(nil), n.keyAt(slot)...),
	}
}

// FirstValue. entry terkecil di index. index kosong -> ErrEOF.
func (idx *Index) FirstValue() (Cursor, error) {
	leaf, err := idx.leftmostLeaf()
	if err != nil {
		return eofCursor(), err
	}
	return idx.scanFrom(leaf, 0)
}

// NextValue. entry setelah c, lewat NEXT pointer kalau leaf habis. akhir index -> ErrEOF.
func (idx *Index) NextValue(c Cursor) (Cursor, error) {
	if c.Node.PageNum < 0 {
		return eofCursor(), ErrEOF
	}
	return idx.scanFrom(c.Node.PageNum, c.Node.SlotNum+1)
}

func (idx *Index) leftmostLeaf() (int32, error) {
	pageNum := idx.rootPage()
	for {
		child, leaf, err := idx.firstChild(pageNum)
		if err != nil {
			return -1, err
		}
		if leaf {
			return pageNum, nil
		}
		pageNum = child
	}
}

func (idx *Index) firstChild(pageNum int32) (child int32, leaf bool, err error) {
	ns := idx.newNodeSet()
	defer ns.release(&err)
	n, err := ns.fetch(pageNum)
	if err != nil {
		return -1, false, err
	}
	if n.isLeaf() {
		return -1, true, nil
	}
	return n.ptrAt(0).PageNum, false, nil
}

// scanFrom. entry pertama mulai slot di leaf pageNum, leaf kosong dilewati.
func (idx *Index) scanFrom(pageNum, slot int32) (Cursor, error) {
	if slot < 0 {
		slot = 0
	}
	for pageNum >= 0 {
		c, next, ok, err := idx.readEntry(pageNum, int(slot))
		if err != nil {
			return eofCursor(), err
		}
		if ok {
			return c, nil
		}
		pageNum, slot = next, 0
	}
	return eofCursor(), ErrEOF
}

func (idx *Index) readEntry(pageNum int32, slot int) (c Cursor, next int32, ok bool, err error) {
	ns := idx.newNodeSet()
	defer ns.release(&err)
	n, err := ns.fetch(pageNum)
	if err != nil {
		return Cursor{}, -1, false, err
	}
	if !n.isLeaf() {
		return Cursor{}, -1, false, fmt.Errorf("%w: %s: node %d in leaf chain is not a leaf", ErrCorrupt, idx.name, pageNum)
	}
	if slot < n.entries() {
		return n.cursorAt(slot), -1, true, nil
	}
	return Cursor{}, n.next(), false, nil
}

type scan struct {
	idx     *Index
	op      Op
	value   []byte // nil = semua entry
	cur     Cursor
	started bool
	done    bool
}

// OpenScan. scan index id dengan predicate key op value. value nil -> full index scan.
func (m *Manager) OpenScan(id int, op Op, value []byte) (int, error) {
	idx, err := m.Index(id)
	if err != nil {
		return -1, err
	}
	if op < EQ || op > NE {
		return -1, fmt.Errorf("%w: scan operator %d", ErrInvalidArgument, int(op))
	}
	var target []byte
	if value != nil {
		key, err := idx.normalize(value)
		if err != nil {
			return -1, err
		}
		target = append([]byte(nil), key...)
	}

	for sd, s := range m.scans {
		if s == nil {
			m.scans[sd] = &scan{idx: idx, op: op, value: target}
			return sd, nil
		}
	}
	return -1, ErrScanTableFull
}

// FindNext. rid entry berikutnya yang cocok dengan predicate scan. habis -> ErrEOF.
func (m *Manager) FindNext(sd int) (types.RecordID, error) {
	s, err := m.scan(sd)
	if err != nil {
		return types.NilRecordID(), err
	}

	for !s.done {
		var c Cursor
		if s.started {
			c, err = s.idx.NextValue(s.cur)
		} else {
			c, err = s.idx.FirstValue()
			s.started = true
		}
		if errors.Is(err, ErrEOF) {
			s.done = true
			break
		}
		if err != nil {
			return types.NilRecordID(), err
		}
		s.cur = c

		if s.value == nil {
			return c.RecordID, nil
		}
		cmp := s.idx.cmp(c.Key, s.value)
		if s.op.match(cmp) {
			return c.RecordID, nil
		}
		if s.op.exhausted(cmp) {
			s.done = true
		}
	}
	return types.NilRecordID(), ErrEOF
}

func (m *Manager) CloseScan(sd int) error {
	if _, err := m.scan(sd); err != nil {
		return err
	}
	m.scans[sd] = nil
	return nil
}

func (m *Manager) scan(sd int) (*scan, error) {
	if sd < 0 || sd >= len(m.scans) || m.scans[sd] == nil {
		return nil, fmt.Errorf("scan %d: %w", sd, ErrNotOpen)
	}
	return m.scans[sd], nil
}

// adjustScans. setelah entry slot di leaf dihapus, cursor scan di belakangnya mundur satu.
// slot -1 berarti sebelum entry pertama leaf.
func (m *Manager) adjustScans(idx *Index, leafPage int32, slot int) {
	for _, s := range m.scans {
		if s == nil || s.idx != idx || !s.started || s.done {
			continue
		}
		if s.cur.Node.PageNum == leafPage && s.cur.Node.SlotNum >= int32(slot) {
			s.cur.Node.SlotNum--
		}
	}
}
