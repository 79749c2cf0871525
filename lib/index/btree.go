package index

import (
	"fmt"
	"log/slog"

	"github.com/lintang-b-s/minirel/lib"
	"github.com/lintang-b-s/minirel/lib/meta"
	"github.com/lintang-b-s/minirel/types"
)

// Manager . access method B+ tree. pegang open index table & open scan table.
type Manager struct {
	store   PageStore
	indexes []*Index // open index table, nil = slot kosong
	scans   []*scan  // open scan table
}

func NewManager(store PageStore, opts *lib.Options) *Manager {
	return &Manager{
		store:   store,
		indexes: make([]*Index, opts.IndexTableSize),
		scans:   make([]*scan, opts.MaxIndexScans),
	}
}

// Index . satu index yang sedang dibuka.
type Index struct {
	m         *Manager
	slot      int
	fd        int
	name      string
	meta      *meta.Meta
	metaDirty bool
	maxKeys   int
	attrLen   int
	cmp       comparator
}

/*
CreateIndex. buat file index fileName.indexNo berisi root internal node dengan dua leaf kosong
yang saling terhubung (root page 0, leaf page 1 & 2).
isUnique disimpan false, uniqueness tidak di-enforce.
*/
func (m *Manager) CreateIndex(fileName string, indexNo int, attrType types.AttrType, attrLength int, isUnique bool) (err error) {
	if fileName == "" || indexNo < 0 {
		return fmt.Errorf("%w: index %q.%d", ErrInvalidArgument, fileName, indexNo)
	}
	if err := ValidateAttr(attrType, attrLength); err != nil {
		return err
	}
	pageSize := m.store.PageSize()
	maxKeys := MaxKeys(pageSize, attrLength)
	if maxKeys < 2 {
		return fmt.Errorf("%w: page size %d holds %d keys of %d bytes", ErrInvalidAttrLength, pageSize, maxKeys, attrLength)
	}

	name := lib.IndexFileName(fileName, indexNo)
	if err := m.store.CreateFile(name); err != nil {
		return pfError(err)
	}
	fd, err := m.store.OpenFile(name)
	if err != nil {
		return pfError(err)
	}

	mt := meta.NewMeta(int32(indexNo), attrType, int32(attrLength), int32(maxKeys), false)
	idx := &Index{m: m, fd: fd, name: name, meta: mt, maxKeys: maxKeys, attrLen: attrLength}

	if err := idx.bootstrap(); err != nil {
		m.store.CloseFile(fd)
		return err
	}
	if err := idx.writeMeta(); err != nil {
		m.store.CloseFile(fd)
		return err
	}
	if err := m.store.CloseFile(fd); err != nil {
		return pfError(err)
	}

	slog.Debug("index: create", "name", name, "attrType", attrType.String(), "attrLength", attrLength,
		"maxKeys", maxKeys, "uniqueRequested", isUnique)
	return nil
}

// bootstrap. root (entries 0, ptr0 = leaf1, ptr1 = leaf2), leaf1 <-> leaf2.
func (idx *Index) bootstrap() (err error) {
	ns := idx.newNodeSet()
	defer ns.release(&err)

	root, err := ns.allocInternal()
	if err != nil {
		return err
	}
	left, err := ns.allocLeaf()
	if err != nil {
		return err
	}
	right, err := ns.allocLeaf()
	if err != nil {
		return err
	}

	root.setPtrAt(0, childPointer(left.pageNum))
	root.setPtrAt(1, childPointer(right.pageNum))
	left.setParent(root.pageNum)
	right.setParent(root.pageNum)
	left.setNext(right.pageNum)
	right.setPrev(left.pageNum)

	idx.meta.Root = childPointer(root.pageNum)
	return nil
}

func (m *Manager) DestroyIndex(fileName string, indexNo int) error {
	if err := m.store.DestroyFile(lib.IndexFileName(fileName, indexNo)); err != nil {
		return pfError(err)
	}
	return nil
}

func (m *Manager) IndexExists(fileName string, indexNo int) bool {
	return m.store.Exists(lib.IndexFileName(fileName, indexNo))
}

// OpenIndex. buka file index dan baca AM header nya. return index descriptor (slot open index table).
func (m *Manager) OpenIndex(fileName string, indexNo int) (int, error) {
	slot := -1
	for i, idx := range m.indexes {
		if idx == nil {
			slot = i
			break
		}
	}
	if slot < 0 {
		return -1, ErrIndexTableFull
	}

	name := lib.IndexFileName(fileName, indexNo)
	fd, err := m.store.OpenFile(name)
	if err != nil {
		return -1, pfError(err)
	}

	idx, err := m.loadIndex(fd, name)
	if err != nil {
		m.store.CloseFile(fd)
		return -1, err
	}
	idx.slot = slot
	m.indexes[slot] = idx
	slog.Debug("index: open", "name", name, "slot", slot, "root", idx.meta.Root.PageNum,
		"nodes", idx.meta.NumNodes, "records", idx.meta.NumRecs)
	return slot, nil
}

func (m *Manager) loadIndex(fd int, name string) (*Index, error) {
	reserved, err := m.store.Reserved(fd)
	if err != nil {
		return nil, pfError(err)
	}
	mt, err := meta.Deserialize(reserved)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	attrLen := int(mt.AttrLength)
	cmp, err := newComparator(mt.AttrType, attrLen)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorrupt, name, err)
	}
	if want := MaxKeys(m.store.PageSize(), attrLen); int(mt.MaxKeys) != want {
		return nil, fmt.Errorf("%w: %s: maxKeys %d, page size gives %d", ErrCorrupt, name, mt.MaxKeys, want)
	}
	if mt.Root.PageNum < 0 || mt.Root.PageNum >= mt.NumNodes {
		return nil, fmt.Errorf("%w: %s: root page %d of %d nodes", ErrCorrupt, name, mt.Root.PageNum, mt.NumNodes)
	}

	return &Index{
		m:       m,
		fd:      fd,
		name:    name,
		meta:    mt,
		maxKeys: int(mt.MaxKeys),
		attrLen: attrLen,
		cmp:     cmp,
	}, nil
}

// CloseIndex. tulis AM header kalau berubah lalu tutup file. gagal kalau masih ada scan terbuka.
func (m *Manager) CloseIndex(id int) error {
	idx, err := m.Index(id)
	if err != nil {
		return err
	}
	for _, s := range m.scans {
		if s != nil && s.idx == idx {
			return fmt.Errorf("close %s: %w", idx.name, ErrScanOpen)
		}
	}

	if idx.metaDirty {
		if err := idx.writeMeta(); err != nil {
			return err
		}
	}
	if err := m.store.CloseFile(idx.fd); err != nil {
		return pfError(err)
	}
	m.indexes[id] = nil
	slog.Debug("index: close", "name", idx.name, "nodes", idx.meta.NumNodes, "records", idx.meta.NumRecs)
	return nil
}

func (m *Manager) Index(id int) (*Index, error) {
	if id < 0 || id >= len(m.indexes) || m.indexes[id] == nil {
		return nil, fmt.Errorf("index %d: %w", id, ErrNotOpen)
	}
	return m.indexes[id], nil
}

func (idx *Index) writeMeta() error {
	reserved, err := idx.m.store.Reserved(idx.fd)
	if err != nil {
		return pfError(err)
	}
	if err := idx.meta.Serialize(reserved); err != nil {
		return err
	}
	if err := idx.m.store.MarkHeaderDirty(idx.fd); err != nil {
		return pfError(err)
	}
	idx.metaDirty = false
	return nil
}

// Header. copy AM header.
func (idx *Index) Header() meta.Meta {
	return *idx.meta
}

func (idx *Index) Name() string {
	return idx.name
}

// normalize. value jadi tepat attrLength bytes. string yang lebih pendek di-pad nol.
func (idx *Index) normalize(value []byte) ([]byte, error) {
	switch {
	case len(value) == idx.attrLen:
		return value, nil
	case len(value) < idx.attrLen && idx.meta.AttrType == types.StringType:
		key := make([]byte, idx.attrLen)
		copy(key, value)
		return key, nil
	}
	return nil, fmt.Errorf("%w: value of %d bytes for %s key of %d", ErrInvalidArgument,
		len(value), idx.meta.AttrType, idx.attrLen)
}

func (idx *Index) rootPage() int32 {
	return idx.meta.Root.PageNum
}

func (idx *Index) setRoot(pageNum int32) {
	idx.meta.Root = childPointer(pageNum)
	idx.metaDirty = true
}

func (idx *Index) addRecords(delta int32) {
	idx.meta.NumRecs += delta
	idx.metaDirty = true
}

/*
nodeSet . page node yang dipin oleh satu langkah operasi. release unpin semuanya
(dirty kalau node diubah), dipanggil lewat defer dan sebelum rekursi ke parent.
*/
type nodeSet struct {
	idx   *Index
	nodes []*node
}

func (idx *Index) newNodeSet() *nodeSet {
	return &nodeSet{idx: idx}
}

func (ns *nodeSet) fetch(pageNum int32) (*node, error) {
	if pageNum < 0 || pageNum >= ns.idx.meta.NumNodes {
		return nil, fmt.Errorf("%w: %s: node page %d of %d", ErrCorrupt, ns.idx.name, pageNum, ns.idx.meta.NumNodes)
	}
	buf, err := ns.idx.m.store.GetPage(ns.idx.fd, pageNum)
	if err != nil {
		return nil, pfError(err)
	}
	n := newNode(pageNum, buf, ns.idx.maxKeys, ns.idx.attrLen)
	ns.nodes = append(ns.nodes, n)
	return n, nil
}

func (ns *nodeSet) alloc() (*node, error) {
	pageNum, buf, err := ns.idx.m.store.AllocatePage(ns.idx.fd)
	if err != nil {
		return nil, pfError(err)
	}
	n := newNode(pageNum, buf, ns.idx.maxKeys, ns.idx.attrLen)
	ns.nodes = append(ns.nodes, n)
	ns.idx.meta.NumNodes++
	ns.idx.metaDirty = true
	return n, nil
}

func (ns *nodeSet) allocLeaf() (*node, error) {
	n, err := ns.alloc()
	if err != nil {
		return nil, err
	}
	n.initLeaf()
	return n, nil
}

func (ns *nodeSet) allocInternal() (*node, error) {
	n, err := ns.alloc()
	if err != nil {
		return nil, err
	}
	n.initInternal()
	return n, nil
}

// release. unpin semua node. error unpin pertama disimpan ke *errp kalau *errp masih nil.
func (ns *nodeSet) release(errp *error) {
	for _, n := range ns.nodes {
		if err := ns.idx.m.store.UnpinPage(ns.idx.fd, n.pageNum, n.dirty); err != nil && *errp == nil {
			*errp = pfError(err)
		}
	}
	ns.nodes = nil
}

// setParent. update parent pointer satu node tanpa menahan pin lain.
func (idx *Index) setParent(pageNum, parent int32) (err error) {
	ns := idx.newNodeSet()
	defer ns.release(&err)
	n, err := ns.fetch(pageNum)
	if err != nil {
		return err
	}
	n.setParent(parent)
	return nil
}

func (idx *Index) parentOf(pageNum int32) (parent int32, err error) {
	ns := idx.newNodeSet()
	defer ns.release(&err)
	n, err := ns.fetch(pageNum)
	if err != nil {
		return -1, err
	}
	return n.parent().PageNum, nil
}

// findLeaf. turun dari root ke leaf yang range nya memuat key.
// untuk insert, root yang belum punya separator mendapat key sebagai separator pertama.
func (idx *Index) findLeaf(key []byte, forInsert bool) (int32, error) {
	pageNum := idx.rootPage()
	for {
		child, leaf, err := idx.descendOne(pageNum, key, forInsert)
		if err != nil {
			return -1, err
		}
		if leaf {
			return pageNum, nil
		}
		pageNum = child
	}
}

func (idx *Index) descendOne(pageNum int32, key []byte, forInsert bool) (child int32, leaf bool, err error) {
	ns := idx.newNodeSet()
	defer ns.release(&err)
	n, err := ns.fetch(pageNum)
	if err != nil {
		return -1, false, err
	}
	if n.isLeaf() {
		return -1, true, nil
	}
	if n.entries() == 0 && forInsert {
		n.setKeyAt(0, key)
		n.setEntries(1)
		return n.ptrAt(1).PageNum, false, nil
	}
	return n.childFor(key, idx.cmp), false, nil
}
