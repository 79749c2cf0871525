package index

import "github.com/lintang-b-s/minirel/types"

// NodeInfo . snapshot satu node untuk Walk / Leaves.
type NodeInfo struct {
	PageNum   int32
	Level     int
	Leaf      bool
	Dup       bool
	Parent    int32
	Prev      int32 // leaf
	Next      int32 // leaf
	Keys      [][]byte
	Children  []int32          // internal node
	RecordIDs []types.RecordID // leaf
}

// Walk. kunjungi semua node depth first dari root. fn yang return error menghentikan walk.
func (m *Manager) Walk(id int, fn func(NodeInfo) error) error {
	idx, err := m.Index(id)
	if err != nil {
		return err
	}
	return idx.walk(idx.rootPage(), 0, fn)
}

func (idx *Index) walk(pageNum int32, level int, fn func(NodeInfo) error) error {
	info, err := idx.nodeInfo(pageNum, level)
	if err != nil {
		return err
	}
	if err := fn(info); err != nil {
		return err
	}
	for _, child := range info.Children {
		if err := idx.walk(child, level+1, fn); err != nil {
			return err
		}
	}
	return nil
}

// Leaves. kunjungi leaf dari kiri ke kanan lewat NEXT pointer.
func (m *Manager) Leaves(id int, fn func(NodeInfo) error) error {
	idx, err := m.Index(id)
	if err != nil {
		return err
	}
	pageNum, err := idx.leftmostLeaf()
	if err != nil {
		return err
	}
	for pageNum >= 0 {
		info, err := idx.nodeInfo(pageNum, -1)
		if err != nil {
			return err
		}
		if err := fn(info); err != nil {
			return err
		}
		pageNum = info.Next
	}
	return nil
}

func (idx *Index) nodeInfo(pageNum int32, level int) (info NodeInfo, err error) {
	ns := idx.newNodeSet()
	defer ns.release(&err)
	n, err := ns.fetch(pageNum)
	if err != nil {
		return NodeInfo{}, err
	}

	info = NodeInfo{
		PageNum: pageNum,
		Level:   level,
		Leaf:    n.isLeaf(),
		Dup:     n.isDup(),
		Parent:  n.parent().PageNum,
		Prev:    -1,
		Next:    -1,
	}
	for i := 0; i < n.entries(); i++ {
		info.Keys = append(info.Keys, append([]byte(nil), n.keyAt(i)...))
	}
	if info.Leaf {
		info.Prev, info.Next = n.prev(), n.next()
		for i := 0; i < n.entries(); i++ {
			info.RecordIDs = append(info.RecordIDs, n.ptrAt(i))
		}
		return info, nil
	}
	for i := 0; i < n.numChildren(); i++ {
		info.Children = append(info.Children, n.ptrAt(i).PageNum)
	}
	return info, nil
}
