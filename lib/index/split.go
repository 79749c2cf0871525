package index

import (
	"fmt"
	"log/slog"
	"slices"
)

/*
splitLeaf. leaf penuh: entry [maxKeys/2, entries) pindah ke leaf baru setelahnya,
e masuk ke half yang range nya memuat key, lalu key pertama leaf baru di-copy up ke parent.
*/
func (idx *Index) splitLeaf(ns *nodeSet, leaf *node, e entry) (err error) {
	nl, err := ns.allocLeaf()
	if err != nil {
		return err
	}
	if err := idx.linkAfter(ns, leaf, nl); err != nil {
		return err
	}

	mid := idx.maxKeys / 2
	nl.appendEntries(leaf.truncateEntries(mid))
	if idx.cmp(e.key, nl.keyAt(0)) < 0 {
		leaf.insertEntry(leaf.searchPos(e.key, idx.cmp), e)
	} else {
		nl.insertEntry(nl.searchPos(e.key, idx.cmp), e)
	}
	idx.addRecords(1)

	sep := append([]byte(nil), nl.keyAt(0)...)
	parent := leaf.parent().PageNum
	slog.Debug("index: split leaf", "index", idx.name, "leaf", leaf.pageNum, "new", nl.pageNum,
		"left", leaf.entries(), "right", nl.entries())

	ns.release(&err)
	if err != nil {
		return err
	}
	return idx.insertInternal(parent, leaf.pageNum, sep, nl.pageNum)
}

/*
splitDuplicate. key e sudah ada di slot i leaf (rid beda). semua occurrence key dipindah ke leaf duplikat tersendiri:

	i == 0     : leaf jadi leaf duplikat, entry (0,n) pindah ke leaf baru setelahnya.
	             separator kiri leaf diset ke key; kalau leaf child pertama parent, leaf kosong baru
	             dipasang sebelumnya supaya key yang lebih kecil tidak turun ke leaf duplikat.
	i == n-1   : leaf duplikat baru setelah leaf.
	lainnya    : leaf tetap [0,i), leaf duplikat baru, lalu leaf baru untuk (i,n).
*/
func (idx *Index) splitDuplicate(leafPage int32, i int, e entry) (err error) {
	ns := idx.newNodeSet()
	defer ns.release(&err)

	leaf, err := ns.fetch(leafPage)
	if err != nil {
		return err
	}
	n := leaf.entries()
	old := leaf.entryAt(i)
	slog.Debug("index: split duplicate", "index", idx.name, "leaf", leafPage, "slot", i, "entries", n)

	switch {
	case i == 0:
		return idx.splitDuplicateFirst(ns, leaf, e)

	case i == n-1:
		leaf.truncateEntries(i)
		dup, err := ns.allocLeaf()
		if err != nil {
			return err
		}
		if err := idx.linkAfter(ns, leaf, dup); err != nil {
			return err
		}
		dup.appendEntries([]entry{old, e})
		dup.setDup(true)
		idx.addRecords(1)

		parent := leaf.parent().PageNum
		ns.release(&err)
		if err != nil {
			return err
		}
		return idx.insertInternal(parent, leafPage, e.key, dup.pageNum)
	}

	rest := leaf.truncateEntries(i)[1:]
	dup, err := ns.allocLeaf()
	if err != nil {
		return err
	}
	if err := idx.linkAfter(ns, leaf, dup); err != nil {
		return err
	}
	dup.appendEntries([]entry{old, e})
	dup.setDup(true)

	right, err := ns.allocLeaf()
	if err != nil {
		return err
	}
	if err := idx.linkAfter(ns, dup, right); err != nil {
		return err
	}
	right.appendEntries(rest)
	idx.addRecords(1)

	parent := leaf.parent().PageNum
	ns.release(&err)
	if err != nil {
		return err
	}
	if err := idx.insertInternal(parent, leafPage, e.key, dup.pageNum); err != nil {
		return err
	}
	if parent, err = idx.parentOf(dup.pageNum); err != nil {
		return err
	}
	return idx.insertInternal(parent, dup.pageNum, rest[0].key, right.pageNum)
}

func (idx *Index) splitDuplicateFirst(ns *nodeSet, leaf *node, e entry) (err error) {
	rest := leaf.truncateEntries(1)
	leaf.insertEntry(1, e)
	leaf.setDup(true)
	idx.addRecords(1)

	var right *node
	if len(rest) > 0 {
		if right, err = ns.allocLeaf(); err != nil {
			return err
		}
		if err := idx.linkAfter(ns, leaf, right); err != nil {
			return err
		}
		right.appendEntries(rest)
	}

	pn, err := ns.fetch(leaf.parent().PageNum)
	if err != nil {
		return err
	}
	j := pn.childIndex(leaf.pageNum)
	if j < 0 {
		return fmt.Errorf("%w: %s: leaf %d missing from parent %d", ErrCorrupt, idx.name, leaf.pageNum, pn.pageNum)
	}

	var front *node
	if j > 0 {
		pn.setKeyAt(j-1, e.key)
	} else {
		if front, err = ns.allocLeaf(); err != nil {
			return err
		}
		if err := idx.linkBefore(ns, leaf, front); err != nil {
			return err
		}
		pn.setPtrAt(0, childPointer(front.pageNum))
	}

	parent, leafPage := pn.pageNum, leaf.pageNum
	ns.release(&err)
	if err != nil {
		return err
	}

	if front != nil {
		if err := idx.insertInternal(parent, front.pageNum, e.key, leafPage); err != nil {
			return err
		}
	}
	if right == nil {
		return nil
	}
	if parent, err = idx.parentOf(leafPage); err != nil {
		return err
	}
	return idx.insertInternal(parent, leafPage, rest[0].key, right.pageNum)
}

/*
insertInternal. sisipkan separator key dengan child baru tepat setelah pointer ke after di internal node.
node penuh di-split: separator ke maxKeys/2 dipromote ke parent (atau root baru), child di half kanan di-relink.
*/
func (idx *Index) insertInternal(nodePage, after int32, key []byte, child int32) (err error) {
	if err := idx.setParent(child, nodePage); err != nil {
		return err
	}

	ns := idx.newNodeSet()
	defer ns.release(&err)

	nd, err := ns.fetch(nodePage)
	if err != nil {
		return err
	}
	p := nd.childIndex(after)
	if p < 0 {
		return fmt.Errorf("%w: %s: child %d missing from node %d", ErrCorrupt, idx.name, after, nodePage)
	}
	if nd.entries() < idx.maxKeys {
		nd.insertChild(p, key, child)
		return nil
	}

	keys, ptrs := nd.children()
	keys = slices.Insert(keys, p, key)
	ptrs = slices.Insert(ptrs, p+1, child)
	mid := idx.maxKeys / 2
	promoted := keys[mid]

	right, err := ns.allocInternal()
	if err != nil {
		return err
	}
	nd.setChildren(keys[:mid], ptrs[:mid+1])
	right.setChildren(keys[mid+1:], ptrs[mid+1:])
	moved := ptrs[mid+1:]

	parent := nd.parent().PageNum
	newRoot := nodePage == idx.rootPage()
	if newRoot {
		root, err := ns.allocInternal()
		if err != nil {
			return err
		}
		root.setChildren([][]byte{promoted}, []int32{nodePage, right.pageNum})
		nd.setParent(root.pageNum)
		right.setParent(root.pageNum)
		idx.setRoot(root.pageNum)
		slog.Debug("index: new root", "index", idx.name, "root", root.pageNum, "left", nodePage, "right", right.pageNum)
	} else {
		right.setParent(parent)
	}
	slog.Debug("index: split internal", "index", idx.name, "node", nodePage, "new", right.pageNum)

	rightPage := right.pageNum
	ns.release(&err)
	if err != nil {
		return err
	}
	for _, c := range moved {
		if err := idx.setParent(c, rightPage); err != nil {
			return err
		}
	}
	if newRoot {
		return nil
	}
	return idx.insertInternal(parent, nodePage, promoted, rightPage)
}
