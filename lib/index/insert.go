package index

import (
	"fmt"

	"github.com/lintang-b-s/minirel/types"
)

// Insert. sisipkan (value, rid). pasangan yang sama persis ditolak dengan ErrDuplicateRecordID.
func (idx *Index) Insert(value []byte, rid types.RecordID) error {
	key, err := idx.normalize(value)
	if err != nil {
		return err
	}
	if rid.PageNum < 0 || rid.SlotNum < 0 {
		return fmt.Errorf("%w: record id %v", ErrInvalidArgument, rid)
	}
	e := entry{key: append([]byte(nil), key...), rid: rid}

	leaf, err := idx.findLeaf(e.key, true)
	if err != nil {
		return err
	}
	return idx.insertLeaf(leaf, e)
}

func (idx *Index) insertLeaf(leafPage int32, e entry) (err error) {
	ns := idx.newNodeSet()
	defer ns.release(&err)

	leaf, err := ns.fetch(leafPage)
	if err != nil {
		return err
	}
	if leaf.isDup() {
		return idx.insertDup(ns, leaf, e)
	}

	n := leaf.entries()
	for i := 0; i < n; i++ {
		c := idx.cmp(e.key, leaf.keyAt(i))
		if c < 0 {
			break
		}
		if c == 0 {
			if leaf.ptrAt(i) == e.rid {
				return fmt.Errorf("%w: %v", ErrDuplicateRecordID, e.rid)
			}
			ns.release(&err)
			if err != nil {
				return err
			}
			return idx.splitDuplicate(leafPage, i, e)
		}
	}

	if n == idx.maxKeys {
		return idx.splitLeaf(ns, leaf, e)
	}
	leaf.insertEntry(leaf.searchPos(e.key, idx.cmp), e)
	idx.addRecords(1)
	return nil
}

// insertDup. insert ke leaf duplikat. key yang sama di-append, key lain dapat leaf baru.
func (idx *Index) insertDup(ns *nodeSet, leaf *node, e entry) (err error) {
	n := leaf.entries()
	c := idx.cmp(e.key, leaf.keyAt(0))

	if c == 0 {
		for i := 0; i < n; i++ {
			if leaf.ptrAt(i) == e.rid {
				return fmt.Errorf("%w: %v", ErrDuplicateRecordID, e.rid)
			}
		}
		if n == idx.maxKeys {
			return fmt.Errorf("%w: %d records", ErrTooManyRecordsPerKey, n)
		}
		leaf.insertEntry(n, e)
		idx.addRecords(1)
		return nil
	}

	nl, err := ns.allocLeaf()
	if err != nil {
		return err
	}
	if err := idx.linkAfter(ns, leaf, nl); err != nil {
		return err
	}

	sep := e.key
	if c > 0 {
		nl.insertEntry(0, e)
	} else {
		// isi leaf duplikat pindah ke leaf baru, leaf lama jadi leaf biasa untuk key yang lebih kecil.
		dups := leaf.truncateEntries(0)
		nl.appendEntries(dups)
		nl.setDup(true)
		leaf.setDup(false)
		leaf.insertEntry(0, e)
		sep = dups[0].key
	}
	idx.addRecords(1)

	parent := leaf.parent().PageNum
	ns.release(&err)
	if err != nil {
		return err
	}
	return idx.insertInternal(parent, leaf.pageNum, sep, nl.pageNum)
}

// linkAfter. sisipkan leaf right tepat setelah left di adjacency list.
func (idx *Index) linkAfter(ns *nodeSet, left, right *node) error {
	next := left.next()
	if next >= 0 {
		nb, err := ns.fetch(next)
		if err != nil {
			return err
		}
		nb.setPrev(right.pageNum)
	}
	right.setNext(next)
	right.setPrev(left.pageNum)
	left.setNext(right.pageNum)
	right.setParent(left.parent().PageNum)
	return nil
}

// linkBefore. sisipkan leaf left tepat sebelum right di adjacency list.
func (idx *Index) linkBefore(ns *nodeSet, right, left *node) error {
	prev := right.prev()
	if prev >= 0 {
		pb, err := ns.fetch(prev)
		if err != nil {
			return err
		}
		pb.setNext(left.pageNum)
	}
	left.setPrev(prev)
	left.setNext(right.pageNum)
	right.setPrev(left.pageNum)
	left.setParent(right.parent().PageNum)
	return nil
}
