package index

import (
	"fmt"

	"github.com/lintang-b-s/minirel/types"
)

/*
Delete. hapus entry (value, rid) dari leaf nya. node tidak pernah di-merge atau dibebaskan,
leaf boleh jadi kosong. scan yang terbuka di leaf yang sama digeser supaya tidak melompati entry.
*/
func (idx *Index) Delete(value []byte, rid types.RecordID) (err error) {
	key, err := idx.normalize(value)
	if err != nil {
		return err
	}
	leafPage, err := idx.findLeaf(key, false)
	if err != nil {
		return err
	}

	ns := idx.newNodeSet()
	defer ns.release(&err)
	leaf, err := ns.fetch(leafPage)
	if err != nil {
		return err
	}
	slot, err := idx.locate(leaf, key, rid)
	if err != nil {
		return err
	}

	leaf.removeEntry(slot)
	if leaf.isDup() && leaf.entries() == 0 {
		leaf.setDup(false)
	}
	idx.addRecords(-1)
	idx.m.adjustScans(idx, leafPage, slot)
	return nil
}

// locate. slot (key, rid) di leaf. key ada tapi rid beda -> ErrRecordNotFound.
func (idx *Index) locate(leaf *node, key []byte, rid types.RecordID) (int, error) {
	found := false
	for i := 0; i < leaf.entries(); i++ {
		c := idx.cmp(key, leaf.keyAt(i))
		if c < 0 {
			break
		}
		if c > 0 {
			continue
		}
		found = true
		if leaf.ptrAt(i) == rid {
			return i, nil
		}
		if !leaf.isDup() {
			break
		}
	}
	if found {
		return -1, fmt.Errorf("%w: %v", ErrRecordNotFound, rid)
	}
	return -1, ErrKeyNotFound
}

// FindExact. cursor entry (value, rid).
func (idx *Index) FindExact(rid types.RecordID, value []byte) (c Cursor, err error) {
	key, err := idx.normalize(value)
	if err != nil {
		return Cursor{}, err
	}
	leafPage, err := idx.findLeaf(key, false)
	if err != nil {
		return Cursor{}, err
	}

	ns := idx.newNodeSet()
	defer ns.release(&err)
	leaf, err := ns.fetch(leafPage)
	if err != nil {
		return Cursor{}, err
	}
	slot, err := idx.locate(leaf, key, rid)
	if err != nil {
		return Cursor{}, err
	}
	return leaf.cursorAt(slot), nil
}
