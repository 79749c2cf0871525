package buffer

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/lintang-b-s/minirel/lib/disk"
)

type hashEntry struct {
	id    disk.PageID
	frame int
	next  *hashEntry
	prev  *hashEntry
}

// PageHashIndex. mapping PageID -> frameID. tiap bucket adalah chain doubly linked
// sehingga entry di tengah chain bisa di unlink tanpa scan ulang.
type PageHashIndex struct {
	buckets []*hashEntry
	size    int
}

func NewPageHashIndex(numBuckets int) *PageHashIndex {
	if numBuckets < 1 {
		numBuckets = 1
	}
	return &PageHashIndex{buckets: make([]*hashEntry, numBuckets)}
}

func (h *PageHashIndex) bucket(id disk.PageID) int {
	var key [12]byte
	binary.LittleEndian.PutUint64(key[0:], uint64(id.FileID))
	binary.LittleEndian.PutUint32(key[8:], uint32(id.PageNum))
	return int(xxhash.Sum64(key[:]) % uint64(len(h.buckets)))
}

func (h *PageHashIndex) find(id disk.PageID) *hashEntry {
	for e := h.buckets[h.bucket(id)]; e != nil; e = e.next {
		if e.id == id {
			return e
		}
	}
	return nil
}

// Insert. entry baru dipasang di depan chain bucket.
func (h *PageHashIndex) Insert(id disk.PageID, frame int) error {
	if h.find(id) != nil {
		return fmt.Errorf("hash insert %s: %w", id, ErrAlreadyCached)
	}
	b := h.bucket(id)
	e := &hashEntry{id: id, frame: frame, next: h.buckets[b]}
	if e.next != nil {
		e.next.prev = e
	}
	h.buckets[b] = e
	h.size++
	return nil
}

func (h *PageHashIndex) Search(id disk.PageID) (int, bool) {
	e := h.find(id)
	if e == nil {
		return nilFrame, false
	}
	return e.frame, true
}

// Delete. unlink entry dari chain, return frame yang tadinya dipegang.
func (h *PageHashIndex) Delete(id disk.PageID) (int, bool) {
	e := h.find(id)
	if e == nil {
		return nilFrame, false
	}
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		h.buckets[h.bucket(id)] = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	}
	e.next, e.prev = nil, nil
	h.size--
	return e.frame, true
}

func (h *PageHashIndex) Len() int {
	return h.size
}
