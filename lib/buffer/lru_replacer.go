package buffer

const nilFrame = -1

type listNode struct {
	next   int
	prev   int
	inList bool
}

// DoubleLinkedList. list index-based di atas array frame. head & tail adalah sentinel di index n dan n+1.
//
//	head <-> f1 <-> f2 <-> ... <-> tail
//	head.next = most recently used, tail.prev = least recently used
type DoubleLinkedList struct {
	nodes []listNode
	head  int
	tail  int
	size  int
}

func NewDoubleLinkedList(capacity int) *DoubleLinkedList {
	nodes := make([]listNode, capacity+2)
	head, tail := capacity, capacity+1
	nodes[head] = listNode{next: tail, prev: nilFrame}
	nodes[tail] = listNode{next: nilFrame, prev: head}
	for i := 0; i < capacity; i++ {
		nodes[i] = listNode{next: nilFrame, prev: nilFrame}
	}
	return &DoubleLinkedList{nodes: nodes, head: head, tail: tail}
}

// PushFront. push ke nextnya head (most recently used).
func (d *DoubleLinkedList) PushFront(key int) {
	first := d.nodes[d.head].next
	d.nodes[key] = listNode{next: first, prev: d.head, inList: true}
	d.nodes[first].prev = key
	d.nodes[d.head].next = key
	d.size++
}

func (d *DoubleLinkedList) Remove(key int) {
	n := d.nodes[key]
	if !n.inList {
		return
	}
	d.nodes[n.prev].next = n.next
	d.nodes[n.next].prev = n.prev
	d.nodes[key] = listNode{next: nilFrame, prev: nilFrame}
	d.size--
}

func (d *DoubleLinkedList) Contains(key int) bool {
	return d.nodes[key].inList
}

// GetBack. return node prevnya tail (least recently used), nilFrame kalau list kosong.
func (d *DoubleLinkedList) GetBack() int {
	back := d.nodes[d.tail].prev
	if back == d.head {
		return nilFrame
	}
	return back
}

// Prev. node sebelum key ke arah head, nilFrame kalau sudah di head.
func (d *DoubleLinkedList) Prev(key int) int {
	p := d.nodes[key].prev
	if p == d.head {
		return nilFrame
	}
	return p
}

// Next. node setelah key ke arah tail, nilFrame kalau sudah di tail.
func (d *DoubleLinkedList) Next(key int) int {
	n := d.nodes[key].next
	if n == d.tail {
		return nilFrame
	}
	return n
}

func (d *DoubleLinkedList) Front() int {
	front := d.nodes[d.head].next
	if front == d.tail {
		return nilFrame
	}
	return front
}

func (d *DoubleLinkedList) Size() int {
	return d.size
}

// LRUReplacer. urutan semua frame resident berdasarkan touch terakhir.
// beda dengan replacer biasa, frame yang dipin tetap ada di list; Victim melewati frame yang pinned.
type LRUReplacer struct {
	lst *DoubleLinkedList
}

func NewLRUReplacer(capacity int) *LRUReplacer {
	return &LRUReplacer{lst: NewDoubleLinkedList(capacity)}
}

// Insert. masukkan frame di posisi most recently used.
func (lru *LRUReplacer) Insert(frameID int) {
	if lru.lst.Contains(frameID) {
		lru.lst.Remove(frameID)
	}
	lru.lst.PushFront(frameID)
}

// Touch. pindahkan frame ke posisi most recently used.
func (lru *LRUReplacer) Touch(frameID int) {
	lru.Insert(frameID)
}

// Remove. remove frame dari LRU
func (lru *LRUReplacer) Remove(frameID int) {
	lru.lst.Remove(frameID)
}

// Victim. scan dari tail ke head, return frame pertama yang tidak dipin.
func (lru *LRUReplacer) Victim(isPinned func(frameID int) bool) (int, bool) {
	for f := lru.lst.GetBack(); f != nilFrame; f = lru.lst.Prev(f) {
		if !isPinned(f) {
			return f, true
		}
	}
	return nilFrame, false
}

// Size. return jumlah frame dalam LRU
func (lru *LRUReplacer) Size() int {
	return lru.lst.Size()
}

// ForEach. iterasi frame dari most recently used ke least recently used.
func (lru *LRUReplacer) ForEach(fn func(frameID int)) {
	for f := lru.lst.Front(); f != nilFrame; f = lru.lst.Next(f) {
		fn(f)
	}
}
