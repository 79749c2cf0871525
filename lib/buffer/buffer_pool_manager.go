package buffer

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/lintang-b-s/minirel/lib/disk"
)

// BufferPool. cache fixed-size page dengan pin count & dirty bit, evict least recently used page yang tidak dipin.
type BufferPool struct {
	bufferPool []*Buffer // frame berisi page dari disk yang sementara disimpan di memori.
	pageSize   int
	freeList   []int          // frame yang tidak hold page apapun.
	replacer   *LRUReplacer   // urutan recency semua frame resident.
	pageTable  *PageHashIndex // mapping pageID ke frameID.
}

// NewBufferPool. initialize buffer pool dengan numBuffers frame.
func NewBufferPool(numBuffers, pageSize int) *BufferPool {
	bufferPool := make([]*Buffer, numBuffers)
	for i := 0; i < numBuffers; i++ {
		bufferPool[i] = NewBuffer(pageSize)
	}

	fl := make([]int, numBuffers)
	for i := 0; i < numBuffers; i++ {
		fl[i] = numBuffers - 1 - i // frame 0 keluar duluan
	}

	return &BufferPool{
		bufferPool: bufferPool,
		pageSize:   pageSize,
		freeList:   fl,
		replacer:   NewLRUReplacer(numBuffers),
		pageTable:  NewPageHashIndex(numBuffers),
	}
}

func (bp *BufferPool) PageSize() int {
	return bp.pageSize
}

func (bp *BufferPool) Capacity() int {
	return len(bp.bufferPool)
}

/*
Allocate. ambil frame buat page yang isinya akan diinisialisasi caller (tanpa read dari disk).
frame diambil dari freelist, atau dari evict least recently used page yang tidak dipin.
*/
func (bp *BufferPool) Allocate(req Request) ([]byte, error) {
	if _, ok := bp.pageTable.Search(req.ID); ok {
		return nil, fmt.Errorf("allocate %s: %w", req.ID, ErrAlreadyCached)
	}

	frameID, err := bp.getFrame()
	if err != nil {
		return nil, fmt.Errorf("allocate %s: %w", req.ID, err)
	}

	return bp.install(frameID, req), nil
}

/*
Fetch. fetch page dari buffer pool. kalau page sudah resident, pin count +1 (posisi di LRU tidak berubah).
kalau belum, read page dari disk ke frame kosong / frame hasil evict.
*/
func (bp *BufferPool) Fetch(req Request) ([]byte, error) {
	if frameID, ok := bp.pageTable.Search(req.ID); ok {
		buffer := bp.bufferPool[frameID]
		buffer.pins++
		return buffer.contents, nil
	}

	frameID, err := bp.getFrame()
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", req.ID, err)
	}

	buffer := bp.bufferPool[frameID]
	buffer.file = req.File
	buffer.id = req.ID
	if err := buffer.read(); err != nil {
		buffer.reset()
		bp.freeList = append(bp.freeList, frameID)
		return nil, fmt.Errorf("fetch %s: %w: %w", req.ID, ErrIO, err)
	}

	return bp.install(frameID, req), nil
}

// UnpinPage. pin count -1. kalau markDirty, page juga di touch (dirty + pindah ke MRU).
func (bp *BufferPool) Unpin(id disk.PageID, markDirty bool) error {
	frameID, ok := bp.pageTable.Search(id)
	if !ok {
		return fmt.Errorf("unpin %s: %w", id, ErrNotResident)
	}

	buffer := bp.bufferPool[frameID]
	if !buffer.isPinned() {
		return fmt.Errorf("unpin %s: %w", id, ErrNotPinned)
	}

	if markDirty {
		buffer.isDirty = true
		bp.replacer.Touch(frameID)
	}
	buffer.pins--
	return nil
}

// Touch. tandai page dirty & pindahkan ke posisi most recently used. page harus sedang dipin.
func (bp *BufferPool) Touch(id disk.PageID) error {
	frameID, ok := bp.pageTable.Search(id)
	if !ok {
		return fmt.Errorf("touch %s: %w", id, ErrNotResident)
	}

	buffer := bp.bufferPool[frameID]
	if !buffer.isPinned() {
		return fmt.Errorf("touch %s: %w", id, ErrNotPinned)
	}

	buffer.isDirty = true
	bp.replacer.Touch(frameID)
	return nil
}

/*
FlushFile. release semua page milik fileID: dirty page diwrite ke disk, frame dikembalikan ke freelist.
gagal tanpa menulis apapun kalau ada page file tsb yang masih dipin.
*/
func (bp *BufferPool) FlushFile(fileID int) error {
	frames := make([]int, 0)
	for frameID, buffer := range bp.bufferPool {
		if !buffer.resident || buffer.id.FileID != fileID {
			continue
		}
		if buffer.isPinned() {
			return fmt.Errorf("flush file %d page %d: %w", fileID, buffer.id.PageNum, ErrStillPinned)
		}
		frames = append(frames, frameID)
	}

	for _, frameID := range frames {
		buffer := bp.bufferPool[frameID]
		if buffer.isDirty {
			if err := buffer.flush(); err != nil {
				return fmt.Errorf("flush %s: %w: %w", buffer.id, ErrIO, err)
			}
			slog.Debug("buffer: write back", "file", fileID, "page", buffer.id.PageNum)
		}
		bp.release(frameID)
	}
	return nil
}

// IsResident. true kalau page ada di buffer pool.
func (bp *BufferPool) IsResident(id disk.PageID) bool {
	_, ok := bp.pageTable.Search(id)
	return ok
}

// PinCount. pin count page, -1 kalau tidak resident.
func (bp *BufferPool) PinCount(id disk.PageID) int {
	frameID, ok := bp.pageTable.Search(id)
	if !ok {
		return -1
	}
	return bp.bufferPool[frameID].pins
}

// getFrame. ambil frameID dari freelist, kalau kosong evict least recently used page yang tidak dipin.
func (bp *BufferPool) getFrame() (int, error) {
	if n := len(bp.freeList); n != 0 {
		frameID := bp.freeList[n-1]
		bp.freeList = bp.freeList[:n-1]
		return frameID, nil
	}

	frameID, ok := bp.replacer.Victim(func(frameID int) bool {
		return bp.bufferPool[frameID].isPinned()
	})
	if !ok {
		return nilFrame, ErrPoolExhausted
	}

	victim := bp.bufferPool[frameID]
	if victim.isDirty {
		// kalau page yang di evict dirty (habis diupdate), flush page tsb dulu
		if err := victim.flush(); err != nil {
			return nilFrame, fmt.Errorf("evict %s: %w: %w", victim.id, ErrIO, err)
		}
	}
	slog.Debug("buffer: evict", "file", victim.id.FileID, "page", victim.id.PageNum, "dirty", victim.isDirty)

	bp.pageTable.Delete(victim.id)
	bp.replacer.Remove(frameID)
	victim.reset()
	return frameID, nil
}

// install. pasang page ke frame, pin = 1, daftarkan di page table & taruh di MRU.
func (bp *BufferPool) install(frameID int, req Request) []byte {
	buffer := bp.bufferPool[frameID]
	buffer.assign(req)
	// frame dari getFrame tidak ada di page table, Insert tidak mungkin gagal
	_ = bp.pageTable.Insert(req.ID, frameID)
	bp.replacer.Insert(frameID)
	return buffer.contents
}

func (bp *BufferPool) release(frameID int) {
	buffer := bp.bufferPool[frameID]
	bp.pageTable.Delete(buffer.id)
	bp.replacer.Remove(frameID)
	buffer.reset()
	bp.freeList = append(bp.freeList, frameID)
}

type Stats struct {
	Frames   int
	Free     int
	Resident int
	Pinned   int
	Dirty    int
}

func (bp *BufferPool) Stats() Stats {
	st := Stats{Frames: len(bp.bufferPool), Free: len(bp.freeList)}
	for _, buffer := range bp.bufferPool {
		if !buffer.resident {
			continue
		}
		st.Resident++
		if buffer.isPinned() {
			st.Pinned++
		}
		if buffer.isDirty {
			st.Dirty++
		}
	}
	return st
}

// Dump. tulis isi LRU list dari most recently used ke least recently used.
func (bp *BufferPool) Dump(w io.Writer) {
	st := bp.Stats()
	fmt.Fprintf(w, "buffer pool: %d frames, %d free, %d resident\n", st.Frames, st.Free, st.Resident)
	bp.replacer.ForEach(func(frameID int) {
		buffer := bp.bufferPool[frameID]
		fmt.Fprintf(w, "  frame %d: file %d page %d pins %d dirty %v\n",
			frameID, buffer.id.FileID, buffer.id.PageNum, buffer.pins, buffer.isDirty)
	})
}
