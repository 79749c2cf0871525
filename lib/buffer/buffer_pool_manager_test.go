package buffer

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lintang-b-s/minirel/lib/disk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPageSize = 64

// memFile. PageFile in-memory buat test, mencatat urutan write.
type memFile struct {
	pages  map[int32][]byte
	writes []int32
}

func newMemFile() *memFile {
	return &memFile{pages: make(map[int32][]byte)}
}

func (m *memFile) ReadPage(pageNum int32, buf []byte) error {
	p, ok := m.pages[pageNum]
	if !ok {
		return errors.New("short read")
	}
	copy(buf, p)
	return nil
}

func (m *memFile) WritePage(pageNum int32, buf []byte) error {
	m.pages[pageNum] = bytes.Clone(buf)
	m.writes = append(m.writes, pageNum)
	return nil
}

func TestBufferPoolAllocateFetch(t *testing.T) {
	f := newMemFile()
	bp := NewBufferPool(3, testPageSize)

	t.Run("allocate pins the page and fetch hits the cache", func(t *testing.T) {
		buf, err := bp.Allocate(NewRequest(1, 0, f))
		require.NoError(t, err)
		assert.Len(t, buf, testPageSize)
		copy(buf, "lintang")

		again, err := bp.Fetch(NewRequest(1, 0, f))
		require.NoError(t, err)
		assert.Equal(t, "lintang", string(again[:7]))
		assert.Equal(t, 2, bp.PinCount(disk.NewPageID(1, 0)))

		require.NoError(t, bp.Unpin(disk.NewPageID(1, 0), true))
		require.NoError(t, bp.Unpin(disk.NewPageID(1, 0), false))
		assert.Equal(t, 0, bp.PinCount(disk.NewPageID(1, 0)))
	})

	t.Run("allocate resident page fails", func(t *testing.T) {
		_, err := bp.Allocate(NewRequest(1, 0, f))
		assert.ErrorIs(t, err, ErrAlreadyCached)
	})

	t.Run("unpin and touch errors", func(t *testing.T) {
		assert.ErrorIs(t, bp.Unpin(disk.NewPageID(1, 0), false), ErrNotPinned)
		assert.ErrorIs(t, bp.Unpin(disk.NewPageID(9, 9), false), ErrNotResident)
		assert.ErrorIs(t, bp.Touch(disk.NewPageID(1, 0)), ErrNotPinned)
		assert.ErrorIs(t, bp.Touch(disk.NewPageID(9, 9)), ErrNotResident)
	})

	t.Run("fetch read failure leaves the frame free", func(t *testing.T) {
		before := bp.Stats().Free
		_, err := bp.Fetch(NewRequest(1, 42, f))
		assert.ErrorIs(t, err, ErrIO)
		assert.Equal(t, before, bp.Stats().Free)
		assert.False(t, bp.IsResident(disk.NewPageID(1, 42)))
	})
}

func TestBufferPoolEviction(t *testing.T) {
	t.Run("evicts least recently used unpinned page and writes it back", func(t *testing.T) {
		f := newMemFile()
		bp := NewBufferPool(3, testPageSize)

		for i := int32(0); i < 3; i++ {
			buf, err := bp.Allocate(NewRequest(1, i, f))
			require.NoError(t, err)
			buf[0] = byte(i + 1)
		}
		for i := int32(0); i < 3; i++ {
			require.NoError(t, bp.Unpin(disk.NewPageID(1, i), true))
		}

		_, err := bp.Allocate(NewRequest(1, 3, f))
		require.NoError(t, err)
		assert.False(t, bp.IsResident(disk.NewPageID(1, 0)))
		assert.Equal(t, []int32{0}, f.writes)
		assert.Equal(t, byte(1), f.pages[0][0])

		// page 0 dibaca ulang dari disk
		require.NoError(t, bp.Unpin(disk.NewPageID(1, 3), false))
		buf, err := bp.Fetch(NewRequest(1, 0, f))
		require.NoError(t, err)
		assert.Equal(t, byte(1), buf[0])
		assert.False(t, bp.IsResident(disk.NewPageID(1, 1)))
	})

	t.Run("fetch hit does not refresh recency", func(t *testing.T) {
		f := newMemFile()
		bp := NewBufferPool(2, testPageSize)

		_, err := bp.Allocate(NewRequest(1, 0, f))
		require.NoError(t, err)
		_, err = bp.Allocate(NewRequest(1, 1, f))
		require.NoError(t, err)
		require.NoError(t, bp.Unpin(disk.NewPageID(1, 0), false))
		require.NoError(t, bp.Unpin(disk.NewPageID(1, 1), false))

		_, err = bp.Fetch(NewRequest(1, 0, f))
		require.NoError(t, err)
		require.NoError(t, bp.Unpin(disk.NewPageID(1, 0), false))

		_, err = bp.Allocate(NewRequest(1, 2, f))
		require.NoError(t, err)
		assert.False(t, bp.IsResident(disk.NewPageID(1, 0)))
		assert.True(t, bp.IsResident(disk.NewPageID(1, 1)))
		assert.Empty(t, f.writes)
	})

	t.Run("touch refreshes recency", func(t *testing.T) {
		f := newMemFile()
		bp := NewBufferPool(2, testPageSize)

		_, err := bp.Allocate(NewRequest(1, 0, f))
		require.NoError(t, err)
		_, err = bp.Allocate(NewRequest(1, 1, f))
		require.NoError(t, err)
		require.NoError(t, bp.Touch(disk.NewPageID(1, 0)))
		require.NoError(t, bp.Unpin(disk.NewPageID(1, 0), false))
		require.NoError(t, bp.Unpin(disk.NewPageID(1, 1), false))

		_, err = bp.Allocate(NewRequest(1, 2, f))
		require.NoError(t, err)
		assert.True(t, bp.IsResident(disk.NewPageID(1, 0)))
		assert.False(t, bp.IsResident(disk.NewPageID(1, 1)))
	})

	t.Run("failed allocate because all buffer is pinned", func(t *testing.T) {
		f := newMemFile()
		bp := NewBufferPool(2, testPageSize)
		for i := int32(0); i < 2; i++ {
			_, err := bp.Allocate(NewRequest(1, i, f))
			require.NoError(t, err)
		}

		_, err := bp.Allocate(NewRequest(1, 2, f))
		assert.ErrorIs(t, err, ErrPoolExhausted)
		_, err = bp.Fetch(NewRequest(1, 2, f))
		assert.ErrorIs(t, err, ErrPoolExhausted)
	})
}

func TestBufferPoolFlushFile(t *testing.T) {
	f1 := newMemFile()
	f2 := newMemFile()
	bp := NewBufferPool(4, testPageSize)

	for i := int32(0); i < 2; i++ {
		buf, err := bp.Allocate(NewRequest(1, i, f1))
		require.NoError(t, err)
		buf[0] = 0xAB
	}
	_, err := bp.Allocate(NewRequest(2, 0, f2))
	require.NoError(t, err)
	require.NoError(t, bp.Unpin(disk.NewPageID(1, 0), true))

	t.Run("still pinned page blocks the whole flush", func(t *testing.T) {
		err := bp.FlushFile(1)
		assert.ErrorIs(t, err, ErrStillPinned)
		assert.Empty(t, f1.writes)
		assert.True(t, bp.IsResident(disk.NewPageID(1, 0)))
	})

	t.Run("flush writes dirty pages and frees the frames", func(t *testing.T) {
		require.NoError(t, bp.Unpin(disk.NewPageID(1, 1), false))
		require.NoError(t, bp.FlushFile(1))

		assert.ElementsMatch(t, []int32{0}, f1.writes)
		assert.Equal(t, byte(0xAB), f1.pages[0][0])
		assert.False(t, bp.IsResident(disk.NewPageID(1, 0)))
		assert.False(t, bp.IsResident(disk.NewPageID(1, 1)))
		assert.True(t, bp.IsResident(disk.NewPageID(2, 0)))

		st := bp.Stats()
		assert.Equal(t, 3, st.Free)
		assert.Equal(t, 1, st.Resident)
		assert.Equal(t, 1, st.Pinned)
	})

	t.Run("reused frame is zeroed", func(t *testing.T) {
		buf, err := bp.Allocate(NewRequest(3, 0, f1))
		require.NoError(t, err)
		assert.Equal(t, make([]byte, testPageSize), buf)
	})

	t.Run("dump lists resident frames", func(t *testing.T) {
		var sb strings.Builder
		bp.Dump(&sb)
		assert.Contains(t, sb.String(), "file 2 page 0")
		assert.Contains(t, sb.String(), "file 3 page 0")
	})
}

func TestBufferPoolWithDiskManager(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, disk.CreateFile(path, testPageSize))
	dm, err := disk.OpenDiskManager(path, testPageSize)
	require.NoError(t, err)
	defer dm.Close()

	bp := NewBufferPool(5, testPageSize)
	for i := int32(0); i < 10; i++ {
		buf, err := bp.Allocate(NewRequest(0, i, dm))
		require.NoError(t, err)
		page := disk.NewPageFromByteSlice(buf)
		page.PutInt(0, i*10)
		require.NoError(t, bp.Unpin(disk.NewPageID(0, i), true))
	}
	require.NoError(t, bp.FlushFile(0))

	for i := int32(0); i < 10; i++ {
		buf, err := bp.Fetch(NewRequest(0, i, dm))
		require.NoError(t, err)
		assert.Equal(t, i*10, disk.NewPageFromByteSlice(buf).GetInt(0))
		require.NoError(t, bp.Unpin(disk.NewPageID(0, i), false))
	}
}
