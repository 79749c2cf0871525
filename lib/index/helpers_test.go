package index

import (
	"encoding/binary"
	"testing"

	"github.com/lintang-b-s/minirel/lib"
	"github.com/lintang-b-s/minirel/lib/buffer"
	"github.com/lintang-b-s/minirel/lib/page"
	"github.com/lintang-b-s/minirel/types"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	opts  *lib.Options
	store *page.Store
	m     *Manager
}

func newTestEnv(t *testing.T, pageSize int) *testEnv {
	t.Helper()
	opts := lib.DefaultOptions()
	opts.PageSize = pageSize
	opts.BufferPoolSize = 32
	opts.MaxIndexScans = 4
	opts.IndexTableSize = 4
	opts.DBDir = t.TempDir()

	store, err := page.NewStore(opts, buffer.NewBufferPool(opts.BufferPoolSize, pageSize))
	require.NoError(t, err)
	return &testEnv{opts: opts, store: store, m: NewManager(store, opts)}
}

// openIndex. buat & buka index baru "rel.0".
func (env *testEnv) openIndex(t *testing.T, attrType types.AttrType, attrLength int) (int, *Index) {
	t.Helper()
	require.NoError(t, env.m.CreateIndex("rel", 0, attrType, attrLength, false))
	id, err := env.m.OpenIndex("rel", 0)
	require.NoError(t, err)
	idx, err := env.m.Index(id)
	require.NoError(t, err)
	return id, idx
}

func rid(page, slot int) types.RecordID {
	return types.NewRecordID(int32(page), int32(slot))
}

func intOf(b []byte) int32 {
	return int32(binary.LittleEndian.Uint32(b))
}

func intKeys(keys [][]byte) []int32 {
	out := make([]int32, 0, len(keys))
	for _, k := range keys {
		out = append(out, intOf(k))
	}
	return out
}

// scanAll. full index scan lewat FirstValue / NextValue.
func scanAll(t *testing.T, idx *Index) []Cursor {
	t.Helper()
	var out []Cursor
	c, err := idx.FirstValue()
	for err == nil {
		out = append(out, c)
		c, err = idx.NextValue(c)
	}
	require.ErrorIs(t, err, ErrEOF)
	return out
}

func scanInts(t *testing.T, idx *Index) []int32 {
	t.Helper()
	var out []int32
	for _, c := range scanAll(t, idx) {
		out = append(out, intOf(c.Key))
	}
	return out
}

// scanRIDs. semua rid hasil scan predicate.
func scanRIDs(t *testing.T, m *Manager, id int, op Op, value []byte) []types.RecordID {
	t.Helper()
	sd, err := m.OpenScan(id, op, value)
	require.NoError(t, err)
	defer func() { require.NoError(t, m.CloseScan(sd)) }()

	var out []types.RecordID
	r, err := m.FindNext(sd)
	for err == nil {
		out = append(out, r)
		r, err = m.FindNext(sd)
	}
	require.ErrorIs(t, err, ErrEOF)
	require.True(t, r.IsNil())
	return out
}

func nodesByPage(t *testing.T, m *Manager, id int) map[int32]NodeInfo {
	t.Helper()
	nodes := make(map[int32]NodeInfo)
	require.NoError(t, m.Walk(id, func(n NodeInfo) error {
		nodes[n.PageNum] = n
		return nil
	}))
	return nodes
}
