package index

import (
	"testing"

	"github.com/lintang-b-s/minirel/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOpenClose(t *testing.T) {
	env := newTestEnv(t, 80)

	t.Run("invalid attributes", func(t *testing.T) {
		assert.ErrorIs(t, env.m.CreateIndex("rel", 0, types.IntType, 8, false), ErrInvalidAttrLength)
		assert.ErrorIs(t, env.m.CreateIndex("rel", 0, types.AttrType('z'), 4, false), ErrInvalidAttrType)
		// 80 byte pages cannot hold two 40 byte keys.
		assert.ErrorIs(t, env.m.CreateIndex("rel", 0, types.StringType, 40, false), ErrInvalidAttrLength)
		assert.False(t, env.m.IndexExists("rel", 0))
	})

	t.Run("fresh index layout", func(t *testing.T) {
		require.NoError(t, env.m.CreateIndex("rel", 0, types.IntType, 4, true))
		assert.True(t, env.m.IndexExists("rel", 0))
		assert.ErrorIs(t, env.m.CreateIndex("rel", 0, types.IntType, 4, false), ErrPF)

		id, err := env.m.OpenIndex("rel", 0)
		require.NoError(t, err)
		idx, err := env.m.Index(id)
		require.NoError(t, err)
		assert.Equal(t, "rel.0", idx.Name())

		h := idx.Header()
		assert.Equal(t, int32(4), h.MaxKeys)
		assert.Equal(t, int32(3), h.NumNodes)
		assert.Equal(t, int32(0), h.NumRecs)
		assert.False(t, h.IsUnique)
		assert.Equal(t, types.IntType, h.AttrType)
		assert.Equal(t, types.NewRecordID(0, types.NodeIntNull), h.Root)

		nodes := nodesByPage(t, env.m, id)
		require.Len(t, nodes, 3)
		assert.Equal(t, []int32{1, 2}, nodes[0].Children)
		assert.Empty(t, nodes[0].Keys)
		assert.True(t, nodes[1].Leaf)
		assert.Equal(t, int32(-1), nodes[1].Prev)
		assert.Equal(t, int32(2), nodes[1].Next)
		assert.Equal(t, int32(1), nodes[2].Prev)
		assert.Equal(t, int32(-1), nodes[2].Next)
		assert.Equal(t, int32(0), nodes[1].Parent)
		assert.Equal(t, int32(0), nodes[2].Parent)

		_, err = idx.FirstValue()
		assert.ErrorIs(t, err, ErrEOF)

		require.NoError(t, env.m.CloseIndex(id))
		_, err = env.m.Index(id)
		assert.ErrorIs(t, err, ErrNotOpen)
		assert.ErrorIs(t, env.m.CloseIndex(id), ErrNotOpen)
	})

	t.Run("index table full", func(t *testing.T) {
		for i := 1; i <= 4; i++ {
			require.NoError(t, env.m.CreateIndex("rel", i, types.IntType, 4, false))
		}
		var ids []int
		for i := 0; i < 4; i++ {
			id, err := env.m.OpenIndex("rel", i)
			require.NoError(t, err)
			ids = append(ids, id)
		}
		_, err := env.m.OpenIndex("rel", 4)
		assert.ErrorIs(t, err, ErrIndexTableFull)

		for _, id := range ids {
			require.NoError(t, env.m.CloseIndex(id))
		}
	})

	t.Run("destroy", func(t *testing.T) {
		id, err := env.m.OpenIndex("rel", 0)
		require.NoError(t, err)
		assert.ErrorIs(t, env.m.DestroyIndex("rel", 0), ErrPF)
		require.NoError(t, env.m.CloseIndex(id))

		require.NoError(t, env.m.DestroyIndex("rel", 0))
		assert.False(t, env.m.IndexExists("rel", 0))
		_, err = env.m.OpenIndex("rel", 0)
		assert.ErrorIs(t, err, ErrPF)
	})
}

func TestInsertSplitScenario(t *testing.T) {
	env := newTestEnv(t, 80)
	id, idx := env.openIndex(t, types.IntType, 4)

	for i, v := range []int32{10, 20, 30, 40} {
		require.NoError(t, idx.Insert(IntKey(v), rid(1, i)))
	}
	assert.Equal(t, int32(3), idx.Header().NumNodes)

	require.NoError(t, idx.Insert(IntKey(50), rid(1, 4)))

	h := idx.Header()
	assert.Equal(t, int32(4), h.NumNodes)
	assert.Equal(t, int32(5), h.NumRecs)

	nodes := nodesByPage(t, env.m, id)
	root := nodes[0]
	assert.Equal(t, []int32{10, 30}, intKeys(root.Keys))
	assert.Equal(t, []int32{1, 2, 3}, root.Children)

	// the split moved [30,40] to the new leaf and 50 went right.
	assert.Equal(t, []int32{10, 20}, intKeys(nodes[2].Keys))
	assert.Equal(t, []int32{30, 40, 50}, intKeys(nodes[3].Keys))
	assert.Equal(t, int32(3), nodes[2].Next)
	assert.Equal(t, int32(2), nodes[3].Prev)
	assert.Equal(t, int32(-1), nodes[3].Next)
	assert.Equal(t, int32(0), nodes[3].Parent)

	assert.Equal(t, []int32{10, 20, 30, 40, 50}, scanInts(t, idx))

	// all pins released
	require.NoError(t, env.m.CloseIndex(id))
	id, err := env.m.OpenIndex("rel", 0)
	require.NoError(t, err)
	idx, err = env.m.Index(id)
	require.NoError(t, err)
	assert.Equal(t, h, idx.Header())
	assert.Equal(t, []int32{10, 20, 30, 40, 50}, scanInts(t, idx))
	require.NoError(t, env.m.CloseIndex(id))
}

func TestInsertErrors(t *testing.T) {
	env := newTestEnv(t, 80)
	id, idx := env.openIndex(t, types.IntType, 4)

	require.NoError(t, idx.Insert(IntKey(10), rid(1, 1)))
	assert.ErrorIs(t, idx.Insert(IntKey(10), rid(1, 1)), ErrDuplicateRecordID)
	assert.ErrorIs(t, idx.Insert([]byte{1, 2}, rid(1, 2)), ErrInvalidArgument)
	assert.ErrorIs(t, idx.Insert(IntKey(11), rid(-1, 2)), ErrInvalidArgument)
	assert.Equal(t, []types.RecordID{rid(1, 1)}, scanRIDs(t, env.m, id, EQ, IntKey(10)))

	t.Run("too many records per key", func(t *testing.T) {
		for i := 2; i <= 4; i++ {
			require.NoError(t, idx.Insert(IntKey(10), rid(1, i)))
		}
		// the duplicate leaf holds maxKeys occurrences.
		assert.ErrorIs(t, idx.Insert(IntKey(10), rid(1, 5)), ErrTooManyRecordsPerKey)
		assert.ErrorIs(t, idx.Insert(IntKey(10), rid(1, 3)), ErrDuplicateRecordID)
		assert.Equal(t, int32(4), idx.Header().NumRecs)
		assert.Len(t, scanRIDs(t, env.m, id, EQ, IntKey(10)), 4)
	})

	require.NoError(t, env.m.CloseIndex(id))
}

func TestStringAndRealKeys(t *testing.T) {
	t.Run("string", func(t *testing.T) {
		env := newTestEnv(t, 256)
		id, idx := env.openIndex(t, types.StringType, 10)

		words := []string{"pear", "apple", "fig", "banana", "cherry", "kiwi", "date", "grape",
			"lemon", "mango", "olive", "papaya", "quince", "lime", "melon", "nectarine"}
		for i, w := range words {
			require.NoError(t, idx.Insert([]byte(w), rid(2, i)))
		}
		assert.ErrorIs(t, idx.Insert([]byte("much too long"), rid(2, 99)), ErrInvalidArgument)

		var got []string
		for _, c := range scanAll(t, idx) {
			got = append(got, string(trimZero(c.Key)))
		}
		assert.Equal(t, []string{"apple", "banana", "cherry", "date", "fig", "grape", "kiwi", "lemon",
			"lime", "mango", "melon", "nectarine", "olive", "papaya", "pear", "quince"}, got)

		c, err := idx.FindExact(rid(2, 3), []byte("banana"))
		require.NoError(t, err)
		assert.Equal(t, rid(2, 3), c.RecordID)
		assert.Equal(t, StringKey("banana", 10), c.Key)

		assert.Equal(t, []types.RecordID{rid(2, 1), rid(2, 3)}, scanRIDs(t, env.m, id, LT, []byte("cherry")))
		require.NoError(t, env.m.CloseIndex(id))
	})

	t.Run("real", func(t *testing.T) {
		env := newTestEnv(t, 128)
		id, idx := env.openIndex(t, types.RealType, 4)

		values := []float32{3.5, -2.25, 0, 100.125, -50, 7.75, 1e-3, 42, -0.5, 9}
		for i, v := range values {
			require.NoError(t, idx.Insert(RealKey(v), rid(3, i)))
		}
		assert.Equal(t, []types.RecordID{rid(3, 4), rid(3, 1), rid(3, 8)}, scanRIDs(t, env.m, id, LT, RealKey(0)))
		assert.Len(t, scanRIDs(t, env.m, id, GE, RealKey(0)), 7)
		assert.Len(t, scanRIDs(t, env.m, id, NE, RealKey(42)), 9)
		require.NoError(t, env.m.CloseIndex(id))
	})
}

func trimZero(b []byte) []byte {
	for i, c := range b {
		if c == 0 {
			return b[:i]
		}
	}
	return b
}
