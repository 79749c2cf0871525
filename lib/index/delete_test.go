package index

import (
	"testing"

	"github.com/lintang-b-s/minirel/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDelete(t *testing.T) {
	env := newTestEnv(t, 128)
	id, idx := env.openIndex(t, types.IntType, 4)
	fillInts(t, idx, 30)
	nodes := idx.Header().NumNodes

	err := idx.Delete(IntKey(100), rid(100, 0))
	assert.ErrorIs(t, err, ErrKeyNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, idx.Delete(IntKey(0), rid(0, 0)), ErrKeyNotFound)

	err = idx.Delete(IntKey(5), rid(5, 1))
	assert.ErrorIs(t, err, ErrRecordNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int32(30), idx.Header().NumRecs)

	for v := int32(1); v <= 30; v += 2 {
		require.NoError(t, idx.Delete(IntKey(v), rid(int(v), 0)))
	}
	assert.Equal(t, int32(15), idx.Header().NumRecs)
	assert.Equal(t, nodes, idx.Header().NumNodes, "delete never frees nodes")

	var evens []int32
	for v := int32(2); v <= 30; v += 2 {
		evens = append(evens, v)
	}
	assert.Equal(t, evens, scanInts(t, idx))

	assert.ErrorIs(t, idx.Delete(IntKey(7), rid(7, 0)), ErrKeyNotFound)
	_, err = idx.FindExact(rid(7, 0), IntKey(7))
	assert.ErrorIs(t, err, ErrKeyNotFound)

	t.Run("duplicates", func(t *testing.T) {
		for i := 1; i <= 4; i++ {
			require.NoError(t, idx.Insert(IntKey(12), rid(12, i)))
		}
		assert.ErrorIs(t, idx.Delete(IntKey(12), rid(12, 9)), ErrRecordNotFound)
		require.NoError(t, idx.Delete(IntKey(12), rid(12, 2)))
		assert.Equal(t, []types.RecordID{rid(12, 0), rid(12, 1), rid(12, 3), rid(12, 4)},
			scanRIDs(t, env.m, id, EQ, IntKey(12)))

		for _, s := range []int{0, 1, 3, 4} {
			require.NoError(t, idx.Delete(IntKey(12), rid(12, s)))
		}
		assert.Empty(t, scanRIDs(t, env.m, id, EQ, IntKey(12)))

		// the emptied duplicate leaf takes keys again.
		require.NoError(t, idx.Insert(IntKey(12), rid(12, 5)))
		require.NoError(t, idx.Insert(IntKey(13), rid(13, 0)))
		assert.Equal(t, []types.RecordID{rid(12, 5)}, scanRIDs(t, env.m, id, EQ, IntKey(12)))
		checkTree(t, env.m, id)
	})

	require.NoError(t, env.m.CloseIndex(id))
}

func TestDeleteUnderOpenScan(t *testing.T) {
	env := newTestEnv(t, 128)
	id, idx := env.openIndex(t, types.IntType, 4)
	fillInts(t, idx, 20)

	sd, err := env.m.OpenScan(id, EQ, nil)
	require.NoError(t, err)
	next := func() int32 {
		r, err := env.m.FindNext(sd)
		require.NoError(t, err)
		return r.PageNum
	}

	var got []int32
	got = append(got, next())
	// current entry, first slot of its leaf.
	require.NoError(t, idx.Delete(IntKey(1), rid(1, 0)))
	got = append(got, next(), next())
	// entry behind the cursor.
	require.NoError(t, idx.Delete(IntKey(2), rid(2, 0)))
	got = append(got, next())
	// entry ahead of the cursor in the next leaf.
	require.NoError(t, idx.Delete(IntKey(5), rid(5, 0)))

	for {
		r, err := env.m.FindNext(sd)
		if err != nil {
			require.ErrorIs(t, err, ErrEOF)
			break
		}
		got = append(got, r.PageNum)
	}
	assert.Equal(t, append([]int32{1, 2, 3, 4}, seq(6, 20)...), got)

	t.Run("other scans on the same leaf", func(t *testing.T) {
		a, err := env.m.OpenScan(id, GE, IntKey(6))
		require.NoError(t, err)
		b, err := env.m.OpenScan(id, GE, IntKey(6))
		require.NoError(t, err)

		r, err := env.m.FindNext(a)
		require.NoError(t, err)
		assert.Equal(t, int32(6), r.PageNum)
		r, err = env.m.FindNext(b)
		require.NoError(t, err)
		assert.Equal(t, int32(6), r.PageNum)

		require.NoError(t, idx.Delete(IntKey(6), rid(6, 0)))
		r, err = env.m.FindNext(a)
		require.NoError(t, err)
		assert.Equal(t, int32(7), r.PageNum)
		r, err = env.m.FindNext(b)
		require.NoError(t, err)
		assert.Equal(t, int32(7), r.PageNum)

		require.NoError(t, env.m.CloseScan(a))
		require.NoError(t, env.m.CloseScan(b))
	})

	require.NoError(t, env.m.CloseScan(sd))
	require.NoError(t, env.m.CloseIndex(id))
}
