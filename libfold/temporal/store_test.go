package temporal_test

import (
	"math/rand"
	"testing"

	"github.com/2x3systems/hyperfold/hyperfold"
	"github.com/2x3systems/hyperfold/libfold/temporal"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var strategies = []hyperfold.StoreStrategy{
	hyperfold.Pointwise,
	hyperfold.MemoryOptimized,
	hyperfold.SearchOptimized,
}

// snapOf returns a fresh (never shared) snapshot whose identity is determined by id.
func snapOf(t *testing.T, id int) *hyperfold.Snapshot {
	snap, err := hyperfold.NewSnapshot(16, "", []hyperfold.Edge{
		{Name: "l_0", Nodes: []int{0, 1}},
		{Name: "h_0", Nodes: []int{id}},
	})
	require.NoError(t, err)
	return snap
}

func newStore(t *testing.T, strategy hyperfold.StoreStrategy, res hyperfold.Temp) hyperfold.TemporalStore {
	store, err := temporal.New(hyperfold.StoreOpts{Strategy: strategy, Resolution: res})
	require.NoError(t, err)
	require.Equal(t, strategy, store.Strategy())
	return store
}

func TestInsertAndGet(t *testing.T) {
	for _, strategy := range strategies {
		t.Run(strategy.String(), func(t *testing.T) {
			store := newStore(t, strategy, 0)

			added, err := store.Insert(snapOf(t, 1), 10)
			require.NoError(t, err)
			assert.True(t, added)

			snap, err := store.Get(10)
			require.NoError(t, err)
			assert.True(t, snap.Equal(snapOf(t, 1)))
			assert.True(t, store.Exists(10))
			assert.False(t, store.Exists(11))

			_, err = store.Get(11)
			assert.True(t, errors.Is(err, hyperfold.ErrMissingSnapshot))
			_, err = store.Get(10.5)
			assert.True(t, errors.Is(err, hyperfold.ErrMissingSnapshot))
		})
	}
}

func TestInsertIdempotentAndConflicting(t *testing.T) {
	for _, strategy := range strategies {
		t.Run(strategy.String(), func(t *testing.T) {
			store := newStore(t, strategy, 0)

			_, err := store.Insert(snapOf(t, 1), 10)
			require.NoError(t, err)

			added, err := store.Insert(snapOf(t, 1), 10)
			require.NoError(t, err)
			assert.False(t, added)
			assert.Equal(t, 1, store.Len())

			added, err = store.Insert(snapOf(t, 2), 10)
			assert.False(t, added)
			assert.True(t, errors.Is(err, hyperfold.ErrConflictingSnapshot))

			snap, err := store.Get(10)
			require.NoError(t, err)
			assert.True(t, snap.Equal(snapOf(t, 1)))
		})
	}
}

func TestInsertRejects(t *testing.T) {
	for _, strategy := range strategies {
		t.Run(strategy.String(), func(t *testing.T) {
			store := newStore(t, strategy, 0.5)

			_, err := store.Insert(nil, 10)
			assert.True(t, errors.Is(err, hyperfold.ErrNilSnapshot))

			_, err = store.Insert(snapOf(t, 1), 10.25)
			assert.True(t, errors.Is(err, hyperfold.ErrInvalidArgument))

			added, err := store.Insert(snapOf(t, 1), 10.5)
			require.NoError(t, err)
			assert.True(t, added)
			assert.Equal(t, 1, store.Len())
		})
	}
}

func TestNewRejectsBadOpts(t *testing.T) {
	_, err := temporal.New(hyperfold.StoreOpts{Strategy: 7})
	assert.True(t, errors.Is(err, hyperfold.ErrInvalidArgument))

	_, err = temporal.New(hyperfold.StoreOpts{Resolution: -1})
	assert.True(t, errors.Is(err, hyperfold.ErrInvalidArgument))
}

func TestCoalescing(t *testing.T) {
	for _, strategy := range []hyperfold.StoreStrategy{hyperfold.MemoryOptimized, hyperfold.SearchOptimized} {
		t.Run(strategy.String(), func(t *testing.T) {
			store := newStore(t, strategy, 0)

			for _, temp := range []hyperfold.Temp{10, 12, 11, 13} {
				_, err := store.Insert(snapOf(t, 1), temp)
				require.NoError(t, err)
			}
			_, err := store.Insert(snapOf(t, 2), 14)
			require.NoError(t, err)
			_, err = store.Insert(snapOf(t, 1), 15)
			require.NoError(t, err)

			ranges := store.Ranges()
			require.Len(t, ranges, 3)
			assert.Equal(t, hyperfold.TimeRange{Lo: 10, Hi: 13}, ranges[0].Range)
			assert.Equal(t, hyperfold.TimeRange{Lo: 14, Hi: 14}, ranges[1].Range)
			assert.Equal(t, hyperfold.TimeRange{Lo: 15, Hi: 15}, ranges[2].Range)

			// [10,13] and [15,15] share one retained instance
			assert.Same(t, ranges[0].Snapshot, ranges[2].Snapshot)
			assert.Equal(t, 2, store.NumSnapshots())
			assert.Equal(t, 6, store.Len())
			assert.Len(t, temporal.Collapse(store), 2)
		})
	}
}

func TestPointwiseDoesNotCoalesce(t *testing.T) {
	store := newStore(t, hyperfold.Pointwise, 0)
	snap := snapOf(t, 1)
	for _, temp := range []hyperfold.Temp{12, 10, 11} {
		_, err := store.Insert(snap, temp)
		require.NoError(t, err)
	}

	ranges := store.Ranges()
	require.Len(t, ranges, 3)
	assert.Equal(t, hyperfold.TimeRange{Lo: 10, Hi: 10}, ranges[0].Range)
	assert.Equal(t, hyperfold.TimeRange{Lo: 12, Hi: 12}, ranges[2].Range)
	assert.Equal(t, 1, store.NumSnapshots())
}

// checkRanges verifies ranges are ordered, disjoint and maximal, and agree with Get.
func checkRanges(t *testing.T, store hyperfold.TemporalStore, want map[int]int) {
	ranges := store.Ranges()
	total := 0
	for i, entry := range ranges {
		r := entry.Range
		require.LessOrEqual(t, r.Lo, r.Hi)
		if i > 0 {
			prev := ranges[i-1]
			require.Less(t, prev.Range.Hi, r.Lo, "ranges %v and %v overlap", prev.Range, r)
			if store.Strategy() != hyperfold.Pointwise && prev.Range.Hi+1 == r.Lo {
				require.False(t, prev.Snapshot.Equal(entry.Snapshot), "adjacent ranges %v and %v should have merged", prev.Range, r)
			}
		}
		temps, err := store.Grid().Span(r)
		require.NoError(t, err)
		for _, temp := range temps {
			id, ok := want[int(temp)]
			require.True(t, ok, "T=%v was never inserted", temp)
			require.True(t, entry.Snapshot.Equal(snapOf(t, id)))
		}
		total += len(temps)
	}
	require.Equal(t, len(want), total)
	require.Equal(t, len(want), store.Len())

	for temp, id := range want {
		snap, err := store.Get(hyperfold.Temp(temp))
		require.NoError(t, err)
		require.True(t, snap.Equal(snapOf(t, id)))
	}
}

func TestRandomInsertOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for _, strategy := range strategies {
		t.Run(strategy.String(), func(t *testing.T) {
			for trial := 0; trial < 20; trial++ {
				// piecewise-constant assignment over [0, 60) with a few distinct snapshots
				want := make(map[int]int)
				id := 0
				for temp := 0; temp < 60; temp++ {
					if rng.Intn(6) == 0 {
						id = rng.Intn(4)
					}
					if rng.Intn(5) != 0 {
						want[temp] = id
					}
				}
				order := make([]int, 0, len(want))
				for temp := range want {
					order = append(order, temp)
				}
				rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

				store := newStore(t, strategy, 0)
				for _, temp := range order {
					added, err := store.Insert(snapOf(t, want[temp]), hyperfold.Temp(temp))
					require.NoError(t, err)
					require.True(t, added)
				}
				checkRanges(t, store, want)
				if strategy != hyperfold.Pointwise {
					assert.LessOrEqual(t, store.NumSnapshots(), 4)
				}
			}
		})
	}
}
