package temporal

import (
	"github.com/2x3systems/hyperfold/hyperfold"
	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/emirpasic/gods/utils"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

// span is a run of consecutive ticks [lo, hi] sharing one interned snapshot.
type span struct {
	lo, hi int64
	snap   *hyperfold.Snapshot
}

// rangeStore coalesces consecutive ticks holding equal snapshots into spans.
//
// Spans are keyed by their lo tick in a red-black tree, so the span containing a tick is the floor of that tick.
// When indexed is set, every tick additionally maps directly to its span.
type rangeStore struct {
	grid     hyperfold.Grid
	strategy hyperfold.StoreStrategy
	byLo     *redblacktree.Tree
	index    map[int64]*span
	interned interner
	numTicks int
}

func newRangeStore(grid hyperfold.Grid, indexed bool) *rangeStore {
	s := &rangeStore{
		grid:     grid,
		strategy: hyperfold.MemoryOptimized,
		byLo:     redblacktree.NewWith(utils.Int64Comparator),
		interned: newInterner(),
	}
	if indexed {
		s.strategy = hyperfold.SearchOptimized
		s.index = make(map[int64]*span)
	}
	return s
}

func (s *rangeStore) find(tick int64) *span {
	if s.index != nil {
		return s.index[tick]
	}
	node, found := s.byLo.Floor(tick)
	if !found {
		return nil
	}
	sp := node.Value.(*span)
	if sp.hi < tick {
		return nil
	}
	return sp
}

func (s *rangeStore) reindex(sp *span) {
	if s.index == nil {
		return
	}
	for tick := sp.lo; tick <= sp.hi; tick++ {
		s.index[tick] = sp
	}
}

func (s *rangeStore) Insert(snap *hyperfold.Snapshot, t hyperfold.Temp) (bool, error) {
	label := s.strategy.String()
	if snap == nil {
		InsertTotal.WithLabelValues(label, "rejected").Inc()
		return false, hyperfold.ErrNilSnapshot
	}
	tick, ok := s.grid.Tick(t)
	if !ok {
		InsertTotal.WithLabelValues(label, "rejected").Inc()
		return false, errors.Wrapf(hyperfold.ErrInvalidArgument, "temperature %v is off grid %v", t, s.grid.Resolution)
	}

	if held := s.find(tick); held != nil {
		if held.snap.Equal(snap) {
			InsertTotal.WithLabelValues(label, "duplicate").Inc()
			return false, nil
		}
		InsertTotal.WithLabelValues(label, "conflict").Inc()
		return false, errors.Wrapf(hyperfold.ErrConflictingSnapshot, "T=%v", t)
	}

	snap = s.interned.Intern(snap)

	left := s.find(tick - 1)
	if left != nil && left.snap != snap {
		left = nil
	}
	right := s.find(tick + 1)
	if right != nil && right.snap != snap {
		right = nil
	}

	var kind string
	switch {
	case left != nil && right != nil:
		kind = "bridge"
		s.byLo.Remove(right.lo)
		left.hi = right.hi
		s.reindex(left)
	case left != nil:
		kind = "extend_left"
		left.hi = tick
		s.reindex(left)
	case right != nil:
		kind = "extend_right"
		s.byLo.Remove(right.lo)
		right.lo = tick
		s.byLo.Put(right.lo, right)
		s.reindex(right)
	default:
		kind = "new"
		sp := &span{lo: tick, hi: tick, snap: snap}
		s.byLo.Put(sp.lo, sp)
		s.reindex(sp)
	}
	s.numTicks++

	klog.V(3).Infof("temporal/%s: T=%v placed (%s), %d ranges over %d temps", label, t, kind, s.byLo.Size(), s.numTicks)
	InsertTotal.WithLabelValues(label, "added").Inc()
	CoalesceTotal.WithLabelValues(label, kind).Inc()
	return true, nil
}

func (s *rangeStore) Get(t hyperfold.Temp) (*hyperfold.Snapshot, error) {
	if tick, ok := s.grid.Tick(t); ok {
		if sp := s.find(tick); sp != nil {
			LookupTotal.WithLabelValues(s.strategy.String(), "hit").Inc()
			return sp.snap, nil
		}
	}
	LookupTotal.WithLabelValues(s.strategy.String(), "miss").Inc()
	return nil, errors.Wrapf(hyperfold.ErrMissingSnapshot, "T=%v", t)
}

func (s *rangeStore) Exists(t hyperfold.Temp) bool {
	tick, ok := s.grid.Tick(t)
	return ok && s.find(tick) != nil
}

func (s *rangeStore) Ranges() []hyperfold.RangeEntry {
	entries := make([]hyperfold.RangeEntry, 0, s.byLo.Size())
	itr := s.byLo.Iterator()
	for itr.Next() {
		sp := itr.Value().(*span)
		entries = append(entries, hyperfold.RangeEntry{
			Range: hyperfold.TimeRange{
				Lo: s.grid.Temp(sp.lo),
				Hi: s.grid.Temp(sp.hi),
			},
			Snapshot: sp.snap,
		})
	}
	return entries
}

func (s *rangeStore) NumSnapshots() int {
	return s.interned.Len()
}

func (s *rangeStore) Len() int {
	return s.numTicks
}

func (s *rangeStore) Grid() hyperfold.Grid {
	return s.grid
}

func (s *rangeStore) Strategy() hyperfold.StoreStrategy {
	return s.strategy
}
