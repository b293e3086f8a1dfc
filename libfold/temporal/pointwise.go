package temporal

import (
	"sort"

	"github.com/2x3systems/hyperfold/hyperfold"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

// pointwiseStore keeps one entry per tick, with no coalescing.
type pointwiseStore struct {
	grid  hyperfold.Grid
	snaps map[int64]*hyperfold.Snapshot
	refs  map[*hyperfold.Snapshot]int
}

func newPointwiseStore(grid hyperfold.Grid) *pointwiseStore {
	return &pointwiseStore{
		grid:  grid,
		snaps: make(map[int64]*hyperfold.Snapshot),
		refs:  make(map[*hyperfold.Snapshot]int),
	}
}

func (s *pointwiseStore) Insert(snap *hyperfold.Snapshot, t hyperfold.Temp) (bool, error) {
	label := hyperfold.Pointwise.String()
	if snap == nil {
		InsertTotal.WithLabelValues(label, "rejected").Inc()
		return false, hyperfold.ErrNilSnapshot
	}
	tick, ok := s.grid.Tick(t)
	if !ok {
		InsertTotal.WithLabelValues(label, "rejected").Inc()
		return false, errors.Wrapf(hyperfold.ErrInvalidArgument, "temperature %v is off grid %v", t, s.grid.Resolution)
	}

	if held, exists := s.snaps[tick]; exists {
		if held.Equal(snap) {
			InsertTotal.WithLabelValues(label, "duplicate").Inc()
			return false, nil
		}
		InsertTotal.WithLabelValues(label, "conflict").Inc()
		return false, errors.Wrapf(hyperfold.ErrConflictingSnapshot, "T=%v", t)
	}

	s.snaps[tick] = snap
	s.refs[snap]++
	klog.V(3).Infof("temporal/%s: T=%v placed, %d temps", label, t, len(s.snaps))
	InsertTotal.WithLabelValues(label, "added").Inc()
	CoalesceTotal.WithLabelValues(label, "new").Inc()
	return true, nil
}

func (s *pointwiseStore) Get(t hyperfold.Temp) (*hyperfold.Snapshot, error) {
	if tick, ok := s.grid.Tick(t); ok {
		if snap, exists := s.snaps[tick]; exists {
			LookupTotal.WithLabelValues(hyperfold.Pointwise.String(), "hit").Inc()
			return snap, nil
		}
	}
	LookupTotal.WithLabelValues(hyperfold.Pointwise.String(), "miss").Inc()
	return nil, errors.Wrapf(hyperfold.ErrMissingSnapshot, "T=%v", t)
}

func (s *pointwiseStore) Exists(t hyperfold.Temp) bool {
	tick, ok := s.grid.Tick(t)
	if !ok {
		return false
	}
	_, exists := s.snaps[tick]
	return exists
}

// Ranges returns one single-temperature range per entry.
func (s *pointwiseStore) Ranges() []hyperfold.RangeEntry {
	ticks := make([]int64, 0, len(s.snaps))
	for tick := range s.snaps {
		ticks = append(ticks, tick)
	}
	sort.Slice(ticks, func(i, j int) bool { return ticks[i] < ticks[j] })

	entries := make([]hyperfold.RangeEntry, len(ticks))
	for i, tick := range ticks {
		t := s.grid.Temp(tick)
		entries[i] = hyperfold.RangeEntry{
			Range:    hyperfold.TimeRange{Lo: t, Hi: t},
			Snapshot: s.snaps[tick],
		}
	}
	return entries
}

func (s *pointwiseStore) NumSnapshots() int {
	return len(s.refs)
}

func (s *pointwiseStore) Len() int {
	return len(s.snaps)
}

func (s *pointwiseStore) Grid() hyperfold.Grid {
	return s.grid
}

func (s *pointwiseStore) Strategy() hyperfold.StoreStrategy {
	return hyperfold.Pointwise
}
