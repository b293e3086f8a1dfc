// Package temporal holds snapshots keyed by temperature, coalescing runs of equal snapshots into ranges.
package temporal

import (
	"github.com/2x3systems/hyperfold/hyperfold"
	"github.com/pkg/errors"
)

// New returns an empty TemporalStore using the strategy and grid given in opts.
func New(opts hyperfold.StoreOpts) (hyperfold.TemporalStore, error) {
	grid, err := hyperfold.NewGrid(opts.Resolution)
	if err != nil {
		return nil, err
	}

	switch opts.Strategy {
	case hyperfold.Pointwise:
		return newPointwiseStore(grid), nil
	case hyperfold.MemoryOptimized:
		return newRangeStore(grid, false), nil
	case hyperfold.SearchOptimized:
		return newRangeStore(grid, true), nil
	}
	return nil, errors.Wrapf(hyperfold.ErrInvalidArgument, "unknown store strategy %v", opts.Strategy)
}

// Collapse returns the distinct snapshots held in store, in order of first appearance by temperature.
func Collapse(store hyperfold.TemporalStore) []*hyperfold.Snapshot {
	var out []*hyperfold.Snapshot
	seen := make(map[*hyperfold.Snapshot]struct{})
	for _, entry := range store.Ranges() {
		if _, dupe := seen[entry.Snapshot]; dupe {
			continue
		}
		seen[entry.Snapshot] = struct{}{}
		out = append(out, entry.Snapshot)
	}
	return out
}
