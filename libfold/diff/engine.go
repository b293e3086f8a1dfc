package diff

import (
	"context"

	"github.com/2x3systems/hyperfold/hyperfold"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
)

// Engine answers questions about how a fold changes over a temperature interval,
// sweeping any part of the interval not yet analyzed.
type Engine struct {
	sweeper hyperfold.Sweeper
	algo    hyperfold.GraphAlgorithms
}

// NewEngine returns an Engine over the given sweeper; algo may be nil if AnalystAt is never called.
func NewEngine(sweeper hyperfold.Sweeper, algo hyperfold.GraphAlgorithms) *Engine {
	return &Engine{
		sweeper: sweeper,
		algo:    algo,
	}
}

// interval ensures [start, end] is fully analyzed and returns each grid temperature in it alongside its snapshot.
func (e *Engine) interval(ctx context.Context, start, end hyperfold.Temp) ([]hyperfold.Temp, []*hyperfold.Snapshot, error) {
	store := e.sweeper.Store()
	grid := store.Grid()

	temps, err := grid.Span(hyperfold.TimeRange{Lo: start, Hi: end})
	if err != nil {
		return nil, nil, err
	}
	if _, err = e.sweeper.InsertMany(ctx, temps); err != nil {
		return nil, nil, err
	}

	snaps := make([]*hyperfold.Snapshot, len(temps))
	for i, t := range temps {
		if snaps[i], err = store.Get(t); err != nil {
			return nil, nil, err
		}
	}
	return temps, snaps, nil
}

// NucleotideSensitivity counts, per node, how many consecutive temperature steps in [start, end]
// moved it out of a structure it belonged to.  Steps whose snapshots are the same instance are skipped.
func (e *Engine) NucleotideSensitivity(ctx context.Context, start, end hyperfold.Temp) (map[int]int, error) {
	temps, snaps, err := e.interval(ctx, start, end)
	if err != nil {
		return nil, err
	}

	counts := make(map[int]int)
	for i := 1; i < len(snaps); i++ {
		if snaps[i-1] == snaps[i] {
			continue
		}
		changed, err := NucleotidesChanged(snaps[i-1], snaps[i])
		if err != nil {
			return nil, errors.Wrapf(err, "T=%v -> T=%v", temps[i-1], temps[i])
		}
		for _, n := range changed {
			counts[n]++
		}
	}
	klog.V(2).Infof("diff: sensitivity over [%v, %v]: %d nodes changed", start, end, len(counts))
	return counts, nil
}

// StructureDifferencesOver compares the snapshot at start against every later temperature up to end.
func (e *Engine) StructureDifferencesOver(ctx context.Context, start, end hyperfold.Temp) (map[hyperfold.Temp]map[byte]int, error) {
	temps, snaps, err := e.interval(ctx, start, end)
	if err != nil {
		return nil, err
	}

	diffs := make(map[hyperfold.Temp]map[byte]int, len(temps))
	for i := 1; i < len(snaps); i++ {
		d, err := StructureDifferences(snaps[0], snaps[i])
		if err != nil {
			return nil, errors.Wrapf(err, "T=%v -> T=%v", temps[0], temps[i])
		}
		diffs[temps[i]] = d
	}
	return diffs, nil
}

// ConnectionDifferencesOver compares the base pairs at start against every later temperature up to end.
// Temperatures sharing start's snapshot instance are omitted.
func (e *Engine) ConnectionDifferencesOver(ctx context.Context, start, end hyperfold.Temp) (map[hyperfold.Temp]ConnectionDiff, error) {
	temps, snaps, err := e.interval(ctx, start, end)
	if err != nil {
		return nil, err
	}

	diffs := make(map[hyperfold.Temp]ConnectionDiff)
	for i := 1; i < len(snaps); i++ {
		if snaps[i] == snaps[0] {
			continue
		}
		d, err := ConnectionDifferences(snaps[0], snaps[i])
		if err != nil {
			return nil, errors.Wrapf(err, "T=%v -> T=%v", temps[0], temps[i])
		}
		diffs[temps[i]] = d
	}
	return diffs, nil
}

// ConnectionSensitivity counts, per node, how often it appears in a removed or added pair
// relative to the snapshot at start.
func (e *Engine) ConnectionSensitivity(ctx context.Context, start, end hyperfold.Temp) (map[int]int, error) {
	diffs, err := e.ConnectionDifferencesOver(ctx, start, end)
	if err != nil {
		return nil, err
	}

	counts := make(map[int]int)
	for _, d := range diffs {
		for _, list := range [][]Connection{d.Removed, d.Added} {
			for _, c := range list {
				counts[c.Node]++
				counts[c.Partner]++
			}
		}
	}
	return counts, nil
}

// AnalystAt folds t if needed and returns an Analyst for its snapshot.
func (e *Engine) AnalystAt(ctx context.Context, t hyperfold.Temp) (*Analyst, error) {
	if _, err := e.sweeper.InsertOne(ctx, t); err != nil {
		return nil, err
	}
	snap, err := e.sweeper.Store().Get(t)
	if err != nil {
		return nil, err
	}
	return NewAnalyst(snap, e.algo)
}
