// Package workspace wires a sequence, a fold oracle and a TemporalStore into one analysis session.
package workspace

import (
	"context"

	"github.com/2x3systems/hyperfold/hyperfold"
	"github.com/2x3systems/hyperfold/libfold"
	"github.com/2x3systems/hyperfold/libfold/analysis"
	"github.com/2x3systems/hyperfold/libfold/diff"
	"github.com/2x3systems/hyperfold/libfold/sweep"
	"github.com/2x3systems/hyperfold/libfold/temporal"
	"github.com/plan-systems/klog"
)

// Workspace holds everything known about the folds of one sequence.
type Workspace struct {
	Opts     hyperfold.WorkspaceOpts
	Producer *libfold.FoldProducer
	Store    hyperfold.TemporalStore
	Analyzed hyperfold.AnalyzedSet
	Sweep    *sweep.Driver
	Diff     *diff.Engine
}

// DefaultOpts returns opts for seq with a search-optimized store on a 1 degree grid.
func DefaultOpts(seq string) hyperfold.WorkspaceOpts {
	return hyperfold.WorkspaceOpts{
		Sequence: seq,
		Store: hyperfold.StoreOpts{
			Strategy:   hyperfold.SearchOptimized,
			Resolution: 1,
		},
	}
}

// New creates a Workspace; classifier may be nil.  Call Close() when done.
func New(opts hyperfold.WorkspaceOpts, oracle hyperfold.Oracle, classifier hyperfold.Classifier) (*Workspace, error) {
	producer, err := libfold.NewFoldProducer(opts.Sequence, oracle, classifier)
	if err != nil {
		return nil, err
	}
	store, err := temporal.New(opts.Store)
	if err != nil {
		return nil, err
	}
	analyzed := libfold.NewAnalyzedSet(store.Grid())
	driver, err := sweep.New(producer, store, analyzed, opts.Sweep)
	if err != nil {
		analyzed.Close()
		return nil, err
	}

	opts.Sequence = producer.Sequence
	opts.Sweep = driver.Opts()
	klog.V(1).Infof("workspace: %d nt, %v store, %d workers", len(opts.Sequence), store.Strategy(), opts.Sweep.Workers)

	return &Workspace{
		Opts:     opts,
		Producer: producer,
		Store:    store,
		Analyzed: analyzed,
		Sweep:    driver,
		Diff:     diff.NewEngine(driver, analysis.New()),
	}, nil
}

// SnapshotAt folds t if needed and returns its snapshot.
func (ws *Workspace) SnapshotAt(ctx context.Context, t hyperfold.Temp) (*hyperfold.Snapshot, error) {
	if _, err := ws.Sweep.InsertOne(ctx, t); err != nil {
		return nil, err
	}
	return ws.Store.Get(t)
}

// Analyst folds t if needed and returns an Analyst for it.
func (ws *Workspace) Analyst(ctx context.Context, t hyperfold.Temp) (*diff.Analyst, error) {
	return ws.Diff.AnalystAt(ctx, t)
}

// Close releases the analyzed set; later folds fail with ErrClosed.  The store remains readable.
func (ws *Workspace) Close() error {
	return ws.Sweep.Close()
}
