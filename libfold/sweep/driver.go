// Package sweep folds a sequence across many temperatures in parallel and feeds the results into a TemporalStore.
package sweep

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/2x3systems/hyperfold/hyperfold"
	"github.com/2x3systems/hyperfold/libfold"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
	"golang.org/x/sync/errgroup"
)

// Driver implements hyperfold.Sweeper.
//
// Folds run on up to SweepOpts.Workers goroutines; their results flow through a FoldStream whose
// single consumer is the only writer to the store.  Concurrent sweep requests on one Driver are serialized.
type Driver struct {
	mu       sync.Mutex
	producer hyperfold.IncidenceProducer
	store    hyperfold.TemporalStore
	analyzed hyperfold.AnalyzedSet
	opts     hyperfold.SweepOpts
	closed   bool
}

// New returns a Driver that folds with producer into store, tracking progress in analyzed.
// If analyzed is nil, a new set over the store's grid is used.
func New(producer hyperfold.IncidenceProducer, store hyperfold.TemporalStore, analyzed hyperfold.AnalyzedSet, opts hyperfold.SweepOpts) (*Driver, error) {
	if producer == nil || store == nil {
		return nil, errors.Wrap(hyperfold.ErrInvalidArgument, "sweep needs a producer and a store")
	}
	if opts.Workers < 0 {
		return nil, errors.Wrapf(hyperfold.ErrInvalidArgument, "workers %d", opts.Workers)
	}
	if opts.Workers == 0 {
		opts.Workers = runtime.NumCPU()
	}
	if analyzed == nil {
		analyzed = libfold.NewAnalyzedSet(store.Grid())
	}

	return &Driver{
		producer: producer,
		store:    store,
		analyzed: analyzed,
		opts:     opts,
	}, nil
}

func (d *Driver) Store() hyperfold.TemporalStore {
	return d.store
}

func (d *Driver) Analyzed() hyperfold.AnalyzedSet {
	return d.analyzed
}

func (d *Driver) Opts() hyperfold.SweepOpts {
	return d.opts
}

// Close releases the analyzed set.  Further sweeps fail with ErrClosed; the store remains readable.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true
	return d.analyzed.Close()
}

// InsertOne folds t unless already analyzed, returning true if a new snapshot was computed and stored.
func (d *Driver) InsertOne(ctx context.Context, t hyperfold.Temp) (bool, error) {
	report, err := d.InsertMany(ctx, []hyperfold.Temp{t})
	if err != nil {
		return false, err
	}
	if len(report.Failed) > 0 {
		return false, report.Failed[0].Err
	}
	return len(report.Computed) > 0, nil
}

// InsertRange sweeps start, start+step, .. end (inclusive).
func (d *Driver) InsertRange(ctx context.Context, start, end, step hyperfold.Temp) (*hyperfold.SweepReport, error) {
	temps, err := hyperfold.ExpandRange(start, end, step)
	if err != nil {
		return nil, err
	}
	return d.InsertMany(ctx, temps)
}

// InsertExpr sweeps the temperatures named by a sweep expression such as "10..40:2, 55".
func (d *Driver) InsertExpr(ctx context.Context, expr string) (*hyperfold.SweepReport, error) {
	temps, err := libfold.ParseSweepExpr(expr)
	if err != nil {
		return nil, err
	}
	return d.InsertMany(ctx, temps)
}

// InsertMany folds every temperature in temps not already analyzed.
//
// Every temperature must lie on the store's grid or nothing is dispatched.
// Unless SkipFailures is set, the first failed fold or insert cancels the sweep and is returned;
// snapshots stored before the failure remain stored and analyzed.
func (d *Driver) InsertMany(ctx context.Context, temps []hyperfold.Temp) (*hyperfold.SweepReport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, errors.Wrap(hyperfold.ErrClosed, "sweep driver")
	}

	grid := d.store.Grid()
	report := &hyperfold.SweepReport{}

	ticks := make(map[int64]struct{}, len(temps))
	for _, t := range temps {
		tick, ok := grid.Tick(t)
		if !ok {
			return nil, errors.Wrapf(hyperfold.ErrInvalidArgument, "temperature %v is off grid %v", t, grid.Resolution)
		}
		if _, dupe := ticks[tick]; dupe {
			continue
		}
		ticks[tick] = struct{}{}
		report.Requested = append(report.Requested, grid.Temp(tick))
	}
	hyperfold.SortTemps(report.Requested)

	var pending []hyperfold.Temp
	for _, t := range report.Requested {
		if d.analyzed.Contains(t) {
			report.Cached = append(report.Cached, t)
		} else {
			pending = append(pending, t)
		}
	}
	FoldsTotal.WithLabelValues("cached").Add(float64(len(report.Cached)))
	if len(pending) == 0 {
		return report, nil
	}

	start := time.Now()
	err := d.sweep(ctx, pending, report)
	SweepDuration.Observe(time.Since(start).Seconds())

	hyperfold.SortTemps(report.Computed)
	hyperfold.SortTemps(report.Cached)
	sort.Slice(report.Failed, func(i, j int) bool { return report.Failed[i].T < report.Failed[j].T })
	klog.Infof("sweep: %d requested, %d computed, %d cached, %d failed (%v)",
		len(report.Requested), len(report.Computed), len(report.Cached), len(report.Failed), time.Since(start).Round(time.Millisecond))

	return report, err
}

func (d *Driver) sweep(ctx context.Context, pending []hyperfold.Temp, report *hyperfold.SweepReport) error {
	skip := d.opts.SkipFailures

	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.opts.Workers)

	folded := hyperfold.NewFoldStream(d.opts.Workers)
	stored := folded.AddTo(d.store)

	// Sole consumer of stored results; runs until the stream closes.
	var insertErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		for r := range stored.Outlet {
			switch {
			case r.Err == nil && !r.Added:
				// already stored by another path
				d.analyzed.Add(r.T)
				report.Cached = append(report.Cached, r.T)
				FoldsTotal.WithLabelValues("cached").Inc()
			case r.Err == nil:
				d.analyzed.Add(r.T)
				report.Computed = append(report.Computed, r.T)
				FoldsTotal.WithLabelValues("computed").Inc()
			case skip:
				klog.Warningf("sweep: T=%v failed: %v", r.T, r.Err)
				report.Failed = append(report.Failed, hyperfold.FoldFailure{T: r.T, Err: r.Err})
				FoldsTotal.WithLabelValues("failed").Inc()
			default:
				FoldsTotal.WithLabelValues("failed").Inc()
				if insertErr == nil {
					insertErr = errors.Wrapf(r.Err, "store T=%v", r.T)
					cancel()
				}
			}
		}
	}()

	for _, t := range pending {
		t := t
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			snap, err := d.producer.SnapshotAt(gctx, t)
			FoldDuration.Observe(time.Since(start).Seconds())

			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				err = errors.Wrapf(err, "fold T=%v", t)
				if !skip {
					FoldsTotal.WithLabelValues("failed").Inc()
					return err
				}
				snap = nil
			} else {
				klog.V(2).Infof("sweep: T=%v folded (%d edges)", t, snap.NumEdges())
			}

			if !folded.Push(gctx, hyperfold.FoldResult{T: t, Snap: snap, Err: err}) {
				return gctx.Err()
			}
			return nil
		})
	}

	err := g.Wait()
	folded.Close()
	<-done

	switch {
	case insertErr != nil:
		return insertErr
	case err != nil:
		return err
	case parent.Err() != nil:
		return errors.Wrapf(parent.Err(), "sweep interrupted after %d of %d folds", len(report.Computed), len(pending))
	}
	return nil
}
