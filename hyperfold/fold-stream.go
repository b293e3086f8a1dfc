package hyperfold

import "context"

// FoldResult carries one completed (or failed) fold through a FoldStream.
type FoldResult struct {
	T     Temp
	Snap  *Snapshot
	Added bool  // set by AddTo once Snap was stored
	Err   error // fold or insert failure
}

// FoldStream is a channel of fold results; ownership of each result travels through the channel.
type FoldStream struct {
	Outlet chan FoldResult
}

func NewFoldStream(bufSz int) *FoldStream {
	return &FoldStream{
		Outlet: make(chan FoldResult, bufSz),
	}
}

func (stream *FoldStream) Close() {
	if stream.Outlet != nil {
		close(stream.Outlet)
	}
}

// Push sends r downstream, returning false if ctx was cancelled first.
func (stream *FoldStream) Push(ctx context.Context, r FoldResult) bool {
	select {
	case stream.Outlet <- r:
		return true
	case <-ctx.Done():
		return false
	}
}

// AddTo inserts each successful result into target and forwards every result (with Added / Err set) downstream.
// The returned stream's goroutine is the only writer to target for the life of this stream.
func (stream *FoldStream) AddTo(target TemporalStore) *FoldStream {
	next := NewFoldStream(cap(stream.Outlet))

	go func() {
		for r := range stream.Outlet {
			if r.Err == nil {
				r.Added, r.Err = target.Insert(r.Snap, r.T)
			}
			next.Outlet <- r
		}
		next.Close()
	}()

	return next
}

// PullAll drains this stream, returning every result in arrival order.
func (stream *FoldStream) PullAll() []FoldResult {
	var results []FoldResult
	for r := range stream.Outlet {
		results = append(results, r)
	}
	return results
}
