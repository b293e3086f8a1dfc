package temporal

import "github.com/2x3systems/hyperfold/hyperfold"

// interner maps equal snapshots onto a single retained instance.
// Candidates are bucketed by digest and then compared exactly.
type interner struct {
	buckets map[uint64][]*hyperfold.Snapshot
	count   int
}

func newInterner() interner {
	return interner{
		buckets: make(map[uint64][]*hyperfold.Snapshot),
	}
}

// Intern returns the retained instance equal to snap, retaining snap itself if none is.
func (in *interner) Intern(snap *hyperfold.Snapshot) *hyperfold.Snapshot {
	digest := snap.Digest()
	bucket := in.buckets[digest]
	for _, held := range bucket {
		if held.Equal(snap) {
			return held
		}
	}
	in.buckets[digest] = append(bucket, snap)
	in.count++
	InternedTotal.Inc()
	return snap
}

// Len returns the number of retained instances.
func (in *interner) Len() int {
	return in.count
}
