package diff

import (
	"sort"
	"sync"

	"github.com/2x3systems/hyperfold/hyperfold"
	"github.com/pkg/errors"
)

// Analyst answers structural and community questions about a single snapshot.
// Partitions are computed once, on first use.
type Analyst struct {
	snap  *hyperfold.Snapshot
	algo  hyperfold.GraphAlgorithms
	once  sync.Once
	parts [][]int
}

func NewAnalyst(snap *hyperfold.Snapshot, algo hyperfold.GraphAlgorithms) (*Analyst, error) {
	if snap == nil {
		return nil, hyperfold.ErrNilSnapshot
	}
	if algo == nil {
		return nil, errors.Wrap(hyperfold.ErrInvalidArgument, "no graph algorithms given")
	}
	return &Analyst{
		snap: snap,
		algo: algo,
	}, nil
}

func (a *Analyst) Snapshot() *hyperfold.Snapshot {
	return a.snap
}

func (a *Analyst) SecondaryStructures() map[string][]int {
	return SecondaryStructures(a.snap)
}

// Partitions returns the communities of this snapshot ordered by their lowest node.
func (a *Analyst) Partitions() [][]int {
	a.once.Do(func() {
		var parts [][]int
		for _, p := range a.algo.Partition(a.snap) {
			if len(p) > 0 {
				p = append([]int(nil), p...)
				sort.Ints(p)
				parts = append(parts, p)
			}
		}
		sort.Slice(parts, func(i, j int) bool {
			return parts[i][0] < parts[j][0]
		})
		a.parts = parts
	})
	return a.parts
}

// Partition returns the n-th community (zero-based).
func (a *Analyst) Partition(n int) ([]int, error) {
	parts := a.Partitions()
	if n < 0 || n >= len(parts) {
		return nil, errors.Wrapf(hyperfold.ErrInvalidArgument, "partition %d of %d", n, len(parts))
	}
	return parts[n], nil
}

func (a *Analyst) Modularity() float64 {
	return a.algo.Modularity(a.snap, a.Partitions())
}

func (a *Analyst) SubsetConductance(subset []int) float64 {
	return a.algo.Conductance(a.snap, subset)
}

// PartitionsConductance returns the conductance of each community, in Partitions() order.
func (a *Analyst) PartitionsConductance() []float64 {
	parts := a.Partitions()
	out := make([]float64, len(parts))
	for i, p := range parts {
		out[i] = a.algo.Conductance(a.snap, p)
	}
	return out
}

func (a *Analyst) SBetweenness(s int) map[int]float64 {
	return a.algo.SBetweenness(a.snap, s)
}

func (a *Analyst) StructureDifferences(other *hyperfold.Snapshot) (map[byte]int, error) {
	return StructureDifferences(a.snap, other)
}

func (a *Analyst) ConnectionDifferences(other *hyperfold.Snapshot) (ConnectionDiff, error) {
	return ConnectionDifferences(a.snap, other)
}

func (a *Analyst) NucleotidesChanged(other *hyperfold.Snapshot) ([]int, error) {
	return NucleotidesChanged(a.snap, other)
}
