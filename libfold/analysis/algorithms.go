package analysis

import "github.com/2x3systems/hyperfold/hyperfold"

// Algorithms implements hyperfold.GraphAlgorithms over the two-section of each snapshot.
type Algorithms struct{}

// New returns the default hyperfold.GraphAlgorithms.
func New() hyperfold.GraphAlgorithms {
	return Algorithms{}
}

func (Algorithms) Partition(snap *hyperfold.Snapshot) [][]int {
	return TwoSection(snap).Louvain()
}

func (Algorithms) Modularity(snap *hyperfold.Snapshot, parts [][]int) float64 {
	return TwoSection(snap).Modularity(parts)
}

func (Algorithms) Conductance(snap *hyperfold.Snapshot, subset []int) float64 {
	return TwoSection(snap).Conductance(subset)
}

func (Algorithms) SBetweenness(snap *hyperfold.Snapshot, s int) map[int]float64 {
	return Betweenness(SAdjacency(snap, s))
}
