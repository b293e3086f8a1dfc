// Package diff compares fold snapshots: which structures, base pairs and nucleotides changed between them.
package diff

import (
	"sort"

	"github.com/2x3systems/hyperfold/hyperfold"
	"github.com/pkg/errors"
)

// checkComparable returns an error unless a and b can be compared.
func checkComparable(a, b *hyperfold.Snapshot) error {
	if a == nil || b == nil {
		return hyperfold.ErrNilSnapshot
	}
	if a.NumNodes() != b.NumNodes() {
		return errors.Wrapf(hyperfold.ErrIncompatibleComparison, "%d nodes vs %d nodes", a.NumNodes(), b.NumNodes())
	}
	return nil
}

// SecondaryStructures returns the structural edges of snap (everything but l_ and db_ edges).
func SecondaryStructures(snap *hyperfold.Snapshot) map[string][]int {
	structs := make(map[string][]int)
	for _, e := range snap.EdgesOfKind(hyperfold.StructEdge) {
		structs[e.Name] = append([]int(nil), e.Nodes...)
	}
	return structs
}

// structureCounts tallies structural edges by kind letter.
func structureCounts(snap *hyperfold.Snapshot) map[byte]int {
	counts := make(map[byte]int)
	for _, e := range snap.EdgesOfKind(hyperfold.StructEdge) {
		counts[e.Name[0]]++
	}
	return counts
}

// StructureDifferences returns, for each structure kind whose count differs, count in a minus count in b.
// A kind present in only one snapshot is reported with its full (signed) count, so
// StructureDifferences(b, a) is always the negation of StructureDifferences(a, b).
func StructureDifferences(a, b *hyperfold.Snapshot) (map[byte]int, error) {
	if err := checkComparable(a, b); err != nil {
		return nil, err
	}
	diffs := make(map[byte]int)
	if a == b {
		return diffs, nil
	}

	countA := structureCounts(a)
	countB := structureCounts(b)
	for kind, n := range countA {
		if delta := n - countB[kind]; delta != 0 {
			diffs[kind] = delta
		}
	}
	for kind, n := range countB {
		if _, seen := countA[kind]; !seen {
			diffs[kind] = -n
		}
	}
	return diffs, nil
}

// NucleotidesChanged lists, for each structural edge name present in both a and b,
// the nodes of a's edge missing from b's.  Edges are visited in a's creation order.
func NucleotidesChanged(a, b *hyperfold.Snapshot) ([]int, error) {
	if err := checkComparable(a, b); err != nil {
		return nil, err
	}
	if a == b {
		return nil, nil
	}

	var changed []int
	for _, e := range a.EdgesOfKind(hyperfold.StructEdge) {
		other, found := b.Edge(e.Name)
		if !found {
			continue
		}
		for _, n := range e.Nodes {
			i := sort.SearchInts(other, n)
			if i == len(other) || other[i] != n {
				changed = append(changed, n)
			}
		}
	}
	return changed, nil
}
