package diff

import (
	"fmt"
	"sort"

	"github.com/2x3systems/hyperfold/hyperfold"
)

// Connection is a base pair keyed by its first (lower) node.
type Connection struct {
	Node    int
	Partner int
}

func (c Connection) String() string {
	return fmt.Sprintf("(%d, %d)", c.Node, c.Partner)
}

// ConnectionDiff holds the base pairs lost and gained going from one snapshot to another.
type ConnectionDiff struct {
	Removed []Connection
	Added   []Connection
}

// IsEmpty reports if no pair changed.
func (d ConnectionDiff) IsEmpty() bool {
	return len(d.Removed) == 0 && len(d.Added) == 0
}

// pairMap maps the first node of every db_ edge to its partner.
func pairMap(snap *hyperfold.Snapshot) map[int]int {
	pairs := make(map[int]int)
	for _, e := range snap.EdgesOfKind(hyperfold.PairEdge) {
		if len(e.Nodes) == 2 {
			pairs[e.Nodes[0]] = e.Nodes[1]
		}
	}
	return pairs
}

func sortConnections(conns []Connection) {
	sort.Slice(conns, func(i, j int) bool {
		if conns[i].Node != conns[j].Node {
			return conns[i].Node < conns[j].Node
		}
		return conns[i].Partner < conns[j].Partner
	})
}

// ConnectionDifferences compares the base pairs of a against b.
//
// A pair of a is removed if its first node is unpaired in b or pairs with a different partner there;
// in the latter case b's pair is also recorded as added.  Pairs of b whose first node is unpaired in a are not reported.
// Both lists are ordered by node.
func ConnectionDifferences(a, b *hyperfold.Snapshot) (ConnectionDiff, error) {
	var diff ConnectionDiff
	if err := checkComparable(a, b); err != nil {
		return diff, err
	}
	if a == b {
		return diff, nil
	}

	pairsA := pairMap(a)
	pairsB := pairMap(b)
	for node, partner := range pairsA {
		other, found := pairsB[node]
		switch {
		case !found:
			diff.Removed = append(diff.Removed, Connection{node, partner})
		case other != partner:
			diff.Removed = append(diff.Removed, Connection{node, partner})
			diff.Added = append(diff.Added, Connection{node, other})
		}
	}

	sortConnections(diff.Removed)
	sortConnections(diff.Added)
	return diff, nil
}

// ConnectionChange is a first node that switched partners.
type ConnectionChange struct {
	From Connection
	To   Connection
}

// ChangedConnections lists every pair, across all diffs, whose first node switched to a different partner.
// Output is ordered by temperature, then node.
func ChangedConnections(diffs map[hyperfold.Temp]ConnectionDiff) []ConnectionChange {
	var changes []ConnectionChange
	for _, t := range sortedTemps(diffs) {
		d := diffs[t]
		added := make(map[int]Connection, len(d.Added))
		for _, c := range d.Added {
			added[c.Node] = c
		}
		for _, old := range d.Removed {
			if to, found := added[old.Node]; found {
				changes = append(changes, ConnectionChange{From: old, To: to})
			}
		}
	}
	return changes
}

// CreatedConnections returns the distinct added pairs whose first node was not paired before.
func CreatedConnections(diffs map[hyperfold.Temp]ConnectionDiff) []Connection {
	return unmatched(diffs, func(d ConnectionDiff) ([]Connection, []Connection) {
		return d.Added, d.Removed
	})
}

// DeletedConnections returns the distinct removed pairs whose first node is no longer paired.
func DeletedConnections(diffs map[hyperfold.Temp]ConnectionDiff) []Connection {
	return unmatched(diffs, func(d ConnectionDiff) ([]Connection, []Connection) {
		return d.Removed, d.Added
	})
}

// unmatched collects the connections of one side whose first node does not appear on the other side.
func unmatched(diffs map[hyperfold.Temp]ConnectionDiff, sides func(ConnectionDiff) ([]Connection, []Connection)) []Connection {
	set := make(map[Connection]struct{})
	for _, d := range diffs {
		these, others := sides(d)
		nodes := make(map[int]struct{}, len(others))
		for _, c := range others {
			nodes[c.Node] = struct{}{}
		}
		for _, c := range these {
			if _, found := nodes[c.Node]; !found {
				set[c] = struct{}{}
			}
		}
	}

	out := make([]Connection, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sortConnections(out)
	return out
}

func sortedTemps[V any](m map[hyperfold.Temp]V) []hyperfold.Temp {
	temps := make([]hyperfold.Temp, 0, len(m))
	for t := range m {
		temps = append(temps, t)
	}
	hyperfold.SortTemps(temps)
	return temps
}
