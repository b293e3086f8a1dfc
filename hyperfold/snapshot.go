package hyperfold

import (
	"encoding/binary"
	"fmt"
	"hash/maphash"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Edge is a named hyperedge and the node indices it touches (ascending, no repeats).
type Edge struct {
	Name  string
	Nodes []int
}

// EdgeKind is the naming category of an Edge.
type EdgeKind byte

const (
	SeqEdge    EdgeKind = iota // l_<n>: i -- i+1
	PairEdge                   // db_<n>: base pair
	StructEdge                 // <kind>_<n>: classifier element
)

// KindOfEdge returns the category implied by an edge name.
func KindOfEdge(name string) EdgeKind {
	switch {
	case strings.HasPrefix(name, PairEdgePrefix):
		return PairEdge
	case strings.HasPrefix(name, SeqEdgePrefix):
		return SeqEdge
	}
	return StructEdge
}

func SeqEdgeName(n int) string {
	return SeqEdgePrefix + "_" + strconv.Itoa(n)
}

func PairEdgeName(n int) string {
	return PairEdgePrefix + "_" + strconv.Itoa(n)
}

func StructEdgeName(kind byte, n int) string {
	return string([]byte{kind, '_'}) + strconv.Itoa(n)
}

// digestSeed is fixed for the life of the process so digests are comparable across snapshots.
var digestSeed = maphash.MakeSeed()

// Snapshot is the immutable hypergraph incidence structure for one fold.
// A Snapshot and the node slices it hands out must never be mutated; any change produces a new Snapshot.
type Snapshot struct {
	numNodes int
	symbols  string
	edges    []Edge
	byName   map[string]int
	digest   uint64
}

// NewSnapshot validates and normalizes the given edges into a new Snapshot.
// Node lists are copied, sorted and deduplicated; edge order is preserved.
func NewSnapshot(numNodes int, symbols string, edges []Edge) (*Snapshot, error) {
	if numNodes < 0 {
		return nil, errors.Wrapf(ErrInvalidArgument, "node count %d", numNodes)
	}
	if len(symbols) > 0 && len(symbols) != numNodes {
		return nil, errors.Wrapf(ErrInvalidArgument, "%d symbols given for %d nodes", len(symbols), numNodes)
	}

	snap := &Snapshot{
		numNodes: numNodes,
		symbols:  symbols,
		edges:    make([]Edge, len(edges)),
		byName:   make(map[string]int, len(edges)),
	}

	for i, e := range edges {
		if len(e.Name) == 0 {
			return nil, errors.Wrapf(ErrInvalidArgument, "edge #%d has no name", i)
		}
		if _, dupe := snap.byName[e.Name]; dupe {
			return nil, errors.Wrapf(ErrInvalidArgument, "duplicate edge name %q", e.Name)
		}
		nodes := append([]int(nil), e.Nodes...)
		sort.Ints(nodes)
		nodes = dedupeSorted(nodes)
		for _, n := range nodes {
			if n < 0 || n >= numNodes {
				return nil, errors.Wrapf(ErrInvalidArgument, "edge %q: node %d out of range [0,%d)", e.Name, n, numNodes)
			}
		}
		snap.edges[i] = Edge{Name: e.Name, Nodes: nodes}
		snap.byName[e.Name] = i
	}

	snap.digest = maphash.Bytes(digestSeed, snap.AppendEncoding(nil))
	return snap, nil
}

func dedupeSorted(nodes []int) []int {
	if len(nodes) < 2 {
		return nodes
	}
	out := nodes[:1]
	for _, n := range nodes[1:] {
		if n != out[len(out)-1] {
			out = append(out, n)
		}
	}
	return out
}

// AppendEncoding appends a canonical encoding of this snapshot to dst.
// Two snapshots are Equal iff their encodings are byte-identical; symbols are not encoded.
func (snap *Snapshot) AppendEncoding(dst []byte) []byte {
	order := make([]int, len(snap.edges))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		return snap.edges[order[i]].Name < snap.edges[order[j]].Name
	})

	dst = binary.AppendUvarint(dst, uint64(snap.numNodes))
	for _, i := range order {
		e := &snap.edges[i]
		dst = append(dst, e.Name...)
		dst = append(dst, 0)
		dst = binary.AppendUvarint(dst, uint64(len(e.Nodes)))
		for _, n := range e.Nodes {
			dst = binary.AppendUvarint(dst, uint64(n))
		}
	}
	return dst
}

// Digest is a hash of the canonical encoding.  Equal snapshots have equal digests.
func (snap *Snapshot) Digest() uint64 {
	return snap.digest
}

// Equal reports if both snapshots have the same node count and the same edge name -> node set mapping.
func (snap *Snapshot) Equal(other *Snapshot) bool {
	if snap == other {
		return true
	}
	if snap == nil || other == nil {
		return false
	}
	if snap.numNodes != other.numNodes || len(snap.edges) != len(other.edges) || snap.digest != other.digest {
		return false
	}
	for _, e := range snap.edges {
		nodes, found := other.Edge(e.Name)
		if !found || !equalNodes(e.Nodes, nodes) {
			return false
		}
	}
	return true
}

func equalNodes(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// NumNodes returns the sequence length this snapshot was built for.
func (snap *Snapshot) NumNodes() int {
	return snap.numNodes
}

// Symbols returns the sequence, if one was given at build time.
func (snap *Snapshot) Symbols() string {
	return snap.symbols
}

func (snap *Snapshot) NumEdges() int {
	return len(snap.edges)
}

// Edges returns all edges in creation order.  Node slices are shared and must not be modified.
func (snap *Snapshot) Edges() []Edge {
	return append([]Edge(nil), snap.edges...)
}

// EdgesOfKind returns the edges of the given category in creation order.
func (snap *Snapshot) EdgesOfKind(kind EdgeKind) []Edge {
	var out []Edge
	for _, e := range snap.edges {
		if KindOfEdge(e.Name) == kind {
			out = append(out, e)
		}
	}
	return out
}

// Edge returns the nodes of the named edge.  The slice is shared and must not be modified.
func (snap *Snapshot) Edge(name string) ([]int, bool) {
	i, found := snap.byName[name]
	if !found {
		return nil, false
	}
	return snap.edges[i].Nodes, true
}

// IncidenceDict returns a fresh edge name -> nodes map.
func (snap *Snapshot) IncidenceDict() map[string][]int {
	dict := make(map[string][]int, len(snap.edges))
	for _, e := range snap.edges {
		dict[e.Name] = append([]int(nil), e.Nodes...)
	}
	return dict
}

// DisplayDict returns the incidence with each node rendered as "<index>_<symbol>".
// Without symbols, nodes are rendered as their index alone.
func (snap *Snapshot) DisplayDict() map[string][]string {
	dict := make(map[string][]string, len(snap.edges))
	for _, e := range snap.edges {
		labels := make([]string, len(e.Nodes))
		for i, n := range e.Nodes {
			labels[i] = snap.NodeLabel(n)
		}
		dict[e.Name] = labels
	}
	return dict
}

// NodeLabel renders node n for display.
func (snap *Snapshot) NodeLabel(n int) string {
	if n >= 0 && n < len(snap.symbols) {
		return strconv.Itoa(n) + "_" + snap.symbols[n:n+1]
	}
	return strconv.Itoa(n)
}

// WriteAsString writes one edge per line, in creation order.
func (snap *Snapshot) WriteAsString(out io.Writer) {
	fmt.Fprintf(out, "nodes: %d, edges: %d\n", snap.numNodes, len(snap.edges))
	for _, e := range snap.edges {
		fmt.Fprintf(out, "%6s: %v\n", e.Name, e.Nodes)
	}
}

func (snap *Snapshot) String() string {
	b := strings.Builder{}
	snap.WriteAsString(&b)
	return b.String()
}
