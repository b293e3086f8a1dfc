package libfold

import (
	"github.com/2x3systems/hyperfold/hyperfold"
	"github.com/pkg/errors"
)

// IncidenceBuilder accumulates the hyperedges of a single fold.
// The steps must run in the fixed order ConnectToNext, DotBracketConnections, StructureConnections
// since l_ and db_ suffixes are issued from counters in creation order.
type IncidenceBuilder struct {
	dotbracket  string
	opts        hyperfold.BuildOpts
	edges       []hyperfold.Edge
	seqCount    int
	pairCount   int
	structCount map[byte]int
}

// NewIncidenceBuilder validates the bracket string against opts and readies a builder for it.
func NewIncidenceBuilder(dotbracket string, opts hyperfold.BuildOpts) (*IncidenceBuilder, error) {
	if opts.Alphabet == (hyperfold.Alphabet{}) {
		opts.Alphabet = hyperfold.DefaultAlphabet
	}
	ab := opts.Alphabet
	if ab.Open == ab.Close || ab.Open == ab.Unpaired || ab.Close == ab.Unpaired {
		return nil, errors.Wrapf(hyperfold.ErrInvalidArgument, "alphabet symbols must be distinct (%q %q %q)", ab.Open, ab.Close, ab.Unpaired)
	}
	if len(opts.Symbols) > 0 && len(opts.Symbols) != len(dotbracket) {
		return nil, errors.Wrapf(hyperfold.ErrStructure, "structure length %d does not match sequence length %d", len(dotbracket), len(opts.Symbols))
	}
	for i := 0; i < len(dotbracket); i++ {
		if c := dotbracket[i]; c != ab.Open && c != ab.Close && c != ab.Unpaired {
			return nil, errors.Wrapf(hyperfold.ErrStructure, "unexpected symbol %q at %d", c, i)
		}
	}

	return &IncidenceBuilder{
		dotbracket:  dotbracket,
		opts:        opts,
		edges:       make([]hyperfold.Edge, 0, 2*len(dotbracket)),
		structCount: make(map[byte]int),
	}, nil
}

// ConnectToNext links each nucleotide with its successor: l_i = {i, i+1}.
func (b *IncidenceBuilder) ConnectToNext() {
	for i := 0; i+1 < len(b.dotbracket); i++ {
		b.edges = append(b.edges, hyperfold.Edge{
			Name:  hyperfold.SeqEdgeName(b.seqCount),
			Nodes: []int{i, i + 1},
		})
		b.seqCount++
	}
}

// DotBracketConnections links each matched bracket pair: db_k = {open, close}, k issued in closing order.
// An unmatched closing bracket is an ErrStructure; unmatched opening brackets are left unpaired.
func (b *IncidenceBuilder) DotBracketConnections() error {
	ab := b.opts.Alphabet
	stack := make([]int, 0, 16)

	for i := 0; i < len(b.dotbracket); i++ {
		switch b.dotbracket[i] {
		case ab.Open:
			stack = append(stack, i)
		case ab.Close:
			if len(stack) == 0 {
				return errors.Wrapf(hyperfold.ErrStructure, "unmatched closing bracket at %d", i)
			}
			start := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			b.edges = append(b.edges, hyperfold.Edge{
				Name:  hyperfold.PairEdgeName(b.pairCount),
				Nodes: []int{start, i},
			})
			b.pairCount++
		}
	}
	return nil
}

// StructureConnections adds one edge per classifier element, named <kind>_<running count of kind>.
// Element nodes are one-based; 0 and len+1 are sentinels and are dropped along with anything out of range.
func (b *IncidenceBuilder) StructureConnections(labels []hyperfold.ElementLabel) error {
	L := len(b.dotbracket)

	for _, label := range labels {
		if !isStructKind(label.Kind) {
			return errors.Wrapf(hyperfold.ErrStructure, "bad element kind %q", label.Kind)
		}
		nodes := make([]int, 0, len(label.Nodes))
		for _, n := range label.Nodes {
			if n > 0 && n <= L {
				nodes = append(nodes, n-1)
			}
		}
		count := b.structCount[label.Kind]
		b.edges = append(b.edges, hyperfold.Edge{
			Name:  hyperfold.StructEdgeName(label.Kind, count),
			Nodes: nodes,
		})
		b.structCount[label.Kind] = count + 1
	}
	return nil
}

// isStructKind rejects letters that would collide with the l_ and db_ prefixes.
func isStructKind(kind byte) bool {
	if kind == hyperfold.SeqEdgePrefix[0] || kind == hyperfold.PairEdgePrefix[0] {
		return false
	}
	return (kind >= 'a' && kind <= 'z') || (kind >= 'A' && kind <= 'Z')
}

// Snapshot freezes the edges accumulated so far.
func (b *IncidenceBuilder) Snapshot() (*hyperfold.Snapshot, error) {
	return hyperfold.NewSnapshot(len(b.dotbracket), b.opts.Symbols, b.edges)
}

// BuildSnapshot runs all builder steps over one fold and its element labels.
// The same (dotbracket, labels) always yields an equal Snapshot with identical edge names.
func BuildSnapshot(dotbracket string, labels []hyperfold.ElementLabel, opts hyperfold.BuildOpts) (*hyperfold.Snapshot, error) {
	b, err := NewIncidenceBuilder(dotbracket, opts)
	if err != nil {
		return nil, err
	}
	b.ConnectToNext()
	if err = b.DotBracketConnections(); err != nil {
		return nil, err
	}
	if err = b.StructureConnections(labels); err != nil {
		return nil, err
	}
	return b.Snapshot()
}
