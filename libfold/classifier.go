package libfold

import (
	"sort"

	"github.com/2x3systems/hyperfold/hyperfold"
	"github.com/pkg/errors"
)

// Structural element kinds emitted by ElementClassifier.
const (
	StemKind       byte = 's'
	HairpinKind    byte = 'h'
	InteriorKind   byte = 'i'
	MultiloopKind  byte = 'm'
	FivePrimeKind  byte = 'f'
	ThreePrimeKind byte = 't'
)

// ElementClassifier decomposes a bracket string into stems, hairpins, interior loops (bulges included),
// multiloop / exterior segments and the two dangling tails.
//
// Elements are reported in order of their first nucleotide and numbered per kind in that order.
type ElementClassifier struct {
	Alphabet hyperfold.Alphabet // zero value denotes DefaultAlphabet
}

// PairTable returns partner[i] for each position, or -1 where i is unpaired.
// Unmatched opening brackets are treated as unpaired; an unmatched closing bracket is an ErrStructure.
func PairTable(dotbracket string, ab hyperfold.Alphabet) ([]int, error) {
	if ab == (hyperfold.Alphabet{}) {
		ab = hyperfold.DefaultAlphabet
	}

	partner := make([]int, len(dotbracket))
	stack := make([]int, 0, 16)
	for i := range partner {
		partner[i] = -1
		switch dotbracket[i] {
		case ab.Open:
			stack = append(stack, i)
		case ab.Close:
			if len(stack) == 0 {
				return nil, errors.Wrapf(hyperfold.ErrStructure, "unmatched closing bracket at %d", i)
			}
			j := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			partner[i] = j
			partner[j] = i
		case ab.Unpaired:
		default:
			return nil, errors.Wrapf(hyperfold.ErrStructure, "unexpected symbol %q at %d", dotbracket[i], i)
		}
	}
	return partner, nil
}

type element struct {
	kind  byte
	nodes []int // zero-based
}

// Classify implements hyperfold.Classifier.
func (c ElementClassifier) Classify(dotbracket string) ([]hyperfold.ElementLabel, error) {
	partner, err := PairTable(dotbracket, c.Alphabet)
	if err != nil {
		return nil, err
	}

	var elems []element
	emit := func(kind byte, nodes []int) {
		if len(nodes) > 0 {
			elems = append(elems, element{kind, nodes})
		}
	}

	// Stems: maximal runs of stacked pairs.  Each stem's innermost pair closes a loop.
	var inner [][2]int
	inStem := make([]bool, len(partner))
	for i, j := range partner {
		if j <= i || inStem[i] {
			continue
		}
		var front, back []int
		a, b := i, j
		for {
			inStem[a], inStem[b] = true, true
			front = append(front, a)
			back = append(back, b)
			if a+1 < b-1 && partner[a+1] == b-1 {
				a, b = a+1, b-1
				continue
			}
			break
		}
		for k := len(back) - 1; k >= 0; k-- {
			front = append(front, back[k])
		}
		emit(StemKind, front)
		inner = append(inner, [2]int{a, b})
	}

	// Loops closed by each stem
	for _, ab := range inner {
		segs, branches := loopSegments(partner, ab[0]+1, ab[1])
		switch branches {
		case 0:
			emit(HairpinKind, segs[0])
		case 1:
			emit(InteriorKind, append(segs[0], segs[1]...))
		default:
			for _, seg := range segs {
				emit(MultiloopKind, seg)
			}
		}
	}

	// Exterior loop
	segs, branches := loopSegments(partner, 0, len(partner))
	if branches == 0 {
		emit(FivePrimeKind, segs[0])
	} else {
		last := len(segs) - 1
		emit(FivePrimeKind, segs[0])
		for _, seg := range segs[1:last] {
			emit(MultiloopKind, seg)
		}
		emit(ThreePrimeKind, segs[last])
	}

	sort.SliceStable(elems, func(i, j int) bool {
		return elems[i].nodes[0] < elems[j].nodes[0]
	})

	counts := make(map[byte]int)
	labels := make([]hyperfold.ElementLabel, len(elems))
	for i, e := range elems {
		sort.Ints(e.nodes)
		nodes := make([]int, len(e.nodes))
		for k, n := range e.nodes {
			nodes[k] = n + 1
		}
		labels[i] = hyperfold.ElementLabel{
			Kind:     e.kind,
			Instance: counts[e.kind],
			Nodes:    nodes,
		}
		counts[e.kind]++
	}
	return labels, nil
}

// loopSegments walks [start, end) at one nesting level, returning the unpaired runs between
// enclosed branches (always branches+1 of them, possibly empty) and the number of branches.
func loopSegments(partner []int, start, end int) ([][]int, int) {
	segs := make([][]int, 1, 4)
	branches := 0
	for k := start; k < end; {
		if j := partner[k]; j > k {
			branches++
			segs = append(segs, nil)
			k = j + 1
			continue
		}
		last := len(segs) - 1
		segs[last] = append(segs[last], k)
		k++
	}
	return segs, branches
}
