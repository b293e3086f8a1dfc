package libfold

import (
	"strings"

	"github.com/2x3systems/hyperfold/hyperfold"
	"github.com/pkg/errors"
)

// ParseElementString reads the two-line element string of an external structure annotator:
// one element letter per nucleotide and, beneath it, one instance digit per nucleotide.
//
// Positions sharing a (letter, digit) pair form one element.  Elements are returned in order of first appearance.
func ParseElementString(letters, numbers string) ([]hyperfold.ElementLabel, error) {
	letters = strings.TrimSpace(letters)
	numbers = strings.TrimSpace(numbers)
	if len(letters) != len(numbers) {
		return nil, errors.Wrapf(hyperfold.ErrStructure, "element string has %d letters but %d numbers", len(letters), len(numbers))
	}

	type key struct {
		kind  byte
		digit byte
	}
	index := make(map[key]int)
	var labels []hyperfold.ElementLabel

	for i := 0; i < len(letters); i++ {
		k := key{letters[i], numbers[i]}
		if !isStructKind(k.kind) {
			return nil, errors.Wrapf(hyperfold.ErrStructure, "bad element letter %q at %d", k.kind, i)
		}
		if k.digit < '0' || k.digit > '9' {
			return nil, errors.Wrapf(hyperfold.ErrStructure, "bad element number %q at %d", k.digit, i)
		}
		idx, found := index[k]
		if !found {
			idx = len(labels)
			index[k] = idx
			labels = append(labels, hyperfold.ElementLabel{
				Kind:     k.kind,
				Instance: int(k.digit - '0'),
			})
		}
		labels[idx].Nodes = append(labels[idx].Nodes, i+1)
	}
	return labels, nil
}

// FormatElementString is the inverse of ParseElementString for labels covering n nucleotides.
// Uncovered positions are rendered as spaces; instance numbers are written modulo 10.
func FormatElementString(labels []hyperfold.ElementLabel, n int) (letters, numbers string) {
	lbuf := []byte(strings.Repeat(" ", n))
	nbuf := []byte(strings.Repeat(" ", n))
	for _, label := range labels {
		for _, node := range label.Nodes {
			if node > 0 && node <= n {
				lbuf[node-1] = label.Kind
				nbuf[node-1] = byte('0' + label.Instance%10)
			}
		}
	}
	return string(lbuf), string(nbuf)
}
