package libfold

import (
	"context"
	"strings"

	"github.com/2x3systems/hyperfold/hyperfold"
	"github.com/pkg/errors"
)

// FoldProducer turns a sequence into a Snapshot at any temperature: fold, classify, build.
type FoldProducer struct {
	Sequence   string
	Oracle     hyperfold.Oracle
	Classifier hyperfold.Classifier // nil denotes ElementClassifier{}
}

// NewFoldProducer validates seq and returns a producer for it.
func NewFoldProducer(seq string, oracle hyperfold.Oracle, classifier hyperfold.Classifier) (*FoldProducer, error) {
	seq = strings.ToUpper(strings.TrimSpace(seq))
	if len(seq) == 0 {
		return nil, errors.Wrap(hyperfold.ErrInvalidArgument, "empty sequence")
	}
	if oracle == nil {
		return nil, errors.Wrap(hyperfold.ErrInvalidArgument, "no fold oracle")
	}
	if classifier == nil {
		classifier = ElementClassifier{}
	}
	return &FoldProducer{
		Sequence:   seq,
		Oracle:     oracle,
		Classifier: classifier,
	}, nil
}

// SnapshotAt implements hyperfold.IncidenceProducer.
func (p *FoldProducer) SnapshotAt(ctx context.Context, t hyperfold.Temp) (*hyperfold.Snapshot, error) {
	dotbracket, err := p.Oracle.Fold(ctx, p.Sequence, t)
	if err != nil {
		return nil, err
	}
	if len(dotbracket) != len(p.Sequence) {
		return nil, errors.Wrapf(hyperfold.ErrStructure, "fold at T=%v has length %d, expected %d", t, len(dotbracket), len(p.Sequence))
	}

	classifier := p.Classifier
	if classifier == nil {
		classifier = ElementClassifier{}
	}
	labels, err := classifier.Classify(dotbracket)
	if err != nil {
		return nil, errors.Wrapf(err, "classify fold at T=%v", t)
	}

	snap, err := BuildSnapshot(dotbracket, labels, hyperfold.BuildOpts{Symbols: p.Sequence})
	if err != nil {
		return nil, errors.Wrapf(err, "build fold at T=%v", t)
	}
	return snap, nil
}

// DefaultSnapshot is the snapshot at hyperfold.DefaultTemp.
func (p *FoldProducer) DefaultSnapshot(ctx context.Context) (*hyperfold.Snapshot, error) {
	return p.SnapshotAt(ctx, hyperfold.DefaultTemp)
}
