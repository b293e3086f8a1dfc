package libfold_test

import (
	"context"
	"testing"

	"github.com/2x3systems/hyperfold/hyperfold"
	"github.com/2x3systems/hyperfold/libfold"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// meltingOracle folds GGGAAACCC into a hairpin below 50 degrees and leaves it unpaired above.
var meltingOracle = libfold.OracleFunc(func(ctx context.Context, seq string, t hyperfold.Temp) (string, error) {
	if t < 50 {
		return "(((...)))", nil
	}
	return ".........", nil
})

func TestFoldProducer(t *testing.T) {
	ctx := context.Background()
	p, err := libfold.NewFoldProducer("gggaaaccc", meltingOracle, nil)
	require.NoError(t, err)
	assert.Equal(t, "GGGAAACCC", p.Sequence)

	cold, err := p.DefaultSnapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, cold.EdgesOfKind(hyperfold.PairEdge), 3)

	hot, err := p.SnapshotAt(ctx, 80)
	require.NoError(t, err)
	assert.Empty(t, hot.EdgesOfKind(hyperfold.PairEdge))
	nodes, found := hot.Edge("f_0")
	require.True(t, found)
	assert.Len(t, nodes, 9)

	assert.False(t, cold.Equal(hot))
}

func TestFoldProducerErrors(t *testing.T) {
	_, err := libfold.NewFoldProducer("  ", meltingOracle, nil)
	assert.True(t, errors.Is(err, hyperfold.ErrInvalidArgument))

	_, err = libfold.NewFoldProducer("GAC", nil, nil)
	assert.True(t, errors.Is(err, hyperfold.ErrInvalidArgument))

	short := libfold.OracleFunc(func(ctx context.Context, seq string, t hyperfold.Temp) (string, error) {
		return "(.)", nil
	})
	p, err := libfold.NewFoldProducer("GGGAAACCC", short, nil)
	require.NoError(t, err)
	_, err = p.SnapshotAt(context.Background(), 37)
	assert.True(t, errors.Is(err, hyperfold.ErrStructure))

	failing := libfold.OracleFunc(func(ctx context.Context, seq string, t hyperfold.Temp) (string, error) {
		return "", errors.Wrap(hyperfold.ErrFold, "no solution")
	})
	p, err = libfold.NewFoldProducer("GGGAAACCC", failing, nil)
	require.NoError(t, err)
	_, err = p.SnapshotAt(context.Background(), 37)
	assert.True(t, errors.Is(err, hyperfold.ErrFold))
}

func TestParseRNAfoldOutput(t *testing.T) {
	out := []byte("GGGAAACCC\n(((...))) ( -1.20)\n")
	db, err := libfold.ParseRNAfoldOutput(out, 9)
	require.NoError(t, err)
	assert.Equal(t, "(((...)))", db)

	out = []byte(">seq1\nGGGAAACCC\n.........  (  0.00)\n")
	db, err = libfold.ParseRNAfoldOutput(out, 9)
	require.NoError(t, err)
	assert.Equal(t, ".........", db)

	_, err = libfold.ParseRNAfoldOutput([]byte("GGGAAACCC\n"), 9)
	assert.True(t, errors.Is(err, hyperfold.ErrFold))
}

func TestRNAfoldOracleMissingBinary(t *testing.T) {
	o := libfold.RNAfoldOracle{Path: "/nonexistent/RNAfold"}
	_, err := o.Fold(context.Background(), "GGGAAACCC", 37)
	assert.True(t, errors.Is(err, hyperfold.ErrFold))

	_, err = o.Fold(context.Background(), "", 37)
	assert.True(t, errors.Is(err, hyperfold.ErrInvalidArgument))
}
