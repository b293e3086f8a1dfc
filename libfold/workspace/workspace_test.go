package workspace_test

import (
	"context"
	"testing"

	"github.com/2x3systems/hyperfold/hyperfold"
	"github.com/2x3systems/hyperfold/libfold"
	"github.com/2x3systems/hyperfold/libfold/workspace"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var oracle = libfold.OracleFunc(func(ctx context.Context, seq string, t hyperfold.Temp) (string, error) {
	if t < 60 {
		return "((((...))))", nil
	}
	return "...........", nil
})

func TestWorkspace(t *testing.T) {
	ws, err := workspace.New(workspace.DefaultOpts("gggcaaagccc"), oracle, nil)
	require.NoError(t, err)
	defer ws.Close()

	ctx := context.Background()
	assert.Equal(t, "GGGCAAAGCCC", ws.Opts.Sequence)
	assert.Greater(t, ws.Opts.Sweep.Workers, 0)

	snap, err := ws.SnapshotAt(ctx, hyperfold.DefaultTemp)
	require.NoError(t, err)
	assert.Len(t, snap.EdgesOfKind(hyperfold.PairEdge), 4)

	report, err := ws.Sweep.InsertRange(ctx, 50, 70, 1)
	require.NoError(t, err)
	assert.Len(t, report.Computed, 21)
	assert.Len(t, ws.Store.Ranges(), 3) // {37}, [50,59], [60,70]
	assert.Equal(t, 2, ws.Store.NumSnapshots())

	analyst, err := ws.Analyst(ctx, 37)
	require.NoError(t, err)
	assert.NotEmpty(t, analyst.Partitions())

	counts, err := ws.Diff.NucleotideSensitivity(ctx, 55, 65)
	require.NoError(t, err)
	assert.Empty(t, counts) // hairpin and unpaired share no structure names
}

func TestClosedWorkspace(t *testing.T) {
	ws, err := workspace.New(workspace.DefaultOpts("GGGCAAAGCCC"), oracle, nil)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = ws.SnapshotAt(ctx, 40)
	require.NoError(t, err)
	require.NoError(t, ws.Close())

	_, err = ws.SnapshotAt(ctx, 40)
	assert.True(t, errors.Is(err, hyperfold.ErrClosed))
	_, err = ws.Sweep.InsertOne(ctx, 41)
	assert.True(t, errors.Is(err, hyperfold.ErrClosed))

	// folds made before Close stay readable
	snap, err := ws.Store.Get(40)
	require.NoError(t, err)
	assert.Len(t, snap.EdgesOfKind(hyperfold.PairEdge), 4)
	assert.NoError(t, ws.Close())
}

func TestWorkspaceRejectsBadOpts(t *testing.T) {
	_, err := workspace.New(workspace.DefaultOpts(""), oracle, nil)
	assert.True(t, errors.Is(err, hyperfold.ErrInvalidArgument))

	opts := workspace.DefaultOpts("GAC")
	opts.Store.Resolution = -1
	_, err = workspace.New(opts, oracle, nil)
	assert.True(t, errors.Is(err, hyperfold.ErrInvalidArgument))

	opts = workspace.DefaultOpts("GAC")
	opts.Sweep.Workers = -2
	_, err = workspace.New(opts, oracle, nil)
	assert.True(t, errors.Is(err, hyperfold.ErrInvalidArgument))
}
