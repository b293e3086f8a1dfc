package libfold_test

import (
	"testing"

	"github.com/2x3systems/hyperfold/hyperfold"
	"github.com/2x3systems/hyperfold/libfold"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildHairpin(t *testing.T) {
	const (
		seq = "GGGAAACCC"
		db  = "(((...)))"
	)

	labels, err := libfold.ElementClassifier{}.Classify(db)
	require.NoError(t, err)

	snap, err := libfold.BuildSnapshot(db, labels, hyperfold.BuildOpts{Symbols: seq})
	require.NoError(t, err)

	dict := snap.IncidenceDict()
	for i := 0; i < 8; i++ {
		assert.Equal(t, []int{i, i + 1}, dict[hyperfold.SeqEdgeName(i)])
	}
	assert.Equal(t, []int{2, 6}, dict["db_0"])
	assert.Equal(t, []int{1, 7}, dict["db_1"])
	assert.Equal(t, []int{0, 8}, dict["db_2"])
	assert.Equal(t, []int{0, 1, 2, 6, 7, 8}, dict["s_0"])
	assert.Equal(t, []int{3, 4, 5}, dict["h_0"])
	assert.Len(t, dict, 8+3+2)

	assert.Equal(t, seq, snap.Symbols())
	assert.Equal(t, 9, snap.NumNodes())
}

func TestBuildIsDeterministic(t *testing.T) {
	const db = "..((..((...)).)).."
	labels, err := libfold.ElementClassifier{}.Classify(db)
	require.NoError(t, err)

	a, err := libfold.BuildSnapshot(db, labels, hyperfold.BuildOpts{})
	require.NoError(t, err)
	b, err := libfold.BuildSnapshot(db, labels, hyperfold.BuildOpts{})
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Edges(), b.Edges())
}

func TestBuildUnpaired(t *testing.T) {
	snap, err := libfold.BuildSnapshot("....", nil, hyperfold.BuildOpts{})
	require.NoError(t, err)
	assert.Len(t, snap.EdgesOfKind(hyperfold.SeqEdge), 3)
	assert.Empty(t, snap.EdgesOfKind(hyperfold.PairEdge))

	snap, err = libfold.BuildSnapshot("", nil, hyperfold.BuildOpts{})
	require.NoError(t, err)
	assert.Equal(t, 0, snap.NumEdges())
}

func TestBuildDropsSentinelNodes(t *testing.T) {
	labels := []hyperfold.ElementLabel{
		{Kind: 'f', Nodes: []int{0, 1, 2}},
		{Kind: 't', Nodes: []int{4, 5}},
	}
	snap, err := libfold.BuildSnapshot("....", labels, hyperfold.BuildOpts{})
	require.NoError(t, err)

	nodes, _ := snap.Edge("f_0")
	assert.Equal(t, []int{0, 1}, nodes)
	nodes, _ = snap.Edge("t_0")
	assert.Equal(t, []int{3}, nodes)
}

func TestBuildRunningStructCounts(t *testing.T) {
	labels := []hyperfold.ElementLabel{
		{Kind: 'm', Instance: 4, Nodes: []int{1}},
		{Kind: 'm', Instance: 0, Nodes: []int{2}},
		{Kind: 'h', Instance: 7, Nodes: []int{3}},
	}
	snap, err := libfold.BuildSnapshot("...", labels, hyperfold.BuildOpts{})
	require.NoError(t, err)

	for _, name := range []string{"m_0", "m_1", "h_0"} {
		_, found := snap.Edge(name)
		assert.True(t, found, name)
	}
}

func TestBuildRejectsMalformed(t *testing.T) {
	_, err := libfold.BuildSnapshot("(()))", nil, hyperfold.BuildOpts{})
	assert.True(t, errors.Is(err, hyperfold.ErrStructure))

	_, err = libfold.BuildSnapshot("(.x)", nil, hyperfold.BuildOpts{})
	assert.True(t, errors.Is(err, hyperfold.ErrStructure))

	_, err = libfold.BuildSnapshot("(..)", nil, hyperfold.BuildOpts{Symbols: "GAC"})
	assert.True(t, errors.Is(err, hyperfold.ErrStructure))

	_, err = libfold.BuildSnapshot("(..)", []hyperfold.ElementLabel{{Kind: 'l', Nodes: []int{1}}}, hyperfold.BuildOpts{})
	assert.True(t, errors.Is(err, hyperfold.ErrStructure))
}

func TestBuildToleratesUnclosedBracket(t *testing.T) {
	snap, err := libfold.BuildSnapshot("((..)", nil, hyperfold.BuildOpts{})
	require.NoError(t, err)

	pairs := snap.EdgesOfKind(hyperfold.PairEdge)
	require.Len(t, pairs, 1)
	assert.Equal(t, []int{1, 4}, pairs[0].Nodes)
}

func TestBuildCustomAlphabet(t *testing.T) {
	opts := hyperfold.BuildOpts{
		Alphabet: hyperfold.Alphabet{Open: '<', Close: '>', Unpaired: '-'},
	}
	snap, err := libfold.BuildSnapshot("<-->", nil, opts)
	require.NoError(t, err)

	nodes, found := snap.Edge("db_0")
	require.True(t, found)
	assert.Equal(t, []int{0, 3}, nodes)

	opts.Alphabet.Close = '<'
	_, err = libfold.BuildSnapshot("<-->", nil, opts)
	assert.True(t, errors.Is(err, hyperfold.ErrInvalidArgument))
}

func TestIncidenceBuilderSteps(t *testing.T) {
	b, err := libfold.NewIncidenceBuilder("(.)", hyperfold.BuildOpts{})
	require.NoError(t, err)

	b.ConnectToNext()
	snap, err := b.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 2, snap.NumEdges())

	require.NoError(t, b.DotBracketConnections())
	snap, err = b.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 3, snap.NumEdges())
}
