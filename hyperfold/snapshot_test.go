package hyperfold_test

import (
	"strings"
	"testing"

	"github.com/2x3systems/hyperfold/hyperfold"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hairpin(t *testing.T, extra ...hyperfold.Edge) *hyperfold.Snapshot {
	edges := []hyperfold.Edge{
		{Name: "l_0", Nodes: []int{0, 1}},
		{Name: "l_1", Nodes: []int{1, 2}},
		{Name: "l_2", Nodes: []int{2, 3}},
		{Name: "db_0", Nodes: []int{0, 3}},
		{Name: "s_0", Nodes: []int{3, 0}},
	}
	snap, err := hyperfold.NewSnapshot(4, "GAAC", append(edges, extra...))
	require.NoError(t, err)
	return snap
}

func TestSnapshotNormalizesNodes(t *testing.T) {
	snap, err := hyperfold.NewSnapshot(5, "", []hyperfold.Edge{
		{Name: "h_0", Nodes: []int{4, 2, 2, 3}},
	})
	require.NoError(t, err)

	nodes, found := snap.Edge("h_0")
	require.True(t, found)
	assert.Equal(t, []int{2, 3, 4}, nodes)
}

func TestSnapshotRejectsBadEdges(t *testing.T) {
	_, err := hyperfold.NewSnapshot(3, "", []hyperfold.Edge{{Name: "l_0", Nodes: []int{0, 3}}})
	assert.True(t, errors.Is(err, hyperfold.ErrInvalidArgument))

	_, err = hyperfold.NewSnapshot(3, "", []hyperfold.Edge{{Name: "l_0"}, {Name: "l_0"}})
	assert.True(t, errors.Is(err, hyperfold.ErrInvalidArgument))

	_, err = hyperfold.NewSnapshot(3, "GA", nil)
	assert.True(t, errors.Is(err, hyperfold.ErrInvalidArgument))
}

func TestSnapshotEqualIgnoresEdgeOrderAndSymbols(t *testing.T) {
	a := hairpin(t)

	b, err := hyperfold.NewSnapshot(4, "", []hyperfold.Edge{
		{Name: "s_0", Nodes: []int{0, 3}},
		{Name: "db_0", Nodes: []int{0, 3}},
		{Name: "l_2", Nodes: []int{2, 3}},
		{Name: "l_1", Nodes: []int{1, 2}},
		{Name: "l_0", Nodes: []int{0, 1}},
	})
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.True(t, b.Equal(a))
	assert.Equal(t, a.Digest(), b.Digest())
}

func TestSnapshotNotEqual(t *testing.T) {
	a := hairpin(t)
	b := hairpin(t, hyperfold.Edge{Name: "h_0", Nodes: []int{1, 2}})
	c := hairpin(t, hyperfold.Edge{Name: "h_0", Nodes: []int{1}})

	assert.False(t, a.Equal(b))
	assert.False(t, b.Equal(c))
	assert.False(t, a.Equal(nil))
}

func TestEdgeKinds(t *testing.T) {
	assert.Equal(t, hyperfold.SeqEdge, hyperfold.KindOfEdge("l_12"))
	assert.Equal(t, hyperfold.PairEdge, hyperfold.KindOfEdge("db_0"))
	assert.Equal(t, hyperfold.StructEdge, hyperfold.KindOfEdge("s_3"))
	assert.Equal(t, hyperfold.StructEdge, hyperfold.KindOfEdge("h_0"))

	assert.Equal(t, "l_4", hyperfold.SeqEdgeName(4))
	assert.Equal(t, "db_2", hyperfold.PairEdgeName(2))
	assert.Equal(t, "m_1", hyperfold.StructEdgeName('m', 1))

	snap := hairpin(t)
	assert.Len(t, snap.EdgesOfKind(hyperfold.SeqEdge), 3)
	assert.Len(t, snap.EdgesOfKind(hyperfold.PairEdge), 1)
	assert.Len(t, snap.EdgesOfKind(hyperfold.StructEdge), 1)
}

func TestDisplayDictDoesNotAffectEquality(t *testing.T) {
	snap := hairpin(t)

	display := snap.DisplayDict()
	assert.Equal(t, []string{"0_G", "3_C"}, display["db_0"])

	dict := snap.IncidenceDict()
	dict["db_0"][0] = 99
	nodes, _ := snap.Edge("db_0")
	assert.Equal(t, []int{0, 3}, nodes)

	assert.True(t, strings.Contains(snap.String(), "db_0"))
}
