package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjections(t *testing.T) {
	g, err := Build([]Edge{
		{From: "a", To: "b", Weight: 1},
		{From: "a", To: "b", Weight: 2},
		{From: "b", To: "a", Weight: 4},
		{From: "b", To: "b", Weight: 5},
		{From: "b", To: "c", Weight: 1},
	}, nil)
	require.NoError(t, err)

	t.Run("directed sums parallel edges", func(t *testing.T) {
		dg := g.WeightedDirected()
		w, ok := dg.Weight(0, 1)
		assert.True(t, ok)
		assert.Equal(t, 3.0, w)
		w, ok = dg.Weight(1, 0)
		assert.True(t, ok)
		assert.Equal(t, 4.0, w)
		assert.Nil(t, dg.Edge(1, 1))
	})

	t.Run("undirected sums both directions", func(t *testing.T) {
		ug := g.WeightedUndirected()
		w, ok := ug.Weight(0, 1)
		assert.True(t, ok)
		assert.Equal(t, 7.0, w)
		assert.True(t, g.Undirected().HasEdgeBetween(1, 2))
		assert.False(t, g.Undirected().HasEdgeBetween(0, 2))
	})

	t.Run("adjacency keeps self-loops once", func(t *testing.T) {
		adj, weights := g.UndirectedAdjacency()
		assert.Equal(t, [][]int{{1}, {0, 1, 2}, {1}}, adj)
		assert.Equal(t, []float64{7, 5, 1}, weights[1])
	})

	assert.Equal(t, "c", g.NodeID(2))
	assert.Equal(t, "", g.NodeID(7))
}
