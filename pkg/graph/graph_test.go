package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fiveNodeGraph(t *testing.T) *Graph {
	t.Helper()
	g, err := Build([]Edge{
		{From: "A", To: "B", Weight: 1},
		{From: "B", To: "C", Weight: 1},
		{From: "C", To: "A", Weight: 2},
		{From: "D", To: "E", Weight: 1},
		{From: "C", To: "D", Weight: 1},
		{From: "A", To: "B", Weight: 3},
	}, nil)
	require.NoError(t, err)
	return g
}

func TestBuild(t *testing.T) {
	t.Run("implicit nodes in first-seen order", func(t *testing.T) {
		g := fiveNodeGraph(t)
		assert.Equal(t, []string{"A", "B", "C", "D", "E"}, g.Nodes())
		assert.Equal(t, 6, g.NumEdges())
		assert.InDelta(t, 9.0, g.TotalWeight(), 1e-12)
	})

	t.Run("strict node table", func(t *testing.T) {
		g, err := Build(
			[]Edge{{From: "x", To: "y", Weight: 1}},
			[]Node{{ID: "y", Attributes: map[string]any{"label": "Y"}}, {ID: "x"}, {ID: "z"}},
		)
		require.NoError(t, err)
		assert.Equal(t, []string{"y", "x", "z"}, g.Nodes())
		v, ok := g.Attribute("y", "label")
		assert.True(t, ok)
		assert.Equal(t, "Y", v)
		_, ok = g.Attribute("x", "label")
		assert.False(t, ok)
		assert.Equal(t, []string{"label"}, g.AttributeNames())
	})

	t.Run("strict rejects unknown endpoint", func(t *testing.T) {
		_, err := Build([]Edge{{From: "x", To: "q", Weight: 1}}, []Node{{ID: "x"}})
		assert.ErrorIs(t, err, ErrUnknownNode)
		assert.Contains(t, err.Error(), "edge 0")
	})

	t.Run("empty table is strict", func(t *testing.T) {
		_, err := Build([]Edge{{From: "x", To: "y", Weight: 1}}, []Node{})
		assert.ErrorIs(t, err, ErrUnknownNode)
	})

	t.Run("duplicate node", func(t *testing.T) {
		_, err := Build(nil, []Node{{ID: "a"}, {ID: "a"}})
		assert.ErrorIs(t, err, ErrDuplicateNode)
	})

	t.Run("empty id", func(t *testing.T) {
		_, err := Build([]Edge{{From: "", To: "a"}}, nil)
		assert.ErrorIs(t, err, ErrEmptyNodeID)
	})
}

func TestAttributesAreCopied(t *testing.T) {
	attrs := map[string]any{"k": 1.0}
	g := New()
	require.NoError(t, g.AddNode("a", attrs))
	attrs["k"] = 2.0

	got := g.Attributes("a")
	assert.Equal(t, 1.0, got["k"])
	got["k"] = 3.0
	v, _ := g.Attribute("a", "k")
	assert.Equal(t, 1.0, v)
}

func TestIndexOf(t *testing.T) {
	g := fiveNodeGraph(t)
	assert.Equal(t, 2, g.IndexOf("C"))
	assert.Equal(t, -1, g.IndexOf("missing"))
	assert.True(t, g.HasNode("E"))
	assert.False(t, g.HasNode("F"))
}

func TestFingerprint(t *testing.T) {
	a := fiveNodeGraph(t)
	b := fiveNodeGraph(t)
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	c, err := Build([]Edge{{From: "A", To: "B", Weight: 1.5}}, nil)
	require.NoError(t, err)
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())

	// Node boundaries are part of the hash.
	d, err := Build(nil, []Node{{ID: "ab"}, {ID: "c"}})
	require.NoError(t, err)
	e, err := Build(nil, []Node{{ID: "a"}, {ID: "bc"}})
	require.NoError(t, err)
	assert.NotEqual(t, d.Fingerprint(), e.Fingerprint())
}
