package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilchrisn/graph-community-filter/pkg/centrality"
	cgraph "github.com/gilchrisn/graph-community-filter/pkg/graph"
	"github.com/gilchrisn/graph-community-filter/pkg/membership"
	"github.com/gilchrisn/graph-community-filter/pkg/palette"
)

func fixture(t *testing.T) (*cgraph.Graph, membership.Assignment, palette.ColorMap) {
	t.Helper()
	g, err := cgraph.Build([]cgraph.Edge{
		{From: "A", To: "B", Weight: 1},
		{From: "B", To: "C", Weight: 2},
		{From: "A", To: "B", Weight: 1},
		{From: "C", To: "D", Weight: 1},
	}, nil)
	require.NoError(t, err)
	a := membership.Assignment{"A": 0, "B": 0, "C": 0, "D": 1}
	return g, a, palette.Assign([]int{0}, 1)
}

func TestBuild(t *testing.T) {
	g, a, colors := fixture(t)
	data := Build(g, colors, a, DefaultBuildOptions())

	require.Len(t, data.Nodes, 3, "D has no colour and is omitted")
	assert.Equal(t, Node{ID: "A", Label: "0", Community: 0, Color: "#ff0000", Opacity: 1, Size: 8}, data.Nodes[0])
	assert.Equal(t, []Edge{
		{Source: "A", Target: "B", Weight: 1},
		{Source: "B", Target: "C", Weight: 2},
		{Source: "A", Target: "B", Weight: 1},
	}, data.Edges)
	assert.False(t, data.IsEmpty())
}

func TestBuildSizesByPageRank(t *testing.T) {
	g, a, colors := fixture(t)
	pr := &centrality.PageRankResult{
		Scores:   map[string]float64{"A": 0.1, "B": 0.2, "C": 0.3},
		MinScore: 0.1,
		MaxScore: 0.3,
	}
	opts := DefaultBuildOptions()
	opts.PageRank = pr

	data := Build(g, colors, a, opts)
	assert.InDelta(t, 8.0, data.Nodes[0].Size, 1e-9)
	assert.InDelta(t, 24.0, data.Nodes[1].Size, 1e-9)
	assert.InDelta(t, 40.0, data.Nodes[2].Size, 1e-9)
}

func TestCytoscapeJSON(t *testing.T) {
	g, a, colors := fixture(t)
	data := Build(g, colors, a, DefaultBuildOptions())

	out, err := data.ToCytoscapeJSON()
	require.NoError(t, err)

	var elements CytoscapeElements
	require.NoError(t, json.Unmarshal([]byte(out), &elements))
	require.Len(t, elements.Edges, 3)
	assert.Equal(t, "A-B-0", elements.Edges[0].Data.ID)
	assert.Equal(t, "A-B-2", elements.Edges[2].Data.ID)
	assert.Nil(t, elements.Nodes[0].Position)
	assert.NotContains(t, out, `"position"`)
}

func TestGenerateHTML(t *testing.T) {
	g, a, colors := fixture(t)

	for _, layout := range []string{"force", "circle", "grid"} {
		t.Run(layout, func(t *testing.T) {
			opts := DefaultOptions()
			opts.Layout = layout
			html, err := GenerateHTML(Build(g, colors, a, DefaultBuildOptions()), opts)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
			assert.Contains(t, html, opts.CytoscapeURL)
			assert.Contains(t, html, `"id":"A"`)
		})
	}

	t.Run("unknown layout", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Layout = "spiral"
		_, err := GenerateHTML(Build(g, colors, a, DefaultBuildOptions()), opts)
		assert.Error(t, err)
	})

	t.Run("preset needs positions", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Layout = "preset"
		data := Build(g, colors, a, DefaultBuildOptions())
		_, err := GenerateHTML(data, opts)
		assert.Error(t, err)

		require.NoError(t, NewMDSLayout().Apply(data, g))
		html, err := GenerateHTML(data, opts)
		require.NoError(t, err)
		assert.Contains(t, html, `"position"`)
	})

	t.Run("nil graph", func(t *testing.T) {
		_, err := GenerateHTML(nil, DefaultOptions())
		assert.Error(t, err)
	})
}

func TestMDSLayout(t *testing.T) {
	g, a, colors := fixture(t)
	data := Build(g, colors, a, DefaultBuildOptions())

	layout := NewMDSLayout()
	require.NoError(t, layout.Apply(data, g))
	for _, n := range data.Nodes {
		require.NotNil(t, n.Position, n.ID)
		assert.GreaterOrEqual(t, n.Position.X, 0.0)
		assert.LessOrEqual(t, n.Position.X, layout.Scale)
	}
	// A path A-B-C spreads out along one axis.
	assert.NotEqual(t, data.Nodes[0].Position.X, data.Nodes[2].Position.X)

	single := &GraphData{Nodes: []Node{{ID: "A"}}}
	require.NoError(t, layout.Apply(single, g))
	assert.Equal(t, Position{X: 500, Y: 500}, *single.Nodes[0].Position)

	missing := &GraphData{Nodes: []Node{{ID: "Z"}}}
	assert.Error(t, layout.Apply(missing, g))
}
