package graph

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

func TestFilter(t *testing.T) {
	tests := []struct {
		name      string
		dropped   []string
		wantNodes []string
		wantEdges []Edge
	}{
		{
			name:      "drop small community",
			dropped:   []string{"D", "E"},
			wantNodes: []string{"A", "B", "C"},
			wantEdges: []Edge{
				{From: "A", To: "B", Weight: 1},
				{From: "B", To: "C", Weight: 1},
				{From: "C", To: "A", Weight: 2},
				{From: "A", To: "B", Weight: 3},
			},
		},
		{
			name:      "nothing dropped",
			dropped:   nil,
			wantNodes: []string{"A", "B", "C", "D", "E"},
		},
		{
			name:      "everything dropped",
			dropped:   []string{"A", "B", "C", "D", "E"},
			wantNodes: []string{},
			wantEdges: []Edge{},
		},
		{
			name:      "unknown ids ignored",
			dropped:   []string{"Z", "E"},
			wantNodes: []string{"A", "B", "C", "D"},
			wantEdges: []Edge{
				{From: "A", To: "B", Weight: 1},
				{From: "B", To: "C", Weight: 1},
				{From: "C", To: "A", Weight: 2},
				{From: "C", To: "D", Weight: 1},
				{From: "A", To: "B", Weight: 3},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := fiveNodeGraph(t)
			before := g.Edges()

			out := Filter(g, DropSet(tt.dropped))

			assert.Equal(t, tt.wantNodes, out.Nodes())
			if tt.wantEdges != nil {
				assert.Equal(t, tt.wantEdges, out.Edges())
			} else {
				assert.True(t, out.Equal(g))
			}
			assert.Equal(t, before, g.Edges(), "input graph must not change")
			assert.Equal(t, 5, g.NumNodes())
		})
	}
}

func TestFilterKeepsAttributes(t *testing.T) {
	g, err := Build(nil, []Node{{ID: "a", Attributes: map[string]any{"w": 2.0}}, {ID: "b"}})
	assert.NoError(t, err)

	out := Filter(g, DropSet([]string{"b"}))
	v, ok := out.Attribute("a", "w")
	assert.True(t, ok)
	assert.Equal(t, 2.0, v)
}

func TestFilterProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	genGraph := gen.SliceOfN(30, gen.IntRange(0, 9)).Map(func(ends []int) *Graph {
		edges := make([]Edge, 0, len(ends)/2)
		for i := 0; i+1 < len(ends); i += 2 {
			edges = append(edges, Edge{
				From:   fmt.Sprintf("n%d", ends[i]),
				To:     fmt.Sprintf("n%d", ends[i+1]),
				Weight: 1,
			})
		}
		g, _ := Build(edges, nil)
		return g
	})
	genDrop := gen.SliceOf(gen.IntRange(0, 9)).Map(func(ids []int) map[string]bool {
		set := make(map[string]bool)
		for _, id := range ids {
			set[fmt.Sprintf("n%d", id)] = true
		}
		return set
	})

	properties.Property("no surviving edge touches a dropped node", prop.ForAll(
		func(g *Graph, dropped map[string]bool) bool {
			for _, e := range Filter(g, dropped).Edges() {
				if dropped[e.From] || dropped[e.To] {
					return false
				}
			}
			return true
		},
		genGraph, genDrop,
	))

	properties.Property("filtering twice equals filtering once", prop.ForAll(
		func(g *Graph, dropped map[string]bool) bool {
			once := Filter(g, dropped)
			return Filter(once, dropped).Equal(once)
		},
		genGraph, genDrop,
	))

	properties.Property("kept nodes plus dropped nodes cover the graph", prop.ForAll(
		func(g *Graph, dropped map[string]bool) bool {
			n := 0
			for _, id := range g.Nodes() {
				if dropped[id] {
					n++
				}
			}
			return Filter(g, dropped).NumNodes()+n == g.NumNodes()
		},
		genGraph, genDrop,
	))

	properties.TestingRun(t)
}
