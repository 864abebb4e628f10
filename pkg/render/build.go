package render

import (
	"strconv"

	"github.com/gilchrisn/graph-community-filter/pkg/centrality"
	cgraph "github.com/gilchrisn/graph-community-filter/pkg/graph"
	"github.com/gilchrisn/graph-community-filter/pkg/membership"
	"github.com/gilchrisn/graph-community-filter/pkg/palette"
)

// BuildOptions controls node sizing.
type BuildOptions struct {
	// PageRank scales node size when set; otherwise nodes use MinSize.
	PageRank *centrality.PageRankResult
	MinSize  float64
	MaxSize  float64
}

// DefaultBuildOptions returns the sizes used by the CLI.
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{MinSize: 8, MaxSize: 40}
}

// Build converts g into drawable data. Each node is coloured by its
// community and labelled with the community id. Nodes whose community has no
// colour are omitted, along with their edges.
func Build(g *cgraph.Graph, colors palette.ColorMap, a membership.Assignment, opts BuildOptions) *GraphData {
	data := &GraphData{
		Nodes: make([]Node, 0, g.NumNodes()),
		Edges: make([]Edge, 0, g.NumEdges()),
	}

	drawn := make(map[string]bool, g.NumNodes())
	for _, id := range g.Nodes() {
		c, ok := a[id]
		if !ok {
			continue
		}
		col, ok := colors[c]
		if !ok {
			continue
		}

		size := opts.MinSize
		if opts.PageRank != nil {
			size = opts.PageRank.Radius(id, opts.MinSize, opts.MaxSize)
		}

		drawn[id] = true
		data.Nodes = append(data.Nodes, Node{
			ID:        id,
			Label:     strconv.Itoa(c),
			Community: c,
			Color:     col.Hex(),
			Opacity:   col.Opacity(),
			Size:      size,
		})
	}

	for _, e := range g.Edges() {
		if !drawn[e.From] || !drawn[e.To] {
			continue
		}
		data.Edges = append(data.Edges, Edge{Source: e.From, Target: e.To, Weight: e.Weight})
	}

	return data
}
