// Package render turns a filtered graph and its community colours into
// Cytoscape.js elements and a self-contained HTML page.
package render

// GraphData contains all data needed to draw the graph.
type GraphData struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is a drawable node.
type Node struct {
	ID        string  `json:"id"`
	Label     string  `json:"label"`
	Community int     `json:"community"`
	Color     string  `json:"color"`
	Opacity   float64 `json:"opacity"`
	Size      float64 `json:"size"`

	// Position is only set for precomputed layouts.
	Position *Position `json:"-"`
}

// Edge is a drawable directed edge.
type Edge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
}

// Position is a 2D coordinate.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// IsEmpty reports whether the graph has no nodes.
func (g *GraphData) IsEmpty() bool {
	return len(g.Nodes) == 0
}
