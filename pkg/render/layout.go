package render

import (
	"fmt"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/mds"

	cgraph "github.com/gilchrisn/graph-community-filter/pkg/graph"
)

// MDSLayout positions nodes with classical multidimensional scaling of
// hop distances on the undirected skeleton.
type MDSLayout struct {
	// MaxDistance stands in for the distance between unreachable nodes.
	MaxDistance float64
	// Scale is the width and height of the resulting drawing.
	Scale float64
}

// NewMDSLayout creates a layout with unreachable distance 10 and scale 1000.
func NewMDSLayout() *MDSLayout {
	return &MDSLayout{MaxDistance: 10, Scale: 1000}
}

// Apply sets Position on every node of data. g must contain the nodes of
// data; other nodes of g are ignored.
func (l *MDSLayout) Apply(data *GraphData, g *cgraph.Graph) error {
	if data.IsEmpty() {
		return nil
	}

	keep := make(map[string]bool, len(data.Nodes))
	for _, n := range data.Nodes {
		if !g.HasNode(n.ID) {
			return fmt.Errorf("layout: node %s not in graph", n.ID)
		}
		keep[n.ID] = true
	}
	dropped := make(map[string]bool)
	for _, id := range g.Nodes() {
		if !keep[id] {
			dropped[id] = true
		}
	}
	sub := cgraph.Filter(g, dropped)

	coords, err := l.coordinates(sub)
	if err != nil {
		return err
	}

	for i := range data.Nodes {
		idx := sub.IndexOf(data.Nodes[i].ID)
		p := coords[idx]
		data.Nodes[i].Position = &p
	}
	return nil
}

// coordinates returns positions indexed by node order of g, scaled to
// [0, Scale] on both axes.
func (l *MDSLayout) coordinates(g *cgraph.Graph) ([]Position, error) {
	n := g.NumNodes()
	if n == 1 {
		return []Position{{X: l.Scale / 2, Y: l.Scale / 2}}, nil
	}

	dist := l.distanceMatrix(g.Undirected(), n)

	var coords mat.Dense
	k, _ := mds.TorgersonScaling(&coords, nil, dist)
	if k == 0 {
		return nil, fmt.Errorf("layout: no positive eigenvalues in scaling")
	}

	_, cols := coords.Dims()
	out := make([]Position, n)
	for i := 0; i < n; i++ {
		out[i].X = coords.At(i, 0)
		if cols > 1 {
			out[i].Y = coords.At(i, 1)
		}
	}
	normalize(out, l.Scale)
	return out, nil
}

func (l *MDSLayout) distanceMatrix(ug *simple.UndirectedGraph, n int) *mat.SymDense {
	dist := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		hops := make(map[int64]int)
		var bf traverse.BreadthFirst
		bf.Walk(ug, ug.Node(int64(i)), func(node graph.Node, depth int) bool {
			hops[node.ID()] = depth
			return false
		})
		for j := i + 1; j < n; j++ {
			d, ok := hops[int64(j)]
			if !ok {
				dist.SetSym(i, j, l.MaxDistance)
				continue
			}
			dist.SetSym(i, j, float64(d))
		}
	}
	return dist
}

func normalize(ps []Position, scale float64) {
	minX, maxX := ps[0].X, ps[0].X
	minY, maxY := ps[0].Y, ps[0].Y
	for _, p := range ps[1:] {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}
	for i := range ps {
		ps[i].X = rescale(ps[i].X, minX, maxX, scale)
		ps[i].Y = rescale(ps[i].Y, minY, maxY, scale)
	}
}

func rescale(v, lo, hi, scale float64) float64 {
	if hi == lo {
		return scale / 2
	}
	return (v - lo) / (hi - lo) * scale
}
