package community

import (
	"context"
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/topo"

	cgraph "github.com/gilchrisn/graph-community-filter/pkg/graph"
	"github.com/gilchrisn/graph-community-filter/pkg/membership"
)

// EdgeBetweenness is the Girvan-Newman divisive detector: it repeatedly
// removes the edge with the highest shortest-path betweenness from the
// undirected skeleton and keeps the component split with the best
// modularity on the original graph.
type EdgeBetweenness struct {
	// MaxRemovals caps the number of removed edges. Zero removes all edges.
	MaxRemovals int
	Resolution  float64
	Logger      zerolog.Logger
}

// Name returns "betweenness".
func (EdgeBetweenness) Name() string { return "betweenness" }

// Detect runs the divisive loop. Ties between equally central edges go to
// the lowest node pair so results do not depend on map order.
func (d EdgeBetweenness) Detect(ctx context.Context, g *cgraph.Graph) (membership.Assignment, error) {
	if err := checkWeights(g); err != nil {
		return nil, err
	}
	resolution := d.Resolution
	if resolution <= 0 {
		resolution = 1
	}

	ug := g.Undirected()
	best := fromGroups(g, topo.ConnectedComponents(ug))
	bestQ, err := Modularity(g, best, resolution)
	if err != nil {
		return nil, err
	}

	removals := 0
	for ug.Edges().Len() > 0 {
		if d.MaxRemovals > 0 && removals >= d.MaxRemovals {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		edge, ok := mostCentral(network.EdgeBetweenness(ug))
		if !ok {
			break
		}
		ug.RemoveEdge(edge[0], edge[1])
		removals++

		a := fromGroups(g, topo.ConnectedComponents(ug))
		q, err := Modularity(g, a, resolution)
		if err != nil {
			return nil, err
		}
		if q > bestQ+1e-12 {
			best, bestQ = a, q
		}
	}

	d.Logger.Debug().
		Int("removed_edges", removals).
		Int("communities", countCommunities(best)).
		Float64("modularity", bestQ).
		Msg("Edge betweenness completed")

	return best, nil
}

// mostCentral returns the smallest edge key whose score is within floating
// point noise of the highest score.
func mostCentral(scores map[[2]int64]float64) ([2]int64, bool) {
	if len(scores) == 0 {
		return [2]int64{}, false
	}
	top := math.Inf(-1)
	for _, score := range scores {
		top = math.Max(top, score)
	}

	tol := 1e-9 * math.Max(1, math.Abs(top))
	var best [2]int64
	found := false
	for key, score := range scores {
		if top-score <= tol && (!found || lessKey(key, best)) {
			best, found = key, true
		}
	}
	return best, found
}

func lessKey(a, b [2]int64) bool {
	if a[0] != b[0] {
		return a[0] < b[0]
	}
	return a[1] < b[1]
}
