package community

import (
	"context"
	"math/rand/v2"

	"gonum.org/v1/gonum/graph"
	gcommunity "gonum.org/v1/gonum/graph/community"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	cgraph "github.com/gilchrisn/graph-community-filter/pkg/graph"
	"github.com/gilchrisn/graph-community-filter/pkg/membership"
)

// Modularize detects communities with gonum's Louvain implementation.
// Directed selects directed modularity; otherwise edge direction is ignored.
type Modularize struct {
	Resolution float64
	Seed       uint64
	Directed   bool
}

// Name returns "modularity".
func (m Modularize) Name() string { return "modularity" }

// Detect runs gonum community.Modularize and takes its top-level
// communities.
func (m Modularize) Detect(ctx context.Context, g *cgraph.Graph) (membership.Assignment, error) {
	if err := checkWeights(g); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if g.NumNodes() == 0 {
		return membership.Assignment{}, nil
	}

	resolution := m.Resolution
	if resolution <= 0 {
		resolution = 1
	}

	var projected graph.Graph = g.WeightedUndirected()
	if m.Directed {
		projected = g.WeightedDirected()
	}

	src := rand.NewPCG(m.Seed, m.Seed)
	reduced := gcommunity.Modularize(projected, resolution, src)
	return fromGroups(g, reduced.Communities()), nil
}

// Score returns gonum's modularity Q for a over the projection Modularize
// would use.
func (m Modularize) Score(g *cgraph.Graph, a membership.Assignment) float64 {
	resolution := m.Resolution
	if resolution <= 0 {
		resolution = 1
	}

	groups := Groups(g, Normalize(g, a))
	communities := make([][]graph.Node, len(groups))
	for c, members := range groups {
		for _, id := range members {
			communities[c] = append(communities[c], simple.Node(int64(g.IndexOf(id))))
		}
	}

	if m.Directed {
		return gcommunity.Q(g.WeightedDirected(), communities, resolution)
	}
	return gcommunity.Q(g.WeightedUndirected(), communities, resolution)
}

// Components assigns each weakly connected component its own community.
type Components struct{}

// Name returns "components".
func (Components) Name() string { return "components" }

// Detect groups nodes by gonum topo.ConnectedComponents over the undirected
// skeleton.
func (Components) Detect(ctx context.Context, g *cgraph.Graph) (membership.Assignment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return fromGroups(g, topo.ConnectedComponents(g.Undirected())), nil
}
