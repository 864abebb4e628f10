package graph

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"
)

// Projections onto gonum graphs use the node's position in Nodes() as the
// gonum node ID, so NodeID(i) maps results back to string ids.

// NodeID returns the string id for a gonum node ID produced by a projection.
func (g *Graph) NodeID(gid int64) string {
	if gid < 0 || int(gid) >= len(g.nodes) {
		return ""
	}
	return g.nodes[gid]
}

// WeightedDirected collapses parallel edges into one edge carrying the summed
// weight. Self-loops are dropped since simple graphs cannot hold them.
func (g *Graph) WeightedDirected() *simple.WeightedDirectedGraph {
	dg := simple.NewWeightedDirectedGraph(0, 0)
	for i := range g.nodes {
		dg.AddNode(simple.Node(int64(i)))
	}

	sums := make(map[[2]int]float64)
	for _, e := range g.edges {
		u, v := g.index[e.From], g.index[e.To]
		if u == v {
			continue
		}
		sums[[2]int{u, v}] += e.Weight
	}

	for _, key := range sortedPairs(sums) {
		dg.SetWeightedEdge(simple.WeightedEdge{
			F: simple.Node(int64(key[0])),
			T: simple.Node(int64(key[1])),
			W: sums[key],
		})
	}
	return dg
}

// WeightedUndirected ignores edge direction and sums the weights of all edges
// between each unordered pair. Self-loops are dropped.
func (g *Graph) WeightedUndirected() *simple.WeightedUndirectedGraph {
	ug := simple.NewWeightedUndirectedGraph(0, 0)
	for i := range g.nodes {
		ug.AddNode(simple.Node(int64(i)))
	}

	for key, w := range g.undirectedWeights() {
		ug.SetWeightedEdge(simple.WeightedEdge{
			F: simple.Node(int64(key[0])),
			T: simple.Node(int64(key[1])),
			W: w,
		})
	}
	return ug
}

// Undirected returns the unweighted undirected skeleton of g.
func (g *Graph) Undirected() *simple.UndirectedGraph {
	ug := simple.NewUndirectedGraph()
	for i := range g.nodes {
		ug.AddNode(simple.Node(int64(i)))
	}
	for key := range g.undirectedWeights() {
		ug.SetEdge(simple.Edge{
			F: simple.Node(int64(key[0])),
			T: simple.Node(int64(key[1])),
		})
	}
	return ug
}

// UndirectedAdjacency returns, for each node index, its neighbours and the
// summed undirected weights, in ascending neighbour order. Self-loops are kept
// so modularity accounting sees them.
func (g *Graph) UndirectedAdjacency() ([][]int, [][]float64) {
	n := len(g.nodes)
	sums := make([]map[int]float64, n)
	for i := range sums {
		sums[i] = make(map[int]float64)
	}
	for _, e := range g.edges {
		u, v := g.index[e.From], g.index[e.To]
		sums[u][v] += e.Weight
		if u != v {
			sums[v][u] += e.Weight
		}
	}

	adj := make([][]int, n)
	weights := make([][]float64, n)
	for u := 0; u < n; u++ {
		neighbors := make([]int, 0, len(sums[u]))
		for v := range sums[u] {
			neighbors = append(neighbors, v)
		}
		sort.Ints(neighbors)
		adj[u] = neighbors
		weights[u] = make([]float64, len(neighbors))
		for j, v := range neighbors {
			weights[u][j] = sums[u][v]
		}
	}
	return adj, weights
}

func (g *Graph) undirectedWeights() map[[2]int]float64 {
	sums := make(map[[2]int]float64)
	for _, e := range g.edges {
		u, v := g.index[e.From], g.index[e.To]
		if u == v {
			continue
		}
		if u > v {
			u, v = v, u
		}
		sums[[2]int{u, v}] += e.Weight
	}
	return sums
}

func sortedPairs(m map[[2]int]float64) [][2]int {
	keys := make([][2]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})
	return keys
}
