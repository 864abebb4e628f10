package community

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"

	cgraph "github.com/gilchrisn/graph-community-filter/pkg/graph"
	"github.com/gilchrisn/graph-community-filter/pkg/membership"
)

// LouvainConfig contains configuration for the Louvain detector.
type LouvainConfig struct {
	MaxLevels         int     `json:"max_levels"`
	MaxIterations     int     `json:"max_iterations"`
	MinModularityGain float64 `json:"min_modularity_gain"`
	Resolution        float64 `json:"resolution"`
	RandomSeed        int64   `json:"random_seed"`
}

// DefaultLouvainConfig returns the settings used when none are configured.
func DefaultLouvainConfig() LouvainConfig {
	return LouvainConfig{
		MaxLevels:         10,
		MaxIterations:     100,
		MinModularityGain: 1e-7,
		Resolution:        1.0,
		RandomSeed:        42,
	}
}

// Louvain detects communities by multi-level modularity optimisation on the
// undirected projection of the graph: local node moves, then aggregation of
// each community into a super-node, repeated until no move improves
// modularity.
type Louvain struct {
	Config LouvainConfig
	Logger zerolog.Logger
}

// NewLouvain creates a Louvain detector.
func NewLouvain(config LouvainConfig, logger zerolog.Logger) *Louvain {
	return &Louvain{
		Config: config,
		Logger: logger.With().Str("detector", "louvain").Logger(),
	}
}

// Name returns "louvain".
func (l *Louvain) Name() string { return "louvain" }

// levelGraph is a symmetric weighted adjacency with self entries holding
// A_ii (twice the self-loop weight), so degrees are plain row sums.
type levelGraph struct {
	numNodes    int
	adjacency   [][]int
	weights     [][]float64
	degrees     []float64
	totalDegree float64 // 2m
}

// state holds community bookkeeping for one level.
type state struct {
	nodeToComm []int
	tot        []float64 // sum of degrees in community
	in         []float64 // sum of A_uv over members u, v
}

// Detect runs Louvain and flattens the final level back onto g's nodes.
func (l *Louvain) Detect(ctx context.Context, g *cgraph.Graph) (membership.Assignment, error) {
	if err := checkWeights(g); err != nil {
		return nil, err
	}

	startTime := time.Now()
	current := newLevelGraph(g)

	// nodeToSuper[i] is the node of the current level that original node i
	// belongs to.
	nodeToSuper := make([]int, g.NumNodes())
	for i := range nodeToSuper {
		nodeToSuper[i] = i
	}

	l.Logger.Debug().
		Int("nodes", current.numNodes).
		Float64("total_weight", current.totalDegree/2).
		Msg("Starting Louvain")

	seed := uint64(l.Config.RandomSeed)
	rng := rand.New(rand.NewPCG(seed, seed))
	levels := 0

	for level := 0; level < l.maxLevels(); level++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		st := newState(current)
		moves := l.oneLevel(current, st, rng)
		levels++

		l.Logger.Debug().
			Int("level", level).
			Int("nodes", current.numNodes).
			Int("moves", moves).
			Float64("modularity", modularity(current, st, l.resolution())).
			Msg("Level complete")

		if moves == 0 {
			break
		}

		superGraph, commToSuper := aggregate(current, st)
		for i, s := range nodeToSuper {
			nodeToSuper[i] = commToSuper[st.nodeToComm[s]]
		}

		if superGraph.numNodes >= current.numNodes {
			break
		}
		current = superGraph
	}

	raw := make(membership.Assignment, g.NumNodes())
	for i, id := range g.Nodes() {
		raw[id] = nodeToSuper[i]
	}
	a := Normalize(g, raw)

	l.Logger.Info().
		Int("levels", levels).
		Int("communities", countCommunities(a)).
		Dur("elapsed", time.Since(startTime)).
		Msg("Louvain completed")

	return a, nil
}

func (l *Louvain) maxLevels() int {
	if l.Config.MaxLevels <= 0 {
		return DefaultLouvainConfig().MaxLevels
	}
	return l.Config.MaxLevels
}

func (l *Louvain) maxIterations() int {
	if l.Config.MaxIterations <= 0 {
		return DefaultLouvainConfig().MaxIterations
	}
	return l.Config.MaxIterations
}

func (l *Louvain) resolution() float64 {
	if l.Config.Resolution <= 0 {
		return 1.0
	}
	return l.Config.Resolution
}

func newLevelGraph(g *cgraph.Graph) *levelGraph {
	adj, weights := g.UndirectedAdjacency()
	lg := &levelGraph{
		numNodes:  g.NumNodes(),
		adjacency: adj,
		weights:   weights,
		degrees:   make([]float64, g.NumNodes()),
	}
	for u := range adj {
		for j, v := range adj[u] {
			if v == u {
				weights[u][j] *= 2
			}
			lg.degrees[u] += weights[u][j]
		}
		lg.totalDegree += lg.degrees[u]
	}
	return lg
}

func newState(lg *levelGraph) *state {
	st := &state{
		nodeToComm: make([]int, lg.numNodes),
		tot:        make([]float64, lg.numNodes),
		in:         make([]float64, lg.numNodes),
	}
	for u := 0; u < lg.numNodes; u++ {
		st.nodeToComm[u] = u
		st.tot[u] = lg.degrees[u]
		st.in[u] = lg.selfWeight(u)
	}
	return st
}

func (lg *levelGraph) selfWeight(u int) float64 {
	for j, v := range lg.adjacency[u] {
		if v == u {
			return lg.weights[u][j]
		}
	}
	return 0
}

// oneLevel moves nodes between neighbouring communities until an iteration
// makes no move or the iteration limit is reached. Returns the move count.
func (l *Louvain) oneLevel(lg *levelGraph, st *state, rng *rand.Rand) int {
	if lg.totalDegree == 0 {
		return 0
	}

	gamma := l.resolution()
	m2 := lg.totalDegree
	order := make([]int, lg.numNodes)
	for i := range order {
		order[i] = i
	}

	totalMoves := 0
	for iteration := 0; iteration < l.maxIterations(); iteration++ {
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		moves := 0

		for _, node := range order {
			oldComm := st.nodeToComm[node]
			ki := lg.degrees[node]

			// Weights to neighbouring communities, in adjacency order so ties
			// resolve the same way on every run.
			commWeights := make(map[int]float64)
			candidates := []int{oldComm}
			commWeights[oldComm] = 0
			selfLoop := 0.0
			for j, neighbor := range lg.adjacency[node] {
				if neighbor == node {
					selfLoop = lg.weights[node][j]
					continue
				}
				c := st.nodeToComm[neighbor]
				if _, seen := commWeights[c]; !seen {
					candidates = append(candidates, c)
				}
				commWeights[c] += lg.weights[node][j]
			}

			// Remove node from its community.
			st.tot[oldComm] -= ki
			st.in[oldComm] -= 2*commWeights[oldComm] + selfLoop

			gain := func(c int) float64 {
				return commWeights[c] - gamma*st.tot[c]*ki/m2
			}

			bestComm := oldComm
			bestGain := gain(oldComm)
			stayGain := bestGain
			for _, c := range candidates[1:] {
				if g := gain(c); g > bestGain {
					bestComm, bestGain = c, g
				}
			}
			if bestComm != oldComm && bestGain-stayGain <= l.Config.MinModularityGain {
				bestComm = oldComm
			}

			st.nodeToComm[node] = bestComm
			st.tot[bestComm] += ki
			st.in[bestComm] += 2*commWeights[bestComm] + selfLoop

			if bestComm != oldComm {
				moves++
			}
		}

		totalMoves += moves
		if moves == 0 {
			break
		}
	}

	return totalMoves
}

// aggregate builds the super-graph whose nodes are the non-empty communities
// of st, numbered by first appearance over node order.
func aggregate(lg *levelGraph, st *state) (*levelGraph, map[int]int) {
	commToSuper := make(map[int]int)
	for u := 0; u < lg.numNodes; u++ {
		c := st.nodeToComm[u]
		if _, ok := commToSuper[c]; !ok {
			commToSuper[c] = len(commToSuper)
		}
	}

	n := len(commToSuper)
	sums := make([]map[int]float64, n)
	for i := range sums {
		sums[i] = make(map[int]float64)
	}
	for u := 0; u < lg.numNodes; u++ {
		su := commToSuper[st.nodeToComm[u]]
		for j, v := range lg.adjacency[u] {
			sv := commToSuper[st.nodeToComm[v]]
			sums[su][sv] += lg.weights[u][j]
		}
	}

	superGraph := &levelGraph{
		numNodes:  n,
		adjacency: make([][]int, n),
		weights:   make([][]float64, n),
		degrees:   make([]float64, n),
	}
	for su := 0; su < n; su++ {
		for sv := 0; sv < n; sv++ {
			w, ok := sums[su][sv]
			if !ok {
				continue
			}
			superGraph.adjacency[su] = append(superGraph.adjacency[su], sv)
			superGraph.weights[su] = append(superGraph.weights[su], w)
			superGraph.degrees[su] += w
		}
		superGraph.totalDegree += superGraph.degrees[su]
	}

	return superGraph, commToSuper
}

// modularity computes Q = sum_c in_c/2m - gamma*(tot_c/2m)^2.
func modularity(lg *levelGraph, st *state, gamma float64) float64 {
	if lg.totalDegree == 0 {
		return 0
	}
	m2 := lg.totalDegree
	q := 0.0
	for c := 0; c < lg.numNodes; c++ {
		if st.tot[c] == 0 && st.in[c] == 0 {
			continue
		}
		q += st.in[c]/m2 - gamma*(st.tot[c]/m2)*(st.tot[c]/m2)
	}
	return q
}

// Modularity returns the undirected modularity of assignment a over g.
func Modularity(g *cgraph.Graph, a membership.Assignment, resolution float64) (float64, error) {
	if resolution <= 0 {
		return 0, fmt.Errorf("resolution must be positive, got %g", resolution)
	}
	if err := a.CheckTotal(g); err != nil {
		return 0, err
	}
	if err := checkWeights(g); err != nil {
		return 0, err
	}

	lg := newLevelGraph(g)
	norm := Normalize(g, a)
	st := &state{
		nodeToComm: make([]int, lg.numNodes),
		tot:        make([]float64, lg.numNodes),
		in:         make([]float64, lg.numNodes),
	}
	for i, id := range g.Nodes() {
		st.nodeToComm[i] = norm[id]
	}
	for u := 0; u < lg.numNodes; u++ {
		cu := st.nodeToComm[u]
		st.tot[cu] += lg.degrees[u]
		for j, v := range lg.adjacency[u] {
			if st.nodeToComm[v] == cu {
				st.in[cu] += lg.weights[u][j]
			}
		}
	}
	return modularity(lg, st, resolution), nil
}
