package centrality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cgraph "github.com/gilchrisn/graph-community-filter/pkg/graph"
)

func star(t *testing.T) *cgraph.Graph {
	t.Helper()
	g, err := cgraph.Build([]cgraph.Edge{
		{From: "a", To: "hub", Weight: 1},
		{From: "b", To: "hub", Weight: 1},
		{From: "c", To: "hub", Weight: 1},
		{From: "hub", To: "a", Weight: 1},
		{From: "a", To: "hub", Weight: 2},
		{From: "c", To: "c", Weight: 1},
	}, nil)
	require.NoError(t, err)
	return g
}

func TestDegree(t *testing.T) {
	d := Degree(star(t))

	assert.Equal(t, DegreeInfo{In: 4, Out: 1, Total: 5, OutStrength: 1, InStrength: 5}, d["hub"])
	assert.Equal(t, DegreeInfo{In: 1, Out: 2, Total: 3, OutStrength: 3, InStrength: 1}, d["a"])
	assert.Equal(t, DegreeInfo{In: 1, Out: 2, Total: 3, OutStrength: 2, InStrength: 1}, d["c"])
}

func TestPageRank(t *testing.T) {
	g := star(t)
	pr, err := NewPageRankCalculator().Calculate(g)
	require.NoError(t, err)
	require.Len(t, pr.Scores, 4)

	sum := 0.0
	for _, s := range pr.Scores {
		sum += s
	}
	assert.InDelta(t, 1.0, sum, 1e-3)
	assert.Equal(t, pr.MaxScore, pr.Scores["hub"])
	assert.Equal(t, 1.0, pr.Normalized("hub"))
	assert.Equal(t, 0.0, pr.Normalized("missing"))
	assert.Equal(t, 40.0, pr.Radius("hub", 8, 40))

	ranked := Rank(g, pr)
	require.Len(t, ranked, 4)
	assert.Equal(t, "hub", ranked[0].ID)
	assert.Equal(t, 4, ranked[0].Degree.In)
}

func TestPageRankErrors(t *testing.T) {
	_, err := NewPageRankCalculator().Calculate(cgraph.New())
	assert.Error(t, err)

	for _, damping := range []float64{0, 1, 1.5} {
		_, err := NewPageRankCalculator().WithDampingFactor(damping).Calculate(star(t))
		assert.Error(t, err, "damping %v", damping)
	}

	_, err = NewPageRankCalculator().WithTolerance(0).Calculate(star(t))
	assert.Error(t, err)
}

func TestNormalizedUniform(t *testing.T) {
	r := &PageRankResult{Scores: map[string]float64{"x": 0.5, "y": 0.5}, MinScore: 0.5, MaxScore: 0.5}
	assert.Equal(t, 1.0, r.Normalized("x"))
	assert.Equal(t, 40.0, r.Radius("y", 8, 40))
}
