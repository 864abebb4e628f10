package membership

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gilchrisn/graph-community-filter/pkg/graph"
)

func scenario(t *testing.T) (*graph.Graph, Assignment) {
	t.Helper()
	g, err := graph.Build([]graph.Edge{
		{From: "A", To: "B", Weight: 1},
		{From: "B", To: "C", Weight: 1},
		{From: "C", To: "D", Weight: 1},
		{From: "D", To: "E", Weight: 1},
	}, nil)
	require.NoError(t, err)
	return g, Assignment{"A": 1, "B": 1, "C": 1, "D": 2, "E": 2}
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name        string
		threshold   int
		wantLarge   []int
		wantSmall   []int
		wantKept    []string
		wantDropped []string
	}{
		{
			name:        "threshold 3 drops the pair",
			threshold:   3,
			wantLarge:   []int{1},
			wantSmall:   []int{2},
			wantKept:    []string{"A", "B", "C"},
			wantDropped: []string{"D", "E"},
		},
		{
			name:        "threshold 1 keeps everything",
			threshold:   1,
			wantLarge:   []int{1, 2},
			wantSmall:   []int{},
			wantKept:    []string{"A", "B", "C", "D", "E"},
			wantDropped: []string{},
		},
		{
			name:        "default threshold drops everything",
			threshold:   DefaultThreshold,
			wantLarge:   []int{},
			wantSmall:   []int{1, 2},
			wantKept:    []string{},
			wantDropped: []string{"A", "B", "C", "D", "E"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, a := scenario(t)
			p, err := Aggregate(g, a, tt.threshold)
			require.NoError(t, err)

			assert.Equal(t, SizeTable{1: 3, 2: 2}, p.Sizes)
			assert.Equal(t, tt.wantLarge, p.Large)
			assert.Equal(t, tt.wantSmall, p.Small)
			assert.Equal(t, tt.wantKept, p.Kept)
			assert.Equal(t, tt.wantDropped, p.Dropped)
			assert.Equal(t, tt.threshold, p.Threshold)
		})
	}
}

func TestAggregateErrors(t *testing.T) {
	g, a := scenario(t)

	t.Run("missing node", func(t *testing.T) {
		partial := a.Clone()
		delete(partial, "E")
		p, err := Aggregate(g, partial, 3)
		assert.Nil(t, p)
		assert.ErrorIs(t, err, ErrIncompleteAssignment)
		assert.Contains(t, err.Error(), `"E"`)
	})

	for _, threshold := range []int{0, -1} {
		t.Run(fmt.Sprintf("threshold %d", threshold), func(t *testing.T) {
			_, err := Aggregate(g, a, threshold)
			assert.ErrorIs(t, err, ErrInvalidThreshold)
		})
	}

	t.Run("extra ids are ignored", func(t *testing.T) {
		extra := a.Clone()
		extra["Z"] = 9
		p, err := Aggregate(g, extra, 1)
		require.NoError(t, err)
		assert.Equal(t, 5, p.Sizes.Total())
		_, ok := p.Sizes[9]
		assert.False(t, ok)
	})
}

func TestPartitionQueries(t *testing.T) {
	g, a := scenario(t)
	p, err := Aggregate(g, a, 3)
	require.NoError(t, err)

	assert.True(t, p.IsKept("A"))
	assert.False(t, p.IsKept("D"))
	assert.False(t, p.IsKept("Z"))

	c, ok := p.CommunityOf("E")
	assert.True(t, ok)
	assert.Equal(t, 2, c)

	assert.Equal(t, map[string]bool{"D": true, "E": true}, p.DroppedSet())
	assert.Equal(t, []int{1}, p.KeptCommunities())
	assert.Equal(t, Summary{Threshold: 3, Communities: 2, KeptCommunities: 1, KeptNodes: 3, DroppedNodes: 2}, p.Summarize())
}

func TestKeptCommunitiesFollowNodeOrder(t *testing.T) {
	g, err := graph.Build(nil, []graph.Node{{ID: "x"}, {ID: "y"}, {ID: "z"}, {ID: "w"}})
	require.NoError(t, err)
	p, err := Aggregate(g, Assignment{"x": 7, "y": 3, "z": 7, "w": 3}, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{7, 3}, p.KeptCommunities())
	assert.Equal(t, []int{3, 7}, p.Large)
}

func TestAggregateProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	build := func(communities []int) (*graph.Graph, Assignment) {
		nodes := make([]graph.Node, len(communities))
		a := make(Assignment, len(communities))
		for i, c := range communities {
			id := fmt.Sprintf("n%d", i)
			nodes[i] = graph.Node{ID: id}
			a[id] = c
		}
		g, _ := graph.Build(nil, nodes)
		return g, a
	}
	genCommunities := gen.SliceOf(gen.IntRange(0, 6))

	properties.Property("sizes sum to node count", prop.ForAll(
		func(communities []int, threshold int) bool {
			g, a := build(communities)
			p, err := Aggregate(g, a, threshold)
			return err == nil && p.Sizes.Total() == g.NumNodes()
		},
		genCommunities, gen.IntRange(1, 8),
	))

	properties.Property("kept and dropped partition the nodes", prop.ForAll(
		func(communities []int, threshold int) bool {
			g, a := build(communities)
			p, err := Aggregate(g, a, threshold)
			if err != nil || len(p.Kept)+len(p.Dropped) != g.NumNodes() {
				return false
			}
			seen := make(map[string]bool)
			for _, id := range append(append([]string{}, p.Kept...), p.Dropped...) {
				if seen[id] {
					return false
				}
				seen[id] = true
			}
			return true
		},
		genCommunities, gen.IntRange(1, 8),
	))

	properties.Property("raising the threshold never grows the kept set", prop.ForAll(
		func(communities []int, t1, t2 int) bool {
			if t1 > t2 {
				t1, t2 = t2, t1
			}
			g, a := build(communities)
			low, err1 := Aggregate(g, a, t1)
			high, err2 := Aggregate(g, a, t2)
			if err1 != nil || err2 != nil {
				return false
			}
			for _, id := range high.Kept {
				if !low.IsKept(id) {
					return false
				}
			}
			return true
		},
		genCommunities, gen.IntRange(1, 8), gen.IntRange(1, 8),
	))

	properties.Property("large communities meet the threshold", prop.ForAll(
		func(communities []int, threshold int) bool {
			g, a := build(communities)
			p, _ := Aggregate(g, a, threshold)
			for _, c := range p.Large {
				if p.Sizes[c] < threshold {
					return false
				}
			}
			for _, c := range p.Small {
				if p.Sizes[c] >= threshold {
					return false
				}
			}
			return true
		},
		genCommunities, gen.IntRange(1, 8),
	))

	properties.TestingRun(t)
}
