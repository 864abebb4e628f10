// Package community provides pluggable community detectors. Every detector
// returns a total assignment over the graph's nodes. Detectors that compute
// communities renumber ids 0..k-1 in order of first appearance over the node
// order; Fixed keeps the ids it was given.
package community

import (
	"context"
	"errors"
	"fmt"

	"gonum.org/v1/gonum/graph"

	cgraph "github.com/gilchrisn/graph-community-filter/pkg/graph"
	"github.com/gilchrisn/graph-community-filter/pkg/membership"
)

// ErrNegativeWeight is returned by modularity based detectors for graphs with
// negative edge weights.
var ErrNegativeWeight = errors.New("negative edge weight")

// Detector assigns every node of a graph to a community.
type Detector interface {
	Name() string
	Detect(ctx context.Context, g *cgraph.Graph) (membership.Assignment, error)
}

// DetectorFunc adapts a function to the Detector interface.
type DetectorFunc struct {
	Label string
	Fn    func(ctx context.Context, g *cgraph.Graph) (membership.Assignment, error)
}

// Name returns the detector label.
func (f DetectorFunc) Name() string { return f.Label }

// Detect calls the wrapped function and normalizes its output.
func (f DetectorFunc) Detect(ctx context.Context, g *cgraph.Graph) (membership.Assignment, error) {
	a, err := f.Fn(ctx, g)
	if err != nil {
		return nil, err
	}
	if err := a.CheckTotal(g); err != nil {
		return nil, fmt.Errorf("detector %s: %w", f.Label, err)
	}
	return Normalize(g, a), nil
}

// Fixed returns a detector that always yields a precomputed assignment, for
// communities produced outside this module. Community ids are kept as given.
func Fixed(name string, a membership.Assignment) Detector {
	return fixed{name: name, a: a}
}

type fixed struct {
	name string
	a    membership.Assignment
}

func (f fixed) Name() string { return f.name }

// Detect returns the entries of the assignment for g's nodes.
func (f fixed) Detect(_ context.Context, g *cgraph.Graph) (membership.Assignment, error) {
	if err := f.a.CheckTotal(g); err != nil {
		return nil, fmt.Errorf("detector %s: %w", f.name, err)
	}
	out := make(membership.Assignment, g.NumNodes())
	for _, id := range g.Nodes() {
		out[id] = f.a[id]
	}
	return out, nil
}

// Normalize renumbers community ids to 0..k-1 in order of first appearance
// over g's nodes. Nodes missing from a are left out.
func Normalize(g *cgraph.Graph, a membership.Assignment) membership.Assignment {
	renumber := make(map[int]int)
	out := make(membership.Assignment, g.NumNodes())
	for _, id := range g.Nodes() {
		c, ok := a[id]
		if !ok {
			continue
		}
		n, seen := renumber[c]
		if !seen {
			n = len(renumber)
			renumber[c] = n
		}
		out[id] = n
	}
	return out
}

// fromGroups converts gonum node groups from a projection of g into a
// normalized assignment.
func fromGroups(g *cgraph.Graph, groups [][]graph.Node) membership.Assignment {
	raw := make(membership.Assignment, g.NumNodes())
	for c, group := range groups {
		for _, n := range group {
			raw[g.NodeID(n.ID())] = c
		}
	}
	return Normalize(g, raw)
}

// Groups inverts an assignment into community id -> member ids, members in
// graph node order.
func Groups(g *cgraph.Graph, a membership.Assignment) map[int][]string {
	out := make(map[int][]string)
	for _, id := range g.Nodes() {
		if c, ok := a[id]; ok {
			out[c] = append(out[c], id)
		}
	}
	return out
}

func countCommunities(a membership.Assignment) int {
	seen := make(map[int]bool)
	for _, c := range a {
		seen[c] = true
	}
	return len(seen)
}

func checkWeights(g *cgraph.Graph) error {
	for _, e := range g.Edges() {
		if e.Weight < 0 {
			return fmt.Errorf("%w: %s -> %s (%g)", ErrNegativeWeight, e.From, e.To, e.Weight)
		}
	}
	return nil
}
