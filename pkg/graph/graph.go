// Package graph holds the directed, weighted multigraph value the rest of the
// pipeline works on, plus its projections onto gonum graph types.
package graph

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrUnknownNode is returned when an edge references a node that is not in
	// an explicitly supplied node set.
	ErrUnknownNode = errors.New("edge references unknown node")
	// ErrDuplicateNode is returned when the same node id is declared twice.
	ErrDuplicateNode = errors.New("duplicate node id")
	// ErrEmptyNodeID is returned for a blank node id.
	ErrEmptyNodeID = errors.New("empty node id")
)

// Edge is a directed, weighted relation between two node ids.
type Edge struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Weight float64 `json:"weight"`
}

// Node is a node declaration with optional scalar attributes.
type Node struct {
	ID         string         `json:"id"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Graph is a directed multigraph with string node ids. Nodes keep their
// insertion order; edges keep their input order and may repeat.
type Graph struct {
	nodes []string
	index map[string]int
	attrs map[string]map[string]any
	edges []Edge
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		index: make(map[string]int),
		attrs: make(map[string]map[string]any),
	}
}

// Build constructs a graph from an edge list and an optional node table.
// When nodes is nil, endpoints are created implicitly in first-seen order.
// When nodes is non-nil, every edge endpoint must be declared in it.
func Build(edges []Edge, nodes []Node) (*Graph, error) {
	g := New()
	strict := nodes != nil

	for _, n := range nodes {
		if err := g.AddNode(n.ID, n.Attributes); err != nil {
			return nil, err
		}
	}

	for i, e := range edges {
		if strict {
			if err := g.AddEdge(e.From, e.To, e.Weight); err != nil {
				return nil, fmt.Errorf("edge %d: %w", i, err)
			}
			continue
		}
		if err := g.ensureNode(e.From); err != nil {
			return nil, fmt.Errorf("edge %d: %w", i, err)
		}
		if err := g.ensureNode(e.To); err != nil {
			return nil, fmt.Errorf("edge %d: %w", i, err)
		}
		g.edges = append(g.edges, e)
	}

	return g, nil
}

// AddNode declares a node. Attributes are copied.
func (g *Graph) AddNode(id string, attrs map[string]any) error {
	if id == "" {
		return ErrEmptyNodeID
	}
	if _, exists := g.index[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, id)
	}
	g.index[id] = len(g.nodes)
	g.nodes = append(g.nodes, id)
	if len(attrs) > 0 {
		g.attrs[id] = copyAttrs(attrs)
	}
	return nil
}

func (g *Graph) ensureNode(id string) error {
	if id == "" {
		return ErrEmptyNodeID
	}
	if _, exists := g.index[id]; exists {
		return nil
	}
	return g.AddNode(id, nil)
}

// AddEdge appends an edge between two declared nodes.
func (g *Graph) AddEdge(from, to string, weight float64) error {
	if _, ok := g.index[from]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, from)
	}
	if _, ok := g.index[to]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, to)
	}
	g.edges = append(g.edges, Edge{From: from, To: to, Weight: weight})
	return nil
}

// Nodes returns node ids in insertion order.
func (g *Graph) Nodes() []string {
	out := make([]string, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Edges returns the edge sequence.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// NumNodes returns the number of nodes.
func (g *Graph) NumNodes() int { return len(g.nodes) }

// NumEdges returns the number of edges, counting parallel edges separately.
func (g *Graph) NumEdges() int { return len(g.edges) }

// HasNode reports whether id is a node of g.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.index[id]
	return ok
}

// IndexOf returns the position of id in node order, or -1.
func (g *Graph) IndexOf(id string) int {
	if i, ok := g.index[id]; ok {
		return i
	}
	return -1
}

// Attribute returns a node attribute and whether it was set.
func (g *Graph) Attribute(node, field string) (any, bool) {
	attrs, ok := g.attrs[node]
	if !ok {
		return nil, false
	}
	v, ok := attrs[field]
	return v, ok
}

// Attributes returns a copy of all attributes of node.
func (g *Graph) Attributes(node string) map[string]any {
	return copyAttrs(g.attrs[node])
}

// AttributeNames returns the sorted union of attribute names across nodes.
func (g *Graph) AttributeNames() []string {
	seen := make(map[string]bool)
	for _, attrs := range g.attrs {
		for k := range attrs {
			seen[k] = true
		}
	}
	names := make([]string, 0, len(seen))
	for k := range seen {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// TotalWeight returns the sum of all edge weights.
func (g *Graph) TotalWeight() float64 {
	total := 0.0
	for _, e := range g.edges {
		total += e.Weight
	}
	return total
}

// Equal reports whether two graphs have the same nodes (in order), the same
// attributes and the same edge sequence.
func (g *Graph) Equal(other *Graph) bool {
	if g.NumNodes() != other.NumNodes() || g.NumEdges() != other.NumEdges() {
		return false
	}
	for i, id := range g.nodes {
		if other.nodes[i] != id {
			return false
		}
		if !attrsEqual(g.attrs[id], other.attrs[id]) {
			return false
		}
	}
	for i, e := range g.edges {
		if other.edges[i] != e {
			return false
		}
	}
	return true
}

func copyAttrs(attrs map[string]any) map[string]any {
	if attrs == nil {
		return nil
	}
	out := make(map[string]any, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}

func attrsEqual(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if w, ok := b[k]; !ok || w != v {
			return false
		}
	}
	return true
}
