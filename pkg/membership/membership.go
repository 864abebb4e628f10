// Package membership turns a community assignment into community sizes and
// a kept/dropped partition of the nodes by a minimum community size.
package membership

import (
	"errors"
	"fmt"
	"sort"

	"github.com/gilchrisn/graph-community-filter/pkg/graph"
)

// DefaultThreshold is the minimum community size kept when none is configured.
const DefaultThreshold = 5

var (
	// ErrIncompleteAssignment is returned when a graph node has no community.
	ErrIncompleteAssignment = errors.New("incomplete community assignment")
	// ErrInvalidThreshold is returned for a size threshold below 1.
	ErrInvalidThreshold = errors.New("invalid size threshold")
)

// Assignment maps node id to community id.
type Assignment map[string]int

// Clone returns a copy of a.
func (a Assignment) Clone() Assignment {
	out := make(Assignment, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// CheckTotal returns ErrIncompleteAssignment naming the first node of g, in
// node order, that has no entry in a.
func (a Assignment) CheckTotal(g *graph.Graph) error {
	for _, id := range g.Nodes() {
		if _, ok := a[id]; !ok {
			return fmt.Errorf("%w: node %q has no community", ErrIncompleteAssignment, id)
		}
	}
	return nil
}

// SizeTable maps community id to member count.
type SizeTable map[int]int

// Total returns the sum of all community sizes.
func (s SizeTable) Total() int {
	total := 0
	for _, n := range s {
		total += n
	}
	return total
}

// Communities returns community ids in ascending order.
func (s SizeTable) Communities() []int {
	ids := make([]int, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Sizes counts the members of each community over the nodes of g. Entries
// of a for ids that are not nodes of g are ignored.
func Sizes(g *graph.Graph, a Assignment) (SizeTable, error) {
	if err := a.CheckTotal(g); err != nil {
		return nil, err
	}

	sizes := make(SizeTable)
	for _, id := range g.Nodes() {
		sizes[a[id]]++
	}
	return sizes, nil
}

// Partition splits the nodes of a graph by the size of their community.
type Partition struct {
	Threshold int       `json:"threshold" yaml:"threshold"`
	Sizes     SizeTable `json:"sizes" yaml:"sizes"`
	Large     []int     `json:"large" yaml:"large"`
	Small     []int     `json:"small" yaml:"small"`
	Kept      []string  `json:"kept" yaml:"kept"`
	Dropped   []string  `json:"dropped" yaml:"dropped"`

	assignment Assignment
}

// Aggregate computes community sizes and partitions the nodes of g: nodes in
// communities with at least threshold members are kept, the rest dropped.
// Kept and Dropped follow graph node order; Large and Small are ascending.
func Aggregate(g *graph.Graph, a Assignment, threshold int) (*Partition, error) {
	if threshold <= 0 {
		return nil, fmt.Errorf("%w: %d (must be at least 1)", ErrInvalidThreshold, threshold)
	}

	sizes, err := Sizes(g, a)
	if err != nil {
		return nil, err
	}

	p := &Partition{
		Threshold:  threshold,
		Sizes:      sizes,
		Large:      []int{},
		Small:      []int{},
		Kept:       []string{},
		Dropped:    []string{},
		assignment: make(Assignment, g.NumNodes()),
	}

	for _, c := range sizes.Communities() {
		if sizes[c] >= threshold {
			p.Large = append(p.Large, c)
		} else {
			p.Small = append(p.Small, c)
		}
	}

	for _, id := range g.Nodes() {
		c := a[id]
		p.assignment[id] = c
		if sizes[c] >= threshold {
			p.Kept = append(p.Kept, id)
		} else {
			p.Dropped = append(p.Dropped, id)
		}
	}

	return p, nil
}

// DroppedSet returns the dropped nodes as a lookup set.
func (p *Partition) DroppedSet() map[string]bool {
	return graph.DropSet(p.Dropped)
}

// IsKept reports whether node id survives the partition.
func (p *Partition) IsKept(id string) bool {
	c, ok := p.assignment[id]
	return ok && p.Sizes[c] >= p.Threshold
}

// CommunityOf returns the community of a partitioned node.
func (p *Partition) CommunityOf(id string) (int, bool) {
	c, ok := p.assignment[id]
	return c, ok
}

// KeptCommunities returns the distinct communities of kept nodes in order of
// first appearance over the kept nodes.
func (p *Partition) KeptCommunities() []int {
	seen := make(map[int]bool)
	out := []int{}
	for _, id := range p.Kept {
		c := p.assignment[id]
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// Summary is a compact view of a partition used by threshold sweeps.
type Summary struct {
	Threshold       int `json:"threshold" yaml:"threshold"`
	Communities     int `json:"communities" yaml:"communities"`
	KeptCommunities int `json:"kept_communities" yaml:"kept_communities"`
	KeptNodes       int `json:"kept_nodes" yaml:"kept_nodes"`
	DroppedNodes    int `json:"dropped_nodes" yaml:"dropped_nodes"`
}

// Summarize returns the counts of p.
func (p *Partition) Summarize() Summary {
	return Summary{
		Threshold:       p.Threshold,
		Communities:     len(p.Sizes),
		KeptCommunities: len(p.Large),
		KeptNodes:       len(p.Kept),
		DroppedNodes:    len(p.Dropped),
	}
}
