package community

import (
	"math"

	cgraph "github.com/gilchrisn/graph-community-filter/pkg/graph"
	"github.com/gilchrisn/graph-community-filter/pkg/membership"
)

// Comparison measures the agreement of two assignments over the same nodes.
type Comparison struct {
	NMI          float64 `json:"nmi" yaml:"nmi"`
	ARI          float64 `json:"ari" yaml:"ari"`
	CommunitiesA int     `json:"communities_a" yaml:"communities_a"`
	CommunitiesB int     `json:"communities_b" yaml:"communities_b"`
}

// contingency counts node pairs of communities over the nodes of g.
type contingency struct {
	n     int
	cells map[[2]int]int
	rowsA map[int]int
	rowsB map[int]int
}

// Compare returns normalized mutual information and the adjusted Rand index
// of a and b over the nodes of g. Both must be total on g.
func Compare(g *cgraph.Graph, a, b membership.Assignment) (Comparison, error) {
	if err := a.CheckTotal(g); err != nil {
		return Comparison{}, err
	}
	if err := b.CheckTotal(g); err != nil {
		return Comparison{}, err
	}

	ct := contingency{
		n:     g.NumNodes(),
		cells: make(map[[2]int]int),
		rowsA: make(map[int]int),
		rowsB: make(map[int]int),
	}
	for _, id := range g.Nodes() {
		ca, cb := a[id], b[id]
		ct.cells[[2]int{ca, cb}]++
		ct.rowsA[ca]++
		ct.rowsB[cb]++
	}

	return Comparison{
		NMI:          ct.nmi(),
		ARI:          ct.ari(),
		CommunitiesA: len(ct.rowsA),
		CommunitiesB: len(ct.rowsB),
	}, nil
}

// nmi is 2*I(A;B) / (H(A)+H(B)), taken as 1 when both partitions are a
// single block and 0 when only one is.
func (ct contingency) nmi() float64 {
	if ct.n == 0 {
		return 1
	}
	n := float64(ct.n)

	mutual := 0.0
	for cell, count := range ct.cells {
		pij := float64(count) / n
		pi := float64(ct.rowsA[cell[0]]) / n
		pj := float64(ct.rowsB[cell[1]]) / n
		mutual += pij * math.Log2(pij/(pi*pj))
	}

	ha, hb := entropy(ct.rowsA, n), entropy(ct.rowsB, n)
	switch {
	case ha == 0 && hb == 0:
		return 1
	case ha == 0 || hb == 0:
		return 0
	}
	return math.Max(0, math.Min(1, 2*mutual/(ha+hb)))
}

func (ct contingency) ari() float64 {
	if ct.n < 2 {
		return 1
	}

	sumCells := 0.0
	for _, count := range ct.cells {
		sumCells += pairs(count)
	}
	sumA, sumB := 0.0, 0.0
	for _, count := range ct.rowsA {
		sumA += pairs(count)
	}
	for _, count := range ct.rowsB {
		sumB += pairs(count)
	}

	expected := sumA * sumB / pairs(ct.n)
	maximum := (sumA + sumB) / 2
	if maximum == expected {
		return 1
	}
	return math.Max(-1, math.Min(1, (sumCells-expected)/(maximum-expected)))
}

func entropy(counts map[int]int, n float64) float64 {
	h := 0.0
	for _, count := range counts {
		p := float64(count) / n
		h -= p * math.Log2(p)
	}
	return h
}

func pairs(k int) float64 {
	return float64(k) * float64(k-1) / 2
}
