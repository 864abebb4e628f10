package graph

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
)

// Fingerprint returns a content hash over the node order and edge sequence.
// Two graphs with the same fingerprint get the same detection output, so it
// keys the detection cache and the run store. Attributes are not included.
func (g *Graph) Fingerprint() string {
	h := sha256.New()
	var buf [8]byte

	writeString := func(s string) {
		binary.LittleEndian.PutUint64(buf[:], uint64(len(s)))
		h.Write(buf[:])
		h.Write([]byte(s))
	}

	binary.LittleEndian.PutUint64(buf[:], uint64(len(g.nodes)))
	h.Write(buf[:])
	for _, id := range g.nodes {
		writeString(id)
	}

	binary.LittleEndian.PutUint64(buf[:], uint64(len(g.edges)))
	h.Write(buf[:])
	for _, e := range g.edges {
		binary.LittleEndian.PutUint64(buf[:], uint64(g.index[e.From]))
		h.Write(buf[:])
		binary.LittleEndian.PutUint64(buf[:], uint64(g.index[e.To]))
		h.Write(buf[:])
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(e.Weight))
		h.Write(buf[:])
	}

	return hex.EncodeToString(h.Sum(nil))
}
