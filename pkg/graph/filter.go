package graph

// Filter returns the subgraph induced by the nodes of g that are not in
// dropped. Edges touching a dropped node are removed. g is not modified.
// Ids in dropped that are not nodes of g are ignored.
func Filter(g *Graph, dropped map[string]bool) *Graph {
	out := New()

	for _, id := range g.nodes {
		if dropped[id] {
			continue
		}
		out.index[id] = len(out.nodes)
		out.nodes = append(out.nodes, id)
		if attrs, ok := g.attrs[id]; ok {
			out.attrs[id] = copyAttrs(attrs)
		}
	}

	for _, e := range g.edges {
		if dropped[e.From] || dropped[e.To] {
			continue
		}
		out.edges = append(out.edges, e)
	}

	return out
}

// DropSet builds a lookup set from a list of node ids.
func DropSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
