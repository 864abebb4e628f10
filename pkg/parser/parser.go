// Package parser reads delimited-text edge lists, node attribute tables and
// community mapping files into graph values.
package parser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gilchrisn/graph-community-filter/pkg/graph"
	"github.com/gilchrisn/graph-community-filter/pkg/membership"
)

// ErrMalformedRow is returned for rows that cannot be interpreted.
var ErrMalformedRow = errors.New("malformed row")

// Options controls how delimited files are read.
type Options struct {
	// Delimiter separates columns. Zero means runs of whitespace.
	Delimiter rune
	// Header skips the first non-comment row of an edge list.
	Header bool
	// Comment marks lines to ignore. Zero disables comments.
	Comment rune
	// DefaultWeight is used when an edge row has no weight column.
	DefaultWeight float64
}

// DefaultOptions reads whitespace separated edge lists without a header.
func DefaultOptions() Options {
	return Options{
		Delimiter:     0,
		Header:        false,
		Comment:       '#',
		DefaultWeight: 1.0,
	}
}

// CSVOptions reads comma separated files with a header row.
func CSVOptions() Options {
	return Options{
		Delimiter:     ',',
		Header:        true,
		Comment:       '#',
		DefaultWeight: 1.0,
	}
}

// ReadEdgeList reads rows of source, destination and an optional weight.
func ReadEdgeList(r io.Reader, opts Options) ([]graph.Edge, error) {
	rows, err := readRows(r, opts)
	if err != nil {
		return nil, err
	}
	if opts.Header && len(rows) > 0 {
		rows = rows[1:]
	}

	edges := make([]graph.Edge, 0, len(rows))
	for _, row := range rows {
		if len(row.fields) < 2 {
			return nil, fmt.Errorf("line %d: %w: expected source and destination, got %d columns",
				row.line, ErrMalformedRow, len(row.fields))
		}

		from := strings.TrimSpace(row.fields[0])
		to := strings.TrimSpace(row.fields[1])
		if from == "" || to == "" {
			return nil, fmt.Errorf("line %d: %w: empty node id", row.line, ErrMalformedRow)
		}

		weight := opts.DefaultWeight
		if len(row.fields) >= 3 && strings.TrimSpace(row.fields[2]) != "" {
			w, err := strconv.ParseFloat(strings.TrimSpace(row.fields[2]), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w: invalid weight %q", row.line, ErrMalformedRow, row.fields[2])
			}
			weight = w
		}

		edges = append(edges, graph.Edge{From: from, To: to, Weight: weight})
	}

	return edges, nil
}

// ReadNodeTable reads a node attribute table. The first row names the
// columns; the first column holds node ids and the rest become attributes.
// Numeric cells are stored as float64, everything else as string.
func ReadNodeTable(r io.Reader, opts Options) ([]graph.Node, error) {
	rows, err := readRows(r, opts)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: node table has no header row", ErrMalformedRow)
	}

	header := rows[0].fields
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	seen := make(map[string]int)
	nodes := make([]graph.Node, 0, len(rows)-1)
	for _, row := range rows[1:] {
		id := strings.TrimSpace(row.fields[0])
		if id == "" {
			return nil, fmt.Errorf("line %d: %w: empty node id", row.line, ErrMalformedRow)
		}
		if prev, dup := seen[id]; dup {
			return nil, fmt.Errorf("line %d: %w: %s (first declared on line %d)",
				row.line, graph.ErrDuplicateNode, id, prev)
		}
		seen[id] = row.line

		var attrs map[string]any
		for col := 1; col < len(header) && col < len(row.fields); col++ {
			if attrs == nil {
				attrs = make(map[string]any, len(header)-1)
			}
			attrs[header[col]] = parseScalar(row.fields[col])
		}
		nodes = append(nodes, graph.Node{ID: id, Attributes: attrs})
	}

	return nodes, nil
}

// ReadAssignment reads a community mapping with one "node community" pair
// per row. It lets the output of an external detector feed the pipeline.
func ReadAssignment(r io.Reader, opts Options) (membership.Assignment, error) {
	rows, err := readRows(r, opts)
	if err != nil {
		return nil, err
	}
	if opts.Header && len(rows) > 0 {
		rows = rows[1:]
	}

	a := make(membership.Assignment, len(rows))
	for _, row := range rows {
		if len(row.fields) < 2 {
			return nil, fmt.Errorf("line %d: %w: expected node and community", row.line, ErrMalformedRow)
		}
		id := strings.TrimSpace(row.fields[0])
		if id == "" {
			return nil, fmt.Errorf("line %d: %w: empty node id", row.line, ErrMalformedRow)
		}
		c, err := strconv.Atoi(strings.TrimSpace(row.fields[1]))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w: invalid community %q", row.line, ErrMalformedRow, row.fields[1])
		}
		a[id] = c
	}
	return a, nil
}

// WriteAssignment writes a in graph node order, one "node community" per line.
func WriteAssignment(w io.Writer, g *graph.Graph, a membership.Assignment) error {
	bw := bufio.NewWriter(w)
	for _, id := range g.Nodes() {
		c, ok := a[id]
		if !ok {
			continue
		}
		if _, err := fmt.Fprintf(bw, "%s %d\n", id, c); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Load reads an edge list and, when nodePath is not empty, a node table, and
// builds the graph. With a node table, edges must reference declared nodes.
func Load(edgePath, nodePath string, opts Options) (*graph.Graph, error) {
	edges, err := readFile(edgePath, func(r io.Reader) ([]graph.Edge, error) {
		return ReadEdgeList(r, opts)
	})
	if err != nil {
		return nil, fmt.Errorf("reading edge list %s: %w", edgePath, err)
	}

	var nodes []graph.Node
	if nodePath != "" {
		nodeOpts := opts
		nodeOpts.Header = true
		nodes, err = readFile(nodePath, func(r io.Reader) ([]graph.Node, error) {
			return ReadNodeTable(r, nodeOpts)
		})
		if err != nil {
			return nil, fmt.Errorf("reading node table %s: %w", nodePath, err)
		}
		if nodes == nil {
			nodes = []graph.Node{}
		}
	}

	g, err := graph.Build(edges, nodes)
	if err != nil {
		return nil, fmt.Errorf("building graph: %w", err)
	}
	return g, nil
}

// LoadAssignment reads a community mapping file.
func LoadAssignment(path string, opts Options) (membership.Assignment, error) {
	return readFile(path, func(r io.Reader) (membership.Assignment, error) {
		return ReadAssignment(r, opts)
	})
}

func readFile[T any](path string, read func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, err
	}
	defer f.Close()
	return read(f)
}

type row struct {
	line   int
	fields []string
}

// readRows splits input into rows, skipping blank and comment lines.
func readRows(r io.Reader, opts Options) ([]row, error) {
	if opts.Delimiter == 0 {
		return readWhitespaceRows(r, opts)
	}

	cr := csv.NewReader(r)
	cr.Comma = opts.Delimiter
	cr.Comment = opts.Comment
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var rows []row
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedRow, err)
		}
		line, _ := cr.FieldPos(0)
		if len(fields) == 1 && strings.TrimSpace(fields[0]) == "" {
			continue
		}
		rows = append(rows, row{line: line, fields: fields})
	}
	return rows, nil
}

func readWhitespaceRows(r io.Reader, opts Options) ([]row, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var rows []row
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if opts.Comment != 0 && strings.HasPrefix(text, string(opts.Comment)) {
			continue
		}
		rows = append(rows, row{line: line, fields: strings.Fields(text)})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

func parseScalar(s string) any {
	s = strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
