package pipeline

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/gilchrisn/graph-community-filter/pkg/membership"
)

// CommunityReport describes one community of a result.
type CommunityReport struct {
	ID    int    `json:"id" yaml:"id"`
	Size  int    `json:"size" yaml:"size"`
	Kept  bool   `json:"kept" yaml:"kept"`
	Color string `json:"color,omitempty" yaml:"color,omitempty"`
}

// Report is the exportable summary of a result.
type Report struct {
	RunID         string               `json:"run_id" yaml:"run_id"`
	Detector      string               `json:"detector" yaml:"detector"`
	Nodes         int                  `json:"nodes" yaml:"nodes"`
	Edges         int                  `json:"edges" yaml:"edges"`
	FilteredNodes int                  `json:"filtered_nodes" yaml:"filtered_nodes"`
	FilteredEdges int                  `json:"filtered_edges" yaml:"filtered_edges"`
	Summary       membership.Summary   `json:"summary" yaml:"summary"`
	Communities   []CommunityReport    `json:"communities" yaml:"communities"`
	Sweep         []membership.Summary `json:"sweep,omitempty" yaml:"sweep,omitempty"`
}

// Report builds the summary of r. Communities are listed in ascending id.
func (r *Result) Report() Report {
	rep := Report{
		RunID:         r.RunID,
		Detector:      r.Detector,
		Nodes:         r.Graph.NumNodes(),
		Edges:         r.Graph.NumEdges(),
		FilteredNodes: r.Filtered.NumNodes(),
		FilteredEdges: r.Filtered.NumEdges(),
		Summary:       r.Partition.Summarize(),
	}

	for _, c := range r.Partition.Sizes.Communities() {
		size := r.Partition.Sizes[c]
		cr := CommunityReport{ID: c, Size: size, Kept: size >= r.Partition.Threshold}
		if col, ok := r.Colors[c]; ok {
			cr.Color = col.HexAlpha()
		}
		rep.Communities = append(rep.Communities, cr)
	}
	return rep
}

// WriteReport encodes v as "json" or "yaml".
func WriteReport(w io.Writer, v any, format string) error {
	switch format {
	case "", "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown report format %q: must be json or yaml", format)
	}
}
