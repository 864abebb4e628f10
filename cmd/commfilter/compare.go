package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gilchrisn/graph-community-filter/pkg/community"
	"github.com/gilchrisn/graph-community-filter/pkg/membership"
)

var (
	compareDetectors []string
	compareFile      string
)

func init() {
	addGraphFlags(compareCmd)
	compareCmd.Flags().StringSliceVar(&compareDetectors, "detectors", []string{"louvain", "modularity"}, "Detectors to compare")
	compareCmd.Flags().StringVar(&compareFile, "assignment", "", "Also compare a precomputed \"node community\" mapping")
	rootCmd.AddCommand(compareCmd)
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare the communities found by several detectors",
	Long: `Run several detectors on the same graph and report, for each, the number of
communities and their modularity, then the NMI and ARI of every pair.

Examples:
  commfilter compare -e links.txt --detectors louvain,modularity,components
  commfilter compare -e links.txt --assignment reference.txt --human`,
	RunE: runCompare,
}

// DetectorSummary is one detector's row of a comparison.
type DetectorSummary struct {
	Detector           string        `json:"detector"`
	Communities        int           `json:"communities"`
	Modularity         float64       `json:"modularity"`
	DirectedModularity float64       `json:"directed_modularity"`
	Elapsed            time.Duration `json:"elapsed_ns"`
}

// PairComparison is the agreement of two detectors.
type PairComparison struct {
	A string `json:"a"`
	B string `json:"b"`
	community.Comparison
}

func runCompare(cmd *cobra.Command, args []string) error {
	_, settings, logger, err := loadConfig()
	if err != nil {
		return err
	}
	g, err := loadGraph(logger)
	if err != nil {
		return err
	}

	var detectors []community.Detector
	for _, name := range compareDetectors {
		d, err := community.ByName(name, detectorOptions(settings), logger)
		if err != nil {
			return err
		}
		detectors = append(detectors, d)
	}
	if compareFile != "" {
		d, err := fileDetector(compareFile)
		if err != nil {
			return err
		}
		detectors = append(detectors, d)
	}
	if len(detectors) < 2 {
		return fmt.Errorf("need at least two detectors to compare, got %d", len(detectors))
	}

	ctx := context.Background()
	directed := community.Modularize{Resolution: settings.Resolution, Directed: true}
	assignments := make([]membership.Assignment, len(detectors))
	summaries := make([]DetectorSummary, len(detectors))
	for i, d := range detectors {
		start := time.Now()
		a, err := d.Detect(ctx, g)
		if err != nil {
			return fmt.Errorf("detecting with %s: %w", d.Name(), err)
		}
		q, err := community.Modularity(g, a, settings.Resolution)
		if err != nil {
			return err
		}
		assignments[i] = a
		summaries[i] = DetectorSummary{
			Detector:           d.Name(),
			Communities:        len(community.Groups(g, a)),
			Modularity:         q,
			DirectedModularity: directed.Score(g, a),
			Elapsed:            time.Since(start),
		}
	}

	var pairs []PairComparison
	for i := range detectors {
		for j := i + 1; j < len(detectors); j++ {
			c, err := community.Compare(g, assignments[i], assignments[j])
			if err != nil {
				return err
			}
			pairs = append(pairs, PairComparison{A: summaries[i].Detector, B: summaries[j].Detector, Comparison: c})
		}
	}

	if !humanOutput {
		return outputJSON(map[string]any{"detectors": summaries, "pairs": pairs})
	}

	outputHuman("%-12s %12s %12s %12s %12s\n", "DETECTOR", "COMMUNITIES", "MODULARITY", "DIRECTED_Q", "TIME")
	for _, s := range summaries {
		outputHuman("%-12s %12d %12.4f %12.4f %12s\n", s.Detector, s.Communities, s.Modularity, s.DirectedModularity, s.Elapsed.Round(time.Microsecond))
	}
	outputHuman("\n%-12s %-12s %8s %8s\n", "A", "B", "NMI", "ARI")
	for _, p := range pairs {
		outputHuman("%-12s %-12s %8.4f %8.4f\n", p.A, p.B, p.NMI, p.ARI)
	}
	return nil
}
