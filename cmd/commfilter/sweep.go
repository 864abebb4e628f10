package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gilchrisn/graph-community-filter/pkg/pipeline"
)

var (
	sweepThresholds []int
	sweepDetector   string
	sweepFormat     string
)

func init() {
	addGraphFlags(sweepCmd)
	sweepCmd.Flags().IntSliceVar(&sweepThresholds, "thresholds", []int{1, 2, 3, 5, 10, 20}, "Thresholds to evaluate")
	sweepCmd.Flags().StringVar(&sweepDetector, "detector", "", "Detector: louvain, modularity, betweenness or components")
	sweepCmd.Flags().StringVar(&sweepFormat, "format", "json", "Report encoding: json or yaml")
	rootCmd.AddCommand(sweepCmd)
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Show how many nodes and communities survive at several thresholds",
	Long: `Detect communities once, then summarize the kept/dropped partition at each
threshold without detecting again.

Examples:
  commfilter sweep -e links.txt --thresholds 2,5,10
  commfilter sweep -e links.txt --human`,
	RunE: runSweep,
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, _, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if sweepDetector != "" {
		cfg.Set("detector.name", sweepDetector)
	}
	settings, err := cfg.Settings()
	if err != nil {
		return err
	}
	if len(sweepThresholds) == 0 {
		return fmt.Errorf("at least one threshold is required")
	}

	g, err := loadGraph(logger)
	if err != nil {
		return err
	}
	detector, err := buildDetector(settings, logger)
	if err != nil {
		return err
	}

	res, err := pipeline.New(detector,
		pipeline.WithThreshold(settings.Threshold),
		pipeline.WithAlpha(settings.Alpha),
		pipeline.WithLogger(logger),
	).Run(context.Background(), g)
	if err != nil {
		return err
	}

	summaries, err := res.Sweep(sweepThresholds)
	if err != nil {
		return err
	}

	if humanOutput {
		outputHuman("Detector %s: %d nodes, %d communities\n\n", res.Detector, g.NumNodes(), len(res.Partition.Sizes))
		outputHuman("%10s %10s %10s %10s\n", "THRESHOLD", "KEPT_COMM", "KEPT", "DROPPED")
		for _, s := range summaries {
			outputHuman("%10d %10d %10d %10d\n", s.Threshold, s.KeptCommunities, s.KeptNodes, s.DroppedNodes)
		}
		return nil
	}

	rep := res.Report()
	rep.Sweep = summaries
	return pipeline.WriteReport(os.Stdout, rep, sweepFormat)
}
