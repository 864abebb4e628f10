package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gilchrisn/graph-community-filter/pkg/centrality"
	"github.com/gilchrisn/graph-community-filter/pkg/community"
	"github.com/gilchrisn/graph-community-filter/pkg/config"
	"github.com/gilchrisn/graph-community-filter/pkg/parser"
	"github.com/gilchrisn/graph-community-filter/pkg/pipeline"
	"github.com/gilchrisn/graph-community-filter/pkg/render"
	"github.com/gilchrisn/graph-community-filter/pkg/store"
)

var (
	runThreshold    int
	runAlpha        float64
	runDetector     string
	runAssignment   string
	runOutput       string
	runFormat       string
	runLayout       string
	runSizeByRank   bool
	runShowArrows   bool
	runReportFormat string
	runReuse        bool
	runWatch        bool
)

func init() {
	addGraphFlags(runCmd)
	runCmd.Flags().IntVarP(&runThreshold, "threshold", "t", 0, "Minimum community size to keep (default from config: 5)")
	runCmd.Flags().Float64Var(&runAlpha, "alpha", 0, "Colour alpha in [0,1] (default from config: 0.8)")
	runCmd.Flags().StringVar(&runDetector, "detector", "", "Detector: louvain, modularity, betweenness or components")
	runCmd.Flags().StringVar(&runAssignment, "assignment", "", "Use a precomputed \"node community\" mapping instead of detecting")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "Output file path (default: stdout)")
	runCmd.Flags().StringVar(&runFormat, "format", "html", "Output format: html, cytoscape or report")
	runCmd.Flags().StringVar(&runLayout, "layout", "force", "Layout: force, circle, grid or mds")
	runCmd.Flags().BoolVar(&runSizeByRank, "size-by-pagerank", false, "Scale node size by PageRank")
	runCmd.Flags().BoolVar(&runShowArrows, "arrows", false, "Draw edge arrows")
	runCmd.Flags().StringVar(&runReportFormat, "report-format", "json", "Report encoding: json or yaml")
	runCmd.Flags().BoolVar(&runReuse, "reuse", false, "Reuse a stored detection for the same graph")
	runCmd.Flags().BoolVar(&runWatch, "watch", false, "Re-run whenever an input file changes (needs --output)")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Detect communities, filter small ones and render the result",
	Long: `Detect communities, drop every node whose community has fewer members than
the threshold, colour the remaining communities and render the filtered graph.

Examples:
  # Render to an HTML page
  commfilter run --edges links.csv --nodes nodes.csv -d , --header -o graph.html

  # Keep communities with at least 3 members, print a YAML report
  commfilter run -e links.txt -t 3 --format report --report-format yaml

  # Use communities computed elsewhere
  commfilter run -e links.txt --assignment communities.txt --format cytoscape`,
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, _, logger, err := loadConfig()
	if err != nil {
		return err
	}
	applyRunFlags(cmd, cfg)
	settings, err := cfg.Settings()
	if err != nil {
		return err
	}
	switch runFormat {
	case "html", "cytoscape", "report":
	default:
		return fmt.Errorf("unknown format %q: must be html, cytoscape or report", runFormat)
	}
	if runWatch && runOutput == "" {
		return fmt.Errorf("--watch requires --output")
	}

	// A file assignment is re-read on every run so --watch sees edits; other
	// detectors are built once so their cache survives between runs.
	detectorFn := func() (community.Detector, error) { return fileDetector(runAssignment) }
	if runAssignment == "" {
		detector, err := buildDetector(settings, logger)
		if err != nil {
			return err
		}
		detectorFn = func() (community.Detector, error) { return detector, nil }
	}

	opts := []pipeline.Option{
		pipeline.WithThreshold(settings.Threshold),
		pipeline.WithAlpha(settings.Alpha),
		pipeline.WithLogger(logger),
	}
	if settings.StorePath != "" && runAssignment == "" {
		db, err := store.Open(settings.StorePath)
		if err != nil {
			return err
		}
		defer db.Close()
		opts = append(opts, pipeline.WithStore(db, runReuse))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	once := func() error {
		detector, err := detectorFn()
		if err != nil {
			return err
		}
		return runOnce(ctx, pipeline.New(detector, opts...), logger)
	}

	if !runWatch {
		return once()
	}
	if err := once(); err != nil {
		logger.Error().Err(err).Msg("Run failed, waiting for input changes")
	}
	return watchInputs(ctx, watchedPaths(), logger, once)
}

// runOnce loads the graph, runs the pipeline and writes the output.
func runOnce(ctx context.Context, p *pipeline.Pipeline, logger zerolog.Logger) error {
	g, err := loadGraph(logger)
	if err != nil {
		return err
	}
	res, err := p.Run(ctx, g)
	if err != nil {
		return err
	}

	if runFormat == "report" {
		f := os.Stdout
		if runOutput != "" {
			if f, err = os.Create(runOutput); err != nil {
				return fmt.Errorf("creating output file: %w", err)
			}
			defer f.Close()
		}
		return pipeline.WriteReport(f, res.Report(), runReportFormat)
	}

	data, err := buildRenderData(res)
	if err != nil {
		return err
	}

	var content string
	if runFormat == "cytoscape" {
		content, err = data.ToCytoscapeJSON()
		content += "\n"
	} else {
		htmlOpts := render.DefaultOptions()
		htmlOpts.Layout = runLayout
		if runLayout == "mds" {
			htmlOpts.Layout = "preset"
		}
		htmlOpts.ShowArrows = runShowArrows
		content, err = render.GenerateHTML(data, htmlOpts)
	}
	if err != nil {
		return err
	}

	if err := writeFileOrStdout(runOutput, content); err != nil {
		return err
	}
	if runOutput == "" {
		return nil
	}
	if humanOutput {
		outputHuman("Kept %d of %d nodes in %d communities; written to %s\n",
			len(res.Partition.Kept), g.NumNodes(), len(res.Partition.Large), runOutput)
		return nil
	}
	return outputJSON(map[string]any{"output": runOutput, "run_id": res.RunID, "summary": res.Partition.Summarize()})
}

func watchedPaths() []string {
	paths := []string{edgesPath}
	for _, p := range []string{nodesPath, runAssignment} {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("threshold") {
		cfg.Set("pipeline.threshold", runThreshold)
	}
	if cmd.Flags().Changed("alpha") {
		cfg.Set("pipeline.alpha", runAlpha)
	}
	if runDetector != "" {
		cfg.Set("detector.name", runDetector)
	}
}

// buildDetector returns the configured detector wrapped in a cache.
func buildDetector(settings config.Settings, logger zerolog.Logger) (community.Detector, error) {
	detector, err := community.ByName(settings.Detector, detectorOptions(settings), logger)
	if err != nil {
		return nil, err
	}
	return community.NewCached(detector, settings.CacheSize, logger)
}

func detectorOptions(settings config.Settings) community.Options {
	return community.Options{
		Resolution:    settings.Resolution,
		Seed:          settings.Seed,
		MaxLevels:     settings.MaxLevels,
		MaxIterations: settings.MaxIterations,
		MaxRemovals:   settings.MaxRemovals,
		Directed:      settings.Directed,
	}
}

// fileDetector reads a "node community" mapping with the input delimiter.
func fileDetector(path string) (community.Detector, error) {
	opts, err := parserOptions()
	if err != nil {
		return nil, err
	}
	opts.Header = false
	a, err := parser.LoadAssignment(path, opts)
	if err != nil {
		return nil, fmt.Errorf("reading assignment %s: %w", path, err)
	}
	return community.Fixed("file", a), nil
}

func buildRenderData(res *pipeline.Result) (*render.GraphData, error) {
	buildOpts := render.DefaultBuildOptions()
	if runSizeByRank && res.Filtered.NumNodes() > 0 {
		pr, err := centrality.NewPageRankCalculator().Calculate(res.Filtered)
		if err != nil {
			return nil, err
		}
		buildOpts.PageRank = pr
	}

	data := render.Build(res.Filtered, res.Colors, res.Assignment, buildOpts)
	if runLayout == "mds" {
		if err := render.NewMDSLayout().Apply(data, res.Filtered); err != nil {
			return nil, err
		}
	}
	return data, nil
}
