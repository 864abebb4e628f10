// Package pipeline runs community detection once and derives sizes, the
// kept/dropped partition, the filtered graph and community colours from it.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gilchrisn/graph-community-filter/pkg/community"
	"github.com/gilchrisn/graph-community-filter/pkg/graph"
	"github.com/gilchrisn/graph-community-filter/pkg/membership"
	"github.com/gilchrisn/graph-community-filter/pkg/palette"
	"github.com/gilchrisn/graph-community-filter/pkg/store"
)

// Pipeline holds the detector and settings for pipeline runs.
type Pipeline struct {
	detector  community.Detector
	store     *store.DB
	reuse     bool
	threshold int
	alpha     float64
	logger    zerolog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithThreshold sets the minimum kept community size.
func WithThreshold(t int) Option {
	return func(p *Pipeline) { p.threshold = t }
}

// WithAlpha sets the colour alpha.
func WithAlpha(alpha float64) Option {
	return func(p *Pipeline) { p.alpha = alpha }
}

// WithStore records every detection in db. When reuse is set, a stored run
// for the same graph and detector is loaded instead of detecting again.
func WithStore(db *store.DB, reuse bool) Option {
	return func(p *Pipeline) {
		p.store = db
		p.reuse = reuse
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// New creates a pipeline around detector.
func New(detector community.Detector, opts ...Option) *Pipeline {
	p := &Pipeline{
		detector:  detector,
		threshold: membership.DefaultThreshold,
		alpha:     palette.DefaultAlpha,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With().Str("component", "pipeline").Logger()
	return p
}

// Result is the output of one pipeline run. It is never mutated; Refilter
// returns a new Result.
type Result struct {
	RunID      string
	Detector   string
	Graph      *graph.Graph
	Assignment membership.Assignment
	Partition  *membership.Partition
	Filtered   *graph.Graph
	Colors     palette.ColorMap
	Alpha      float64
	Elapsed    time.Duration
}

// Run detects communities on g and derives the filtered, coloured result.
func (p *Pipeline) Run(ctx context.Context, g *graph.Graph) (*Result, error) {
	if p.threshold <= 0 {
		return nil, fmt.Errorf("%w: %d (must be at least 1)", membership.ErrInvalidThreshold, p.threshold)
	}

	start := time.Now()
	runID, a, err := p.detect(ctx, g)
	if err != nil {
		return nil, err
	}

	res, err := Derive(g, a, p.threshold, p.alpha)
	if err != nil {
		return nil, err
	}
	res.RunID = runID
	res.Detector = p.detector.Name()
	res.Elapsed = time.Since(start)

	p.logger.Info().
		Str("run_id", runID).
		Str("detector", res.Detector).
		Int("nodes", g.NumNodes()).
		Int("edges", g.NumEdges()).
		Int("communities", len(res.Partition.Sizes)).
		Int("kept_nodes", len(res.Partition.Kept)).
		Int("dropped_nodes", len(res.Partition.Dropped)).
		Dur("elapsed", res.Elapsed).
		Msg("Pipeline run complete")

	return res, nil
}

func (p *Pipeline) detect(ctx context.Context, g *graph.Graph) (string, membership.Assignment, error) {
	if p.store != nil && p.reuse {
		run, err := p.store.LatestRun(g.Fingerprint(), p.detector.Name())
		switch {
		case err == nil:
			_, a, err := p.store.LoadRun(run.ID)
			if err != nil {
				return "", nil, fmt.Errorf("loading stored run %s: %w", run.ID, err)
			}
			if err := a.CheckTotal(g); err == nil {
				p.logger.Debug().Str("run_id", run.ID).Msg("Reusing stored detection")
				return run.ID, a, nil
			}
			p.logger.Warn().Str("run_id", run.ID).Msg("Stored detection incomplete, detecting again")
		case !errors.Is(err, store.ErrRunNotFound):
			return "", nil, fmt.Errorf("looking up stored run: %w", err)
		}
	}

	a, err := p.detector.Detect(ctx, g)
	if err != nil {
		return "", nil, fmt.Errorf("detecting communities with %s: %w", p.detector.Name(), err)
	}

	if p.store == nil {
		return uuid.NewString(), a, nil
	}
	run, err := p.store.SaveRun(p.detector.Name(), g.Fingerprint(), g.Nodes(), a)
	if err != nil {
		return "", nil, fmt.Errorf("storing detection run: %w", err)
	}
	return run.ID, a, nil
}

// Derive computes everything downstream of detection: sizes, partition,
// filtered graph and colours. It is pure in its inputs.
func Derive(g *graph.Graph, a membership.Assignment, threshold int, alpha float64) (*Result, error) {
	partition, err := membership.Aggregate(g, a, threshold)
	if err != nil {
		return nil, err
	}

	return &Result{
		Graph:      g,
		Assignment: a.Clone(),
		Partition:  partition,
		Filtered:   graph.Filter(g, partition.DroppedSet()),
		Colors:     palette.Assign(partition.KeptCommunities(), alpha),
		Alpha:      alpha,
	}, nil
}

// Refilter derives a new result from the same detection at a different
// threshold.
func (r *Result) Refilter(threshold int) (*Result, error) {
	res, err := Derive(r.Graph, r.Assignment, threshold, r.Alpha)
	if err != nil {
		return nil, err
	}
	res.RunID = r.RunID
	res.Detector = r.Detector
	return res, nil
}

// Sweep summarizes the partition at each threshold without detecting again.
func (r *Result) Sweep(thresholds []int) ([]membership.Summary, error) {
	out := make([]membership.Summary, 0, len(thresholds))
	for _, t := range thresholds {
		p, err := membership.Aggregate(r.Graph, r.Assignment, t)
		if err != nil {
			return nil, err
		}
		out = append(out, p.Summarize())
	}
	return out, nil
}
