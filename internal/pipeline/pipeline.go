// Package pipeline chains docsift passes over one document.
//
// A [Chain] runs its stages in order, feeding the output of each stage to
// the next one. Collapsing and filtering are independent, so stages may be
// combined in any order or used alone.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/hupe1980/docsift/internal/collapse"
	"github.com/hupe1980/docsift/internal/filter"
	"github.com/hupe1980/docsift/internal/logging"
	"github.com/hupe1980/docsift/internal/scope"
	"github.com/hupe1980/docsift/internal/unwrap"
)

// Stage is one pass of a pipeline. Stages are stateless and never modify
// the document they receive.
type Stage interface {
	// Name identifies the stage in logs and reports.
	Name() string
	// Apply runs the stage on doc.
	Apply(ctx context.Context, doc any) (*filter.Result, error)
}

// Report describes the run of a single stage.
type Report struct {
	Stage    string
	Pruned   int
	Duration time.Duration
}

// Result holds the outcome of a chain.
type Result struct {
	// Doc is the final document, nil when a stage pruned the root.
	Doc any
	// Dropped reports that the root was pruned.
	Dropped bool
	// Pruned counts the content nodes removed by all stages.
	Pruned int
	// Reports lists the stages that ran, in order.
	Reports []Report
}

// Chain applies stages sequentially.
type Chain struct {
	stages []Stage
}

// NewChain creates a chain from the given stages.
func NewChain(stages ...Stage) *Chain {
	return &Chain{stages: stages}
}

// Len returns the number of stages.
func (c *Chain) Len() int {
	return len(c.stages)
}

// Apply runs all stages in order. The context is checked between stages;
// once the root is pruned the remaining stages are skipped.
func (c *Chain) Apply(ctx context.Context, doc any) (*Result, error) {
	logger := logging.FromContext(ctx)
	combined := &Result{Doc: doc}

	for _, s := range c.stages {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		start := time.Now()

		r, err := s.Apply(ctx, combined.Doc)
		if err != nil {
			return nil, err
		}

		report := Report{Stage: s.Name(), Pruned: r.Pruned, Duration: time.Since(start)}
		combined.Reports = append(combined.Reports, report)
		combined.Pruned += r.Pruned
		combined.Doc = r.Doc

		logger.Debug("stage completed",
			slog.String("stage", report.Stage),
			slog.Int("pruned", report.Pruned),
			slog.Duration("duration", report.Duration),
		)

		if r.Dropped {
			combined.Dropped = true

			logger.Info("document pruned entirely", slog.String("stage", report.Stage))

			break
		}
	}

	return combined, nil
}

// ---------------------------------------------------------------------------
// Stages
// ---------------------------------------------------------------------------

// CollapseStage resolves multi-variant mappings.
type CollapseStage struct {
	Options collapse.Options
}

// Name returns "collapse".
func (s *CollapseStage) Name() string { return "collapse" }

// Apply collapses doc.
func (s *CollapseStage) Apply(_ context.Context, doc any) (*filter.Result, error) {
	out, err := collapse.Keys(doc, s.Options)
	if err != nil {
		return nil, err
	}

	return &filter.Result{Doc: out}, nil
}

// FilterStage runs the compound verbosity and tag filter.
type FilterStage struct {
	Target  float64
	Rules   filter.TagRules
	Options filter.Options
}

// Name returns "filter".
func (s *FilterStage) Name() string { return "filter" }

// Apply filters doc.
func (s *FilterStage) Apply(_ context.Context, doc any) (*filter.Result, error) {
	return filter.Compound(doc, s.Target, s.Rules, s.Options)
}

// UnwrapStage flattens content wrappers.
type UnwrapStage struct {
	ConfigKey  string
	ContentKey string
	Inherited  scope.Config
}

// Name returns "unwrap".
func (s *UnwrapStage) Name() string { return "unwrap" }

// Apply unwraps doc.
func (s *UnwrapStage) Apply(_ context.Context, doc any) (*filter.Result, error) {
	out, err := unwrap.Content(doc, s.ConfigKey, s.ContentKey, s.Inherited)
	if err != nil {
		return nil, err
	}

	return &filter.Result{Doc: out}, nil
}
