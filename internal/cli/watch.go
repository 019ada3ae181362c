package cli

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/docsift/internal/compare"
	"github.com/hupe1980/docsift/internal/config"
	"github.com/hupe1980/docsift/internal/logging"
	"github.com/hupe1980/docsift/internal/output"
	"github.com/hupe1980/docsift/internal/watch"
)

type watchOptions struct {
	runOptions

	debounce time.Duration
}

func newWatchCommand() *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-run collapse and filter whenever the input changes",
		Long: `Watch runs the same transformation as "run" and repeats it each time
the input file or the config file changes, writing the result to --output.

Changes arriving within the debounce interval are batched into one run.
When the batch contains the config file, the configuration and its
profiles are reloaded before the run. Each run reports the changed
files, the number of documents, pruned content nodes and how the output
changed since the previous run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), cmd, args[0], opts)
		},
	}

	registerRunFlags(cmd, &opts.runOptions)
	cmd.Flags().DurationVar(&opts.debounce, "debounce", 300*time.Millisecond, "debounce interval for file changes")

	return cmd
}

func runWatch(ctx context.Context, cmd *cobra.Command, input string, opts *watchOptions) error {
	if opts.output == "" || opts.output == output.StdioPath {
		return &ExitError{Code: ExitUsage, Err: fmt.Errorf("--output (-o) is required for watch mode")}
	}

	if input == output.StdioPath {
		return &ExitError{Code: ExitUsage, Err: fmt.Errorf("watch needs an input file, not stdin")}
	}

	// Fail fast on bad flags before watching.
	stages, err := opts.stages(ctx, cmd)
	if err != nil {
		return err
	}

	logger := logging.FromContext(ctx)
	configFile := config.ConfigFileFromContext(ctx)

	var (
		mu       sync.Mutex
		previous []any
		first    = true
	)

	runFn := func(fnCtx context.Context, changed watch.Batch) (*watch.RunResult, error) {
		mu.Lock()
		defer mu.Unlock()

		if configFile != "" && changed.Has(configFile) {
			cfg, err := config.Load(cmd, configFile)
			if err != nil {
				return nil, &ExitError{Code: ExitUsage, Err: err}
			}

			reloaded, err := opts.stages(config.NewContext(ctx, cfg), cmd)
			if err != nil {
				return nil, err
			}

			stages = reloaded

			logger.Info("configuration reloaded", slog.String("configFile", configFile))
		}

		result, err := newProcessor(opts.ioOptions, stages...).transform(fnCtx, input, nil)
		if err != nil {
			return nil, err
		}

		w := output.NewFileWriter(opts.output, output.WithLogger(logger))
		if err := w.Write(result.data); err != nil {
			return nil, err
		}

		summary := ""
		if !first {
			summary = changeSummary(previous, result.docs)
		}

		first = false
		previous = result.docs

		return &watch.RunResult{
			Documents: len(result.docs),
			Pruned:    result.pruned,
			Summary:   summary,
		}, nil
	}

	files := []string{input}
	if configFile != "" {
		files = append(files, configFile)
	}

	watchOpts := watch.Options{
		Files:    files,
		Debounce: opts.debounce,
		Logger:   logger,
		Out:      cmd.ErrOrStderr(),
	}

	return watch.Run(ctx, watchOpts, runFn)
}

// changeSummary describes how the output changed between two runs.
func changeSummary(before, after []any) string {
	r := compare.Documents(before, after)
	if r.Equal() {
		return "output unchanged"
	}

	return fmt.Sprintf("%d added, %d removed, %d modified",
		r.Count(compare.Added), r.Count(compare.Removed), r.Count(compare.Modified))
}
