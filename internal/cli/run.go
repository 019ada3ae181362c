package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/docsift/internal/config"
	"github.com/hupe1980/docsift/internal/pipeline"
)

type runOptions struct {
	ioOptions

	skipCollapse bool
	skipFilter   bool
}

func newRunCommand() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run [file|-]",
		Short: "Collapse and filter a document in one go",
		Long: `Run collapses multi-variant mappings and then applies the compound
filter, the usual way to derive a tailored document from an annotated
source. Either pass can be skipped.

The collapse configuration key is set with --collapse-config-key, all
other flags match the filter and collapse commands.`,
		Example: `  docsift run cv.yaml -k en --target-verbosity 2 -o cv.en.yaml
  docsift run cv.yaml --profile short --skip-collapse`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chain, err := opts.stages(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			return newProcessor(opts.ioOptions, chain...).run(cmd, inputArg(args))
		},
	}

	registerRunFlags(cmd, opts)

	return cmd
}

// registerRunFlags adds the flags shared by run and watch.
func registerRunFlags(cmd *cobra.Command, opts *runOptions) {
	registerFilterFlags(cmd)
	registerCollapseFlags(cmd, "collapse-config-key")
	registerProfileFlag(cmd)
	registerIOFlags(cmd, &opts.ioOptions)

	f := cmd.Flags()
	f.BoolVar(&opts.skipCollapse, "skip-collapse", false, "do not collapse multi-variant mappings")
	f.BoolVar(&opts.skipFilter, "skip-filter", false, "do not filter content nodes")
}

// stages builds the collapse and filter stages from the configuration in
// ctx after applying the profile.
func (o *runOptions) stages(ctx context.Context, cmd *cobra.Command) ([]pipeline.Stage, error) {
	if o.skipCollapse && o.skipFilter {
		return nil, &ExitError{Code: ExitUsage, Err: fmt.Errorf("--skip-collapse and --skip-filter leave nothing to run")}
	}

	cfg := config.FromContext(ctx)
	fo := newFilterOptions(cfg.Filter)
	co := newCollapseOptions(cfg.Collapse)

	p, err := resolveProfile(ctx)
	if err != nil {
		return nil, err
	}

	applyProfile(cmd, p, &fo, &co)

	var stages []pipeline.Stage

	if !o.skipCollapse {
		stages = append(stages, co.stage())
	}

	if !o.skipFilter {
		fs, err := fo.stage()
		if err != nil {
			return nil, engineError(err)
		}

		stages = append(stages, fs)
	}

	return stages, nil
}
