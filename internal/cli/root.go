// Package cli implements the cobra command tree for docsift.
package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hupe1980/docsift/internal/config"
	"github.com/hupe1980/docsift/internal/logging"
	"github.com/hupe1980/docsift/internal/tree"
	"github.com/hupe1980/docsift/internal/version"
)

// Process exit codes.
const (
	ExitOK        = 0
	ExitRuntime   = 1
	ExitUsage     = 2
	ExitConfig    = 3
	ExitDocument  = 4
	ExitDifferent = 5
)

// ExitError wraps an error with a specific process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}

	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Execute builds the command tree, runs it, and returns the exit code.
func Execute() int {
	cmd := NewRootCommand()

	err := cmd.Execute()
	if err == nil {
		return ExitOK
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", exitErr.Err)
		}

		return exitErr.Code
	}

	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)

	return ExitRuntime
}

// exitCodeFor maps an engine error to its exit code.
func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, tree.ErrConfig):
		return ExitConfig
	case errors.Is(err, tree.ErrMalformed), errors.Is(err, tree.ErrMissingValue), errors.Is(err, tree.ErrTooDeep),
		errors.Is(err, tree.ErrTooLarge):
		return ExitDocument
	default:
		return ExitRuntime
	}
}

// engineError attaches the matching exit code to err.
func engineError(err error) error {
	if err == nil {
		return nil
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}

	return &ExitError{Code: exitCodeFor(err), Err: err}
}

// NewRootCommand constructs the top-level cobra.Command with all
// subcommands attached.
func NewRootCommand() *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "docsift",
		Short: "Filter, collapse and unwrap annotated YAML/JSON documents",
		Long: `docsift transforms hierarchical YAML or JSON documents whose nodes carry
inline annotations.

Content nodes wrap a value together with a verbosity level and a set of
tags. Filtering prunes every content node above a target verbosity or
failing an include/exclude tag rule, then unwraps the survivors to their
plain content. Collapsing resolves multi-variant mappings, such as
per-language translations, to the selected variant.

Each subtree may override the key names and defaults through an embedded
configuration mapping, so one source document can produce many tailored
outputs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd, cfgFile)
			if err != nil {
				return &ExitError{Code: ExitUsage, Err: err}
			}

			info := version.GetInfo()

			ok, err := info.Satisfies(cfg.Requires)
			if err != nil {
				return &ExitError{Code: ExitUsage, Err: err}
			}

			if !ok {
				return &ExitError{Code: ExitUsage, Err: fmt.Errorf(
					"docsift %s does not satisfy the configured requirement %q", info.Version, cfg.Requires)}
			}

			logger := logging.Setup(cfg)

			ctx := cmd.Context()
			ctx = config.NewContext(ctx, cfg)
			ctx = config.NewContextWithConfigFile(ctx, cfg.ConfigFile)
			ctx = logging.NewContext(ctx, logger)
			cmd.SetContext(ctx)

			logger.Debug("configuration loaded",
				slog.String("logLevel", cfg.LogLevel),
				slog.String("logFormat", cfg.LogFormat),
				slog.String("configFile", cfg.ConfigFile),
			)

			return nil
		},
	}

	// Global persistent flags.
	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: .docsift.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "text", "log format: text, json")
	pf.Bool("no-color", false, "disable colored output")
	pf.BoolP("quiet", "q", false, "suppress non-essential output")

	// Flag parsing errors return exit code 2.
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: ExitUsage, Err: err}
	})

	cmd.AddCommand(
		newFilterCommand(),
		newCollapseCommand(),
		newRunCommand(),
		newUnwrapCommand(),
		newCompareCommand(),
		newWatchCommand(),
		newVersionCommand(),
		newCompletionCommand(),
	)

	return cmd
}
