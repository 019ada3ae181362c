package cli

import (
	"github.com/spf13/cobra"

	"github.com/hupe1980/docsift/internal/config"
)

func newFilterCommand() *cobra.Command {
	opts := &ioOptions{}

	cmd := &cobra.Command{
		Use:   "filter [file|-]",
		Short: "Prune content nodes by verbosity and tags",
		Long: `Filter removes every content node whose verbosity exceeds
--target-verbosity or whose tags fail the include/exclude rules, then
replaces the surviving content nodes by their content.

A content node is a mapping holding the content key. Its verbosity and
tags are read from the verbosity and tags keys next to it. A mapping
without the verbosity key is not judged by the verbosity rule, and one
without the tags key is not judged by the tag rules; both are walked as
plain containers. A tags key holding null is the empty tag set.

Unset flags fall back to the filter section of the config file and to
DOCSIFT_FILTER_* variables, e.g. DOCSIFT_FILTER_TARGET_VERBOSITY.

Reads from stdin when no file is given or the file is "-".`,
		Example: `  docsift filter cv.yaml --target-verbosity 2
  docsift filter cv.yaml --include-tags backend,go --include-mode all -o cv.short.yaml
  cat cv.yaml | docsift filter --exclude-tags private --profile short`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fo := newFilterOptions(config.FromContext(cmd.Context()).Filter)

			p, err := resolveProfile(cmd.Context())
			if err != nil {
				return err
			}

			applyProfile(cmd, p, &fo, nil)

			stage, err := fo.stage()
			if err != nil {
				return engineError(err)
			}

			return newProcessor(*opts, stage).run(cmd, inputArg(args))
		},
	}

	registerFilterFlags(cmd)
	registerProfileFlag(cmd)
	registerIOFlags(cmd, opts)

	return cmd
}
