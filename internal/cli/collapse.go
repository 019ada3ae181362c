package cli

import (
	"github.com/spf13/cobra"

	"github.com/hupe1980/docsift/internal/config"
)

func newCollapseCommand() *cobra.Command {
	opts := &ioOptions{}

	cmd := &cobra.Command{
		Use:   "collapse [file|-]",
		Short: "Resolve multi-variant mappings to one variant",
		Long: `Collapse replaces every mapping whose keys are all collapsible keys,
for example one entry per language, by the value of the selected key.

The collapsible keys and the default key are declared in an embedded
configuration mapping. --user-key selects the variant; without it, or
with --lenient and a key that is not collapsible, the default key is used.

Unset flags fall back to the collapse section of the config file and to
DOCSIFT_COLLAPSE_* variables, e.g. DOCSIFT_COLLAPSE_USER_KEY.

Reads from stdin when no file is given or the file is "-".`,
		Example: `  docsift collapse cv.yaml -k de
  docsift collapse cv.yaml -k fr --lenient -o cv.fr.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			co := newCollapseOptions(config.FromContext(cmd.Context()).Collapse)

			p, err := resolveProfile(cmd.Context())
			if err != nil {
				return err
			}

			applyProfile(cmd, p, nil, &co)

			return newProcessor(*opts, co.stage()).run(cmd, inputArg(args))
		},
	}

	registerCollapseFlags(cmd, "config-key")
	registerProfileFlag(cmd)
	registerIOFlags(cmd, opts)

	return cmd
}
