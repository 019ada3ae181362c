package cli

import (
	"github.com/spf13/cobra"

	"github.com/hupe1980/docsift/internal/config"
)

func newUnwrapCommand() *cobra.Command {
	opts := &ioOptions{}

	cmd := &cobra.Command{
		Use:   "unwrap [file|-]",
		Short: "Replace content nodes by their content without filtering",
		Long: `Unwrap replaces every content node by its content and drops the
embedded filter configuration, keeping everything else. It turns the
output of "filter --no-unwrap" into the plain document.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keys := config.FromContext(cmd.Context()).Filter.Keys()

			return newProcessor(*opts, unwrapStage(keys)).run(cmd, inputArg(args))
		},
	}

	registerKeyFlags(cmd, false)
	registerIOFlags(cmd, opts)

	return cmd
}
