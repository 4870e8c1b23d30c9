package commands

import (
	"github.com/spf13/cobra"

	"github.com/redhatqe/ocp-addons-operators-cli/cmd/ocp-addons-operators/handlers"
	"github.com/redhatqe/ocp-addons-operators-cli/internal/config"
)

// Worker returns the hidden command run by the process executor for a
// single product.
func Worker() *cobra.Command {
	var opts handlers.WorkerOptions

	cmd := &cobra.Command{
		Use:           "worker",
		Short:         "Run a single product action read from stdin",
		Hidden:        true,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.In = cmd.InOrStdin()
			opts.Err = cmd.ErrOrStderr()
			return handlers.Worker(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Action, config.FlagAction, "", "Action to perform")
	cmd.Flags().StringVar(&opts.Endpoint, config.FlagEndpoint, config.DefaultSSOTokenURL, "SSO token endpoint")
	cmd.Flags().BoolVar(&opts.Debug, "debug", false, "Enable debug logs")
	_ = cmd.MarkFlagRequired(config.FlagAction)

	return cmd
}
