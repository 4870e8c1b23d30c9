// Package commands defines the CLI command structure and flag bindings.
//
// Command execution is delegated to handler functions in the handlers
// package.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/redhatqe/ocp-addons-operators-cli/cmd/ocp-addons-operators/handlers"
	"github.com/redhatqe/ocp-addons-operators-cli/internal/config"
	"github.com/redhatqe/ocp-addons-operators-cli/internal/product"
)

// Root returns the root command. Without a subcommand it installs or
// uninstalls the requested products.
func Root() *cobra.Command {
	cfg := config.New()
	var (
		action     string
		executor   string
		configFile string
		addons     []string
		operators  []string
	)

	cmd := &cobra.Command{
		Use:   "ocp-addons-operators",
		Short: "Install or uninstall OpenShift add-ons and operators",
		Long: `Install or uninstall OpenShift managed add-ons and OLM operators.

Products are given as repeated --addon and --operator flags, each a list of
key=value pairs separated by ';'. Add-ons are managed through OCM and need an
OCM token and a cluster name; operators are managed through a kubeconfig.

Examples:
  # Install two operators in parallel
  ocp-addons-operators -a install -p --kubeconfig ~/kubeconfig \
    -o 'name=rhods-operator' \
    -o 'name=serverless-operator;namespace=openshift-serverless;timeout=30m'

  # Uninstall an add-on on stage
  ocp-addons-operators -a uninstall -c my-cluster -t "$OCM_TOKEN" \
    --addon 'name=ocm-addon-test-operator'

  # Take everything from a file
  ocp-addons-operators --config products.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg.Action = product.Action(action)
			cfg.Executor = config.Executor(executor)
			return handlers.Run(cmd.Context(), handlers.RunOptions{
				Config:      cfg,
				ConfigFile:  configFile,
				Addons:      addons,
				Operators:   operators,
				FlagChanged: func(name string) bool { return cmd.Flags().Changed(name) },
				Out:         cmd.OutOrStdout(),
				Err:         cmd.ErrOrStderr(),
			})
		},
	}

	f := cmd.Flags()
	f.StringVarP(&action, config.FlagAction, "a", "", "Action to perform: install or uninstall")
	f.StringArrayVarP(&operators, "operator", "o", nil, "Operator to install or uninstall, e.g. 'name=rhods-operator;namespace=redhat-ods-operator' (repeatable)")
	f.StringArrayVar(&addons, "addon", nil, "Add-on to install or uninstall, e.g. 'name=managed-odh;notification-email=me@example.com' (repeatable)")
	f.BoolVarP(&cfg.Parallel, config.FlagParallel, "p", false, "Run actions in parallel")
	f.StringVar(&executor, config.FlagExecutor, string(config.ExecutorPool), "Parallel executor: pool (goroutines) or process (one worker process per product)")
	f.IntVar(&cfg.MaxWorkers, config.FlagMaxWorkers, 0, "Maximum number of products run at once by the pool executor (0 = unlimited)")

	f.StringVar(&cfg.Kubeconfig, config.FlagKubeconfig, "", "Kubeconfig of the operators' cluster")
	f.StringVarP(&cfg.ClusterName, config.FlagClusterName, "c", "", "OCM cluster name of the add-ons")
	f.StringVarP(&cfg.OCMToken, "ocm-token", "t", "", "OCM offline token (env "+config.EnvOCMToken+")")
	f.StringVar(&cfg.BrewToken, "brew-token", "", "Brew token, required for managed-odh on stage (env "+config.EnvBrewToken+")")
	f.StringVarP(&cfg.Endpoint, config.FlagEndpoint, "e", config.DefaultSSOTokenURL, "SSO token endpoint")
	f.StringVar(&configFile, "config", "", "YAML file with the run configuration; explicit flags take precedence")

	f.StringVar(&cfg.IIB.File, config.FlagIIBFile, "", "Local IIB index file (env "+config.EnvIIBFile+")")
	f.StringVar(&cfg.IIB.S3Bucket, config.FlagIIBS3Bucket, "", "S3 bucket of the IIB index (env "+config.EnvIIBS3Bucket+")")
	f.StringVar(&cfg.IIB.S3Key, config.FlagIIBS3Key, "", "S3 key of the IIB index (env "+config.EnvIIBS3Key+")")
	f.StringVar(&cfg.IIB.URL, config.FlagIIBURL, "", "URL of the IIB index")

	f.StringVar(&cfg.ReportFile, config.FlagReportFile, "", "Write the results to this file (.json, .yaml)")
	f.StringVar(&cfg.MetricsFile, config.FlagMetricsFile, "", "Write Prometheus metrics to this file")
	f.BoolVar(&cfg.Debug, "debug", false, "Enable debug logs")
	f.BoolVarP(&cfg.AssumeYes, "yes", "y", false, "Do not ask for confirmation before uninstalling")

	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())
	cmd.AddCommand(Worker())

	return cmd
}
