package cmd

import (
	"os"

	"dbscale/pkg/config"
	"dbscale/pkg/logger"
	"dbscale/pkg/scaling"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// cfg is loaded once before any subcommand runs and treated as immutable.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "dbscale",
	Short: "dbscale adjusts the vCore capacity of a managed SQL database within configured bounds",
	Long: `dbscale scales the compute capacity (vCore count) of a cloud-hosted
relational database up or down within configured bounds, scaling read
replicas before the primary, verifying convergence and reporting every step
to a Slack webhook.

It is meant to be invoked by a scheduling or alerting platform; the decision
of WHEN to scale is made upstream, dbscale only executes it safely.

Common workflows:

  Scale up by the configured step:
    dbscale up

  Scale down, forwarding the alert context that fired the run:
    dbscale down --alert-rule "cpu-low-sustained" --metric-value "12.5" --threshold "20"

  Host the HTTP trigger endpoint for alert webhooks:
    dbscale serve

Configuration:
  Settings come from a YAML config file (--config, default config/config.yaml)
  with flag and environment overrides:
    DBSCALE_CONFIG               config file path
    SLACK_WEBHOOK_URL            notification webhook (config takes priority)
    ARM_ACCESS_TOKEN             control-plane bearer token (name configurable)

Exit status is 0 on success or intentional skip (window gate, already at the
capacity floor) and 1 on any failure.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initRuntime(cmd)
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

// initRuntime loads configuration, applies flag overrides and initializes
// logging before any subcommand runs.
func initRuntime(cmd *cobra.Command) error {
	path := cfgFile
	if path == "" {
		path = viper.GetString("config")
	}

	if _, err := os.Stat(path); err == nil {
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded
	} else {
		// No config file: defaults plus flags/env must identify the target.
		cfg = config.Default()
	}

	applyOverrides(cmd, cfg)

	return logger.Init(cfg.Logger)
}

// applyOverrides copies explicitly-set flags over the file configuration.
func applyOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()

	if flags.Changed("database") {
		cfg.Scaling.Database.Name, _ = flags.GetString("database")
	}
	if flags.Changed("server") {
		cfg.Scaling.Database.Server, _ = flags.GetString("server")
	}
	if flags.Changed("resource-group") {
		cfg.Scaling.Database.ResourceGroup, _ = flags.GetString("resource-group")
	}
	if flags.Changed("subscription") {
		cfg.Scaling.Database.SubscriptionID, _ = flags.GetString("subscription")
	}
	if flags.Changed("replicas") {
		cfg.Scaling.Replicas, _ = flags.GetStringSlice("replicas")
	}
	if flags.Changed("min-cores") {
		cfg.Scaling.MinCores, _ = flags.GetInt("min-cores")
	}
	if flags.Changed("max-cores") {
		cfg.Scaling.MaxCores, _ = flags.GetInt("max-cores")
	}
	if flags.Changed("step") {
		cfg.Scaling.StepCores, _ = flags.GetInt("step")
	}
	if flags.Changed("webhook-url") {
		cfg.Notify.SlackWebhookURL, _ = flags.GetString("webhook-url")
	}
	if flags.Changed("port") {
		cfg.Server.Port, _ = flags.GetInt("port")
	}
}

// registerScaleFlags adds the target/bounds flags shared by up and down.
func registerScaleFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("database", "", "database name (overrides config)")
	flags.String("server", "", "primary server name (overrides config)")
	flags.String("resource-group", "", "resource group (overrides config)")
	flags.String("subscription", "", "subscription id (overrides config)")
	flags.StringSlice("replicas", nil, "ordered replica server names (overrides config)")
	flags.Int("min-cores", 0, "minimum vCore floor (overrides config)")
	flags.Int("max-cores", 0, "maximum vCore ceiling (overrides config)")
	flags.Int("step", 0, "vCores to add or remove per run (overrides config)")
	flags.String("webhook-url", "", "Slack webhook URL (overrides config)")
}

// triggerFromFlags collects the descriptive trigger-context flags.
func triggerFromFlags(cmd *cobra.Command) scaling.TriggerContext {
	flags := cmd.Flags()
	get := func(name string) string {
		v, _ := flags.GetString(name)
		return v
	}
	return scaling.TriggerContext{
		Source:        get("source"),
		AlertRule:     get("alert-rule"),
		JobID:         get("job-id"),
		TriggeredBy:   get("triggered-by"),
		CorrelationID: get("correlation-id"),
		MetricValue:   get("metric-value"),
		Threshold:     get("threshold"),
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config/config.yaml)")

	// Read environment variables that match "DBSCALE_VARNAME"
	viper.SetEnvPrefix("DBSCALE")
	viper.AutomaticEnv()
	viper.SetDefault("config", "config/config.yaml")
}
