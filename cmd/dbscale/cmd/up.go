package cmd

import (
	"dbscale/pkg/logger"
	"dbscale/pkg/runner"
	"dbscale/pkg/scaling"

	"github.com/spf13/cobra"
)

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Scale the database up by one step",
	Long: `Scale replicas then primary up by the configured step, fail-fast on the
primary. Refused outside the allowed time window when "up" is gated.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScale(cmd, scaling.DirectionUp)
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Scale the database down by one step",
	Long: `Scale replicas then primary down by the configured step, clamped at the
minimum vCore floor. A run that finds everything already at the floor is a
no-op, not an error.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScale(cmd, scaling.DirectionDown)
	},
}

// runScale executes one scaling run and reports its outcome through the exit
// code: nil for success and intentional skips, error for any failure.
func runScale(cmd *cobra.Command, direction scaling.Direction) error {
	defer logger.Sync()

	r, err := runner.New(cfg)
	if err != nil {
		logger.Errorf("initialization failed: %v", err)
		return err
	}

	summary, err := r.Execute(cmd.Context(), direction, triggerFromFlags(cmd))
	if err != nil {
		logger.Errorf("scale %s failed: %v", direction, err)
		return err
	}

	succeeded, skipped, failed := summary.Counts()
	logger.Infof("scale %s finished: status=%s succeeded=%d failed=%d skipped=%d final_capacity=%d",
		direction, summary.Status, succeeded, failed, skipped, summary.FinalCapacity)

	if summary.Status == scaling.StatusPartialSuccess {
		// Replica failures do not fail the run, the summary notification
		// carries the details for follow-up.
		logger.Warnf("scale %s completed with replica failures: %v", direction, summary.Errors)
	}
	return nil
}

// registerTriggerFlags adds the descriptive context flags forwarded into
// notifications. Available on both directions since alert rules fire both.
func registerTriggerFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("source", "", "triggering system, e.g. scheduler or alerting platform")
	flags.String("alert-rule", "", "name of the alert rule that fired")
	flags.String("job-id", "", "identifier of the triggering job")
	flags.String("triggered-by", "", "human or system identity behind the trigger")
	flags.String("correlation-id", "", "correlation id to carry through logs and notifications (generated when empty)")
	flags.String("metric-value", "", "observed metric value that fired the trigger")
	flags.String("threshold", "", "threshold the metric crossed")
}

func init() {
	for _, c := range []*cobra.Command{upCmd, downCmd} {
		registerScaleFlags(c)
		registerTriggerFlags(c)
		rootCmd.AddCommand(c)
	}
}
