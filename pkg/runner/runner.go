// Package runner assembles a scaling run from configuration: control-plane
// client, notifier, convergence strategy, scaler and orchestrator.
package runner

import (
	"context"

	"dbscale/pkg/config"
	"dbscale/pkg/controlplane"
	"dbscale/pkg/notify"
	"dbscale/pkg/scaling"
)

// Runner executes scaling operations for one configured database.
type Runner struct {
	cfg      *config.Config
	client   controlplane.Client
	notifier notify.Notifier
}

// New builds a runner from configuration.
func New(cfg *config.Config) (*Runner, error) {
	client, err := controlplane.New(&cfg.ControlPlane)
	if err != nil {
		return nil, err
	}

	return &Runner{
		cfg:      cfg,
		client:   client,
		notifier: notify.NewSlackNotifier(&cfg.Notify),
	}, nil
}

// Execute runs one scaling operation in the given direction. The trigger
// context is forwarded into notifications only.
func (r *Runner) Execute(ctx context.Context, direction scaling.Direction, trigger scaling.TriggerContext) (*scaling.Summary, error) {
	converge := scaling.NewConvergence(r.client, r.cfg.Scaling.Convergence, direction)
	scaler := scaling.NewScaler(r.client, r.notifier, converge)
	orchestrator := scaling.NewOrchestrator(r.client, r.notifier, scaler)

	return orchestrator.Run(ctx, BuildRequest(&r.cfg.Scaling, direction, trigger))
}

// BuildRequest maps the scaling configuration onto an immutable request.
func BuildRequest(sc *config.ScalingConfig, direction scaling.Direction, trigger scaling.TriggerContext) *scaling.Request {
	gated := make([]scaling.Direction, 0, len(sc.Window.GatedDirections))
	for _, d := range sc.Window.GatedDirections {
		gated = append(gated, scaling.Direction(d))
	}

	return &scaling.Request{
		Database: controlplane.DatabaseID{
			SubscriptionID: sc.Database.SubscriptionID,
			ResourceGroup:  sc.Database.ResourceGroup,
			Server:         sc.Database.Server,
			Name:           sc.Database.Name,
		},
		Replicas:      sc.Replicas,
		Direction:     direction,
		StepCores:     sc.StepCores,
		MinCores:      sc.MinCores,
		MaxCores:      sc.MaxCores,
		SupportedSKUs: sc.SupportedSKUs,
		Window: scaling.Window{
			AllowedHours: sc.Window.AllowedHours,
			OffsetHours:  sc.Window.TimezoneOffsetHours,
		},
		GatedDirections: gated,
		Trigger:         trigger,
	}
}
