package scaling

import (
	"context"
	"fmt"
	"time"

	"dbscale/pkg/controlplane"
	"dbscale/pkg/logger"
	"dbscale/pkg/notify"
)

// Orchestrator drives one scaling run: window gate, batch target
// calculation, replicas in order with failure isolation, then the primary
// with fail-fast, and a final aggregated summary notification.
type Orchestrator struct {
	client   controlplane.Client
	notifier notify.Notifier
	scaler   *Scaler

	now func() time.Time
}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator(client controlplane.Client, notifier notify.Notifier, scaler *Scaler) *Orchestrator {
	return &Orchestrator{
		client:   client,
		notifier: notifier,
		scaler:   scaler,
		now:      time.Now,
	}
}

// Run executes the scaling operation described by req. The summary is always
// populated; the error is non-nil only for fatal failures (invalid request,
// bounds violation, primary failure). A window gate block or floor
// short-circuit is an intentional skip, not an error.
func (o *Orchestrator) Run(ctx context.Context, req *Request) (*Summary, error) {
	req.Trigger.EnsureCorrelationID()
	ctx = logger.WithCorrelationID(ctx, req.Trigger.CorrelationID)

	summary := &Summary{
		Direction:     req.Direction,
		CorrelationID: req.Trigger.CorrelationID,
		StartedAt:     o.now(),
	}

	if err := req.Validate(); err != nil {
		return o.fatal(ctx, summary, req, fmt.Errorf("invalid scaling request: %w", err))
	}

	// Gate before touching any database. Blocked is a skip, not an error,
	// but it must page a human loudly enough to act manually if needed.
	if req.Gated() && !req.Window.Contains(o.now()) {
		logger.WarnCtx(ctx, "scale %s blocked: current time outside allowed window %s", req.Direction, req.Window.Describe())
		o.notifyGateBlocked(ctx, req)
		summary.Status = StatusSkipped
		o.finish(ctx, summary, req)
		return summary, nil
	}

	primarySnap, err := o.client.GetDatabase(ctx, req.Database)
	if err != nil {
		return o.fatal(ctx, summary, req, fmt.Errorf("%w: primary %s: %v", ErrLookupFailed, req.Database.Server, err))
	}

	// The batch target comes from the primary snapshot so all endpoints
	// converge on the same capacity, and re-runs after a partial failure
	// resolve already-scaled targets as skips.
	target, err := ComputeTarget(primarySnap.Capacity, req.Direction, req.StepCores, req.MinCores, req.MaxCores)
	if err != nil {
		return o.fatal(ctx, summary, req, err)
	}

	if req.Direction == DirectionDown && o.allAtOrBelowMinimum(ctx, req, primarySnap) {
		logger.InfoCtx(ctx, "primary and all replicas at or below %d vCores, nothing to scale down", req.MinCores)
		o.notifyFloorSkip(ctx, req, primarySnap.Capacity)
		summary.Status = StatusSkipped
		summary.FinalCapacity = primarySnap.Capacity
		o.finish(ctx, summary, req)
		return summary, nil
	}

	// Replicas first, in the given order. One bad replica must not block the
	// others or the primary.
	for _, replica := range req.Replicas {
		outcome := o.scaler.ScaleOne(ctx, replica, "replica", target, req)
		summary.Outcomes = append(summary.Outcomes, outcome)
		if outcome.Status == StatusFailed {
			summary.Errors = append(summary.Errors, fmt.Sprintf("replica %s: %s", replica, outcome.ErrorDetail))
			logger.WarnCtx(ctx, "replica %s failed, continuing with remaining targets: %s", replica, outcome.ErrorDetail)
		}
	}

	primaryOutcome := o.scaler.ScaleOne(ctx, req.Database.Server, "primary", target, req)
	summary.Outcomes = append(summary.Outcomes, primaryOutcome)
	summary.FinalCapacity = primaryOutcome.FinalCapacity

	if primaryOutcome.Status == StatusFailed {
		summary.Errors = append(summary.Errors, fmt.Sprintf("primary %s: %s", req.Database.Server, primaryOutcome.ErrorDetail))
		summary.Status = StatusFailed
		o.finish(ctx, summary, req)
		return summary, fmt.Errorf("primary %s: %w", req.Database.Server, primaryOutcome.Err())
	}

	// Re-read for the report; the run already succeeded even if this read
	// does not.
	if snap, err := o.client.GetDatabase(ctx, req.Database); err == nil {
		summary.FinalCapacity = snap.Capacity
	} else {
		logger.WarnCtx(ctx, "failed to re-read final primary capacity: %v", err)
	}

	if len(summary.Errors) > 0 {
		summary.Status = StatusPartialSuccess
	} else {
		summary.Status = StatusSuccess
	}

	o.finish(ctx, summary, req)
	return summary, nil
}

// allAtOrBelowMinimum reports whether the primary and every replica already
// sit at or below the floor, in which case the whole scale-down run is
// skipped to avoid per-target no-op chatter. A replica that cannot be read
// does not veto the run; its failure surfaces per-target instead.
func (o *Orchestrator) allAtOrBelowMinimum(ctx context.Context, req *Request, primary *controlplane.Snapshot) bool {
	if !AtOrBelowMinimum(primary.Capacity, req.MinCores) {
		return false
	}
	for _, replica := range req.Replicas {
		snap, err := o.client.GetDatabase(ctx, req.Database.WithServer(replica))
		if err != nil {
			logger.WarnCtx(ctx, "failed to read replica %s during floor check: %v", replica, err)
			return false
		}
		if !AtOrBelowMinimum(snap.Capacity, req.MinCores) {
			return false
		}
	}
	return true
}

// fatal records a run-level failure, notifies once and returns the summary
// with the error for the caller's exit status.
func (o *Orchestrator) fatal(ctx context.Context, summary *Summary, req *Request, err error) (*Summary, error) {
	summary.Status = StatusFailed
	summary.Errors = append(summary.Errors, err.Error())

	logger.ErrorCtx(ctx, "scaling run failed: %v", err)

	msg := notify.NewMessage(fmt.Sprintf("Database scale %s failed: %s", req.Direction, req.Database.Server), notify.SeverityCritical)
	msg.Body = err.Error()
	msg.AddSection("Resource", resourceFields(req.Database)...)
	addTriggerSection(msg, req.Trigger)
	o.send(ctx, msg)

	o.finish(ctx, summary, req)
	return summary, err
}

// finish stamps the duration and emits the aggregated summary notification.
// The summary goes out on every path, success or not, so the operator always
// has the full picture.
func (o *Orchestrator) finish(ctx context.Context, summary *Summary, req *Request) {
	summary.Duration = o.now().Sub(summary.StartedAt)

	severity := notify.SeverityInfo
	switch summary.Status {
	case StatusFailed:
		severity = notify.SeverityCritical
	case StatusPartialSuccess:
		severity = notify.SeverityWarning
	}

	succeeded, skipped, failed := summary.Counts()

	msg := notify.NewMessage(fmt.Sprintf("Scale %s summary for %s: %s", req.Direction, req.Database.Name, summary.Status), severity)
	msg.AddSection("Execution",
		notify.Field{Name: "Direction", Value: string(req.Direction)},
		notify.Field{Name: "Targets", Value: fmt.Sprintf("%d succeeded, %d skipped, %d failed", succeeded, skipped, failed)},
		notify.Field{Name: "Final primary capacity", Value: fmt.Sprintf("%d vCores", summary.FinalCapacity)},
		notify.Field{Name: "Duration", Value: summary.Duration.Round(time.Second).String()},
		notify.Field{Name: "Correlation id", Value: summary.CorrelationID},
	)
	if len(summary.Errors) > 0 {
		fields := make([]notify.Field, len(summary.Errors))
		for i, e := range summary.Errors {
			fields[i] = notify.Field{Name: fmt.Sprintf("Error %d", i+1), Value: e}
		}
		msg.AddSection("Errors", fields...)
	}
	addTriggerSection(msg, req.Trigger)
	o.send(ctx, msg)
}

func (o *Orchestrator) notifyGateBlocked(ctx context.Context, req *Request) {
	msg := notify.NewMessage(fmt.Sprintf("Database scale %s blocked by operating window: %s", req.Direction, req.Database.Server), notify.SeverityCritical)
	msg.Body = fmt.Sprintf("The current time is outside the allowed window %s. No capacity change was attempted. If scaling is required now, perform it manually.",
		req.Window.Describe())
	msg.AddSection("Resource", resourceFields(req.Database)...)
	addTriggerSection(msg, req.Trigger)
	o.send(ctx, msg)
}

func (o *Orchestrator) notifyFloorSkip(ctx context.Context, req *Request, capacity int) {
	msg := notify.NewMessage(fmt.Sprintf("Database scale down skipped: %s", req.Database.Server), notify.SeverityInfo)
	msg.Body = fmt.Sprintf("All targets are already at or below the minimum of %d vCores (primary at %d). Nothing to do.",
		req.MinCores, capacity)
	msg.AddSection("Resource", resourceFields(req.Database)...)
	addTriggerSection(msg, req.Trigger)
	o.send(ctx, msg)
}

func (o *Orchestrator) send(ctx context.Context, msg *notify.Message) {
	if err := o.notifier.Send(ctx, msg); err != nil {
		logger.WarnCtx(ctx, "failed to send notification %q: %v", msg.Title, err)
	}
}
