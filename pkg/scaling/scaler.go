package scaling

import (
	"context"
	"fmt"

	"dbscale/pkg/controlplane"
	"dbscale/pkg/logger"
	"dbscale/pkg/notify"
)

// Scaler executes one scaling operation against one database endpoint:
// precondition checks, apply, convergence wait, verify, notify.
type Scaler struct {
	client   controlplane.Client
	notifier notify.Notifier
	converge Convergence
}

// NewScaler creates a scaler.
func NewScaler(client controlplane.Client, notifier notify.Notifier, converge Convergence) *Scaler {
	return &Scaler{
		client:   client,
		notifier: notifier,
		converge: converge,
	}
}

// ScaleOne scales a single server (primary or replica) of the request's
// database to the target capacity. The target is computed once per run from
// the primary snapshot, so a target already reached resolves as Skipped
// rather than a repeated apply-and-verify failure.
func (s *Scaler) ScaleOne(ctx context.Context, server, role string, target int, req *Request) Outcome {
	id := req.Database.WithServer(server)
	outcome := Outcome{
		Server:         server,
		Role:           role,
		TargetCapacity: target,
		Status:         StatusFailed,
	}

	// Always a fresh read: capacity may have drifted since the run started.
	snap, err := s.client.GetDatabase(ctx, id)
	if err != nil {
		return s.fail(ctx, outcome, id, req, fmt.Errorf("%w: %v", ErrLookupFailed, err))
	}
	outcome.PreviousCapacity = snap.Capacity
	outcome.FinalCapacity = snap.Capacity

	if !req.SKUSupported(snap.SKUName) {
		err := fmt.Errorf("%w: %s has SKU %q, supported: %v", ErrUnsupportedSKU, id.Server, snap.SKUName, req.SupportedSKUs)
		return s.fail(ctx, outcome, id, req, err)
	}

	if snap.Capacity == target {
		logger.InfoCtx(ctx, "%s %s already at target capacity %d, skipping", role, server, target)
		outcome.Status = StatusSkipped
		s.notifySkip(ctx, id, req, fmt.Sprintf("already at target capacity %d vCores", target))
		return outcome
	}

	if req.Direction == DirectionDown && AtOrBelowMinimum(snap.Capacity, req.MinCores) {
		logger.InfoCtx(ctx, "%s %s at %d vCores, at or below floor %d, skipping scale down", role, server, snap.Capacity, req.MinCores)
		outcome.Status = StatusSkipped
		s.notifySkip(ctx, id, req, fmt.Sprintf("current capacity %d vCores is at or below the minimum %d", snap.Capacity, req.MinCores))
		return outcome
	}

	s.notifyStarting(ctx, id, req, snap, target)

	logger.InfoCtx(ctx, "scaling %s %s from %d to %d vCores", role, server, snap.Capacity, target)
	if err := s.client.SetCapacity(ctx, id, target); err != nil {
		return s.fail(ctx, outcome, id, req, fmt.Errorf("%w: %v", ErrApplyFailed, err))
	}

	observed, verified, err := s.converge.Await(ctx, id, target)
	if err != nil && !verified {
		return s.fail(ctx, outcome, id, req, fmt.Errorf("%w: re-read after apply failed: %v", ErrVerificationFailed, err))
	}
	outcome.FinalCapacity = observed
	if !verified {
		err := fmt.Errorf("%w: expected %d vCores, control plane reports %d", ErrVerificationFailed, target, observed)
		return s.fail(ctx, outcome, id, req, err)
	}

	outcome.Status = StatusSuccess
	logger.InfoCtx(ctx, "scaled %s %s from %d to %d vCores", role, server, outcome.PreviousCapacity, observed)
	s.notifySuccess(ctx, id, req, &outcome)
	return outcome
}

// fail records the error on the outcome and emits the single failure
// notification for this target before returning control to the caller.
func (s *Scaler) fail(ctx context.Context, outcome Outcome, id controlplane.DatabaseID, req *Request, err error) Outcome {
	outcome.Status = StatusFailed
	outcome.err = err
	outcome.ErrorDetail = err.Error()

	logger.ErrorCtx(ctx, "scaling %s %s failed: %v", outcome.Role, outcome.Server, err)

	msg := notify.NewMessage(fmt.Sprintf("Database scale %s failed: %s", req.Direction, id.Server), notify.SeverityCritical)
	msg.Body = err.Error()
	msg.AddSection("Resource", resourceFields(id)...)
	msg.AddSection("Capacity",
		notify.Field{Name: "Current", Value: fmt.Sprintf("%d vCores", outcome.PreviousCapacity)},
		notify.Field{Name: "Target", Value: fmt.Sprintf("%d vCores", outcome.TargetCapacity)},
	)
	addTriggerSection(msg, req.Trigger)
	s.send(ctx, msg)

	return outcome
}

func (s *Scaler) notifyStarting(ctx context.Context, id controlplane.DatabaseID, req *Request, snap *controlplane.Snapshot, target int) {
	msg := notify.NewMessage(fmt.Sprintf("Scaling database %s %s", id.Server, req.Direction), notify.SeverityInfo)
	msg.Body = fmt.Sprintf("Requesting capacity change from %d to %d vCores.", snap.Capacity, target)
	msg.AddSection("Resource", resourceFields(id)...)
	addTriggerSection(msg, req.Trigger)
	s.send(ctx, msg)
}

func (s *Scaler) notifySuccess(ctx context.Context, id controlplane.DatabaseID, req *Request, outcome *Outcome) {
	msg := notify.NewMessage(fmt.Sprintf("Database %s scaled %s", id.Server, req.Direction), notify.SeverityInfo)
	msg.Body = fmt.Sprintf("Capacity changed from %d to %d vCores.", outcome.PreviousCapacity, outcome.FinalCapacity)
	msg.AddSection("Resource", resourceFields(id)...)
	addTriggerSection(msg, req.Trigger)
	s.send(ctx, msg)
}

func (s *Scaler) notifySkip(ctx context.Context, id controlplane.DatabaseID, req *Request, reason string) {
	msg := notify.NewMessage(fmt.Sprintf("Database scale %s skipped: %s", req.Direction, id.Server), notify.SeverityInfo)
	msg.Body = reason
	msg.AddSection("Resource", resourceFields(id)...)
	s.send(ctx, msg)
}

// send delivers a notification. Delivery failures are logged and never abort
// the scaling operation itself.
func (s *Scaler) send(ctx context.Context, msg *notify.Message) {
	if err := s.notifier.Send(ctx, msg); err != nil {
		logger.WarnCtx(ctx, "failed to send notification %q: %v", msg.Title, err)
	}
}

func resourceFields(id controlplane.DatabaseID) []notify.Field {
	return []notify.Field{
		{Name: "Database", Value: id.Name},
		{Name: "Server", Value: id.Server},
		{Name: "Resource group", Value: id.ResourceGroup},
		{Name: "Subscription", Value: id.SubscriptionID},
	}
}

func addTriggerSection(msg *notify.Message, t TriggerContext) {
	msg.AddSection("Trigger Context",
		notify.Field{Name: "Source", Value: t.Source},
		notify.Field{Name: "Alert rule", Value: t.AlertRule},
		notify.Field{Name: "Automation job", Value: t.JobID},
		notify.Field{Name: "Triggered by", Value: t.TriggeredBy},
		notify.Field{Name: "Correlation id", Value: t.CorrelationID},
		notify.Field{Name: "Metric value", Value: t.MetricValue},
		notify.Field{Name: "Threshold", Value: t.Threshold},
	)
}
