package scaling

import (
	"context"
	"time"

	"dbscale/pkg/config"
	"dbscale/pkg/controlplane"
	"dbscale/pkg/logger"
)

// Convergence waits for a requested capacity change to take effect and
// reports whether the control plane converged on the expected value. The
// returned capacity is the last one observed; err is a read failure, not a
// mismatch.
type Convergence interface {
	Await(ctx context.Context, id controlplane.DatabaseID, want int) (observed int, verified bool, err error)
}

// FixedDelay sleeps for the settle interval and then reads the capacity
// once. This mirrors the original fixed-sleep behavior; a mismatch after the
// wait is a hard failure for the caller.
type FixedDelay struct {
	Client controlplane.Client
	Delay  time.Duration
}

func (f *FixedDelay) Await(ctx context.Context, id controlplane.DatabaseID, want int) (int, bool, error) {
	select {
	case <-time.After(f.Delay):
	case <-ctx.Done():
		return 0, false, ctx.Err()
	}

	snap, err := f.Client.GetDatabase(ctx, id)
	if err != nil {
		return 0, false, err
	}
	return snap.Capacity, snap.Capacity == want, nil
}

// Poller re-reads the capacity on an interval until it matches or the
// deadline expires. Transient read errors during the poll are retried until
// the deadline; only the last read error is surfaced.
type Poller struct {
	Client   controlplane.Client
	Interval time.Duration
	Timeout  time.Duration
}

func (p *Poller) Await(ctx context.Context, id controlplane.DatabaseID, want int) (int, bool, error) {
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	timeout := time.After(p.Timeout)

	var lastObserved int
	var lastErr error

	for {
		select {
		case <-ctx.Done():
			return lastObserved, false, ctx.Err()

		case <-timeout:
			logger.WarnCtx(ctx, "capacity did not converge to %d within %v for %s (last observed: %d)",
				want, p.Timeout, id.Server, lastObserved)
			return lastObserved, false, lastErr

		case <-ticker.C:
			snap, err := p.Client.GetDatabase(ctx, id)
			if err != nil {
				logger.WarnCtx(ctx, "capacity poll read failed for %s: %v, will retry", id.Server, err)
				lastErr = err
				continue
			}
			lastErr = nil
			lastObserved = snap.Capacity
			if snap.Capacity == want {
				return snap.Capacity, true, nil
			}
		}
	}
}

// NewConvergence builds the configured strategy for one direction. Scale-down
// gets the longer deadline because those operations historically take longer
// to reach a consistent state.
func NewConvergence(client controlplane.Client, cfg config.ConvergenceConfig, direction Direction) Convergence {
	settle := time.Duration(cfg.ScaleUpSettleSeconds) * time.Second
	if direction == DirectionDown {
		settle = time.Duration(cfg.ScaleDownSettleSeconds) * time.Second
	}

	if cfg.Strategy == "fixed" {
		return &FixedDelay{Client: client, Delay: settle}
	}
	return &Poller{
		Client:   client,
		Interval: time.Duration(cfg.PollIntervalSeconds) * time.Second,
		Timeout:  settle,
	}
}
