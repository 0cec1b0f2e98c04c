package scaling

import "errors"

// Failure kinds of a scaling run. Replica-level failures are downgraded to
// recorded warnings by the orchestrator; everything else propagates after a
// single failure notification.
var (
	// ErrBoundsViolation: scale-up target would exceed the configured
	// maximum. Scale-down never produces this, it clamps to the floor.
	ErrBoundsViolation = errors.New("target capacity exceeds configured maximum")

	// ErrUnsupportedSKU: the database is not on a SKU this tool may modify.
	ErrUnsupportedSKU = errors.New("database SKU is not supported for scaling")

	// ErrLookupFailed: control-plane read failure.
	ErrLookupFailed = errors.New("failed to read database from control plane")

	// ErrApplyFailed: control-plane write failure.
	ErrApplyFailed = errors.New("failed to apply capacity change")

	// ErrVerificationFailed: capacity did not match the target after the
	// convergence wait.
	ErrVerificationFailed = errors.New("capacity verification failed after convergence wait")
)
