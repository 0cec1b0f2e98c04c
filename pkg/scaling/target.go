package scaling

import "fmt"

// ComputeTarget returns the bounded target capacity for one scaling step.
//
// Scale-up rejects a target above maxCores outright: exceeding the ceiling
// has billing and performance impact and must surface as an error. Scale-down
// clamps to minCores instead of failing: a cost-saving action should never
// error out of bounds.
func ComputeTarget(current int, direction Direction, stepCores, minCores, maxCores int) (int, error) {
	switch direction {
	case DirectionUp:
		target := current + stepCores
		if target > maxCores {
			return 0, fmt.Errorf("%w: %d + %d = %d > max %d",
				ErrBoundsViolation, current, stepCores, target, maxCores)
		}
		return target, nil
	case DirectionDown:
		target := current - stepCores
		if target < minCores {
			target = minCores
		}
		return target, nil
	default:
		return 0, fmt.Errorf("invalid direction %q", direction)
	}
}

// AtOrBelowMinimum reports whether the database already sits at or below the
// capacity floor, in which case a scale-down is skipped entirely rather than
// applied as a no-op.
func AtOrBelowMinimum(current, minCores int) bool {
	return current <= minCores
}
