package scaling

import (
	"errors"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestProperty_TargetStaysWithinBounds verifies that for any bounds and
// current capacity, a computed target never lands outside [min, max]:
// scale-down clamps to the floor, scale-up either stays at or under the
// ceiling or reports a bounds violation.
func TestProperty_TargetStaysWithinBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("scale-down never errors and never goes below the floor", prop.ForAll(
		func(min, span, current, step int) bool {
			max := min + span
			target, err := ComputeTarget(current, DirectionDown, step, min, max)
			if err != nil {
				return false
			}
			return target >= min && (target == current-step || target == min)
		},
		gen.IntRange(1, 64),
		gen.IntRange(0, 64),
		gen.IntRange(1, 128),
		gen.IntRange(1, 32),
	))

	properties.Property("scale-up never exceeds the ceiling", prop.ForAll(
		func(min, span, current, step int) bool {
			max := min + span
			target, err := ComputeTarget(current, DirectionUp, step, min, max)
			if err != nil {
				return errors.Is(err, ErrBoundsViolation) && current+step > max
			}
			return target == current+step && target <= max
		},
		gen.IntRange(1, 64),
		gen.IntRange(0, 64),
		gen.IntRange(1, 128),
		gen.IntRange(1, 32),
	))

	properties.Property("scale-down strictly reduces capacity above the floor", prop.ForAll(
		func(min, span, step, headroom int) bool {
			max := min + span + step + headroom
			current := min + headroom + 1 // strictly above the floor
			target, err := ComputeTarget(current, DirectionDown, step, min, max)
			if err != nil {
				return false
			}
			return target < current
		},
		gen.IntRange(1, 64),
		gen.IntRange(0, 64),
		gen.IntRange(1, 32),
		gen.IntRange(0, 32),
	))

	properties.TestingRun(t)
}

// TestProperty_WindowMembershipFollowsLocalHour verifies that window
// membership depends only on the shifted local hour, for any offset.
func TestProperty_WindowMembershipFollowsLocalHour(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("contains iff local hour is allowed", prop.ForAll(
		func(utcHour, offset int, hours []int) bool {
			w := Window{AllowedHours: hours, OffsetHours: offset}
			now := time.Date(2026, 6, 1, utcHour, 15, 0, 0, time.UTC)

			local := (utcHour + offset) % 24
			if local < 0 {
				local += 24
			}
			expected := false
			for _, h := range hours {
				if h == local {
					expected = true
				}
			}
			return w.Contains(now) == expected
		},
		gen.IntRange(0, 23),
		gen.IntRange(-12, 14),
		gen.SliceOf(gen.IntRange(0, 23)),
	))

	properties.Property("full window contains every hour at any offset", prop.ForAll(
		func(utcHour, offset int) bool {
			all := make([]int, 24)
			for i := range all {
				all[i] = i
			}
			w := Window{AllowedHours: all, OffsetHours: offset}
			return w.Contains(time.Date(2026, 6, 1, utcHour, 0, 0, 0, time.UTC))
		},
		gen.IntRange(0, 23),
		gen.IntRange(-12, 14),
	))

	properties.TestingRun(t)
}
