package scaling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTarget(t *testing.T) {
	tests := []struct {
		name      string
		current   int
		direction Direction
		step      int
		min       int
		max       int
		want      int
		wantErr   error
	}{
		{
			name:      "up within bounds",
			current:   8,
			direction: DirectionUp,
			step:      2, min: 4, max: 16,
			want: 10,
		},
		{
			name:      "up to exactly max",
			current:   14,
			direction: DirectionUp,
			step:      2, min: 4, max: 16,
			want: 16,
		},
		{
			name:      "up past max is rejected",
			current:   16,
			direction: DirectionUp,
			step:      2, min: 4, max: 16,
			wantErr: ErrBoundsViolation,
		},
		{
			name:      "up past max from below ceiling is rejected",
			current:   15,
			direction: DirectionUp,
			step:      2, min: 4, max: 16,
			wantErr: ErrBoundsViolation,
		},
		{
			name:      "down within bounds",
			current:   8,
			direction: DirectionDown,
			step:      2, min: 4, max: 16,
			want: 6,
		},
		{
			name:      "down clamps to min",
			current:   5,
			direction: DirectionDown,
			step:      2, min: 4, max: 16,
			want: 4,
		},
		{
			name:      "down from min clamps to min",
			current:   4,
			direction: DirectionDown,
			step:      2, min: 4, max: 16,
			want: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeTarget(tt.current, tt.direction, tt.step, tt.min, tt.max)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeTarget_InvalidDirection(t *testing.T) {
	_, err := ComputeTarget(8, Direction("sideways"), 2, 4, 16)
	require.Error(t, err)
}

func TestAtOrBelowMinimum(t *testing.T) {
	assert.True(t, AtOrBelowMinimum(4, 4))
	assert.True(t, AtOrBelowMinimum(2, 4))
	assert.False(t, AtOrBelowMinimum(6, 4))
}

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection("up")
	require.NoError(t, err)
	assert.Equal(t, DirectionUp, d)

	d, err = ParseDirection("down")
	require.NoError(t, err)
	assert.Equal(t, DirectionDown, d)

	_, err = ParseDirection("UP")
	assert.Error(t, err)
	_, err = ParseDirection("")
	assert.Error(t, err)
}
