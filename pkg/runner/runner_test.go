package runner

import (
	"testing"

	"dbscale/pkg/config"
	"dbscale/pkg/scaling"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRequest(t *testing.T) {
	sc := config.DefaultScalingConfig()
	sc.Database = config.DatabaseConfig{
		Name:           "orders",
		Server:         "sql-orders-prod",
		ResourceGroup:  "rg-orders",
		SubscriptionID: "sub-1",
	}
	sc.Replicas = []string{"sql-orders-ro-1", "sql-orders-ro-2"}

	trigger := scaling.TriggerContext{Source: "scheduler", JobID: "job-7"}
	req := BuildRequest(&sc, scaling.DirectionUp, trigger)

	require.NoError(t, req.Validate())
	assert.Equal(t, "orders", req.Database.Name)
	assert.Equal(t, "sql-orders-prod", req.Database.Server)
	assert.Equal(t, []string{"sql-orders-ro-1", "sql-orders-ro-2"}, req.Replicas)
	assert.Equal(t, scaling.DirectionUp, req.Direction)
	assert.Equal(t, 2, req.StepCores)
	assert.Equal(t, 4, req.MinCores)
	assert.Equal(t, 16, req.MaxCores)
	assert.Equal(t, []string{"GP_Gen5"}, req.SupportedSKUs)
	assert.Equal(t, sc.Window.AllowedHours, req.Window.AllowedHours)
	assert.Equal(t, 8, req.Window.OffsetHours)
	assert.Equal(t, []scaling.Direction{scaling.DirectionUp}, req.GatedDirections)
	assert.Equal(t, "job-7", req.Trigger.JobID)

	// The default policy gates scale-up only.
	assert.True(t, req.Gated())
	down := BuildRequest(&sc, scaling.DirectionDown, trigger)
	assert.False(t, down.Gated())
}

func TestNew(t *testing.T) {
	cfg := config.Default()
	r, err := New(cfg)
	require.NoError(t, err)
	assert.NotNil(t, r)

	cfg.ControlPlane.Provider = "gcp"
	_, err = New(cfg)
	assert.Error(t, err)
}
