package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9090
  mode: debug
logger:
  level: debug
  output: console
notify:
  slack_webhook_url: "https://hooks.slack.com/services/T000/B000/XXX"
  username: dbscale
controlplane:
  provider: azure
  base_url: "https://management.azure.com"
  api_version: "2021-11-01"
  token_env: ARM_ACCESS_TOKEN
scaling:
  database:
    name: orders
    server: sql-orders-prod
    resource_group: rg-orders
    subscription_id: sub-1
  replicas:
    - sql-orders-ro-1
    - sql-orders-ro-2
  min_cores: 4
  max_cores: 16
  step_cores: 2
  supported_skus:
    - GP_Gen5
  window:
    allowed_hours: [9, 10, 11, 12]
    timezone_offset_hours: 8
    gated_directions: ["up"]
  convergence:
    strategy: fixed
    scale_up_settle_seconds: 30
    scale_down_settle_seconds: 120
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, "orders", cfg.Scaling.Database.Name)
	assert.Equal(t, []string{"sql-orders-ro-1", "sql-orders-ro-2"}, cfg.Scaling.Replicas)
	assert.Equal(t, 4, cfg.Scaling.MinCores)
	assert.Equal(t, 16, cfg.Scaling.MaxCores)
	assert.Equal(t, []int{9, 10, 11, 12}, cfg.Scaling.Window.AllowedHours)
	assert.Equal(t, "fixed", cfg.Scaling.Convergence.Strategy)
	assert.Equal(t, 120, cfg.Scaling.Convergence.ScaleDownSettleSeconds)
}

func TestLoad_PartialConfigGetsDefaults(t *testing.T) {
	path := writeConfigFile(t, `
scaling:
  database:
    name: orders
    server: sql-orders-prod
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "azure", cfg.ControlPlane.Provider)
	assert.Equal(t, "https://management.azure.com", cfg.ControlPlane.BaseURL)
	assert.Equal(t, "ARM_ACCESS_TOKEN", cfg.ControlPlane.TokenEnv)
	assert.Equal(t, 4, cfg.Scaling.MinCores)
	assert.Equal(t, 16, cfg.Scaling.MaxCores)
	assert.Equal(t, 2, cfg.Scaling.StepCores)
	assert.Equal(t, []string{"GP_Gen5"}, cfg.Scaling.SupportedSKUs)
	assert.Equal(t, []int{9, 10, 11, 12, 13, 14, 15, 16, 17, 18}, cfg.Scaling.Window.AllowedHours)
	assert.Equal(t, 8, cfg.Scaling.Window.TimezoneOffsetHours)
	assert.Equal(t, []string{"up"}, cfg.Scaling.Window.GatedDirections)
	assert.Equal(t, "poll", cfg.Scaling.Convergence.Strategy)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfigFile(t, "scaling: [not: valid")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidateAndApplyDefaults_InvalidValues(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Port = 70000
	cfg.Server.Mode = "verbose"
	cfg.Logger.Level = "trace"
	cfg.Scaling.MinCores = 10
	cfg.Scaling.MaxCores = 6
	cfg.Scaling.Window.AllowedHours = []int{25, -1, 99}
	cfg.Scaling.Convergence.Strategy = "guess"

	validateAndApplyDefaults(cfg)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, 10, cfg.Scaling.MinCores)
	assert.Equal(t, 10, cfg.Scaling.MaxCores, "max is raised to min when inverted")
	assert.Equal(t, DefaultWindowConfig().AllowedHours, cfg.Scaling.Window.AllowedHours,
		"all-invalid hours fall back to the default window")
	assert.Equal(t, "poll", cfg.Scaling.Convergence.Strategy)
}

func TestValidateAndApplyDefaults_MixedHoursKeepValid(t *testing.T) {
	cfg := &Config{}
	cfg.Scaling.Window.AllowedHours = []int{-3, 9, 10, 30}

	validateAndApplyDefaults(cfg)

	assert.Equal(t, []int{9, 10}, cfg.Scaling.Window.AllowedHours)
}

func TestValidateAndApplyDefaults_EmptyGatedDirectionsPreserved(t *testing.T) {
	// An explicit empty list means "gate nothing"; only a nil list gets the
	// default of gating scale-up.
	cfg := &Config{}
	cfg.Scaling.Window.GatedDirections = []string{}

	validateAndApplyDefaults(cfg)
	assert.Empty(t, cfg.Scaling.Window.GatedDirections)

	cfg = &Config{}
	validateAndApplyDefaults(cfg)
	assert.Equal(t, []string{"up"}, cfg.Scaling.Window.GatedDirections)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 4, cfg.Scaling.MinCores)
	assert.Equal(t, "poll", cfg.Scaling.Convergence.Strategy)
}
