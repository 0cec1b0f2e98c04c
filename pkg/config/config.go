package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config global configuration
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Logger       LoggerConfig       `yaml:"logger"`
	Notify       NotifyConfig       `yaml:"notify"`
	ControlPlane ControlPlaneConfig `yaml:"controlplane"`
	Scaling      ScalingConfig      `yaml:"scaling"`
}

// ServerConfig HTTP trigger server configuration (serve mode only)
type ServerConfig struct {
	Port int    `yaml:"port"`
	Mode string `yaml:"mode"` // debug, release
}

// LoggerConfig logger configuration
type LoggerConfig struct {
	Level  string           `yaml:"level"`  // debug, info, warn, error
	Output string           `yaml:"output"` // console, file, both
	File   LoggerFileConfig `yaml:"file"`
}

// LoggerFileConfig logger file configuration
type LoggerFileConfig struct {
	Path string `yaml:"path"`
}

// NotifyConfig notification channel configuration
type NotifyConfig struct {
	SlackWebhookURL string `yaml:"slack_webhook_url"` // falls back to SLACK_WEBHOOK_URL env
	Username        string `yaml:"username"`          // optional sender name shown in the channel
}

// ControlPlaneConfig database control-plane configuration
type ControlPlaneConfig struct {
	Provider   string `yaml:"provider"`    // azure
	BaseURL    string `yaml:"base_url"`    // management endpoint, defaults to public ARM
	APIVersion string `yaml:"api_version"` // ARM api-version for SQL databases
	TokenEnv   string `yaml:"token_env"`   // env var holding the bearer token (identity handled by caller)
}

// ScalingConfig scaling operation configuration
type ScalingConfig struct {
	Database      DatabaseConfig    `yaml:"database"`
	Replicas      []string          `yaml:"replicas"` // ordered replica server names, scaled before the primary
	MinCores      int               `yaml:"min_cores"`
	MaxCores      int               `yaml:"max_cores"`
	StepCores     int               `yaml:"step_cores"`
	SupportedSKUs []string          `yaml:"supported_skus"`
	Window        WindowConfig      `yaml:"window"`
	Convergence   ConvergenceConfig `yaml:"convergence"`
}

// DatabaseConfig identifies the primary database
type DatabaseConfig struct {
	Name           string `yaml:"name"`
	Server         string `yaml:"server"`
	ResourceGroup  string `yaml:"resource_group"`
	SubscriptionID string `yaml:"subscription_id"`
}

// WindowConfig allowed operating window for gated directions
type WindowConfig struct {
	AllowedHours        []int    `yaml:"allowed_hours"`         // local hours 0-23
	TimezoneOffsetHours int      `yaml:"timezone_offset_hours"` // applied to UTC wall clock
	GatedDirections     []string `yaml:"gated_directions"`      // directions the window applies to
}

// ConvergenceConfig post-apply capacity verification configuration
type ConvergenceConfig struct {
	Strategy               string `yaml:"strategy"` // poll, fixed
	PollIntervalSeconds    int    `yaml:"poll_interval_seconds"`
	ScaleUpSettleSeconds   int    `yaml:"scale_up_settle_seconds"`
	ScaleDownSettleSeconds int    `yaml:"scale_down_settle_seconds"`
}

// DefaultWindowConfig returns the default operating window: business hours
// 09:00-18:59 at UTC+8, gating scale-up only. Scale-down is ungated because
// shrinking capacity is a cost-saving action safe at any hour.
func DefaultWindowConfig() WindowConfig {
	return WindowConfig{
		AllowedHours:        []int{9, 10, 11, 12, 13, 14, 15, 16, 17, 18},
		TimezoneOffsetHours: 8,
		GatedDirections:     []string{"up"},
	}
}

// DefaultConvergenceConfig returns the default convergence strategy: poll the
// control plane until the reported capacity matches, with the historical
// settle intervals as deadlines (scale-down takes longer to converge).
func DefaultConvergenceConfig() ConvergenceConfig {
	return ConvergenceConfig{
		Strategy:               "poll",
		PollIntervalSeconds:    5,
		ScaleUpSettleSeconds:   30,
		ScaleDownSettleSeconds: 120,
	}
}

// DefaultScalingConfig returns scaling defaults without a database identity.
func DefaultScalingConfig() ScalingConfig {
	return ScalingConfig{
		MinCores:      4,
		MaxCores:      16,
		StepCores:     2,
		SupportedSKUs: []string{"GP_Gen5"},
		Window:        DefaultWindowConfig(),
		Convergence:   DefaultConvergenceConfig(),
	}
}

// Load reads configuration from path and applies defaults for missing or
// invalid values. The returned value is treated as immutable by callers.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	validateAndApplyDefaults(&cfg)
	return &cfg, nil
}

// Default returns a configuration with all defaults applied and no file input.
func Default() *Config {
	cfg := &Config{}
	validateAndApplyDefaults(cfg)
	return cfg
}

// validateAndApplyDefaults replaces missing or invalid values with defaults so
// a partial config file still yields an operational configuration.
func validateAndApplyDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Mode != "debug" && cfg.Server.Mode != "release" {
		cfg.Server.Mode = "release"
	}

	switch cfg.Logger.Level {
	case "debug", "info", "warn", "error":
	default:
		cfg.Logger.Level = "info"
	}
	switch cfg.Logger.Output {
	case "console", "file", "both":
	default:
		cfg.Logger.Output = "console"
	}

	if cfg.ControlPlane.Provider == "" {
		cfg.ControlPlane.Provider = "azure"
	}
	if cfg.ControlPlane.BaseURL == "" {
		cfg.ControlPlane.BaseURL = "https://management.azure.com"
	}
	if cfg.ControlPlane.APIVersion == "" {
		cfg.ControlPlane.APIVersion = "2021-11-01"
	}
	if cfg.ControlPlane.TokenEnv == "" {
		cfg.ControlPlane.TokenEnv = "ARM_ACCESS_TOKEN"
	}

	scalingDefaults := DefaultScalingConfig()
	if cfg.Scaling.MinCores <= 0 {
		cfg.Scaling.MinCores = scalingDefaults.MinCores
	}
	if cfg.Scaling.MaxCores <= 0 {
		cfg.Scaling.MaxCores = scalingDefaults.MaxCores
	}
	if cfg.Scaling.MaxCores < cfg.Scaling.MinCores {
		cfg.Scaling.MaxCores = cfg.Scaling.MinCores
	}
	if cfg.Scaling.StepCores <= 0 {
		cfg.Scaling.StepCores = scalingDefaults.StepCores
	}
	if len(cfg.Scaling.SupportedSKUs) == 0 {
		cfg.Scaling.SupportedSKUs = scalingDefaults.SupportedSKUs
	}

	if len(cfg.Scaling.Window.AllowedHours) == 0 {
		cfg.Scaling.Window.AllowedHours = scalingDefaults.Window.AllowedHours
	} else {
		cfg.Scaling.Window.AllowedHours = clampHours(cfg.Scaling.Window.AllowedHours)
		if len(cfg.Scaling.Window.AllowedHours) == 0 {
			cfg.Scaling.Window.AllowedHours = scalingDefaults.Window.AllowedHours
		}
	}
	if cfg.Scaling.Window.GatedDirections == nil {
		cfg.Scaling.Window.GatedDirections = scalingDefaults.Window.GatedDirections
	}

	convergenceDefaults := DefaultConvergenceConfig()
	if cfg.Scaling.Convergence.Strategy != "poll" && cfg.Scaling.Convergence.Strategy != "fixed" {
		cfg.Scaling.Convergence.Strategy = convergenceDefaults.Strategy
	}
	if cfg.Scaling.Convergence.PollIntervalSeconds <= 0 {
		cfg.Scaling.Convergence.PollIntervalSeconds = convergenceDefaults.PollIntervalSeconds
	}
	if cfg.Scaling.Convergence.ScaleUpSettleSeconds <= 0 {
		cfg.Scaling.Convergence.ScaleUpSettleSeconds = convergenceDefaults.ScaleUpSettleSeconds
	}
	if cfg.Scaling.Convergence.ScaleDownSettleSeconds <= 0 {
		cfg.Scaling.Convergence.ScaleDownSettleSeconds = convergenceDefaults.ScaleDownSettleSeconds
	}
}

// clampHours drops hour values outside 0-23.
func clampHours(hours []int) []int {
	valid := make([]int, 0, len(hours))
	for _, h := range hours {
		if h >= 0 && h <= 23 {
			valid = append(valid, h)
		}
	}
	return valid
}
