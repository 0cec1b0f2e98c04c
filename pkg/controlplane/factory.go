package controlplane

import (
	"fmt"

	"dbscale/pkg/config"
)

// New creates a Client for the configured provider.
func New(cfg *config.ControlPlaneConfig) (Client, error) {
	switch cfg.Provider {
	case "", "azure":
		return NewAzureClient(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported control-plane provider: %s", cfg.Provider)
	}
}
