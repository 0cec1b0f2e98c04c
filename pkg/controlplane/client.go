// Package controlplane talks to the managed-database control plane. The core
// only needs two capabilities: read the current capacity and request a new
// one. Everything else (identity, subscription context) is handled by the
// calling environment.
package controlplane

import (
	"context"
	"fmt"
)

// DatabaseID identifies one database endpoint. Replicas share Name and differ
// only in Server.
type DatabaseID struct {
	SubscriptionID string
	ResourceGroup  string
	Server         string
	Name           string
}

// WithServer returns a copy of the id pointing at a different server.
func (id DatabaseID) WithServer(server string) DatabaseID {
	id.Server = server
	return id
}

// String renders the id for logs and notifications.
func (id DatabaseID) String() string {
	return fmt.Sprintf("%s/%s/%s/%s", id.SubscriptionID, id.ResourceGroup, id.Server, id.Name)
}

// Snapshot is the control plane's view of a database at one point in time.
// It is always read fresh before a decision and never cached across steps,
// because capacity may drift between reads.
type Snapshot struct {
	Capacity   int
	SKUName    string
	ResourceID string
}

// Client is the control-plane capability the scaling core depends on.
type Client interface {
	// GetDatabase reads the current snapshot for one database endpoint.
	GetDatabase(ctx context.Context, id DatabaseID) (*Snapshot, error)

	// SetCapacity requests a capacity change. The control plane applies the
	// change asynchronously; callers re-read the snapshot to verify.
	SetCapacity(ctx context.Context, id DatabaseID, cores int) error
}
