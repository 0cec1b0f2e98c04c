// Package scaling implements the capacity scaling core: the operating-window
// gate, the bounded target calculation, the per-database scaler and the
// orchestrator that drives replicas and primary in order.
package scaling

import (
	"fmt"
	"time"

	"dbscale/pkg/controlplane"

	"github.com/google/uuid"
)

// Direction of a scaling operation.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// ParseDirection validates a direction string.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case DirectionUp, DirectionDown:
		return Direction(s), nil
	default:
		return "", fmt.Errorf("invalid direction %q, expected %q or %q", s, DirectionUp, DirectionDown)
	}
}

// Window is the allowed operating window for gated directions. Hours are
// local hours after applying the timezone offset to the UTC wall clock.
type Window struct {
	AllowedHours []int
	OffsetHours  int
}

// TriggerContext is descriptive metadata about what fired this run. It is
// forwarded into notification payloads and never used in decision logic.
type TriggerContext struct {
	Source        string `json:"source"`
	AlertRule     string `json:"alertRule"`
	JobID         string `json:"jobId"`
	TriggeredBy   string `json:"triggeredBy"`
	CorrelationID string `json:"correlationId"`
	MetricValue   string `json:"metricValue"`
	Threshold     string `json:"threshold"`
}

// EnsureCorrelationID fills in a generated correlation id when the trigger
// did not supply one.
func (t *TriggerContext) EnsureCorrelationID() {
	if t.CorrelationID == "" {
		t.CorrelationID = uuid.NewString()
	}
}

// Request describes one scaling operation. It is constructed once from
// invocation parameters and immutable afterwards.
type Request struct {
	Database controlplane.DatabaseID
	Replicas []string // ordered replica server names, scaled before the primary

	Direction Direction
	StepCores int
	MinCores  int
	MaxCores  int

	SupportedSKUs []string

	Window          Window
	GatedDirections []Direction

	Trigger TriggerContext
}

// Validate checks the request invariants.
func (r *Request) Validate() error {
	if r.Database.Name == "" || r.Database.Server == "" {
		return fmt.Errorf("database name and server are required")
	}
	if r.Database.SubscriptionID == "" || r.Database.ResourceGroup == "" {
		return fmt.Errorf("subscription id and resource group are required")
	}
	if _, err := ParseDirection(string(r.Direction)); err != nil {
		return err
	}
	if r.StepCores <= 0 {
		return fmt.Errorf("step cores must be positive, got %d", r.StepCores)
	}
	if r.MinCores > r.MaxCores {
		return fmt.Errorf("min cores %d exceeds max cores %d", r.MinCores, r.MaxCores)
	}
	return nil
}

// Gated reports whether the operating window applies to this request's
// direction. The baseline policy gates scale-up only, but the asymmetry is
// configuration, not code.
func (r *Request) Gated() bool {
	for _, d := range r.GatedDirections {
		if d == r.Direction {
			return true
		}
	}
	return false
}

// SKUSupported reports whether the snapshot's SKU is on the allow-list.
func (r *Request) SKUSupported(sku string) bool {
	for _, s := range r.SupportedSKUs {
		if s == sku {
			return true
		}
	}
	return false
}

// Status of one target or of the whole run.
type Status string

const (
	StatusSuccess        Status = "Success"
	StatusPartialSuccess Status = "PartialSuccess"
	StatusFailed         Status = "Failed"
	StatusSkipped        Status = "Skipped"
)

// Outcome records the result of scaling one database endpoint.
type Outcome struct {
	Server           string `json:"server"`
	Role             string `json:"role"` // primary or replica
	PreviousCapacity int    `json:"previousCapacity"`
	TargetCapacity   int    `json:"targetCapacity"`
	FinalCapacity    int    `json:"finalCapacity"`
	Status           Status `json:"status"`
	ErrorDetail      string `json:"errorDetail,omitempty"`

	err error
}

// Err returns the underlying error for failed outcomes.
func (o *Outcome) Err() error {
	return o.err
}

// Summary aggregates the outcomes of one run: replicas first, primary last.
type Summary struct {
	Direction     Direction     `json:"direction"`
	CorrelationID string        `json:"correlationId"`
	Status        Status        `json:"status"`
	Outcomes      []Outcome     `json:"outcomes"`
	Errors        []string      `json:"errors,omitempty"`
	FinalCapacity int           `json:"finalCapacity"`
	StartedAt     time.Time     `json:"startedAt"`
	Duration      time.Duration `json:"duration"`
}

// Counts returns the number of succeeded, skipped and failed targets.
func (s *Summary) Counts() (succeeded, skipped, failed int) {
	for _, o := range s.Outcomes {
		switch o.Status {
		case StatusSuccess:
			succeeded++
		case StatusSkipped:
			skipped++
		case StatusFailed:
			failed++
		}
	}
	return
}
