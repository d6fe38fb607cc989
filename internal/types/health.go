package types

import "time"

// HealthState classifies how well a component is serving.
type HealthState string

const (
	HealthStateHealthy   HealthState = "healthy"
	HealthStateDegraded  HealthState = "degraded"
	HealthStateUnhealthy HealthState = "unhealthy"
)

// HealthStatus is a point-in-time health report from one component, as
// returned by the graph client and the ETA sample store.
type HealthStatus struct {
	State     HealthState `json:"state"`
	Message   string      `json:"message,omitempty"`
	CheckedAt time.Time   `json:"checked_at"`
}

// Healthy reports a component that is serving normally.
func Healthy(message string) HealthStatus {
	return HealthStatus{State: HealthStateHealthy, Message: message, CheckedAt: time.Now()}
}

// Degraded reports a component that is still serving but impaired.
func Degraded(message string) HealthStatus {
	return HealthStatus{State: HealthStateDegraded, Message: message, CheckedAt: time.Now()}
}

// Unhealthy reports a component that cannot serve.
func Unhealthy(message string) HealthStatus {
	return HealthStatus{State: HealthStateUnhealthy, Message: message, CheckedAt: time.Now()}
}

func (h HealthStatus) IsHealthy() bool { return h.State == HealthStateHealthy }

func (h HealthStatus) IsUnhealthy() bool { return h.State == HealthStateUnhealthy }
