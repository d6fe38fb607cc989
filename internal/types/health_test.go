package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHealthConstructorsSetStateAndTimestamp(t *testing.T) {
	before := time.Now()

	h := Healthy("connected")
	assert.Equal(t, HealthStateHealthy, h.State)
	assert.Equal(t, "connected", h.Message)
	assert.False(t, h.CheckedAt.Before(before))

	d := Degraded("write path impaired")
	assert.Equal(t, HealthStateDegraded, d.State)

	u := Unhealthy("connectivity check failed")
	assert.Equal(t, HealthStateUnhealthy, u.State)
}

func TestHealthPredicates(t *testing.T) {
	assert.True(t, Healthy("").IsHealthy())
	assert.False(t, Healthy("").IsUnhealthy())

	// Degraded is neither healthy nor unhealthy; it still serves.
	assert.False(t, Degraded("").IsHealthy())
	assert.False(t, Degraded("").IsUnhealthy())

	assert.True(t, Unhealthy("").IsUnhealthy())
	assert.False(t, Unhealthy("").IsHealthy())
}
