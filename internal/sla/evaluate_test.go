package sla

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func TestTarget(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	p := domain.SLAPolicy{Name: "critical", ResolutionTimeMinutes: 60}
	assert.Equal(t, time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC), Target(created, p))
}

func TestElapsedMinutesRoundsUp(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// 600.4s = 10.0067 minutes reads as 11.
	assert.Equal(t, 11, ElapsedMinutes(created, created.Add(600400*time.Millisecond)))
	// exactly 10 minutes stays 10
	assert.Equal(t, 10, ElapsedMinutes(created, created.Add(10*time.Minute)))
	// one second over a whole minute rounds up
	assert.Equal(t, 11, ElapsedMinutes(created, created.Add(10*time.Minute+time.Second)))
	assert.Equal(t, 0, ElapsedMinutes(created, created))
}

func TestWithinSLABoundaryIsInclusive(t *testing.T) {
	assert.True(t, WithinSLA(10, 10))
	assert.True(t, WithinSLA(9, 10))
	assert.False(t, WithinSLA(11, 10))
}

func TestCeilingBreachScenario(t *testing.T) {
	// Resolved at 10.0067 minutes against a 10-minute budget: reported as
	// 11 elapsed minutes and out of SLA.
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	resolved := created.Add(600400 * time.Millisecond)

	elapsed := ElapsedMinutes(created, resolved)
	assert.Equal(t, 11, elapsed)
	assert.False(t, WithinSLA(elapsed, 10))
}
