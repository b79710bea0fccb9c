package sla

import (
	"math"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// Target computes the resolution deadline for a ticket created at the
// given instant: plain clock arithmetic, no business-hour calendars, no
// timezone conversion. All timestamps in the system are naive UTC.
func Target(createdAt time.Time, policy domain.SLAPolicy) time.Time {
	return createdAt.Add(time.Duration(policy.ResolutionTimeMinutes) * time.Minute)
}

// ElapsedMinutes reports the whole minutes between creation and
// resolution, rounded up. The ceiling matters at the budget boundary: a
// ticket resolved at 10.01 minutes against a 10-minute budget reads as 11
// minutes and breaches.
func ElapsedMinutes(created, resolved time.Time) int {
	return int(math.Ceil(resolved.Sub(created).Minutes()))
}

// WithinSLA reports whether the elapsed minutes fit the resolution budget.
// The boundary is inclusive: exactly on time is compliant.
func WithinSLA(elapsedMinutes, budgetMinutes int) bool {
	return elapsedMinutes <= budgetMinutes
}
