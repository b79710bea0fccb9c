package domain

// SLAPolicy pairs a named priority with its time budgets, in minutes.
// Names are conventionally canonical priority labels ("critical", "high",
// "medium", "low") but uniqueness is not enforced; the matcher works over
// whatever set exists. ResponseTimeMinutes is informational only; the
// evaluator and assigner use ResolutionTimeMinutes.
type SLAPolicy struct {
	ID                    int64
	Name                  string
	Description           string
	ResponseTimeMinutes   int
	ResolutionTimeMinutes int
}
