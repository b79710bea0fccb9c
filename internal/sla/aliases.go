package sla

import "strings"

// Canonical priority keys. SLA policies are conventionally named after
// these, while tickets may carry deployment-specific display labels.
const (
	PriorityCritical = "critical"
	PriorityHigh     = "high"
	PriorityMedium   = "medium"
	PriorityLow      = "low"
)

// Aliases maps each canonical priority key to the display label a
// deployment uses for it. The indirection lets installations rename
// priorities without code changes; the matcher resolves display labels
// back to canonically named policies. The zero value behaves like
// DefaultAliases.
type Aliases struct {
	Critical string
	High     string
	Medium   string
	Low      string
}

// DefaultAliases maps every canonical key to itself.
func DefaultAliases() Aliases {
	return Aliases{
		Critical: PriorityCritical,
		High:     PriorityHigh,
		Medium:   PriorityMedium,
		Low:      PriorityLow,
	}
}

type aliasPair struct {
	key   string
	value string
}

// pairs returns canonical key / display label pairs in the fixed match
// order critical, high, medium, low. Labels are normalized; empty labels
// fall back to the canonical key so a partially configured table still
// resolves every priority.
func (a Aliases) pairs() [4]aliasPair {
	return [4]aliasPair{
		{PriorityCritical, aliasValue(a.Critical, PriorityCritical)},
		{PriorityHigh, aliasValue(a.High, PriorityHigh)},
		{PriorityMedium, aliasValue(a.Medium, PriorityMedium)},
		{PriorityLow, aliasValue(a.Low, PriorityLow)},
	}
}

func aliasValue(label, fallback string) string {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" {
		return fallback
	}
	return label
}

// Normalize canonicalizes a raw ticket priority: trimmed, lower-cased,
// with absent values defaulting to the medium label. Total and pure; the
// result is suitable for Match.
func Normalize(priority string, aliases Aliases) string {
	p := strings.ToLower(strings.TrimSpace(priority))
	if p == "" {
		return aliasValue(aliases.Medium, PriorityMedium)
	}
	return p
}
