package sla

import (
	"strings"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// defaultPolicyName is the last-resort policy label checked before falling
// back to the first policy in store order.
const defaultPolicyName = "default sla"

// Match selects exactly one policy for a normalized ticket priority, or
// none when the policy set is empty. The cascade is deterministic and each
// step short-circuits on its first hit:
//
//  1. exact name match (trimmed, case-insensitive), in store order;
//  2. alias resolution: when the priority equals a configured display
//     label, the policy named after that label's canonical key wins,
//     checked in the order critical, high, medium, low;
//  3. substring match in either direction over lowered policy names, in
//     store order — intentionally permissive, so short policy names can
//     attract surprising matches;
//  4. the policy literally named "default sla", else the first policy.
//
// Match never mutates its inputs and costs O(len(policies)) comparisons.
// A nil result means no SLA can be assigned and callers must propagate
// that state rather than skip it.
func Match(priority string, policies []domain.SLAPolicy, aliases Aliases) (*domain.SLAPolicy, string) {
	if len(policies) == 0 {
		return nil, ""
	}

	names := make([]string, len(policies))
	for i := range policies {
		names[i] = strings.ToLower(strings.TrimSpace(policies[i].Name))
	}

	for i := range policies {
		if names[i] == priority {
			return &policies[i], policies[i].Name
		}
	}

	for _, pair := range aliases.pairs() {
		if priority != pair.value {
			continue
		}
		for i := range policies {
			if names[i] == pair.key {
				return &policies[i], policies[i].Name
			}
		}
	}

	for i := range policies {
		if strings.Contains(priority, names[i]) || strings.Contains(names[i], priority) {
			return &policies[i], policies[i].Name
		}
	}

	for i := range policies {
		if names[i] == defaultPolicyName {
			return &policies[i], policies[i].Name
		}
	}
	return &policies[0], policies[0].Name
}
