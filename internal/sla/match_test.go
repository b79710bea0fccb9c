package sla

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func policy(id int64, name string, resolutionMinutes int) domain.SLAPolicy {
	return domain.SLAPolicy{
		ID:                    id,
		Name:                  name,
		ResponseTimeMinutes:   resolutionMinutes / 2,
		ResolutionTimeMinutes: resolutionMinutes,
	}
}

func TestMatchEmptyPolicySet(t *testing.T) {
	matched, name := Match("critical", nil, DefaultAliases())
	assert.Nil(t, matched)
	assert.Empty(t, name)
}

func TestMatchExactName(t *testing.T) {
	policies := []domain.SLAPolicy{
		policy(1, "critical", 60),
		policy(2, "medium", 240),
	}
	matched, name := Match("medium", policies, DefaultAliases())
	require.NotNil(t, matched)
	assert.Equal(t, int64(2), matched.ID)
	assert.Equal(t, "medium", name)
}

func TestMatchExactIsCaseInsensitiveOnPolicyName(t *testing.T) {
	policies := []domain.SLAPolicy{policy(1, "  Critical  ", 60)}
	matched, name := Match("critical", policies, DefaultAliases())
	require.NotNil(t, matched)
	assert.Equal(t, int64(1), matched.ID)
	assert.Equal(t, "  Critical  ", name)
}

func TestMatchExactBeatsSubstring(t *testing.T) {
	// "med" is a substring of "medium" but the exact match must win even
	// though "med" appears earlier in store order.
	policies := []domain.SLAPolicy{
		policy(1, "med", 30),
		policy(2, "medium", 240),
	}
	matched, _ := Match("medium", policies, DefaultAliases())
	require.NotNil(t, matched)
	assert.Equal(t, int64(2), matched.ID)
}

func TestMatchResolvesAliasToCanonicalPolicy(t *testing.T) {
	// The deployment displays "urgent" for the critical level; tickets
	// carry the label, policies keep the canonical name.
	aliases := Aliases{Critical: "urgent", High: "high", Medium: "medium", Low: "low"}
	policies := []domain.SLAPolicy{
		policy(1, "critical", 60),
		policy(2, "low", 480),
	}
	matched, name := Match(Normalize("Urgent", aliases), policies, aliases)
	require.NotNil(t, matched)
	assert.Equal(t, int64(1), matched.ID)
	assert.Equal(t, "critical", name)
}

func TestMatchAliasOrderIsStable(t *testing.T) {
	// Two canonical keys share a display label; critical is checked first.
	aliases := Aliases{Critical: "p1", High: "p1", Medium: "medium", Low: "low"}
	policies := []domain.SLAPolicy{
		policy(1, "high", 120),
		policy(2, "critical", 60),
	}
	matched, _ := Match("p1", policies, aliases)
	require.NotNil(t, matched)
	assert.Equal(t, int64(2), matched.ID)
}

func TestMatchSubstringEitherDirection(t *testing.T) {
	policies := []domain.SLAPolicy{policy(1, "critical", 60)}

	// policy name contained in priority
	matched, _ := Match("critical-incident", policies, DefaultAliases())
	require.NotNil(t, matched)
	assert.Equal(t, int64(1), matched.ID)

	// priority contained in policy name
	matched, _ = Match("crit", policies, DefaultAliases())
	require.NotNil(t, matched)
	assert.Equal(t, int64(1), matched.ID)
}

func TestMatchSubstringFirstHitInStoreOrder(t *testing.T) {
	policies := []domain.SLAPolicy{
		policy(1, "high", 120),
		policy(2, "highest", 60),
	}
	matched, _ := Match("highest-priority", policies, DefaultAliases())
	require.NotNil(t, matched)
	assert.Equal(t, int64(1), matched.ID)
}

func TestMatchFallsBackToDefaultSLAPolicy(t *testing.T) {
	policies := []domain.SLAPolicy{
		policy(1, "gold tier", 60),
		policy(2, "Default SLA", 480),
	}
	matched, name := Match("p0", policies, DefaultAliases())
	require.NotNil(t, matched)
	assert.Equal(t, int64(2), matched.ID)
	assert.Equal(t, "Default SLA", name)
}

func TestMatchFallsBackToFirstPolicy(t *testing.T) {
	policies := []domain.SLAPolicy{
		policy(1, "gold tier", 60),
		policy(2, "silver tier", 240),
	}
	matched, _ := Match("p0", policies, DefaultAliases())
	require.NotNil(t, matched)
	assert.Equal(t, int64(1), matched.ID)
}

func TestMatchTotalOverNonEmptySets(t *testing.T) {
	policies := []domain.SLAPolicy{policy(1, "gold tier", 60)}
	for _, priority := range []string{"critical", "zzz", "medium", "1", "!!"} {
		matched, name := Match(priority, policies, DefaultAliases())
		require.NotNil(t, matched, "priority %q must always match a policy", priority)
		assert.NotEmpty(t, name)
	}
}

func TestMatchDoesNotMutateInput(t *testing.T) {
	policies := []domain.SLAPolicy{
		policy(1, "critical", 60),
		policy(2, "medium", 240),
	}
	snapshot := make([]domain.SLAPolicy, len(policies))
	copy(snapshot, policies)

	Match("critical", policies, DefaultAliases())
	assert.Equal(t, snapshot, policies)
}
