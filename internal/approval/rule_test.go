package approval

import (
	"testing"

	"docflow/internal/model"

	"github.com/stretchr/testify/assert"
)

func sigs(roles ...string) []model.Approval {
	out := make([]model.Approval, 0, len(roles))
	for i, role := range roles {
		out = append(out, model.Approval{Username: string(rune('a' + i)), Role: role})
	}
	return out
}

func TestAnyOfStatus(t *testing.T) {
	rule := AnyOf(1)

	assert.Equal(t, model.StatusPending, rule.Status(nil, 3))
	assert.Equal(t, model.StatusApproved, rule.Status(sigs(model.RoleApprover), 3))
}

func TestForDocumentTypeIsSingleSignature(t *testing.T) {
	for _, docType := range model.DocumentTypes {
		rule := ForDocumentType(docType)
		assert.Equal(t, model.StatusApproved, rule.Status(sigs(model.RoleStaff), 5), docType)
	}
}

func TestPaymentPhaseQuorum(t *testing.T) {
	rule := ForPhase(model.PhasePayment)

	t.Run("no signatures", func(t *testing.T) {
		assert.Equal(t, model.StatusPending, rule.Status(nil, 0))
	})

	t.Run("strict subset is partial", func(t *testing.T) {
		assert.Equal(t, model.StatusPartiallyApproved,
			rule.Status(sigs(model.RoleHeadOfAccounting), 0))
		assert.Equal(t, model.StatusPartiallyApproved,
			rule.Status(sigs(model.RoleDirector), 0))
	})

	t.Run("order never matters", func(t *testing.T) {
		forward := rule.Status(sigs(model.RoleHeadOfAccounting, model.RoleDirector), 0)
		backward := rule.Status(sigs(model.RoleDirector, model.RoleHeadOfAccounting), 0)
		assert.Equal(t, model.StatusApproved, forward)
		assert.Equal(t, forward, backward)
	})

	t.Run("wrong roles never satisfy", func(t *testing.T) {
		assert.Equal(t, model.StatusPending,
			rule.Status(sigs(model.RoleApprover, model.RoleAdmin), 0))
	})
}

func TestPaymentPhaseRequiresRole(t *testing.T) {
	rule := ForPhase(model.PhasePayment)

	assert.True(t, rule.RequiresRole(model.RoleHeadOfAccounting))
	assert.True(t, rule.RequiresRole(model.RoleDirector))
	assert.False(t, rule.RequiresRole(model.RoleApprover))
	assert.False(t, rule.RequiresRole(model.RoleAdmin))

	// Earlier phases accept any role.
	assert.True(t, ForPhase(model.PhaseProposal).RequiresRole(model.RoleApprover))
}

func TestAllListedStatus(t *testing.T) {
	rule := AllListed()

	assert.Equal(t, model.StatusPending, rule.Status(nil, 3))
	assert.Equal(t, model.StatusPartiallyApproved, rule.Status(sigs(model.RoleApprover), 3))
	assert.Equal(t, model.StatusApproved,
		rule.Status(sigs(model.RoleApprover, model.RoleAdmin, model.RoleDirector), 3))
}
