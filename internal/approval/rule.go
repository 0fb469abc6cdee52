// Package approval evaluates document approval rules. A rule is a tagged
// variant attached per document type or project phase, so call sites never
// branch on type strings to decide when a document counts as approved.
package approval

import "docflow/internal/model"

// Rule kinds.
const (
	KindAnyOf     = "ANY_OF"     // approved once Quorum distinct approvers signed
	KindAllOf     = "ALL_OF"     // approved once every role in Roles signed
	KindAllListed = "ALL_LISTED" // approved once every listed approver signed
)

// Rule is the approval rule for one document or phase.
type Rule struct {
	Kind   string
	Quorum int      // KindAnyOf only
	Roles  []string // KindAllOf only
}

// AnyOf builds a rule satisfied by any n distinct signatures.
func AnyOf(n int) Rule {
	if n < 1 {
		n = 1
	}
	return Rule{Kind: KindAnyOf, Quorum: n}
}

// AllOf builds a rule requiring a signature from every given role.
func AllOf(roles ...string) Rule {
	return Rule{Kind: KindAllOf, Roles: roles}
}

// AllListed builds a rule requiring every listed approver to sign.
func AllListed() Rule {
	return Rule{Kind: KindAllListed}
}

// ForDocumentType returns the rule used by a standalone document of the
// given type. Every variant with an approvers list is approved once any
// one listed approver signs.
func ForDocumentType(docType string) Rule {
	return AnyOf(1)
}

// ForPhase returns the rule for a project phase. The payment phase
// accumulates signatures from fixed roles; earlier phases take any one
// signature.
func ForPhase(phase string) Rule {
	if phase == model.PhasePayment {
		return AllOf(model.RoleHeadOfAccounting, model.RoleDirector)
	}
	return AnyOf(1)
}

// RequiresRole reports whether the rule only accepts signatures from
// specific roles, and whether the given role is one of them.
func (r Rule) RequiresRole(role string) bool {
	if r.Kind != KindAllOf {
		return true
	}
	for _, want := range r.Roles {
		if want == role {
			return true
		}
	}
	return false
}

// Status computes the aggregate approval status from the collected
// signatures. listed is the length of the document's approvers list
// (KindAllListed only). Order of signatures never matters.
func (r Rule) Status(signed []model.Approval, listed int) string {
	switch r.Kind {
	case KindAllOf:
		have := make(map[string]bool, len(signed))
		for _, s := range signed {
			have[s.Role] = true
		}
		missing := 0
		for _, role := range r.Roles {
			if !have[role] {
				missing++
			}
		}
		switch {
		case missing == 0:
			return model.StatusApproved
		case missing < len(r.Roles):
			return model.StatusPartiallyApproved
		default:
			return model.StatusPending
		}
	case KindAllListed:
		switch {
		case listed > 0 && len(signed) >= listed:
			return model.StatusApproved
		case len(signed) > 0:
			return model.StatusPartiallyApproved
		default:
			return model.StatusPending
		}
	default: // KindAnyOf
		if len(signed) >= r.Quorum {
			return model.StatusApproved
		}
		return model.StatusPending
	}
}
