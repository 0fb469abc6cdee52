package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Project phase names, in fixed order.
const (
	PhaseProposal   = "proposal"
	PhasePurchasing = "purchasing"
	PhasePayment    = "payment"
)

// PhaseStatusLocked marks a phase whose predecessor has not been approved
// yet. The other phase statuses reuse the document status constants.
const PhaseStatusLocked = "LOCKED"

// PhaseOrder is the fixed unlock order of project phases.
var PhaseOrder = []string{PhaseProposal, PhasePurchasing, PhasePayment}

// ProjectProductLine is a product line inside the purchasing phase.
type ProjectProductLine struct {
	ProductName string          `json:"product_name"`
	CostPerUnit decimal.Decimal `json:"cost_per_unit"`
	Amount      int             `json:"amount"`
	VAT         decimal.Decimal `json:"vat"`
	TotalCost   decimal.Decimal `json:"total_cost"`
}

// ProposalPhase is the first project phase, signed by any one approver.
type ProposalPhase struct {
	Status     string     `json:"status"`
	ApprovedBy []Approval `json:"approved_by"`
	Task       string     `json:"task"`
	CostCenter string     `json:"cost_center"`
}

// PurchasingPhase is the second project phase.
type PurchasingPhase struct {
	Status         string               `json:"status"`
	ApprovedBy     []Approval           `json:"approved_by"`
	Products       []ProjectProductLine `json:"products"`
	GrandTotalCost decimal.Decimal      `json:"grand_total_cost"`
}

// PaymentPhase is the final project phase. It requires signatures from
// both headOfAccounting and director; a strict subset leaves it
// PARTIALLY_APPROVED.
type PaymentPhase struct {
	Status        string          `json:"status"`
	ApprovedBy    []Approval      `json:"approved_by"`
	PaymentMethod string          `json:"payment_method"`
	AmountOfMoney decimal.Decimal `json:"amount_of_money"`
	Paid          bool            `json:"paid"`
}

// Project is a multi-phase document: proposal → purchasing → payment.
// Phase N+1 stays LOCKED until phase N is APPROVED.
type Project struct {
	ID          uuid.UUID                           `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string                              `gorm:"type:varchar(255);uniqueIndex;not null" json:"title"`
	Description string                              `gorm:"type:text" json:"description"`
	Proposal    datatypes.JSONType[ProposalPhase]   `json:"proposal"`
	Purchasing  datatypes.JSONType[PurchasingPhase] `json:"purchasing"`
	Payment     datatypes.JSONType[PaymentPhase]    `json:"payment"`
	CreatedBy   *uuid.UUID                          `gorm:"type:uuid;index" json:"created_by"`
	Creator     *User                               `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	CreatedAt   time.Time                           `json:"created_at"`
	UpdatedAt   time.Time                           `json:"updated_at"`
	DeletedAt   gorm.DeletedAt                      `gorm:"index" json:"-"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// NextPhase returns the phase that follows the given one, or "" for the
// last phase.
func NextPhase(phase string) string {
	for i, name := range PhaseOrder {
		if name == phase && i+1 < len(PhaseOrder) {
			return PhaseOrder[i+1]
		}
	}
	return ""
}

// ValidPhase reports whether the given phase name is known.
func ValidPhase(phase string) bool {
	for _, name := range PhaseOrder {
		if name == phase {
			return true
		}
	}
	return false
}
