package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ChangeRecord logs a single rename of a product field. Renames are
// recorded, never silently overwritten.
type ChangeRecord struct {
	Field     string    `json:"field"` // "name" or "code"
	OldValue  string    `json:"old_value"`
	NewValue  string    `json:"new_value"`
	ChangedAt time.Time `json:"changed_at"`
	ChangedBy string    `json:"changed_by"`
}

// Product is the canonical product identity. Name and code are each
// globally unique; documents copy them at write time, so a rename must be
// propagated into document line items (see product service).
type Product struct {
	ID            uuid.UUID                         `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string                            `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Code          string                            `gorm:"type:varchar(100);uniqueIndex;not null" json:"code"`
	OriginalName  string                            `gorm:"type:varchar(255)" json:"original_name"`
	OriginalCode  string                            `gorm:"type:varchar(100)" json:"original_code"`
	PreviousNames datatypes.JSONSlice[string]       `json:"previous_names"`
	PreviousCodes datatypes.JSONSlice[string]       `json:"previous_codes"`
	ChangeHistory datatypes.JSONSlice[ChangeRecord] `json:"change_history"`
	CostCenter    string                            `gorm:"type:varchar(255);index" json:"cost_center"`
	Unit          string                            `gorm:"type:varchar(50)" json:"unit"`
	Note          string                            `gorm:"type:text" json:"note"`
	CreatedAt     time.Time                         `json:"created_at"`
	UpdatedAt     time.Time                         `json:"updated_at"`
	DeletedAt     gorm.DeletedAt                    `gorm:"index" json:"-"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.OriginalName == "" {
		p.OriginalName = p.Name
	}
	if p.OriginalCode == "" {
		p.OriginalCode = p.Code
	}
	return nil
}
