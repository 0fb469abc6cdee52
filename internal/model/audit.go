package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActionCreateProduct  = "CREATE_PRODUCT"
	ActionRenameProduct  = "RENAME_PRODUCT"
	ActionDeleteProduct  = "DELETE_PRODUCT"
	ActionImportProducts = "IMPORT_PRODUCTS"

	ActionCreateDocument  = "CREATE_DOCUMENT"
	ActionApproveDocument = "APPROVE_DOCUMENT"
	ActionSuspendDocument = "SUSPEND_DOCUMENT"
	ActionReopenDocument  = "REOPEN_DOCUMENT"

	ActionCreateProject = "CREATE_PROJECT"
	ActionApprovePhase  = "APPROVE_PHASE"
	ActionAdvancePhase  = "ADVANCE_PHASE"
	ActionUpdatePhase   = "UPDATE_PHASE_DETAILS"

	ActionApproveFile = "APPROVE_FILE"
	ActionRejectFile  = "REJECT_FILE"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable gracefully if automated bot
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (uuid/code)
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string     `gorm:"type:jsonb" json:"details"`                      // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
