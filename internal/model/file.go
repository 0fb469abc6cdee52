package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// FileStatus enum constants for the file-archive workflow.
const (
	FileStatusPending  = "PENDING"
	FileStatusApproved = "APPROVED"
	FileStatusRejected = "REJECTED"
)

// FileRecord is an archived file going through the two-state
// approve/reject workflow. The file bytes live in an external store;
// only the reference is kept here.
type FileRecord struct {
	ID           uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	FileName     string                      `gorm:"type:varchar(255);not null" json:"file_name"`
	Category     string                      `gorm:"type:varchar(100);not null;index" json:"category"`
	Subcategory  string                      `gorm:"type:varchar(100);index" json:"subcategory"`
	StorageRef   string                      `gorm:"type:text" json:"storage_ref"`
	Status       string                      `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	ViewableBy   datatypes.JSONSlice[string] `json:"viewable_by"`
	RejectReason string                      `gorm:"type:text" json:"reject_reason,omitempty"`
	UploadedBy   *uuid.UUID                  `gorm:"type:uuid;index" json:"uploaded_by"`
	Uploader     *User                       `gorm:"foreignKey:UploadedBy" json:"uploader,omitempty"`
	ReviewedBy   *uuid.UUID                  `gorm:"type:uuid" json:"reviewed_by"`
	ReviewedAt   *time.Time                  `json:"reviewed_at"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
	DeletedAt    gorm.DeletedAt              `gorm:"index" json:"-"`
}

func (f *FileRecord) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if f.Status == "" {
		f.Status = FileStatusPending
	}
	return nil
}
