package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CostCenter is the access-control scope for documents and products.
// An empty AllowedUsers list means the cost center is unrestricted.
type CostCenter struct {
	ID           uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string                      `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	AllowedUsers datatypes.JSONSlice[string] `json:"allowed_users"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
	DeletedAt    gorm.DeletedAt              `gorm:"index" json:"-"`
}

func (c *CostCenter) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Allows reports whether username may use this cost center.
func (c *CostCenter) Allows(username string) bool {
	if len(c.AllowedUsers) == 0 {
		return true
	}
	for _, u := range c.AllowedUsers {
		if u == username {
			return true
		}
	}
	return false
}
