package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Fallback category assigned to invoices created without one. The unique
// index on Category.Name keeps the get-or-create race from producing a
// second "Autres" row.
const (
	FallbackCategoryName  = "Autres"
	FallbackCategoryColor = "#6c757d"
)

// Category groups invoices for reporting. Color is a 7-character hex code
// (e.g. "#FF5733") used by dashboard charts.
type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
	Color     string    `gorm:"type:varchar(7);not null" json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
