package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Creation method tags recorded on creation logs.
const (
	CreationMethodWebForm = "web-form"
	CreationMethodAPI     = "api"
	CreationMethodImport  = "import"
)

// CreationLog records who created an invoice and how. Entries are written by
// the creation-event listener, never by end users, and are read-only after
// insert; deleting an invoice cascades its logs.
type CreationLog struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceID uuid.UUID `gorm:"type:uuid;not null;index" json:"invoice_id"`
	Invoice   *Invoice  `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"invoice,omitempty"`
	IPAddress string    `gorm:"type:varchar(45);not null" json:"ip_address"`
	UserAgent string    `gorm:"type:text" json:"user_agent"`
	Method    string    `gorm:"type:varchar(50);not null" json:"method"`
	Details   string    `gorm:"type:text" json:"details"` // JSON payload
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (l *CreationLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
