package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultTaxRate is the VAT percentage applied when a request omits the rate.
var DefaultTaxRate = decimal.NewFromInt(20)

var oneHundred = decimal.NewFromInt(100)

// Invoice is the central billing document. TaxAmount and TotalAmount are
// derived from NetAmount and TaxRate on every persist and are never set
// independently; all writes funnel through the invoice service so the
// derivation cannot be skipped.
type Invoice struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Number      string          `gorm:"type:varchar(255);not null;index" json:"number"`
	Date        time.Time       `gorm:"type:date;not null;index" json:"date"`
	NetAmount   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"net_amount"`
	TaxRate     decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"tax_rate"`
	TaxAmount   decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"tax_amount"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	ClientID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"client_id"`
	Client      *Client         `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	CategoryID  *uuid.UUID      `gorm:"type:uuid;index" json:"category_id"`
	Category    *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Paid        bool            `gorm:"not null;default:false;index" json:"paid"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// ComputeTax derives the tax and total amounts from a net amount and a VAT
// percentage: tax = net * rate / 100 rounded to 2 decimal places,
// total = net + tax. Negative nets and rates outside [0,100] are accepted
// and propagate arithmetically. The computation is idempotent: the same
// inputs always produce the same outputs.
func ComputeTax(net, rate decimal.Decimal) (tax, total decimal.Decimal) {
	tax = net.Mul(rate).Div(oneHundred).Round(2)
	total = net.Add(tax).Round(2)
	return tax, total
}

// ApplyDerivedAmounts recomputes TaxAmount and TotalAmount from the current
// NetAmount and TaxRate. Called unconditionally before every persist.
func (i *Invoice) ApplyDerivedAmounts() {
	i.TaxAmount, i.TotalAmount = ComputeTax(i.NetAmount, i.TaxRate)
}
