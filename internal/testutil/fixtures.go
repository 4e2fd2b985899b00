package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"facturation/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestClient creates a client with a unique name and email.
func CreateTestClient(t *testing.T, db *gorm.DB) *model.Client {
	t.Helper()

	n := nextID()
	client := &model.Client{
		Name:    fmt.Sprintf("Client %d", n),
		Email:   fmt.Sprintf("client%d@test.com", n),
		Phone:   "0600000000",
		Address: "1 rue de Test",
	}
	if err := db.Create(client).Error; err != nil {
		t.Fatalf("failed to create test client: %v", err)
	}
	return client
}

// CreateTestCategory creates a category with a unique name.
func CreateTestCategory(t *testing.T, db *gorm.DB) *model.Category {
	t.Helper()

	category := &model.Category{
		Name:  fmt.Sprintf("Category %d", nextID()),
		Color: "#FF5733",
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// InvoiceOpts customizes a test invoice. Zero values fall back to defaults.
type InvoiceOpts struct {
	Number    string
	Date      time.Time
	NetAmount decimal.Decimal
	TaxRate   decimal.Decimal
	Paid      bool
	Category  *model.Category
}

// CreateTestInvoice creates an invoice for the given client with derived
// amounts computed, applying any overrides from opts.
func CreateTestInvoice(t *testing.T, db *gorm.DB, client *model.Client, opts InvoiceOpts) *model.Invoice {
	t.Helper()

	invoice := &model.Invoice{
		Number:    opts.Number,
		Date:      opts.Date,
		NetAmount: opts.NetAmount,
		TaxRate:   opts.TaxRate,
		ClientID:  client.ID,
		Paid:      opts.Paid,
	}
	if invoice.Number == "" {
		invoice.Number = fmt.Sprintf("FAC-%04d", nextID())
	}
	if invoice.Date.IsZero() {
		invoice.Date = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	}
	if invoice.NetAmount.IsZero() {
		invoice.NetAmount = decimal.NewFromInt(100)
	}
	if invoice.TaxRate.IsZero() {
		invoice.TaxRate = model.DefaultTaxRate
	}
	if opts.Category != nil {
		invoice.CategoryID = &opts.Category.ID
	}
	invoice.ApplyDerivedAmounts()

	if err := db.Create(invoice).Error; err != nil {
		t.Fatalf("failed to create test invoice: %v", err)
	}
	return invoice
}
