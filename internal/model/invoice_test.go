package model

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestComputeTax(t *testing.T) {
	tests := []struct {
		name      string
		net       string
		rate      string
		wantTax   string
		wantTotal string
	}{
		{"standard rate", "100.00", "20.00", "20.00", "120.00"},
		{"reduced rate with rounding", "250.50", "10.00", "25.05", "275.55"},
		{"intermediate rate", "200.00", "5.50", "11.00", "211.00"},
		{"zero rate", "100.00", "0.00", "0.00", "100.00"},
		{"zero net", "0.00", "20.00", "0.00", "0.00"},
		{"fractional tax rounds to cents", "10.01", "5.50", "0.55", "10.56"},
		{"negative net propagates", "-50.00", "20.00", "-10.00", "-60.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			net, _ := decimal.NewFromString(tt.net)
			rate, _ := decimal.NewFromString(tt.rate)

			tax, total := ComputeTax(net, rate)

			if tax.StringFixed(2) != tt.wantTax {
				t.Errorf("tax = %s, want %s", tax.StringFixed(2), tt.wantTax)
			}
			if total.StringFixed(2) != tt.wantTotal {
				t.Errorf("total = %s, want %s", total.StringFixed(2), tt.wantTotal)
			}
		})
	}
}

func TestComputeTaxIdempotent(t *testing.T) {
	net, _ := decimal.NewFromString("333.33")
	rate, _ := decimal.NewFromString("19.60")

	tax1, total1 := ComputeTax(net, rate)
	tax2, total2 := ComputeTax(net, rate)

	if !tax1.Equal(tax2) || !total1.Equal(total2) {
		t.Errorf("same inputs produced different outputs: (%s, %s) vs (%s, %s)",
			tax1, total1, tax2, total2)
	}
}

func TestApplyDerivedAmounts(t *testing.T) {
	inv := Invoice{
		NetAmount: decimal.RequireFromString("250.50"),
		TaxRate:   decimal.RequireFromString("10.00"),
	}

	inv.ApplyDerivedAmounts()

	if inv.TaxAmount.StringFixed(2) != "25.05" {
		t.Errorf("TaxAmount = %s, want 25.05", inv.TaxAmount.StringFixed(2))
	}
	if inv.TotalAmount.StringFixed(2) != "275.55" {
		t.Errorf("TotalAmount = %s, want 275.55", inv.TotalAmount.StringFixed(2))
	}

	// Re-applying with unchanged inputs must not drift the derived fields.
	inv.ApplyDerivedAmounts()
	if inv.TotalAmount.StringFixed(2) != "275.55" {
		t.Errorf("TotalAmount drifted to %s after reapply", inv.TotalAmount.StringFixed(2))
	}
}
