package service

import (
	"context"
	"testing"
	"time"

	"facturation/internal/repository"
	"facturation/internal/testutil"

	"github.com/shopspring/decimal"
)

func TestGetStatistics(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	svc := NewStatisticsService(repository.NewInvoiceRepository(db))
	ctx := context.Background()

	client := testutil.CreateTestClient(t, db)
	category := testutil.CreateTestCategory(t, db)
	june := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC)

	// 250 @20% paid -> 300 total; 200 @12.5% unpaid -> 225 total
	testutil.CreateTestInvoice(t, db, client, testutil.InvoiceOpts{
		Date: june, NetAmount: decimal.NewFromInt(250), Paid: true, Category: category,
	})
	testutil.CreateTestInvoice(t, db, client, testutil.InvoiceOpts{
		Date: june, NetAmount: decimal.NewFromInt(200),
		TaxRate: decimal.RequireFromString("12.5"), Category: category,
	})
	// Outside the requested period, must not count.
	testutil.CreateTestInvoice(t, db, client, testutil.InvoiceOpts{
		Date: time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC),
		Category: category,
	})

	stats, err := svc.GetStatistics(ctx, StatisticsFilter{Year: 2025})
	testutil.AssertNoError(t, err)

	if stats.InvoiceCount != 2 {
		t.Errorf("invoice_count = %d, want 2", stats.InvoiceCount)
	}
	if stats.PaidCount != 1 || stats.UnpaidCount != 1 {
		t.Errorf("paid/unpaid = %d/%d, want 1/1", stats.PaidCount, stats.UnpaidCount)
	}
	testutil.AssertDecimalEqual(t, "450", stats.NetTotal)
	testutil.AssertDecimalEqual(t, "75", stats.TaxTotal)
	testutil.AssertDecimalEqual(t, "525", stats.TotalAmount)
	testutil.AssertDecimalEqual(t, "225", stats.UnpaidTotal)

	if len(stats.ByCategory) != 1 || stats.ByCategory[0].InvoiceCount != 2 {
		t.Errorf("by_category = %+v, want one group of 2 invoices", stats.ByCategory)
	}
	if len(stats.ByClient) != 1 || stats.ByClient[0].ClientID != client.ID {
		t.Errorf("by_client = %+v, want one group for the client", stats.ByClient)
	}
	if stats.TimeRangeStartDate.Year() != 2025 || stats.TimeRangeEndDate.Year() != 2025 {
		t.Errorf("time range %s - %s, want calendar year 2025",
			stats.TimeRangeStartDate, stats.TimeRangeEndDate)
	}
}

func TestGetStatisticsEmptySet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	svc := NewStatisticsService(repository.NewInvoiceRepository(db))

	stats, err := svc.GetStatistics(context.Background(), StatisticsFilter{Year: 1999})
	testutil.AssertNoError(t, err)

	if stats.InvoiceCount != 0 {
		t.Errorf("invoice_count = %d, want 0", stats.InvoiceCount)
	}
	testutil.AssertDecimalEqual(t, "0", stats.TotalAmount)
	if len(stats.ByCategory) != 0 || len(stats.ByClient) != 0 {
		t.Errorf("expected empty groupings, got %d categories and %d clients",
			len(stats.ByCategory), len(stats.ByClient))
	}
}

func TestGetStatisticsTopLimit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	svc := NewStatisticsService(repository.NewInvoiceRepository(db))

	for i := 0; i < 3; i++ {
		c := testutil.CreateTestClient(t, db)
		testutil.CreateTestInvoice(t, db, c, testutil.InvoiceOpts{
			NetAmount: decimal.NewFromInt(int64(100 * (i + 1))),
		})
	}

	stats, err := svc.GetStatistics(context.Background(), StatisticsFilter{TopLimit: 2})
	testutil.AssertNoError(t, err)

	if len(stats.TopClients) != 2 {
		t.Fatalf("top_clients has %d entries, want 2", len(stats.TopClients))
	}
	if !stats.TopClients[0].TotalSum.GreaterThan(stats.TopClients[1].TotalSum) {
		t.Errorf("top clients not ordered by total: %s then %s",
			stats.TopClients[0].TotalSum, stats.TopClients[1].TotalSum)
	}
	if len(stats.ByClient) != 3 {
		t.Errorf("by_client has %d entries, the full breakdown must stay unlimited", len(stats.ByClient))
	}
}
