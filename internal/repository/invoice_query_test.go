package repository

import (
	"context"
	"testing"
	"time"

	"facturation/internal/model"
	"facturation/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestInvoiceQueryAggregates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	client := testutil.CreateTestClient(t, db)
	testutil.CreateTestInvoice(t, db, client, testutil.InvoiceOpts{
		NetAmount: decimal.NewFromInt(250),
		TaxRate:   decimal.NewFromInt(20),
	})
	testutil.CreateTestInvoice(t, db, client, testutil.InvoiceOpts{
		NetAmount: decimal.NewFromInt(200),
		TaxRate:   decimal.RequireFromString("12.5"),
	})

	query := NewInvoiceQuery(db)

	total, err := query.TotalAmount()
	testutil.AssertNoError(t, err)
	testutil.AssertDecimalEqual(t, "525.00", total)

	net, err := query.NetTotal()
	testutil.AssertNoError(t, err)
	testutil.AssertDecimalEqual(t, "450.00", net)

	tax, err := query.TaxTotal()
	testutil.AssertNoError(t, err)
	testutil.AssertDecimalEqual(t, "75.00", tax)
}

func TestInvoiceQueryEmptySet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	query := NewInvoiceQuery(db).ByClient(uuid.New())

	count, err := query.Count()
	testutil.AssertNoError(t, err)
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}

	total, err := query.TotalAmount()
	testutil.AssertNoError(t, err)
	testutil.AssertDecimalEqual(t, "0", total)

	invoices, err := query.Find()
	testutil.AssertNoError(t, err)
	if len(invoices) != 0 {
		t.Errorf("found %d invoices, want 0", len(invoices))
	}

	catStats, err := query.StatsByCategory()
	testutil.AssertNoError(t, err)
	if len(catStats) != 0 {
		t.Errorf("got %d category stats, want 0", len(catStats))
	}

	clientStats, err := query.StatsByClient()
	testutil.AssertNoError(t, err)
	if len(clientStats) != 0 {
		t.Errorf("got %d client stats, want 0", len(clientStats))
	}
}

func TestInvoiceQueryFilterComposition(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	alice := testutil.CreateTestClient(t, db)
	bob := testutil.CreateTestClient(t, db)

	testutil.CreateTestInvoice(t, db, alice, testutil.InvoiceOpts{Paid: true})
	wanted := testutil.CreateTestInvoice(t, db, alice, testutil.InvoiceOpts{})
	testutil.CreateTestInvoice(t, db, bob, testutil.InvoiceOpts{})

	invoices, err := NewInvoiceQuery(db).Unpaid().ByClient(alice.ID).Find()
	testutil.AssertNoError(t, err)

	if len(invoices) != 1 {
		t.Fatalf("got %d invoices, want 1", len(invoices))
	}
	if invoices[0].ID != wanted.ID {
		t.Errorf("got invoice %s, want %s", invoices[0].ID, wanted.ID)
	}
}

func TestInvoiceQueryValueSemantics(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	client := testutil.CreateTestClient(t, db)
	testutil.CreateTestInvoice(t, db, client, testutil.InvoiceOpts{Paid: true})
	testutil.CreateTestInvoice(t, db, client, testutil.InvoiceOpts{})
	testutil.CreateTestInvoice(t, db, client, testutil.InvoiceOpts{})

	base := NewInvoiceQuery(db).ByClient(client.ID)
	paid := base.Paid()
	unpaid := base.Unpaid()

	paidCount, err := paid.Count()
	testutil.AssertNoError(t, err)
	unpaidCount, err := unpaid.Count()
	testutil.AssertNoError(t, err)
	baseCount, err := base.Count()
	testutil.AssertNoError(t, err)

	if paidCount != 1 || unpaidCount != 2 || baseCount != 3 {
		t.Errorf("counts (paid=%d, unpaid=%d, base=%d), want (1, 2, 3)",
			paidCount, unpaidCount, baseCount)
	}
}

func TestInvoiceQuerySearch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	dupont := &model.Client{Name: "Dupont SARL", Email: "contact@dupont.fr"}
	testutil.AssertNoError(t, db.Create(dupont).Error)
	martin := &model.Client{Name: "Martin & Fils", Email: "bureau@martin.fr"}
	testutil.AssertNoError(t, db.Create(martin).Error)

	testutil.CreateTestInvoice(t, db, dupont, testutil.InvoiceOpts{Number: "FAC-2025-001"})
	testutil.CreateTestInvoice(t, db, martin, testutil.InvoiceOpts{Number: "FAC-2025-002"})

	tests := []struct {
		name string
		term string
		want int
	}{
		{"by invoice number", "2025-001", 1},
		{"by client name case-insensitive", "dupont", 1},
		{"by client email", "BUREAU@", 1},
		{"shared prefix matches both", "fac-2025", 2},
		{"no match", "nonexistent", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			invoices, err := NewInvoiceQuery(db).Search(tt.term).Find()
			testutil.AssertNoError(t, err)
			if len(invoices) != tt.want {
				t.Errorf("search %q returned %d invoices, want %d", tt.term, len(invoices), tt.want)
			}
		})
	}
}

func TestInvoiceQueryPeriod(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	client := testutil.CreateTestClient(t, db)
	testutil.CreateTestInvoice(t, db, client, testutil.InvoiceOpts{Date: date(2025, time.March, 1)})
	testutil.CreateTestInvoice(t, db, client, testutil.InvoiceOpts{Date: date(2025, time.March, 31)})
	testutil.CreateTestInvoice(t, db, client, testutil.InvoiceOpts{Date: date(2025, time.April, 1)})
	testutil.CreateTestInvoice(t, db, client, testutil.InvoiceOpts{Date: date(2024, time.March, 15)})

	t.Run("bounds are inclusive", func(t *testing.T) {
		count, err := NewInvoiceQuery(db).
			InPeriod(date(2025, time.March, 1), date(2025, time.March, 31)).
			Count()
		testutil.AssertNoError(t, err)
		if count != 2 {
			t.Errorf("count = %d, want 2", count)
		}
	})

	t.Run("year filter", func(t *testing.T) {
		count, err := NewInvoiceQuery(db).Year(2025).Count()
		testutil.AssertNoError(t, err)
		if count != 3 {
			t.Errorf("count = %d, want 3", count)
		}
	})
}

func TestInvoiceQueryStatsByCategory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	client := testutil.CreateTestClient(t, db)
	consulting := testutil.CreateTestCategory(t, db)
	training := testutil.CreateTestCategory(t, db)

	// consulting: 100 + 150 net @20% -> 300.00 total across 2 invoices
	testutil.CreateTestInvoice(t, db, client, testutil.InvoiceOpts{
		NetAmount: decimal.NewFromInt(100), Category: consulting,
	})
	testutil.CreateTestInvoice(t, db, client, testutil.InvoiceOpts{
		NetAmount: decimal.NewFromInt(150), Category: consulting,
	})
	// training: 50 net @20% -> 60.00 total
	testutil.CreateTestInvoice(t, db, client, testutil.InvoiceOpts{
		NetAmount: decimal.NewFromInt(50), Category: training,
	})

	stats, err := NewInvoiceQuery(db).StatsByCategory()
	testutil.AssertNoError(t, err)

	if len(stats) != 2 {
		t.Fatalf("got %d groups, want 2", len(stats))
	}
	if stats[0].CategoryID != consulting.ID {
		t.Errorf("first group = %s, want the largest total first", stats[0].CategoryName)
	}
	if stats[0].InvoiceCount != 2 {
		t.Errorf("invoice count = %d, want 2", stats[0].InvoiceCount)
	}
	testutil.AssertDecimalEqual(t, "250", stats[0].NetSum)
	testutil.AssertDecimalEqual(t, "300", stats[0].TotalSum)
	testutil.AssertDecimalEqual(t, "60", stats[1].TotalSum)

	top, err := NewInvoiceQuery(db).TopCategories(1)
	testutil.AssertNoError(t, err)
	if len(top) != 1 || top[0].CategoryID != consulting.ID {
		t.Errorf("top 1 = %+v, want only the consulting group", top)
	}
}

func TestInvoiceQueryStatsByClient(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	big := testutil.CreateTestClient(t, db)
	small := testutil.CreateTestClient(t, db)

	testutil.CreateTestInvoice(t, db, big, testutil.InvoiceOpts{
		NetAmount: decimal.NewFromInt(500),
	})
	testutil.CreateTestInvoice(t, db, small, testutil.InvoiceOpts{
		NetAmount: decimal.NewFromInt(100),
	})

	stats, err := NewInvoiceQuery(db).StatsByClient()
	testutil.AssertNoError(t, err)

	if len(stats) != 2 {
		t.Fatalf("got %d groups, want 2", len(stats))
	}
	if stats[0].ClientID != big.ID {
		t.Errorf("first group = %s, want the largest total first", stats[0].ClientName)
	}
	testutil.AssertDecimalEqual(t, "600", stats[0].TotalSum)

	top, err := NewInvoiceQuery(db).TopClients(1)
	testutil.AssertNoError(t, err)
	if len(top) != 1 || top[0].ClientID != big.ID {
		t.Errorf("top 1 = %+v, want only the biggest client", top)
	}
}

func TestInvoiceQuerySearchCombinesWithClientStats(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	acme := &model.Client{Name: "Acme", Email: "acme@test.com"}
	testutil.AssertNoError(t, db.Create(acme).Error)
	testutil.CreateTestInvoice(t, db, acme, testutil.InvoiceOpts{Number: "FAC-XYZ"})

	// Search joins clients; the client grouping must not add a second join.
	stats, err := NewInvoiceQuery(db).Search("acme").StatsByClient()
	testutil.AssertNoError(t, err)

	if len(stats) != 1 || stats[0].ClientID != acme.ID {
		t.Fatalf("stats = %+v, want a single Acme group", stats)
	}
}

func TestInvoiceQueryFindPage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	client := testutil.CreateTestClient(t, db)
	for i := 0; i < 5; i++ {
		testutil.CreateTestInvoice(t, db, client, testutil.InvoiceOpts{
			Date: date(2025, time.January, 10+i),
		})
	}

	invoices, total, err := NewInvoiceQuery(db).FindPage(0, 2)
	testutil.AssertNoError(t, err)

	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(invoices) != 2 {
		t.Fatalf("page has %d invoices, want 2", len(invoices))
	}
	// Newest first
	if !invoices[0].Date.After(invoices[1].Date) {
		t.Errorf("expected descending date order, got %s then %s",
			invoices[0].Date, invoices[1].Date)
	}

	rest, _, err := NewInvoiceQuery(db).FindPage(4, 2)
	testutil.AssertNoError(t, err)
	if len(rest) != 1 {
		t.Errorf("last page has %d invoices, want 1", len(rest))
	}
}

func TestInvoiceQueryPreloadsRelations(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	client := testutil.CreateTestClient(t, db)
	category := testutil.CreateTestCategory(t, db)
	testutil.CreateTestInvoice(t, db, client, testutil.InvoiceOpts{Category: category})

	invoices, err := NewInvoiceQuery(db).Find()
	testutil.AssertNoError(t, err)

	if len(invoices) != 1 {
		t.Fatalf("got %d invoices, want 1", len(invoices))
	}
	if invoices[0].Client == nil || invoices[0].Client.Name != client.Name {
		t.Error("client not preloaded")
	}
	if invoices[0].Category == nil || invoices[0].Category.Name != category.Name {
		t.Error("category not preloaded")
	}
}

func TestCategoryGetOrCreate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	repo := NewCategoryRepository(db)
	ctx := context.Background()

	first, err := repo.GetOrCreate(ctx, model.FallbackCategoryName, model.FallbackCategoryColor)
	testutil.AssertNoError(t, err)
	second, err := repo.GetOrCreate(ctx, model.FallbackCategoryName, "#000000")
	testutil.AssertNoError(t, err)

	if first.ID != second.ID {
		t.Errorf("second call created a new row: %s vs %s", first.ID, second.ID)
	}
	if second.Color != model.FallbackCategoryColor {
		t.Errorf("color = %s, existing row must win over attrs", second.Color)
	}

	var count int64
	testutil.AssertNoError(t, db.Model(&model.Category{}).Where("name = ?", model.FallbackCategoryName).Count(&count).Error)
	if count != 1 {
		t.Errorf("found %d fallback rows, want exactly 1", count)
	}
}
