package service

import (
	"context"
	"testing"

	"facturation/internal/model"
	"facturation/internal/repository"
	"facturation/internal/testutil"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func newTestInvoiceService(db *gorm.DB) InvoiceService {
	return NewInvoiceService(
		repository.NewInvoiceRepository(db),
		repository.NewClientRepository(db),
		repository.NewCategoryRepository(db),
		repository.NewTransactionManager(db),
	)
}

func TestCreateInvoiceComputesTax(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	svc := newTestInvoiceService(db)
	client := testutil.CreateTestClient(t, db)

	resp, err := svc.CreateInvoice(context.Background(), CreateInvoiceRequest{
		Number:    "FAC-001",
		Date:      "2025-06-15",
		NetAmount: "250.50",
		TaxRate:   "10",
		ClientID:  client.ID.String(),
	}, RequestMetadata{Method: model.CreationMethodAPI})
	testutil.AssertNoError(t, err)

	if resp.TaxAmount != "25.05" {
		t.Errorf("tax_amount = %s, want 25.05", resp.TaxAmount)
	}
	if resp.TotalAmount != "275.55" {
		t.Errorf("total_amount = %s, want 275.55", resp.TotalAmount)
	}
	if resp.ClientName != client.Name {
		t.Errorf("client_name = %s, want %s", resp.ClientName, client.Name)
	}
}

func TestCreateInvoiceDefaultsTaxRate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	svc := newTestInvoiceService(db)
	client := testutil.CreateTestClient(t, db)

	resp, err := svc.CreateInvoice(context.Background(), CreateInvoiceRequest{
		Number:    "FAC-002",
		Date:      "2025-06-15",
		NetAmount: "100",
		ClientID:  client.ID.String(),
	}, RequestMetadata{})
	testutil.AssertNoError(t, err)

	if resp.TaxRate != "20.00" {
		t.Errorf("tax_rate = %s, want the 20.00 default", resp.TaxRate)
	}
	if resp.TotalAmount != "120.00" {
		t.Errorf("total_amount = %s, want 120.00", resp.TotalAmount)
	}
}

func TestCreateInvoiceFallbackCategory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	svc := newTestInvoiceService(db)
	client := testutil.CreateTestClient(t, db)
	ctx := context.Background()

	req := CreateInvoiceRequest{
		Number:    "FAC-003",
		Date:      "2025-06-15",
		NetAmount: "100",
		ClientID:  client.ID.String(),
	}

	first, err := svc.CreateInvoice(ctx, req, RequestMetadata{})
	testutil.AssertNoError(t, err)
	req.Number = "FAC-004"
	second, err := svc.CreateInvoice(ctx, req, RequestMetadata{})
	testutil.AssertNoError(t, err)

	if first.CategoryName == nil || *first.CategoryName != model.FallbackCategoryName {
		t.Fatalf("category = %v, want %q", first.CategoryName, model.FallbackCategoryName)
	}
	if second.CategoryID == nil || first.CategoryID == nil || *second.CategoryID != *first.CategoryID {
		t.Errorf("both invoices should share the same fallback category")
	}

	var count int64
	testutil.AssertNoError(t, db.Model(&model.Category{}).
		Where("name = ?", model.FallbackCategoryName).Count(&count).Error)
	if count != 1 {
		t.Errorf("found %d fallback categories, want exactly 1", count)
	}
}

func TestCreateInvoiceExplicitCategoryKept(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	svc := newTestInvoiceService(db)
	client := testutil.CreateTestClient(t, db)
	category := testutil.CreateTestCategory(t, db)

	resp, err := svc.CreateInvoice(context.Background(), CreateInvoiceRequest{
		Number:     "FAC-005",
		Date:       "2025-06-15",
		NetAmount:  "100",
		ClientID:   client.ID.String(),
		CategoryID: category.ID.String(),
	}, RequestMetadata{})
	testutil.AssertNoError(t, err)

	if resp.CategoryID == nil || *resp.CategoryID != category.ID.String() {
		t.Errorf("category = %v, want the explicit one", resp.CategoryID)
	}

	// No fallback row should have been created along the way.
	var count int64
	testutil.AssertNoError(t, db.Model(&model.Category{}).
		Where("name = ?", model.FallbackCategoryName).Count(&count).Error)
	if count != 0 {
		t.Errorf("found %d fallback categories, want 0", count)
	}
}

func TestCreateInvoiceUnknownReferences(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	svc := newTestInvoiceService(db)
	client := testutil.CreateTestClient(t, db)
	ctx := context.Background()

	t.Run("missing client", func(t *testing.T) {
		_, err := svc.CreateInvoice(ctx, CreateInvoiceRequest{
			Number:    "FAC-006",
			Date:      "2025-06-15",
			NetAmount: "100",
			ClientID:  uuid.NewString(),
		}, RequestMetadata{})
		if err == nil {
			t.Fatal("expected an error for an unknown client")
		}
	})

	t.Run("missing explicit category", func(t *testing.T) {
		_, err := svc.CreateInvoice(ctx, CreateInvoiceRequest{
			Number:     "FAC-007",
			Date:       "2025-06-15",
			NetAmount:  "100",
			ClientID:   client.ID.String(),
			CategoryID: uuid.NewString(),
		}, RequestMetadata{})
		if err == nil {
			t.Fatal("expected an error for an unknown category")
		}
	})

	var count int64
	testutil.AssertNoError(t, db.Model(&model.Invoice{}).Count(&count).Error)
	if count != 0 {
		t.Errorf("found %d invoices, failed creates must not persist", count)
	}
}

func TestUpdateInvoiceRecomputesAmounts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	svc := newTestInvoiceService(db)
	client := testutil.CreateTestClient(t, db)
	ctx := context.Background()

	created, err := svc.CreateInvoice(ctx, CreateInvoiceRequest{
		Number:    "FAC-008",
		Date:      "2025-06-15",
		NetAmount: "100",
		TaxRate:   "20",
		ClientID:  client.ID.String(),
	}, RequestMetadata{})
	testutil.AssertNoError(t, err)

	updated, err := svc.UpdateInvoice(ctx, created.ID, UpdateInvoiceRequest{
		Number:    "FAC-008",
		Date:      "2025-06-15",
		NetAmount: "200",
		TaxRate:   "20",
		ClientID:  client.ID.String(),
	})
	testutil.AssertNoError(t, err)

	if updated.TaxAmount != "40.00" {
		t.Errorf("tax_amount = %s, want 40.00", updated.TaxAmount)
	}
	if updated.TotalAmount != "240.00" {
		t.Errorf("total_amount = %s, want 240.00", updated.TotalAmount)
	}
}

type recordingListener struct {
	calls []RequestMetadata
}

func (r *recordingListener) InvoiceCreated(ctx context.Context, invoice *model.Invoice, meta RequestMetadata) {
	r.calls = append(r.calls, meta)
}

type panickingListener struct{}

func (panickingListener) InvoiceCreated(ctx context.Context, invoice *model.Invoice, meta RequestMetadata) {
	panic("listener blew up")
}

func TestCreateInvoiceNotifiesListeners(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	svc := newTestInvoiceService(db)
	client := testutil.CreateTestClient(t, db)

	recorder := &recordingListener{}
	svc.Subscribe(panickingListener{})
	svc.Subscribe(recorder)

	meta := RequestMetadata{
		IPAddress: "203.0.113.7",
		UserAgent: "test-agent",
		Method:    model.CreationMethodWebForm,
	}

	_, err := svc.CreateInvoice(context.Background(), CreateInvoiceRequest{
		Number:    "FAC-009",
		Date:      "2025-06-15",
		NetAmount: "100",
		ClientID:  client.ID.String(),
	}, meta)
	testutil.AssertNoError(t, err)

	if len(recorder.calls) != 1 {
		t.Fatalf("listener called %d times, want exactly 1", len(recorder.calls))
	}
	got := recorder.calls[0]
	if got.IPAddress != meta.IPAddress || got.UserAgent != meta.UserAgent || got.Method != meta.Method {
		t.Errorf("listener got %+v, want %+v", got, meta)
	}
}

func TestUpdateInvoiceDoesNotNotify(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	svc := newTestInvoiceService(db)
	client := testutil.CreateTestClient(t, db)
	ctx := context.Background()

	recorder := &recordingListener{}
	svc.Subscribe(recorder)

	req := CreateInvoiceRequest{
		Number:    "FAC-010",
		Date:      "2025-06-15",
		NetAmount: "100",
		ClientID:  client.ID.String(),
	}
	created, err := svc.CreateInvoice(ctx, req, RequestMetadata{})
	testutil.AssertNoError(t, err)

	_, err = svc.UpdateInvoice(ctx, created.ID, req)
	testutil.AssertNoError(t, err)

	if len(recorder.calls) != 1 {
		t.Errorf("listener called %d times, updates must not notify", len(recorder.calls))
	}
}

func TestListInvoicesFilters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	svc := newTestInvoiceService(db)
	client := testutil.CreateTestClient(t, db)
	other := testutil.CreateTestClient(t, db)

	testutil.CreateTestInvoice(t, db, client, testutil.InvoiceOpts{Number: "FAC-A", Paid: true})
	testutil.CreateTestInvoice(t, db, client, testutil.InvoiceOpts{Number: "FAC-B"})
	testutil.CreateTestInvoice(t, db, other, testutil.InvoiceOpts{Number: "FAC-C"})

	paid := true
	invoices, total, err := svc.ListInvoices(context.Background(), InvoiceFilter{
		Paid:     &paid,
		ClientID: client.ID.String(),
	})
	testutil.AssertNoError(t, err)

	if total != 1 || len(invoices) != 1 {
		t.Fatalf("got %d invoices (total %d), want 1", len(invoices), total)
	}
	if invoices[0].Number != "FAC-A" {
		t.Errorf("got %s, want FAC-A", invoices[0].Number)
	}
}
