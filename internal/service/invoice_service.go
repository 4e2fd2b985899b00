package service

import (
	"context"
	"fmt"
	"time"

	"facturation/internal/logger"
	"facturation/internal/model"
	"facturation/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type CreateInvoiceRequest struct {
	Number     string `json:"number" binding:"required"`
	Date       string `json:"date" binding:"required"` // YYYY-MM-DD
	NetAmount  string `json:"net_amount" binding:"required"`
	TaxRate    string `json:"tax_rate"`    // optional, defaults to 20.00
	ClientID   string `json:"client_id" binding:"required"`
	CategoryID string `json:"category_id"` // optional, fallback assigned when empty
	Paid       bool   `json:"paid"`
}

// UpdateInvoiceRequest carries the full field set; updates always reapply the
// category fallback and the tax derivation.
type UpdateInvoiceRequest = CreateInvoiceRequest

type InvoiceFilter struct {
	Paid       *bool
	ClientID   string
	CategoryID string
	StartDate  string // YYYY-MM-DD, inclusive
	EndDate    string // YYYY-MM-DD, inclusive
	Search     string
	Page       int
	Limit      int
}

type InvoiceResponse struct {
	ID           string  `json:"id"`
	Number       string  `json:"number"`
	Date         string  `json:"date"`
	NetAmount    string  `json:"net_amount"`
	TaxRate      string  `json:"tax_rate"`
	TaxAmount    string  `json:"tax_amount"`
	TotalAmount  string  `json:"total_amount"`
	ClientID     string  `json:"client_id"`
	ClientName   string  `json:"client_name"`
	CategoryID   *string `json:"category_id"`
	CategoryName *string `json:"category_name"`
	Paid         bool    `json:"paid"`
	CreatedAt    string  `json:"created_at"`
}

// RequestMetadata describes the request that triggered an invoice creation.
// IPAddress is expected to already honor X-Forwarded-For (first entry wins
// over the direct connection address).
type RequestMetadata struct {
	IPAddress string
	UserAgent string
	Method    string
	Details   map[string]interface{}
}

// InvoiceCreatedListener receives a notification exactly once after each
// successful invoice creation. Listener failures never propagate to the
// caller of CreateInvoice.
type InvoiceCreatedListener interface {
	InvoiceCreated(ctx context.Context, invoice *model.Invoice, meta RequestMetadata)
}

// --- Interface ---

type InvoiceService interface {
	CreateInvoice(ctx context.Context, req CreateInvoiceRequest, meta RequestMetadata) (InvoiceResponse, error)
	UpdateInvoice(ctx context.Context, id string, req UpdateInvoiceRequest) (InvoiceResponse, error)
	DeleteInvoice(ctx context.Context, id string) error
	GetInvoice(ctx context.Context, id string) (InvoiceResponse, error)
	ListInvoices(ctx context.Context, filter InvoiceFilter) ([]InvoiceResponse, int64, error)
	Subscribe(listener InvoiceCreatedListener)
}

type invoiceService struct {
	invoiceRepo  repository.InvoiceRepository
	clientRepo   repository.ClientRepository
	categoryRepo repository.CategoryRepository
	txManager    repository.TransactionManager
	listeners    []InvoiceCreatedListener
}

func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	clientRepo repository.ClientRepository,
	categoryRepo repository.CategoryRepository,
	txManager repository.TransactionManager,
) InvoiceService {
	return &invoiceService{
		invoiceRepo:  invoiceRepo,
		clientRepo:   clientRepo,
		categoryRepo: categoryRepo,
		txManager:    txManager,
	}
}

// Subscribe registers a creation listener. Not safe for concurrent use with
// CreateInvoice; wire listeners during startup.
func (s *invoiceService) Subscribe(listener InvoiceCreatedListener) {
	s.listeners = append(s.listeners, listener)
}

// --- Implementation ---

func (s *invoiceService) CreateInvoice(ctx context.Context, req CreateInvoiceRequest, meta RequestMetadata) (InvoiceResponse, error) {
	var invoice model.Invoice

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.populate(txCtx, &invoice, req); err != nil {
			return err
		}
		if err := s.invoiceRepo.Create(txCtx, &invoice); err != nil {
			return fmt.Errorf("failed to create invoice: %w", err)
		}
		return nil
	})
	if err != nil {
		return InvoiceResponse{}, err
	}

	reloaded, err := s.invoiceRepo.FindByIDWithRelations(ctx, invoice.ID)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("failed to reload invoice: %w", err)
	}

	s.notifyCreated(ctx, reloaded, meta)

	return toInvoiceResponse(*reloaded), nil
}

func (s *invoiceService) UpdateInvoice(ctx context.Context, id string, req UpdateInvoiceRequest) (InvoiceResponse, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invalid invoice id: %w", err)
	}

	var invoice *model.Invoice
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		invoice, findErr = s.invoiceRepo.FindByID(txCtx, invoiceID)
		if findErr != nil {
			return fmt.Errorf("invoice not found: %w", findErr)
		}

		if err := s.populate(txCtx, invoice, req); err != nil {
			return err
		}
		if err := s.invoiceRepo.Update(txCtx, invoice); err != nil {
			return fmt.Errorf("failed to update invoice: %w", err)
		}
		return nil
	})
	if err != nil {
		return InvoiceResponse{}, err
	}

	reloaded, err := s.invoiceRepo.FindByIDWithRelations(ctx, invoiceID)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("failed to reload invoice: %w", err)
	}

	return toInvoiceResponse(*reloaded), nil
}

func (s *invoiceService) DeleteInvoice(ctx context.Context, id string) error {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid invoice id: %w", err)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.invoiceRepo.FindByID(txCtx, invoiceID); err != nil {
			return fmt.Errorf("invoice not found: %w", err)
		}
		if err := s.invoiceRepo.Delete(txCtx, invoiceID); err != nil {
			return fmt.Errorf("failed to delete invoice: %w", err)
		}
		return nil
	})
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (InvoiceResponse, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invalid invoice id: %w", err)
	}

	invoice, err := s.invoiceRepo.FindByIDWithRelations(ctx, invoiceID)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("invoice not found: %w", err)
	}

	return toInvoiceResponse(*invoice), nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, filter InvoiceFilter) ([]InvoiceResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	query := s.invoiceRepo.Query(ctx)

	if filter.Paid != nil {
		if *filter.Paid {
			query = query.Paid()
		} else {
			query = query.Unpaid()
		}
	}
	if filter.ClientID != "" {
		clientID, err := uuid.Parse(filter.ClientID)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid client id: %w", err)
		}
		query = query.ByClient(clientID)
	}
	if filter.CategoryID != "" {
		categoryID, err := uuid.Parse(filter.CategoryID)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid category id: %w", err)
		}
		query = query.ByCategory(categoryID)
	}
	if filter.StartDate != "" || filter.EndDate != "" {
		start, end, err := parsePeriod(filter.StartDate, filter.EndDate)
		if err != nil {
			return nil, 0, err
		}
		query = query.InPeriod(start, end)
	}
	if filter.Search != "" {
		query = query.Search(filter.Search)
	}

	offset := (filter.Page - 1) * filter.Limit
	invoices, total, err := query.FindPage(offset, filter.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch invoices: %w", err)
	}

	result := make([]InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		result = append(result, toInvoiceResponse(inv))
	}
	return result, total, nil
}

// --- Helpers ---

// populate parses the request into the invoice, resolves the client and
// category references, and recomputes the derived tax fields. Every write
// path goes through here, so an invoice can never be persisted with stale
// tax amounts or without a category.
func (s *invoiceService) populate(ctx context.Context, invoice *model.Invoice, req CreateInvoiceRequest) error {
	netAmount, err := decimal.NewFromString(req.NetAmount)
	if err != nil {
		return fmt.Errorf("invalid net_amount: %w", err)
	}

	taxRate := model.DefaultTaxRate
	if req.TaxRate != "" {
		taxRate, err = decimal.NewFromString(req.TaxRate)
		if err != nil {
			return fmt.Errorf("invalid tax_rate: %w", err)
		}
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return fmt.Errorf("invalid date format (expected YYYY-MM-DD): %w", err)
	}

	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return fmt.Errorf("invalid client_id: %w", err)
	}
	if _, err := s.clientRepo.FindByID(ctx, clientID); err != nil {
		return fmt.Errorf("referenced client not found: %w", err)
	}

	categoryID, err := s.resolveCategory(ctx, req.CategoryID)
	if err != nil {
		return err
	}

	invoice.Number = req.Number
	invoice.Date = date
	invoice.NetAmount = netAmount
	invoice.TaxRate = taxRate
	invoice.ClientID = clientID
	invoice.CategoryID = categoryID
	invoice.Paid = req.Paid
	invoice.ApplyDerivedAmounts()

	return nil
}

// resolveCategory applies the default-category policy: an explicit category
// must exist, an absent one is replaced by the fallback category, created on
// first use.
func (s *invoiceService) resolveCategory(ctx context.Context, raw string) (*uuid.UUID, error) {
	if raw != "" {
		categoryID, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid category_id: %w", err)
		}
		if _, err := s.categoryRepo.FindByID(ctx, categoryID); err != nil {
			return nil, fmt.Errorf("referenced category not found: %w", err)
		}
		return &categoryID, nil
	}

	fallback, err := s.categoryRepo.GetOrCreate(ctx, model.FallbackCategoryName, model.FallbackCategoryColor)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve fallback category: %w", err)
	}
	return &fallback.ID, nil
}

// notifyCreated delivers the creation event to every listener. A listener
// error or panic is logged and swallowed; the invoice is already committed.
func (s *invoiceService) notifyCreated(ctx context.Context, invoice *model.Invoice, meta RequestMetadata) {
	for _, l := range s.listeners {
		func(l InvoiceCreatedListener) {
			defer func() {
				if r := recover(); r != nil {
					logger.Get().Warnw("invoice creation listener panicked",
						"invoice_id", invoice.ID.String(),
						"panic", r,
					)
				}
			}()
			l.InvoiceCreated(ctx, invoice, meta)
		}(l)
	}
}

func parsePeriod(startStr, endStr string) (time.Time, time.Time, error) {
	start := time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)
	var err error

	if startStr != "" {
		start, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			return start, end, fmt.Errorf("invalid start_date format (expected YYYY-MM-DD): %w", err)
		}
	}
	if endStr != "" {
		end, err = time.Parse("2006-01-02", endStr)
		if err != nil {
			return start, end, fmt.Errorf("invalid end_date format (expected YYYY-MM-DD): %w", err)
		}
	}
	return start, end, nil
}

// --- Mapping ---

func toInvoiceResponse(inv model.Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		ID:          inv.ID.String(),
		Number:      inv.Number,
		Date:        inv.Date.Format("2006-01-02"),
		NetAmount:   inv.NetAmount.StringFixed(2),
		TaxRate:     inv.TaxRate.StringFixed(2),
		TaxAmount:   inv.TaxAmount.StringFixed(2),
		TotalAmount: inv.TotalAmount.StringFixed(2),
		ClientID:    inv.ClientID.String(),
		Paid:        inv.Paid,
		CreatedAt:   inv.CreatedAt.Format(time.RFC3339),
	}

	if inv.Client != nil {
		resp.ClientName = inv.Client.Name
	}
	if inv.CategoryID != nil {
		s := inv.CategoryID.String()
		resp.CategoryID = &s
	}
	if inv.Category != nil {
		resp.CategoryName = &inv.Category.Name
	}

	return resp
}
