package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"facturation/internal/logger"
	"facturation/internal/model"
	"facturation/internal/repository"

	"github.com/google/uuid"
)

type CreationLogResponse struct {
	ID            string `json:"id"`
	InvoiceID     string `json:"invoice_id"`
	InvoiceNumber string `json:"invoice_number"`
	IPAddress     string `json:"ip_address"`
	UserAgent     string `json:"user_agent"`
	Method        string `json:"method"`
	Details       string `json:"details"`
	CreatedAt     string `json:"created_at"`
}

type CreationLogService interface {
	// InvoiceCreated makes the service an InvoiceCreatedListener: it records
	// an audit entry for each successful invoice creation, best effort.
	InvoiceCreated(ctx context.Context, invoice *model.Invoice, meta RequestMetadata)
	ListLogs(ctx context.Context, page, limit int) ([]CreationLogResponse, int64, error)
	ListLogsByInvoice(ctx context.Context, invoiceID string) ([]CreationLogResponse, error)
	DeleteLog(ctx context.Context, id string) error
}

type creationLogService struct {
	logRepo repository.CreationLogRepository
}

func NewCreationLogService(logRepo repository.CreationLogRepository) CreationLogService {
	return &creationLogService{logRepo: logRepo}
}

// InvoiceCreated writes the audit entry for a freshly created invoice.
// Failures are logged and swallowed: audit unavailability must never surface
// to the caller that created the invoice.
func (s *creationLogService) InvoiceCreated(ctx context.Context, invoice *model.Invoice, meta RequestMetadata) {
	details := "{}"
	if len(meta.Details) > 0 {
		if payload, err := json.Marshal(meta.Details); err == nil {
			details = string(payload)
		}
	}

	entry := model.CreationLog{
		InvoiceID: invoice.ID,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		Method:    meta.Method,
		Details:   details,
	}

	if err := s.logRepo.Log(ctx, &entry); err != nil {
		logger.Get().Warnw("failed to write invoice creation log",
			"invoice_id", invoice.ID.String(),
			"error", err,
		)
	}
}

func (s *creationLogService) ListLogs(ctx context.Context, page, limit int) ([]CreationLogResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	logs, total, err := s.logRepo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch creation logs: %w", err)
	}

	result := make([]CreationLogResponse, 0, len(logs))
	for _, l := range logs {
		result = append(result, toCreationLogResponse(l))
	}
	return result, total, nil
}

func (s *creationLogService) ListLogsByInvoice(ctx context.Context, invoiceID string) ([]CreationLogResponse, error) {
	id, err := uuid.Parse(invoiceID)
	if err != nil {
		return nil, fmt.Errorf("invalid invoice id: %w", err)
	}

	logs, err := s.logRepo.ListByInvoice(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch creation logs: %w", err)
	}

	result := make([]CreationLogResponse, 0, len(logs))
	for _, l := range logs {
		result = append(result, toCreationLogResponse(l))
	}
	return result, nil
}

// DeleteLog removes a single entry, for maintenance only.
func (s *creationLogService) DeleteLog(ctx context.Context, id string) error {
	logID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid log id: %w", err)
	}
	if err := s.logRepo.Delete(ctx, logID); err != nil {
		return fmt.Errorf("failed to delete creation log: %w", err)
	}
	return nil
}

func toCreationLogResponse(l model.CreationLog) CreationLogResponse {
	resp := CreationLogResponse{
		ID:        l.ID.String(),
		InvoiceID: l.InvoiceID.String(),
		IPAddress: l.IPAddress,
		UserAgent: l.UserAgent,
		Method:    l.Method,
		Details:   l.Details,
		CreatedAt: l.CreatedAt.Format(time.RFC3339),
	}
	if l.Invoice != nil {
		resp.InvoiceNumber = l.Invoice.Number
	}
	return resp
}
