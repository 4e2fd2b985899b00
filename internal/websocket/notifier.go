package websocket

import (
	"context"
	"encoding/json"

	"facturation/internal/logger"
	"facturation/internal/model"
	"facturation/internal/service"
)

// InvoiceNotifier pushes a message to every connected dashboard whenever an
// invoice is created. It plugs into the invoice service as a creation
// listener, so broadcasts never block or fail the HTTP request.
type InvoiceNotifier struct {
	hub *Hub
}

func NewInvoiceNotifier(hub *Hub) *InvoiceNotifier {
	return &InvoiceNotifier{hub: hub}
}

type invoiceCreatedMessage struct {
	Event       string `json:"event"`
	InvoiceID   string `json:"invoice_id"`
	Number      string `json:"number"`
	TotalAmount string `json:"total_amount"`
	Method      string `json:"method"`
}

func (n *InvoiceNotifier) InvoiceCreated(ctx context.Context, invoice *model.Invoice, meta service.RequestMetadata) {
	msg := invoiceCreatedMessage{
		Event:       "invoice_created",
		InvoiceID:   invoice.ID.String(),
		Number:      invoice.Number,
		TotalAmount: invoice.TotalAmount.StringFixed(2),
		Method:      meta.Method,
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		logger.Get().Warnw("failed to marshal invoice notification", "error", err)
		return
	}

	select {
	case n.hub.Broadcast <- payload:
	case <-ctx.Done():
	}
}
