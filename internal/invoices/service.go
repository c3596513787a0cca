package invoices

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stockdesk/stockdesk/internal/masterdata/clients"
	"github.com/stockdesk/stockdesk/internal/masterdata/suppliers"
	"github.com/stockdesk/stockdesk/internal/shared"
)

// ClientDirectory resolves client references.
type ClientDirectory interface {
	Get(ctx context.Context, id int64) (clients.Client, error)
}

// SupplierDirectory resolves supplier references.
type SupplierDirectory interface {
	Get(ctx context.Context, id int64) (suppliers.Supplier, error)
}

// Service owns the invoice lifecycle. Payment status and payment date are
// recomputed on every create and update; whatever the client submitted in
// those fields is discarded at the boundary.
type Service struct {
	logger    *slog.Logger
	repo      Repository
	clients   ClientDirectory
	suppliers SupplierDirectory
	now       func() time.Time
}

// NewService constructs the invoice service.
func NewService(logger *slog.Logger, repo Repository, clients ClientDirectory, suppliers SupplierDirectory) *Service {
	return &Service{logger: logger, repo: repo, clients: clients, suppliers: suppliers, now: time.Now}
}

// CreateInput describes a new invoice. Status and payment date are absent
// on purpose: they are never accepted as input.
type CreateInput struct {
	Number     string
	Type       Type
	OrderID    int64
	ClientID   int64
	SupplierID int64
	Total      decimal.Decimal
	Paid       decimal.Decimal
	DueDate    time.Time
}

// UpdateInput carries the mutable invoice fields.
type UpdateInput struct {
	Paid    decimal.Decimal
	DueDate time.Time
}

// Create validates the payload, verifies the counterparty exists, derives
// the payment status and persists the invoice.
func (s *Service) Create(ctx context.Context, input CreateInput, createdBy int64) (Invoice, error) {
	if strings.TrimSpace(input.Number) == "" {
		return Invoice{}, fmt.Errorf("invoices: number is required: %w", shared.ErrValidation)
	}
	if !input.Type.Valid() {
		return Invoice{}, fmt.Errorf("invoices: unknown type %q: %w", input.Type, shared.ErrValidation)
	}
	if input.Total.IsNegative() {
		return Invoice{}, fmt.Errorf("invoices: total must not be negative: %w", shared.ErrValidation)
	}
	if input.DueDate.IsZero() {
		return Invoice{}, fmt.Errorf("invoices: due date is required: %w", shared.ErrValidation)
	}

	switch input.Type {
	case TypeClient:
		if input.ClientID <= 0 || input.SupplierID != 0 {
			return Invoice{}, fmt.Errorf("invoices: client invoice requires a client reference and no supplier: %w", shared.ErrValidation)
		}
		if _, err := s.clients.Get(ctx, input.ClientID); err != nil {
			return Invoice{}, fmt.Errorf("invoices: client %d: %w", input.ClientID, err)
		}
	case TypeSupplier:
		if input.SupplierID <= 0 || input.ClientID != 0 {
			return Invoice{}, fmt.Errorf("invoices: supplier invoice requires a supplier reference and no client: %w", shared.ErrValidation)
		}
		if _, err := s.suppliers.Get(ctx, input.SupplierID); err != nil {
			return Invoice{}, fmt.Errorf("invoices: supplier %d: %w", input.SupplierID, err)
		}
	}

	status, paymentDate := DeriveStatus(input.Total, input.Paid, input.DueDate, s.now())
	invoice := Invoice{
		Number:      input.Number,
		Type:        input.Type,
		OrderID:     input.OrderID,
		ClientID:    input.ClientID,
		SupplierID:  input.SupplierID,
		Total:       input.Total,
		Paid:        input.Paid,
		DueDate:     input.DueDate,
		PaymentDate: paymentDate,
		Status:      status,
		CreatedBy:   createdBy,
	}
	return s.repo.Create(ctx, invoice)
}

// Update mutates the paid amount and due date, re-deriving the payment
// status and payment date.
func (s *Service) Update(ctx context.Context, id int64, input UpdateInput) (Invoice, error) {
	invoice, err := s.repo.Get(ctx, id)
	if err != nil {
		return Invoice{}, err
	}
	if input.Paid.IsNegative() {
		return Invoice{}, fmt.Errorf("invoices: paid amount must not be negative: %w", shared.ErrValidation)
	}
	if input.DueDate.IsZero() {
		return Invoice{}, fmt.Errorf("invoices: due date is required: %w", shared.ErrValidation)
	}

	invoice.Paid = input.Paid
	invoice.DueDate = input.DueDate
	invoice.Status, invoice.PaymentDate = DeriveStatus(invoice.Total, invoice.Paid, invoice.DueDate, s.now())

	if err := s.repo.Update(ctx, invoice); err != nil {
		return Invoice{}, err
	}
	return invoice, nil
}

// Get loads one invoice.
func (s *Service) Get(ctx context.Context, id int64) (Invoice, error) {
	if id <= 0 {
		return Invoice{}, fmt.Errorf("invoices: invalid id: %w", shared.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

// List returns a page of invoices, optionally filtered by type.
func (s *Service) List(ctx context.Context, invoiceType Type, limit, offset int) ([]Invoice, int, error) {
	if invoiceType != "" && !invoiceType.Valid() {
		return nil, 0, fmt.Errorf("invoices: unknown type %q: %w", invoiceType, shared.ErrValidation)
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, invoiceType, limit, offset)
}

// RefreshOverdue re-derives the status of past-due invoices. Used by the
// periodic rescan job so an invoice flips to OVERDUE even when nobody
// touches it. Returns the number of invoices updated.
func (s *Service) RefreshOverdue(ctx context.Context) (int, error) {
	now := s.now()
	candidates, err := s.repo.ListOverdueCandidates(ctx, now)
	if err != nil {
		return 0, err
	}
	updated := 0
	for _, invoice := range candidates {
		status, paymentDate := DeriveStatus(invoice.Total, invoice.Paid, invoice.DueDate, now)
		if status == invoice.Status {
			continue
		}
		if err := s.repo.UpdateDerived(ctx, invoice.ID, status, paymentDate); err != nil {
			return updated, err
		}
		updated++
	}
	if s.logger != nil && updated > 0 {
		s.logger.Info("overdue rescan applied", slog.Int("updated", updated))
	}
	return updated, nil
}
