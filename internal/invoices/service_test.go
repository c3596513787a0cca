package invoices

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/stockdesk/stockdesk/internal/masterdata/clients"
	"github.com/stockdesk/stockdesk/internal/masterdata/suppliers"
	"github.com/stockdesk/stockdesk/internal/shared"
)

type memoryInvoiceRepo struct {
	invoices map[int64]Invoice
	numbers  map[string]bool
	nextID   int64
}

func newMemoryInvoiceRepo() *memoryInvoiceRepo {
	return &memoryInvoiceRepo{invoices: make(map[int64]Invoice), numbers: make(map[string]bool)}
}

func (r *memoryInvoiceRepo) Create(ctx context.Context, invoice Invoice) (Invoice, error) {
	if r.numbers[invoice.Number] {
		return Invoice{}, fmt.Errorf("invoices: number %s already taken: %w", invoice.Number, shared.ErrConflict)
	}
	r.nextID++
	invoice.ID = r.nextID
	r.numbers[invoice.Number] = true
	r.invoices[invoice.ID] = invoice
	return invoice, nil
}

func (r *memoryInvoiceRepo) Get(ctx context.Context, id int64) (Invoice, error) {
	invoice, ok := r.invoices[id]
	if !ok {
		return Invoice{}, fmt.Errorf("invoices: invoice %d: %w", id, shared.ErrNotFound)
	}
	return invoice, nil
}

func (r *memoryInvoiceRepo) List(ctx context.Context, invoiceType Type, limit, offset int) ([]Invoice, int, error) {
	items := make([]Invoice, 0, len(r.invoices))
	for _, invoice := range r.invoices {
		if invoiceType != "" && invoice.Type != invoiceType {
			continue
		}
		items = append(items, invoice)
	}
	return items, len(items), nil
}

func (r *memoryInvoiceRepo) Update(ctx context.Context, invoice Invoice) error {
	if _, ok := r.invoices[invoice.ID]; !ok {
		return fmt.Errorf("invoices: invoice %d: %w", invoice.ID, shared.ErrNotFound)
	}
	r.invoices[invoice.ID] = invoice
	return nil
}

func (r *memoryInvoiceRepo) ListOverdueCandidates(ctx context.Context, now time.Time) ([]Invoice, error) {
	items := make([]Invoice, 0)
	for _, invoice := range r.invoices {
		if invoice.DueDate.Before(now) && invoice.Status != StatusPaid && invoice.Status != StatusOverdue {
			items = append(items, invoice)
		}
	}
	return items, nil
}

func (r *memoryInvoiceRepo) UpdateDerived(ctx context.Context, id int64, status PaymentStatus, paymentDate *time.Time) error {
	invoice, ok := r.invoices[id]
	if !ok {
		return fmt.Errorf("invoices: invoice %d: %w", id, shared.ErrNotFound)
	}
	invoice.Status = status
	invoice.PaymentDate = paymentDate
	r.invoices[id] = invoice
	return nil
}

type memoryClients struct {
	items map[int64]clients.Client
}

func (d *memoryClients) Get(ctx context.Context, id int64) (clients.Client, error) {
	c, ok := d.items[id]
	if !ok {
		return clients.Client{}, fmt.Errorf("clients: client %d: %w", id, shared.ErrNotFound)
	}
	return c, nil
}

type memorySuppliers struct {
	items map[int64]suppliers.Supplier
}

func (d *memorySuppliers) Get(ctx context.Context, id int64) (suppliers.Supplier, error) {
	s, ok := d.items[id]
	if !ok {
		return suppliers.Supplier{}, fmt.Errorf("suppliers: supplier %d: %w", id, shared.ErrNotFound)
	}
	return s, nil
}

func newTestService(repo *memoryInvoiceRepo, now time.Time) *Service {
	svc := NewService(nil, repo,
		&memoryClients{items: map[int64]clients.Client{1: {ID: 1, Code: "GLOBEX", Name: "Globex"}}},
		&memorySuppliers{items: map[int64]suppliers.Supplier{2: {ID: 2, Code: "ACME", Name: "Acme"}}},
	)
	svc.now = func() time.Time { return now }
	return svc
}

func clientInvoiceInput() CreateInput {
	return CreateInput{
		Number:   "INV-001",
		Type:     TypeClient,
		ClientID: 1,
		Total:    decimal.RequireFromString("100"),
		Paid:     decimal.Zero,
		DueDate:  time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC),
	}
}

func TestCreateDerivesStatus(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestService(newMemoryInvoiceRepo(), now)

	invoice, err := svc.Create(context.Background(), clientInvoiceInput(), 7)
	require.NoError(t, err)
	require.Equal(t, StatusUnpaid, invoice.Status)
	require.Nil(t, invoice.PaymentDate)
	require.Equal(t, int64(7), invoice.CreatedBy)
}

func TestCreatePaidStampsPaymentDate(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestService(newMemoryInvoiceRepo(), now)

	input := clientInvoiceInput()
	input.Paid = decimal.RequireFromString("100")
	invoice, err := svc.Create(context.Background(), input, 7)
	require.NoError(t, err)
	require.Equal(t, StatusPaid, invoice.Status)
	require.NotNil(t, invoice.PaymentDate)
	require.Equal(t, now, *invoice.PaymentDate)
}

func TestCreateCounterpartyExclusivity(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestService(newMemoryInvoiceRepo(), now)

	input := clientInvoiceInput()
	input.SupplierID = 2
	_, err := svc.Create(context.Background(), input, 7)
	require.ErrorIs(t, err, shared.ErrValidation)

	input = clientInvoiceInput()
	input.Type = TypeSupplier
	_, err = svc.Create(context.Background(), input, 7)
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateUnknownCounterpartyIsNotFound(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestService(newMemoryInvoiceRepo(), now)

	input := clientInvoiceInput()
	input.ClientID = 42
	_, err := svc.Create(context.Background(), input, 7)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCreateDuplicateNumberConflicts(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestService(newMemoryInvoiceRepo(), now)

	_, err := svc.Create(context.Background(), clientInvoiceInput(), 7)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), clientInvoiceInput(), 7)
	require.ErrorIs(t, err, shared.ErrConflict)
}

func TestUpdateRederivesStatus(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	repo := newMemoryInvoiceRepo()
	svc := newTestService(repo, now)

	invoice, err := svc.Create(context.Background(), clientInvoiceInput(), 7)
	require.NoError(t, err)
	require.Equal(t, StatusUnpaid, invoice.Status)

	updated, err := svc.Update(context.Background(), invoice.ID, UpdateInput{
		Paid:    decimal.RequireFromString("40"),
		DueDate: invoice.DueDate,
	})
	require.NoError(t, err)
	require.Equal(t, StatusPartiallyPaid, updated.Status)
	require.Nil(t, updated.PaymentDate)

	updated, err = svc.Update(context.Background(), invoice.ID, UpdateInput{
		Paid:    decimal.RequireFromString("100"),
		DueDate: invoice.DueDate,
	})
	require.NoError(t, err)
	require.Equal(t, StatusPaid, updated.Status)
	require.NotNil(t, updated.PaymentDate)
}

func TestRefreshOverdueFlipsPastDueInvoices(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	repo := newMemoryInvoiceRepo()
	svc := newTestService(repo, created)

	invoice, err := svc.Create(context.Background(), clientInvoiceInput(), 7)
	require.NoError(t, err)
	require.Equal(t, StatusUnpaid, invoice.Status)

	// Time passes beyond the due date.
	svc.now = func() time.Time { return time.Date(2026, 5, 15, 0, 0, 0, 0, time.UTC) }
	updated, err := svc.RefreshOverdue(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, updated)

	got, err := svc.Get(context.Background(), invoice.ID)
	require.NoError(t, err)
	require.Equal(t, StatusOverdue, got.Status)

	// A second pass finds nothing to do.
	updated, err = svc.RefreshOverdue(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0, updated)
}
