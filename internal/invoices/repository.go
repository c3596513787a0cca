package invoices

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stockdesk/stockdesk/internal/platform/db"
	"github.com/stockdesk/stockdesk/internal/shared"
)

// Repository persists invoices.
type Repository interface {
	Create(ctx context.Context, invoice Invoice) (Invoice, error)
	Get(ctx context.Context, id int64) (Invoice, error)
	List(ctx context.Context, invoiceType Type, limit, offset int) ([]Invoice, int, error)
	Update(ctx context.Context, invoice Invoice) error
	ListOverdueCandidates(ctx context.Context, now time.Time) ([]Invoice, error)
	UpdateDerived(ctx context.Context, id int64, status PaymentStatus, paymentDate *time.Time) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the pgx-backed invoice repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const invoiceColumns = `id, number, type, COALESCE(order_id, 0), COALESCE(client_id, 0), COALESCE(supplier_id, 0),
	total, paid, due_date, payment_date, payment_status, created_by, created_at, updated_at`

func scanInvoice(row pgx.Row) (Invoice, error) {
	var inv Invoice
	err := row.Scan(&inv.ID, &inv.Number, &inv.Type, &inv.OrderID, &inv.ClientID, &inv.SupplierID,
		&inv.Total, &inv.Paid, &inv.DueDate, &inv.PaymentDate, &inv.Status, &inv.CreatedBy, &inv.CreatedAt, &inv.UpdatedAt)
	return inv, err
}

func (r *repository) Create(ctx context.Context, invoice Invoice) (Invoice, error) {
	now := time.Now()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO invoices (number, type, order_id, client_id, supplier_id, total, paid, due_date, payment_date, payment_status, created_by, created_at, updated_at)
		 VALUES ($1, $2, NULLIF($3, 0), NULLIF($4, 0), NULLIF($5, 0), $6, $7, $8, $9, $10, $11, $12, $13) RETURNING id`,
		invoice.Number, invoice.Type, invoice.OrderID, invoice.ClientID, invoice.SupplierID,
		invoice.Total, invoice.Paid, invoice.DueDate, invoice.PaymentDate, invoice.Status, invoice.CreatedBy, now, now).
		Scan(&invoice.ID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Invoice{}, fmt.Errorf("invoices: number %s already exists: %w", invoice.Number, shared.ErrConflict)
		}
		return Invoice{}, err
	}
	invoice.CreatedAt = now
	invoice.UpdatedAt = now
	return invoice, nil
}

func (r *repository) Get(ctx context.Context, id int64) (Invoice, error) {
	inv, err := scanInvoice(r.pool.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Invoice{}, fmt.Errorf("invoices: id %d: %w", id, shared.ErrNotFound)
	}
	return inv, err
}

func (r *repository) List(ctx context.Context, invoiceType Type, limit, offset int) ([]Invoice, int, error) {
	where := ``
	countArgs := []any{}
	if invoiceType != "" {
		where = ` WHERE type = $1`
		countArgs = append(countArgs, invoiceType)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM invoices`+where, countArgs...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args := append(countArgs, limit, offset)
	query := `SELECT ` + invoiceColumns + ` FROM invoices` + where +
		fmt.Sprintf(` ORDER BY due_date ASC LIMIT $%d OFFSET $%d`, len(countArgs)+1, len(countArgs)+2)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, inv)
	}
	return items, total, rows.Err()
}

func (r *repository) Update(ctx context.Context, invoice Invoice) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE invoices SET paid = $1, due_date = $2, payment_date = $3, payment_status = $4, updated_at = $5 WHERE id = $6`,
		invoice.Paid, invoice.DueDate, invoice.PaymentDate, invoice.Status, time.Now(), invoice.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("invoices: id %d: %w", invoice.ID, shared.ErrNotFound)
	}
	return nil
}

// ListOverdueCandidates returns invoices that are past due but not yet
// marked PAID or OVERDUE.
func (r *repository) ListOverdueCandidates(ctx context.Context, now time.Time) ([]Invoice, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE due_date < $1 AND payment_status NOT IN ($2, $3)`,
		now, StatusPaid, StatusOverdue)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, inv)
	}
	return items, rows.Err()
}

func (r *repository) UpdateDerived(ctx context.Context, id int64, status PaymentStatus, paymentDate *time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE invoices SET payment_status = $1, payment_date = $2, updated_at = $3 WHERE id = $4`,
		status, paymentDate, time.Now(), id)
	return err
}
