package orders

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

// Repository persists purchase orders.
type Repository interface {
	Create(ctx context.Context, order PurchaseOrder) (PurchaseOrder, error)
	Get(ctx context.Context, id int64) (PurchaseOrder, error)
	List(ctx context.Context, limit, offset int) ([]PurchaseOrder, int, error)
	MaxNumber(ctx context.Context) (string, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the pgx-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// Create inserts the order header and its lines in one transaction. A
// collision on the unique number index surfaces as ErrConflict so the
// service can retry allocation.
func (r *repository) Create(ctx context.Context, order PurchaseOrder) (PurchaseOrder, error) {
	now := time.Now()
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO purchase_orders (number, supplier_id, status, order_date, created_by, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
			order.Number, order.SupplierID, order.Status, order.OrderDate, order.CreatedBy, now, now).Scan(&order.ID)
		if err != nil {
			if db.IsUniqueViolation(err) {
				return fmt.Errorf("orders: number %s already taken: %w", order.Number, shared.ErrConflict)
			}
			return err
		}
		for i, line := range order.Lines {
			if _, err := tx.Exec(ctx,
				`INSERT INTO purchase_order_lines (order_id, position, product_id, qty, unit_price)
				 VALUES ($1, $2, $3, $4, $5)`,
				order.ID, i, line.ProductID, line.Qty, line.UnitPrice); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return PurchaseOrder{}, err
	}
	order.CreatedAt = now
	order.UpdatedAt = now
	return order, nil
}

func (r *repository) Get(ctx context.Context, id int64) (PurchaseOrder, error) {
	var order PurchaseOrder
	err := r.pool.QueryRow(ctx,
		`SELECT id, number, supplier_id, status, order_date, created_by, created_at, updated_at
		 FROM purchase_orders WHERE id = $1`, id).
		Scan(&order.ID, &order.Number, &order.SupplierID, &order.Status, &order.OrderDate, &order.CreatedBy, &order.CreatedAt, &order.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return PurchaseOrder{}, fmt.Errorf("orders: id %d: %w", id, shared.ErrNotFound)
	}
	if err != nil {
		return PurchaseOrder{}, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT product_id, qty, unit_price FROM purchase_order_lines WHERE order_id = $1 ORDER BY position`, id)
	if err != nil {
		return PurchaseOrder{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var line LineItem
		if err := rows.Scan(&line.ProductID, &line.Qty, &line.UnitPrice); err != nil {
			return PurchaseOrder{}, err
		}
		order.Lines = append(order.Lines, line)
	}
	return order, rows.Err()
}

func (r *repository) List(ctx context.Context, limit, offset int) ([]PurchaseOrder, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM purchase_orders`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, number, supplier_id, status, order_date, created_by, created_at, updated_at
		 FROM purchase_orders ORDER BY number DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []PurchaseOrder
	for rows.Next() {
		var order PurchaseOrder
		if err := rows.Scan(&order.ID, &order.Number, &order.SupplierID, &order.Status, &order.OrderDate, &order.CreatedBy, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, order)
	}
	return items, total, rows.Err()
}

// MaxNumber returns the numerically highest allocated order number, or the
// empty string when no order exists. Kept for reconciliation; allocation
// itself goes through the atomic counter.
func (r *repository) MaxNumber(ctx context.Context) (string, error) {
	var number *string
	if err := r.pool.QueryRow(ctx, `SELECT MAX(number) FROM purchase_orders`).Scan(&number); err != nil {
		return "", err
	}
	if number == nil {
		return "", nil
	}
	return *number, nil
}
