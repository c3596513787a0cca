package orders

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NumberWidth is the minimum digit count of an order number.
const NumberWidth = 6

// FormatNumber renders a sequence value as a zero-padded order number.
// Values beyond six digits widen the field; the number is never truncated.
func FormatNumber(value int64) string {
	return fmt.Sprintf("%0*d", NumberWidth, value)
}

// Sequence allocates globally unique, strictly increasing order numbers.
type Sequence interface {
	Next(ctx context.Context) (string, error)
}

const counterName = "purchase_orders"

// PGSequence allocates numbers from a single-row atomic counter. The
// increment happens inside one statement, so concurrent creators can never
// observe the same value.
type PGSequence struct {
	pool *pgxpool.Pool
}

// NewPGSequence constructs the Postgres-backed allocator.
func NewPGSequence(pool *pgxpool.Pool) *PGSequence {
	return &PGSequence{pool: pool}
}

// Next reserves and returns the next order number.
func (s *PGSequence) Next(ctx context.Context) (string, error) {
	const query = `
		INSERT INTO order_counters (name, value) VALUES ($1, 1)
		ON CONFLICT (name) DO UPDATE SET value = order_counters.value + 1
		RETURNING value`
	var value int64
	if err := s.pool.QueryRow(ctx, query, counterName).Scan(&value); err != nil {
		return "", fmt.Errorf("orders: next number: %w", err)
	}
	return FormatNumber(value), nil
}

// Sync advances the counter to at least the highest persisted order number.
// Run once at startup so data written before the counter existed keeps the
// monotonicity invariant.
func (s *PGSequence) Sync(ctx context.Context) error {
	const query = `
		INSERT INTO order_counters (name, value)
		SELECT $1, COALESCE(MAX(number::bigint), 0) FROM purchase_orders
		ON CONFLICT (name) DO UPDATE
		SET value = GREATEST(order_counters.value, EXCLUDED.value)`
	if _, err := s.pool.Exec(ctx, query, counterName); err != nil {
		return fmt.Errorf("orders: sync counter: %w", err)
	}
	return nil
}
