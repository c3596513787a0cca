package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stockdesk/stockdesk/internal/shared"
)

// allocateAttempts bounds the allocation-and-insert retry loop. Conflicts
// are only possible when foreign writers insert numbers outside the counter,
// so a handful of attempts is plenty.
const allocateAttempts = 3

// Service orchestrates purchase order creation and lookups.
type Service struct {
	logger   *slog.Logger
	repo     Repository
	sequence Sequence
	resolver *Resolver
}

// NewService constructs the orders service.
func NewService(logger *slog.Logger, repo Repository, sequence Sequence, resolver *Resolver) *Service {
	return &Service{logger: logger, repo: repo, sequence: sequence, resolver: resolver}
}

// LineInput describes one submitted line item.
type LineInput struct {
	ProductID int64
	Qty       int64
	UnitPrice decimal.Decimal
}

// CreateInput describes a draft purchase order.
type CreateInput struct {
	SupplierID int64
	OrderDate  time.Time
	Status     Status
	Lines      []LineInput
}

// Order converts the input into a domain order without a number.
func (in CreateInput) Order() (PurchaseOrder, error) {
	if in.SupplierID <= 0 {
		return PurchaseOrder{}, fmt.Errorf("orders: supplier reference required: %w", shared.ErrValidation)
	}
	if len(in.Lines) == 0 {
		return PurchaseOrder{}, fmt.Errorf("orders: at least one line item required: %w", shared.ErrValidation)
	}
	status := in.Status
	if status == "" {
		status = StatusDraft
	}
	if !status.Valid() {
		return PurchaseOrder{}, fmt.Errorf("orders: unknown status %q: %w", in.Status, shared.ErrValidation)
	}
	order := PurchaseOrder{
		SupplierID: in.SupplierID,
		Status:     status,
		OrderDate:  in.OrderDate,
		Lines:      make([]LineItem, 0, len(in.Lines)),
	}
	if order.OrderDate.IsZero() {
		order.OrderDate = time.Now()
	}
	for _, line := range in.Lines {
		if line.ProductID <= 0 {
			return PurchaseOrder{}, fmt.Errorf("orders: line product reference required: %w", shared.ErrValidation)
		}
		if line.Qty < 1 {
			return PurchaseOrder{}, fmt.Errorf("orders: line quantity must be at least 1: %w", shared.ErrValidation)
		}
		if line.UnitPrice.IsNegative() {
			return PurchaseOrder{}, fmt.Errorf("orders: line unit price must not be negative: %w", shared.ErrValidation)
		}
		order.Lines = append(order.Lines, LineItem{ProductID: line.ProductID, Qty: line.Qty, UnitPrice: line.UnitPrice})
	}
	return order, nil
}

// Create validates and resolves the draft, then allocates a number and
// persists the order. References are resolved before allocation so a bad
// request cannot consume a number. On a number collision the allocation and
// insert are retried, never the whole request.
func (s *Service) Create(ctx context.Context, input CreateInput, createdBy int64) (ResolvedOrder, error) {
	order, err := input.Order()
	if err != nil {
		return ResolvedOrder{}, err
	}
	order.CreatedBy = createdBy

	resolved, err := s.resolver.Resolve(ctx, order)
	if err != nil {
		return ResolvedOrder{}, err
	}

	var created PurchaseOrder
	for attempt := 1; ; attempt++ {
		number, err := s.sequence.Next(ctx)
		if err != nil {
			return ResolvedOrder{}, err
		}
		order.Number = number

		created, err = s.repo.Create(ctx, order)
		if err == nil {
			break
		}
		if !errors.Is(err, shared.ErrConflict) || attempt >= allocateAttempts {
			return ResolvedOrder{}, err
		}
		if s.logger != nil {
			s.logger.Warn("order number collision, retrying allocation",
				slog.String("number", number), slog.Int("attempt", attempt))
		}
	}

	resolved.Order = created
	return resolved, nil
}

// Get loads one order with its lines.
func (s *Service) Get(ctx context.Context, id int64) (PurchaseOrder, error) {
	if id <= 0 {
		return PurchaseOrder{}, fmt.Errorf("orders: invalid id: %w", shared.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

// List returns a page of orders, newest number first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]PurchaseOrder, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}

// Resolve expands references on an order, for rendering.
func (s *Service) Resolve(ctx context.Context, order PurchaseOrder) (ResolvedOrder, error) {
	return s.resolver.Resolve(ctx, order)
}
