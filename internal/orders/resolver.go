package orders

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/stockdesk/stockdesk/internal/masterdata/products"
	"github.com/stockdesk/stockdesk/internal/masterdata/suppliers"
	"github.com/stockdesk/stockdesk/internal/shared"
)

// SupplierDirectory resolves supplier references.
type SupplierDirectory interface {
	Get(ctx context.Context, id int64) (suppliers.Supplier, error)
}

// ProductCatalog resolves product references.
type ProductCatalog interface {
	Get(ctx context.Context, id int64) (products.Product, error)
}

// ResolvedLine is a line item with its product reference expanded.
type ResolvedLine struct {
	Product   products.Product `json:"product"`
	Qty       int64            `json:"qty"`
	UnitPrice decimal.Decimal  `json:"unit_price"`
	LineTotal decimal.Decimal  `json:"line_total"`
}

// ResolvedOrder is a purchase order with every reference replaced by its
// full record, ready for document rendering.
type ResolvedOrder struct {
	Order    PurchaseOrder      `json:"order"`
	Supplier suppliers.Supplier `json:"supplier"`
	Lines    []ResolvedLine     `json:"lines"`
	Subtotal decimal.Decimal    `json:"subtotal"`
}

// Resolver expands entity references on draft orders.
type Resolver struct {
	suppliers SupplierDirectory
	products  ProductCatalog
}

// NewResolver constructs a Resolver.
func NewResolver(suppliers SupplierDirectory, products ProductCatalog) *Resolver {
	return &Resolver{suppliers: suppliers, products: products}
}

// Resolve fetches the supplier and every referenced product. A missing
// reference is a hard error; a document never renders with a missing party.
// Line order is preserved exactly as submitted.
func (r *Resolver) Resolve(ctx context.Context, order PurchaseOrder) (ResolvedOrder, error) {
	if order.SupplierID <= 0 {
		return ResolvedOrder{}, fmt.Errorf("orders: supplier reference required: %w", shared.ErrValidation)
	}
	if len(order.Lines) == 0 {
		return ResolvedOrder{}, fmt.Errorf("orders: at least one line item required: %w", shared.ErrValidation)
	}

	resolved := ResolvedOrder{Order: order, Lines: make([]ResolvedLine, len(order.Lines))}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	g.Go(func() error {
		supplier, err := r.suppliers.Get(gctx, order.SupplierID)
		if err != nil {
			return fmt.Errorf("orders: supplier %d: %w", order.SupplierID, err)
		}
		resolved.Supplier = supplier
		return nil
	})

	for i, line := range order.Lines {
		g.Go(func() error {
			product, err := r.products.Get(gctx, line.ProductID)
			if err != nil {
				return fmt.Errorf("orders: product %d: %w", line.ProductID, err)
			}
			resolved.Lines[i] = ResolvedLine{
				Product:   product,
				Qty:       line.Qty,
				UnitPrice: line.UnitPrice,
				LineTotal: line.Total(),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return ResolvedOrder{}, err
	}

	subtotal := decimal.Zero
	for _, line := range resolved.Lines {
		subtotal = subtotal.Add(line.LineTotal)
	}
	resolved.Subtotal = subtotal
	return resolved, nil
}
