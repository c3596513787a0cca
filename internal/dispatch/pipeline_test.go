package dispatch

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/stockdesk/stockdesk/internal/mail"
	"github.com/stockdesk/stockdesk/internal/masterdata/products"
	"github.com/stockdesk/stockdesk/internal/masterdata/suppliers"
	"github.com/stockdesk/stockdesk/internal/orders"
	"github.com/stockdesk/stockdesk/internal/render"
	"github.com/stockdesk/stockdesk/internal/shared"
)

type memorySource struct {
	orders   map[int64]orders.PurchaseOrder
	supplier suppliers.Supplier
	products map[int64]products.Product
}

func newMemorySource() *memorySource {
	return &memorySource{
		orders: map[int64]orders.PurchaseOrder{
			1: {
				ID:         1,
				Number:     "000042",
				SupplierID: 5,
				Status:     orders.StatusPending,
				OrderDate:  time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
				Lines: []orders.LineItem{
					{ProductID: 10, Qty: 100, UnitPrice: decimal.RequireFromString("0.35")},
				},
			},
		},
		supplier: suppliers.Supplier{ID: 5, Code: "ACME", Name: "Acme Industrial", Email: "orders@acme.test"},
		products: map[int64]products.Product{
			10: {ID: 10, SKU: "BOLT-M8", Name: "M8 Bolt", UnitPrice: decimal.RequireFromString("0.35")},
		},
	}
}

func (s *memorySource) Get(ctx context.Context, id int64) (orders.PurchaseOrder, error) {
	order, ok := s.orders[id]
	if !ok {
		return orders.PurchaseOrder{}, fmt.Errorf("orders: order %d: %w", id, shared.ErrNotFound)
	}
	return order, nil
}

func (s *memorySource) Resolve(ctx context.Context, order orders.PurchaseOrder) (orders.ResolvedOrder, error) {
	if order.SupplierID != s.supplier.ID {
		return orders.ResolvedOrder{}, fmt.Errorf("orders: supplier %d: %w", order.SupplierID, shared.ErrNotFound)
	}
	resolved := orders.ResolvedOrder{Order: order, Supplier: s.supplier}
	for _, line := range order.Lines {
		product, ok := s.products[line.ProductID]
		if !ok {
			return orders.ResolvedOrder{}, fmt.Errorf("orders: product %d: %w", line.ProductID, shared.ErrNotFound)
		}
		resolved.Lines = append(resolved.Lines, orders.ResolvedLine{
			Product:   product,
			Qty:       line.Qty,
			UnitPrice: line.UnitPrice,
			LineTotal: line.Total(),
		})
		resolved.Subtotal = resolved.Subtotal.Add(line.Total())
	}
	return resolved, nil
}

type stubTransport struct {
	sent []mail.Message
	err  error
}

func (t *stubTransport) Send(ctx context.Context, msg mail.Message) error {
	if t.err != nil {
		return t.err
	}
	t.sent = append(t.sent, msg)
	return nil
}

func testRenderer() *render.Renderer {
	return render.New(render.Options{
		CurrencyPrefix: "$",
		VATPercent:     decimal.RequireFromString("10"),
		Clock: func() time.Time {
			return time.Date(2026, 3, 5, 14, 30, 0, 0, time.UTC)
		},
	})
}

func newTestPipeline(transport mail.Transport, lock SendLock) *Pipeline {
	return NewPipeline(nil, newMemorySource(), testRenderer(), transport, lock, IssuerConfig{
		Name:  "Stockdesk Ltd",
		Email: "office@stockdesk.test",
	})
}

func TestSendDeliversAttachment(t *testing.T) {
	transport := &stubTransport{}
	p := newTestPipeline(transport, nil)

	outcome, err := p.Send(context.Background(), 1, shared.Principal{ID: 7, Name: "Dana"})
	require.NoError(t, err)
	require.Equal(t, "000042", outcome.Number)
	require.Equal(t, "orders@acme.test", outcome.Recipient)
	require.Equal(t, "purchase_order_000042.pdf", outcome.Filename)
	require.NotEqual(t, "", outcome.Ref.String())

	require.Len(t, transport.sent, 1)
	msg := transport.sent[0]
	require.Equal(t, "orders@acme.test", msg.To)
	require.Equal(t, "Purchase Order 000042", msg.Subject)
	require.Len(t, msg.Attachments, 1)
	require.Equal(t, "purchase_order_000042.pdf", msg.Attachments[0].Filename)
	require.Equal(t, "application/pdf", msg.Attachments[0].ContentType)
	require.NotEmpty(t, msg.Attachments[0].Data)
	require.Contains(t, msg.HTMLBody, "Acme Industrial")
	require.Contains(t, msg.HTMLBody, "000042")
}

func TestSendUnknownOrderFailsInResolveStage(t *testing.T) {
	transport := &stubTransport{}
	p := newTestPipeline(transport, nil)

	_, err := p.Send(context.Background(), 99, shared.Principal{ID: 7})
	require.Error(t, err)
	require.ErrorIs(t, err, shared.ErrNotFound)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	require.Equal(t, StageResolve, stageErr.Stage)
	require.Empty(t, transport.sent, "failed resolve must not contact the transport")
}

func TestSendTransportFailureIsDeliverStage(t *testing.T) {
	transport := &stubTransport{err: fmt.Errorf("mail: smtp delivery failed: %w", shared.ErrTransport)}
	p := newTestPipeline(transport, nil)

	_, err := p.Send(context.Background(), 1, shared.Principal{ID: 7})
	require.ErrorIs(t, err, shared.ErrTransport)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	require.Equal(t, StageDeliver, stageErr.Stage)
}

func TestSendDoesNotRetryDelivery(t *testing.T) {
	transport := &stubTransport{err: fmt.Errorf("mail: boom: %w", shared.ErrTransport)}
	p := newTestPipeline(transport, nil)

	_, err := p.Send(context.Background(), 1, shared.Principal{ID: 7})
	require.Error(t, err)
	require.Empty(t, transport.sent)

	// A second explicit call goes through once the transport recovers.
	transport.err = nil
	outcome, err := p.Send(context.Background(), 1, shared.Principal{ID: 7})
	require.NoError(t, err)
	require.Len(t, transport.sent, 1)
	require.Equal(t, "000042", outcome.Number)
}

func TestPreviewNeverContactsTransport(t *testing.T) {
	transport := &stubTransport{}
	p := newTestPipeline(transport, nil)

	pdf, number, err := p.PreviewOrder(context.Background(), 1, shared.Principal{ID: 7})
	require.NoError(t, err)
	require.NotEmpty(t, pdf)
	require.Equal(t, "000042", number)
	require.Empty(t, transport.sent)

	input := orders.CreateInput{
		SupplierID: 5,
		Lines: []orders.LineInput{
			{ProductID: 10, Qty: 3, UnitPrice: decimal.RequireFromString("0.35")},
		},
	}
	draft, err := p.PreviewDraft(context.Background(), input, shared.Principal{ID: 7, Name: "Dana"})
	require.NoError(t, err)
	require.NotEmpty(t, draft)
	require.Empty(t, transport.sent)
}

func TestIssuerFallsBackToPrincipal(t *testing.T) {
	transport := &stubTransport{}
	p := NewPipeline(nil, newMemorySource(), testRenderer(), transport, nil, IssuerConfig{})

	_, err := p.Send(context.Background(), 1, shared.Principal{ID: 7, Name: "Dana Voss", Email: "dana@stockdesk.test"})
	require.NoError(t, err)
	require.Len(t, transport.sent, 1)
	require.Contains(t, transport.sent[0].HTMLBody, "Dana Voss")
}

func TestSendLockSuppressesConcurrentDuplicates(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	lock := NewRedisSendLock(client, time.Minute)

	transport := &stubTransport{}
	p := newTestPipeline(transport, lock)

	// Simulate a concurrent sender holding the lock.
	held, err := lock.Acquire(context.Background(), "000042")
	require.NoError(t, err)
	require.True(t, held)

	_, err = p.Send(context.Background(), 1, shared.Principal{ID: 7})
	require.ErrorIs(t, err, shared.ErrConflict)
	require.Empty(t, transport.sent)

	// Once released the order sends normally, and the lock is released
	// again afterwards.
	require.NoError(t, lock.Release(context.Background(), "000042"))
	_, err = p.Send(context.Background(), 1, shared.Principal{ID: 7})
	require.NoError(t, err)
	require.Len(t, transport.sent, 1)

	held, err = lock.Acquire(context.Background(), "000042")
	require.NoError(t, err)
	require.True(t, held, "pipeline must release the lock after sending")
}
