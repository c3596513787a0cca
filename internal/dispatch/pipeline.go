// Package dispatch chains resolution, rendering and delivery of purchase
// order documents. Each stage failure is reported with the stage it occurred
// in, so callers can tell a bad reference from a broken mail server.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/stockdesk/stockdesk/internal/mail"
	"github.com/stockdesk/stockdesk/internal/orders"
	"github.com/stockdesk/stockdesk/internal/render"
	"github.com/stockdesk/stockdesk/internal/shared"
)

// Stage names the pipeline step an error came from.
type Stage string

const (
	StageResolve Stage = "resolve"
	StageRender  Stage = "render"
	StageDeliver Stage = "deliver"
)

// StageError annotates a failure with its pipeline stage. Unwrap keeps the
// underlying error kind visible to errors.Is.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("dispatch: %s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Outcome summarises a completed send.
type Outcome struct {
	Ref       uuid.UUID `json:"ref"`
	Number    string    `json:"order_number"`
	Recipient string    `json:"recipient"`
	Filename  string    `json:"filename"`
	SentAt    time.Time `json:"sent_at"`
}

// OrderSource loads and resolves purchase orders.
type OrderSource interface {
	Get(ctx context.Context, id int64) (orders.PurchaseOrder, error)
	Resolve(ctx context.Context, order orders.PurchaseOrder) (orders.ResolvedOrder, error)
}

// IssuerConfig identifies the configured company. When the name is empty the
// authoring user becomes the document issuer.
type IssuerConfig struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// Pipeline wires the stages together. Previews run the first two stages
// only and never touch the transport.
type Pipeline struct {
	logger    *slog.Logger
	source    OrderSource
	renderer  *render.Renderer
	transport mail.Transport
	lock      SendLock
	issuer    IssuerConfig
	now       func() time.Time
}

// NewPipeline constructs the pipeline. lock may be nil when duplicate-send
// suppression is not wanted.
func NewPipeline(logger *slog.Logger, source OrderSource, renderer *render.Renderer, transport mail.Transport, lock SendLock, issuer IssuerConfig) *Pipeline {
	return &Pipeline{
		logger:    logger,
		source:    source,
		renderer:  renderer,
		transport: transport,
		lock:      lock,
		issuer:    issuer,
		now:       time.Now,
	}
}

func (p *Pipeline) issuerFor(principal shared.Principal) render.Issuer {
	if p.issuer.Name != "" {
		return render.Issuer{
			Name:    p.issuer.Name,
			Email:   p.issuer.Email,
			Phone:   p.issuer.Phone,
			Address: p.issuer.Address,
		}
	}
	return render.Issuer{Name: principal.Name, Email: principal.Email, Phone: principal.Phone}
}

// document maps a resolved order onto the renderer's input snapshot.
func document(resolved orders.ResolvedOrder, issuer render.Issuer) render.Document {
	doc := render.Document{
		Number:    resolved.Order.Number,
		OrderDate: resolved.Order.OrderDate,
		Issuer:    issuer,
		Counterparty: render.Party{
			Name:    resolved.Supplier.Name,
			Email:   resolved.Supplier.Email,
			Phone:   resolved.Supplier.Phone,
			Address: resolved.Supplier.Address,
		},
		Lines: make([]render.Line, 0, len(resolved.Lines)),
	}
	for _, line := range resolved.Lines {
		doc.Lines = append(doc.Lines, render.Line{
			Name:        line.Product.Name,
			Description: line.Product.Description,
			Qty:         line.Qty,
			UnitPrice:   line.UnitPrice,
			Total:       line.LineTotal,
		})
	}
	return doc
}

// PreviewDraft resolves and renders an unsaved draft. Nothing is persisted,
// no number is allocated and the transport is never contacted.
func (p *Pipeline) PreviewDraft(ctx context.Context, input orders.CreateInput, principal shared.Principal) ([]byte, error) {
	order, err := input.Order()
	if err != nil {
		return nil, &StageError{Stage: StageResolve, Err: err}
	}
	resolved, err := p.source.Resolve(ctx, order)
	if err != nil {
		return nil, &StageError{Stage: StageResolve, Err: err}
	}
	doc := document(resolved, p.issuerFor(principal))
	doc.Number = "PREVIEW"
	pdf, err := p.renderer.Render(render.KindPurchaseOrder, doc)
	if err != nil {
		return nil, &StageError{Stage: StageRender, Err: err}
	}
	return pdf, nil
}

// PreviewOrder resolves and renders a stored order without sending it.
func (p *Pipeline) PreviewOrder(ctx context.Context, id int64, principal shared.Principal) ([]byte, string, error) {
	order, err := p.source.Get(ctx, id)
	if err != nil {
		return nil, "", &StageError{Stage: StageResolve, Err: err}
	}
	resolved, err := p.source.Resolve(ctx, order)
	if err != nil {
		return nil, "", &StageError{Stage: StageResolve, Err: err}
	}
	pdf, err := p.renderer.Render(render.KindPurchaseOrder, document(resolved, p.issuerFor(principal)))
	if err != nil {
		return nil, "", &StageError{Stage: StageRender, Err: err}
	}
	return pdf, order.Number, nil
}

// Send resolves, renders and emails one stored purchase order to its
// supplier. A failed delivery is reported as a transport error and is never
// retried here; the caller decides whether to try again.
func (p *Pipeline) Send(ctx context.Context, id int64, principal shared.Principal) (Outcome, error) {
	order, err := p.source.Get(ctx, id)
	if err != nil {
		return Outcome{}, &StageError{Stage: StageResolve, Err: err}
	}
	resolved, err := p.source.Resolve(ctx, order)
	if err != nil {
		return Outcome{}, &StageError{Stage: StageResolve, Err: err}
	}
	if resolved.Supplier.Email == "" {
		return Outcome{}, &StageError{Stage: StageResolve,
			Err: fmt.Errorf("dispatch: supplier %d has no email address: %w", order.SupplierID, shared.ErrValidation)}
	}

	issuer := p.issuerFor(principal)
	pdf, err := p.renderer.Render(render.KindPurchaseOrder, document(resolved, issuer))
	if err != nil {
		return Outcome{}, &StageError{Stage: StageRender, Err: err}
	}

	if p.lock != nil {
		acquired, err := p.lock.Acquire(ctx, order.Number)
		if err != nil {
			return Outcome{}, &StageError{Stage: StageDeliver, Err: err}
		}
		if !acquired {
			return Outcome{}, &StageError{Stage: StageDeliver,
				Err: fmt.Errorf("dispatch: order %s is already being sent: %w", order.Number, shared.ErrConflict)}
		}
		defer func() {
			if err := p.lock.Release(context.WithoutCancel(ctx), order.Number); err != nil && p.logger != nil {
				p.logger.Warn("release send lock", slog.String("number", order.Number), slog.Any("error", err))
			}
		}()
	}

	filename := fmt.Sprintf("purchase_order_%s.pdf", order.Number)
	body := mail.BuildHTMLBody(mail.BodyInput{
		RecipientName: resolved.Supplier.Name,
		DocumentTitle: "purchase order",
		Number:        order.Number,
		SenderName:    issuer.Name,
		SenderEmail:   issuer.Email,
		SenderPhone:   issuer.Phone,
	})
	msg := mail.Message{
		To:       resolved.Supplier.Email,
		Subject:  fmt.Sprintf("Purchase Order %s", order.Number),
		HTMLBody: body,
		Attachments: []mail.Attachment{{
			Filename:    filename,
			ContentType: "application/pdf",
			Data:        pdf,
		}},
	}
	if err := p.transport.Send(ctx, msg); err != nil {
		return Outcome{}, &StageError{Stage: StageDeliver, Err: err}
	}

	outcome := Outcome{
		Ref:       uuid.New(),
		Number:    order.Number,
		Recipient: resolved.Supplier.Email,
		Filename:  filename,
		SentAt:    p.now(),
	}
	if p.logger != nil {
		p.logger.Info("purchase order sent",
			slog.String("ref", outcome.Ref.String()),
			slog.String("number", outcome.Number),
			slog.String("recipient", outcome.Recipient))
	}
	return outcome, nil
}
