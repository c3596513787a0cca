package dispatch

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/stockdesk/stockdesk/internal/orders"
	"github.com/stockdesk/stockdesk/internal/platform/httpx"
	"github.com/stockdesk/stockdesk/internal/shared"
)

// Handler serves preview and send endpoints. It shares the purchase order
// subtree with the orders handler.
type Handler struct {
	logger   *slog.Logger
	pipeline *Pipeline
	decoder  *orders.Handler
}

// NewHandler builds the handler. decoder supplies the shared order form
// decoding used by the draft preview.
func NewHandler(logger *slog.Logger, pipeline *Pipeline, decoder *orders.Handler) *Handler {
	return &Handler{logger: logger, pipeline: pipeline, decoder: decoder}
}

// MountRoutes registers dispatch routes on the purchase order subtree.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/preview", h.previewDraft)
	r.Get("/{id}/preview", h.previewOrder)
	r.Post("/{id}/send", h.send)
}

func (h *Handler) previewDraft(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decoder.DecodeOrderForm(w, r)
	if !ok {
		return
	}
	principal, _ := shared.PrincipalFromContext(r.Context())
	pdf, err := h.pipeline.PreviewDraft(r.Context(), input, principal)
	if err != nil {
		h.logger.Error("preview draft", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.PDF(w, "purchase_order_preview.pdf", pdf)
}

func (h *Handler) previewOrder(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	principal, _ := shared.PrincipalFromContext(r.Context())
	pdf, number, err := h.pipeline.PreviewOrder(r.Context(), id, principal)
	if err != nil {
		h.logger.Error("preview order", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.PDF(w, fmt.Sprintf("purchase_order_%s.pdf", number), pdf)
}

func (h *Handler) send(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	principal, _ := shared.PrincipalFromContext(r.Context())
	outcome, err := h.pipeline.Send(r.Context(), id, principal)
	if err != nil {
		h.logger.Error("send order", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"message":  fmt.Sprintf("purchase order %s sent to %s", outcome.Number, outcome.Recipient),
		"delivery": outcome,
	})
}
