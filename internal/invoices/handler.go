package invoices

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/stockdesk/stockdesk/internal/platform/httpx"
	"github.com/stockdesk/stockdesk/internal/shared"
)

// Handler serves invoice endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds the handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers invoice routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.show)
	r.Put("/{id}", h.update)
}

// invoiceForm is the wire shape of an invoice. PaymentStatus and
// PaymentDate are decoded so clients sending them get no error, but they
// are ignored: both values are always server-derived.
type invoiceForm struct {
	Number     string `json:"number" validate:"required"`
	Type       string `json:"type" validate:"required,oneof=CLIENT SUPPLIER"`
	OrderID    int64  `json:"order_id"`
	ClientID   int64  `json:"client_id"`
	SupplierID int64  `json:"supplier_id"`
	Total      string `json:"total" validate:"required"`
	Paid       string `json:"paid"`
	DueDate    string `json:"due_date" validate:"required"`

	PaymentStatus string `json:"payment_status"`
	PaymentDate   string `json:"payment_date"`
}

type invoiceUpdateForm struct {
	Paid    string `json:"paid" validate:"required"`
	DueDate string `json:"due_date" validate:"required"`

	PaymentStatus string `json:"payment_status"`
	PaymentDate   string `json:"payment_date"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var form invoiceForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "validation", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "validation", err.Error())
		return
	}
	total, err := decimal.NewFromString(form.Total)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "validation", "total must be a decimal string")
		return
	}
	paid := decimal.Zero
	if form.Paid != "" {
		if paid, err = decimal.NewFromString(form.Paid); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "validation", "paid must be a decimal string")
			return
		}
	}
	dueDate, err := time.Parse("2006-01-02", form.DueDate)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "validation", "due_date must be YYYY-MM-DD")
		return
	}

	principal, _ := shared.PrincipalFromContext(r.Context())
	invoice, err := h.service.Create(r.Context(), CreateInput{
		Number:     form.Number,
		Type:       Type(form.Type),
		OrderID:    form.OrderID,
		ClientID:   form.ClientID,
		SupplierID: form.SupplierID,
		Total:      total,
		Paid:       paid,
		DueDate:    dueDate,
	}, principal.ID)
	if err != nil {
		h.logger.Error("create invoice", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, invoice)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	var form invoiceUpdateForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "validation", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "validation", err.Error())
		return
	}
	paid, err := decimal.NewFromString(form.Paid)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "validation", "paid must be a decimal string")
		return
	}
	dueDate, err := time.Parse("2006-01-02", form.DueDate)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "validation", "due_date must be YYYY-MM-DD")
		return
	}

	invoice, err := h.service.Update(r.Context(), id, UpdateInput{Paid: paid, DueDate: dueDate})
	if err != nil {
		h.logger.Error("update invoice", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, invoice)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	invoice, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, invoice)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = 20
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}
	items, total, err := h.service.List(r.Context(), Type(r.URL.Query().Get("type")), limit, (page-1)*limit)
	if err != nil {
		h.logger.Error("list invoices", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":      items,
		"pagination": shared.NewPagination(page, limit, total),
	})
}
