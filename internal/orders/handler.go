package orders

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

// Handler serves purchase order endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds the handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers order routes. Preview and send are mounted on the
// same subtree by the dispatch handler.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.show)
}

// OrderForm is the wire shape of a draft purchase order.
type OrderForm struct {
	SupplierID int64      `json:"supplier_id" validate:"required,gt=0"`
	OrderDate  string     `json:"order_date"`
	Status     string     `json:"status"`
	Lines      []LineForm `json:"lines" validate:"required,min=1,dive"`
}

// LineForm is the wire shape of one line item.
type LineForm struct {
	ProductID int64  `json:"product_id" validate:"required,gt=0"`
	Qty       int64  `json:"qty" validate:"required,gte=1"`
	UnitPrice string `json:"unit_price" validate:"required"`
}

// Input converts the form into service input.
func (f OrderForm) Input() (CreateInput, error) {
	input := CreateInput{SupplierID: f.SupplierID, Status: Status(f.Status)}
	if f.OrderDate != "" {
		date, err := time.Parse("2006-01-02", f.OrderDate)
		if err != nil {
			return CreateInput{}, err
		}
		input.OrderDate = date
	}
	for _, line := range f.Lines {
		price, err := decimal.NewFromString(line.UnitPrice)
		if err != nil {
			return CreateInput{}, err
		}
		input.Lines = append(input.Lines, LineInput{ProductID: line.ProductID, Qty: line.Qty, UnitPrice: price})
	}
	return input, nil
}

// DecodeOrderForm parses and validates an order payload. Shared with the
// dispatch preview endpoint.
func (h *Handler) DecodeOrderForm(w http.ResponseWriter, r *http.Request) (CreateInput, bool) {
	var form OrderForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "validation", "invalid JSON body")
		return CreateInput{}, false
	}
	if err := h.validate.Struct(form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "validation", err.Error())
		return CreateInput{}, false
	}
	input, err := form.Input()
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "validation", err.Error())
		return CreateInput{}, false
	}
	return input, true
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	input, ok := h.DecodeOrderForm(w, r)
	if !ok {
		return
	}
	principal, _ := shared.PrincipalFromContext(r.Context())
	resolved, err := h.service.Create(r.Context(), input, principal.ID)
	if err != nil {
		h.logger.Error("create order", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"order_number": resolved.Order.Number,
		"order":        resolved.Order,
		"supplier":     resolved.Supplier,
		"lines":        resolved.Lines,
		"total":        resolved.Subtotal,
	})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	order, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
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
	items, total, err := h.service.List(r.Context(), limit, (page-1)*limit)
	if err != nil {
		h.logger.Error("list orders", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":      items,
		"pagination": shared.NewPagination(page, limit, total),
	})
}
