package httpx

import (
	"errors"
	"net/http"

	"github.com/stockdesk/stockdesk/internal/shared"
)

// RespondError maps taxonomy errors to HTTP problem responses.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", shared.Kind(err), err.Error())
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", shared.Kind(err), err.Error())
	case errors.Is(err, shared.ErrConflict):
		Problem(w, http.StatusConflict, "Conflict", shared.Kind(err), err.Error())
	case errors.Is(err, shared.ErrTransport):
		Problem(w, http.StatusBadGateway, "Delivery Failed", shared.Kind(err), err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "internal", "")
	}
}
