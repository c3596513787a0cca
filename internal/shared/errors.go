package shared

import "errors"

// Error taxonomy shared across modules. Handlers map these onto HTTP
// problem responses with a stable machine-checkable kind.
var (
	// ErrValidation indicates malformed or missing required input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound indicates a referenced record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a uniqueness collision (order number, invoice number).
	ErrConflict = errors.New("conflict")
	// ErrTransport indicates the outbound mail transport rejected or timed out.
	ErrTransport = errors.New("transport failed")
)

// Kind returns the stable error kind for a taxonomy error, or "internal".
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrTransport):
		return "transport"
	default:
		return "internal"
	}
}
