// Package storefront holds the customer-facing JSON API handlers: catalog
// browsing, the cart, the checkout flow, orders, and the wishlist.
package storefront

import (
	"encoding/json"
	"net/http"

	"github.com/greenseam/storefront/internal/domain"
	"github.com/greenseam/storefront/internal/middleware"
)

// respondJSON writes a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// respondError maps a domain error to an HTTP status and writes the
// structured error body. Validation errors carry their field map and get
// a 422.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.ErrorCode(err)
	message := domain.ErrorMessage(err)
	status := errorCodeToHTTPStatus(code)

	body := map[string]any{
		"code":    code,
		"message": message,
	}
	if fields := domain.GetValidationFields(err); len(fields) > 0 {
		status = http.StatusUnprocessableEntity
		body["fields"] = fields
	}

	logger := middleware.GetLogger(r.Context())
	attrs := []any{
		"error", err.Error(),
		"code", code,
		"status", status,
	}
	if status >= 500 {
		logger.Error("request failed", attrs...)
	} else {
		logger.Info("request rejected", attrs...)
	}

	respondJSON(w, status, map[string]any{"error": body})
}

// respondFieldErrors writes a 422 with a per-field error map, the shape
// checkout forms render inline.
func respondFieldErrors(w http.ResponseWriter, fields map[string]string) {
	respondJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"error": map[string]any{
			"code":    domain.EINVALID,
			"message": "Please correct the highlighted fields",
			"fields":  fields,
		},
	})
}

// decodeJSON reads the request body into dst, limited to 1 MiB.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return domain.Invalid("http.decode", "Invalid request body")
	}
	return nil
}

func errorCodeToHTTPStatus(code string) int {
	switch code {
	case domain.EINVALID:
		return http.StatusBadRequest
	case domain.EUNAUTHORIZED:
		return http.StatusUnauthorized
	case domain.EPAYMENT:
		return http.StatusPaymentRequired
	case domain.EFORBIDDEN:
		return http.StatusForbidden
	case domain.ENOTFOUND:
		return http.StatusNotFound
	case domain.ECONFLICT:
		return http.StatusConflict
	case domain.EINTERNAL:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
