package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"purchase-ledger/internal/core"
	"purchase-ledger/internal/idempotency"
)

type errorResponse struct {
	Error     string            `json:"error"`
	Code      string            `json:"code"`
	RequestID string            `json:"request_id,omitempty"`
	Fields    []core.FieldError `json:"fields,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	writeErrorResponse(w, r, errorResponse{Error: message, Code: code}, status)
}

func writeErrorResponse(w http.ResponseWriter, r *http.Request, resp errorResponse, status int) {
	resp.RequestID = requestIDFromContext(r.Context())
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// writeServiceError maps an application error to its HTTP status and error code.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *core.ValidationError
	switch {
	case errors.As(err, &verr):
		code := "VALIDATION_ERROR"
		switch {
		case errors.Is(err, core.ErrMissingRequiredField):
			code = "MISSING_REQUIRED_FIELD"
		case errors.Is(err, core.ErrInvalidNumber):
			code = "INVALID_NUMBER"
		}
		writeErrorResponse(w, r, errorResponse{Error: err.Error(), Code: code, Fields: verr.Fields}, http.StatusUnprocessableEntity)
	case errors.Is(err, core.ErrDuplicateContainer):
		writeError(w, r, err.Error(), "DUPLICATE_CONTAINER", http.StatusConflict)
	case errors.Is(err, core.ErrDuplicatePurchase):
		writeError(w, r, err.Error(), "DUPLICATE_PURCHASE", http.StatusConflict)
	case errors.Is(err, idempotency.ErrAlreadyProcessed):
		writeError(w, r, err.Error(), "IDEMPOTENCY_REPLAY", http.StatusConflict)
	case errors.Is(err, core.ErrAlreadyReversed):
		writeError(w, r, err.Error(), "ALREADY_REVERSED", http.StatusConflict)
	case errors.Is(err, core.ErrVoucherNotFound):
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
	case errors.Is(err, core.ErrUnbalancedVoucher):
		writeError(w, r, err.Error(), "UNBALANCED_VOUCHER", http.StatusUnprocessableEntity)
	default:
		h.logger.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.String("request_id", requestIDFromContext(r.Context())),
			slog.Any("error", err))
		writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
