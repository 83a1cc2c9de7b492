package web

import (
	"log/slog"
	"net/http"
	"strings"

	"purchase-ledger/internal/app"
	"purchase-ledger/internal/core"
)

// apiFinalizePurchase handles POST /api/purchases/original/finalize.
func (h *Handler) apiFinalizePurchase(w http.ResponseWriter, r *http.Request) {
	var draft core.PurchaseDraft
	if !decodeJSON(w, r, &draft) {
		return
	}
	result, err := h.svc.FinalizePurchase(r.Context(), draft)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiSavePurchase handles POST /api/purchases/original. The body is the purchase
// returned by finalize. An Idempotency-Key header makes retries safe.
func (h *Handler) apiSavePurchase(w http.ResponseWriter, r *http.Request) {
	var purchase core.OriginalPurchase
	if !decodeJSON(w, r, &purchase) {
		return
	}
	if strings.TrimSpace(purchase.ID) == "" {
		writeError(w, r, "purchase id is required; finalize the draft first", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	result, err := h.svc.SavePurchase(r.Context(), app.SavePurchaseRequest{
		Purchase:       purchase,
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.logger.InfoContext(r.Context(), "purchase posted", append([]any{
		slog.String("purchase_id", result.Posted.Purchase.ID),
		slog.String("voucher_id", result.Posted.VoucherID),
		slog.String("request_id", requestIDFromContext(r.Context())),
	}, postedBy(r.Context())...)...)
	writeJSONStatus(w, http.StatusCreated, result)
}

// apiListPurchases handles GET /api/purchases/original.
func (h *Handler) apiListPurchases(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListPurchases(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if result.Purchases == nil {
		result.Purchases = []core.OriginalPurchase{}
	}
	writeJSON(w, result)
}

// apiMasterData handles GET /api/master-data. The supplier_id, original_type_id
// and division_id query parameters narrow the dependent lists.
func (h *Handler) apiMasterData(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := h.svc.GetOptions(r.Context(), app.OptionsRequest{
		SupplierID:     q.Get("supplier_id"),
		OriginalTypeID: q.Get("original_type_id"),
		DivisionID:     q.Get("division_id"),
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}
