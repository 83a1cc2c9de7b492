package web

import (
	"bytes"
	"encoding/csv"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"purchase-ledger/internal/app"
	"purchase-ledger/internal/export"
)

// apiGetVoucher handles GET /api/vouchers/{id}.
func (h *Handler) apiGetVoucher(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetVoucher(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// apiReverseVoucher handles POST /api/vouchers/{id}/reverse.
// The body is optional: {"date": "YYYY-MM-DD"}.
func (h *Handler) apiReverseVoucher(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date string `json:"date"`
	}
	if r.ContentLength != 0 {
		if !decodeJSON(w, r, &req) {
			return
		}
	}
	result, err := h.svc.ReverseVoucher(r.Context(), app.ReverseVoucherRequest{
		VoucherID:      chi.URLParam(r, "id"),
		Date:           req.Date,
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.logger.InfoContext(r.Context(), "voucher reversed", append([]any{
		slog.String("voucher_id", chi.URLParam(r, "id")),
		slog.String("reversal_id", result.VoucherID),
		slog.String("request_id", requestIDFromContext(r.Context())),
	}, postedBy(r.Context())...)...)
	writeJSONStatus(w, http.StatusCreated, result)
}

// apiTrialBalance handles GET /api/reports/trial-balance.
// format=csv streams CSV and format=xlsx returns a workbook instead of JSON.
func (h *Handler) apiTrialBalance(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetTrialBalance(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	switch r.URL.Query().Get("format") {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="trial-balance.csv"`)
		h.writeTrialBalanceCSV(r, w, result)
	case "xlsx":
		var buf bytes.Buffer
		if err := export.WriteTrialBalanceXLSX(&buf, result); err != nil {
			h.writeServiceError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="trial-balance.xlsx"`)
		_, _ = w.Write(buf.Bytes())
	default:
		writeJSON(w, result)
	}
}

func (h *Handler) writeTrialBalanceCSV(r *http.Request, w io.Writer, tb *app.TrialBalanceResult) {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"Account", "Debit", "Credit", "Balance"})
	for _, a := range tb.Accounts {
		_ = cw.Write([]string{
			csvSafe(a.Code),
			a.Debit.StringFixed(2),
			a.Credit.StringFixed(2),
			a.Balance.StringFixed(2),
		})
	}
	_ = cw.Write([]string{"TOTAL", tb.TotalDebit.StringFixed(2), tb.TotalCredit.StringFixed(2), ""})
	cw.Flush()
	if err := cw.Error(); err != nil {
		h.logger.WarnContext(r.Context(), "trial balance csv write failed", "error", err)
	}
}

// apiPayables handles GET /api/reports/payables.
func (h *Handler) apiPayables(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetPayables(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, result)
}

// csvSafe prefixes values that a spreadsheet would interpret as a formula.
func csvSafe(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}
