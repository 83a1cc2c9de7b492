package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"purchase-ledger/internal/app"
)

// Options configures the HTTP handler.
type Options struct {
	// AllowedOrigins lists the origins CORS headers are sent for.
	AllowedOrigins []string
	// JWTSecret enables bearer/cookie authentication on /api routes when set.
	JWTSecret string
	// RateLimitPerMinute caps requests per client IP. Zero disables the limit.
	RateLimitPerMinute int
	// Production turns on the HTTPS redirect.
	Production bool
	Logger     *slog.Logger
}

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc       app.ApplicationService
	router    chi.Router
	jwtSecret string
	logger    *slog.Logger
}

const maxBodyBytes = 1 << 20 // 1 MB

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		svc:       svc,
		jwtSecret: opts.JWTSecret,
		logger:    logger,
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recoverer(logger))
	r.Use(CORS(opts.AllowedOrigins))
	r.Use(SecureHeaders(opts.Production, logger))
	if opts.RateLimitPerMinute > 0 {
		r.Use(httprate.LimitByIP(opts.RateLimitPerMinute, time.Minute))
	}

	// ── Health (public) ───────────────────────────────────────────────────────
	r.Get("/api/health", h.health)

	r.Group(func(r chi.Router) {
		if h.jwtSecret != "" {
			r.Use(h.RequireAuth)
		}
		r.Use(RequestBodyLimit(maxBodyBytes))

		// ── Original purchases ───────────────────────────────────────────────
		r.Post("/api/purchases/original/finalize", h.apiFinalizePurchase)
		r.Post("/api/purchases/original", h.apiSavePurchase)
		r.Get("/api/purchases/original", h.apiListPurchases)
		r.Get("/api/master-data", h.apiMasterData)
		r.Get("/api/schema/purchase-draft", h.apiDraftSchema)

		// ── Journal ──────────────────────────────────────────────────────────
		r.Get("/api/vouchers/{id}", h.apiGetVoucher)
		r.Post("/api/vouchers/{id}/reverse", h.apiReverseVoucher)
		r.Get("/api/reports/trial-balance", h.apiTrialBalance)
		r.Get("/api/reports/payables", h.apiPayables)
	})

	h.router = r
	return r
}

// health reports liveness.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
