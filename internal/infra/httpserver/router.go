package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	appanalysis "github.com/bryanwahyu/automaton-poc/internal/application/analysis"
	domai "github.com/bryanwahyu/automaton-poc/internal/domain/ai"
	domain "github.com/bryanwahyu/automaton-poc/internal/domain/analysis"
	"github.com/bryanwahyu/automaton-poc/internal/domain/stagefailures"
	"github.com/bryanwahyu/automaton-poc/internal/middleware"
)

type Router struct {
	svc      *appanalysis.Service
	failures stagefailures.Repository
}

type Options struct {
	APIKeys   []string
	HealthDB  *sql.DB
	RateLimit int // requests per minute per tenant+IP; 0 uses the default
}

func NewRouter(svc *appanalysis.Service, failures stagefailures.Repository, opts Options) http.Handler {
	r := &Router{svc: svc, failures: failures}
	mux := chi.NewRouter()

	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.APIKeyAuth(opts.APIKeys))
	limit := opts.RateLimit
	if limit <= 0 {
		limit = 30
	}
	mux.Use(middleware.RateLimitMiddleware(limit, limit/6+1))

	checkers := map[string]middleware.HealthChecker{}
	if opts.HealthDB != nil {
		checkers["database"] = &middleware.DatabaseHealthChecker{DB: opts.HealthDB}
	}
	mux.Get("/health", middleware.HealthHandler(checkers))
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/v1/{tenant}", func(rt chi.Router) {
		rt.Post("/analyze", r.wrap(r.handleAnalyze))
		rt.Get("/runs/latest", r.wrap(r.handleLatest))
		rt.Get("/runs/{id}", r.wrap(r.handleGet))
		rt.Get("/runs/{id}/failures", r.wrap(r.handleFailures))
		rt.Get("/runs", r.wrap(r.handlePaginate))
		rt.Get("/summary", r.wrap(r.handleSummary))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

type badRequestError struct{ error }

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			var badReq badRequestError
			if errors.As(err, &badReq) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			if errors.Is(err, sql.ErrNoRows) {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			if errors.Is(err, domai.ErrQuotaExceeded) {
				http.Error(w, "ai quota exceeded", http.StatusTooManyRequests)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// POST /v1/{tenant}/analyze
// Body: {"concepts": ["..."], "mode": "single|repeat|batch"}
// The batch runs in the background until done; the response is the queued
// acknowledgement. A dropped client connection must not waste tokens
// mid-pipeline.
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	if err := middleware.ValidateTenantID(tenant); err != nil {
		return badRequestError{err}
	}

	var body struct {
		Concepts []string `json:"concepts"`
		Mode     string   `json:"mode"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequestError{err}
	}
	if err := middleware.ValidateMode(body.Mode); err != nil {
		return badRequestError{err}
	}
	if err := middleware.ValidateConcepts(body.Concepts); err != nil {
		return badRequestError{err}
	}

	cmd := appanalysis.AnalyzeCommand{
		TenantID: tenant,
		Concepts: body.Concepts,
		Mode:     domain.Mode(strings.ToLower(body.Mode)),
	}
	if cmd.Mode == "" {
		cmd.Mode = domain.ModeSingle
	}

	middleware.IncrementBatches()
	middleware.IncrementBatchesRunning()
	go func() {
		defer middleware.DecrementBatchesRunning()

		res, err := r.svc.AnalyzeUntilDone(cmd)
		if err != nil {
			log.Printf("background analyze error for tenant=%s: %v", tenant, err)
			return
		}
		middleware.AddBundles(len(res.Bundles), res.Failed)
		middleware.AddTokens(res.TotalTokens)
		log.Printf("analyze finished: tenant=%s batch=%s concepts=%d failed=%d tokens=%d report=%s",
			tenant, res.BatchID, len(res.Bundles), res.Failed, res.TotalTokens, res.ReportURL)
	}()

	resp := map[string]any{
		"status":   "queued",
		"tenant":   tenant,
		"mode":     cmd.Mode,
		"concepts": len(body.Concepts),
		"message":  "analysis started in background",
		"queuedAt": time.Now(),
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(resp)
}

// GET /v1/{tenant}/runs/latest?limit=20
func (r *Router) handleLatest(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	list, err := r.svc.Latest(req.Context(), tenant, limit)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /v1/{tenant}/runs/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")

	bundle, err := r.svc.Get(req.Context(), tenant, domain.RunID(id))
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(bundle)
}

// GET /v1/{tenant}/runs/{id}/failures
func (r *Router) handleFailures(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	id := chi.URLParam(req, "id")
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	if r.failures == nil {
		w.Header().Set("Content-Type", "application/json")
		return json.NewEncoder(w).Encode([]any{})
	}
	list, err := r.failures.ListByRun(req.Context(), tenant, id, limit)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /v1/{tenant}/runs?page=&page_size=
func (r *Router) handlePaginate(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))

	list, err := r.svc.Paginate(req.Context(), tenant, page, size)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}

// GET /v1/{tenant}/summary?days=7
func (r *Router) handleSummary(w http.ResponseWriter, req *http.Request) error {
	tenant := chi.URLParam(req, "tenant")
	days, _ := strconv.Atoi(req.URL.Query().Get("days"))

	summary, err := r.svc.Summary(req.Context(), tenant, days)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(summary)
}
