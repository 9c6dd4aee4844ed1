package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	appscans "github.com/bryanwahyu/automarket-intake/internal/application/scans"
	domain "github.com/bryanwahyu/automarket-intake/internal/domain/scans"
	"github.com/bryanwahyu/automarket-intake/internal/metrics"
	"github.com/bryanwahyu/automarket-intake/internal/middleware"
)

// maxBodyBytes caps the intake body; a VIN is a short JSON string.
const maxBodyBytes = 4 << 10

var errTrailingData = errors.New("trailing data after JSON value")

// Options carries the collaborators the router mounts around the handlers.
type Options struct {
	AllowedOrigins []string
	HealthCheckers map[string]middleware.HealthChecker
	RateLimiter    *middleware.RateLimiter
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	Logger         *zap.Logger
}

type Router struct {
	scansSvc *appscans.Service
	logger   *zap.Logger
}

func NewRouter(scansSvc *appscans.Service, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Router{scansSvc: scansSvc, logger: logger}
	mux := chi.NewRouter()

	mux.Use(middleware.RequestID)
	mux.Use(middleware.Logging(logger))
	if opts.Metrics != nil {
		mux.Use(middleware.Metrics(opts.Metrics))
	}

	mux.Get("/health", middleware.HealthHandler(opts.HealthCheckers))
	mux.Get("/alive", middleware.LivenessHandler)
	if opts.Gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	mux.Route("/api/intake", func(rt chi.Router) {
		rt.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{
				http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
				http.MethodDelete, http.MethodOptions, http.MethodHead,
			},
			AllowedHeaders: []string{"*"},
			ExposedHeaders: []string{middleware.RequestIDHeader},
		}))

		rt.Get("/", r.wrap(r.handleHistory))
		if opts.RateLimiter != nil {
			rt.With(middleware.RateLimit(opts.RateLimiter)).Post("/", r.wrap(r.handleIntake))
		} else {
			rt.Post("/", r.wrap(r.handleIntake))
		}
	})

	return mux
}

// httpError carries a status and a message that is safe to show the caller.
type httpError struct {
	status int
	msg    string
	err    error
}

func (e *httpError) Error() string { return e.msg }
func (e *httpError) Unwrap() error { return e.err }

func badRequest(msg string, err error) error {
	return &httpError{status: http.StatusBadRequest, msg: msg, err: err}
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}

		var he *httpError
		switch {
		case errors.As(err, &he):
			writeJSON(w, he.status, map[string]string{"error": he.msg})
		case errors.Is(err, domain.ErrEmptyVIN):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "vin is required"})
		default:
			// store failures are not detailed to the caller
			r.logger.Error("request failed",
				zap.String("path", req.URL.Path),
				zap.String("request_id", middleware.GetRequestID(req.Context())),
				zap.Error(err))
			msg := "intake failed"
			if req.Method == http.MethodGet {
				msg = "history unavailable"
			}
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": msg})
		}
	}
}

// POST /api/intake
// Body: "1HGCM82633A004352"
func (r *Router) handleIntake(w http.ResponseWriter, req *http.Request) error {
	var vin string
	dec := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxBodyBytes))
	if err := dec.Decode(&vin); err != nil {
		return badRequest("body must be a JSON string containing the VIN", err)
	}
	// exactly one JSON value
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return badRequest("body must be a single JSON string", errTrailingData)
	}
	if vin == "" {
		return badRequest("vin is required", domain.ErrEmptyVIN)
	}

	res, err := r.scansSvc.Intake(req.Context(), vin)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, res)
}

// GET /api/intake?limit=10
func (r *Router) handleHistory(w http.ResponseWriter, req *http.Request) error {
	limit := middleware.ValidateLimit(req.URL.Query().Get("limit"), 0)

	list, err := r.scansSvc.History(req.Context(), limit)
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, list)
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}
