package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/lectorncf/lector-ncf/internal/entity"
)

// Enqueuer accepts inbound messages for background processing.
type Enqueuer interface {
	Enqueue(ctx context.Context, msg entity.InboundMessage) error
}

// Sender is the small outbound surface the webhook handlers use for replies
// that skip the processing queue.
type Sender interface {
	SendText(ctx context.Context, to, body string) error
}

// HealthService probes a backing dependency.
type HealthService interface {
	Probe(ctx context.Context) error
}

// Exporter produces export documents for a date window.
type Exporter interface {
	ExportXLSX(ctx context.Context, from, to *time.Time) ([]byte, error)
	ExportCSV(ctx context.Context, from, to *time.Time) ([]byte, error)
	ExportJSON(ctx context.Context, from, to *time.Time) ([]byte, error)
}

// RouterDependencies collects handler dependencies.
type RouterDependencies struct {
	Queue  Enqueuer
	Sender Sender
	Export Exporter
	Health HealthService
}

// NewRouter wires the HTTP routes exposed by the service.
func NewRouter(logger *slog.Logger, deps RouterDependencies) http.Handler {
	mux := http.NewServeMux()
	h := &handlers{logger: logger, deps: deps}

	mux.HandleFunc("/", h.handleRoot)
	mux.HandleFunc("/healthz", h.handleHealth)
	mux.HandleFunc("/webhook/whatsapp", h.handleTwilioWebhook)
	mux.HandleFunc("/webhook/greenapi", h.handleGreenAPIWebhook)
	mux.HandleFunc("/exports/invoices.xlsx", h.handleExport("xlsx"))
	mux.HandleFunc("/exports/invoices.csv", h.handleExport("csv"))
	mux.HandleFunc("/exports/invoices.json", h.handleExport("json"))

	return loggingMiddleware(logger, mux)
}

type handlers struct {
	logger *slog.Logger
	deps   RouterDependencies
}

func (h *handlers) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"status":  "running",
		"service": "LECTOR-NCF",
		"endpoints": map[string]string{
			"webhook_twilio":   "/webhook/whatsapp",
			"webhook_greenapi": "/webhook/greenapi",
			"exports":          "/exports/invoices.xlsx",
		},
	})
}

func (h *handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	payload := map[string]any{"status": "ok"}
	if h.deps.Health != nil {
		if err := h.deps.Health.Probe(ctx); err != nil {
			h.logger.Error("health probe failed", "error", err)
			status = http.StatusServiceUnavailable
			payload["status"] = "degraded"
			payload["error"] = err.Error()
		}
	}
	respondJSON(w, status, payload)
}

func loggingMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}

type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
