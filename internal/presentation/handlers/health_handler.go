package handlers

import (
	"context"
	"net/http"
	"time"
)

// HealthChecker defines the interface for health checking components
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler handles health check requests. The state store is required
// for readiness; cache and rpc only degrade the reported status.
type HealthHandler struct {
	store HealthChecker
	cache HealthChecker
	rpc   HealthChecker
}

// NewHealthHandler creates a new health handler. Any checker may be nil when
// the component is in-process or disabled.
func NewHealthHandler(store, cache, rpc HealthChecker) *HealthHandler {
	return &HealthHandler{
		store: store,
		cache: cache,
		rpc:   rpc,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  make(map[string]string),
	}

	if h.store != nil {
		if err := h.store.HealthCheck(ctx); err != nil {
			response.Status = "unhealthy"
			response.Services["store"] = "unhealthy: " + err.Error()
		} else {
			response.Services["store"] = "healthy"
		}
	} else {
		response.Services["store"] = "in-memory"
	}

	for name, checker := range map[string]HealthChecker{"cache": h.cache, "rpc": h.rpc} {
		if checker == nil {
			continue
		}
		if err := checker.HealthCheck(ctx); err != nil {
			if response.Status == "healthy" {
				response.Status = "degraded"
			}
			response.Services[name] = "unhealthy: " + err.Error()
		} else {
			response.Services[name] = "healthy"
		}
	}

	status := http.StatusOK
	if response.Status == "unhealthy" {
		status = http.StatusServiceUnavailable
	}

	respondJSON(w, status, response)
}

// Ready handles GET /ready (Kubernetes readiness probe)
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.store != nil {
		if err := h.store.HealthCheck(ctx); err != nil {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Live handles GET /live (Kubernetes liveness probe)
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("alive"))
}
