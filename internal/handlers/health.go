package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// Readiness states reported by /ready.
const (
	StatusReady    = "ready"
	StatusDegraded = "degraded"
	StatusNotReady = "not ready"
)

// checkTimeout bounds each dependency check.
const checkTimeout = 2 * time.Second

// CheckFunc reports whether a dependency is reachable.
type CheckFunc func(ctx context.Context) error

// HealthResponse is the /health body.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// ReadyResponse is the /ready body. Checks maps each dependency to "ok" or "fail".
type ReadyResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

type dependency struct {
	name     string
	check    CheckFunc
	required bool
}

// HealthHandler serves liveness and readiness. A failing required
// dependency takes the service out of rotation; a failing optional one
// only marks it degraded.
type HealthHandler struct {
	mu       sync.RWMutex
	deps     []dependency
	draining bool
}

// NewHealthHandler returns a HealthHandler with no dependencies.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Require registers a dependency the service cannot serve games without.
func (h *HealthHandler) Require(name string, check CheckFunc) {
	h.register(dependency{name: name, check: check, required: true})
}

// Observe registers a dependency whose failure is reported but tolerated.
func (h *HealthHandler) Observe(name string, check CheckFunc) {
	h.register(dependency{name: name, check: check})
}

func (h *HealthHandler) register(d dependency) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := range h.deps {
		if h.deps[i].name == d.name {
			h.deps[i] = d
			return
		}
	}
	h.deps = append(h.deps, d)
}

// Drain makes /ready fail from now on. Called when shutdown begins.
func (h *HealthHandler) Drain() {
	h.mu.Lock()
	h.draining = true
	h.mu.Unlock()
}

// Draining reports whether Drain has been called.
func (h *HealthHandler) Draining() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.draining
}

// Health handles GET /health. It only says the process is up.
func (h *HealthHandler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy", Timestamp: timestamp()})
}

// Ready handles GET /ready, running every dependency check in parallel.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	deps := append([]dependency(nil), h.deps...)
	draining := h.draining
	h.mu.RUnlock()

	failed := make([]bool, len(deps))
	var wg sync.WaitGroup
	for i, d := range deps {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
			defer cancel()
			failed[i] = d.check(ctx) != nil
		}()
	}
	wg.Wait()

	resp := ReadyResponse{Status: StatusReady, Timestamp: timestamp()}
	if len(deps) > 0 {
		resp.Checks = make(map[string]string, len(deps))
	}
	for i, d := range deps {
		if !failed[i] {
			resp.Checks[d.name] = "ok"
			continue
		}
		resp.Checks[d.name] = "fail"
		switch {
		case d.required:
			resp.Status = StatusNotReady
		case resp.Status == StatusReady:
			resp.Status = StatusDegraded
		}
	}
	if draining {
		resp.Status = StatusNotReady
	}

	code := http.StatusOK
	if resp.Status == StatusNotReady {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, resp)
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
