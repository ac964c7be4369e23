package server

import (
	"context"
	"net/http"
	"time"

	"github.com/shalabh-srivastava/legalsuite/internal/httpjson"
)

const (
	statusReady         = "ready"
	statusNotConfigured = "not configured"
	statusConnected     = "connected"
	statusUnreachable   = "unreachable"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Configurable reports whether an external client has credentials.
type Configurable interface {
	Configured() bool
}

// Health serves the banner and health endpoints.
type Health struct {
	database Pinger
	ai       Configurable
	caseLaw  Configurable
	timeout  time.Duration
	now      func() time.Time
}

func NewHealth(database Pinger, ai, caseLaw Configurable) *Health {
	return &Health{database: database, ai: ai, caseLaw: caseLaw, timeout: 2 * time.Second, now: time.Now}
}

// Root returns the service banner.
func (h *Health) Root(w http.ResponseWriter, _ *http.Request) {
	httpjson.Write(w, http.StatusOK, map[string]string{
		"message": "AI Legal Research Platform API",
		"status":  "active",
	})
}

// Check reports the state of the database and the external services.
func (h *Health) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	database := statusConnected
	if err := h.database.Ping(ctx); err != nil {
		database = statusUnreachable
	}

	httpjson.Write(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": h.now().UTC(),
		"services": map[string]string{
			"database":      database,
			"ai":            readiness(h.ai),
			"indian_kanoon": readiness(h.caseLaw),
		},
	})
}

func readiness(c Configurable) string {
	if c.Configured() {
		return statusReady
	}
	return statusNotConfigured
}
