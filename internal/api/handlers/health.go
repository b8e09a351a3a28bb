package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gmdcjdakdcjd/stockbatch/internal/api/response"
	"github.com/gmdcjdakdcjd/stockbatch/internal/infra/database/postgres"
)

// HealthChecker DB 상태 조회
type HealthChecker interface {
	Health(ctx context.Context) *postgres.HealthStatus
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	db        HealthChecker
	startTime time.Time
	version   string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db HealthChecker, version string) *HealthHandler {
	return &HealthHandler{
		db:        db,
		startTime: time.Now(),
		version:   version,
	}
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status        string                 `json:"status"`
	Version       string                 `json:"version"`
	UptimeSeconds int64                  `json:"uptime_seconds"`
	Timestamp     time.Time              `json:"timestamp"`
	Database      *postgres.HealthStatus `json:"database"`
}

// Health returns service and database status
// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	db := h.db.Health(r.Context())

	resp := HealthResponse{
		Status:        db.Status,
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Timestamp:     time.Now(),
		Database:      db,
	}

	status := http.StatusOK
	if db.Status == "unhealthy" {
		status = http.StatusServiceUnavailable
	}
	response.JSON(w, status, resp)
}
