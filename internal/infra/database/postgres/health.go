package postgres

import (
	"context"
	"fmt"
	"time"
)

// HealthStatus represents database health status
type HealthStatus struct {
	Status       string    `json:"status"`        // healthy, degraded, unhealthy
	ResponseTime string    `json:"response_time"` // e.g., "5ms"
	Schema       string    `json:"schema"`
	Migrated     bool      `json:"migrated"` // strategy_result 존재 여부
	ActiveConns  int32     `json:"active_conns"`
	IdleConns    int32     `json:"idle_conns"`
	TotalConns   int32     `json:"total_conns"`
	MaxConns     int32     `json:"max_conns"`
	CheckedAt    time.Time `json:"checked_at"`
	Error        string    `json:"error,omitempty"`
}

// Health checks the health of the database connection
func (p *Pool) Health(ctx context.Context) *HealthStatus {
	start := time.Now()

	status := &HealthStatus{
		CheckedAt: start,
		Status:    "healthy",
		Schema:    p.Schema,
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := p.Ping(pingCtx); err != nil {
		status.Status = "unhealthy"
		status.Error = fmt.Sprintf("ping failed: %v", err)
		status.ResponseTime = time.Since(start).String()
		return status
	}

	err := p.QueryRow(pingCtx, `SELECT to_regclass('strategy_result') IS NOT NULL`).Scan(&status.Migrated)
	if err != nil {
		status.Error = fmt.Sprintf("migration check failed: %v", err)
	}

	stats := p.Stat()
	status.ActiveConns = stats.AcquiredConns()
	status.IdleConns = stats.IdleConns()
	status.TotalConns = stats.TotalConns()
	status.MaxConns = stats.MaxConns()
	status.ResponseTime = time.Since(start).String()

	if !status.Migrated || stats.AcquiredConns() >= stats.MaxConns()-2 {
		status.Status = "degraded"
		if status.Error == "" && !status.Migrated {
			status.Error = "schema not migrated"
		} else if status.Error == "" {
			status.Error = "connection pool nearly exhausted"
		}
	}

	return status
}
