package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
)

const slowQueryThreshold = time.Second

type ctxKey string

const (
	queryStartKey ctxKey = "query_start"
	querySQLKey   ctxKey = "query_sql"

	// RequestIDKey request id carried from the API layer
	RequestIDKey ctxKey = "request_id"
)

// QueryLogger implements pgx.QueryTracer for logging database queries
type QueryLogger struct {
	logger zerolog.Logger
}

// NewQueryLogger creates a new query logger
func NewQueryLogger(logger zerolog.Logger) *QueryLogger {
	return &QueryLogger{
		logger: logger,
	}
}

// TraceQueryStart is called at the beginning of Query, QueryRow, and Exec calls
func (ql *QueryLogger) TraceQueryStart(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	ctx = context.WithValue(ctx, querySQLKey, data.SQL)
	return context.WithValue(ctx, queryStartKey, time.Now())
}

// TraceQueryEnd is called at the end of Query, QueryRow, and Exec calls
func (ql *QueryLogger) TraceQueryEnd(ctx context.Context, conn *pgx.Conn, data pgx.TraceQueryEndData) {
	start, ok := ctx.Value(queryStartKey).(time.Time)
	if !ok {
		start = time.Now()
	}

	duration := time.Since(start)

	sql, _ := ctx.Value(querySQLKey).(string)

	requestID, _ := ctx.Value(RequestIDKey).(string)

	event := ql.logger.Debug()
	if requestID != "" {
		event = event.Str("request_id", requestID)
	}

	event = event.
		Str("sql", sql).
		Int64("duration_ms", duration.Milliseconds()).
		Str("command_tag", data.CommandTag.String())

	if data.Err != nil {
		ql.logger.Error().Str("sql", sql).Err(data.Err).Msg("Query failed")
		return
	}

	// 벌크 조회는 느릴 수 있어 1초 기준
	if duration > slowQueryThreshold {
		ql.logger.Warn().
			Str("sql", sql).
			Int64("duration_ms", duration.Milliseconds()).
			Str("command_tag", data.CommandTag.String()).
			Msg("Slow query detected")
		return
	}

	event.Msg("Query executed")
}

// PgxZerologAdapter adapts zerolog.Logger to pgx's Logger interface
type PgxZerologAdapter struct {
	logger zerolog.Logger
}

// NewPgxZerologAdapter creates a new adapter
func NewPgxZerologAdapter(logger zerolog.Logger) *PgxZerologAdapter {
	return &PgxZerologAdapter{logger: logger}
}

// Log implements pgx Logger interface
func (l *PgxZerologAdapter) Log(ctx context.Context, level tracelog.LogLevel, msg string, data map[string]interface{}) {
	var event *zerolog.Event

	switch level {
	case tracelog.LogLevelTrace:
		event = l.logger.Trace()
	case tracelog.LogLevelDebug:
		event = l.logger.Debug()
	case tracelog.LogLevelInfo:
		event = l.logger.Info()
	case tracelog.LogLevelWarn:
		event = l.logger.Warn()
	case tracelog.LogLevelError:
		event = l.logger.Error()
	default:
		event = l.logger.Info()
	}

	// Add all data fields
	for key, value := range data {
		event = event.Interface(key, value)
	}

	event.Msg(msg)
}
