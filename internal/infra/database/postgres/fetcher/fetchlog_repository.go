package fetcher

import (
	"context"
	"fmt"

	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/fetcher"
	"github.com/gmdcjdakdcjd/stockbatch/internal/infra/database/postgres"
)

// FetchLogRepository PostgreSQL 구현
type FetchLogRepository struct {
	pool *postgres.Pool
}

// NewFetchLogRepository 생성자
func NewFetchLogRepository(pool *postgres.Pool) *FetchLogRepository {
	return &FetchLogRepository{pool: pool}
}

// Create 로그 생성 (실행 시작 시)
func (r *FetchLogRepository) Create(ctx context.Context, log *fetcher.FetchLog) (*fetcher.FetchLog, error) {
	query := `
		INSERT INTO fetch_logs (
			job_type, source, target_table, records_fetched, records_inserted,
			codes_processed, codes_failed, status, error_message,
			started_at, finished_at, duration_ms
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query,
		log.JobType,
		log.Source,
		log.TargetTable,
		log.RecordsFetched,
		log.RecordsInserted,
		log.CodesProcessed,
		log.CodesFailed,
		log.Status,
		log.ErrorMessage,
		log.StartedAt,
		log.FinishedAt,
		log.DurationMs,
	).Scan(&log.ID, &log.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("create fetch log: %w", err)
	}

	return log, nil
}

// Update 로그 업데이트 (실행 완료/실패 시)
func (r *FetchLogRepository) Update(ctx context.Context, log *fetcher.FetchLog) error {
	query := `
		UPDATE fetch_logs
		SET records_fetched = $1,
		    records_inserted = $2,
		    codes_processed = $3,
		    codes_failed = $4,
		    status = $5,
		    error_message = $6,
		    finished_at = $7,
		    duration_ms = $8
		WHERE id = $9
	`

	result, err := r.pool.Exec(ctx, query,
		log.RecordsFetched,
		log.RecordsInserted,
		log.CodesProcessed,
		log.CodesFailed,
		log.Status,
		log.ErrorMessage,
		log.FinishedAt,
		log.DurationMs,
		log.ID,
	)

	if err != nil {
		return fmt.Errorf("update fetch log: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: id=%d", fetcher.ErrFetchLogNotFound, log.ID)
	}

	return nil
}

// GetRecent 최근 로그 조회
func (r *FetchLogRepository) GetRecent(ctx context.Context, limit int) ([]*fetcher.FetchLog, error) {
	query := `
		SELECT id, job_type, source, target_table, records_fetched, records_inserted,
		       codes_processed, codes_failed, status, error_message,
		       started_at, finished_at, duration_ms, created_at
		FROM fetch_logs
		ORDER BY started_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("get recent fetch logs: %w", err)
	}
	defer rows.Close()

	var logs []*fetcher.FetchLog
	for rows.Next() {
		var log fetcher.FetchLog
		err := rows.Scan(
			&log.ID,
			&log.JobType,
			&log.Source,
			&log.TargetTable,
			&log.RecordsFetched,
			&log.RecordsInserted,
			&log.CodesProcessed,
			&log.CodesFailed,
			&log.Status,
			&log.ErrorMessage,
			&log.StartedAt,
			&log.FinishedAt,
			&log.DurationMs,
			&log.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan fetch log: %w", err)
		}
		logs = append(logs, &log)
	}

	return logs, rows.Err()
}
