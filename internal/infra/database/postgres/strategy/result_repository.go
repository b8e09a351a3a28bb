package strategy

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/strategy"
	"github.com/gmdcjdakdcjd/stockbatch/internal/infra/database/postgres"
)

const resultColumns = `id, strategy_name, signal_date, signal_type, total_data, created_at`

// ResultRepository strategy_result 저장소
type ResultRepository struct {
	pool *postgres.Pool
}

// NewResultRepository 저장소 생성
func NewResultRepository(pool *postgres.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

// Create 실행 요약 저장
func (r *ResultRepository) Create(ctx context.Context, result *strategy.Result) error {
	query := `
		INSERT INTO strategy_result (id, strategy_name, signal_date, signal_type, total_data, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
		RETURNING created_at
	`

	err := r.pool.QueryRow(ctx, query,
		result.ID, result.StrategyName, result.SignalDate, result.SignalType, result.TotalData,
	).Scan(&result.CreatedAt)
	if err != nil {
		return fmt.Errorf("create strategy result: %w", err)
	}

	return nil
}

// GetByID ID 조회
func (r *ResultRepository) GetByID(ctx context.Context, id uuid.UUID) (*strategy.Result, error) {
	query := `SELECT ` + resultColumns + ` FROM strategy_result WHERE id = $1`

	var res strategy.Result
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&res.ID, &res.StrategyName, &res.SignalDate, &res.SignalType, &res.TotalData, &res.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, strategy.ErrResultNotFound
		}
		return nil, fmt.Errorf("get strategy result: %w", err)
	}

	return &res, nil
}

// List 필터 조회 (최신순)
func (r *ResultRepository) List(ctx context.Context, filter strategy.ResultFilter) ([]*strategy.Result, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT ` + resultColumns + `
		FROM strategy_result
		WHERE ($1 = '' OR strategy_name = $1)
		  AND ($2::date IS NULL OR signal_date = $2::date)
		ORDER BY signal_date DESC, created_at DESC
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, filter.StrategyName, filter.SignalDate, limit)
	if err != nil {
		return nil, fmt.Errorf("list strategy results: %w", err)
	}
	defer rows.Close()

	results := make([]*strategy.Result, 0)
	for rows.Next() {
		var res strategy.Result
		if err := rows.Scan(&res.ID, &res.StrategyName, &res.SignalDate, &res.SignalType, &res.TotalData, &res.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan strategy result: %w", err)
		}
		results = append(results, &res)
	}

	return results, rows.Err()
}
