package strategy

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/strategy"
	"github.com/gmdcjdakdcjd/stockbatch/internal/infra/database/postgres"
)

// SignalStateRepository strategy_signal_state 저장소
type SignalStateRepository struct {
	pool *postgres.Pool
}

// NewSignalStateRepository 저장소 생성
func NewSignalStateRepository(pool *postgres.Pool) *SignalStateRepository {
	return &SignalStateRepository{pool: pool}
}

// ListByStrategy 전략의 종목별 상태 (code → state)
func (r *SignalStateRepository) ListByStrategy(ctx context.Context, strategyName string) (map[string]*strategy.SignalState, error) {
	query := `
		SELECT strategy_name, code, active, evaluated_date, last_signal_date, updated_at
		FROM strategy_signal_state
		WHERE strategy_name = $1
	`

	rows, err := r.pool.Query(ctx, query, strategyName)
	if err != nil {
		return nil, fmt.Errorf("list signal state: %w", err)
	}
	defer rows.Close()

	states := make(map[string]*strategy.SignalState)
	for rows.Next() {
		var s strategy.SignalState
		if err := rows.Scan(&s.StrategyName, &s.Code, &s.Active, &s.EvaluatedDate, &s.LastSignalDate, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan signal state: %w", err)
		}
		states[s.Code] = &s
	}

	return states, rows.Err()
}

// UpsertBatch (strategy_name, code) 기준 저장
// last_signal_date 는 nil 이면 기존 값 유지
func (r *SignalStateRepository) UpsertBatch(ctx context.Context, states []*strategy.SignalState) (int, error) {
	if len(states) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO strategy_signal_state (strategy_name, code, active, evaluated_date, last_signal_date, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (strategy_name, code) DO UPDATE SET
			active = EXCLUDED.active,
			evaluated_date = EXCLUDED.evaluated_date,
			last_signal_date = COALESCE(EXCLUDED.last_signal_date, strategy_signal_state.last_signal_date),
			updated_at = EXCLUDED.updated_at
	`

	batch := &pgx.Batch{}
	for _, s := range states {
		batch.Queue(query, s.StrategyName, s.Code, s.Active, s.EvaluatedDate, s.LastSignalDate)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	count := 0
	for range states {
		if _, err := br.Exec(); err != nil {
			return count, fmt.Errorf("batch upsert signal state: %w", err)
		}
		count++
	}

	return count, nil
}
