package strategy

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/strategy"
	"github.com/gmdcjdakdcjd/stockbatch/internal/infra/database/postgres"
)

// DetailRepository strategy_detail 저장소
type DetailRepository struct {
	pool *postgres.Pool
}

// NewDetailRepository 저장소 생성
func NewDetailRepository(pool *postgres.Pool) *DetailRepository {
	return &DetailRepository{pool: pool}
}

// UpsertBatch (signal_date, code, action) 기준 일괄 저장
// 같은 날 재실행 시 result_id 는 최신 실행으로 교체됨
func (r *DetailRepository) UpsertBatch(ctx context.Context, details []*strategy.Detail) (int, error) {
	if len(details) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO strategy_detail
			(result_id, signal_date, code, name, action, price, prev_close, diff, volume,
			 special_value, metric_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())
		ON CONFLICT (signal_date, code, action) DO UPDATE SET
			result_id = EXCLUDED.result_id,
			name = EXCLUDED.name,
			price = EXCLUDED.price,
			prev_close = EXCLUDED.prev_close,
			diff = EXCLUDED.diff,
			volume = EXCLUDED.volume,
			special_value = EXCLUDED.special_value,
			metric_name = EXCLUDED.metric_name,
			created_at = EXCLUDED.created_at
	`

	batch := &pgx.Batch{}
	for _, d := range details {
		batch.Queue(query,
			d.ResultID, d.SignalDate, d.Code, d.Name, d.Action,
			d.Price, d.PrevClose, d.Diff, d.Volume,
			d.SpecialValue, d.MetricName,
		)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	count := 0
	for range details {
		if _, err := br.Exec(); err != nil {
			return count, fmt.Errorf("batch upsert strategy detail: %w", err)
		}
		count++
	}

	return count, nil
}

// ListByResult 실행별 상세 조회
func (r *DetailRepository) ListByResult(ctx context.Context, resultID uuid.UUID) ([]*strategy.Detail, error) {
	query := `
		SELECT result_id, signal_date, code, name, action, price, prev_close, diff, volume,
		       special_value, metric_name, created_at
		FROM strategy_detail
		WHERE result_id = $1
		ORDER BY code
	`

	rows, err := r.pool.Query(ctx, query, resultID)
	if err != nil {
		return nil, fmt.Errorf("list strategy details: %w", err)
	}
	defer rows.Close()

	details := make([]*strategy.Detail, 0)
	for rows.Next() {
		var d strategy.Detail
		err := rows.Scan(
			&d.ResultID, &d.SignalDate, &d.Code, &d.Name, &d.Action,
			&d.Price, &d.PrevClose, &d.Diff, &d.Volume,
			&d.SpecialValue, &d.MetricName, &d.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan strategy detail: %w", err)
		}
		details = append(details, &d)
	}

	return details, rows.Err()
}
