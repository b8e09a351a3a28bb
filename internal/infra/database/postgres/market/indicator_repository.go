package market

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/market"
	"github.com/gmdcjdakdcjd/stockbatch/internal/infra/database/postgres"
)

// IndicatorRepository daily_price_indicator 저장소
type IndicatorRepository struct {
	pool *postgres.Pool
}

// NewIndicatorRepository 저장소 생성
func NewIndicatorRepository(pool *postgres.Pool) *IndicatorRepository {
	return &IndicatorRepository{pool: pool}
}

// UpsertBatch (code, date) 기준 일괄 저장
func (r *IndicatorRepository) UpsertBatch(ctx context.Context, prices []*market.IndicatorPrice) (int, error) {
	if len(prices) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO daily_price_indicator (code, date, close, change_amount, change_rate, last_update)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (code, date) DO UPDATE SET
			close = EXCLUDED.close,
			change_amount = EXCLUDED.change_amount,
			change_rate = EXCLUDED.change_rate,
			last_update = EXCLUDED.last_update
	`

	batch := &pgx.Batch{}
	for _, p := range prices {
		batch.Queue(query, p.Code, p.Date, p.Close, p.ChangeAmount, p.ChangeRate)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	count := 0
	for range prices {
		if _, err := br.Exec(); err != nil {
			return count, fmt.Errorf("batch upsert indicator: %w", err)
		}
		count++
	}

	return count, nil
}

// GetRange 지표 기간 조회 (date 오름차순)
func (r *IndicatorRepository) GetRange(ctx context.Context, code string, from, to time.Time) ([]*market.IndicatorPrice, error) {
	query := `
		SELECT code, date, close, change_amount, change_rate, last_update
		FROM daily_price_indicator
		WHERE code = $1 AND date BETWEEN $2 AND $3
		ORDER BY date
	`

	rows, err := r.pool.Query(ctx, query, code, from, to)
	if err != nil {
		return nil, fmt.Errorf("get indicator range: %w", err)
	}
	defer rows.Close()

	prices := make([]*market.IndicatorPrice, 0)
	for rows.Next() {
		var p market.IndicatorPrice
		if err := rows.Scan(&p.Code, &p.Date, &p.Close, &p.ChangeAmount, &p.ChangeRate, &p.LastUpdate); err != nil {
			return nil, fmt.Errorf("scan indicator: %w", err)
		}
		prices = append(prices, &p)
	}

	return prices, rows.Err()
}
