package fetcher

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/fetcher"
	"github.com/gmdcjdakdcjd/stockbatch/internal/infra/database/postgres"
)

// KodexRepository kodex_etf_summary / kodex_etf_holdings 저장소
type KodexRepository struct {
	pool *postgres.Pool
}

// NewKodexRepository 생성자
func NewKodexRepository(pool *postgres.Pool) *KodexRepository {
	return &KodexRepository{pool: pool}
}

// UpsertSummary (etf_id, base_date) 기준 저장
func (r *KodexRepository) UpsertSummary(ctx context.Context, s *fetcher.KodexSummary) error {
	query := `
		INSERT INTO kodex_etf_summary (etf_id, base_date, etf_name, irp_yn, total_cnt, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		ON CONFLICT (etf_id, base_date) DO UPDATE SET
			etf_name = EXCLUDED.etf_name,
			irp_yn = EXCLUDED.irp_yn,
			total_cnt = EXCLUDED.total_cnt,
			updated_at = EXCLUDED.updated_at
	`

	if _, err := r.pool.Exec(ctx, query, s.ETFID, s.BaseDate, s.ETFName, s.IRPYn, s.TotalCnt); err != nil {
		return fmt.Errorf("upsert kodex summary %s: %w", s.ETFID, err)
	}

	return nil
}

// UpsertHoldings (etf_id, base_date, stock_code) 기준 일괄 저장
func (r *KodexRepository) UpsertHoldings(ctx context.Context, holdings []*fetcher.KodexHolding) (int, error) {
	if len(holdings) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO kodex_etf_holdings
			(etf_id, base_date, stock_code, stock_name, holding_qty, current_price, eval_amount, weight_ratio,
			 created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
		ON CONFLICT (etf_id, base_date, stock_code) DO UPDATE SET
			stock_name = EXCLUDED.stock_name,
			holding_qty = EXCLUDED.holding_qty,
			current_price = EXCLUDED.current_price,
			eval_amount = EXCLUDED.eval_amount,
			weight_ratio = EXCLUDED.weight_ratio,
			updated_at = EXCLUDED.updated_at
	`

	batch := &pgx.Batch{}
	for _, h := range holdings {
		batch.Queue(query,
			h.ETFID, h.BaseDate, h.StockCode, h.StockName,
			h.HoldingQty, h.CurrentPrice, h.EvalAmount, h.WeightRatio,
		)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	count := 0
	for range holdings {
		if _, err := br.Exec(); err != nil {
			return count, fmt.Errorf("batch upsert kodex holdings: %w", err)
		}
		count++
	}

	return count, nil
}
