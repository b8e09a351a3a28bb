package market

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/market"
	"github.com/gmdcjdakdcjd/stockbatch/internal/infra/database/postgres"
)

// InstrumentRepository PostgreSQL 종목 마스터 저장소
type InstrumentRepository struct {
	pool *postgres.Pool
}

// NewInstrumentRepository 저장소 생성
func NewInstrumentRepository(pool *postgres.Pool) *InstrumentRepository {
	return &InstrumentRepository{pool: pool}
}

// UpsertBatch code 기준 일괄 저장
func (r *InstrumentRepository) UpsertBatch(ctx context.Context, m market.Market, instruments []*market.Instrument) (int, error) {
	if len(instruments) == 0 {
		return 0, nil
	}

	spec, err := market.SpecFor(m)
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (code, name, market_type, security_type, manager, last_update)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (code) DO UPDATE SET
			name = EXCLUDED.name,
			market_type = EXCLUDED.market_type,
			security_type = EXCLUDED.security_type,
			manager = EXCLUDED.manager,
			last_update = EXCLUDED.last_update
	`, spec.InstrumentTable)

	batch := &pgx.Batch{}
	for _, in := range instruments {
		batch.Queue(query, in.Code, in.Name, in.MarketType, in.SecurityType, in.Manager)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	count := 0
	for range instruments {
		if _, err := br.Exec(); err != nil {
			return count, fmt.Errorf("batch upsert %s: %w", spec.InstrumentTable, err)
		}
		count++
	}

	return count, nil
}

// List 유니버스 조회 (code 오름차순)
func (r *InstrumentRepository) List(ctx context.Context, m market.Market, filter market.InstrumentFilter) ([]*market.Instrument, error) {
	spec, err := market.SpecFor(m)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT code, name, market_type, security_type, manager, last_update
		FROM %s
		WHERE ($1 = '' OR security_type = $1)
		  AND ($2 = '' OR manager = $2)
		ORDER BY code
	`, spec.InstrumentTable)

	rows, err := r.pool.Query(ctx, query, filter.SecurityType, filter.Manager)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", spec.InstrumentTable, err)
	}
	defer rows.Close()

	var instruments []*market.Instrument
	for rows.Next() {
		var in market.Instrument
		if err := rows.Scan(&in.Code, &in.Name, &in.MarketType, &in.SecurityType, &in.Manager, &in.LastUpdate); err != nil {
			return nil, fmt.Errorf("scan instrument: %w", err)
		}
		instruments = append(instruments, &in)
	}

	return instruments, rows.Err()
}
