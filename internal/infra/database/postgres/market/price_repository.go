package market

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/market"
	"github.com/gmdcjdakdcjd/stockbatch/internal/infra/database/postgres"
)

const priceColumns = `code, date, open, high, low, close, diff, volume, last_update`

// PriceRepository PostgreSQL 일봉 저장소
// 테이블명은 market.SpecFor 에서만 가져옴
type PriceRepository struct {
	pool *postgres.Pool
}

// NewPriceRepository 저장소 생성
func NewPriceRepository(pool *postgres.Pool) *PriceRepository {
	return &PriceRepository{pool: pool}
}

func upsertPriceQuery(m market.Market, table string) string {
	insert := fmt.Sprintf(`
		INSERT INTO %s (code, date, open, high, low, close, diff, volume, last_update)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
	`, table)

	// 채권은 최초 적재값 유지
	if m == market.Bond {
		return insert + ` ON CONFLICT (code, date) DO NOTHING`
	}

	return insert + `
		ON CONFLICT (code, date) DO UPDATE SET
			open = EXCLUDED.open,
			high = EXCLUDED.high,
			low = EXCLUDED.low,
			close = EXCLUDED.close,
			diff = EXCLUDED.diff,
			volume = EXCLUDED.volume,
			last_update = EXCLUDED.last_update
	`
}

// UpsertBatch 일봉 일괄 저장
func (r *PriceRepository) UpsertBatch(ctx context.Context, m market.Market, prices []*market.DailyPrice) (int, error) {
	if len(prices) == 0 {
		return 0, nil
	}

	spec, err := market.SpecFor(m)
	if err != nil {
		return 0, err
	}

	query := upsertPriceQuery(m, spec.PriceTable)

	batch := &pgx.Batch{}
	for _, p := range prices {
		batch.Queue(query, p.Code, p.Date, p.Open, p.High, p.Low, p.Close, p.Diff, p.Volume)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	// 채권 DO NOTHING 으로 건너뛴 행은 제외
	count := 0
	for range prices {
		tag, err := br.Exec()
		if err != nil {
			return count, fmt.Errorf("batch upsert %s: %w", spec.PriceTable, err)
		}
		count += int(tag.RowsAffected())
	}

	return count, nil
}

// GetRange 단일 종목 기간 조회
func (r *PriceRepository) GetRange(ctx context.Context, m market.Market, code string, from, to time.Time) ([]*market.DailyPrice, error) {
	spec, err := market.SpecFor(m)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE code = $1 AND date BETWEEN $2 AND $3
		ORDER BY date
	`, priceColumns, spec.PriceTable)

	return r.query(ctx, query, code, from, to)
}

// GetBulk 전 종목 기간 조회
func (r *PriceRepository) GetBulk(ctx context.Context, m market.Market, from, to time.Time) ([]*market.DailyPrice, error) {
	spec, err := market.SpecFor(m)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE date BETWEEN $1 AND $2
		ORDER BY code, date
	`, priceColumns, spec.PriceTable)

	return r.query(ctx, query, from, to)
}

// LatestDateOnOrBefore date 이하 최근 거래일
func (r *PriceRepository) LatestDateOnOrBefore(ctx context.Context, m market.Market, date time.Time) (*time.Time, error) {
	spec, err := market.SpecFor(m)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT max(date) FROM %s WHERE date <= $1`, spec.PriceTable)

	var latest *time.Time
	if err := r.pool.QueryRow(ctx, query, date).Scan(&latest); err != nil {
		return nil, fmt.Errorf("latest date on or before: %w", err)
	}

	return latest, nil
}

// LatestBefore code의 date 직전 일봉
func (r *PriceRepository) LatestBefore(ctx context.Context, m market.Market, code string, date time.Time) (*market.DailyPrice, error) {
	spec, err := market.SpecFor(m)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE code = $1 AND date < $2
		ORDER BY date DESC
		LIMIT 1
	`, priceColumns, spec.PriceTable)

	var p market.DailyPrice
	err = r.pool.QueryRow(ctx, query, code, date).Scan(
		&p.Code, &p.Date, &p.Open, &p.High, &p.Low, &p.Close, &p.Diff, &p.Volume, &p.LastUpdate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, market.ErrPriceNotFound
		}
		return nil, fmt.Errorf("latest price before: %w", err)
	}

	return &p, nil
}

func (r *PriceRepository) query(ctx context.Context, query string, args ...any) ([]*market.DailyPrice, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query prices: %w", err)
	}
	defer rows.Close()

	prices := make([]*market.DailyPrice, 0)
	for rows.Next() {
		var p market.DailyPrice
		if err := rows.Scan(&p.Code, &p.Date, &p.Open, &p.High, &p.Low, &p.Close, &p.Diff, &p.Volume, &p.LastUpdate); err != nil {
			return nil, fmt.Errorf("scan price: %w", err)
		}
		prices = append(prices, &p)
	}

	return prices, rows.Err()
}
