package market

import (
	"context"
	"time"
)

// InstrumentRepository 종목 마스터 저장소
type InstrumentRepository interface {
	UpsertBatch(ctx context.Context, m Market, instruments []*Instrument) (int, error)
	List(ctx context.Context, m Market, filter InstrumentFilter) ([]*Instrument, error)
}

// PriceRepository 일봉 저장소
type PriceRepository interface {
	// UpsertBatch (code, date) 기준 저장, BOND는 기존 행 유지
	UpsertBatch(ctx context.Context, m Market, prices []*DailyPrice) (int, error)

	// GetRange 단일 종목 기간 조회 (date 오름차순)
	GetRange(ctx context.Context, m Market, code string, from, to time.Time) ([]*DailyPrice, error)

	// GetBulk 전 종목 기간 조회 (code, date 오름차순)
	GetBulk(ctx context.Context, m Market, from, to time.Time) ([]*DailyPrice, error)

	// LatestDateOnOrBefore date 이하 최근 거래일, 없으면 nil
	LatestDateOnOrBefore(ctx context.Context, m Market, date time.Time) (*time.Time, error)

	// LatestBefore code의 date 이전 최근 일봉 (전일 대비 계산용)
	LatestBefore(ctx context.Context, m Market, code string, date time.Time) (*DailyPrice, error)
}

// IndicatorRepository 지표 시세 저장소 (daily_price_indicator)
type IndicatorRepository interface {
	UpsertBatch(ctx context.Context, prices []*IndicatorPrice) (int, error)
	GetRange(ctx context.Context, code string, from, to time.Time) ([]*IndicatorPrice, error)
}
