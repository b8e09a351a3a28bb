// Package market is the read-only access layer over one market's
// instrument and daily price tables.
package market

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/market"
)

// DefaultLookback GetSeries 시작일 미지정 시 조회 기간
const DefaultLookback = 365 * 24 * time.Hour

// Accessor 시장별 시세 조회
type Accessor struct {
	market market.Market
	spec   market.Spec

	instrumentRepo market.InstrumentRepository
	priceRepo      market.PriceRepository

	snapshot atomic.Pointer[CodeSnapshot]
	sf       singleflight.Group

	now func() time.Time
}

// NewAccessor 접근자 생성 (종목 스냅샷을 즉시 로드)
func NewAccessor(
	ctx context.Context,
	m market.Market,
	instrumentRepo market.InstrumentRepository,
	priceRepo market.PriceRepository,
) (*Accessor, error) {
	spec, err := market.SpecFor(m)
	if err != nil {
		return nil, err
	}

	a := &Accessor{
		market:         m,
		spec:           spec,
		instrumentRepo: instrumentRepo,
		priceRepo:      priceRepo,
		now:            time.Now,
	}
	if err := a.Refresh(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// Market returns the market this accessor reads.
func (a *Accessor) Market() market.Market { return a.market }

// Spec returns the table layout of the market.
func (a *Accessor) Spec() market.Spec { return a.spec }

// Snapshot 현재 코드 스냅샷
func (a *Accessor) Snapshot() *CodeSnapshot {
	return a.snapshot.Load()
}

// Refresh 종목 마스터에서 스냅샷 재생성
// 동시 호출은 하나로 합쳐지고, 기존 스냅샷은 교체 전까지 그대로 사용 가능
func (a *Accessor) Refresh(ctx context.Context) error {
	_, err, shared := a.sf.Do("refresh", func() (interface{}, error) {
		instruments, err := a.instrumentRepo.List(ctx, a.market, market.InstrumentFilter{})
		if err != nil {
			return nil, fmt.Errorf("list instruments: %w", err)
		}
		snap := NewCodeSnapshot(instruments, a.now())
		a.snapshot.Store(snap)
		return snap, nil
	})
	if err != nil {
		return err
	}

	log.Debug().
		Str("market", string(a.market)).
		Int("codes", a.Snapshot().Len()).
		Bool("shared", shared).
		Msg("Code snapshot refreshed")
	return nil
}

// Resolve 코드 또는 종목명을 코드로 변환
func (a *Accessor) Resolve(codeOrName string) (string, error) {
	snap := a.Snapshot()
	if snap == nil {
		return "", fmt.Errorf("%w: %s", market.ErrInstrumentNotFound, codeOrName)
	}
	code, ok := snap.Resolve(codeOrName)
	if !ok {
		return "", fmt.Errorf("%w: %s", market.ErrInstrumentNotFound, codeOrName)
	}
	return code, nil
}

// Name 종목명 (없으면 "")
func (a *Accessor) Name(code string) string {
	snap := a.Snapshot()
	if snap == nil {
		return ""
	}
	return snap.Name(code)
}

// Universe 전략 대상 종목 코드
func (a *Accessor) Universe() []string {
	snap := a.Snapshot()
	if snap == nil {
		return nil
	}
	return snap.Universe(a.spec.Universe)
}

// GetSeries 단일 종목 일봉 (date 오름차순)
// start 기본값은 1년 전, end 기본값은 오늘
func (a *Accessor) GetSeries(ctx context.Context, codeOrName, start, end string) ([]*market.DailyPrice, error) {
	code, err := a.Resolve(codeOrName)
	if err != nil {
		return nil, err
	}

	from, to, err := a.dateRange(start, end)
	if err != nil {
		return nil, err
	}

	prices, err := a.priceRepo.GetRange(ctx, a.market, code, from, to)
	if err != nil {
		return nil, fmt.Errorf("get series %s: %w", code, err)
	}
	return prices, nil
}

// GetBulk 전 종목 일봉을 한 번의 범위 조회로 (code, date 오름차순)
func (a *Accessor) GetBulk(ctx context.Context, start, end string) ([]*market.DailyPrice, error) {
	from, to, err := a.dateRange(start, end)
	if err != nil {
		return nil, err
	}
	return a.GetBulkRange(ctx, from, to)
}

// GetBulkRange GetBulk with already parsed dates.
func (a *Accessor) GetBulkRange(ctx context.Context, from, to time.Time) ([]*market.DailyPrice, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: %s > %s", market.ErrInvalidDateRange,
			from.Format(DateLayout), to.Format(DateLayout))
	}

	prices, err := a.priceRepo.GetBulk(ctx, a.market, Day(from), Day(to))
	if err != nil {
		return nil, fmt.Errorf("get bulk: %w", err)
	}
	return prices, nil
}

// LatestTradingDateOnOrBefore date 이하 마지막 거래일 (없으면 nil)
func (a *Accessor) LatestTradingDateOnOrBefore(ctx context.Context, date string) (*time.Time, error) {
	d, err := ParseDate(date)
	if err != nil {
		return nil, err
	}
	return a.LatestTradingDay(ctx, d)
}

// LatestTradingDay LatestTradingDateOnOrBefore with a parsed date.
func (a *Accessor) LatestTradingDay(ctx context.Context, date time.Time) (*time.Time, error) {
	latest, err := a.priceRepo.LatestDateOnOrBefore(ctx, a.market, Day(date))
	if err != nil {
		return nil, fmt.Errorf("latest trading date: %w", err)
	}
	return latest, nil
}

func (a *Accessor) dateRange(start, end string) (time.Time, time.Time, error) {
	today := Day(a.now())

	to := today
	if end != "" {
		t, err := ParseDate(end)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = t
	}

	from := Day(today.Add(-DefaultLookback))
	if start != "" {
		t, err := ParseDate(start)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = t
	}

	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %s > %s", market.ErrInvalidDateRange,
			from.Format(DateLayout), to.Format(DateLayout))
	}
	return from, to, nil
}
