package fetcher

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/fetcher"
	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/market"
)

const indicatorTable = "daily_price_indicator"

// UpdateIndicators 환율/원자재/KOSPI/S&P500 일별 시세 수집
func (s *Service) UpdateIndicators(ctx context.Context) (*fetcher.FetchResult, error) {
	return s.run(ctx, fetcher.JobTypeIndicators, "naver,yahoo", indicatorTable, func(result *fetcher.FetchResult) error {
		collect := func(code string, fetch func() ([]*market.IndicatorPrice, error)) error {
			prices, err := fetch()
			if err != nil {
				log.Warn().Err(err).Str("code", code).Msg("Failed to fetch indicator")
				fail(result, code, err)
				return ctx.Err()
			}
			if len(prices) == 0 {
				log.Warn().Str("code", code).Msg("No indicator rows")
				return ctx.Err()
			}

			count, err := s.repos.Indicators.UpsertBatch(ctx, prices)
			if err != nil {
				log.Warn().Err(err).Str("code", code).Msg("Failed to save indicator")
				fail(result, code, err)
				return ctx.Err()
			}

			result.TotalRows += count
			result.SuccessCount++
			s.out.RowCount(count)
			return s.pause(ctx)
		}

		for _, src := range fetcher.IndexSources {
			src := src
			if err := collect(src.Code, func() ([]*market.IndicatorPrice, error) {
				return s.pagedIndicator(ctx, func(page int) ([]*market.IndicatorPrice, error) {
					return s.clients.Naver.FetchMarketIndexPage(ctx, src, page)
				})
			}); err != nil {
				return err
			}
		}

		if err := collect(market.IndicatorKOSPI, func() ([]*market.IndicatorPrice, error) {
			return s.pagedIndicator(ctx, func(page int) ([]*market.IndicatorPrice, error) {
				return s.clients.Naver.FetchKospiPage(ctx, page)
			})
		}); err != nil {
			return err
		}

		if err := collect(market.IndicatorSNP500, func() ([]*market.IndicatorPrice, error) {
			return s.fetchSNP500(ctx)
		}); err != nil {
			return err
		}

		s.out.RowCount(result.TotalRows)
		s.out.CodeCount(result.SuccessCount)
		return nil
	})
}

// pagedIndicator 1페이지부터 IndicatorPages까지, 빈 페이지에서 중단
func (s *Service) pagedIndicator(ctx context.Context, fetch func(page int) ([]*market.IndicatorPrice, error)) ([]*market.IndicatorPrice, error) {
	pages := s.config.IndicatorPages
	if pages < 1 {
		pages = 1
	}

	var all []*market.IndicatorPrice
	for page := 1; page <= pages; page++ {
		rows, err := fetch(page)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		if len(rows) == 0 {
			break
		}
		all = append(all, rows...)

		if page < pages {
			if err := s.pause(ctx); err != nil {
				return nil, err
			}
		}
	}

	now := s.now()
	for _, p := range all {
		p.LastUpdate = now
	}
	return all, nil
}

// fetchSNP500 Yahoo ^GSPC, 직전 종가를 알 수 없는 첫 행은 저장된 값으로 보정하거나 제외
func (s *Service) fetchSNP500(ctx context.Context) ([]*market.IndicatorPrice, error) {
	bars, err := s.clients.Yahoo.FetchDailyBars(ctx, market.IndicatorSNP500, s.config.USRange)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, nil
	}

	first := bars[0]
	stored, err := s.repos.Indicators.GetRange(ctx, market.IndicatorSNP500, first.Date.AddDate(0, 0, -14), first.Date.AddDate(0, 0, -1))
	if err != nil {
		return nil, fmt.Errorf("previous close: %w", err)
	}

	now := s.now()
	out := make([]*market.IndicatorPrice, 0, len(bars))
	for i, b := range bars {
		price := decimal.NewFromFloat(b.Close).Round(4)
		amount := decimal.NewFromFloat(b.Diff).Round(4)
		if i == 0 {
			if len(stored) == 0 {
				continue
			}
			amount = price.Sub(stored[len(stored)-1].Close)
		}
		out = append(out, &market.IndicatorPrice{
			Code:         market.IndicatorSNP500,
			Date:         b.Date,
			Close:        price,
			ChangeAmount: amount,
			ChangeRate:   market.ChangeRate(price, amount),
			LastUpdate:   now,
		})
	}
	return out, nil
}
