package fetcher

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/fetcher"
	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/market"
)

// UpdateDailyPrices 시장 전체 종목 일봉 수집
// 종목 단위 실패는 기록 후 건너뜀
func (s *Service) UpdateDailyPrices(ctx context.Context, m market.Market) (*fetcher.FetchResult, error) {
	spec, err := market.SpecFor(m)
	if err != nil {
		return nil, err
	}

	source := "yahoo"
	if m.IsKorean() {
		source = "naver"
	}

	return s.run(ctx, fetcher.JobTypePrices, source, spec.PriceTable, func(result *fetcher.FetchResult) error {
		instruments, err := s.repos.Instruments.List(ctx, m, market.InstrumentFilter{})
		if err != nil {
			return fmt.Errorf("list instruments: %w", err)
		}
		if len(instruments) == 0 {
			log.Warn().Str("market", string(m)).Msg("No instruments to collect prices")
			s.out.RowCount(0)
			s.out.CodeCount(0)
			return nil
		}

		for _, inst := range instruments {
			if err := ctx.Err(); err != nil {
				return err
			}

			var prices []*market.DailyPrice
			if m.IsKorean() {
				prices, err = s.fetchNaverPrices(ctx, inst.Code)
			} else {
				prices, err = s.fetchYahooPrices(ctx, m, inst.Code)
			}
			if err != nil {
				log.Warn().Err(err).Str("code", inst.Code).Bool("external", fetcher.IsExternalError(err)).Msg("Failed to fetch prices")
				fail(result, inst.Code, err)
				continue
			}
			if len(prices) == 0 {
				log.Warn().Str("code", inst.Code).Msg("No price rows")
				continue
			}

			count, err := s.repos.Prices.UpsertBatch(ctx, m, prices)
			if err != nil {
				log.Warn().Err(err).Str("code", inst.Code).Msg("Failed to save prices")
				fail(result, inst.Code, err)
				continue
			}

			result.TotalRows += count
			result.SuccessCount++
			s.out.RowCount(count)
			log.Debug().Str("code", inst.Code).Int("rows", count).Msg("Prices saved")

			if err := s.pause(ctx); err != nil {
				return err
			}
		}

		s.out.RowCount(result.TotalRows)
		s.out.CodeCount(result.SuccessCount)
		return nil
	})
}

// fetchNaverPrices sise_day 1페이지부터 min(마지막 페이지, PagesToFetch)까지
func (s *Service) fetchNaverPrices(ctx context.Context, code string) ([]*market.DailyPrice, error) {
	lastPage, err := s.clients.Naver.LastPage(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("last page: %w", err)
	}

	pages := lastPage
	if s.config.PagesToFetch > 0 && pages > s.config.PagesToFetch {
		pages = s.config.PagesToFetch
	}

	var all []*market.DailyPrice
	for page := 1; page <= pages; page++ {
		rows, err := s.clients.Naver.FetchDailyPricePage(ctx, code, page)
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

// fetchYahooPrices Yahoo chart 일봉, 첫 행 diff는 저장된 직전 종가로 보정
func (s *Service) fetchYahooPrices(ctx context.Context, m market.Market, code string) ([]*market.DailyPrice, error) {
	bars, err := s.clients.Yahoo.FetchDailyBars(ctx, code, s.config.USRange)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return bars, nil
	}

	prev, err := s.repos.Prices.LatestBefore(ctx, m, code, bars[0].Date)
	switch {
	case err == nil:
		bars[0].Diff = bars[0].Close - prev.Close
	case market.IsNotFoundError(err):
		// 최초 수집
	default:
		return nil, fmt.Errorf("previous close: %w", err)
	}

	now := s.now()
	for _, b := range bars {
		b.LastUpdate = now
	}
	return bars, nil
}
