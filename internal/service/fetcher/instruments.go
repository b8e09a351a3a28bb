package fetcher

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/fetcher"
	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/market"
)

// 시가총액 목록 시장 구분
var listingMarkets = []string{"KOSPI", "KOSDAQ"}

// UpdateInstruments 종목 마스터 갱신
func (s *Service) UpdateInstruments(ctx context.Context, m market.Market) (*fetcher.FetchResult, error) {
	spec, err := market.SpecFor(m)
	if err != nil {
		return nil, err
	}

	var (
		source string
		fetch  func(*fetcher.FetchResult) ([]*market.Instrument, error)
	)
	switch m {
	case market.KRStock:
		source, fetch = "naver", func(r *fetcher.FetchResult) ([]*market.Instrument, error) {
			return s.fetchKRListing(ctx, r)
		}
	case market.KRETF:
		source, fetch = "naver", func(*fetcher.FetchResult) ([]*market.Instrument, error) {
			return s.clients.Naver.FetchETFList(ctx)
		}
	case market.USStock:
		source, fetch = "wikipedia", func(*fetcher.FetchResult) ([]*market.Instrument, error) {
			return s.clients.SP500.FetchConstituents(ctx)
		}
	case market.USETF:
		source, fetch = "nasdaq", func(*fetcher.FetchResult) ([]*market.Instrument, error) {
			return s.clients.ETFs.FetchETFs(ctx)
		}
	default:
		// bond_info는 수동 관리
		return nil, fmt.Errorf("%w: instruments for %s", fetcher.ErrUnsupportedJob, m)
	}

	return s.run(ctx, fetcher.JobTypeInstruments, source, spec.InstrumentTable, func(result *fetcher.FetchResult) error {
		instruments, err := fetch(result)
		if err != nil {
			return fmt.Errorf("fetch instruments: %w", err)
		}
		if len(instruments) == 0 {
			log.Warn().Str("market", string(m)).Msg("No instruments fetched")
			s.out.RowCount(0)
			return nil
		}

		now := s.now()
		for _, inst := range instruments {
			inst.LastUpdate = now
		}

		count, err := s.repos.Instruments.UpsertBatch(ctx, m, instruments)
		if err != nil {
			return fmt.Errorf("save instruments: %w", err)
		}

		result.TotalRows = count
		result.SuccessCount = count
		s.out.RowCount(count)
		return nil
	})
}

// fetchKRListing KOSPI, KOSDAQ 시가총액 목록을 빈 페이지까지
// 페이지 단위 실패는 해당 시장만 중단
func (s *Service) fetchKRListing(ctx context.Context, result *fetcher.FetchResult) ([]*market.Instrument, error) {
	seen := make(map[string]struct{})
	var all []*market.Instrument

	for _, mt := range listingMarkets {
		for page := 1; page <= s.config.ListingPages; page++ {
			rows, err := s.clients.Naver.FetchListingPage(ctx, mt, page)
			if err != nil {
				log.Warn().Err(err).Str("market", mt).Int("page", page).Msg("Failed to fetch listing page")
				fail(result, fmt.Sprintf("%s page %d", mt, page), err)
				break
			}
			if len(rows) == 0 {
				break
			}

			for _, r := range rows {
				if _, dup := seen[r.Code]; dup {
					continue
				}
				seen[r.Code] = struct{}{}
				all = append(all, r)
			}

			if err := s.pause(ctx); err != nil {
				return nil, err
			}
		}
	}

	if len(all) == 0 && result.FailedCount > 0 {
		return nil, fmt.Errorf("%w: every listing page failed", fetcher.ErrExternalAPIError)
	}
	return all, nil
}
