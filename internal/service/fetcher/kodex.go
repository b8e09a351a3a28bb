package fetcher

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/fetcher"
)

// kodexMaxPages 운용사 API 페이지 상한
const kodexMaxPages = 200

// UpdateKodexHoldings KODEX ETF 요약 + 구성종목 수집
// baseDate는 YYYYMMDD, 빈 문자열이면 운용사 최신 기준일
func (s *Service) UpdateKodexHoldings(ctx context.Context, baseDate string) (*fetcher.FetchResult, error) {
	return s.run(ctx, fetcher.JobTypeKodex, "samsungfund", "kodex_etf_holdings", func(result *fetcher.FetchResult) error {
		for page := 1; page <= kodexMaxPages; page++ {
			docs, err := s.clients.Kodex.FetchDocuments(ctx, baseDate, page)
			if err != nil {
				return fmt.Errorf("page %d: %w", page, err)
			}
			if len(docs) == 0 {
				break
			}

			for _, doc := range docs {
				if doc.Summary == nil || len(doc.Holdings) == 0 {
					continue
				}
				etfID := doc.Summary.ETFID

				if err := s.repos.Kodex.UpsertSummary(ctx, doc.Summary); err != nil {
					log.Warn().Err(err).Str("etf_id", etfID).Msg("Failed to save KODEX summary")
					fail(result, etfID, err)
					continue
				}
				count, err := s.repos.Kodex.UpsertHoldings(ctx, doc.Holdings)
				if err != nil {
					log.Warn().Err(err).Str("etf_id", etfID).Msg("Failed to save KODEX holdings")
					fail(result, etfID, err)
					continue
				}

				result.TotalRows += count
				result.SuccessCount++
			}

			if err := s.pause(ctx); err != nil {
				return err
			}
		}

		s.out.RowCount(result.TotalRows)
		s.out.CodeCount(result.SuccessCount)
		return nil
	})
}
