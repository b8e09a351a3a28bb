package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/fetcher"
	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/market"
	fetchersvc "github.com/gmdcjdakdcjd/stockbatch/internal/service/fetcher"
)

func newIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "외부 원천 수집",
		Long: `외부 원천에서 수집해 (code, date) 기준으로 저장합니다.

Examples:
  stockbatch ingest prices KR_STOCK KR_ETF
  stockbatch ingest indicators
  stockbatch ingest instruments US_STOCK
  stockbatch ingest kodex --base-date 20240315`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "prices MARKET...",
			Short: "일봉 수집 (KR: Naver sise_day, US/BOND: Yahoo chart)",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runPerMarket(cmd.Context(), args, func(ctx context.Context, svc *fetchersvc.Service, m market.Market) (*fetcher.FetchResult, error) {
					return svc.UpdateDailyPrices(ctx, m)
				})
			},
		},
		&cobra.Command{
			Use:   "instruments MARKET...",
			Short: "종목 마스터 수집",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runPerMarket(cmd.Context(), args, func(ctx context.Context, svc *fetchersvc.Service, m market.Market) (*fetcher.FetchResult, error) {
					return svc.UpdateInstruments(ctx, m)
				})
			},
		},
		&cobra.Command{
			Use:   "indicators",
			Short: "환율/원자재/KOSPI/S&P500 수집",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := openApp(cmd.Context())
				if err != nil {
					return err
				}
				defer a.Close()

				_, err = a.fetcherService().UpdateIndicators(cmd.Context())
				return err
			},
		},
		newIngestKodexCmd(),
	)
	return cmd
}

func newIngestKodexCmd() *cobra.Command {
	var baseDate string

	cmd := &cobra.Command{
		Use:   "kodex",
		Short: "KODEX ETF 요약/구성종목 수집",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			_, err = a.fetcherService().UpdateKodexHoldings(cmd.Context(), baseDate)
			return err
		},
	}
	cmd.Flags().StringVar(&baseDate, "base-date", "", "기준일 YYYYMMDD (기본: 최신)")
	return cmd
}

// runPerMarket 시장별 순차 수집, 하나라도 실패하면 에러 반환
func runPerMarket(ctx context.Context, args []string, job func(context.Context, *fetchersvc.Service, market.Market) (*fetcher.FetchResult, error)) error {
	markets := make([]market.Market, 0, len(args))
	for _, arg := range args {
		m, err := market.ParseMarket(arg)
		if err != nil {
			return err
		}
		markets = append(markets, m)
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	svc := a.fetcherService()
	var errs []error
	for _, m := range markets {
		if _, err := job(ctx, svc, m); err != nil {
			log.Error().Err(err).Str("market", string(m)).Msg("Ingest failed")
			errs = append(errs, fmt.Errorf("%s: %w", m, err))
		}
	}
	return errors.Join(errs...)
}
