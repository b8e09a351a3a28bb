package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/market"
	marketsvc "github.com/gmdcjdakdcjd/stockbatch/internal/service/market"
	"github.com/gmdcjdakdcjd/stockbatch/internal/strategy/screening"
)

func newScreenCmd() *cobra.Command {
	var (
		all     bool
		list    bool
		jsonOut bool
		asOf    string
		mkt     string
	)

	cmd := &cobra.Command{
		Use:   "screen [STRATEGY...]",
		Short: "스크리닝 전략 실행",
		Long: `스크리닝 전략을 실행하고 결과를 strategy_result/strategy_detail 에 저장합니다.
stdout 에는 RESULT_ID=, ROWCOUNT= 만 출력됩니다.

Examples:
  stockbatch screen RSI_30_UNHEATED_KR
  stockbatch screen --all --market US_STOCK
  stockbatch screen --list`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				for _, name := range screening.Names() {
					fmt.Fprintln(cmd.ErrOrStderr(), name)
				}
				return nil
			}

			strategies, err := selectStrategies(args, all, mkt)
			if err != nil {
				return err
			}

			date := time.Now()
			if asOf != "" {
				if date, err = marketsvc.ParseDate(asOf); err != nil {
					return err
				}
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			exec, err := a.executor(cmd.Context(), strategies)
			if err != nil {
				return err
			}

			summaries, err := exec.RunAll(cmd.Context(), strategies, date)
			if err != nil {
				return err
			}

			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(summaries)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "전체 전략 실행")
	cmd.Flags().BoolVar(&list, "list", false, "전략 목록 출력")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "실행 요약을 JSON 으로 출력")
	cmd.Flags().StringVar(&asOf, "as-of", "", "기준일 (기본: 오늘)")
	cmd.Flags().StringVar(&mkt, "market", "", "--all 과 함께 시장 한정")
	return cmd
}

func selectStrategies(names []string, all bool, mkt string) ([]screening.Strategy, error) {
	if all {
		var only market.Market
		if mkt != "" {
			m, err := market.ParseMarket(mkt)
			if err != nil {
				return nil, err
			}
			only = m
		}

		var out []screening.Strategy
		for _, st := range screening.Catalog() {
			if only == "" || st.Market() == only {
				out = append(out, st)
			}
		}
		return out, nil
	}

	if len(names) == 0 {
		return nil, fmt.Errorf("strategy name or --all is required")
	}

	out := make([]screening.Strategy, 0, len(names))
	for _, name := range names {
		st, err := screening.Lookup(strings.ToUpper(name))
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}
