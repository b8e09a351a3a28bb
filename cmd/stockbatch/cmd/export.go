package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/export"
	marketsvc "github.com/gmdcjdakdcjd/stockbatch/internal/service/market"
)

func newExportCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "export [GROUP|TABLE...]",
		Short: "오늘 적재분 CSV 내보내기",
		Long: `오늘(EXPORT_TIMEZONE 기준) 적재된 행을 <EXPORT_OUT_BASE>/<YYYYMMDD>/<KEY>_<YYYYMMDD>.csv 로 씁니다.
대상 행이 없으면 파일을 만들지 않습니다.

Groups: daily, static, strategy, kodex (생략 시 전체)

Examples:
  stockbatch export
  stockbatch export daily strategy
  stockbatch export daily_price_kr --date 2024-03-15`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			exp, err := a.exporter()
			if err != nil {
				return err
			}

			if len(args) == 0 {
				for _, g := range export.Groups() {
					args = append(args, string(g))
				}
			}

			day := exp.Today()
			if date != "" {
				if day, err = marketsvc.ParseDate(date); err != nil {
					return err
				}
			}

			written := 0
			for _, arg := range args {
				if date == "" {
					if _, err := export.TargetsOf(export.Group(arg)); err == nil {
						paths, err := exp.ExportGroup(ctx, export.Group(arg))
						if err != nil {
							return err
						}
						written += len(paths)
						continue
					}
				}

				targets, err := resolveTargets(arg)
				if err != nil {
					return err
				}
				for _, t := range targets {
					path, err := exp.ExportDay(ctx, t, day)
					if err != nil {
						return err
					}
					if path != "" {
						written++
					}
				}
			}

			log.Info().Int("files", written).Msg("Export finished")
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "기준일 (기본: 오늘)")
	return cmd
}

// resolveTargets 그룹 이름 또는 테이블/키
func resolveTargets(arg string) ([]export.Target, error) {
	if targets, err := export.TargetsOf(export.Group(arg)); err == nil {
		return targets, nil
	}
	t, err := export.Lookup(arg)
	if err != nil {
		return nil, err
	}
	return []export.Target{t}, nil
}
