package cmd

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gmdcjdakdcjd/stockbatch/internal/pkg/config"
	"github.com/gmdcjdakdcjd/stockbatch/internal/service/scheduler"
)

func newScheduleCmd() *cobra.Command {
	var (
		file       string
		runOnStart bool
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "schedule.yaml 기반 cron 실행",
		Long: `schedule.yaml 의 작업(ingest/screen/export)을 cron 으로 실행합니다. Ctrl+C 로 종료합니다.

Example schedule.yaml:
  timezone: Asia/Seoul
  jobs:
    - name: kr-prices
      cron: "0 30 18 * * 1-5"
      command: ingest
      args: [prices, KR_STOCK, KR_ETF]`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if file == "" {
				file = cfg.Schedule.FilePath
			}

			schedule, err := config.LoadSchedule(file)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			s, err := scheduler.New(ctx, schedule, func(ctx context.Context, job config.JobSpec) error {
				return runArgs(ctx, append([]string{job.Command}, job.Args...))
			})
			if err != nil {
				return err
			}

			if runOnStart || schedule.RunOnStart {
				s.RunAll()
			}

			s.Start()
			log.Info().Str("file", file).Int("jobs", s.Len()).Msg("Waiting for scheduled jobs")

			<-ctx.Done()
			s.Stop()
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "스케줄 파일 (기본: SCHEDULE_FILE)")
	cmd.Flags().BoolVar(&runOnStart, "run-on-start", false, "시작 시 전체 작업 1회 실행")
	return cmd
}
