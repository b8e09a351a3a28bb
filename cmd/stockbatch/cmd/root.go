// Package cmd - stockbatch CLI commands
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gmdcjdakdcjd/stockbatch/internal/pkg/config"
	"github.com/gmdcjdakdcjd/stockbatch/internal/pkg/logger"
)

const (
	serviceName    = "stockbatch"
	serviceVersion = "1.0.0"
)

var (
	cfg     *config.Config
	cfgOnce sync.Once
	cfgErr  error
)

// loadConfig .env 로드 + 로거 초기화 (프로세스당 1회)
func loadConfig() (*config.Config, error) {
	cfgOnce.Do(func() {
		cfg, cfgErr = config.Load()
		if cfgErr != nil {
			return
		}

		if loc, err := time.LoadLocation(cfg.Export.Timezone); err == nil {
			time.Local = loc
		}

		cfgErr = logger.Init(logger.Config{
			Level:          cfg.Logging.Level,
			Format:         cfg.Logging.Format,
			FileEnabled:    cfg.Logging.FileEnabled,
			FilePath:       cfg.Logging.FilePath,
			RotationSize:   cfg.Logging.RotationSize,
			RetentionDays:  cfg.Logging.RetentionDays,
			ServiceName:    serviceName,
			ServiceVersion: serviceVersion,
		})
	})
	return cfg, cfgErr
}

// newRootCmd 루트 커맨드 (schedule 에서 작업마다 새로 생성)
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "stockbatch",
		Short: "KR/US market data batch - ingest, screen, export",
		Long: `KR/US market data batch

Commands:
    ingest      prices/indicators/instruments/kodex 수집
    screen      기술적 스크리닝 전략 실행 (ROWCOUNT=, RESULT_ID=)
    export      오늘 적재분 CSV 내보내기
    schedule    schedule.yaml 기반 cron 실행
    serve       조회 API 서버
    migrate     스키마/테이블 생성
`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := loadConfig()
			return err
		},
	}

	root.AddCommand(
		newIngestCmd(),
		newScreenCmd(),
		newExportCmd(),
		newScheduleCmd(),
		newServeCmd(),
		newMigrateCmd(),
	)
	return root
}

// Execute 루트 커맨드 실행, SIGINT/SIGTERM 시 context 취소
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("Command failed")
		return err
	}
	return nil
}

// runArgs 같은 프로세스에서 하위 커맨드 실행 (스케줄러용)
func runArgs(ctx context.Context, args []string) error {
	root := newRootCmd()
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		return fmt.Errorf("%v: %w", args, err)
	}
	return nil
}
