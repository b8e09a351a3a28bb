package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gmdcjdakdcjd/stockbatch/internal/api"
	"github.com/gmdcjdakdcjd/stockbatch/internal/api/handlers"
	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/market"
	fetcherrepo "github.com/gmdcjdakdcjd/stockbatch/internal/infra/database/postgres/fetcher"
	strategyrepo "github.com/gmdcjdakdcjd/stockbatch/internal/infra/database/postgres/strategy"
	"github.com/gmdcjdakdcjd/stockbatch/internal/pkg/logger"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "조회 API 서버 (전략 결과, 일봉, 종목)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			accs, err := a.accessors(ctx, market.All())
			if err != nil {
				return err
			}
			sources := make(map[market.Market]handlers.MarketData, len(accs))
			for m, acc := range accs {
				sources[m] = acc
			}

			var accessLogger *zerolog.Logger
			if a.cfg.Logging.FileEnabled {
				l := logger.NewAccessLogger(a.cfg.Logging.FilePath, a.cfg.Logging.RotationSize, a.cfg.Logging.RetentionDays)
				accessLogger = &l
			}

			handler := api.NewRouter(api.Config{
				AllowedOrigins: a.cfg.Server.AllowedOrigins,
				AccessLogger:   accessLogger,
				Health:         handlers.NewHealthHandler(a.pool, serviceVersion),
				Strategy: handlers.NewStrategyHandler(
					strategyrepo.NewResultRepository(a.pool),
					strategyrepo.NewDetailRepository(a.pool),
				),
				Price:    handlers.NewPriceHandler(sources),
				FetchLog: handlers.NewFetchLogHandler(fetcherrepo.NewFetchLogRepository(a.pool)),
			})

			server := &http.Server{
				Addr:         fmt.Sprintf(":%s", a.cfg.Server.Port),
				Handler:      handler,
				ReadTimeout:  a.cfg.Server.ReadTimeout,
				WriteTimeout: a.cfg.Server.WriteTimeout,
				IdleTimeout:  60 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("address", server.Addr).Msg("API server listening")
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			log.Info().Msg("Shutdown signal received, stopping server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}
}
