package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/market"
	"github.com/gmdcjdakdcjd/stockbatch/internal/infra/database/postgres"
	exportrepo "github.com/gmdcjdakdcjd/stockbatch/internal/infra/database/postgres/export"
	fetcherrepo "github.com/gmdcjdakdcjd/stockbatch/internal/infra/database/postgres/fetcher"
	marketrepo "github.com/gmdcjdakdcjd/stockbatch/internal/infra/database/postgres/market"
	strategyrepo "github.com/gmdcjdakdcjd/stockbatch/internal/infra/database/postgres/strategy"
	"github.com/gmdcjdakdcjd/stockbatch/internal/infra/external/nasdaq"
	"github.com/gmdcjdakdcjd/stockbatch/internal/infra/external/naver"
	"github.com/gmdcjdakdcjd/stockbatch/internal/infra/external/samsungfund"
	"github.com/gmdcjdakdcjd/stockbatch/internal/infra/external/wikipedia"
	"github.com/gmdcjdakdcjd/stockbatch/internal/infra/external/yahoo"
	"github.com/gmdcjdakdcjd/stockbatch/internal/pkg/config"
	"github.com/gmdcjdakdcjd/stockbatch/internal/pkg/sentinel"
	exportsvc "github.com/gmdcjdakdcjd/stockbatch/internal/service/export"
	fetchersvc "github.com/gmdcjdakdcjd/stockbatch/internal/service/fetcher"
	marketsvc "github.com/gmdcjdakdcjd/stockbatch/internal/service/market"
	"github.com/gmdcjdakdcjd/stockbatch/internal/strategy/screening"
)

// app 명령 1회 실행에 필요한 의존성
type app struct {
	cfg  *config.Config
	pool *postgres.Pool
	out  *sentinel.Writer

	instruments *marketrepo.InstrumentRepository
	prices      *marketrepo.PriceRepository
}

func openApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:         cfg,
		pool:        pool,
		out:         sentinel.Stdout(),
		instruments: marketrepo.NewInstrumentRepository(pool),
		prices:      marketrepo.NewPriceRepository(pool),
	}, nil
}

func (a *app) Close() {
	a.pool.Close()
}

// accessors 시장별 코드 스냅샷 + 시세 조회
func (a *app) accessors(ctx context.Context, markets []market.Market) (map[market.Market]*marketsvc.Accessor, error) {
	out := make(map[market.Market]*marketsvc.Accessor, len(markets))
	for _, m := range markets {
		if _, ok := out[m]; ok {
			continue
		}
		acc, err := marketsvc.NewAccessor(ctx, m, a.instruments, a.prices)
		if err != nil {
			return nil, fmt.Errorf("%s accessor: %w", m, err)
		}
		out[m] = acc
	}
	return out, nil
}

func (a *app) fetcherService() *fetchersvc.Service {
	ing := a.cfg.Ingest
	rateLimit := time.Duration(ing.RateLimitMs) * time.Millisecond

	svcCfg := fetchersvc.DefaultConfig()
	svcCfg.PagesToFetch = ing.PagesToFetch
	svcCfg.IndicatorPages = ing.IndicatorPages
	svcCfg.RateLimit = rateLimit
	if ing.USRange != "" {
		svcCfg.USRange = ing.USRange
	}

	clients := fetchersvc.Clients{
		Naver: naver.NewClient(a.cfg.Naver.BaseURL, ing.Timeout),
		Yahoo: yahoo.NewClient(a.cfg.Yahoo.BaseURL, a.cfg.Yahoo.Proxy, ing.Timeout),
		SP500: wikipedia.NewClient(ing.WikipediaURL, ing.Timeout),
		ETFs:  nasdaq.NewClient(ing.NasdaqBaseURL, ing.Timeout, rateLimit),
		Kodex: samsungfund.NewClient(ing.KodexBaseURL, ing.Timeout),
	}

	repos := fetchersvc.Repositories{
		Instruments: a.instruments,
		Prices:      a.prices,
		Indicators:  marketrepo.NewIndicatorRepository(a.pool),
		Kodex:       fetcherrepo.NewKodexRepository(a.pool),
		FetchLogs:   fetcherrepo.NewFetchLogRepository(a.pool),
	}

	return fetchersvc.NewService(svcCfg, clients, repos, a.out)
}

func (a *app) executor(ctx context.Context, list []screening.Strategy) (*screening.Executor, error) {
	markets := make([]market.Market, 0, len(list))
	for _, st := range list {
		markets = append(markets, st.Market())
	}

	accs, err := a.accessors(ctx, markets)
	if err != nil {
		return nil, err
	}
	sources := make(map[market.Market]screening.PriceSource, len(accs))
	for m, acc := range accs {
		sources[m] = acc
	}

	log.Debug().Int("markets", len(sources)).Int("strategies", len(list)).Msg("Executor ready")
	return screening.NewExecutor(
		sources,
		strategyrepo.NewResultRepository(a.pool),
		strategyrepo.NewDetailRepository(a.pool),
		strategyrepo.NewSignalStateRepository(a.pool),
		a.out,
	), nil
}

func (a *app) exporter() (*exportsvc.Exporter, error) {
	return exportsvc.NewExporter(exportrepo.NewSnapshotRepository(a.pool), exportsvc.Config{
		OutBase:  a.cfg.Export.OutBase,
		Timezone: a.cfg.Export.Timezone,
		Parallel: a.cfg.Export.Parallel,
	})
}

// tableLayout migrate 대상 테이블
func tableLayout() (instruments, prices []string) {
	for _, m := range market.All() {
		spec, _ := market.SpecFor(m)
		instruments = append(instruments, spec.InstrumentTable)
		prices = append(prices, spec.PriceTable)
	}
	return instruments, prices
}
