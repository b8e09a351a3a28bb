// Package fetcher runs the ingest jobs: scrape external sources and
// upsert prices, indicators, instrument masters and KODEX holdings.
package fetcher

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/fetcher"
	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/market"
	"github.com/gmdcjdakdcjd/stockbatch/internal/pkg/sentinel"
)

// Config 서비스 설정
type Config struct {
	// 종목당 sise_day 최대 페이지 수
	PagesToFetch int

	// 지표별 최대 페이지 수
	IndicatorPages int

	// 목록 페이지 상한 (시가총액 목록)
	ListingPages int

	// 요청 간 고정 대기
	RateLimit time.Duration

	// Yahoo chart range
	USRange string
}

// DefaultConfig 기본 설정
func DefaultConfig() *Config {
	return &Config{
		PagesToFetch:   1,
		IndicatorPages: 1,
		ListingPages:   50,
		USRange:        "5d",
	}
}

// Clients 외부 수집 원천
type Clients struct {
	Naver fetcher.NaverClient
	Yahoo fetcher.YahooClient
	SP500 fetcher.SP500Source
	ETFs  fetcher.ETFScreener
	Kodex fetcher.KodexClient
}

// Repositories 저장소
type Repositories struct {
	Instruments market.InstrumentRepository
	Prices      market.PriceRepository
	Indicators  market.IndicatorRepository
	Kodex       fetcher.KodexRepository
	FetchLogs   fetcher.FetchLogRepository
}

// Service 수집 서비스
type Service struct {
	config  *Config
	clients Clients
	repos   Repositories
	out     *sentinel.Writer
	now     func() time.Time
}

// NewService 서비스 생성
func NewService(config *Config, clients Clients, repos Repositories, out *sentinel.Writer) *Service {
	if config == nil {
		config = DefaultConfig()
	}
	if out == nil {
		out = sentinel.Discard()
	}
	return &Service{
		config:  config,
		clients: clients,
		repos:   repos,
		out:     out,
		now:     time.Now,
	}
}

// run 수집 작업 공통 처리: fetch_logs 기록(running → completed/failed), 결과 집계
func (s *Service) run(ctx context.Context, jobType fetcher.JobType, source, target string, job func(*fetcher.FetchResult) error) (*fetcher.FetchResult, error) {
	startTime := s.now()
	logger := log.With().Str("collector", string(jobType)).Str("target", target).Logger()
	logger.Info().Str("source", source).Msg("Ingest started")

	entry := &fetcher.FetchLog{
		JobType:     string(jobType),
		Source:      source,
		TargetTable: target,
		Status:      string(fetcher.StatusRunning),
		StartedAt:   startTime,
	}
	if s.repos.FetchLogs != nil {
		created, err := s.repos.FetchLogs.Create(ctx, entry)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to save fetch log")
		} else {
			entry = created
		}
	}

	result := &fetcher.FetchResult{
		JobType: jobType,
		Source:  source,
		Target:  target,
	}
	jobErr := job(result)

	finishedAt := s.now()
	durationMs := int(finishedAt.Sub(startTime).Milliseconds())
	result.Duration = finishedAt.Sub(startTime).Seconds()
	result.CompletedAt = finishedAt

	entry.RecordsFetched = result.TotalRows
	entry.RecordsInserted = result.TotalRows
	entry.CodesProcessed = result.SuccessCount
	entry.CodesFailed = result.FailedCount
	entry.FinishedAt = &finishedAt
	entry.DurationMs = &durationMs
	entry.Status = string(fetcher.StatusCompleted)
	// 전부 실패했으면 실패로 기록
	if jobErr != nil || (result.FailedCount > 0 && result.SuccessCount == 0) {
		entry.Status = string(fetcher.StatusFailed)
		msg := ""
		if jobErr != nil {
			msg = jobErr.Error()
		} else if len(result.Errors) > 0 {
			msg = result.Errors[0]
		}
		entry.ErrorMessage = &msg
	}

	if s.repos.FetchLogs != nil && entry.ID != 0 {
		if err := s.repos.FetchLogs.Update(ctx, entry); err != nil {
			logger.Warn().Err(err).Msg("Failed to update fetch log")
		}
	}

	if jobErr != nil {
		logger.Error().Err(jobErr).Msg("Ingest failed")
		return result, jobErr
	}

	logger.Info().
		Int("rows", result.TotalRows).
		Int("success", result.SuccessCount).
		Int("failed", result.FailedCount).
		Dur("elapsed", finishedAt.Sub(startTime)).
		Msg("Ingest completed")
	return result, nil
}

// fail 종목/원천 단위 실패 기록
func fail(result *fetcher.FetchResult, key string, err error) {
	result.FailedCount++
	result.Errors = append(result.Errors, key+": "+err.Error())
}

// pause 요청 간 고정 대기
func (s *Service) pause(ctx context.Context) error {
	if s.config.RateLimit <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.config.RateLimit)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
