// Package scheduler runs ingest, screen and export jobs on cron specs.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gmdcjdakdcjd/stockbatch/internal/pkg/config"
)

// Runner 작업 실행기 (CLI 명령과 동일한 경로)
type Runner func(ctx context.Context, job config.JobSpec) error

// Scheduler cron 스케줄러
type Scheduler struct {
	cron    *cron.Cron
	run     Runner
	jobs    []config.JobSpec
	baseCtx context.Context
	logger  zerolog.Logger
}

// cronLogger zerolog → cron.Logger
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}

// New 스케줄 등록, 같은 작업이 실행 중이면 다음 회차는 건너뜀
func New(ctx context.Context, schedule *config.Schedule, run Runner) (*Scheduler, error) {
	loc, err := time.LoadLocation(schedule.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", schedule.Timezone, err)
	}

	logger := log.With().Str("component", "scheduler").Logger()
	cl := cronLogger{logger: logger}

	s := &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		run:     run,
		jobs:    schedule.Jobs,
		baseCtx: ctx,
		logger:  logger,
	}

	for _, job := range schedule.Jobs {
		job := job
		if _, err := s.cron.AddFunc(job.Cron, func() { s.execute(job) }); err != nil {
			return nil, fmt.Errorf("register job %s: %w", job.Name, err)
		}
	}
	return s, nil
}

func (s *Scheduler) execute(job config.JobSpec) {
	start := time.Now()
	logger := s.logger.With().Str("job", job.Name).Str("command", job.Command).Strs("args", job.Args).Logger()
	logger.Info().Msg("Job started")

	if err := s.run(s.baseCtx, job); err != nil {
		logger.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("Job failed")
		return
	}
	logger.Info().Dur("elapsed", time.Since(start)).Msg("Job completed")
}

// RunAll 등록 순서대로 즉시 1회 실행 (run_on_start)
func (s *Scheduler) RunAll() {
	for _, job := range s.jobs {
		if s.baseCtx.Err() != nil {
			return
		}
		s.execute(job)
	}
}

// Len 등록된 작업 수
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

// Start 스케줄러 시작
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info().Int("jobs", len(s.jobs)).Msg("Scheduler started")
}

// Stop 실행 중인 작업 종료 대기
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("Scheduler stopped")
}
