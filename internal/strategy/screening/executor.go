package screening

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/market"
	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/strategy"
	"github.com/gmdcjdakdcjd/stockbatch/internal/pkg/sentinel"
	"github.com/gmdcjdakdcjd/stockbatch/internal/service/signals"
)

// unknownName 종목명 조회 실패 시 저장 값
const unknownName = "UNKNOWN"

// PriceSource 시장별 시세 조회 (market.Accessor)
type PriceSource interface {
	Universe() []string
	Name(code string) string
	GetBulkRange(ctx context.Context, from, to time.Time) ([]*market.DailyPrice, error)
	LatestTradingDay(ctx context.Context, date time.Time) (*time.Time, error)
}

// Executor 전략 실행기: Load → Compute → Filter → Persist
type Executor struct {
	sources    map[market.Market]PriceSource
	resultRepo strategy.ResultRepository
	detailRepo strategy.DetailRepository
	stateRepo  strategy.SignalStateRepository
	out        *sentinel.Writer
}

// NewExecutor 실행기 생성
func NewExecutor(
	sources map[market.Market]PriceSource,
	resultRepo strategy.ResultRepository,
	detailRepo strategy.DetailRepository,
	stateRepo strategy.SignalStateRepository,
	out *sentinel.Writer,
) *Executor {
	if out == nil {
		out = sentinel.Discard()
	}
	return &Executor{
		sources:    sources,
		resultRepo: resultRepo,
		detailRepo: detailRepo,
		stateRepo:  stateRepo,
		out:        out,
	}
}

// Run 전략 1회 실행
// 통과 종목이 없으면 아무것도 저장하지 않고 ROWCOUNT=0
func (e *Executor) Run(ctx context.Context, st Strategy, asOf time.Time) (*strategy.RunSummary, error) {
	logger := log.With().Str("strategy", st.Name()).Logger()
	startTime := time.Now()

	src, ok := e.sources[st.Market()]
	if !ok {
		return nil, fmt.Errorf("%w: no price source for %s", market.ErrUnknownMarket, st.Market())
	}

	summary := &strategy.RunSummary{
		StrategyName: st.Name(),
		Details:      []*strategy.Detail{},
	}

	// 1. Universe
	codes := src.Universe()
	summary.Universe = len(codes)
	if len(codes) == 0 {
		logger.Warn().Msg("Empty universe, skipping")
		e.out.RowCount(0)
		return summary, nil
	}

	// 2. Load
	from, to := st.Window(asOf)
	if st.Options().SnapToTradingDays {
		var err error
		if from, to, err = e.snap(ctx, src, from, to); err != nil {
			if market.IsNotFoundError(err) {
				logger.Warn().Err(err).Msg("No trading day in window, skipping")
				e.out.RowCount(0)
				return summary, nil
			}
			return nil, err
		}
	}

	rows, err := src.GetBulkRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("load prices: %w", err)
	}
	if len(rows) == 0 {
		logger.Warn().
			Time("from", from).
			Time("to", to).
			Msg("No price data in window, skipping")
		e.out.RowCount(0)
		return summary, nil
	}

	in := &Input{
		AsOf:   asOf,
		From:   from,
		To:     to,
		Codes:  codes,
		Series: groupByCode(rows, codes),
	}
	if st.Options().Stateful {
		states, err := e.stateRepo.ListByStrategy(ctx, st.Name())
		if err != nil {
			return nil, fmt.Errorf("load signal state: %w", err)
		}
		in.States = states
	}

	// 3. Compute + Filter + Rank
	output := st.Screen(in)

	if len(output.Candidates) == 0 {
		if err := e.saveStates(ctx, st, output); err != nil {
			return nil, err
		}
		logger.Info().
			Int("universe", len(codes)).
			Dur("elapsed", time.Since(startTime)).
			Msg("No candidates, nothing saved")
		e.out.RowCount(0)
		return summary, nil
	}

	// 4. Persist
	result := &strategy.Result{
		ID:           uuid.New(),
		StrategyName: st.Name(),
		SignalDate:   output.Candidates[0].Date,
		SignalType:   st.Name(),
		TotalData:    len(output.Candidates),
	}
	if err := e.resultRepo.Create(ctx, result); err != nil {
		return nil, fmt.Errorf("save result: %w", err)
	}

	details := make([]*strategy.Detail, 0, len(output.Candidates))
	for _, c := range output.Candidates {
		name := src.Name(c.Code)
		if name == "" {
			name = unknownName
		}
		details = append(details, &strategy.Detail{
			ResultID:     result.ID,
			SignalDate:   c.Date,
			Code:         c.Code,
			Name:         name,
			Action:       st.Name(),
			Price:        finite(c.Price),
			PrevClose:    finite(c.PrevClose),
			Diff:         finite(c.Diff),
			Volume:       c.Volume,
			SpecialValue: finite(c.Special),
			MetricName:   st.Metric(),
		})
	}

	saved, err := e.detailRepo.UpsertBatch(ctx, details)
	if err != nil {
		return nil, fmt.Errorf("save details: %w", err)
	}
	// 상세 저장 후에만 신호 상태 갱신
	if err := e.saveStates(ctx, st, output); err != nil {
		return nil, err
	}

	summary.ResultID = result.ID
	summary.SignalDate = result.SignalDate
	summary.RowCount = len(details)
	summary.Details = details

	e.out.ResultID(result.ID)
	e.out.RowCount(len(details))

	logger.Info().
		Str("result_id", result.ID.String()).
		Int("universe", len(codes)).
		Int("rows", len(details)).
		Int("saved", saved).
		Dur("elapsed", time.Since(startTime)).
		Msg("Strategy saved")

	return summary, nil
}

func (e *Executor) saveStates(ctx context.Context, st Strategy, output *Output) error {
	if !st.Options().Stateful || len(output.States) == 0 {
		return nil
	}
	if _, err := e.stateRepo.UpsertBatch(ctx, output.States); err != nil {
		return fmt.Errorf("save signal state: %w", err)
	}
	return nil
}

// RunAll 여러 전략 순차 실행 (전략별 실패는 기록 후 계속)
func (e *Executor) RunAll(ctx context.Context, list []Strategy, asOf time.Time) ([]*strategy.RunSummary, error) {
	summaries := make([]*strategy.RunSummary, 0, len(list))
	failed := 0
	for _, st := range list {
		if err := ctx.Err(); err != nil {
			return summaries, err
		}
		s, err := e.Run(ctx, st, asOf)
		if err != nil {
			log.Error().Err(err).Str("strategy", st.Name()).Msg("Strategy failed")
			failed++
			continue
		}
		summaries = append(summaries, s)
	}
	if failed > 0 && len(summaries) == 0 {
		return summaries, fmt.Errorf("all %d strategies failed", failed)
	}
	return summaries, nil
}

// snap 양 끝을 해당일 이하 마지막 거래일로 보정
func (e *Executor) snap(ctx context.Context, src PriceSource, from, to time.Time) (time.Time, time.Time, error) {
	start, err := src.LatestTradingDay(ctx, from)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := src.LatestTradingDay(ctx, to)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if start == nil || end == nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: no trading day on or before %s",
			market.ErrPriceNotFound, from.Format("2006-01-02"))
	}
	return *start, *end, nil
}

// groupByCode (code, date) 정렬된 일봉을 유니버스 종목별로 분리
func groupByCode(rows []*market.DailyPrice, codes []string) map[string][]signals.PricePoint {
	universe := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		universe[c] = struct{}{}
	}

	grouped := make(map[string][]*market.DailyPrice, len(codes))
	for _, r := range rows {
		if _, ok := universe[r.Code]; !ok {
			continue
		}
		grouped[r.Code] = append(grouped[r.Code], r)
	}

	series := make(map[string][]signals.PricePoint, len(grouped))
	for code, g := range grouped {
		series[code] = signals.FromDaily(g)
	}
	return series
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
