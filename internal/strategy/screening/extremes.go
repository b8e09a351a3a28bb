package screening

import (
	"math"
	"time"

	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/market"
	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/strategy"
	"github.com/gmdcjdakdcjd/stockbatch/internal/service/signals"
)

// extremeStrategy 신고가/신저가 최초 발생
type extremeStrategy struct {
	base
	high    bool
	weekly  bool
	window  int
	minRows int // 일봉 최소 개수
}

func newWeeklyExtreme(name string, m market.Market, high bool) *extremeStrategy {
	metric := strategy.MetricLow52W
	if high {
		metric = strategy.MetricHigh52W
	}
	s := &extremeStrategy{
		base:    newBase(name, m, metric, days(400)),
		high:    high,
		weekly:  true,
		window:  52,
		minRows: 260,
	}
	s.opts.Stateful = true
	return s
}

func newDailyExtreme(name string, m market.Market, high bool) *extremeStrategy {
	metric := strategy.MetricLow120D
	if high {
		metric = strategy.MetricHigh120D
	}
	s := &extremeStrategy{
		base:    newBase(name, m, metric, days(200)),
		high:    high,
		window:  120,
		minRows: 120,
	}
	s.opts.Stateful = true
	return s
}

// reached 종가가 rolling 극값에 도달 (NaN이면 false)
func (s *extremeStrategy) reached(close, extreme float64) bool {
	if math.IsNaN(extreme) {
		return false
	}
	if s.high {
		return close >= extreme
	}
	return close <= extreme
}

func (s *extremeStrategy) Screen(in *Input) *Output {
	out := &Output{}
	for _, code := range in.Codes {
		series := in.Series[code]
		if len(series) < s.minRows {
			continue
		}
		if s.weekly {
			series = signals.ResampleWeekly(signals.CloseOnly(series))
		}
		if len(series) < s.window || len(series) < 2 {
			continue
		}

		closes := signals.Closes(series)
		extremes := signals.RollingMax(closes, s.window)
		if !s.high {
			extremes = signals.RollingMin(closes, s.window)
		}

		i := len(series) - 1
		last, prev := series[i], series[i-1]
		now := s.reached(last.Close, extremes[i])
		state := in.States[code]
		held := s.previouslyHeld(state, last.Date, prev.Date, prev.Close, extremes[i-1])
		signal := now && !held && s.aboveFloor(last.Close)

		out.States = append(out.States, nextState(s.name, code, state, now, signal, last.Date))
		if !signal {
			continue
		}

		out.Candidates = append(out.Candidates, Candidate{
			Code:      code,
			Date:      last.Date,
			Price:     last.Close,
			PrevClose: prev.Close,
			Diff:      dayRate(prev.Close, last.Close),
			Volume:    last.Volume,
			Special:   extremes[i],
		})
	}

	sortCandidates(out.Candidates, func(c Candidate) float64 { return c.Price }, s.high)
	return out
}

// previouslyHeld 직전 기간에 이미 조건을 충족했는지
// 저장된 상태가 직전 기간 이후에 평가된 것이면 그 값을 쓰고,
// 아니면 직전 행과 직전 rolling 극값을 비교
func (s *extremeStrategy) previouslyHeld(state *strategy.SignalState, lastDate, prevDate time.Time, prevClose, prevExtreme float64) bool {
	if state != nil {
		switch {
		case state.EvaluatedDate.Equal(lastDate):
			// 같은 기간 재실행: 이미 신호를 냈다면 그대로 유지
			if state.LastSignalDate != nil && state.LastSignalDate.Equal(lastDate) {
				return false
			}
		case !state.EvaluatedDate.Before(prevDate) && state.EvaluatedDate.Before(lastDate):
			return state.Active
		}
	}

	// 극값 계산 불가(NaN)면 신호 없음으로 처리
	if math.IsNaN(prevExtreme) {
		return true
	}
	return s.reached(prevClose, prevExtreme)
}

func nextState(name, code string, prev *strategy.SignalState, active, signaled bool, date time.Time) *strategy.SignalState {
	st := &strategy.SignalState{
		StrategyName:  name,
		Code:          code,
		Active:        active,
		EvaluatedDate: date,
	}
	if prev != nil {
		st.LastSignalDate = prev.LastSignalDate
	}
	if signaled {
		d := date
		st.LastSignalDate = &d
	}
	return st
}
