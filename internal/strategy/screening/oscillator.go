package screening

import (
	"math"

	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/market"
	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/strategy"
	"github.com/gmdcjdakdcjd/stockbatch/internal/service/signals"
)

const (
	rsiPeriod  = 14
	rsiMinRows = 20
)

// rsiStrategy RSI 과매도/과열
type rsiStrategy struct {
	base
	threshold float64
	oversold  bool
}

func newRSI(name string, m market.Market, threshold float64, oversold bool) *rsiStrategy {
	return &rsiStrategy{
		base:      newBase(name, m, strategy.MetricRSI, months(6)),
		threshold: threshold,
		oversold:  oversold,
	}
}

func (s *rsiStrategy) Screen(in *Input) *Output {
	out := &Output{}
	for _, code := range in.Codes {
		series := in.Series[code]
		if len(series) < rsiMinRows {
			continue
		}

		rsi := signals.RSI(signals.Closes(series), rsiPeriod)
		value := rsi[len(rsi)-1]
		if math.IsNaN(value) {
			continue
		}

		last, prev := series[len(series)-1], series[len(series)-2]
		hit := value >= s.threshold
		if s.oversold {
			hit = value <= s.threshold
		}
		if !hit || !s.aboveFloor(last.Close) {
			continue
		}

		out.Candidates = append(out.Candidates, Candidate{
			Code:      code,
			Date:      last.Date,
			Price:     last.Close,
			PrevClose: prev.Close,
			Diff:      dayRate(prev.Close, last.Close),
			Volume:    last.Volume,
			Special:   signals.Round2(value),
		})
	}

	sortCandidates(out.Candidates, func(c Candidate) float64 { return c.Special }, !s.oversold)
	return out
}

const (
	bandWindow = 20
	bandK      = 2.0
)

// bandTouchStrategy 볼린저 상단/하단 터치
type bandTouchStrategy struct {
	base
	upper bool
}

func newBandTouch(name string, m market.Market, upper bool) *bandTouchStrategy {
	metric := strategy.MetricLowerBand
	if upper {
		metric = strategy.MetricUpperBand
	}
	return &bandTouchStrategy{
		base:  newBase(name, m, metric, months(6)),
		upper: upper,
	}
}

func (s *bandTouchStrategy) Screen(in *Input) *Output {
	out := &Output{}
	for _, code := range in.Codes {
		series := in.Series[code]
		if len(series) < bandWindow {
			continue
		}

		bands := signals.Bollinger(signals.Closes(series), bandWindow, bandK)
		i := len(series) - 1
		band := bands.Lower[i]
		if s.upper {
			band = bands.Upper[i]
		}
		if math.IsNaN(band) || band == 0 {
			continue
		}

		last, prev := series[i], series[i-1]
		gap := (last.Close - band) / band * 100

		var hit bool
		if s.upper {
			hit = gap >= -1.0 && gap <= 1.0
		} else {
			hit = gap >= -0.5 && gap <= 0.5 && last.Close >= band*0.995
		}
		if !hit || !s.aboveFloor(last.Close) {
			continue
		}

		out.Candidates = append(out.Candidates, Candidate{
			Code:      code,
			Date:      last.Date,
			Price:     last.Close,
			PrevClose: prev.Close,
			Diff:      dayRate(prev.Close, last.Close),
			Volume:    last.Volume,
			Special:   signals.Round2(band),
		})
	}

	sortCandidates(out.Candidates, func(c Candidate) float64 { return c.Diff }, s.upper)
	return out
}

const maWindow = 60

// maTouchStrategy 직전 MA60 터치 (일봉/주봉)
type maTouchStrategy struct {
	base
	weekly   bool
	min, max float64
}

func newDailyMATouch(name string, m market.Market) *maTouchStrategy {
	return &maTouchStrategy{
		base: newBase(name, m, strategy.MetricMA60, months(6)),
		min:  -1.0,
		max:  1.0,
	}
}

func newWeeklyMATouch(name string, m market.Market) *maTouchStrategy {
	return &maTouchStrategy{
		base:   newBase(name, m, strategy.MetricWeeklyMA60, years(2)),
		weekly: true,
		min:    -1.0,
		max:    5.0,
	}
}

func (s *maTouchStrategy) Screen(in *Input) *Output {
	out := &Output{}
	for _, code := range in.Codes {
		series := in.Series[code]
		if s.weekly {
			series = signals.ResampleWeekly(series)
		}
		if len(series) < maWindow {
			continue
		}

		ma := signals.SMA(signals.Closes(series), maWindow)
		i := len(series) - 1
		prevMA := ma[i-1]
		if math.IsNaN(prevMA) || prevMA == 0 {
			continue
		}

		last, prev := series[i], series[i-1]
		touch := (last.Close - prevMA) / prevMA * 100
		if touch < s.min || touch > s.max || !s.aboveFloor(last.Close) {
			continue
		}

		diff := dayRate(prev.Close, last.Close)
		if s.weekly {
			// 주봉은 MA 대비 괴리율 저장
			diff = signals.Round2(touch)
		}

		out.Candidates = append(out.Candidates, Candidate{
			Code:      code,
			Date:      last.Date,
			Price:     last.Close,
			PrevClose: prev.Close,
			Diff:      diff,
			Volume:    last.Volume,
			Special:   signals.Round2(prevMA),
		})
	}

	sortCandidates(out.Candidates, func(c Candidate) float64 { return c.Diff }, false)
	return out
}
