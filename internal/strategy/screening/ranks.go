package screening

import (
	"math"

	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/market"
	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/strategy"
	"github.com/gmdcjdakdcjd/stockbatch/internal/service/signals"
)

const spikeThreshold = 7.0

// spikeStrategy 전일 대비 급등/급락
type spikeStrategy struct {
	base
	rise bool
}

func newSpike(name string, m market.Market, rise bool) *spikeStrategy {
	return &spikeStrategy{
		base: newBase(name, m, strategy.MetricRank, days(5)),
		rise: rise,
	}
}

func (s *spikeStrategy) Screen(in *Input) *Output {
	out := &Output{}
	for _, code := range in.Codes {
		series := in.Series[code]
		if len(series) < 2 {
			continue
		}

		last, prev := series[len(series)-1], series[len(series)-2]
		rate := signals.PctChange(prev.Close, last.Close)
		if math.IsNaN(rate) {
			continue
		}

		hit := rate <= -spikeThreshold
		if s.rise {
			hit = rate >= spikeThreshold
		}
		if !hit || !s.aboveFloor(last.Close) {
			continue
		}

		out.Candidates = append(out.Candidates, Candidate{
			Code:      code,
			Date:      last.Date,
			Price:     last.Close,
			PrevClose: prev.Close,
			Diff:      signals.Round2(rate),
			Volume:    last.Volume,
		})
	}

	sortCandidates(out.Candidates, func(c Candidate) float64 { return c.Diff }, s.rise)
	assignRank(out.Candidates)
	return out
}

const volumeTopN = 20

// volumeTopStrategy 거래량 상위
type volumeTopStrategy struct {
	base
	limit int
}

func newVolumeTop(name string, m market.Market) *volumeTopStrategy {
	return &volumeTopStrategy{
		base:  newBase(name, m, strategy.MetricRank, days(5)),
		limit: volumeTopN,
	}
}

func (s *volumeTopStrategy) Screen(in *Input) *Output {
	out := &Output{}
	for _, code := range in.Codes {
		series := in.Series[code]
		if len(series) < 2 {
			continue
		}

		last, prev := series[len(series)-1], series[len(series)-2]
		if last.Volume <= 0 {
			continue
		}

		diff := dayRate(prev.Close, last.Close)
		if math.IsNaN(diff) {
			diff = 0
		}

		out.Candidates = append(out.Candidates, Candidate{
			Code:      code,
			Date:      last.Date,
			Price:     last.Close,
			PrevClose: prev.Close,
			Diff:      diff,
			Volume:    last.Volume,
		})
	}

	sortCandidates(out.Candidates, func(c Candidate) float64 { return float64(c.Volume) }, true)
	if len(out.Candidates) > s.limit {
		out.Candidates = out.Candidates[:s.limit]
	}
	assignRank(out.Candidates)
	return out
}
