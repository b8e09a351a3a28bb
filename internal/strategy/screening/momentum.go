package screening

import (
	"math"
	"sort"

	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/market"
	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/strategy"
	"github.com/gmdcjdakdcjd/stockbatch/internal/service/signals"
)

// Ranked 수익률 순위
type Ranked struct {
	Code   string
	Return float64
}

// RankMomentum 듀얼 모멘텀 선별
// 수익률 내림차순 상위 topK (상대 모멘텀) → floor 초과 (절대 모멘텀) → limit개
func RankMomentum(returns map[string]float64, topK int, floor float64, limit int) []Ranked {
	ranked := make([]Ranked, 0, len(returns))
	for code, r := range returns {
		if math.IsNaN(r) || math.IsInf(r, 0) {
			continue
		}
		ranked = append(ranked, Ranked{Code: code, Return: r})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Return != ranked[j].Return {
			return ranked[i].Return > ranked[j].Return
		}
		return ranked[i].Code < ranked[j].Code
	})

	if topK >= 0 && len(ranked) > topK {
		ranked = ranked[:topK]
	}

	out := make([]Ranked, 0, len(ranked))
	for _, r := range ranked {
		if r.Return > floor {
			out = append(out, r)
		}
	}

	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// dualMomentumStrategy 기간 수익률 상대/절대 모멘텀
type dualMomentumStrategy struct {
	base
	topK  int
	floor float64
	limit int
}

func newDualMomentum(name string, m market.Market, lookbackDays int, floor float64) *dualMomentumStrategy {
	s := &dualMomentumStrategy{
		base:  newBase(name, m, strategy.MetricRank, days(lookbackDays)),
		topK:  40,
		floor: floor,
		limit: 20,
	}
	s.opts.SnapToTradingDays = true
	return s
}

func (s *dualMomentumStrategy) Screen(in *Input) *Output {
	type endpoints struct {
		start, end signals.PricePoint
	}

	points := make(map[string]endpoints, len(in.Codes))
	returns := make(map[string]float64, len(in.Codes))
	for _, code := range in.Codes {
		var ep endpoints
		var hasStart, hasEnd bool
		for _, p := range in.Series[code] {
			if p.Date.Equal(in.From) {
				ep.start, hasStart = p, true
			}
			if p.Date.Equal(in.To) {
				ep.end, hasEnd = p, true
			}
		}
		if !hasStart || !hasEnd || ep.start.Close == 0 {
			continue
		}
		points[code] = ep
		returns[code] = signals.PctChange(ep.start.Close, ep.end.Close)
	}

	out := &Output{}
	for i, r := range RankMomentum(returns, s.topK, s.floor, s.limit) {
		ep := points[r.Code]
		out.Candidates = append(out.Candidates, Candidate{
			Code:      r.Code,
			Date:      in.To,
			Price:     ep.end.Close,
			PrevClose: ep.start.Close,
			Diff:      signals.Round2(r.Return),
			Volume:    ep.end.Volume,
			Special:   float64(i + 1),
		})
	}
	return out
}
