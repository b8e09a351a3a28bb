package screening

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/market"
	"github.com/gmdcjdakdcjd/stockbatch/internal/service/signals"
)

func TestRankMomentum(t *testing.T) {
	returns := map[string]float64{"A": 60, "B": 45, "C": 10}

	got := RankMomentum(returns, 2, 40, 20)
	assert.Equal(t, []Ranked{{"A", 60}, {"B", 45}}, got)
}

func TestRankMomentum_TopKBeforeFloor(t *testing.T) {
	returns := map[string]float64{"A": 60, "B": 45, "C": 42, "D": 5}

	// C는 floor를 넘지만 상대 모멘텀 상위 2개에 들지 못함
	got := RankMomentum(returns, 2, 40, 20)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Code)
	assert.Equal(t, "B", got[1].Code)

	got = RankMomentum(returns, 4, 0, 3)
	require.Len(t, got, 3)
	assert.Equal(t, "C", got[2].Code)
}

func TestRankMomentum_SkipsInvalid(t *testing.T) {
	returns := map[string]float64{"A": math.NaN(), "B": math.Inf(1), "C": 50}
	got := RankMomentum(returns, 40, 40, 20)
	assert.Equal(t, []Ranked{{"C", 50}}, got)
}

func TestDualMomentum_Screen(t *testing.T) {
	from := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	mid := from.AddDate(0, 0, 10)

	series := func(start, end float64) []signals.PricePoint {
		return []signals.PricePoint{
			{Date: from, Close: start},
			{Date: mid, Close: (start + end) / 2},
			{Date: to, Close: end, Volume: 1000},
		}
	}

	s := newDualMomentum("DUAL_MOMENTUM_1M_US", market.USStock, 30, 40)
	s.topK = 2

	out := s.Screen(&Input{
		From:  from,
		To:    to,
		Codes: []string{"A", "B", "C", "D"},
		Series: map[string][]signals.PricePoint{
			"A": series(100, 160),
			"B": series(100, 145),
			"C": series(100, 110),
			// 시작일 데이터 없음
			"D": {{Date: mid, Close: 10}, {Date: to, Close: 100}},
		},
	})

	require.Len(t, out.Candidates, 2)
	a, b := out.Candidates[0], out.Candidates[1]
	assert.Equal(t, "A", a.Code)
	assert.InDelta(t, 60.0, a.Diff, 1e-9)
	assert.Equal(t, 160.0, a.Price)
	assert.Equal(t, 100.0, a.PrevClose)
	assert.Equal(t, 1.0, a.Special)
	assert.Equal(t, to, a.Date)
	assert.Equal(t, "B", b.Code)
	assert.Equal(t, 2.0, b.Special)
}
