package signals

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMA(t *testing.T) {
	got := SMA([]float64{1, 2, 3, 4, 5}, 3)
	require.Len(t, got, 5)
	assert.True(t, math.IsNaN(got[0]))
	assert.True(t, math.IsNaN(got[1]))
	assert.InDelta(t, 2.0, got[2], 1e-9)
	assert.InDelta(t, 3.0, got[3], 1e-9)
	assert.InDelta(t, 4.0, got[4], 1e-9)
}

func TestRollingStd_Population(t *testing.T) {
	got := RollingStd([]float64{1, 2, 3}, 3)
	assert.InDelta(t, math.Sqrt(2.0/3.0), got[2], 1e-9)
}

func TestBollinger_Containment(t *testing.T) {
	values := []float64{100, 102, 101, 105, 107, 104, 103, 108, 110, 109, 111, 108, 106, 107, 112, 115, 113, 114, 116, 118, 117, 119}
	b := Bollinger(values, 20, 2)

	for i := range values {
		if i < 19 {
			assert.True(t, math.IsNaN(b.Upper[i]))
			continue
		}
		assert.LessOrEqual(t, b.Lower[i], b.Mid[i])
		assert.LessOrEqual(t, b.Mid[i], b.Upper[i])
		assert.InDelta(t, 4*b.Std[i], b.Upper[i]-b.Lower[i], 1e-9)
	}
}

func steps(start float64, deltas ...float64) []float64 {
	values := []float64{start}
	for _, d := range deltas {
		values = append(values, values[len(values)-1]+d)
	}
	return values
}

func alternating(n int, up, down float64) []float64 {
	deltas := make([]float64, n)
	for i := range deltas {
		if i%2 == 0 {
			deltas[i] = up
		} else {
			deltas[i] = -down
		}
	}
	return deltas
}

func TestRSI_RollingMean(t *testing.T) {
	tests := []struct {
		name   string
		deltas []float64
		want   float64
	}{
		// avgGain 3·7/14 = 1.5, avgLoss 1·7/14 = 0.5, RS 3
		{"mostly up", alternating(14, 3, 1), 75},
		{"mostly down", alternating(14, 1, 3), 25},
		{"only losses", alternating(14, 0, 2), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rsi := RSI(steps(100, tt.deltas...), 14)
			require.Len(t, rsi, 15)
			assert.True(t, math.IsNaN(rsi[13]))
			assert.InDelta(t, tt.want, rsi[14], 1e-9)
		})
	}
}

func TestRSI_OnlyLastWindowCounts(t *testing.T) {
	// 40일 하락 후 14일 +60/−100 교차
	deltas := make([]float64, 0, 54)
	for i := 0; i < 40; i++ {
		deltas = append(deltas, -10)
	}
	deltas = append(deltas, alternating(14, 60, 100)...)

	rsi := RSI(steps(10000, deltas...), 14)
	require.Len(t, rsi, 55)

	assert.InDelta(t, 0.0, rsi[40], 1e-9)
	// avgGain 60·7/14 = 30, avgLoss 100·7/14 = 50, RS 0.6
	assert.InDelta(t, 37.5, rsi[54], 1e-9)
}

func TestRSI_NoLossIsNaN(t *testing.T) {
	values := make([]float64, 30)
	for i := range values {
		values[i] = float64(100 + i)
	}
	for _, v := range RSI(values, 14) {
		assert.True(t, math.IsNaN(v))
	}
}

func TestRSI_TooShort(t *testing.T) {
	rsi := RSI([]float64{1, 2, 3}, 14)
	require.Len(t, rsi, 3)
	for _, v := range rsi {
		assert.True(t, math.IsNaN(v))
	}
}

func TestRollingMaxMin(t *testing.T) {
	values := []float64{1, 3, 2, 5, 4}

	hi := RollingMax(values, 2)
	assert.True(t, math.IsNaN(hi[0]))
	assert.Equal(t, []float64{3, 3, 5, 5}, hi[1:])

	lo := RollingMin(values, 3)
	assert.Equal(t, []float64{1, 2, 2}, lo[2:])
}

func TestPctChange(t *testing.T) {
	assert.InDelta(t, 60.0, PctChange(100, 160), 1e-9)
	assert.InDelta(t, -7.0, PctChange(100, 93), 1e-9)
	assert.True(t, math.IsNaN(PctChange(0, 10)))
	assert.Equal(t, 1.24, Round2(1.2372))
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResampleWeekly(t *testing.T) {
	points := []PricePoint{
		{Date: day(2024, 3, 11), Open: 10, High: 12, Low: 9, Close: 11, Volume: 100},
		{Date: day(2024, 3, 13), Open: 11, High: 15, Low: 10, Close: 14, Volume: 200},
		{Date: day(2024, 3, 15), Open: 14, High: 14, Low: 8, Close: 9, Volume: 300},
		{Date: day(2024, 3, 18), Open: 9, High: 10, Low: 9, Close: 10, Volume: 50},
	}

	weekly := ResampleWeekly(points)
	require.Len(t, weekly, 2)

	w := weekly[0]
	assert.Equal(t, day(2024, 3, 16), w.Date)
	assert.Equal(t, 10.0, w.Open)
	assert.Equal(t, 15.0, w.High)
	assert.Equal(t, 8.0, w.Low)
	assert.Equal(t, 9.0, w.Close)
	assert.Equal(t, int64(600), w.Volume)

	assert.Equal(t, day(2024, 3, 23), weekly[1].Date)
	assert.Equal(t, 10.0, weekly[1].Close)
}

func TestResampleWeekly_CloseOnly(t *testing.T) {
	points := CloseOnly([]PricePoint{
		{Date: day(2024, 3, 11), High: 99, Close: 11},
		{Date: day(2024, 3, 12), Low: 1, Close: 13},
	})

	weekly := ResampleWeekly(points)
	require.Len(t, weekly, 1)
	assert.Equal(t, 13.0, weekly[0].High)
	assert.Equal(t, 11.0, weekly[0].Low)
}

func TestWeekEnd(t *testing.T) {
	assert.Equal(t, day(2024, 3, 16), weekEnd(day(2024, 3, 16)))
	assert.Equal(t, day(2024, 3, 23), weekEnd(day(2024, 3, 17)))
}
