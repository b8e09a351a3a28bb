package signals

import "math"

// 모든 rolling 함수는 입력과 같은 길이를 반환하고, 창이 차기 전 구간은 NaN

// SMA 단순 이동평균
func SMA(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	if window <= 0 {
		return out
	}

	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// RollingStd 모집단 표준편차 (ddof=0)
func RollingStd(values []float64, window int) []float64 {
	out := nanSlice(len(values))
	if window <= 0 {
		return out
	}

	for i := window - 1; i < len(values); i++ {
		w := values[i-window+1 : i+1]
		var mean float64
		for _, v := range w {
			mean += v
		}
		mean /= float64(window)

		var ss float64
		for _, v := range w {
			d := v - mean
			ss += d * d
		}
		out[i] = math.Sqrt(ss / float64(window))
	}
	return out
}

// Bollinger mid ± k·σ
func Bollinger(values []float64, window int, k float64) Bands {
	mid := SMA(values, window)
	std := RollingStd(values, window)

	b := Bands{
		Upper: nanSlice(len(values)),
		Mid:   mid,
		Lower: nanSlice(len(values)),
		Std:   std,
	}
	for i := range values {
		if math.IsNaN(mid[i]) {
			continue
		}
		b.Upper[i] = mid[i] + k*std[i]
		b.Lower[i] = mid[i] - k*std[i]
	}
	return b
}

// RSI 단순 이동평균 RSI
// i 시점 값은 직전 period 개 변화량 (i−period, i] 의 평균 상승폭/하락폭으로 계산
// 평균 하락폭이 0이면 NaN
func RSI(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	if period <= 0 || len(values) <= period {
		return out
	}

	gains := make([]float64, len(values))
	losses := make([]float64, len(values))
	for i := 1; i < len(values); i++ {
		gains[i], losses[i] = split(values[i] - values[i-1])
	}

	for i := period; i < len(values); i++ {
		var sumGain, sumLoss float64
		for j := i - period + 1; j <= i; j++ {
			sumGain += gains[j]
			sumLoss += losses[j]
		}
		out[i] = rsiValue(sumGain/float64(period), sumLoss/float64(period))
	}
	return out
}

func split(delta float64) (gain, loss float64) {
	if delta > 0 {
		return delta, 0
	}
	return 0, -delta
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return math.NaN()
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// RollingMax 창 최대값
func RollingMax(values []float64, window int) []float64 {
	return rolling(values, window, func(a, b float64) bool { return a > b })
}

// RollingMin 창 최소값
func RollingMin(values []float64, window int) []float64 {
	return rolling(values, window, func(a, b float64) bool { return a < b })
}

func rolling(values []float64, window int, better func(a, b float64) bool) []float64 {
	out := nanSlice(len(values))
	if window <= 0 {
		return out
	}
	for i := window - 1; i < len(values); i++ {
		best := values[i-window+1]
		for _, v := range values[i-window+2 : i+1] {
			if better(v, best) {
				best = v
			}
		}
		out[i] = best
	}
	return out
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
