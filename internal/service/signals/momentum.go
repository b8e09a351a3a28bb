package signals

import "math"

// PctChange (to/from − 1)·100, from이 0이면 NaN
func PctChange(from, to float64) float64 {
	if from == 0 {
		return math.NaN()
	}
	return (to/from - 1) * 100
}

// Round2 소수 둘째 자리 반올림 (저장 값 표기용)
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
