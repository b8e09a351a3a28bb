package signals

import (
	"math"
	"time"
)

// weekEnd W-SAT 라벨: 해당 주 토요일
func weekEnd(d time.Time) time.Time {
	offset := (int(time.Saturday) - int(d.Weekday()) + 7) % 7
	y, m, day := d.AddDate(0, 0, offset).Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

// ResampleWeekly 토요일 마감 주봉 (date 오름차순 입력)
// open 첫 값, high/low 주중 최고/최저, close 마지막 값, volume 합계
// 주봉 Date는 그 주의 토요일
func ResampleWeekly(points []PricePoint) []PricePoint {
	out := make([]PricePoint, 0, len(points)/5+1)
	for _, p := range points {
		label := weekEnd(p.Date)
		n := len(out)
		if n > 0 && out[n-1].Date.Equal(label) {
			w := &out[n-1]
			w.High = math.Max(w.High, p.High)
			w.Low = math.Min(w.Low, p.Low)
			w.Close = p.Close
			w.Volume += p.Volume
			continue
		}
		out = append(out, PricePoint{
			Date:   label,
			Open:   p.Open,
			High:   p.High,
			Low:    p.Low,
			Close:  p.Close,
			Volume: p.Volume,
		})
	}
	return out
}

// CloseOnly 종가만으로 OHLC를 채운 복사본 (종가 기준 주봉 계산용)
func CloseOnly(points []PricePoint) []PricePoint {
	out := make([]PricePoint, len(points))
	for i, p := range points {
		out[i] = PricePoint{Date: p.Date, Open: p.Close, High: p.Close, Low: p.Close, Close: p.Close, Volume: p.Volume}
	}
	return out
}
