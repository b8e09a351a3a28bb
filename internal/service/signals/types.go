package signals

import (
	"time"

	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/market"
)

// PricePoint 일봉/주봉 한 개 (date 오름차순으로 다룸)
type PricePoint struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// Bands 볼린저 밴드
type Bands struct {
	Upper []float64
	Mid   []float64
	Lower []float64
	Std   []float64
}

// FromDaily converts stored daily rows into price points.
func FromDaily(prices []*market.DailyPrice) []PricePoint {
	out := make([]PricePoint, len(prices))
	for i, p := range prices {
		out[i] = PricePoint{
			Date:   p.Date,
			Open:   p.Open,
			High:   p.High,
			Low:    p.Low,
			Close:  p.Close,
			Volume: p.Volume,
		}
	}
	return out
}

// Closes 종가 배열
func Closes(points []PricePoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Close
	}
	return out
}
