// Package screening runs the batch screening strategies: load one bulk
// price window, compute an indicator per instrument, filter, rank and
// persist the survivors.
package screening

import (
	"sort"
	"time"

	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/market"
	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/strategy"
	"github.com/gmdcjdakdcjd/stockbatch/internal/service/signals"
)

// Strategy 스크리닝 전략
type Strategy interface {
	Name() string
	Market() market.Market
	// Metric special_value 의미
	Metric() string
	// Window 조회 기간
	Window(asOf time.Time) (from, to time.Time)
	Options() Options
	Screen(in *Input) *Output
}

// Options 실행기 동작 옵션
type Options struct {
	// SnapToTradingDays 조회 기간 양 끝을 실제 거래일로 보정
	SnapToTradingDays bool
	// Stateful strategy_signal_state 읽기/쓰기
	Stateful bool
}

// Input 전략 입력
type Input struct {
	AsOf   time.Time
	From   time.Time
	To     time.Time
	Codes  []string
	Series map[string][]signals.PricePoint
	States map[string]*strategy.SignalState
}

// Output 전략 출력 (Candidates는 저장 순서대로 정렬됨)
type Output struct {
	Candidates []Candidate
	States     []*strategy.SignalState
}

// Candidate 조건을 통과한 종목
type Candidate struct {
	Code      string
	Date      time.Time
	Price     float64
	PrevClose float64
	Diff      float64
	Volume    int64
	Special   float64
}

// base 전략 공통 필드
type base struct {
	name     string
	market   market.Market
	metric   string
	lookback func(time.Time) time.Time
	floor    float64
	opts     Options
}

func newBase(name string, m market.Market, metric string, lookback func(time.Time) time.Time) base {
	spec, _ := market.SpecFor(m)
	return base{
		name:     name,
		market:   m,
		metric:   metric,
		lookback: lookback,
		floor:    spec.PriceFloor,
	}
}

func (b base) Name() string          { return b.name }
func (b base) Market() market.Market { return b.market }
func (b base) Metric() string        { return b.metric }
func (b base) Options() Options      { return b.opts }

func (b base) Window(asOf time.Time) (time.Time, time.Time) {
	return b.lookback(asOf), asOf
}

// aboveFloor 저가주 제외
func (b base) aboveFloor(close float64) bool {
	return close >= b.floor
}

func months(n int) func(time.Time) time.Time {
	return func(t time.Time) time.Time { return t.AddDate(0, -n, 0) }
}

func days(n int) func(time.Time) time.Time {
	return func(t time.Time) time.Time { return t.AddDate(0, 0, -n) }
}

func years(n int) func(time.Time) time.Time {
	return func(t time.Time) time.Time { return t.AddDate(-n, 0, 0) }
}

// dayRate 전일 대비 등락률 (%)
func dayRate(prev, last float64) float64 {
	return signals.Round2(signals.PctChange(prev, last))
}

// sortCandidates 정렬 키 기준 정렬, 동률은 코드 오름차순
func sortCandidates(cands []Candidate, key func(Candidate) float64, desc bool) {
	sort.SliceStable(cands, func(i, j int) bool {
		ki, kj := key(cands[i]), key(cands[j])
		if ki != kj {
			if desc {
				return ki > kj
			}
			return ki < kj
		}
		return cands[i].Code < cands[j].Code
	})
}

// assignRank special_value에 1부터 순위 기록
func assignRank(cands []Candidate) {
	for i := range cands {
		cands[i].Special = float64(i + 1)
	}
}
