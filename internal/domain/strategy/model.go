package strategy

import (
	"time"

	"github.com/google/uuid"
)

// Result 전략 실행 요약 (strategy_result)
type Result struct {
	ID           uuid.UUID `json:"id" db:"id"`
	StrategyName string    `json:"strategy_name" db:"strategy_name"`
	SignalDate   time.Time `json:"signal_date" db:"signal_date"`
	SignalType   string    `json:"signal_type" db:"signal_type"`
	TotalData    int       `json:"total_data" db:"total_data"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Detail 전략 결과 종목 (strategy_detail)
// SpecialValue의 의미는 MetricName으로 구분
type Detail struct {
	ResultID     uuid.UUID `json:"result_id" db:"result_id"`
	SignalDate   time.Time `json:"signal_date" db:"signal_date"`
	Code         string    `json:"code" db:"code"`
	Name         string    `json:"name" db:"name"`
	Action       string    `json:"action" db:"action"`
	Price        float64   `json:"price" db:"price"`
	PrevClose    float64   `json:"prev_close" db:"prev_close"`
	Diff         float64   `json:"diff" db:"diff"`
	Volume       int64     `json:"volume" db:"volume"`
	SpecialValue float64   `json:"special_value" db:"special_value"`
	MetricName   string    `json:"metric_name" db:"metric_name"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Metric names stored alongside special_value
const (
	MetricRSI        = "rsi14"
	MetricUpperBand  = "bb_upper20"
	MetricLowerBand  = "bb_lower20"
	MetricHigh52W    = "high_52w"
	MetricLow52W     = "low_52w"
	MetricHigh120D   = "high_120d"
	MetricLow120D    = "low_120d"
	MetricMA60       = "ma60"
	MetricWeeklyMA60 = "weekly_ma60"
	MetricRank       = "rank"
)

// SignalState 최초 발생 전략의 종목별 상태 (strategy_signal_state)
type SignalState struct {
	StrategyName   string     `json:"strategy_name" db:"strategy_name"`
	Code           string     `json:"code" db:"code"`
	Active         bool       `json:"active" db:"active"` // 마지막 평가 시점에 조건 충족
	EvaluatedDate  time.Time  `json:"evaluated_date" db:"evaluated_date"`
	LastSignalDate *time.Time `json:"last_signal_date" db:"last_signal_date"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// RunSummary 실행 결과
type RunSummary struct {
	ResultID     uuid.UUID `json:"result_id"`
	StrategyName string    `json:"strategy_name"`
	SignalDate   time.Time `json:"signal_date"`
	RowCount     int       `json:"row_count"`
	Universe     int       `json:"universe"`
	Details      []*Detail `json:"details"`
}

// Persisted reports whether a result row was written.
func (s *RunSummary) Persisted() bool {
	return s.ResultID != uuid.Nil
}

// ResultFilter 결과 조회 필터
type ResultFilter struct {
	StrategyName string
	SignalDate   *time.Time
	Limit        int
}
