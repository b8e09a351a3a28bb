package fetcher

import (
	"time"

	"github.com/shopspring/decimal"
)

// FetchLog 수집 실행 로그 (fetch_logs)
type FetchLog struct {
	ID              int        `json:"id" db:"id"`
	JobType         string     `json:"job_type" db:"job_type"`
	Source          string     `json:"source" db:"source"`
	TargetTable     string     `json:"target_table" db:"target_table"`
	RecordsFetched  int        `json:"records_fetched" db:"records_fetched"`
	RecordsInserted int        `json:"records_inserted" db:"records_inserted"`
	CodesProcessed  int        `json:"codes_processed" db:"codes_processed"`
	CodesFailed     int        `json:"codes_failed" db:"codes_failed"`
	Status          string     `json:"status" db:"status"` // running, completed, failed
	ErrorMessage    *string    `json:"error_message" db:"error_message"`
	StartedAt       time.Time  `json:"started_at" db:"started_at"`
	FinishedAt      *time.Time `json:"finished_at" db:"finished_at"`
	DurationMs      *int       `json:"duration_ms" db:"duration_ms"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
}

// JobType 수집 작업 유형
type JobType string

const (
	JobTypePrices      JobType = "prices"
	JobTypeIndicators  JobType = "indicators"
	JobTypeInstruments JobType = "instruments"
	JobTypeKodex       JobType = "kodex"
)

// FetchStatus 수집 상태
type FetchStatus string

const (
	StatusRunning   FetchStatus = "running"
	StatusCompleted FetchStatus = "completed"
	StatusFailed    FetchStatus = "failed"
)

// FetchResult 수집 결과
type FetchResult struct {
	JobType      JobType   `json:"job_type"`
	Source       string    `json:"source"`
	Target       string    `json:"target"`
	TotalRows    int       `json:"total_rows"`
	SuccessCount int       `json:"success_count"` // 처리된 종목/지표 수
	FailedCount  int       `json:"failed_count"`
	Duration     float64   `json:"duration_sec"`
	Errors       []string  `json:"errors,omitempty"`
	CompletedAt  time.Time `json:"completed_at"`
}

// KodexSummary KODEX ETF 요약 (kodex_etf_summary)
type KodexSummary struct {
	ETFID     string    `json:"etf_id" db:"etf_id"`
	BaseDate  string    `json:"base_date" db:"base_date"` // YYYY.MM.DD
	ETFName   string    `json:"etf_name" db:"etf_name"`
	IRPYn     string    `json:"irp_yn" db:"irp_yn"`
	TotalCnt  *int      `json:"total_cnt" db:"total_cnt"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// KodexHolding KODEX ETF 구성종목 (kodex_etf_holdings)
type KodexHolding struct {
	ETFID        string              `json:"etf_id" db:"etf_id"`
	BaseDate     string              `json:"base_date" db:"base_date"`
	StockCode    string              `json:"stock_code" db:"stock_code"`
	StockName    string              `json:"stock_name" db:"stock_name"`
	HoldingQty   decimal.NullDecimal `json:"holding_qty" db:"holding_qty"`
	CurrentPrice *int64              `json:"current_price" db:"current_price"`
	EvalAmount   *int64              `json:"eval_amount" db:"eval_amount"`
	WeightRatio  decimal.NullDecimal `json:"weight_ratio" db:"weight_ratio"`
	CreatedAt    time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at" db:"updated_at"`
}

// KodexDocument 운용사 API 문서 단위 (요약 + 구성종목)
type KodexDocument struct {
	Summary  *KodexSummary
	Holdings []*KodexHolding
}
