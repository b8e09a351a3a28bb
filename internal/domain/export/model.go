package export

import (
	"fmt"
	"strings"
)

// Table 컬럼 순서를 유지한 조회 결과
type Table struct {
	Columns []string
	Rows    [][]any
}

// Len 행 수
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Group 내보내기 묶음
type Group string

const (
	GroupDaily    Group = "daily"
	GroupStatic   Group = "static"
	GroupStrategy Group = "strategy"
	GroupKodex    Group = "kodex"
)

// Filter 오늘 행 선택 방식
type Filter int

const (
	// FilterDay column 이 오늘 [00:00, 24:00) 범위
	FilterDay Filter = iota
	// FilterBaseDate column 이 오늘 기준일 문자열(YYYY.MM.DD)과 일치
	FilterBaseDate
)

// Target 테이블 하나의 내보내기 정의
type Target struct {
	Key      string // 파일명 접두어
	Table    string
	Column   string
	Filter   Filter
	QuoteAll bool
}

func dayTargets(column string, tables ...string) []Target {
	out := make([]Target, len(tables))
	for i, table := range tables {
		out[i] = Target{Key: strings.ToUpper(table), Table: table, Column: column}
	}
	return out
}

var groups = map[Group][]Target{
	GroupDaily: dayTargets("last_update",
		"bond_daily_price", "daily_price_indicator", "daily_price_kr",
		"daily_price_us", "etf_daily_price_kr", "etf_daily_price_us"),
	GroupStatic: dayTargets("last_update",
		"bond_info", "company_info_kr", "company_info_us", "etf_info_kr", "etf_info_us"),
	GroupStrategy: dayTargets("created_at", "strategy_result", "strategy_detail"),
	GroupKodex: {
		{Key: "KODEX_ETF_SUMMARY", Table: "kodex_etf_summary", Column: "base_date", Filter: FilterBaseDate, QuoteAll: true},
		{Key: "KODEX_ETF_HOLDINGS", Table: "kodex_etf_holdings", Column: "base_date", Filter: FilterBaseDate, QuoteAll: true},
	},
}

// Groups returns every group in run order.
func Groups() []Group {
	return []Group{GroupDaily, GroupStatic, GroupStrategy, GroupKodex}
}

// TargetsOf 그룹의 대상 목록
func TargetsOf(g Group) ([]Target, error) {
	targets, ok := groups[g]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTarget, g)
	}
	out := make([]Target, len(targets))
	copy(out, targets)
	return out, nil
}

// Lookup 테이블명 또는 키로 대상 검색
func Lookup(name string) (Target, error) {
	for _, g := range Groups() {
		for _, t := range groups[g] {
			if strings.EqualFold(t.Table, name) || strings.EqualFold(t.Key, name) {
				return t, nil
			}
		}
	}
	return Target{}, fmt.Errorf("%w: %s", ErrUnknownTarget, name)
}
