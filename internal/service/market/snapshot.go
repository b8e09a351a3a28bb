package market

import (
	"sort"
	"time"

	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/market"
)

// CodeSnapshot 종목 코드/이름 매핑 (생성 후 변경하지 않음)
type CodeSnapshot struct {
	byCode  map[string]*market.Instrument
	byName  map[string]string
	codes   []string
	BuiltAt time.Time
}

// NewCodeSnapshot builds an immutable code/name index.
func NewCodeSnapshot(instruments []*market.Instrument, builtAt time.Time) *CodeSnapshot {
	s := &CodeSnapshot{
		byCode:  make(map[string]*market.Instrument, len(instruments)),
		byName:  make(map[string]string, len(instruments)),
		codes:   make([]string, 0, len(instruments)),
		BuiltAt: builtAt,
	}
	for _, inst := range instruments {
		if inst == nil || inst.Code == "" {
			continue
		}
		if _, dup := s.byCode[inst.Code]; dup {
			continue
		}
		cp := *inst
		s.byCode[inst.Code] = &cp
		s.codes = append(s.codes, inst.Code)
		// 동명 종목은 먼저 나온 코드 유지
		if _, ok := s.byName[inst.Name]; !ok && inst.Name != "" {
			s.byName[inst.Name] = inst.Code
		}
	}
	sort.Strings(s.codes)
	return s
}

// Resolve 코드 우선, 다음 이름으로 조회
func (s *CodeSnapshot) Resolve(codeOrName string) (string, bool) {
	if _, ok := s.byCode[codeOrName]; ok {
		return codeOrName, true
	}
	code, ok := s.byName[codeOrName]
	return code, ok
}

// Instrument returns a copy of the instrument for code.
func (s *CodeSnapshot) Instrument(code string) (market.Instrument, bool) {
	inst, ok := s.byCode[code]
	if !ok {
		return market.Instrument{}, false
	}
	return *inst, true
}

// Name returns the instrument name, or "" when unknown.
func (s *CodeSnapshot) Name(code string) string {
	if inst, ok := s.byCode[code]; ok {
		return inst.Name
	}
	return ""
}

// Len 종목 수
func (s *CodeSnapshot) Len() int {
	return len(s.codes)
}

// Universe 필터에 맞는 종목 코드 (정렬됨)
func (s *CodeSnapshot) Universe(filter market.InstrumentFilter) []string {
	out := make([]string, 0, len(s.codes))
	for _, code := range s.codes {
		inst := s.byCode[code]
		if filter.SecurityType != "" && inst.SecurityType != filter.SecurityType {
			continue
		}
		if filter.Manager != "" && inst.Manager != filter.Manager {
			continue
		}
		out = append(out, code)
	}
	return out
}
