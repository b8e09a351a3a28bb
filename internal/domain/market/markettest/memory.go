// Package markettest provides in-memory market repositories for tests.
package markettest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/market"
)

type priceKey struct {
	code string
	date time.Time
}

// PriceStore 메모리 일봉 저장소, market.PriceRepository 구현
type PriceStore struct {
	mu   sync.RWMutex
	rows map[market.Market]map[priceKey]*market.DailyPrice
}

// NewPriceStore creates an empty store.
func NewPriceStore() *PriceStore {
	return &PriceStore{rows: make(map[market.Market]map[priceKey]*market.DailyPrice)}
}

// UpsertBatch keeps one row per (code, date). BOND keeps the first write.
func (s *PriceStore) UpsertBatch(_ context.Context, m market.Market, prices []*market.DailyPrice) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, ok := s.rows[m]
	if !ok {
		table = make(map[priceKey]*market.DailyPrice)
		s.rows[m] = table
	}
	n := 0
	for _, p := range prices {
		k := priceKey{p.Code, p.Date}
		if _, exists := table[k]; exists && m == market.Bond {
			continue
		}
		cp := *p
		table[k] = &cp
		n++
	}
	return n, nil
}

// Count returns the number of stored rows for a market.
func (s *PriceStore) Count(m market.Market) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows[m])
}

func (s *PriceStore) GetRange(_ context.Context, m market.Market, code string, from, to time.Time) ([]*market.DailyPrice, error) {
	return s.filter(m, func(p *market.DailyPrice) bool {
		return p.Code == code && inRange(p.Date, from, to)
	}), nil
}

func (s *PriceStore) GetBulk(_ context.Context, m market.Market, from, to time.Time) ([]*market.DailyPrice, error) {
	return s.filter(m, func(p *market.DailyPrice) bool {
		return inRange(p.Date, from, to)
	}), nil
}

func (s *PriceStore) LatestDateOnOrBefore(_ context.Context, m market.Market, date time.Time) (*time.Time, error) {
	var latest *time.Time
	for _, p := range s.filter(m, func(p *market.DailyPrice) bool { return !p.Date.After(date) }) {
		d := p.Date
		if latest == nil || d.After(*latest) {
			latest = &d
		}
	}
	return latest, nil
}

func (s *PriceStore) LatestBefore(_ context.Context, m market.Market, code string, date time.Time) (*market.DailyPrice, error) {
	rows := s.filter(m, func(p *market.DailyPrice) bool { return p.Code == code && p.Date.Before(date) })
	if len(rows) == 0 {
		return nil, market.ErrPriceNotFound
	}
	return rows[len(rows)-1], nil
}

func (s *PriceStore) filter(m market.Market, keep func(*market.DailyPrice) bool) []*market.DailyPrice {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*market.DailyPrice, 0)
	for _, p := range s.rows[m] {
		if keep(p) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Code != out[j].Code {
			return out[i].Code < out[j].Code
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

func inRange(d, from, to time.Time) bool {
	return !d.Before(from) && !d.After(to)
}

// InstrumentStore 메모리 종목 저장소, market.InstrumentRepository 구현
type InstrumentStore struct {
	mu   sync.RWMutex
	rows map[market.Market]map[string]*market.Instrument
}

// NewInstrumentStore creates an empty store.
func NewInstrumentStore() *InstrumentStore {
	return &InstrumentStore{rows: make(map[market.Market]map[string]*market.Instrument)}
}

func (s *InstrumentStore) UpsertBatch(_ context.Context, m market.Market, instruments []*market.Instrument) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, ok := s.rows[m]
	if !ok {
		table = make(map[string]*market.Instrument)
		s.rows[m] = table
	}
	for _, inst := range instruments {
		cp := *inst
		table[inst.Code] = &cp
	}
	return len(instruments), nil
}

func (s *InstrumentStore) List(_ context.Context, m market.Market, filter market.InstrumentFilter) ([]*market.Instrument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*market.Instrument, 0)
	for _, inst := range s.rows[m] {
		if filter.SecurityType != "" && inst.SecurityType != filter.SecurityType {
			continue
		}
		if filter.Manager != "" && inst.Manager != filter.Manager {
			continue
		}
		cp := *inst
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// Bar builds a DailyPrice on a UTC date.
func Bar(code string, y int, mo time.Month, d int, close float64, volume int64) *market.DailyPrice {
	return &market.DailyPrice{
		Code:   code,
		Date:   time.Date(y, mo, d, 0, 0, 0, 0, time.UTC),
		Open:   close,
		High:   close,
		Low:    close,
		Close:  close,
		Volume: volume,
	}
}
