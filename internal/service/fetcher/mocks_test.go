package fetcher

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/fetcher"
	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/market"
)

// =============================================================================
// Client mocks
// =============================================================================

type mockNaver struct {
	mock.Mock
}

func (m *mockNaver) LastPage(ctx context.Context, code string) (int, error) {
	args := m.Called(ctx, code)
	return args.Int(0), args.Error(1)
}

func (m *mockNaver) FetchDailyPricePage(ctx context.Context, code string, page int) ([]*market.DailyPrice, error) {
	args := m.Called(ctx, code, page)
	if v := args.Get(0); v != nil {
		return v.([]*market.DailyPrice), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockNaver) FetchMarketIndexPage(ctx context.Context, source fetcher.IndexSource, page int) ([]*market.IndicatorPrice, error) {
	args := m.Called(ctx, source, page)
	if v := args.Get(0); v != nil {
		return v.([]*market.IndicatorPrice), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockNaver) FetchKospiPage(ctx context.Context, page int) ([]*market.IndicatorPrice, error) {
	args := m.Called(ctx, page)
	if v := args.Get(0); v != nil {
		return v.([]*market.IndicatorPrice), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockNaver) FetchListingPage(ctx context.Context, marketType string, page int) ([]*market.Instrument, error) {
	args := m.Called(ctx, marketType, page)
	if v := args.Get(0); v != nil {
		return v.([]*market.Instrument), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockNaver) FetchETFList(ctx context.Context) ([]*market.Instrument, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]*market.Instrument), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockYahoo struct {
	mock.Mock
}

func (m *mockYahoo) FetchDailyBars(ctx context.Context, symbol, rng string) ([]*market.DailyPrice, error) {
	args := m.Called(ctx, symbol, rng)
	if v := args.Get(0); v != nil {
		return v.([]*market.DailyPrice), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockSP500 struct {
	mock.Mock
}

func (m *mockSP500) FetchConstituents(ctx context.Context) ([]*market.Instrument, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]*market.Instrument), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockKodexClient struct {
	mock.Mock
}

func (m *mockKodexClient) FetchDocuments(ctx context.Context, baseDate string, page int) ([]*fetcher.KodexDocument, error) {
	args := m.Called(ctx, baseDate, page)
	if v := args.Get(0); v != nil {
		return v.([]*fetcher.KodexDocument), args.Error(1)
	}
	return nil, args.Error(1)
}

// =============================================================================
// In-memory repositories
// =============================================================================

type memFetchLogs struct {
	mu      sync.Mutex
	entries []fetcher.FetchLog
}

func (r *memFetchLogs) Create(_ context.Context, l *fetcher.FetchLog) (*fetcher.FetchLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *l
	cp.ID = len(r.entries) + 1
	r.entries = append(r.entries, cp)
	return &cp, nil
}

func (r *memFetchLogs) Update(_ context.Context, l *fetcher.FetchLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[l.ID-1] = *l
	return nil
}

func (r *memFetchLogs) GetRecent(_ context.Context, limit int) ([]*fetcher.FetchLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*fetcher.FetchLog, 0, limit)
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		cp := r.entries[i]
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memFetchLogs) last() fetcher.FetchLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.entries[len(r.entries)-1]
}

type memIndicators struct {
	mu   sync.Mutex
	rows map[string]*market.IndicatorPrice
}

func newMemIndicators() *memIndicators {
	return &memIndicators{rows: make(map[string]*market.IndicatorPrice)}
}

func (r *memIndicators) UpsertBatch(_ context.Context, prices []*market.IndicatorPrice) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range prices {
		cp := *p
		r.rows[p.Code+"|"+p.Date.Format("2006-01-02")] = &cp
	}
	return len(prices), nil
}

func (r *memIndicators) GetRange(_ context.Context, code string, from, to time.Time) ([]*market.IndicatorPrice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*market.IndicatorPrice, 0)
	for _, p := range r.rows {
		if p.Code == code && !p.Date.Before(from) && !p.Date.After(to) {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *memIndicators) get(code string, d time.Time) *market.IndicatorPrice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rows[code+"|"+d.Format("2006-01-02")]
}

type memKodex struct {
	summaries []*fetcher.KodexSummary
	holdings  []*fetcher.KodexHolding
}

func (r *memKodex) UpsertSummary(_ context.Context, s *fetcher.KodexSummary) error {
	r.summaries = append(r.summaries, s)
	return nil
}

func (r *memKodex) UpsertHoldings(_ context.Context, holdings []*fetcher.KodexHolding) (int, error) {
	r.holdings = append(r.holdings, holdings...)
	return len(holdings), nil
}
