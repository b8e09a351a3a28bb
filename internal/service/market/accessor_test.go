package market

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/market"
	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/market/markettest"
)

type mockInstrumentRepo struct {
	mock.Mock
}

func (m *mockInstrumentRepo) UpsertBatch(ctx context.Context, mk market.Market, instruments []*market.Instrument) (int, error) {
	args := m.Called(ctx, mk, instruments)
	return args.Int(0), args.Error(1)
}

func (m *mockInstrumentRepo) List(ctx context.Context, mk market.Market, filter market.InstrumentFilter) ([]*market.Instrument, error) {
	args := m.Called(ctx, mk, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*market.Instrument), args.Error(1)
}

func setupAccessor(t *testing.T) (*Accessor, *markettest.InstrumentStore, *markettest.PriceStore) {
	t.Helper()
	ctx := context.Background()

	instruments := markettest.NewInstrumentStore()
	_, err := instruments.UpsertBatch(ctx, market.KRStock, []*market.Instrument{
		{Code: "005930", Name: "삼성전자", SecurityType: market.SecurityCommon},
		{Code: "005935", Name: "삼성전자우", SecurityType: market.SecurityPreferred},
		{Code: "000660", Name: "SK하이닉스", SecurityType: market.SecurityCommon},
	})
	require.NoError(t, err)

	prices := markettest.NewPriceStore()
	_, err = prices.UpsertBatch(ctx, market.KRStock, []*market.DailyPrice{
		markettest.Bar("005930", 2024, 3, 13, 73000, 100),
		markettest.Bar("005930", 2024, 3, 14, 71800, 100),
		markettest.Bar("005930", 2024, 3, 15, 72300, 100),
		markettest.Bar("000660", 2024, 3, 14, 170000, 50),
		markettest.Bar("000660", 2024, 3, 15, 175000, 50),
	})
	require.NoError(t, err)

	a, err := NewAccessor(ctx, market.KRStock, instruments, prices)
	require.NoError(t, err)
	a.now = func() time.Time { return time.Date(2024, 3, 17, 10, 0, 0, 0, time.UTC) }
	return a, instruments, prices
}

func TestAccessor_Resolve(t *testing.T) {
	a, _, _ := setupAccessor(t)

	code, err := a.Resolve("005930")
	require.NoError(t, err)
	assert.Equal(t, "005930", code)

	code, err = a.Resolve("SK하이닉스")
	require.NoError(t, err)
	assert.Equal(t, "000660", code)

	_, err = a.Resolve("없는종목")
	assert.ErrorIs(t, err, market.ErrInstrumentNotFound)
	assert.True(t, market.IsNotFoundError(err))
}

func TestAccessor_Universe(t *testing.T) {
	a, _, _ := setupAccessor(t)
	assert.Equal(t, []string{"000660", "005930"}, a.Universe())
}

func TestAccessor_GetSeries(t *testing.T) {
	a, _, _ := setupAccessor(t)
	ctx := context.Background()

	series, err := a.GetSeries(ctx, "삼성전자", "2024.03.14", "2024/03/15")
	require.NoError(t, err)
	require.Len(t, series, 2)
	assert.Equal(t, 71800.0, series[0].Close)
	assert.Equal(t, 72300.0, series[1].Close)

	// 기본 범위: 1년 전 ~ 오늘
	series, err = a.GetSeries(ctx, "005930", "", "")
	require.NoError(t, err)
	assert.Len(t, series, 3)

	series, err = a.GetSeries(ctx, "005930", "2023-01-01", "2023-12-31")
	require.NoError(t, err)
	assert.Empty(t, series)

	_, err = a.GetSeries(ctx, "005930", "2024-03-15", "2024-03-01")
	assert.ErrorIs(t, err, market.ErrInvalidDateRange)

	_, err = a.GetSeries(ctx, "005930", "bad", "")
	assert.ErrorIs(t, err, market.ErrInvalidDate)
}

func TestAccessor_BulkMatchesSeries(t *testing.T) {
	a, _, _ := setupAccessor(t)
	ctx := context.Background()

	bulk, err := a.GetBulk(ctx, "2024-03-01", "2024-03-15")
	require.NoError(t, err)
	require.Len(t, bulk, 5)

	for _, code := range []string{"005930", "000660"} {
		series, err := a.GetSeries(ctx, code, "2024-03-01", "2024-03-15")
		require.NoError(t, err)

		var filtered []*market.DailyPrice
		for _, p := range bulk {
			if p.Code == code {
				filtered = append(filtered, p)
			}
		}
		assert.Equal(t, series, filtered, code)
	}
}

func TestAccessor_LatestTradingDateOnOrBefore(t *testing.T) {
	a, _, _ := setupAccessor(t)
	ctx := context.Background()

	d, err := a.LatestTradingDateOnOrBefore(ctx, "2024-03-17")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), *d)

	d, err = a.LatestTradingDateOnOrBefore(ctx, "2024-03-14")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, 14, d.Day())

	d, err = a.LatestTradingDateOnOrBefore(ctx, "2020-01-01")
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestAccessor_RefreshSwapsSnapshot(t *testing.T) {
	a, instruments, _ := setupAccessor(t)
	ctx := context.Background()

	before := a.Snapshot()
	_, err := instruments.UpsertBatch(ctx, market.KRStock, []*market.Instrument{
		{Code: "035420", Name: "NAVER", SecurityType: market.SecurityCommon},
	})
	require.NoError(t, err)

	_, err = a.Resolve("NAVER")
	assert.Error(t, err)

	require.NoError(t, a.Refresh(ctx))

	code, err := a.Resolve("NAVER")
	require.NoError(t, err)
	assert.Equal(t, "035420", code)

	// 이전 스냅샷은 변하지 않음
	_, ok := before.Resolve("NAVER")
	assert.False(t, ok)
	assert.Equal(t, 3, before.Len())
	assert.Equal(t, 4, a.Snapshot().Len())
}

func TestNewAccessor_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := NewAccessor(ctx, market.Market("JP_STOCK"), nil, nil)
	assert.ErrorIs(t, err, market.ErrUnknownMarket)

	repo := &mockInstrumentRepo{}
	repo.On("List", mock.Anything, market.USStock, market.InstrumentFilter{}).
		Return(nil, errors.New("connection refused"))

	_, err = NewAccessor(ctx, market.USStock, repo, markettest.NewPriceStore())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list instruments")
	repo.AssertExpectations(t)
}
