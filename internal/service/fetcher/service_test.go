package fetcher

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/fetcher"
	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/market"
	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/market/markettest"
	"github.com/gmdcjdakdcjd/stockbatch/internal/pkg/sentinel"
)

type fixture struct {
	svc         *Service
	out         *bytes.Buffer
	naver       *mockNaver
	yahoo       *mockYahoo
	sp500       *mockSP500
	kodex       *mockKodexClient
	instruments *markettest.InstrumentStore
	prices      *markettest.PriceStore
	indicators  *memIndicators
	kodexRepo   *memKodex
	logs        *memFetchLogs
}

func newFixture(t *testing.T, cfg *Config) *fixture {
	t.Helper()

	f := &fixture{
		out:         &bytes.Buffer{},
		naver:       &mockNaver{},
		yahoo:       &mockYahoo{},
		sp500:       &mockSP500{},
		kodex:       &mockKodexClient{},
		instruments: markettest.NewInstrumentStore(),
		prices:      markettest.NewPriceStore(),
		indicators:  newMemIndicators(),
		kodexRepo:   &memKodex{},
		logs:        &memFetchLogs{},
	}
	f.svc = NewService(cfg,
		Clients{Naver: f.naver, Yahoo: f.yahoo, SP500: f.sp500, Kodex: f.kodex},
		Repositories{
			Instruments: f.instruments,
			Prices:      f.prices,
			Indicators:  f.indicators,
			Kodex:       f.kodexRepo,
			FetchLogs:   f.logs,
		},
		sentinel.New(f.out))
	f.svc.now = func() time.Time { return time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC) }

	t.Cleanup(func() {
		f.naver.AssertExpectations(t)
		f.yahoo.AssertExpectations(t)
		f.sp500.AssertExpectations(t)
		f.kodex.AssertExpectations(t)
	})
	return f
}

func (f *fixture) seedInstruments(t *testing.T, m market.Market, codes ...string) {
	t.Helper()
	list := make([]*market.Instrument, 0, len(codes))
	for _, c := range codes {
		list = append(list, &market.Instrument{Code: c, Name: "name-" + c})
	}
	_, err := f.instruments.UpsertBatch(context.Background(), m, list)
	require.NoError(t, err)
}

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

func TestUpdateDailyPrices_Korean(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, &Config{PagesToFetch: 2, USRange: "5d"})
	f.seedInstruments(t, market.KRStock, "000660", "005930")

	f.naver.On("LastPage", mock.Anything, "000660").Return(0, errors.New("connection reset"))
	f.naver.On("LastPage", mock.Anything, "005930").Return(687, nil)
	f.naver.On("FetchDailyPricePage", mock.Anything, "005930", 1).Return([]*market.DailyPrice{
		markettest.Bar("005930", 2024, 3, 15, 72300, 100),
		markettest.Bar("005930", 2024, 3, 14, 71800, 100),
	}, nil)
	f.naver.On("FetchDailyPricePage", mock.Anything, "005930", 2).Return([]*market.DailyPrice{
		markettest.Bar("005930", 2024, 3, 13, 71000, 100),
	}, nil)

	result, err := f.svc.UpdateDailyPrices(ctx, market.KRStock)
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalRows)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 1, result.FailedCount)
	assert.Equal(t, 3, f.prices.Count(market.KRStock))
	assert.Equal(t, "ROWCOUNT=3\nROWCOUNT=3\nCODECOUNT=1\n", f.out.String())

	entry := f.logs.last()
	assert.Equal(t, string(fetcher.StatusCompleted), entry.Status)
	assert.Equal(t, "daily_price_kr", entry.TargetTable)
	assert.Equal(t, 1, entry.CodesFailed)
}

func TestUpdateDailyPrices_StopsOnEmptyPage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, &Config{})
	f.seedInstruments(t, market.KRETF, "069500")

	f.naver.On("LastPage", mock.Anything, "069500").Return(5, nil)
	f.naver.On("FetchDailyPricePage", mock.Anything, "069500", 1).Return([]*market.DailyPrice{
		markettest.Bar("069500", 2024, 3, 15, 35000, 10),
	}, nil)
	f.naver.On("FetchDailyPricePage", mock.Anything, "069500", 2).Return(nil, nil)

	result, err := f.svc.UpdateDailyPrices(ctx, market.KRETF)
	require.NoError(t, err)
	assert.Equal(t, 1, result.TotalRows)
	f.naver.AssertNotCalled(t, "FetchDailyPricePage", mock.Anything, "069500", 3)
}

func TestUpdateDailyPrices_US(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.seedInstruments(t, market.USStock, "AAPL")

	_, err := f.prices.UpsertBatch(ctx, market.USStock, []*market.DailyPrice{
		markettest.Bar("AAPL", 2024, 3, 13, 170, 1000),
	})
	require.NoError(t, err)

	second := markettest.Bar("AAPL", 2024, 3, 15, 171, 900)
	second.Diff = -1
	f.yahoo.On("FetchDailyBars", mock.Anything, "AAPL", "5d").Return([]*market.DailyPrice{
		markettest.Bar("AAPL", 2024, 3, 14, 172, 1100),
		second,
	}, nil)

	result, err := f.svc.UpdateDailyPrices(ctx, market.USStock)
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalRows)

	rows, err := f.prices.GetRange(ctx, market.USStock, "AAPL", day(14), day(15))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 2.0, rows[0].Diff)
	assert.Equal(t, -1.0, rows[1].Diff)
}

func TestUpdateDailyPrices_AllFailedMarksLogFailed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	f.seedInstruments(t, market.USETF, "IVV")

	f.yahoo.On("FetchDailyBars", mock.Anything, "IVV", "5d").Return(nil, fetcher.ErrExternalAPIError)

	result, err := f.svc.UpdateDailyPrices(ctx, market.USETF)
	require.NoError(t, err)
	assert.Equal(t, 1, result.FailedCount)
	assert.Equal(t, "ROWCOUNT=0\nCODECOUNT=0\n", f.out.String())

	entry := f.logs.last()
	assert.Equal(t, string(fetcher.StatusFailed), entry.Status)
	require.NotNil(t, entry.ErrorMessage)
	assert.Contains(t, *entry.ErrorMessage, "IVV")
}

func TestUpdateDailyPrices_NoInstruments(t *testing.T) {
	f := newFixture(t, nil)

	result, err := f.svc.UpdateDailyPrices(context.Background(), market.KRStock)
	require.NoError(t, err)
	assert.Zero(t, result.TotalRows)
	assert.Equal(t, "ROWCOUNT=0\nCODECOUNT=0\n", f.out.String())
}

func TestUpdateDailyPrices_ReingestKeepsOneRow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, &Config{PagesToFetch: 1})
	f.seedInstruments(t, market.KRStock, "005930")

	f.naver.On("LastPage", mock.Anything, "005930").Return(1, nil)
	f.naver.On("FetchDailyPricePage", mock.Anything, "005930", 1).Return([]*market.DailyPrice{
		markettest.Bar("005930", 2024, 3, 15, 72300, 100),
		markettest.Bar("005930", 2024, 3, 14, 71800, 100),
	}, nil).Once()
	// 장 마감 후 재수집: 당일 종가 정정
	f.naver.On("FetchDailyPricePage", mock.Anything, "005930", 1).Return([]*market.DailyPrice{
		markettest.Bar("005930", 2024, 3, 15, 73000, 150),
		markettest.Bar("005930", 2024, 3, 14, 71800, 100),
	}, nil).Once()

	for i := 0; i < 2; i++ {
		_, err := f.svc.UpdateDailyPrices(ctx, market.KRStock)
		require.NoError(t, err)
	}

	assert.Equal(t, 2, f.prices.Count(market.KRStock))
	assert.Equal(t, "ROWCOUNT=2\nROWCOUNT=2\nCODECOUNT=1\nROWCOUNT=2\nROWCOUNT=2\nCODECOUNT=1\n", f.out.String())

	rows, err := f.prices.GetRange(ctx, market.KRStock, "005930", day(15), day(15))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 73000.0, rows[0].Close)
	assert.Equal(t, int64(150), rows[0].Volume)
}

func TestUpdateDailyPrices_BondKeepsFirstWrite(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, &Config{USRange: "5d"})
	f.seedInstruments(t, market.Bond, "^TNX")

	f.yahoo.On("FetchDailyBars", mock.Anything, "^TNX", "5d").Return([]*market.DailyPrice{
		markettest.Bar("^TNX", 2024, 3, 14, 4.29, 0),
		markettest.Bar("^TNX", 2024, 3, 15, 4.31, 0),
	}, nil).Once()
	f.yahoo.On("FetchDailyBars", mock.Anything, "^TNX", "5d").Return([]*market.DailyPrice{
		markettest.Bar("^TNX", 2024, 3, 15, 4.40, 0),
	}, nil).Once()

	first, err := f.svc.UpdateDailyPrices(ctx, market.Bond)
	require.NoError(t, err)
	assert.Equal(t, 2, first.TotalRows)

	f.out.Reset()
	second, err := f.svc.UpdateDailyPrices(ctx, market.Bond)
	require.NoError(t, err)
	assert.Zero(t, second.TotalRows)
	assert.Equal(t, "ROWCOUNT=0\nROWCOUNT=0\nCODECOUNT=1\n", f.out.String())

	assert.Equal(t, 2, f.prices.Count(market.Bond))
	rows, err := f.prices.GetRange(ctx, market.Bond, "^TNX", day(15), day(15))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 4.31, rows[0].Close)
}

func TestUpdateIndicators(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, &Config{IndicatorPages: 1, USRange: "5d"})

	for _, src := range fetcher.IndexSources {
		f.naver.On("FetchMarketIndexPage", mock.Anything, src, 1).Return([]*market.IndicatorPrice{
			{Code: src.Code, Date: day(15), Close: decimal.NewFromInt(100)},
		}, nil)
	}
	f.naver.On("FetchKospiPage", mock.Anything, 1).Return([]*market.IndicatorPrice{
		{Code: market.IndicatorKOSPI, Date: day(15), Close: decimal.RequireFromString("2666.84")},
	}, nil)

	// 저장된 직전 값이 없으면 첫 행은 제외
	second := markettest.Bar(market.IndicatorSNP500, 2024, 3, 15, 5117, 0)
	second.Diff = -33
	f.yahoo.On("FetchDailyBars", mock.Anything, market.IndicatorSNP500, "5d").Return([]*market.DailyPrice{
		markettest.Bar(market.IndicatorSNP500, 2024, 3, 14, 5150, 0),
		second,
	}, nil)

	result, err := f.svc.UpdateIndicators(ctx)
	require.NoError(t, err)

	assert.Equal(t, 7, result.TotalRows)
	assert.Equal(t, 7, result.SuccessCount)
	assert.Nil(t, f.indicators.get(market.IndicatorSNP500, day(14)))

	snp := f.indicators.get(market.IndicatorSNP500, day(15))
	require.NotNil(t, snp)
	assert.Equal(t, "-33", snp.ChangeAmount.String())
	// -33 / 5150 * 100
	assert.Equal(t, "-0.6408", snp.ChangeRate.String())
	assert.Contains(t, f.out.String(), "ROWCOUNT=7\nCODECOUNT=7\n")
}

func TestFetchSNP500_UsesStoredClose(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, &Config{USRange: "5d"})

	_, err := f.indicators.UpsertBatch(ctx, []*market.IndicatorPrice{
		{Code: market.IndicatorSNP500, Date: day(13), Close: decimal.NewFromInt(5100)},
	})
	require.NoError(t, err)

	f.yahoo.On("FetchDailyBars", mock.Anything, market.IndicatorSNP500, "5d").Return([]*market.DailyPrice{
		markettest.Bar(market.IndicatorSNP500, 2024, 3, 14, 5150, 0),
	}, nil)

	rows, err := f.svc.fetchSNP500(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "50", rows[0].ChangeAmount.String())
	assert.Equal(t, "0.9804", rows[0].ChangeRate.String())
}

func TestUpdateIndicators_SourceFailureSkipped(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, &Config{IndicatorPages: 1, USRange: "5d"})

	f.naver.On("FetchMarketIndexPage", mock.Anything, mock.Anything, 1).Return(nil, fetcher.ErrInvalidResponse)
	f.naver.On("FetchKospiPage", mock.Anything, 1).Return([]*market.IndicatorPrice{
		{Code: market.IndicatorKOSPI, Date: day(15), Close: decimal.NewFromInt(2600)},
	}, nil)
	f.yahoo.On("FetchDailyBars", mock.Anything, market.IndicatorSNP500, "5d").Return(nil, nil)

	result, err := f.svc.UpdateIndicators(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(fetcher.IndexSources), result.FailedCount)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, string(fetcher.StatusCompleted), f.logs.last().Status)
}

func TestUpdateInstruments_KoreanListing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	f.naver.On("FetchListingPage", mock.Anything, "KOSPI", 1).Return([]*market.Instrument{
		{Code: "005930", Name: "삼성전자", MarketType: "KOSPI", SecurityType: market.SecurityCommon},
		{Code: "005935", Name: "삼성전자우", MarketType: "KOSPI", SecurityType: market.SecurityPreferred},
	}, nil)
	f.naver.On("FetchListingPage", mock.Anything, "KOSPI", 2).Return(nil, nil)
	f.naver.On("FetchListingPage", mock.Anything, "KOSDAQ", 1).Return([]*market.Instrument{
		{Code: "247540", Name: "에코프로비엠", MarketType: "KOSDAQ", SecurityType: market.SecurityCommon},
		{Code: "005930", Name: "삼성전자", MarketType: "KOSDAQ", SecurityType: market.SecurityCommon},
	}, nil)
	f.naver.On("FetchListingPage", mock.Anything, "KOSDAQ", 2).Return(nil, nil)

	result, err := f.svc.UpdateInstruments(ctx, market.KRStock)
	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalRows)
	assert.Equal(t, "ROWCOUNT=3\n", f.out.String())

	list, err := f.instruments.List(ctx, market.KRStock, market.InstrumentFilter{SecurityType: market.SecurityCommon})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "KOSPI", list[0].MarketType)
	assert.Equal(t, "company_info_kr", f.logs.last().TargetTable)
}

func TestUpdateInstruments_SP500(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	f.sp500.On("FetchConstituents", mock.Anything).Return([]*market.Instrument{
		{Code: "AAPL", Name: "Apple Inc.", MarketType: "NASDAQ"},
		{Code: "BRK-B", Name: "Berkshire Hathaway", MarketType: "NYSE"},
	}, nil)

	result, err := f.svc.UpdateInstruments(ctx, market.USStock)
	require.NoError(t, err)
	assert.Equal(t, 2, result.SuccessCount)

	list, err := f.instruments.List(ctx, market.USStock, market.InstrumentFilter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, time.Date(2024, 3, 15, 18, 0, 0, 0, time.UTC), list[0].LastUpdate)
}

func TestUpdateInstruments_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("bond is not scraped", func(t *testing.T) {
		f := newFixture(t, nil)
		_, err := f.svc.UpdateInstruments(ctx, market.Bond)
		assert.ErrorIs(t, err, fetcher.ErrUnsupportedJob)
	})

	t.Run("unknown market", func(t *testing.T) {
		f := newFixture(t, nil)
		_, err := f.svc.UpdateInstruments(ctx, market.Market("JP_STOCK"))
		assert.ErrorIs(t, err, market.ErrUnknownMarket)
	})

	t.Run("source failure fails the job", func(t *testing.T) {
		f := newFixture(t, nil)
		f.naver.On("FetchETFList", mock.Anything).Return(nil, fetcher.ErrExternalAPITimeout)

		_, err := f.svc.UpdateInstruments(ctx, market.KRETF)
		require.Error(t, err)
		assert.True(t, fetcher.IsExternalError(err))
		assert.Equal(t, string(fetcher.StatusFailed), f.logs.last().Status)
	})
}

func TestUpdateKodexHoldings(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	holdings := []*fetcher.KodexHolding{
		{ETFID: "2ETF01", BaseDate: "2024.03.15", StockCode: "005930", StockName: "삼성전자"},
		{ETFID: "2ETF01", BaseDate: "2024.03.15", StockCode: "000660", StockName: "SK하이닉스"},
	}
	f.kodex.On("FetchDocuments", mock.Anything, "20240315", 1).Return([]*fetcher.KodexDocument{
		{Summary: &fetcher.KodexSummary{ETFID: "2ETF01", BaseDate: "2024.03.15", ETFName: "KODEX 200"}, Holdings: holdings},
		{Summary: &fetcher.KodexSummary{ETFID: "2ETF99", BaseDate: "2024.03.15", ETFName: "KODEX 머니마켓"}},
	}, nil)
	f.kodex.On("FetchDocuments", mock.Anything, "20240315", 2).Return(nil, nil)

	result, err := f.svc.UpdateKodexHoldings(ctx, "20240315")
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalRows)
	assert.Equal(t, 1, result.SuccessCount)
	require.Len(t, f.kodexRepo.summaries, 1)
	assert.Equal(t, "2ETF01", f.kodexRepo.summaries[0].ETFID)
	assert.Len(t, f.kodexRepo.holdings, 2)
	assert.Equal(t, "ROWCOUNT=2\nCODECOUNT=1\n", f.out.String())
}
