package fetcher

import (
	"context"

	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/market"
)

// =============================================================================
// Repositories
// =============================================================================

// FetchLogRepository 수집 실행 로그 저장소 (fetch_logs)
type FetchLogRepository interface {
	// Create 로그 생성 (실행 시작 시)
	Create(ctx context.Context, log *FetchLog) (*FetchLog, error)

	// Update 로그 업데이트 (실행 완료/실패 시)
	Update(ctx context.Context, log *FetchLog) error

	GetRecent(ctx context.Context, limit int) ([]*FetchLog, error)
}

// KodexRepository KODEX ETF 요약/구성종목 저장소
type KodexRepository interface {
	UpsertSummary(ctx context.Context, s *KodexSummary) error
	UpsertHoldings(ctx context.Context, holdings []*KodexHolding) (int, error)
}

// =============================================================================
// External Client Interfaces
// =============================================================================

// NaverClient 네이버 금융 클라이언트
type NaverClient interface {
	// LastPage sise_day 마지막 페이지 번호 (pgRR 없으면 1)
	LastPage(ctx context.Context, code string) (int, error)

	// FetchDailyPricePage sise_day 한 페이지
	FetchDailyPricePage(ctx context.Context, code string, page int) ([]*market.DailyPrice, error)

	// FetchMarketIndexPage 환율/원자재 일별 시세 한 페이지
	FetchMarketIndexPage(ctx context.Context, source IndexSource, page int) ([]*market.IndicatorPrice, error)

	// FetchKospiPage KOSPI 지수 일별 시세 한 페이지
	FetchKospiPage(ctx context.Context, page int) ([]*market.IndicatorPrice, error)

	// FetchListingPage 시가총액 목록 한 페이지 (sosok 0=KOSPI, 1=KOSDAQ)
	FetchListingPage(ctx context.Context, marketType string, page int) ([]*market.Instrument, error)

	// FetchETFList 국내 ETF 전체 목록
	FetchETFList(ctx context.Context) ([]*market.Instrument, error)
}

// YahooClient Yahoo chart API 클라이언트
type YahooClient interface {
	FetchDailyBars(ctx context.Context, symbol, rng string) ([]*market.DailyPrice, error)
}

// SP500Source S&P 500 구성종목
type SP500Source interface {
	FetchConstituents(ctx context.Context) ([]*market.Instrument, error)
}

// ETFScreener 미국 ETF 목록
type ETFScreener interface {
	FetchETFs(ctx context.Context) ([]*market.Instrument, error)
}

// KodexClient 삼성자산운용 상품 문서 API
type KodexClient interface {
	FetchDocuments(ctx context.Context, baseDate string, page int) ([]*KodexDocument, error)
}

// IndexSource 네이버 marketindex 일별 시세 원천
type IndexSource struct {
	Code       string // 저장 코드 (USD, GOLD_KR ...)
	Path       string // /marketindex/exchangeDailyQuote.naver
	IndexCd    string // FX_USDKRW
	Fdtc       string // 0, 2, 4
	HasRate    bool   // 4번째 컬럼이 등락률 (worldDailyQuote)
	ScaledDiff bool   // 전일대비가 100배로 표기되는 경우가 있음
}

// IndexSources 수집 대상 지표
var IndexSources = []IndexSource{
	{Code: market.IndicatorUSD, Path: "/marketindex/exchangeDailyQuote.naver", IndexCd: "FX_USDKRW", ScaledDiff: true},
	{Code: market.IndicatorJPY, Path: "/marketindex/worldDailyQuote.naver", IndexCd: "FX_USDJPY", Fdtc: "4", HasRate: true},
	{Code: market.IndicatorGoldKR, Path: "/marketindex/goldDailyQuote.naver"},
	{Code: market.IndicatorGoldGlobal, Path: "/marketindex/worldDailyQuote.naver", IndexCd: "CMDT_GC", Fdtc: "2", HasRate: true},
	{Code: market.IndicatorDubai, Path: "/marketindex/worldDailyQuote.naver", IndexCd: "OIL_DU", Fdtc: "2", HasRate: true},
}
