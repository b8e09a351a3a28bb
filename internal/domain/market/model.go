package market

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Market 시장 구분
type Market string

const (
	KRStock Market = "KR_STOCK"
	USStock Market = "US_STOCK"
	KRETF   Market = "KR_ETF"
	USETF   Market = "US_ETF"
	Bond    Market = "BOND"
)

// Security types / managers used for universe selection
const (
	SecurityCommon    = "보통주"
	SecurityPreferred = "우선주"
	SecurityETF       = "ETF"

	ManagerSamsung = "삼성자산운용"
	IssuerIShares  = "BlackRock (iShares)"
)

// Spec 시장별 테이블/유니버스 정의
type Spec struct {
	Market          Market
	InstrumentTable string
	PriceTable      string
	Universe        InstrumentFilter
	PriceFloor      float64 // 저가주 제외 기준
}

var specs = map[Market]Spec{
	KRStock: {KRStock, "company_info_kr", "daily_price_kr", InstrumentFilter{SecurityType: SecurityCommon}, 10000},
	USStock: {USStock, "company_info_us", "daily_price_us", InstrumentFilter{}, 10},
	KRETF:   {KRETF, "etf_info_kr", "etf_daily_price_kr", InstrumentFilter{Manager: ManagerSamsung}, 0},
	USETF:   {USETF, "etf_info_us", "etf_daily_price_us", InstrumentFilter{Manager: IssuerIShares}, 0},
	Bond:    {Bond, "bond_info", "bond_daily_price", InstrumentFilter{}, 0},
}

// All returns every market in a stable order.
func All() []Market {
	return []Market{KRStock, USStock, KRETF, USETF, Bond}
}

// SpecFor returns the table layout of a market.
func SpecFor(m Market) (Spec, error) {
	s, ok := specs[m]
	if !ok {
		return Spec{}, fmt.Errorf("%w: %s", ErrUnknownMarket, m)
	}
	return s, nil
}

// ParseMarket accepts KR_STOCK, kr_stock, kr-stock.
func ParseMarket(s string) (Market, error) {
	m := Market(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")))
	if _, ok := specs[m]; !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownMarket, s)
	}
	return m, nil
}

// IsKorean reports whether prices are quoted in KRW.
func (m Market) IsKorean() bool {
	return m == KRStock || m == KRETF
}

// Instrument 종목 마스터 (company_info_*, etf_info_*, bond_info)
type Instrument struct {
	Code         string    `json:"code" db:"code"`
	Name         string    `json:"name" db:"name"`
	MarketType   string    `json:"market_type" db:"market_type"` // KOSPI, KOSDAQ, NYSE ...
	SecurityType string    `json:"security_type" db:"security_type"`
	Manager      string    `json:"manager" db:"manager"` // ETF 운용사 / issuer
	LastUpdate   time.Time `json:"last_update" db:"last_update"`
}

// InstrumentFilter 유니버스 필터
type InstrumentFilter struct {
	SecurityType string
	Manager      string
}

// DailyPrice 일봉 (daily_price_*, etf_daily_price_*, bond_daily_price)
type DailyPrice struct {
	Code       string    `json:"code" db:"code"`
	Date       time.Time `json:"date" db:"date"`
	Open       float64   `json:"open" db:"open"`
	High       float64   `json:"high" db:"high"`
	Low        float64   `json:"low" db:"low"`
	Close      float64   `json:"close" db:"close"`
	Diff       float64   `json:"diff" db:"diff"`
	Volume     int64     `json:"volume" db:"volume"`
	LastUpdate time.Time `json:"last_update" db:"last_update"`
}

// IndicatorPrice 환율/원자재/지수 일별 시세 (daily_price_indicator)
type IndicatorPrice struct {
	Code         string          `json:"code" db:"code"`
	Date         time.Time       `json:"date" db:"date"`
	Close        decimal.Decimal `json:"close" db:"close"`
	ChangeAmount decimal.Decimal `json:"change_amount" db:"change_amount"`
	ChangeRate   decimal.Decimal `json:"change_rate" db:"change_rate"`
	LastUpdate   time.Time       `json:"last_update" db:"last_update"`
}

// Indicator codes
const (
	IndicatorUSD        = "USD"
	IndicatorJPY        = "USD_JPY"
	IndicatorKOSPI      = "KOSPI"
	IndicatorGoldKR     = "GOLD_KR"
	IndicatorGoldGlobal = "GOLD_GLOBAL"
	IndicatorDubai      = "DUBAI"
	IndicatorSNP500     = "SNP500"
)

// ChangeRate returns amount / (close - amount) * 100, or zero when the base is zero.
func ChangeRate(close, amount decimal.Decimal) decimal.Decimal {
	base := close.Sub(amount)
	if base.IsZero() {
		return decimal.Zero
	}
	return amount.Div(base).Mul(decimal.NewFromInt(100)).Round(4)
}
