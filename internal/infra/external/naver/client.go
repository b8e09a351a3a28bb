package naver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/net/html/charset"

	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/fetcher"
	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/market"
)

const (
	defaultBaseURL = "https://finance.naver.com"
	defaultTimeout = 30 * time.Second
	userAgent      = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"
)

var (
	codePattern   = regexp.MustCompile(`code=(\d{6})`)
	pagePattern   = regexp.MustCompile(`page=(\d+)`)
	numberPattern = regexp.MustCompile(`-?\d+\.?\d*`)
	digitsPattern = regexp.MustCompile(`\d+`)
)

// Client 네이버 금융 클라이언트
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient 클라이언트 생성
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (*http.Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Referer", c.baseURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: status %d", fetcher.ErrExternalAPIError, resp.StatusCode)
	}
	return resp, nil
}

func (c *Client) document(ctx context.Context, path string, query url.Values) (*goquery.Document, error) {
	resp, err := c.get(ctx, path, query)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// 네이버 금융 HTML은 EUC-KR
	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("decode charset: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return doc, nil
}

// =============================================================================
// Daily Prices
// =============================================================================

// LastPage sise_day 마지막 페이지 번호
func (c *Client) LastPage(ctx context.Context, code string) (int, error) {
	doc, err := c.document(ctx, "/item/sise_day.naver", url.Values{"code": {code}})
	if err != nil {
		return 0, err
	}

	href, ok := doc.Find("td.pgRR a").Attr("href")
	if !ok {
		log.Debug().Str("code", code).Msg("pgRR not found, single page")
		return 1, nil
	}

	m := pagePattern.FindStringSubmatch(href)
	if len(m) < 2 {
		return 1, nil
	}

	last, err := strconv.Atoi(m[1])
	if err != nil || last < 1 {
		return 1, nil
	}
	return last, nil
}

// FetchDailyPricePage sise_day 한 페이지 (날짜/종가/전일비/시가/고가/저가/거래량)
func (c *Client) FetchDailyPricePage(ctx context.Context, code string, page int) ([]*market.DailyPrice, error) {
	doc, err := c.document(ctx, "/item/sise_day.naver", url.Values{
		"code": {code},
		"page": {strconv.Itoa(page)},
	})
	if err != nil {
		return nil, err
	}

	return parseDailyPrices(doc, code), nil
}

func parseDailyPrices(doc *goquery.Document, code string) []*market.DailyPrice {
	var prices []*market.DailyPrice

	doc.Find("table.type2 tr").Each(func(i int, s *goquery.Selection) {
		if s.Find("th").Length() > 0 {
			return
		}

		tds := s.Find("td")
		if tds.Length() < 7 {
			return
		}

		tradeDate, err := parseDate(tds.Eq(0).Text())
		if err != nil {
			return
		}

		closePrice := parseNumber(tds.Eq(1).Text())
		if closePrice == 0 {
			return
		}

		prices = append(prices, &market.DailyPrice{
			Code:   code,
			Date:   tradeDate,
			Close:  float64(closePrice),
			Diff:   float64(parseNumber(tds.Eq(2).Text())), // 부호 없는 전일비
			Open:   float64(parseNumber(tds.Eq(3).Text())),
			High:   float64(parseNumber(tds.Eq(4).Text())),
			Low:    float64(parseNumber(tds.Eq(5).Text())),
			Volume: parseNumber(tds.Eq(6).Text()),
		})
	})

	return prices
}

// =============================================================================
// Market Index
// =============================================================================

// FetchMarketIndexPage 환율/금/유가 일별 시세 한 페이지
func (c *Client) FetchMarketIndexPage(ctx context.Context, source fetcher.IndexSource, page int) ([]*market.IndicatorPrice, error) {
	query := url.Values{"page": {strconv.Itoa(page)}}
	if source.IndexCd != "" {
		query.Set("marketindexCd", source.IndexCd)
	}
	if source.Fdtc != "" {
		query.Set("fdtc", source.Fdtc)
	}

	doc, err := c.document(ctx, source.Path, query)
	if err != nil {
		return nil, err
	}

	return parseMarketIndex(doc, source), nil
}

func parseMarketIndex(doc *goquery.Document, source fetcher.IndexSource) []*market.IndicatorPrice {
	var prices []*market.IndicatorPrice

	doc.Find("table.tbl_exchange.today tbody tr").Each(func(i int, s *goquery.Selection) {
		tds := s.Find("td")
		if tds.Length() < 3 {
			return
		}

		tradeDate, err := parseDate(tds.Eq(0).Text())
		if err != nil {
			return
		}

		closePrice, err := decimal.NewFromString(cleanNumber(tds.Eq(1).Text()))
		if err != nil {
			return
		}

		amount, ok := signedDiff(tds.Eq(2))
		if !ok {
			return
		}
		if source.ScaledDiff && amount.Abs().GreaterThanOrEqual(decimal.NewFromInt(100)) {
			amount = amount.Div(decimal.NewFromInt(100))
		}

		rate := market.ChangeRate(closePrice, amount)
		if source.HasRate && tds.Length() >= 4 {
			if r, err := decimal.NewFromString(cleanNumber(tds.Eq(3).Text())); err == nil {
				rate = r
			}
		}

		prices = append(prices, &market.IndicatorPrice{
			Code:         source.Code,
			Date:         tradeDate,
			Close:        closePrice,
			ChangeAmount: amount,
			ChangeRate:   rate,
		})
	})

	return prices
}

// FetchKospiPage KOSPI 지수 일별 시세 한 페이지
func (c *Client) FetchKospiPage(ctx context.Context, page int) ([]*market.IndicatorPrice, error) {
	doc, err := c.document(ctx, "/sise/sise_index_day.naver", url.Values{
		"code": {"KOSPI"},
		"page": {strconv.Itoa(page)},
	})
	if err != nil {
		return nil, err
	}

	var prices []*market.IndicatorPrice

	// 날짜 / 체결가 / 전일비 / 등락률
	doc.Find("table.type_1 tr").Each(func(i int, s *goquery.Selection) {
		tds := s.Find("td")
		if tds.Length() < 4 {
			return
		}

		tradeDate, err := parseDate(tds.Eq(0).Text())
		if err != nil {
			return
		}

		closePrice, err := decimal.NewFromString(cleanNumber(tds.Eq(1).Text()))
		if err != nil {
			return
		}

		amount, ok := signedDiff(tds.Eq(2))
		if !ok {
			return
		}

		rate, err := decimal.NewFromString(cleanNumber(tds.Eq(3).Text()))
		if err != nil {
			rate = market.ChangeRate(closePrice, amount)
		}

		prices = append(prices, &market.IndicatorPrice{
			Code:         market.IndicatorKOSPI,
			Date:         tradeDate,
			Close:        closePrice,
			ChangeAmount: amount,
			ChangeRate:   rate,
		})
	})

	return prices, nil
}

// signedDiff 전일대비 셀 파싱, 하락 이미지면 음수
func signedDiff(td *goquery.Selection) (decimal.Decimal, bool) {
	text := strings.TrimSpace(td.Text())
	text = strings.NewReplacer("상승", "", "하락", "", "보합", "", ",", "", "▲", "", "▼", "").Replace(text)

	m := numberPattern.FindString(text)
	if m == "" {
		return decimal.Zero, false
	}

	amount, err := decimal.NewFromString(m)
	if err != nil {
		return decimal.Zero, false
	}
	amount = amount.Abs()

	alt, _ := td.Find("img").Attr("alt")
	if strings.Contains(alt, "하락") || td.Find(".ico.down, .tah.nv01").Length() > 0 {
		amount = amount.Neg()
	}
	return amount, true
}

// =============================================================================
// Listings (종목 마스터)
// =============================================================================

// FetchListingPage 시가총액 목록 한 페이지 (KOSPI/KOSDAQ)
func (c *Client) FetchListingPage(ctx context.Context, marketType string, page int) ([]*market.Instrument, error) {
	sosok := "0"
	if marketType == "KOSDAQ" {
		sosok = "1"
	}

	doc, err := c.document(ctx, "/sise/sise_market_sum.naver", url.Values{
		"sosok": {sosok},
		"page":  {strconv.Itoa(page)},
	})
	if err != nil {
		return nil, err
	}

	var instruments []*market.Instrument

	doc.Find("table.type_2 tr").Each(func(i int, s *goquery.Selection) {
		tds := s.Find("td")
		if tds.Length() < 7 {
			return
		}

		link := tds.Eq(1).Find("a")
		href, exists := link.Attr("href")
		if !exists {
			return
		}

		matches := codePattern.FindStringSubmatch(href)
		if len(matches) < 2 {
			return
		}
		code := matches[1]

		instruments = append(instruments, &market.Instrument{
			Code:         code,
			Name:         strings.TrimSpace(link.Text()),
			MarketType:   marketType,
			SecurityType: SecurityTypeOf(code),
		})
	})

	return instruments, nil
}

// SecurityTypeOf 종목코드 끝자리 0 이면 보통주
func SecurityTypeOf(code string) string {
	if strings.HasSuffix(code, "0") {
		return market.SecurityCommon
	}
	return market.SecurityPreferred
}

// etfListResponse etfItemList.nhn 응답
type etfListResponse struct {
	ResultCode string `json:"resultCode"`
	Result     struct {
		ETFItemList []struct {
			ItemCode string `json:"itemcode"`
			ItemName string `json:"itemname"`
		} `json:"etfItemList"`
	} `json:"result"`
}

var etfBrands = map[string]string{
	"KODEX":    market.ManagerSamsung,
	"TIGER":    "미래에셋자산운용",
	"KBSTAR":   "KB자산운용",
	"RISE":     "KB자산운용",
	"ACE":      "한국투자신탁운용",
	"ARIRANG":  "한화자산운용",
	"PLUS":     "한화자산운용",
	"SOL":      "신한자산운용",
	"HANARO":   "NH-Amundi자산운용",
	"KOSEF":    "키움투자자산운용",
	"KIWOOM":   "키움투자자산운용",
}

// ManagerOf ETF 브랜드로 운용사 추정
func ManagerOf(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	if m, ok := etfBrands[strings.ToUpper(fields[0])]; ok {
		return m
	}
	return ""
}

// FetchETFList 국내 ETF 전체 목록
func (c *Client) FetchETFList(ctx context.Context) ([]*market.Instrument, error) {
	resp, err := c.get(ctx, "/api/sise/etfItemList.nhn", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var body etfListResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode etf list: %v", fetcher.ErrInvalidResponse, err)
	}

	instruments := make([]*market.Instrument, 0, len(body.Result.ETFItemList))
	for _, item := range body.Result.ETFItemList {
		if item.ItemCode == "" {
			continue
		}
		instruments = append(instruments, &market.Instrument{
			Code:         item.ItemCode,
			Name:         strings.TrimSpace(item.ItemName),
			MarketType:   "ETF",
			SecurityType: market.SecurityETF,
			Manager:      ManagerOf(item.ItemName),
		})
	}

	return instruments, nil
}

// HealthCheck API 상태 확인
func (c *Client) HealthCheck(ctx context.Context) error {
	resp, err := c.get(ctx, "/", nil)
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	resp.Body.Close()
	return nil
}

// =============================================================================
// Helper Functions
// =============================================================================

func parseDate(s string) (time.Time, error) {
	return time.Parse("2006.01.02", strings.TrimSpace(s))
}

// parseNumber 숫자 문자열 파싱 (콤마 제거)
func parseNumber(s string) int64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")

	m := digitsPattern.FindString(s)
	if m == "" {
		return 0
	}

	n, _ := strconv.ParseInt(m, 10, 64)
	return n
}

// cleanNumber 콤마, %, + 제거
func cleanNumber(s string) string {
	return strings.NewReplacer(",", "", "%", "", "+", "", " ", "", "\n", "", "\t", "").Replace(strings.TrimSpace(s))
}
