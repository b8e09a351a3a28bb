package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/fetcher"
	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/market"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

// Client Yahoo Finance chart API 클라이언트
type Client struct {
	httpClient *http.Client
	baseURL    string
	symbolMap  map[string]string
}

// NewClient creates a chart client; proxyURL is optional.
func NewClient(baseURL, proxyURL string, timeout time.Duration) *Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout, Transport: transport},
		baseURL:    strings.TrimRight(baseURL, "/"),
		symbolMap: map[string]string{
			market.IndicatorSNP500: "^GSPC",
		},
	}
}

// Symbol maps stored codes to Yahoo tickers (BRK.B → BRK-B).
func (c *Client) Symbol(code string) string {
	if mapped, ok := c.symbolMap[code]; ok {
		return mapped
	}
	return strings.ReplaceAll(code, ".", "-")
}

// chartResponse Yahoo chart API 응답
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				GmtOffset int64 `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func value(vs []*float64, i int) float64 {
	if i >= len(vs) || vs[i] == nil {
		return 0
	}
	return *vs[i]
}

// FetchDailyBars 일봉 조회 (date 오름차순, code 는 입력 그대로)
// Diff 는 구간 내 직전 종가 대비, 첫 행은 0
func (c *Client) FetchDailyBars(ctx context.Context, code, rng string) ([]*market.DailyPrice, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s",
		c.baseURL, url.PathEscape(c.Symbol(code)), url.QueryEscape(rng))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: yahoo status %d", fetcher.ErrExternalAPIError, resp.StatusCode)
	}

	var chart chartResponse
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("%w: yahoo decode: %v", fetcher.ErrInvalidResponse, err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("%w: yahoo: %s", fetcher.ErrExternalAPIError, chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w: yahoo: no data returned", fetcher.ErrInvalidResponse)
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	bars := make([]*market.DailyPrice, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		cl := value(quote.Close, i)
		if cl == 0 {
			continue // 휴장일 null bar
		}

		// 거래소 현지 날짜
		local := time.Unix(ts+result.Meta.GmtOffset, 0).UTC()
		bars = append(bars, &market.DailyPrice{
			Code:   code,
			Date:   time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC),
			Open:   value(quote.Open, i),
			High:   value(quote.High, i),
			Low:    value(quote.Low, i),
			Close:  cl,
			Volume: int64(value(quote.Volume, i)),
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })

	for i := 1; i < len(bars); i++ {
		bars[i].Diff = bars[i].Close - bars[i-1].Close
	}

	return bars, nil
}
