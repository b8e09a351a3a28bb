package nasdaq

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/fetcher"
	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/market"
)

const (
	defaultBaseURL = "https://api.nasdaq.com"
	pageSize       = 50
	maxOffset      = 4000
)

// Client Nasdaq ETF screener 클라이언트
type Client struct {
	httpClient *http.Client
	baseURL    string
	pageDelay  time.Duration
}

// NewClient 생성자, pageDelay 는 페이지 간 대기 (429 방지)
func NewClient(baseURL string, timeout, pageDelay time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		pageDelay:  pageDelay,
	}
}

type screenerResponse struct {
	Data *struct {
		Records struct {
			Data struct {
				Rows []struct {
					Symbol      string `json:"symbol"`
					CompanyName string `json:"companyName"`
				} `json:"rows"`
			} `json:"data"`
		} `json:"records"`
	} `json:"data"`
}

var issuerPatterns = []struct {
	key    string
	issuer string
}{
	{"Vanguard", "Vanguard"},
	{"iShares", market.IssuerIShares},
	{"SPDR", "State Street (SPDR)"},
	{"Invesco", "Invesco"},
	{"Schwab", "Charles Schwab"},
	{"Global X", "Mirae Asset (Global X)"},
	{"ARK", "ARK Invest"},
	{"VanEck", "VanEck"},
	{"WisdomTree", "WisdomTree"},
	{"ProShares", "ProShares"},
	{"Direxion", "Direxion"},
	{"Amplify", "Amplify"},
	{"First Trust", "First Trust"},
	{"FT Vest", "First Trust"},
	{"PIMCO", "PIMCO"},
	{"JPMorgan", "J.P. Morgan"},
}

var spaces = regexp.MustCompile(`\s+`)

// IssuerOf 펀드명으로 운용사 추정, 실패 시 [Unknown: 첫 단어]
func IssuerOf(name string) string {
	lower := strings.ToLower(name)
	for _, p := range issuerPatterns {
		if strings.Contains(lower, strings.ToLower(p.key)) {
			return p.issuer
		}
	}

	first := "N/A"
	if fields := strings.Fields(name); len(fields) > 0 {
		first = fields[0]
	}
	return fmt.Sprintf("[Unknown: %s]", first)
}

// FetchETFs ETF 전체 목록 (offset 페이징, 빈 페이지에서 종료)
func (c *Client) FetchETFs(ctx context.Context) ([]*market.Instrument, error) {
	var instruments []*market.Instrument
	seen := map[string]bool{}

	for offset := 0; offset <= maxOffset; offset += pageSize {
		rows, err := c.fetchPage(ctx, offset)
		if err != nil {
			if len(instruments) == 0 {
				return nil, err
			}
			log.Warn().Err(err).Int("offset", offset).Msg("ETF screener page failed, stopping")
			break
		}
		if len(rows) == 0 {
			break
		}

		for _, in := range rows {
			if seen[in.Code] {
				continue
			}
			seen[in.Code] = true
			instruments = append(instruments, in)
		}

		if c.pageDelay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.pageDelay):
			}
		}
	}

	return instruments, nil
}

func (c *Client) fetchPage(ctx context.Context, offset int) ([]*market.Instrument, error) {
	u := fmt.Sprintf("%s/api/screener/etf?tableonly=true&limit=%d&offset=%d", c.baseURL, pageSize, offset)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64)")
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Referer", "https://www.nasdaq.com/market-activity/etfs")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: nasdaq status %d", fetcher.ErrExternalAPIError, resp.StatusCode)
	}

	var body screenerResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: nasdaq decode: %v", fetcher.ErrInvalidResponse, err)
	}
	if body.Data == nil {
		return nil, fmt.Errorf("%w: nasdaq: missing data", fetcher.ErrInvalidResponse)
	}

	instruments := make([]*market.Instrument, 0, len(body.Data.Records.Data.Rows))
	for _, row := range body.Data.Records.Data.Rows {
		code := strings.TrimSpace(row.Symbol)
		name := strings.TrimSpace(spaces.ReplaceAllString(row.CompanyName, " "))
		if code == "" || name == "" {
			continue
		}
		instruments = append(instruments, &market.Instrument{
			Code:         code,
			Name:         name,
			MarketType:   string(market.USETF),
			SecurityType: market.SecurityETF,
			Manager:      IssuerOf(name),
		})
	}

	return instruments, nil
}
