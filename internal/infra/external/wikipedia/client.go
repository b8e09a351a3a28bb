package wikipedia

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/rs/zerolog/log"

	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/fetcher"
	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/market"
)

// DefaultURL S&P 500 구성종목 문서
const DefaultURL = "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies"

// Client S&P 500 constituents scraper
type Client struct {
	url     string
	timeout time.Duration
}

// NewClient 생성자
func NewClient(url string, timeout time.Duration) *Client {
	if url == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{url: url, timeout: timeout}
}

// FetchConstituents 구성종목 테이블 (Symbol, Security) 수집
func (c *Client) FetchConstituents(ctx context.Context) ([]*market.Instrument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	col := colly.NewCollector(colly.UserAgent("Mozilla/5.0"))
	col.SetRequestTimeout(c.timeout)

	var (
		instruments []*market.Instrument
		seen        = map[string]bool{}
		scrapeErr   error
	)

	col.OnHTML("table#constituents > tbody", func(e *colly.HTMLElement) {
		e.ForEach("tr", func(_ int, el *colly.HTMLElement) {
			symbol := strings.TrimSpace(el.ChildText("td:nth-child(1)"))
			name := strings.TrimSpace(el.ChildText("td:nth-child(2)"))
			if symbol == "" || name == "" {
				return
			}

			code := strings.ReplaceAll(symbol, ".", "-")
			if seen[code] {
				return
			}
			seen[code] = true

			instruments = append(instruments, &market.Instrument{
				Code:       code,
				Name:       name,
				MarketType: "S&P500",
			})
		})
	})

	col.OnError(func(r *colly.Response, err error) {
		scrapeErr = fmt.Errorf("%w: status %d: %v", fetcher.ErrExternalAPIError, r.StatusCode, err)
	})

	if err := col.Visit(c.url); err != nil && scrapeErr == nil {
		scrapeErr = fmt.Errorf("visit %s: %w", c.url, err)
	}
	if scrapeErr != nil {
		return nil, scrapeErr
	}

	if len(instruments) == 0 {
		return nil, fmt.Errorf("%w: constituents table not found", fetcher.ErrInvalidResponse)
	}

	log.Debug().Int("count", len(instruments)).Msg("Fetched S&P 500 constituents")
	return instruments, nil
}
