package samsungfund

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/fetcher"
)

const defaultBaseURL = "https://www.samsungfund.com"

// Client 삼성자산운용 KODEX 상품 문서 API
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient 생성자
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// flexString 숫자/문자열 모두 허용
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	*f = flexString(b)
	return nil
}

func (f flexString) toDecimal() decimal.NullDecimal {
	s := strings.ReplaceAll(string(f), ",", "")
	if s == "" || s == "null" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

func (f flexString) toInt64() *int64 {
	d := f.toDecimal()
	if !d.Valid {
		return nil
	}
	n := d.Decimal.IntPart()
	return &n
}

func (f flexString) toInt() *int {
	n := f.toInt64()
	if n == nil {
		return nil
	}
	v := int(*n)
	return &v
}

type documentResponse struct {
	GijunYMD     string `json:"gijunYMD"`
	DocumentList []struct {
		FID     flexString `json:"fId"`
		FNm     string     `json:"fNm"`
		IRPYn   string     `json:"irpYn"`
		PDFList []struct {
			TotalCnt flexString `json:"totalCnt"`
			ItmNo    flexString `json:"itmNo"`
			SecNm    string     `json:"secNm"`
			ApplyQ   flexString `json:"applyQ"`
			Curp     flexString `json:"curp"`
			EvalA    flexString `json:"evalA"`
			Ratio    flexString `json:"ratio"`
		} `json:"pdfList"`
	} `json:"documentList"`
}

// FetchDocuments pageNo 한 페이지, 빈 목록이면 마지막 페이지
// baseDate 형식은 YYYY.MM.DD
func (c *Client) FetchDocuments(ctx context.Context, baseDate string, page int) ([]*fetcher.KodexDocument, error) {
	q := url.Values{
		"pageNo":   {strconv.Itoa(page)},
		"gijunYMD": {baseDate},
	}
	u := c.baseURL + "/api/v1/kodex/product-document.do?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: samsungfund status %d", fetcher.ErrExternalAPIError, resp.StatusCode)
	}

	var body documentResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: samsungfund decode: %v", fetcher.ErrInvalidResponse, err)
	}

	if body.GijunYMD != "" {
		baseDate = body.GijunYMD
	}

	docs := make([]*fetcher.KodexDocument, 0, len(body.DocumentList))
	for _, d := range body.DocumentList {
		etfID := string(d.FID)
		doc := &fetcher.KodexDocument{
			Summary: &fetcher.KodexSummary{
				ETFID:    etfID,
				BaseDate: baseDate,
				ETFName:  d.FNm,
				IRPYn:    d.IRPYn,
			},
		}

		for i, h := range d.PDFList {
			if i == 0 {
				doc.Summary.TotalCnt = h.TotalCnt.toInt()
			}
			if h.ItmNo == "" {
				continue
			}
			doc.Holdings = append(doc.Holdings, &fetcher.KodexHolding{
				ETFID:        etfID,
				BaseDate:     baseDate,
				StockCode:    string(h.ItmNo),
				StockName:    h.SecNm,
				HoldingQty:   h.ApplyQ.toDecimal(),
				CurrentPrice: h.Curp.toInt64(),
				EvalAmount:   h.EvalA.toInt64(),
				WeightRatio:  h.Ratio.toDecimal(),
			})
		}

		docs = append(docs, doc)
	}

	return docs, nil
}
