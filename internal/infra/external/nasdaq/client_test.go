package nasdaq

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/market"
)

func TestClient_FetchETFs(t *testing.T) {
	pages := map[string]string{
		"0":  `{"data":{"records":{"data":{"rows":[{"symbol":"IVV","companyName":"iShares Core S&P 500 ETF"},{"symbol":"VOO","companyName":"Vanguard  S&P 500\nETF"}]}}}}`,
		"50": `{"data":{"records":{"data":{"rows":[{"symbol":"IVV","companyName":"iShares Core S&P 500 ETF"},{"symbol":"XYZ","companyName":"Obscure Fund"}]}}}}`,
	}

	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/api/screener/etf", r.URL.Path)
		body, ok := pages[r.URL.Query().Get("offset")]
		if !ok {
			body = `{"data":{"records":{"data":{"rows":[]}}}}`
		}
		fmt.Fprint(w, body)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, 0)
	list, err := c.FetchETFs(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, calls)
	require.Len(t, list, 3)
	assert.Equal(t, "IVV", list[0].Code)
	assert.Equal(t, market.IssuerIShares, list[0].Manager)
	assert.Equal(t, "Vanguard S&P 500 ETF", list[1].Name)
	assert.Equal(t, "Vanguard", list[1].Manager)
	assert.Equal(t, "[Unknown: Obscure]", list[2].Manager)
}

func TestClient_FetchETFs_FirstPageError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 5*time.Second, 0).FetchETFs(context.Background())
	require.Error(t, err)
}

func TestIssuerOf(t *testing.T) {
	assert.Equal(t, market.IssuerIShares, IssuerOf("iShares Russell 2000 ETF"))
	assert.Equal(t, "State Street (SPDR)", IssuerOf("SPDR Gold Shares"))
	assert.Equal(t, "[Unknown: N/A]", IssuerOf(""))
}
