package wikipedia

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/fetcher"
)

const constituentsHTML = `<html><body>
<table class="wikitable sortable" id="constituents">
<tbody>
<tr><th>Symbol</th><th>Security</th><th>GICS Sector</th></tr>
<tr><td><a href="#">MMM</a></td><td><a href="#">3M</a></td><td>Industrials</td></tr>
<tr><td><a href="#">BRK.B</a></td><td><a href="#">Berkshire Hathaway</a></td><td>Financials</td></tr>
<tr><td><a href="#">MMM</a></td><td><a href="#">3M</a></td><td>Industrials</td></tr>
</tbody>
</table>
<table id="changes"><tbody><tr><td>X</td><td>Y</td></tr></tbody></table>
</body></html>`

func TestClient_FetchConstituents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(constituentsHTML))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	list, err := c.FetchConstituents(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "MMM", list[0].Code)
	assert.Equal(t, "3M", list[0].Name)
	assert.Equal(t, "BRK-B", list[1].Code)
	assert.Equal(t, "S&P500", list[1].MarketType)
}

func TestClient_FetchConstituents_NoTable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><body><p>moved</p></body></html>`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 5*time.Second).FetchConstituents(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, fetcher.ErrInvalidResponse)
}

func TestClient_FetchConstituents_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient("http://127.0.0.1:1", time.Second).FetchConstituents(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
