package market

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/market"
	"github.com/gmdcjdakdcjd/stockbatch/internal/infra/database/postgres"
	"github.com/gmdcjdakdcjd/stockbatch/internal/pkg/config"
)

func TestUpsertPriceQuery(t *testing.T) {
	bond := upsertPriceQuery(market.Bond, "bond_daily_price")
	assert.Contains(t, bond, "INSERT INTO bond_daily_price")
	assert.Contains(t, bond, "ON CONFLICT (code, date) DO NOTHING")
	assert.NotContains(t, bond, "DO UPDATE")

	kr := upsertPriceQuery(market.KRStock, "daily_price_kr")
	assert.Contains(t, kr, "ON CONFLICT (code, date) DO UPDATE SET")
	assert.Contains(t, kr, "close = EXCLUDED.close")
}

func openTestPool(t *testing.T) *postgres.Pool {
	t.Helper()
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("Integration test - requires PostgreSQL (DATABASE_URL)")
	}

	ctx := context.Background()
	cfg, err := config.Load()
	require.NoError(t, err)

	pool, err := postgres.NewPool(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	var instruments, prices []string
	for _, m := range market.All() {
		spec, err := market.SpecFor(m)
		require.NoError(t, err)
		instruments = append(instruments, spec.InstrumentTable)
		prices = append(prices, spec.PriceTable)
	}
	require.NoError(t, pool.Migrate(ctx, instruments, prices))
	return pool
}

func TestPriceRepository_UpsertCounts(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	repo := NewPriceRepository(pool)

	code := fmt.Sprintf("T%d", time.Now().UnixNano()%1_000_000_000)
	date := time.Date(2000, 1, 3, 0, 0, 0, 0, time.UTC)
	bar := func(price float64) []*market.DailyPrice {
		return []*market.DailyPrice{{Code: code, Date: date, Open: price, High: price, Low: price, Close: price}}
	}

	for _, m := range []market.Market{market.Bond, market.USStock} {
		spec, _ := market.SpecFor(m)
		t.Cleanup(func() {
			_, _ = pool.Exec(context.Background(), "DELETE FROM "+spec.PriceTable+" WHERE code = $1", code)
		})
	}

	t.Run("bond skips existing rows", func(t *testing.T) {
		n, err := repo.UpsertBatch(ctx, market.Bond, bar(4.31))
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		n, err = repo.UpsertBatch(ctx, market.Bond, bar(4.40))
		require.NoError(t, err)
		assert.Equal(t, 0, n)

		rows, err := repo.GetRange(ctx, market.Bond, code, date, date)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, 4.31, rows[0].Close)
	})

	t.Run("stock overwrites", func(t *testing.T) {
		for _, price := range []float64{170, 171} {
			n, err := repo.UpsertBatch(ctx, market.USStock, bar(price))
			require.NoError(t, err)
			assert.Equal(t, 1, n)
		}

		rows, err := repo.GetRange(ctx, market.USStock, code, date, date)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, 171.0, rows[0].Close)
	})
}
