package market

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMarket(t *testing.T) {
	m, err := ParseMarket("kr-etf")
	require.NoError(t, err)
	assert.Equal(t, KRETF, m)

	_, err = ParseMarket("crypto")
	assert.True(t, errors.Is(err, ErrUnknownMarket))
}

func TestSpecFor(t *testing.T) {
	s, err := SpecFor(KRStock)
	require.NoError(t, err)
	assert.Equal(t, "daily_price_kr", s.PriceTable)
	assert.Equal(t, SecurityCommon, s.Universe.SecurityType)
	assert.Equal(t, 10000.0, s.PriceFloor)

	s, err = SpecFor(USETF)
	require.NoError(t, err)
	assert.Equal(t, IssuerIShares, s.Universe.Manager)
}

func TestChangeRate(t *testing.T) {
	// 1,385.50 with +5.50 -> 5.5 / 1380 * 100
	rate := ChangeRate(decimal.RequireFromString("1385.50"), decimal.RequireFromString("5.50"))
	assert.Equal(t, "0.3986", rate.StringFixed(4))

	assert.True(t, ChangeRate(decimal.NewFromInt(5), decimal.NewFromInt(5)).IsZero())
}
