package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTargetsOf(t *testing.T) {
	tests := []struct {
		group Group
		keys  []string
	}{
		{GroupDaily, []string{"BOND_DAILY_PRICE", "DAILY_PRICE_INDICATOR", "DAILY_PRICE_KR", "DAILY_PRICE_US", "ETF_DAILY_PRICE_KR", "ETF_DAILY_PRICE_US"}},
		{GroupStatic, []string{"BOND_INFO", "COMPANY_INFO_KR", "COMPANY_INFO_US", "ETF_INFO_KR", "ETF_INFO_US"}},
		{GroupStrategy, []string{"STRATEGY_RESULT", "STRATEGY_DETAIL"}},
		{GroupKodex, []string{"KODEX_ETF_SUMMARY", "KODEX_ETF_HOLDINGS"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.group), func(t *testing.T) {
			targets, err := TargetsOf(tt.group)
			require.NoError(t, err)

			keys := make([]string, len(targets))
			for i, target := range targets {
				keys[i] = target.Key
			}
			assert.Equal(t, tt.keys, keys)
		})
	}
}

func TestLookup(t *testing.T) {
	target, err := Lookup("company_info_us")
	require.NoError(t, err)
	assert.Equal(t, "last_update", target.Column)
	assert.Equal(t, FilterDay, target.Filter)

	target, err = Lookup("KODEX_ETF_SUMMARY")
	require.NoError(t, err)
	assert.Equal(t, FilterBaseDate, target.Filter)

	_, err = Lookup("users")
	assert.ErrorIs(t, err, ErrUnknownTarget)
}
