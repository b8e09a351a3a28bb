package screening

import (
	"fmt"
	"sort"

	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/market"
	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/strategy"
)

// Catalog 등록된 전체 전략
func Catalog() []Strategy {
	var list []Strategy
	for _, r := range []struct {
		suffix string
		stock  market.Market
		etf    market.Market
	}{
		{"KR", market.KRStock, market.KRETF},
		{"US", market.USStock, market.USETF},
	} {
		list = append(list,
			newRSI("RSI_30_UNHEATED_"+r.suffix, r.stock, 30, true),
			newRSI("RSI_70_OVERHEATED_"+r.suffix, r.stock, 70, false),
			newBandTouch("DAILY_BB_UPPER_TOUCH_"+r.suffix, r.stock, true),
			newBandTouch("DAILY_BB_LOWER_TOUCH_"+r.suffix, r.stock, false),
			newWeeklyExtreme("WEEKLY_52W_NEW_HIGH_"+r.suffix, r.stock, true),
			newWeeklyExtreme("WEEKLY_52W_NEW_LOW_"+r.suffix, r.stock, false),
			newDailyExtreme("DAILY_120D_NEW_HIGH_"+r.suffix, r.stock, true),
			newDailyExtreme("DAILY_120D_NEW_LOW_"+r.suffix, r.stock, false),
			newDailyMATouch("DAILY_TOUCH_MA60_"+r.suffix, r.stock),
			newWeeklyMATouch("WEEKLY_TOUCH_MA60_"+r.suffix, r.stock),
			newSpike("DAILY_RISE_SPIKE_"+r.suffix, r.stock, true),
			newSpike("DAILY_DROP_SPIKE_"+r.suffix, r.stock, false),
			newVolumeTop("DAILY_TOP20_VOLUME_"+r.suffix, r.stock),
			newVolumeTop("ETF_TOP20_VOLUME_"+r.suffix, r.etf),
		)
	}
	return append(list,
		newDualMomentum("DUAL_MOMENTUM_6M_KR", market.KRStock, 180, 40),
		newDualMomentum("DUAL_MOMENTUM_1M_US", market.USStock, 30, 20),
	)
}

// Lookup 이름으로 전략 조회
func Lookup(name string) (Strategy, error) {
	for _, s := range Catalog() {
		if s.Name() == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", strategy.ErrUnknownStrategy, name)
}

// Names 전략 이름 목록 (정렬됨)
func Names() []string {
	cat := Catalog()
	names := make([]string, len(cat))
	for i, s := range cat {
		names[i] = s.Name()
	}
	sort.Strings(names)
	return names
}
