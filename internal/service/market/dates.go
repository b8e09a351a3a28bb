package market

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/gmdcjdakdcjd/stockbatch/internal/domain/market"
)

// DateLayout 정규화된 날짜 형식
const DateLayout = "2006-01-02"

var nonDigit = regexp.MustCompile(`\D+`)

// NormalizeDate "2024.3.5", "2024/03/05 (화)" 등을 YYYY-MM-DD로 변환
// 숫자 그룹이 세 개 미만이면 ErrInvalidDate
func NormalizeDate(s string) (string, error) {
	parts := make([]int, 0, 3)
	for _, p := range nonDigit.Split(s, -1) {
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return "", fmt.Errorf("%w: %q", market.ErrInvalidDate, s)
		}
		parts = append(parts, n)
		if len(parts) == 3 {
			break
		}
	}
	if len(parts) < 3 {
		return "", fmt.Errorf("%w: %q", market.ErrInvalidDate, s)
	}
	return fmt.Sprintf("%04d-%02d-%02d", parts[0], parts[1], parts[2]), nil
}

// ParseDate NormalizeDate 후 실제 달력 날짜인지 검증 (UTC 자정)
func ParseDate(s string) (time.Time, error) {
	norm, err := NormalizeDate(s)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(DateLayout, norm)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", market.ErrInvalidDate, s)
	}
	return t, nil
}

// Day 시각을 같은 날짜의 UTC 자정으로 맞춤
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
