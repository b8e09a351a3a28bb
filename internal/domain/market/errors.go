package market

import "errors"

// Domain errors
var (
	ErrInstrumentNotFound = errors.New("instrument not found")
	ErrPriceNotFound      = errors.New("price not found")
	ErrUnknownMarket      = errors.New("unknown market")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidDateRange   = errors.New("invalid date range")
)

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrInstrumentNotFound) ||
		errors.Is(err, ErrPriceNotFound)
}
