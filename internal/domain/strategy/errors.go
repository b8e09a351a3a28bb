package strategy

import "errors"

var (
	ErrResultNotFound  = errors.New("strategy result not found")
	ErrUnknownStrategy = errors.New("unknown strategy")
)

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrResultNotFound) || errors.Is(err, ErrUnknownStrategy)
}
