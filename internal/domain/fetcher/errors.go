package fetcher

import "errors"

// Domain errors
var (
	ErrFetchLogNotFound = errors.New("fetch log not found")
	ErrUnsupportedJob   = errors.New("unsupported ingest job")

	// External API errors
	ErrExternalAPITimeout = errors.New("external API timeout")
	ErrExternalAPIError   = errors.New("external API error")
	ErrInvalidResponse    = errors.New("invalid response from external API")
)

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrFetchLogNotFound)
}

// IsExternalError checks if the error is an external API error
func IsExternalError(err error) bool {
	return errors.Is(err, ErrExternalAPITimeout) ||
		errors.Is(err, ErrExternalAPIError) ||
		errors.Is(err, ErrInvalidResponse)
}
