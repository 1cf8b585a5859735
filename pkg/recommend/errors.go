package recommend

import "errors"

var (
	// ErrInvalidInput marks a caller-fixable request: an empty prompt or
	// message, or an empty catalog.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRateLimited is returned once the model-call budget is exhausted.
	ErrRateLimited = errors.New("API request limit reached")

	// ErrUpstream wraps any failure of the model call itself.
	ErrUpstream = errors.New("model invocation failed")
)
