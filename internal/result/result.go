// Package result provides the uniform outcome wrapper shared by every
// outbound integration: market quotes, rate series, and AI enrichment.
// Failures are classified into a closed taxonomy so callers can apply one
// retry/backoff/messaging policy instead of inspecting transport errors.
package result

import "fmt"

// Code is the closed failure taxonomy.
type Code string

const (
	NetworkError      Code = "NETWORK_ERROR"       // timeout, DNS failure, empty body; retryable with backoff
	RateLimitExceeded Code = "RATE_LIMIT_EXCEEDED" // back off, never retry immediately
	InvalidSymbol     Code = "INVALID_SYMBOL"      // not retryable
	APIKeyInvalid     Code = "API_KEY_INVALID"     // fail fast, surface to configuration
	ParseError        Code = "PARSE_ERROR"         // upstream schema drift; log, do not retry blindly
	Unknown           Code = "UNKNOWN"
)

// Retryable reports whether a caller may retry after backoff.
func (c Code) Retryable() bool {
	return c == NetworkError || c == RateLimitExceeded
}

// Error carries a classified integration failure.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Errorf builds a classified error.
func Errorf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Result holds either a success value or a classified error.
type Result[T any] struct {
	Data *T     `json:"data,omitempty"`
	Err  *Error `json:"error,omitempty"`
}

// Ok wraps a success value.
func Ok[T any](data T) Result[T] {
	return Result[T]{Data: &data}
}

// Fail wraps a classified error.
func Fail[T any](err *Error) Result[T] {
	return Result[T]{Err: err}
}

// IsSuccess reports whether the result carries data.
func (r Result[T]) IsSuccess() bool {
	return r.Data != nil && r.Err == nil
}

// FromStatus maps an HTTP status code from a market-data style provider
// into the taxonomy. 2xx is not an error and maps to Unknown.
func FromStatus(status int) Code {
	switch {
	case status == 429:
		return RateLimitExceeded
	case status == 401 || status == 403:
		return APIKeyInvalid
	case status == 404:
		return InvalidSymbol
	case status >= 200 && status < 300:
		return Unknown
	default:
		return NetworkError
	}
}
