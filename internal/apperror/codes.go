package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	CodeRequiredField      Code = "REQUIRED_FIELD"
	CodeInvalidInput       Code = "INVALID_INPUT"
	CodeConfigurationError Code = "CONFIGURATION_ERROR"
	CodeInternalError      Code = "INTERNAL_ERROR"
	CodeUnknownError       Code = "UNKNOWN_ERROR"
)

// Remote quote service error codes
const (
	// Transient: safe to retry with backoff.
	CodeRateLimited        Code = "RATE_LIMITED"
	CodeServerError        Code = "SERVER_ERROR"
	CodeServiceTimeout     Code = "SERVICE_TIMEOUT"
	CodeServiceUnavailable Code = "SERVICE_UNAVAILABLE"

	// Not retryable: the request itself is wrong, or the response
	// shape does not match the schema (retrying will not fix either).
	CodeClientError       Code = "CLIENT_ERROR"
	CodeMalformedResponse Code = "MALFORMED_RESPONSE"

	CodeCircuitOpen Code = "CIRCUIT_OPEN"
)

// Domain error codes
const (
	// CodeNoQuote means the remote service reported no viable quote for
	// the requested amount: either the amount exceeds available
	// liquidity or the route is unsupported. The depth search consumes
	// this as an "amount too large" signal, it is not a failure of the
	// transport.
	CodeNoQuote Code = "NO_QUOTE"

	CodeEventQueryFailed Code = "EVENT_QUERY_FAILED"
)
