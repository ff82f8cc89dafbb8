package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	CodeRequiredField:      "Required field is missing",
	CodeInvalidInput:       "Invalid input provided",
	CodeConfigurationError: "Configuration error",
	CodeInternalError:      "Internal error",
	CodeUnknownError:       "An unknown error occurred",

	CodeRateLimited:        "Remote service rate limit exceeded",
	CodeServerError:        "Remote service returned a server error",
	CodeServiceTimeout:     "Remote service request timed out",
	CodeServiceUnavailable: "Remote service temporarily unavailable",
	CodeClientError:        "Remote service rejected the request",
	CodeMalformedResponse:  "Remote service response did not match the expected schema",
	CodeCircuitOpen:        "Circuit breaker is open",

	CodeNoQuote:          "No viable quote for the requested amount",
	CodeEventQueryFailed: "Historical event query failed",
}
