// Package types holds the wire shapes shared across HTTP handlers.
package types

// SuccessEnvelope wraps every successful body under "data" so clients can
// decode responses uniformly.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public half of a failure: a stable machine code, a
// human-readable message, and optional structured details.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// NewErrorEnvelope assembles the body for an error response.
func NewErrorEnvelope(code, message string, details any) ErrorEnvelope {
	return ErrorEnvelope{Error: APIError{Code: code, Message: message, Details: details}}
}
