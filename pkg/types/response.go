// Package types holds the JSON envelopes shared by every commerce
// endpoint.
package types

// SuccessEnvelope wraps successful payloads such as availability
// figures, cart item receipts, and the ledger snapshot.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public shape of a rejected or failed request. Code
// mirrors the internal error code; Details carries field-level
// validation messages when the code allows them.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps an APIError.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
