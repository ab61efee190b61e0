package types

// Envelope is the uniform JSON wrapper for list/query and mutation endpoints.
// Total is only present on list responses.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Total   *int   `json:"total,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope is the structural error payload, distinct from the
// success=false informational envelope used for empty query results.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
