package model

// APIResponse is the envelope returned by every endpoint.
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// OK builds a success envelope.
func OK(message string, data any) APIResponse {
	return APIResponse{Success: true, Message: message, Data: data}
}

// Fail builds an error envelope. Data carries the field→message map
// for validation failures and is null otherwise.
func Fail(message string, data any) APIResponse {
	return APIResponse{Success: false, Message: message, Data: data}
}

// Page wraps a list response with the requested window.
type Page[T any] struct {
	Items  []T `json:"items"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Count  int `json:"count"`
}

// NewPage builds a Page from a result window.
func NewPage[T any](items []T, limit, offset int) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Limit: limit, Offset: offset, Count: len(items)}
}
