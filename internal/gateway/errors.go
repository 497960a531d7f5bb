package gateway

import "fmt"

// DefaultSeedFailure is the seed error detail used when the backend sends no
// structured message.
const DefaultSeedFailure = "Failed to seed data"

// NetworkError reports a transport failure or a non-2xx status.
type NetworkError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: unexpected status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// APIError is a non-2xx response that carried a structured detail.
type APIError struct {
	Endpoint   string
	StatusCode int
	Message    string
	Code       string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: status %d: %s (%s)", e.Endpoint, e.StatusCode, e.Message, e.Code)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Endpoint, e.StatusCode, e.Message)
}

// SeedError is a non-2xx response from the seed endpoint.
type SeedError struct {
	StatusCode int
	Detail     string
	Code       string
}

func (e *SeedError) Error() string {
	return e.Detail
}
