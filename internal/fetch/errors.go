package fetch

import "fmt"

// NetworkError is a failed retrieval: connection error, timeout, non-2xx
// status or oversized body
type NetworkError struct {
	URL string
	// StatusCode is zero when no response was received
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to download %s (status %d): %v", e.URL, e.StatusCode, e.Err)
	}

	return fmt.Sprintf("failed to download %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
