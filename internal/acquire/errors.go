package acquire

import "fmt"

// VerificationExhaustedError is returned when no attempt for an artifact
// produced bytes matching its expected hash. It aborts the build.
type VerificationExhaustedError struct {
	Name     string
	URL      string
	Attempts int

	// LastDigest is the digest observed on the last successful fetch, if any
	LastDigest string

	// LastErr is the error of the last failed fetch, if any
	LastErr error
}

func (e *VerificationExhaustedError) Error() string {
	msg := fmt.Sprintf("failed to acquire %s from %s after %d attempts", e.Name, e.URL, e.Attempts)
	if e.LastDigest != "" {
		msg += fmt.Sprintf(": last digest %s", e.LastDigest)
	}

	if e.LastErr != nil {
		msg += fmt.Sprintf(": %v", e.LastErr)
	}

	return msg
}

func (e *VerificationExhaustedError) Unwrap() error {
	return e.LastErr
}
