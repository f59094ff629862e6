// Package codes maps build failures to process exit codes.
package codes

import (
	"errors"

	"github.com/Norgate-AV/mpb/internal/acquire"
	"github.com/Norgate-AV/mpb/internal/fetch"
	"github.com/Norgate-AV/mpb/internal/installer"
	"github.com/Norgate-AV/mpb/internal/manifest"
	"github.com/Norgate-AV/mpb/internal/resolve"
)

// Exit codes
const (
	Success               = 0
	GeneralFailure        = 1
	ManifestInvalid       = 2
	VerificationExhausted = 3
	NetworkFailure        = 4
	ResolutionFailure     = 5
	InstallFailure        = 6
)

// ErrorCodes maps mpb exit codes to their descriptions
var ErrorCodes = map[int]string{
	Success:               "Success",
	GeneralFailure:        "General failure",
	ManifestInvalid:       "Manifest missing or invalid",
	VerificationExhausted: "Artifact failed verification on every attempt",
	NetworkFailure:        "Download failed",
	ResolutionFailure:     "Indexed file could not be resolved",
	InstallFailure:        "Server install failed",
}

// FromError returns the exit code for err. Wrapped errors are matched by
// their most specific cause.
func FromError(err error) int {
	if err == nil {
		return Success
	}

	var (
		manifestErr   *manifest.Error
		exhaustedErr  *acquire.VerificationExhaustedError
		resolutionErr *resolve.ResolutionError
		installErr    *installer.Error
		networkErr    *fetch.NetworkError
	)

	switch {
	case errors.As(err, &manifestErr):
		return ManifestInvalid
	case errors.As(err, &exhaustedErr):
		return VerificationExhausted
	case errors.As(err, &resolutionErr):
		return ResolutionFailure
	case errors.As(err, &installErr):
		return InstallFailure
	case errors.As(err, &networkErr):
		return NetworkFailure
	default:
		return GeneralFailure
	}
}

// GetErrorMessage returns the error message for a given exit code, or a generic message if unknown
func GetErrorMessage(code int) string {
	if msg, ok := ErrorCodes[code]; ok {
		return msg
	}

	return "Unknown error"
}
