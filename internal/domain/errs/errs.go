// Package errs defines the error taxonomy for download and DRM operations.
package errs

import (
	"errors"
	"fmt"
)

// Sentinel errors. Matched with errors.Is, none of these are retried.
var (
	// ErrConfiguration marks a missing device/key file or external tool,
	// detected before any network call.
	ErrConfiguration = errors.New("configuration error")

	// ErrAuthExpired is surfaced to the caller, who may re-authenticate
	// and re-invoke the run.
	ErrAuthExpired = errors.New("authentication expired")

	// ErrNoKeysAvailable marks a manifest that yielded no protection header
	// or a license that yielded no content keys.
	ErrNoKeysAvailable = errors.New("no decryption keys available")

	// ErrLicenseRejected marks a non-200 response from the license endpoint.
	ErrLicenseRejected = errors.New("license request rejected")
)

// NetworkError wraps a transient failure eligible for retry.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Network wraps err as a transient network failure.
func Network(op string, err error) error {
	return &NetworkError{Op: op, Err: err}
}

// SubprocessError wraps a non-zero exit from an external tool.
type SubprocessError struct {
	Tool   string
	Output string
	Err    error
}

func (e *SubprocessError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("%s failed: %v: %s", e.Tool, e.Err, e.Output)
	}
	return fmt.Sprintf("%s failed: %v", e.Tool, e.Err)
}

func (e *SubprocessError) Unwrap() error { return e.Err }

// Subprocess wraps err as a failed external tool invocation.
func Subprocess(tool, output string, err error) error {
	return &SubprocessError{Tool: tool, Output: output, Err: err}
}

// Permanent reports whether err must never be retried.
func Permanent(err error) bool {
	return errors.Is(err, ErrConfiguration) ||
		errors.Is(err, ErrAuthExpired) ||
		errors.Is(err, ErrNoKeysAvailable) ||
		errors.Is(err, ErrLicenseRejected)
}
