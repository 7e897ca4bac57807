// Package errs contains sentinel and typed errors used across layers for
// stable error mapping.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrStudentNotFound indicates the student row does not exist locally.
	ErrStudentNotFound = errors.New("student not found")

	// ErrRecordIncomplete indicates a remote record is missing a required
	// field and was skipped during normalization.
	ErrRecordIncomplete = errors.New("record incomplete")
)

// APIError is a domain failure reported by the Codeforces API itself:
// the endpoint answered but the envelope status was not OK.
type APIError struct {
	Comment string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("codeforces api: %s", e.Comment)
}

// NetworkError is a transport-level failure reaching the Codeforces API,
// including timeouts and undecodable bodies.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("codeforces transport: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsJudgeError reports whether err came out of the judge client,
// either as a domain or a transport failure.
func IsJudgeError(err error) bool {
	var apiErr *APIError
	var netErr *NetworkError
	return errors.As(err, &apiErr) || errors.As(err, &netErr)
}
