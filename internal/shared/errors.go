package shared

import "errors"

var (
	// ErrCSRFTokenMissing occurs when no CSRF token accompanies a request.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)
