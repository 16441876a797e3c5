// internal/users/domain.go
package users

import "errors"

var (
	// ErrInvalidCredentials is returned when no credential row matches.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrLockedOut is returned after too many consecutive failures.
	ErrLockedOut = errors.New("too many failed attempts")
	// ErrRateLimited is returned when logins arrive faster than allowed.
	ErrRateLimited = errors.New("rate limit exceeded")
	// ErrSessionNotFound is returned for unknown or expired session tokens.
	ErrSessionNotFound = errors.New("session not found")
)

// User is an operator of the system, read from usuarios.csv. The table is an
// external interface this system consumes, not owns: plaintext credentials
// matched exactly.
type User struct {
	Username string `json:"usuario"`
	Password string `json:"-"`
}
