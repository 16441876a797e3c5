// internal/users/service.go
package users

import "context"

// Service defines the interface for the credential gate.
type Service interface {
	// Authenticate checks a username/password pair against the credential
	// table. Failures count toward a per-user lockout; a success resets it.
	Authenticate(ctx context.Context, username, password string) (*User, error)
}
