// internal/users/implementation.go
package users

import (
	"context"
	"crypto/subtle"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"techlab/internal/flatfile"
)

// TableFields is the fixed column order of usuarios.csv.
var TableFields = []string{"usuario", "contrasena"}

// service implements the Service interface over the credential table.
type service struct {
	mu          sync.Mutex
	table       *flatfile.Table
	limiter     *rate.Limiter
	maxAttempts int
	failures    map[string]int
}

// NewService creates a credential gate. maxAttempts consecutive failures for
// one username lock it out until a restart.
func NewService(table *flatfile.Table, maxAttempts int) Service {
	return &service{
		table:       table,
		limiter:     rate.NewLimiter(rate.Every(time.Second), 5),
		maxAttempts: maxAttempts,
		failures:    make(map[string]int),
	}
}

func (s *service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	if !s.limiter.Allow() {
		return nil, ErrRateLimited
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failures[username] >= s.maxAttempts {
		return nil, ErrLockedOut
	}

	records, err := s.table.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}
	for _, rec := range records {
		if rec["usuario"] == username &&
			subtle.ConstantTimeCompare([]byte(rec["contrasena"]), []byte(password)) == 1 {
			delete(s.failures, username)
			return &User{Username: username}, nil
		}
	}

	s.failures[username]++
	if s.failures[username] >= s.maxAttempts {
		return nil, ErrLockedOut
	}
	return nil, ErrInvalidCredentials
}
