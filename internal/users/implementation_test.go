package users

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"techlab/internal/flatfile"
)

func newGate(t *testing.T, maxAttempts int) Service {
	t.Helper()
	table := flatfile.NewTable(filepath.Join(t.TempDir(), "usuarios.csv"), TableFields)
	require.NoError(t, table.WriteAll([]flatfile.Record{
		{"usuario": "admin", "contrasena": "techlab2025"},
		{"usuario": "laura", "contrasena": "clave123"},
	}))
	return NewService(table, maxAttempts)
}

func TestAuthenticateExactMatch(t *testing.T) {
	gate := newGate(t, 3)
	ctx := context.Background()

	user, err := gate.Authenticate(ctx, "admin", "techlab2025")
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Username)

	_, err = gate.Authenticate(ctx, "admin", "TECHLAB2025")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = gate.Authenticate(ctx, "nadie", "techlab2025")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLockoutAfterMaxAttempts(t *testing.T) {
	gate := newGate(t, 3)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := gate.Authenticate(ctx, "laura", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}
	_, err := gate.Authenticate(ctx, "laura", "wrong")
	assert.ErrorIs(t, err, ErrLockedOut)

	// Locked out even with the right password.
	_, err = gate.Authenticate(ctx, "laura", "clave123")
	assert.ErrorIs(t, err, ErrLockedOut)

	// Other users are unaffected.
	_, err = gate.Authenticate(ctx, "admin", "techlab2025")
	require.NoError(t, err)
}

func TestSuccessResetsFailureCount(t *testing.T) {
	gate := newGate(t, 3)
	ctx := context.Background()

	_, err := gate.Authenticate(ctx, "laura", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = gate.Authenticate(ctx, "laura", "clave123")
	require.NoError(t, err)

	// The slate is clean again.
	for i := 0; i < 2; i++ {
		_, err = gate.Authenticate(ctx, "laura", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}
}

func TestMissingCredentialTable(t *testing.T) {
	table := flatfile.NewTable(filepath.Join(t.TempDir(), "usuarios.csv"), TableFields)
	gate := NewService(table, 3)

	// A missing table reads as empty: nobody can log in, but it is not a
	// server fault.
	_, err := gate.Authenticate(context.Background(), "admin", "x")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestMemorySessionStore(t *testing.T) {
	store := NewMemorySessionStore(time.Hour)
	ctx := context.Background()

	sess, err := store.Create(ctx, "admin")
	require.NoError(t, err)
	require.NotEmpty(t, sess.Token)

	got, err := store.Get(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", got.Username)

	require.NoError(t, store.Delete(ctx, sess.Token))
	_, err = store.Get(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemorySessionStoreExpiry(t *testing.T) {
	store := NewMemorySessionStore(-time.Second)

	sess, err := store.Create(context.Background(), "admin")
	require.NoError(t, err)

	_, err = store.Get(context.Background(), sess.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
