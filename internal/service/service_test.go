package service

import (
	"testing"
	"time"

	"github.com/niangamadou888/bookish-beacon-blog/internal/crypto"
	"github.com/niangamadou888/bookish-beacon-blog/internal/repository"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *repository.BadgerStore {
	t.Helper()
	store, err := repository.OpenBadger(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testHasher() *crypto.PasswordHasher {
	return crypto.NewPasswordHasher(crypto.HashParams{
		Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32,
	})
}

func newTestAuthService(t *testing.T) (*AuthService, *crypto.TokenService) {
	t.Helper()
	tokens := crypto.NewTokenService("test-secret", 7*24*time.Hour)
	return NewAuthService(newTestStore(t).Users(), tokens, testHasher()), tokens
}

// steppingClock returns increasing times one second apart, starting at start.
func steppingClock(start time.Time) func() time.Time {
	next := start
	return func() time.Time {
		t := next
		next = next.Add(time.Second)
		return t
	}
}

func newTestPostService(t *testing.T) *PostService {
	t.Helper()
	svc := NewPostService(newTestStore(t).Posts())
	svc.now = steppingClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	return svc
}
