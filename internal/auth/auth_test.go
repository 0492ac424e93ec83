package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type allowList map[string]bool

func (a allowList) Authenticate(ctx context.Context, credential string) bool {
	return a[credential]
}

func TestPassphraseAuthenticator(t *testing.T) {
	a := NewPassphraseAuthenticator("CHD2025")
	ctx := context.Background()

	assert.True(t, a.Authenticate(ctx, "CHD2025"))
	assert.False(t, a.Authenticate(ctx, "chd2025"))
	assert.False(t, a.Authenticate(ctx, "CHD2025 "))
	assert.False(t, a.Authenticate(ctx, ""))
}

func TestSessions_LoginAndLogout(t *testing.T) {
	s := NewSessions(NewPassphraseAuthenticator("open sesame"), time.Hour)
	ctx := context.Background()

	_, ok := s.Login(ctx, "wrong")
	assert.False(t, ok)

	token, ok := s.Login(ctx, "open sesame")
	require.True(t, ok)
	assert.NotEmpty(t, token)
	assert.True(t, s.Valid(token))

	other, ok := s.Login(ctx, "open sesame")
	require.True(t, ok)
	assert.NotEqual(t, token, other)

	s.Logout(token)
	assert.False(t, s.Valid(token))
	assert.True(t, s.Valid(other))
	assert.False(t, s.Valid(""))
}

// TestSessions_PluggableAuthenticator swaps in a different credential check
func TestSessions_PluggableAuthenticator(t *testing.T) {
	s := NewSessions(allowList{"alice-key": true}, time.Hour)

	_, ok := s.Login(context.Background(), "open sesame")
	assert.False(t, ok)
	token, ok := s.Login(context.Background(), "alice-key")
	assert.True(t, ok)
	assert.True(t, s.Valid(token))
}

func TestSessions_Expire(t *testing.T) {
	s := NewSessions(NewPassphraseAuthenticator("pw"), 20*time.Millisecond)
	token, ok := s.Login(context.Background(), "pw")
	require.True(t, ok)
	time.Sleep(40 * time.Millisecond)
	assert.False(t, s.Valid(token))
}
