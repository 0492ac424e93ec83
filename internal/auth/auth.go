package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"time"

	"chdash/internal"
	"chdash/ports"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// PassphraseAuthenticator grants access to anyone presenting one shared
// passphrase.
type PassphraseAuthenticator struct {
	digest [sha256.Size]byte
}

// NewPassphraseAuthenticator creates an authenticator for passphrase
func NewPassphraseAuthenticator(passphrase string) *PassphraseAuthenticator {
	return &PassphraseAuthenticator{digest: sha256.Sum256([]byte(passphrase))}
}

// Authenticate compares digests in constant time, so timing does not leak
// the passphrase length or prefix.
func (a *PassphraseAuthenticator) Authenticate(ctx context.Context, credential string) bool {
	got := sha256.Sum256([]byte(credential))
	return subtle.ConstantTimeCompare(got[:], a.digest[:]) == 1
}

// Sessions issues and checks session tokens for authenticated users.
type Sessions struct {
	authenticator ports.Authenticator
	tokens        *cache.Cache
	log           *internal.Logger
}

// NewSessions creates a session store whose tokens live for ttl
func NewSessions(authenticator ports.Authenticator, ttl time.Duration) *Sessions {
	return &Sessions{
		authenticator: authenticator,
		tokens:        cache.New(ttl, ttl),
		log:           internal.DefaultLogger.With("Auth"),
	}
}

// Login authenticates credential and returns a fresh session token.
func (s *Sessions) Login(ctx context.Context, credential string) (string, bool) {
	if !s.authenticator.Authenticate(ctx, credential) {
		s.log.Warn("Rejected login attempt")
		return "", false
	}
	token := uuid.NewString()
	s.tokens.Set(token, struct{}{}, cache.DefaultExpiration)
	s.log.Debug("Issued session token")
	return token, true
}

// Valid reports whether token belongs to a live session.
func (s *Sessions) Valid(token string) bool {
	if token == "" {
		return false
	}
	_, ok := s.tokens.Get(token)
	return ok
}

// Logout ends the session.
func (s *Sessions) Logout(token string) {
	s.tokens.Delete(token)
}
