package ports

import "context"

// Authenticator decides whether a credential grants dashboard access.
type Authenticator interface {
	Authenticate(ctx context.Context, credential string) bool
}
