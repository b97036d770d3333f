package ports

import (
	"context"

	"github.com/talentsphere/talentsphere/internal/core/domain"
)

// AuthBackend is what the session store calls to establish or refresh an
// identity. Implementations may be remote or in-process.
type AuthBackend interface {
	Login(ctx context.Context, creds domain.Credentials) (*domain.Identity, error)
	Register(ctx context.Context, data domain.RegistrationPayload) (*domain.Identity, error)
	// FetchProfile returns nil, nil when the identity no longer exists.
	FetchProfile(ctx context.Context, id string) (*domain.Identity, error)
}
