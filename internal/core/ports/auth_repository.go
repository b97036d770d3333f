package ports

import (
	"context"

	"github.com/talentsphere/talentsphere/internal/core/domain"
)

// UserRepository defines the interface for account persistence.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// SetCompany stores the company on the account and promotes it to the
	// recruiter role in one write. It fails with ErrForbidden when the account
	// already has a company.
	SetCompany(ctx context.Context, id string, company domain.Company) (*domain.User, error)
}

// LoginThrottle counts failed logins per email over a sliding window.
type LoginThrottle interface {
	Exceeded(ctx context.Context, email string) (bool, error)
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}
