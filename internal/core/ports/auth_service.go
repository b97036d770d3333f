package ports

import (
	"context"

	"github.com/talentsphere/talentsphere/internal/core/domain"
)

// RegisterInput is the DTO passed from the transport layer to AuthService.
type RegisterInput struct {
	Email       string
	Password    string
	FullName    string
	Role        domain.Role
	CompanyName string // optional: recruiter creates a company at sign-up
}

// AssociateCompanyInput asks for a new company named CompanyName. CompanyID is
// reserved for invitations and must be empty until they exist.
type AssociateCompanyInput struct {
	UserID      string
	CompanyID   string
	CompanyName string
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	Profile(ctx context.Context, id string) (*domain.User, error)
	AssociateCompany(ctx context.Context, input AssociateCompanyInput) (string, *domain.User, error)
}
