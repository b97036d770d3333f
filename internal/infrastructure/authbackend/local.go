package authbackend

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/talentsphere/talentsphere/internal/core/domain"
	"github.com/talentsphere/talentsphere/internal/core/ports"
)

// DemoPassword is the password of every seeded demo account.
const DemoPassword = "password123"

// Local serves the session from an in-process AuthService. Paired with the
// memory repository it is the mock backend.
type Local struct {
	svc     ports.AuthService
	latency time.Duration
	log     zerolog.Logger
}

// NewLocal wraps svc. A positive latency delays every call to mimic a network.
func NewLocal(svc ports.AuthService, latency time.Duration, log zerolog.Logger) *Local {
	return &Local{svc: svc, latency: latency, log: log}
}

func (b *Local) Login(ctx context.Context, creds domain.Credentials) (*domain.Identity, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	_, user, err := b.svc.Login(ctx, creds.Email, creds.Password)
	if err != nil {
		return nil, err
	}
	return user.Identity(), nil
}

func (b *Local) Register(ctx context.Context, data domain.RegistrationPayload) (*domain.Identity, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	user, err := b.svc.Register(ctx, ports.RegisterInput{
		Email:       data.Email,
		Password:    data.Password,
		FullName:    data.FullName,
		Role:        data.Role,
		CompanyName: data.CompanyName,
	})
	if err != nil {
		return nil, err
	}
	return user.Identity(), nil
}

func (b *Local) FetchProfile(ctx context.Context, id string) (*domain.Identity, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	user, err := b.svc.Profile(ctx, id)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user.Identity(), nil
}

// Seed registers one demo account per self-service role. Accounts that
// already exist are skipped.
func (b *Local) Seed(ctx context.Context) error {
	demo := []ports.RegisterInput{
		{Email: "candidate@talentsphere.dev", Password: DemoPassword, FullName: "Casey Candidate", Role: domain.RoleCandidate},
		{Email: "recruiter@talentsphere.dev", Password: DemoPassword, FullName: "Riley Recruiter", Role: domain.RoleRecruiter, CompanyName: "TalentSphere Demo Co"},
		{Email: "onboarding@talentsphere.dev", Password: DemoPassword, FullName: "Olive Onboarding", Role: domain.RoleRecruiter},
	}
	for _, in := range demo {
		if _, err := b.svc.Register(ctx, in); err != nil && !errors.Is(err, domain.ErrUserExists) {
			return err
		}
	}
	b.log.Debug().Int("accounts", len(demo)).Msg("demo accounts seeded")
	return nil
}

func (b *Local) wait(ctx context.Context) error {
	if b.latency <= 0 {
		return nil
	}
	t := time.NewTimer(b.latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
