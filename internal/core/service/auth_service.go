package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/talentsphere/talentsphere/internal/api/metrics"
	"github.com/talentsphere/talentsphere/internal/core/domain"
	"github.com/talentsphere/talentsphere/internal/core/ports"
)

const minPasswordLength = 8

// AuthService implements registration, login, profile lookup and company
// association on top of a UserRepository.
type AuthService struct {
	repo      ports.UserRepository
	throttle  ports.LoginThrottle
	events    ports.EventPublisher
	jwtSecret string
	tokenTTL  time.Duration
	log       zerolog.Logger
}

// NewAuthService wires the service. throttle and events may be nil.
func NewAuthService(
	repo ports.UserRepository,
	throttle ports.LoginThrottle,
	events ports.EventPublisher,
	jwtSecret string,
	tokenTTL time.Duration,
	log zerolog.Logger,
) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		repo:      repo,
		throttle:  throttle,
		events:    events,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		log:       log,
	}
}

// Register creates an account. A recruiter starts unassociated unless a
// company name is given, in which case the company is created on the spot.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	email := normalizeEmail(in.Email)
	fullName := strings.TrimSpace(in.FullName)
	if email == "" || fullName == "" || len(in.Password) < minPasswordLength {
		return nil, domain.ErrInvalidRegistration
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, domain.ErrInvalidRegistration
	}

	role := in.Role
	var company *domain.Company
	switch role {
	case domain.RoleCandidate:
	case domain.RoleRecruiter, domain.RoleRecruiterUnassociated:
		role = domain.RoleRecruiterUnassociated
		if name := strings.TrimSpace(in.CompanyName); name != "" {
			company = &domain.Company{ID: uuid.NewString(), Name: name}
			role = domain.RoleRecruiter
		}
	default:
		// Admins are provisioned out of band, never through sign-up.
		return nil, domain.ErrInvalidRegistration
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Email:        email,
		FullName:     fullName,
		PasswordHash: string(hash),
		Role:         role,
		Company:      company,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		metrics.AuthOperationsTotal.WithLabelValues("register", resultLabel(err)).Inc()
		return nil, err
	}

	metrics.AuthOperationsTotal.WithLabelValues("register", "success").Inc()
	s.publish(created.ID, created.Email, domain.EventRegistered, string(created.Role))
	s.log.Info().Str("user_id", created.ID).Str("role", string(created.Role)).Msg("user registered")
	return created, nil
}

// Login verifies credentials and issues a token. Unknown emails and wrong
// passwords both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	if s.throttle != nil {
		exceeded, err := s.throttle.Exceeded(ctx, email)
		if err != nil {
			s.log.Warn().Err(err).Msg("login throttle check failed, continuing")
		} else if exceeded {
			metrics.AuthOperationsTotal.WithLabelValues("login", "throttled").Inc()
			return "", nil, domain.ErrTooManyAttempts
		}
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.loginFailed(ctx, "", email, "unknown email")
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.loginFailed(ctx, user.ID, email, "wrong password")
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, email); err != nil {
			s.log.Warn().Err(err).Msg("failed to reset login throttle")
		}
	}
	metrics.AuthOperationsTotal.WithLabelValues("login", "success").Inc()
	s.publish(user.ID, user.Email, domain.EventLoginSucceeded, "")
	return token, user, nil
}

// Profile returns the account behind id, or ErrUserNotFound.
func (s *AuthService) Profile(ctx context.Context, id string) (*domain.User, error) {
	if id == "" {
		return nil, domain.ErrUserNotFound
	}
	return s.repo.FindByID(ctx, id)
}

// AssociateCompany creates a company for an unassociated recruiter and returns
// a token carrying the new claims. Joining an existing company needs an
// invitation flow, which does not exist yet, so a given company id is refused.
func (s *AuthService) AssociateCompany(ctx context.Context, in ports.AssociateCompanyInput) (string, *domain.User, error) {
	name := strings.TrimSpace(in.CompanyName)
	if name == "" {
		return "", nil, domain.ErrInvalidCompany
	}
	if strings.TrimSpace(in.CompanyID) != "" {
		metrics.AuthOperationsTotal.WithLabelValues("associate_company", "forbidden").Inc()
		return "", nil, domain.ErrInvitationRequired
	}

	user, err := s.repo.FindByID(ctx, in.UserID)
	if err != nil {
		return "", nil, err
	}
	if user.Identity().EffectiveRole() != domain.RoleRecruiterUnassociated {
		metrics.AuthOperationsTotal.WithLabelValues("associate_company", "forbidden").Inc()
		return "", nil, domain.ErrForbidden
	}

	companyID := uuid.NewString()
	updated, err := s.repo.SetCompany(ctx, user.ID, domain.Company{ID: companyID, Name: name})
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			metrics.AuthOperationsTotal.WithLabelValues("associate_company", "forbidden").Inc()
		}
		return "", nil, err
	}

	token, err := s.generateToken(updated)
	if err != nil {
		return "", nil, err
	}

	metrics.AuthOperationsTotal.WithLabelValues("associate_company", "success").Inc()
	s.publish(updated.ID, updated.Email, domain.EventCompanyAssociated, companyID)
	s.log.Info().Str("user_id", updated.ID).Str("company_id", companyID).Msg("recruiter associated with company")
	return token, updated, nil
}

func (s *AuthService) loginFailed(ctx context.Context, userID, email, reason string) {
	metrics.AuthOperationsTotal.WithLabelValues("login", "invalid_credentials").Inc()
	if s.throttle != nil {
		if err := s.throttle.RecordFailure(ctx, email); err != nil {
			s.log.Warn().Err(err).Msg("failed to record login failure")
		}
	}
	s.publish(userID, email, domain.EventLoginFailed, reason)
}

func (s *AuthService) publish(userID, email string, typ domain.AuthEventType, detail string) {
	if s.events == nil {
		return
	}
	s.events.Publish(ports.AuthEventInput{
		UserID:    userID,
		Email:     email,
		Type:      string(typ),
		Timestamp: time.Now().UTC(),
		Detail:    detail,
	})
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"exp":  time.Now().Add(s.tokenTTL).Unix(),
	}
	if user.Company != nil {
		claims["company_id"] = user.Company.ID
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrUserExists):
		return "conflict"
	case errors.Is(err, domain.ErrInvalidRegistration):
		return "invalid"
	default:
		return "error"
	}
}
