package domain

import "errors"

// Session-layer failures. The session store records these as its last error
// and never returns them to callers.
var (
	ErrAuthentication       = errors.New("invalid email or password")
	ErrRegistration         = errors.New("registration failed")
	ErrProfileNotFound      = errors.New("session ended: account no longer exists")
	ErrSessionRefreshFailed = errors.New("session refresh failed")
)

// Backend failures.
var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserNotFound        = errors.New("user not found")
	ErrUserExists          = errors.New("user already exists")
	ErrInvalidRegistration = errors.New("invalid registration")
	ErrTooManyAttempts     = errors.New("too many failed login attempts")
	ErrForbidden           = errors.New("access forbidden")
	ErrInvalidCompany      = errors.New("invalid company association")
	ErrInvitationRequired  = errors.New("joining an existing company requires an invitation")
	ErrResumeParse         = errors.New("resume could not be parsed")
)
