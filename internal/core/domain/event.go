package domain

import "time"

// AuthEventType names what happened to an account.
type AuthEventType string

const (
	EventLoginSucceeded    AuthEventType = "login_succeeded"
	EventLoginFailed       AuthEventType = "login_failed"
	EventRegistered        AuthEventType = "registered"
	EventCompanyAssociated AuthEventType = "company_associated"
)

// Valid reports whether t is a known event type.
func (t AuthEventType) Valid() bool {
	switch t {
	case EventLoginSucceeded, EventLoginFailed, EventRegistered, EventCompanyAssociated:
		return true
	}
	return false
}

// AuthEvent is an entry in the account activity trail.
type AuthEvent struct {
	UserID    string        `bson:"user_id,omitempty"` // empty for failures against unknown emails
	Email     string        `bson:"email"`
	Type      AuthEventType `bson:"type"`
	Timestamp time.Time     `bson:"timestamp"`
	Detail    string        `bson:"detail,omitempty"`
}
