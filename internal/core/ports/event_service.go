package ports

import (
	"context"
	"time"
)

// AuthEventInput is the DTO queued by AuthService and consumed by AuditService.
type AuthEventInput struct {
	UserID    string
	Email     string
	Type      string
	Timestamp time.Time
	Detail    string
}

// AuditService records auth events.
type AuditService interface {
	Record(ctx context.Context, event AuthEventInput) error
}

// EventPublisher hands events to the audit pipeline without blocking the caller
// on persistence.
type EventPublisher interface {
	Publish(event AuthEventInput)
}
