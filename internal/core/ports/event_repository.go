package ports

import (
	"context"

	"github.com/talentsphere/talentsphere/internal/core/domain"
)

// EventRepository persists the account activity trail.
type EventRepository interface {
	InsertEvent(ctx context.Context, event *domain.AuthEvent) error
}
