package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/talentsphere/talentsphere/internal/api/metrics"
	"github.com/talentsphere/talentsphere/internal/core/domain"
	"github.com/talentsphere/talentsphere/internal/core/ports"
)

type auditService struct {
	eventRepo ports.EventRepository
	log       zerolog.Logger
}

// NewAuditService returns an AuditService implementation.
func NewAuditService(eventRepo ports.EventRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{
		eventRepo: eventRepo,
		log:       log,
	}
}

// Record validates and persists a single account event.
func (s *auditService) Record(ctx context.Context, in ports.AuthEventInput) error {
	typ := domain.AuthEventType(in.Type)
	if !typ.Valid() {
		return fmt.Errorf("record event: unknown type %q", in.Type)
	}

	ts := in.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	event := &domain.AuthEvent{
		UserID:    in.UserID,
		Email:     in.Email,
		Type:      typ,
		Timestamp: ts,
		Detail:    in.Detail,
	}
	if err := s.eventRepo.InsertEvent(ctx, event); err != nil {
		metrics.AuthEventsErrorsTotal.WithLabelValues("insert_failed").Inc()
		return fmt.Errorf("record event: %w", err)
	}

	metrics.AuthEventsRecordedTotal.WithLabelValues(in.Type).Inc()
	s.log.Debug().
		Str("user_id", in.UserID).
		Str("type", in.Type).
		Msg("auth event recorded")

	return nil
}
