package service

import (
	"context"
	"strings"
	"time"

	"rtidesk/internal/audit"
	id "rtidesk/pkg/domain"
	dErrors "rtidesk/pkg/domain-errors"
	"rtidesk/pkg/requestcontext"
)

// fail logs err with the operation and ids before it is returned.
func (s *Service) fail(ctx context.Context, operation string, appID id.ApplicationID, err error) error {
	args := []any{
		"operation", operation,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	}
	if !appID.IsNil() {
		args = append(args, "application_id", appID.String())
	}
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		s.logger.ErrorContext(ctx, "rti operation failed", args...)
	} else {
		s.logger.WarnContext(ctx, "rti operation rejected", args...)
	}
	return err
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditPublisher == nil {
		return
	}
	event.RequestID = requestcontext.RequestID(ctx)
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"application_id", event.ApplicationID.String(),
			"error", err,
		)
	}
}

func (s *Service) observe(operation string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveOperation(operation, start)
	}
}

func (s *Service) recordTransition(operation string, err error) {
	if s.metrics == nil {
		return
	}
	result := "ok"
	switch {
	case err == nil:
	case dErrors.HasCode(err, dErrors.CodeInvalidState):
		result = "rejected"
	case dErrors.HasCode(err, dErrors.CodeNotFound):
		result = "not_found"
	default:
		result = "error"
	}
	s.metrics.RecordTransition(operation, result)
}

func joinKeys(keys []string) string {
	return strings.Join(keys, ",")
}
