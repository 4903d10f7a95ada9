package queue

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/99minutos/identity-service/internal/core/domain"
)

// LogSink writes audit events as structured log lines. It is the sink used
// when no database-backed audit trail is configured.
type LogSink struct {
	log zerolog.Logger
}

func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Record(_ context.Context, event domain.AuditEvent) error {
	e := s.log.Info()
	if !event.Success {
		e = s.log.Warn()
	}
	e.Str("event_type", string(event.Type)).
		Str("username", event.Username).
		Bool("success", event.Success).
		Time("occurred_at", event.At)
	if event.SubjectID != 0 {
		e.Int64("subject_id", event.SubjectID)
	}
	if event.ActorID != 0 {
		e.Int64("actor_id", event.ActorID)
	}
	if event.RequestID != "" {
		e.Str("request_id", event.RequestID)
	}
	e.Msg("audit")
	return nil
}
