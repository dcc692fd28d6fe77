package dri

import (
	"context"
	"log/slog"
)

// NoopEventSink is a no-operation implementation of EventSink
type NoopEventSink struct{}

// NewNoopEventSink creates a new no-operation event sink
func NewNoopEventSink() EventSink {
	return &NoopEventSink{}
}

func (n *NoopEventSink) RecordCreated(ctx context.Context, record *Record) error { return nil }

func (n *NoopEventSink) RecordUpdated(ctx context.Context, recordID string) error { return nil }

func (n *NoopEventSink) RecordDeleted(ctx context.Context, recordID string) error { return nil }

func (n *NoopEventSink) RecordPublished(ctx context.Context, recordID, fedoraID string) error {
	return nil
}

// LogEventSink writes every event to a structured logger.
type LogEventSink struct {
	logger *slog.Logger
}

// NewLogEventSink creates an event sink backed by logger. A nil logger uses slog.Default().
func NewLogEventSink(logger *slog.Logger) EventSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogEventSink{logger: logger}
}

func (l *LogEventSink) RecordCreated(ctx context.Context, record *Record) error {
	l.logger.InfoContext(ctx, "Record created", "id", record.ID, "type", record.Type, "label", record.Label)
	return nil
}

func (l *LogEventSink) RecordUpdated(ctx context.Context, recordID string) error {
	l.logger.InfoContext(ctx, "Record updated", "id", recordID)
	return nil
}

func (l *LogEventSink) RecordDeleted(ctx context.Context, recordID string) error {
	l.logger.InfoContext(ctx, "Record deleted", "id", recordID)
	return nil
}

func (l *LogEventSink) RecordPublished(ctx context.Context, recordID, fedoraID string) error {
	l.logger.InfoContext(ctx, "Record published", "id", recordID, "fedora_id", fedoraID)
	return nil
}
