package vault

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

func (n *NoopEventSink) ComponentCreated(ctx context.Context, component *Component) error {
	return nil
}

func (n *NoopEventSink) ComponentUpdated(ctx context.Context, component *Component) error {
	return nil
}

func (n *NoopEventSink) ComponentDeleted(ctx context.Context, id string) error {
	return nil
}

func (n *NoopEventSink) MediaUploaded(ctx context.Context, componentID string, file *StoredFile) error {
	return nil
}

func (n *NoopEventSink) MediaDeleted(ctx context.Context, url string) error {
	return nil
}

// LogEventSink writes every lifecycle event to a structured logger.
type LogEventSink struct {
	Logger *slog.Logger
}

// NewLogEventSink returns a sink logging at Info level. A nil logger means
// slog.Default().
func NewLogEventSink(logger *slog.Logger) EventSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogEventSink{Logger: logger}
}

func (l *LogEventSink) ComponentCreated(ctx context.Context, component *Component) error {
	l.Logger.InfoContext(ctx, "component created", "id", component.ID, "slug", component.Slug, "category", component.Category)
	return nil
}

func (l *LogEventSink) ComponentUpdated(ctx context.Context, component *Component) error {
	l.Logger.InfoContext(ctx, "component updated", "id", component.ID, "slug", component.Slug)
	return nil
}

func (l *LogEventSink) ComponentDeleted(ctx context.Context, id string) error {
	l.Logger.InfoContext(ctx, "component deleted", "id", id)
	return nil
}

func (l *LogEventSink) MediaUploaded(ctx context.Context, componentID string, file *StoredFile) error {
	l.Logger.InfoContext(ctx, "media uploaded", "component_id", componentID, "url", file.URL, "media_type", file.MediaType, "size", file.Size)
	return nil
}

func (l *LogEventSink) MediaDeleted(ctx context.Context, url string) error {
	l.Logger.InfoContext(ctx, "media deleted", "url", url)
	return nil
}
