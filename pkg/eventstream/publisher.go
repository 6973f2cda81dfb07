package eventstream

import "context"

// Publisher publishes indexing run events to an event stream backend.
type Publisher interface {
	PublishIndexRun(ctx context.Context, event *IndexRunCompletedEvent) error
	Close() error
}
