package testutils

import (
	"context"
	"errors"

	"github.com/pedalworks/catalogiq/pkg/eventstream"
)

// MockPublisher is a test publisher that records every published event.
type MockPublisher struct {
	Events []*eventstream.IndexRunCompletedEvent

	// Fail causes PublishIndexRun to return an error.
	Fail bool
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) PublishIndexRun(_ context.Context, event *eventstream.IndexRunCompletedEvent) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}
	if m.Fail {
		return errors.New("mock publish failure")
	}
	m.Events = append(m.Events, event)
	return nil
}

func (m *MockPublisher) Close() error { return nil }

var _ eventstream.Publisher = (*MockPublisher)(nil)
