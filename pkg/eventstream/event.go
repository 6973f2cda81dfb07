package eventstream

import "time"

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeIndexRunCompleted is emitted after an indexing run finishes,
	// whether it completed or failed.
	EventTypeIndexRunCompleted = "catalogiq.index.run.completed"
)

// IndexRunCompletedEvent is a transport-neutral event payload for a finished
// indexing run.
type IndexRunCompletedEvent struct {
	SchemaVersion int          `json:"schema_version"`
	EventType     string       `json:"event_type"`
	EventID       string       `json:"event_id"`
	EmittedAt     time.Time    `json:"emitted_at"`
	Run           IndexRunMeta `json:"run"`
}

// IndexRunMeta captures the outcome of a single indexing run.
type IndexRunMeta struct {
	RunID       string    `json:"run_id"`
	Status      string    `json:"status"`
	Provider    string    `json:"provider"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	DurationMs  int64     `json:"duration_ms"`
	Attempted   int       `json:"attempted"`
	Indexed     int       `json:"indexed"`
	Skipped     int       `json:"skipped"`
	SkippedIDs  []int     `json:"skipped_ids,omitempty"`
}
