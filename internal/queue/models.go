package queue

import "time"

// RowResultEvent is published once per processed row.
type RowResultEvent struct {
	RunID        string    `json:"run_id,omitempty"`
	RowIndex     int       `json:"row_index"`
	Label        string    `json:"label"`
	RecordingURL string    `json:"recording_url"`
	Status       string    `json:"status"`
	Detail       string    `json:"detail"`
	Transcript   string    `json:"transcript,omitempty"`
	CompletedAt  time.Time `json:"completed_at"`
}
