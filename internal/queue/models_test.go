package queue

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowResultEvent_CarriesRunID(t *testing.T) {
	event := RowResultEvent{
		RunID:        "0b3f1c2a-9d7e-4a61-8f3b-5c2d4e6f8a90",
		RowIndex:     2,
		Label:        "+911234567890",
		RecordingURL: "https://cdn.example.com/call-2.mp3",
		Status:       "Success",
		Detail:       "3 segments",
		Transcript:   "Speaker 1 - \"Hello\" [0ms to 900ms]",
		CompletedAt:  time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC),
	}

	body, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &decoded))

	assert.Equal(t, event.RunID, decoded["run_id"])
	assert.Equal(t, "Success", decoded["status"])
	assert.Equal(t, float64(2), decoded["row_index"])
}
