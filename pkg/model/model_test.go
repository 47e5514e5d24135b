package model

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJob_Validate(t *testing.T) {
	valid := Job{
		Language:     LanguageHindi,
		MinSpeakers:  2,
		MaxSpeakers:  2,
		APIKey:       "key",
		FetchTimeout: 30 * time.Second,
		CallTimeout:  2 * time.Minute,
	}

	tests := []struct {
		name    string
		mutate  func(*Job)
		wantErr string
	}{
		{name: "valid", mutate: func(j *Job) {}},
		{
			name:    "missing api key",
			mutate:  func(j *Job) { j.APIKey = "" },
			wantErr: "missing API key",
		},
		{
			name:    "unknown language",
			mutate:  func(j *Job) { j.Language = "klingon" },
			wantErr: "unknown language mode",
		},
		{
			name:    "min speakers below one",
			mutate:  func(j *Job) { j.MinSpeakers = 0 },
			wantErr: "min speakers",
		},
		{
			name:    "max below min",
			mutate:  func(j *Job) { j.MinSpeakers = 3; j.MaxSpeakers = 2 },
			wantErr: "below min speakers",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := valid
			tt.mutate(&job)

			err := job.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestLanguageMode_PromptDescription(t *testing.T) {
	assert.Equal(t, "English (Indian accent)", LanguageEnglishIndia.PromptDescription())
	assert.Equal(t, "Hindi (Devanagari script)", LanguageHindi.PromptDescription())
	assert.Equal(t, "Mixed English and Hindi (code-switching)", LanguageMixed.PromptDescription())
	assert.Empty(t, LanguageMode("unknown").PromptDescription())
}

func TestRow_DisplayLabel(t *testing.T) {
	assert.Equal(t, "Unknown", Row{}.DisplayLabel())
	assert.Equal(t, "+911234567890", Row{Label: "+911234567890"}.DisplayLabel())
}

func TestSuccess_SegmentCount(t *testing.T) {
	single := Success(`Speaker 1 - "Hello" [0ms to 1200ms]`)
	assert.Equal(t, 1, single.SegmentCount)

	three := Success("line one\nline two\nline three")
	assert.Equal(t, 3, three.SegmentCount)
	assert.Equal(t, "3 segments", three.Detail())
}

func TestOutcome_Status(t *testing.T) {
	assert.Equal(t, "Success", Success("text").Status())
	assert.Equal(t, "No data", Empty("No response").Status())
	assert.Equal(t, "Failed", RemoteFailure("quota exceeded").Status())
	assert.Equal(t, "Failed", Timeout().Status())
	assert.Equal(t, "Failed", TransportFailure("connection refused").Status())
}

func TestOutcome_TranscriptCell(t *testing.T) {
	assert.Equal(t, "hello", Success("hello").TranscriptCell())
	// Empty results write their bare tag, never an "ERROR: " prefix; the
	// call succeeded and the row classifies as "No data", not "Failed".
	assert.Equal(t, "No response", Empty("No response").TranscriptCell())
	assert.Equal(t, "No transcript generated", Empty("No transcript generated").TranscriptCell())
	assert.Equal(t, "ERROR: quota exceeded", RemoteFailure("quota exceeded").TranscriptCell())
	assert.Equal(t, "ERROR: Request timeout", Timeout().TranscriptCell())
}

func TestOutcome_Retryable(t *testing.T) {
	assert.True(t, Timeout().Retryable())
	assert.True(t, TransportFailure("reset").Retryable())
	assert.False(t, RemoteFailure("bad key").Retryable())
	assert.False(t, Empty("No response").Retryable())
	assert.False(t, Success("ok").Retryable())
}

func TestOutcome_DetailTruncation(t *testing.T) {
	long := strings.Repeat("x", 80)
	detail := RemoteFailure(long).Detail()
	assert.Len(t, detail, 50)
}

func TestBatchReport_Counts(t *testing.T) {
	report := &BatchReport{Entries: []ReportEntry{
		{Label: "a", Outcome: Success("ok")},
		{Label: "b", Outcome: Empty("No response")},
		{Label: "c", Outcome: Timeout()},
		{Label: "d", Outcome: Success("ok")},
	}}

	succeeded, empty, failed := report.Counts()
	assert.Equal(t, 2, succeeded)
	assert.Equal(t, 1, empty)
	assert.Equal(t, 1, failed)
}
