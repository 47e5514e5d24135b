package model

import (
	"fmt"
	"strings"
	"time"
)

// LanguageMode selects the language prompt used for transcription.
type LanguageMode string

const (
	LanguageEnglishIndia LanguageMode = "english-india"
	LanguageHindi        LanguageMode = "hindi"
	LanguageMixed        LanguageMode = "mixed"
)

// PromptDescription maps a language mode to the wording the remote model
// receives inside the transcription instruction.
func (l LanguageMode) PromptDescription() string {
	switch l {
	case LanguageEnglishIndia:
		return "English (Indian accent)"
	case LanguageHindi:
		return "Hindi (Devanagari script)"
	case LanguageMixed:
		return "Mixed English and Hindi (code-switching)"
	default:
		return ""
	}
}

// Job is the immutable configuration for one batch run.
type Job struct {
	Language     LanguageMode
	MinSpeakers  int
	MaxSpeakers  int
	APIKey       string
	FetchTimeout time.Duration
	CallTimeout  time.Duration
}

// Validate reports the first run-fatal configuration problem, if any.
func (j Job) Validate() error {
	if j.APIKey == "" {
		return fmt.Errorf("missing API key")
	}
	if j.Language.PromptDescription() == "" {
		return fmt.Errorf("unknown language mode: %q", j.Language)
	}
	if j.MinSpeakers < 1 {
		return fmt.Errorf("min speakers must be >= 1, got %d", j.MinSpeakers)
	}
	if j.MaxSpeakers < j.MinSpeakers {
		return fmt.Errorf("max speakers %d is below min speakers %d", j.MaxSpeakers, j.MinSpeakers)
	}
	return nil
}

// Row is one input record: a single recording to transcribe. Transcript is
// empty until the run writes it, exactly once.
type Row struct {
	Index        int
	RecordingURL string
	Label        string
	Transcript   string
}

// DisplayLabel returns the reference label, defaulting when absent.
func (r Row) DisplayLabel() string {
	if r.Label == "" {
		return "Unknown"
	}
	return r.Label
}

// MediaPayload holds downloaded audio for the duration of one row.
type MediaPayload struct {
	Data     []byte
	MimeType string
}

// OutcomeKind tags the result of processing one row.
type OutcomeKind string

const (
	OutcomeSuccess   OutcomeKind = "success"
	OutcomeEmpty     OutcomeKind = "empty"
	OutcomeRemote    OutcomeKind = "remote_error"
	OutcomeTimeout   OutcomeKind = "timeout"
	OutcomeTransport OutcomeKind = "transport_error"
)

// Outcome is the tagged per-row result. Exactly one is produced per row per
// run. Text and SegmentCount are set only for success; Message carries the
// empty-result tag or the error description otherwise.
type Outcome struct {
	Kind         OutcomeKind
	Text         string
	SegmentCount int
	Message      string
}

// Success builds a success outcome; the segment count is the number of
// newline-delimited lines in the transcript.
func Success(text string) Outcome {
	return Outcome{
		Kind:         OutcomeSuccess,
		Text:         text,
		SegmentCount: 1 + strings.Count(text, "\n"),
	}
}

// Empty builds an empty-result outcome with its tag.
func Empty(message string) Outcome {
	return Outcome{Kind: OutcomeEmpty, Message: message}
}

// RemoteFailure builds an outcome for a structured remote failure.
func RemoteFailure(message string) Outcome {
	return Outcome{Kind: OutcomeRemote, Message: message}
}

// Timeout builds an outcome for an exceeded deadline.
func Timeout() Outcome {
	return Outcome{Kind: OutcomeTimeout, Message: "Request timeout"}
}

// TransportFailure builds an outcome for a network-level failure.
func TransportFailure(message string) Outcome {
	return Outcome{Kind: OutcomeTransport, Message: message}
}

// IsError reports whether the outcome is one of the failure variants.
// Empty results are not errors: the call itself succeeded.
func (o Outcome) IsError() bool {
	switch o.Kind {
	case OutcomeRemote, OutcomeTimeout, OutcomeTransport:
		return true
	default:
		return false
	}
}

// Retryable reports whether resubmitting the row could help. Only transient
// transport and timeout failures qualify; remote and empty results are
// deterministic for the same input.
func (o Outcome) Retryable() bool {
	return o.Kind == OutcomeTimeout || o.Kind == OutcomeTransport
}

// Status classifies the outcome for the report table.
func (o Outcome) Status() string {
	switch o.Kind {
	case OutcomeSuccess:
		return "Success"
	case OutcomeEmpty:
		return "No data"
	default:
		return "Failed"
	}
}

// maxDetailLen bounds the detail column of the report table.
const maxDetailLen = 50

// Detail returns the report detail string: segment count for success, the
// truncated message otherwise.
func (o Outcome) Detail() string {
	if o.Kind == OutcomeSuccess {
		return fmt.Sprintf("%d segments", o.SegmentCount)
	}
	return Truncate(o.Message, maxDetailLen)
}

// TranscriptCell renders the value written into the row's transcript field:
// the transcript verbatim on success, the tag for empty results, and an
// "ERROR: " diagnostic for failures. Never empty after a processed row.
func (o Outcome) TranscriptCell() string {
	switch o.Kind {
	case OutcomeSuccess:
		return o.Text
	case OutcomeEmpty:
		return o.Message
	default:
		return "ERROR: " + o.Message
	}
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// ReportEntry pairs a row's reference label with its outcome summary.
type ReportEntry struct {
	Label   string
	Outcome Outcome
}

// BatchReport is the ordered per-row result of a run, in input order.
type BatchReport struct {
	Entries []ReportEntry
}

// Counts returns the number of success, empty, and failed entries.
func (r *BatchReport) Counts() (succeeded, empty, failed int) {
	for _, e := range r.Entries {
		switch e.Outcome.Kind {
		case OutcomeSuccess:
			succeeded++
		case OutcomeEmpty:
			empty++
		default:
			failed++
		}
	}
	return succeeded, empty, failed
}
