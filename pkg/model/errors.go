package model

import (
	"context"
	"errors"
)

// StageError ties a pipeline failure to the outcome kind it classifies as,
// so the runner never has to match on error strings.
type StageError struct {
	Kind    OutcomeKind
	Message string
	Err     error
}

func (e *StageError) Error() string {
	return e.Message
}

// Unwrap exposes the underlying error for errors.Is / errors.As.
func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError builds a classified pipeline error.
func NewStageError(kind OutcomeKind, message string, err error) *StageError {
	return &StageError{Kind: kind, Message: message, Err: err}
}

// OutcomeFromError converts a fetch or transcription failure into the
// matching row outcome. Unclassified errors count as transport failures.
func OutcomeFromError(err error) Outcome {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		switch stageErr.Kind {
		case OutcomeTimeout:
			return Timeout()
		case OutcomeRemote:
			return RemoteFailure(stageErr.Message)
		default:
			return TransportFailure(stageErr.Message)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout()
	}

	return TransportFailure(err.Error())
}
