package domain

import "fmt"

// ErrorKind classifies why a tone analysis failed
type ErrorKind string

const (
	ErrTransportFailure    ErrorKind = "transport_failure"
	ErrMalformedResponse   ErrorKind = "malformed_response"
	ErrInvalidTone         ErrorKind = "invalid_tone"
	ErrInvalidUrgency      ErrorKind = "invalid_urgency"
	ErrInvalidConfidence   ErrorKind = "invalid_confidence"
	ErrInvalidQuickReplies ErrorKind = "invalid_quick_replies"
	ErrEmptyMessage        ErrorKind = "empty_message"
)

// AnalysisError is returned instead of a ToneDetectionResult when the
// model could not be reached or its output failed validation.
type AnalysisError struct {
	Kind ErrorKind
	Raw  string // raw model output, if any
	Err  error  // underlying cause, if any
}

func (e *AnalysisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("tone analysis: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("tone analysis: %s", e.Kind)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// PlatformError is a failed chat platform API call
type PlatformError struct {
	Method string // e.g. chat.postEphemeral
	Code   string // machine-readable platform error code
	Err    error
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("%s: %s", e.Method, e.Code)
}

func (e *PlatformError) Unwrap() error {
	return e.Err
}
