package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrBackendUnavailable indicates the Ollama server is unreachable.
	ErrBackendUnavailable = errors.New("ollama server unavailable")

	// ErrTimeout indicates the LLM request exceeded the configured timeout.
	ErrTimeout = errors.New("llm request timed out")

	// ErrInvalidOutput indicates the LLM response could not be parsed
	// into the expected structured format.
	ErrInvalidOutput = errors.New("invalid llm output format")
)

// BackendError reports a transport-level failure: a non-success status, a
// connection problem, or a response envelope without a usable "response".
type BackendError struct {
	StatusCode int // 0 when no HTTP response was received
	Message    string
	Err        error
}

func (e *BackendError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("ollama error %d: %s", e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("ollama backend: %s: %v", e.Message, e.Err)
	}
	return "ollama backend: " + e.Message
}

func (e *BackendError) Unwrap() error { return e.Err }

// ParseError reports that the backend answered but its content was not
// valid structured data.
type ParseError struct {
	Content string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v: %v", ErrInvalidOutput, e.Err)
}

func (e *ParseError) Unwrap() []error { return []error{ErrInvalidOutput, e.Err} }
