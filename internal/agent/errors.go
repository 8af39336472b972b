package agent

import (
	"errors"
	"fmt"
	"strings"
)

// Common sentinel errors for agent operations.
var (
	// ErrNoCompletionClient indicates no model-completion client is
	// configured for the generic protocol.
	ErrNoCompletionClient = errors.New("no completion client configured")

	// ErrToolTimeout indicates a tool execution exceeded its deadline.
	ErrToolTimeout = errors.New("tool execution timed out")
)

// MalformedInvocationError reports a tag whose parameter text is not a valid
// JSON object. It is recovered locally: the tag is never executed and its
// span is rewritten with an inline error marker.
type MalformedInvocationError struct {
	ToolToken string
	Action    string
	Err       error
}

func (e *MalformedInvocationError) Error() string {
	return fmt.Sprintf("malformed invocation of %s.%s: %v", e.ToolToken, e.Action, e.Err)
}

func (e *MalformedInvocationError) Unwrap() error { return e.Err }

// MissingParamsError reports every schema-required parameter still absent
// after enhancement. Dispatch does not occur when it is non-empty.
type MissingParamsError struct {
	Tool    string
	Action  string
	Missing []string
}

func (e *MissingParamsError) Error() string {
	return fmt.Sprintf("missing required parameters for %s.%s: %s",
		e.Tool, e.Action, strings.Join(e.Missing, ", "))
}

// ToolExecutionError wraps a failure raised by a resolved tool's action
// call. The underlying message is surfaced verbatim in the inline marker.
type ToolExecutionError struct {
	Tool   string
	Action string
	Err    error
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("tool %s.%s failed: %v", e.Tool, e.Action, e.Err)
}

func (e *ToolExecutionError) Unwrap() error { return e.Err }

// ModelCompletionError reports a failure to obtain a model completion. It is
// the only failure that propagates out of ProcessQuery: without a completion
// there is no text to rewrite.
type ModelCompletionError struct {
	Err error
}

func (e *ModelCompletionError) Error() string {
	return fmt.Sprintf("model completion failed: %v", e.Err)
}

func (e *ModelCompletionError) Unwrap() error { return e.Err }

// FastPathError reports a tool failure inside a directly matched intent.
// The fast path has no further fallback, so it degrades the textual response
// for that query rather than propagating.
type FastPathError struct {
	Intent string
	Err    error
}

func (e *FastPathError) Error() string {
	return fmt.Sprintf("fast-path intent %q failed: %v", e.Intent, e.Err)
}

func (e *FastPathError) Unwrap() error { return e.Err }
