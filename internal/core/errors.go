package core

import (
	"errors"
	"fmt"
)

var (
	// ErrLoopBudgetExceeded is returned when the agent loop hits its round
	// cap without reaching a final answer or a terminal action.
	ErrLoopBudgetExceeded = errors.New("loop budget exceeded")

	// Platform adapters wrap their transport errors with these so tools can
	// classify failures without knowing the platform.
	ErrForbidden = errors.New("forbidden")
	ErrNotFound  = errors.New("not found")
)

type ErrorKind string

const (
	KindEntityNotFound   ErrorKind = "entity_not_found"
	KindPermissionDenied ErrorKind = "permission_denied"
	KindInvalidArgument  ErrorKind = "invalid_argument"
	KindToolExecution    ErrorKind = "tool_execution"
	KindFetchExhausted   ErrorKind = "fetch_exhausted"
	KindGenerationParse  ErrorKind = "generation_parse"
)

// ToolError is the reportable failure of a tool or of the steps around it.
// Message is meant for the user, in the bot's language.
type ToolError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ToolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

func NewToolError(kind ErrorKind, format string, args ...any) *ToolError {
	return &ToolError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func WrapToolError(kind ErrorKind, err error, format string, args ...any) *ToolError {
	return &ToolError{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// AsToolError unwraps err into a *ToolError if it is one.
func AsToolError(err error) (*ToolError, bool) {
	var te *ToolError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// IsKind reports whether err is a ToolError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	te, ok := AsToolError(err)
	return ok && te.Kind == kind
}
