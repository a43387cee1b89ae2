package entity

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration    = errors.New("configuration error")
	ErrNetwork          = errors.New("network error")
	ErrToolExecution    = errors.New("tool execution failed")
	ErrUnknownTool      = errors.New("unknown tool")
	ErrModelCall        = errors.New("model call failed")
	ErrBudgetExceeded   = errors.New("agent budget exceeded")
	ErrSchemaValidation = errors.New("schema validation failed")
)

// ToolError reports a failed tool invocation. It matches ErrToolExecution
// and unwraps to the underlying cause.
type ToolError struct {
	Tool string
	Err  error
}

func NewToolError(tool string, err error) *ToolError {
	return &ToolError{Tool: tool, Err: err}
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool %s: %v", e.Tool, e.Err)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

func (e *ToolError) Is(target error) bool {
	return target == ErrToolExecution
}
