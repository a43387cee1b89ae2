package input

import (
	"context"

	"research-agent/internal/domain/entity"
)

type AgentState string

const (
	StateAwaitingModel AgentState = "AWAITING_MODEL"
	StateExecutingTool AgentState = "EXECUTING_TOOL"
	StateDone          AgentState = "DONE"
	StateFailed        AgentState = "FAILED"
)

type ExecuteRequest struct {
	Query   string
	History []entity.Message
}

// ExecuteResult is returned only when the loop reaches DONE. Output is the
// raw terminal utterance, not yet validated against the response schema.
type ExecuteResult struct {
	Output     string
	Steps      entity.Scratchpad
	Iterations int
	State      AgentState
}

type TaskExecutor interface {
	Execute(ctx context.Context, req ExecuteRequest) (*ExecuteResult, error)
}
