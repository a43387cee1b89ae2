package executor

import (
	"fmt"

	"research-agent/internal/application/port/input"
	"research-agent/internal/application/port/output"
	"research-agent/internal/domain/entity"
)

var transitions = map[input.AgentState][]input.AgentState{
	input.StateAwaitingModel: {input.StateExecutingTool, input.StateDone, input.StateFailed},
	input.StateExecutingTool: {input.StateAwaitingModel, input.StateFailed},
}

// machine tracks the loop state of a single run.
type machine struct {
	state  input.AgentState
	logger output.LoggerPort
}

func newMachine(logger output.LoggerPort) *machine {
	return &machine{state: input.StateAwaitingModel, logger: logger}
}

func (m *machine) to(next input.AgentState) {
	if !allowed(m.state, next) {
		panic(fmt.Sprintf("executor: illegal transition %s -> %s", m.state, next))
	}
	m.logger.Debug("State transition", "from", m.state, "to", next)
	m.state = next
}

func allowed(from, to input.AgentState) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// RunError is returned when the loop ends in FAILED. Steps holds the
// scratchpad accumulated before the failure.
type RunError struct {
	Iterations int
	Steps      entity.Scratchpad
	Err        error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("agent failed after %d iteration(s): %v", e.Iterations, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}
