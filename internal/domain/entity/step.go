package entity

type StepKind string

const (
	StepToolInvocation StepKind = "tool_invocation"
	StepToolResult     StepKind = "tool_result"
	StepModelUtterance StepKind = "model_utterance"
)

// Step is one entry of the agent scratchpad. CallID links a tool
// invocation to its result.
type Step struct {
	Kind      StepKind
	CallID    string
	ToolName  string
	Arguments string
	Output    string
	Text      string
	IsError   bool
}

func ToolInvocation(callID, toolName, arguments string) Step {
	return Step{Kind: StepToolInvocation, CallID: callID, ToolName: toolName, Arguments: arguments}
}

func ToolResult(callID, toolName, output string, isError bool) Step {
	return Step{Kind: StepToolResult, CallID: callID, ToolName: toolName, Output: output, IsError: isError}
}

func ModelUtterance(text string) Step {
	return Step{Kind: StepModelUtterance, Text: text}
}

// Scratchpad is the append-only record of a single run.
type Scratchpad []Step

// Messages renders the scratchpad as chat messages. Tool invocations that
// follow an utterance (or each other) are folded into one assistant message.
func (s Scratchpad) Messages() []Message {
	var out []Message
	for _, step := range s {
		switch step.Kind {
		case StepModelUtterance:
			out = append(out, Message{Role: RoleAssistant, Content: step.Text})
		case StepToolInvocation:
			call := ToolCall{ID: step.CallID, Name: step.ToolName, Arguments: step.Arguments}
			if n := len(out); n > 0 && out[n-1].Role == RoleAssistant {
				out[n-1].ToolCalls = append(out[n-1].ToolCalls, call)
				continue
			}
			out = append(out, Message{Role: RoleAssistant, ToolCalls: []ToolCall{call}})
		case StepToolResult:
			out = append(out, Message{
				Role:       RoleTool,
				ToolCallID: step.CallID,
				Name:       step.ToolName,
				Content:    step.Output,
				IsError:    step.IsError,
			})
		}
	}
	return out
}

// ToolsUsed lists the distinct tool names invoked, in first-use order.
func (s Scratchpad) ToolsUsed() []string {
	seen := make(map[string]bool)
	var names []string
	for _, step := range s {
		if step.Kind != StepToolInvocation || seen[step.ToolName] {
			continue
		}
		seen[step.ToolName] = true
		names = append(names, step.ToolName)
	}
	return names
}
