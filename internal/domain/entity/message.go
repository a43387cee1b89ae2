package entity

import "strings"

type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleTool      MessageRole = "tool"
)

type Message struct {
	Role       MessageRole
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
	Name       string
	IsError    bool
}

type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}

// NoToolOutput stands in for an empty tool observation when a message is sent
// to a provider. Chat APIs reject tool results without content.
const NoToolOutput = "No result was found"

// ToolContent is the provider-facing text of a tool result message.
func (m Message) ToolContent() string {
	if strings.TrimSpace(m.Content) == "" {
		return NoToolOutput
	}
	return m.Content
}
