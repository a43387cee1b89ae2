package entity

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScratchpad_Messages(t *testing.T) {
	pad := Scratchpad{
		ModelUtterance("Let me look that up."),
		ToolInvocation("a", "search", `{"query":"x"}`),
		ToolInvocation("b", "wikipedia", `{"query":"x"}`),
		ToolResult("a", "search", "web", false),
		ToolResult("b", "wikipedia", "Error: boom", true),
		ToolInvocation("c", "save_data_to_file", `{"data":"d"}`),
		ToolResult("c", "save_data_to_file", "saved", false),
	}

	msgs := pad.Messages()
	require.Len(t, msgs, 5)

	assert.Equal(t, RoleAssistant, msgs[0].Role)
	assert.Equal(t, "Let me look that up.", msgs[0].Content)
	require.Len(t, msgs[0].ToolCalls, 2)
	assert.Equal(t, "a", msgs[0].ToolCalls[0].ID)
	assert.Equal(t, "wikipedia", msgs[0].ToolCalls[1].Name)

	assert.Equal(t, RoleTool, msgs[1].Role)
	assert.Equal(t, "a", msgs[1].ToolCallID)
	assert.False(t, msgs[1].IsError)
	assert.True(t, msgs[2].IsError)

	assert.Equal(t, RoleAssistant, msgs[3].Role)
	assert.Empty(t, msgs[3].Content)
	assert.Equal(t, "c", msgs[3].ToolCalls[0].ID)
	assert.Equal(t, "saved", msgs[4].Content)
}

func TestScratchpad_MessagesEmpty(t *testing.T) {
	assert.Empty(t, Scratchpad(nil).Messages())
}

func TestScratchpad_ToolsUsed(t *testing.T) {
	pad := Scratchpad{
		ToolInvocation("1", "search", ""),
		ToolResult("1", "search", "", false),
		ToolInvocation("2", "wikipedia", ""),
		ToolInvocation("3", "search", ""),
	}
	assert.Equal(t, []string{"search", "wikipedia"}, pad.ToolsUsed())
}

func TestToolError(t *testing.T) {
	cause := fmt.Errorf("%w: dial tcp: timeout", ErrNetwork)
	err := fmt.Errorf("wrapped: %w", NewToolError("search", cause))

	assert.ErrorIs(t, err, ErrToolExecution)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.NotErrorIs(t, err, ErrModelCall)

	var te *ToolError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "search", te.Tool)
	assert.Equal(t, "tool search: network error: dial tcp: timeout", te.Error())
}
