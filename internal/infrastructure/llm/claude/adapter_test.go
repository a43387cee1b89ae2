package claude

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"research-agent/internal/application/port/output"
	"research-agent/internal/domain/entity"
	"research-agent/internal/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeMessagesAPI(t *testing.T, status int, reply map[string]any, captured *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/v1/messages"), r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		if captured != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(captured))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(reply)
	}))
}

func newTestAdapter(url string) *Adapter {
	cfg := DefaultConfig("test-key", "claude-test")
	cfg.BaseURL = url + "/"
	cfg.MaxRetries = 0
	cfg.Logger = logger.NewNopLogger()
	return NewAdapter(cfg)
}

func TestChat_ParsesTextAndToolUse(t *testing.T) {
	var req map[string]any
	srv := fakeMessagesAPI(t, http.StatusOK, map[string]any{
		"id":    "msg_1",
		"type":  "message",
		"role":  "assistant",
		"model": "claude-test",
		"content": []map[string]any{
			{"type": "text", "text": "Searching first."},
			{"type": "tool_use", "id": "toolu_1", "name": "search", "input": map[string]any{"query": "sky"}},
		},
		"stop_reason": "tool_use",
		"usage":       map[string]any{"input_tokens": 10, "output_tokens": 5},
	}, &req)
	defer srv.Close()

	resp, err := newTestAdapter(srv.URL).Chat(context.Background(), output.ChatRequest{
		Messages: []entity.Message{
			{Role: entity.RoleSystem, Content: "be helpful"},
			{Role: entity.RoleUser, Content: "Why is the sky blue?"},
		},
		Tools: []entity.ToolDefinition{{
			Name:        "search",
			Description: "Searches the internet for information",
			Parameters: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{"query": map[string]interface{}{"type": "string"}},
				"required":   []string{"query"},
			},
		}},
	})
	require.NoError(t, err)

	assert.Equal(t, entity.RoleAssistant, resp.Message.Role)
	assert.Equal(t, "Searching first.", resp.Message.Content)
	require.Len(t, resp.Message.ToolCalls, 1)
	assert.Equal(t, "toolu_1", resp.Message.ToolCalls[0].ID)
	assert.Equal(t, "search", resp.Message.ToolCalls[0].Name)
	assert.JSONEq(t, `{"query":"sky"}`, resp.Message.ToolCalls[0].Arguments)

	assert.Equal(t, "claude-test", req["model"])
	system, ok := req["system"].([]any)
	require.True(t, ok)
	require.Len(t, system, 1)
	assert.Equal(t, "be helpful", system[0].(map[string]any)["text"])

	messages := req["messages"].([]any)
	require.Len(t, messages, 1)
	assert.Equal(t, "user", messages[0].(map[string]any)["role"])

	tools := req["tools"].([]any)
	require.Len(t, tools, 1)
	tool := tools[0].(map[string]any)
	assert.Equal(t, "search", tool["name"])
	schema := tool["input_schema"].(map[string]any)
	assert.Equal(t, "object", schema["type"])
	assert.Equal(t, []any{"query"}, schema["required"])
}

func TestChat_GroupsToolResults(t *testing.T) {
	var req map[string]any
	srv := fakeMessagesAPI(t, http.StatusOK, map[string]any{
		"id":          "msg_2",
		"type":        "message",
		"role":        "assistant",
		"model":       "claude-test",
		"content":     []map[string]any{{"type": "text", "text": `{"topic":"sky"}`}},
		"stop_reason": "end_turn",
		"usage":       map[string]any{"input_tokens": 10, "output_tokens": 5},
	}, &req)
	defer srv.Close()

	resp, err := newTestAdapter(srv.URL).Chat(context.Background(), output.ChatRequest{
		Messages: []entity.Message{
			{Role: entity.RoleUser, Content: "q"},
			{Role: entity.RoleAssistant, ToolCalls: []entity.ToolCall{
				{ID: "a", Name: "search", Arguments: `{"query":"x"}`},
				{ID: "b", Name: "wikipedia", Arguments: `{"query":"y"}`},
			}},
			{Role: entity.RoleTool, ToolCallID: "a", Name: "search", Content: "web"},
			{Role: entity.RoleTool, ToolCallID: "b", Name: "wikipedia", Content: "Error: boom", IsError: true},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"topic":"sky"}`, resp.Message.Content)
	assert.Empty(t, resp.Message.ToolCalls)

	messages := req["messages"].([]any)
	require.Len(t, messages, 3)

	assistant := messages[1].(map[string]any)
	assert.Equal(t, "assistant", assistant["role"])
	assert.Len(t, assistant["content"].([]any), 2)

	results := messages[2].(map[string]any)
	assert.Equal(t, "user", results["role"])
	blocks := results["content"].([]any)
	require.Len(t, blocks, 2)
	first := blocks[0].(map[string]any)
	assert.Equal(t, "tool_result", first["type"])
	assert.Equal(t, "a", first["tool_use_id"])
	second := blocks[1].(map[string]any)
	assert.Equal(t, true, second["is_error"])
}

func TestChat_EmptyToolResultIsSentWithContent(t *testing.T) {
	var req map[string]any
	srv := fakeMessagesAPI(t, http.StatusOK, map[string]any{
		"id":          "msg_3",
		"type":        "message",
		"role":        "assistant",
		"model":       "claude-test",
		"content":     []map[string]any{{"type": "text", "text": "done"}},
		"stop_reason": "end_turn",
		"usage":       map[string]any{"input_tokens": 10, "output_tokens": 5},
	}, &req)
	defer srv.Close()

	scratchpad := entity.Scratchpad{
		entity.ToolInvocation("toolu_1", "wikipedia", `{"query":"zzzz"}`),
		entity.ToolResult("toolu_1", "wikipedia", "", false),
	}
	messages := append([]entity.Message{{Role: entity.RoleUser, Content: "zzzz?"}}, scratchpad.Messages()...)

	_, err := newTestAdapter(srv.URL).Chat(context.Background(), output.ChatRequest{Messages: messages})
	require.NoError(t, err)

	sent := req["messages"].([]any)
	require.Len(t, sent, 3)
	blocks := sent[2].(map[string]any)["content"].([]any)
	require.Len(t, blocks, 1)
	result := blocks[0].(map[string]any)
	assert.Equal(t, "tool_result", result["type"])

	inner := result["content"].([]any)
	require.NotEmpty(t, inner)
	for _, b := range inner {
		assert.NotEmpty(t, b.(map[string]any)["text"])
	}
	assert.Equal(t, entity.NoToolOutput, inner[0].(map[string]any)["text"])
}

func TestChat_APIErrorSurfaces(t *testing.T) {
	srv := fakeMessagesAPI(t, http.StatusUnauthorized, map[string]any{
		"type":  "error",
		"error": map[string]any{"type": "authentication_error", "message": "invalid x-api-key"},
	}, nil)
	defer srv.Close()

	_, err := newTestAdapter(srv.URL).Chat(context.Background(), output.ChatRequest{
		Messages: []entity.Message{{Role: entity.RoleUser, Content: "hi"}},
	})
	assert.Error(t, err)
}

func TestToolInput(t *testing.T) {
	assert.JSONEq(t, `{}`, string(toolInput("")))
	assert.JSONEq(t, `{"query":"x"}`, string(toolInput(`{"query":"x"}`)))
	assert.JSONEq(t, `{"query":"plain text"}`, string(toolInput("plain text")))
	assert.JSONEq(t, `{"query":"{broken"}`, string(toolInput("{broken")))
}
