package openrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"research-agent/internal/application/port/output"
	"research-agent/internal/domain/entity"
	"research-agent/internal/infrastructure/logger"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertResponseMessage_WithContent(t *testing.T) {
	msg := openai.ChatCompletionMessage{
		Role:    "assistant",
		Content: "Hello, world!",
	}

	result := convertResponseMessage(msg)

	assert.Equal(t, entity.RoleAssistant, result.Role)
	assert.Equal(t, "Hello, world!", result.Content)
	assert.Empty(t, result.ToolCalls)
}

func TestConvertResponseMessage_WithToolCalls(t *testing.T) {
	msg := openai.ChatCompletionMessage{
		Role:    "assistant",
		Content: "",
		ToolCalls: []openai.ToolCall{
			{
				ID:   "call_123",
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      "search",
					Arguments: `{"query":"golang"}`,
				},
			},
		},
	}

	result := convertResponseMessage(msg)

	assert.Equal(t, entity.RoleAssistant, result.Role)
	require.Len(t, result.ToolCalls, 1)
	assert.Equal(t, "call_123", result.ToolCalls[0].ID)
	assert.Equal(t, "search", result.ToolCalls[0].Name)
	assert.Equal(t, `{"query":"golang"}`, result.ToolCalls[0].Arguments)
}

func TestConvertMessages_ToolRoundTrip(t *testing.T) {
	messages := []entity.Message{
		{Role: entity.RoleSystem, Content: "system"},
		{Role: entity.RoleUser, Content: "Hello"},
		{
			Role:      entity.RoleAssistant,
			ToolCalls: []entity.ToolCall{{ID: "c1", Name: "search", Arguments: `{"query":"x"}`}},
		},
		{Role: entity.RoleTool, ToolCallID: "c1", Name: "search", Content: "result"},
	}

	result := convertMessages(messages)

	require.Len(t, result, 4)
	assert.Equal(t, "system", result[0].Role)
	assert.Equal(t, "user", result[1].Role)
	assert.Equal(t, "Hello", result[1].Content)
	require.Len(t, result[2].ToolCalls, 1)
	assert.Equal(t, openai.ToolTypeFunction, result[2].ToolCalls[0].Type)
	assert.Equal(t, "search", result[2].ToolCalls[0].Function.Name)
	assert.Equal(t, "tool", result[3].Role)
	assert.Equal(t, "c1", result[3].ToolCallID)
	assert.Equal(t, "search", result[3].Name)
}

func TestConvertMessages_ToolResultContent(t *testing.T) {
	result := convertMessages([]entity.Message{
		{Role: entity.RoleTool, ToolCallID: "a", Name: "wikipedia", Content: ""},
		{Role: entity.RoleTool, ToolCallID: "b", Name: "search", Content: "tool search: timeout", IsError: true},
		{Role: entity.RoleTool, ToolCallID: "c", Name: "search", Content: "Error: tool search: timeout", IsError: true},
	})

	require.Len(t, result, 3)
	assert.Equal(t, entity.NoToolOutput, result[0].Content)
	assert.Equal(t, "Error: tool search: timeout", result[1].Content)
	assert.Equal(t, "Error: tool search: timeout", result[2].Content)
}

func TestConvertTools(t *testing.T) {
	tools := convertTools([]entity.ToolDefinition{{
		Name:        "search",
		Description: "Searches the internet for information",
		Parameters:  map[string]interface{}{"type": "object"},
	}})

	require.Len(t, tools, 1)
	assert.Equal(t, openai.ToolTypeFunction, tools[0].Type)
	assert.Equal(t, "search", tools[0].Function.Name)
	assert.Equal(t, map[string]interface{}{"type": "object"}, tools[0].Function.Parameters)
}

func TestChat_AgainstFakeServer(t *testing.T) {
	var received openai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "test-model",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "tool_calls",
				"message": map[string]any{
					"role": "assistant",
					"tool_calls": []map[string]any{{
						"id":       "call_1",
						"type":     "function",
						"function": map[string]any{"name": "wikipedia", "arguments": `{"query":"Go"}`},
					}},
				},
			}},
		})
	}))
	defer srv.Close()

	adapter := NewOpenRouterAdapter(Config{
		APIKey:  "test-key",
		Model:   "test-model",
		BaseURL: srv.URL,
		Logger:  logger.NewNopLogger(),
	})

	resp, err := adapter.Chat(context.Background(), output.ChatRequest{
		Messages: []entity.Message{{Role: entity.RoleUser, Content: "Go?"}},
		Tools:    []entity.ToolDefinition{{Name: "wikipedia", Description: "lookup", Parameters: map[string]interface{}{"type": "object"}}},
	})
	require.NoError(t, err)

	assert.Equal(t, "test-model", received.Model)
	require.Len(t, received.Tools, 1)
	require.Len(t, resp.Message.ToolCalls, 1)
	assert.Equal(t, "wikipedia", resp.Message.ToolCalls[0].Name)
}

func TestChat_EmptyToolResultIsSentWithContent(t *testing.T) {
	var raw map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&raw))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-2",
			"object": "chat.completion",
			"model":  "test-model",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": "done"},
			}},
		})
	}))
	defer srv.Close()

	adapter := NewOpenRouterAdapter(Config{APIKey: "test-key", Model: "test-model", BaseURL: srv.URL})
	scratchpad := entity.Scratchpad{
		entity.ToolInvocation("call_1", "wikipedia", `{"query":"zzzz"}`),
		entity.ToolResult("call_1", "wikipedia", "", false),
	}
	messages := append([]entity.Message{{Role: entity.RoleUser, Content: "zzzz?"}}, scratchpad.Messages()...)

	_, err := adapter.Chat(context.Background(), output.ChatRequest{Messages: messages})
	require.NoError(t, err)

	sent := raw["messages"].([]any)
	require.Len(t, sent, 3)
	toolMsg := sent[2].(map[string]any)
	assert.Equal(t, "tool", toolMsg["role"])
	assert.Equal(t, entity.NoToolOutput, toolMsg["content"])
}

func TestChat_HTTPErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"invalid api key","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	adapter := NewOpenRouterAdapter(Config{APIKey: "bad", Model: "m", BaseURL: srv.URL})
	_, err := adapter.Chat(context.Background(), output.ChatRequest{
		Messages: []entity.Message{{Role: entity.RoleUser, Content: "hi"}},
	})
	assert.Error(t, err)
}
