package prompts

import (
	"fmt"

	"research-agent/internal/application/port/output"
	"research-agent/internal/domain/entity"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/prompts"
)

var _ output.PromptBuilder = (*Template)(nil)

const (
	varSystem             = "system_instructions"
	varFormatInstructions = "format_instructions"
	varHistory            = "chat_history"
	varQuery              = "query"
	varScratchpad         = "agent_scratchpad"
)

const systemTemplate = `{{.system_instructions}}
Wrap the output in this format and provide no other text
{{.format_instructions}}`

// Template lays out a research prompt as
// system -> chat history -> human query -> agent scratchpad.
// System and format instructions are bound once at construction.
type Template struct {
	chat prompts.ChatPromptTemplate
}

func NewTemplate(systemInstructions, formatInstructions string) *Template {
	chat := prompts.NewChatPromptTemplate([]prompts.MessageFormatter{
		prompts.NewSystemMessagePromptTemplate(systemTemplate, []string{varSystem, varFormatInstructions}),
		prompts.MessagesPlaceholder{VariableName: varHistory},
		prompts.NewHumanMessagePromptTemplate("{{.query}}", []string{varQuery}),
		prompts.MessagesPlaceholder{VariableName: varScratchpad},
	})
	chat.PartialVariables = map[string]any{
		varSystem:             systemInstructions,
		varFormatInstructions: formatInstructions,
	}
	return &Template{chat: chat}
}

func (t *Template) Build(history []entity.Message, query string, scratchpad entity.Scratchpad) ([]entity.Message, error) {
	values := map[string]any{
		varHistory:    toChatMessages(history),
		varQuery:      query,
		varScratchpad: toChatMessages(scratchpad.Messages()),
	}

	formatted, err := t.chat.FormatMessages(values)
	if err != nil {
		return nil, fmt.Errorf("format prompt: %w", err)
	}

	return fromChatMessages(formatted)
}

func toChatMessages(messages []entity.Message) []llms.ChatMessage {
	result := make([]llms.ChatMessage, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case entity.RoleSystem:
			result = append(result, llms.SystemChatMessage{Content: msg.Content})
		case entity.RoleUser:
			result = append(result, llms.HumanChatMessage{Content: msg.Content})
		case entity.RoleAssistant:
			ai := llms.AIChatMessage{Content: msg.Content}
			for _, tc := range msg.ToolCalls {
				ai.ToolCalls = append(ai.ToolCalls, llms.ToolCall{
					ID:   tc.ID,
					Type: "function",
					FunctionCall: &llms.FunctionCall{
						Name:      tc.Name,
						Arguments: tc.Arguments,
					},
				})
			}
			result = append(result, ai)
		case entity.RoleTool:
			result = append(result, toolChatMessage{
				ToolChatMessage: llms.ToolChatMessage{ID: msg.ToolCallID, Content: msg.Content},
				name:            msg.Name,
				isError:         msg.IsError,
			})
		}
	}
	return result
}

// toolChatMessage keeps the tool name and error flag across the
// langchaingo round trip.
type toolChatMessage struct {
	llms.ToolChatMessage
	name    string
	isError bool
}

func fromChatMessages(messages []llms.ChatMessage) ([]entity.Message, error) {
	result := make([]entity.Message, 0, len(messages))
	for _, msg := range messages {
		switch m := msg.(type) {
		case llms.SystemChatMessage:
			result = append(result, entity.Message{Role: entity.RoleSystem, Content: m.Content})
		case llms.HumanChatMessage:
			result = append(result, entity.Message{Role: entity.RoleUser, Content: m.Content})
		case llms.AIChatMessage:
			out := entity.Message{Role: entity.RoleAssistant, Content: m.Content}
			for _, tc := range m.ToolCalls {
				if tc.FunctionCall == nil {
					continue
				}
				out.ToolCalls = append(out.ToolCalls, entity.ToolCall{
					ID:        tc.ID,
					Name:      tc.FunctionCall.Name,
					Arguments: tc.FunctionCall.Arguments,
				})
			}
			result = append(result, out)
		case toolChatMessage:
			result = append(result, entity.Message{
				Role:       entity.RoleTool,
				ToolCallID: m.ID,
				Name:       m.name,
				Content:    m.Content,
				IsError:    m.isError,
			})
		case llms.ToolChatMessage:
			result = append(result, entity.Message{Role: entity.RoleTool, ToolCallID: m.ID, Content: m.Content})
		default:
			return nil, fmt.Errorf("unsupported prompt message type %T", msg)
		}
	}
	return result, nil
}
