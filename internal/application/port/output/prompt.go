package output

import "research-agent/internal/domain/entity"

// PromptBuilder renders the full message list for one model call.
type PromptBuilder interface {
	Build(history []entity.Message, query string, scratchpad entity.Scratchpad) ([]entity.Message, error)
}
