package output

import (
	"context"

	"research-agent/internal/domain/entity"
)

type ProgressPort interface {
	ShowIteration(ctx context.Context, iteration, maxIterations int)
	ShowToolStart(ctx context.Context, toolName, arguments string)
	ShowToolResult(ctx context.Context, toolName, result string, isError bool)
	ShowThinking(ctx context.Context, content string)
}

type UserInteractionPort interface {
	ProgressPort

	AskQuery(ctx context.Context, prompt string) (string, error)
	ShowResult(ctx context.Context, result *entity.ResearchResult)
	ShowParseFailure(ctx context.Context, raw string, err error)
	ShowError(ctx context.Context, err error)
}
