package input

import (
	"context"

	"research-agent/internal/domain/entity"
)

// ResearchReport is the outcome of one research run. When the terminal
// utterance does not match the response schema, Result is nil and ParseErr
// explains why; Raw always holds the utterance.
type ResearchReport struct {
	Query      string
	Raw        string
	Result     *entity.ResearchResult
	ParseErr   error
	Steps      entity.Scratchpad
	Iterations int
}

type ResearchExecutor interface {
	Research(ctx context.Context, query string) (*ResearchReport, error)
}
