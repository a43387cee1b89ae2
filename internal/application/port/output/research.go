package output

import (
	"context"
	"time"

	"research-agent/internal/domain/entity"
)

type SearchHit struct {
	Title   string
	URL     string
	Snippet string
}

type SearchPort interface {
	Search(ctx context.Context, query string) ([]SearchHit, error)
}

type EncyclopediaEntry struct {
	Title   string
	Summary string
}

// EncyclopediaPort returns no entries and a nil error when nothing matches.
type EncyclopediaPort interface {
	Lookup(ctx context.Context, topic string, limit int) ([]EncyclopediaEntry, error)
}

type TextStorePort interface {
	Append(filename, payload string, at time.Time) (string, error)
}

// ResultParser turns the terminal model utterance into a ResearchResult.
type ResultParser interface {
	FormatInstructions() string
	Parse(raw string) (*entity.ResearchResult, error)
}
