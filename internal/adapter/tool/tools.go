package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"research-agent/internal/application/port/output"
	"research-agent/internal/domain/entity"
)

const (
	WikipediaTopK        = 2
	WikipediaMaxChars    = 300
	noSearchResultsReply = "No good DuckDuckGo Search Result was found"
)

var (
	_ output.ToolPort = (*SearchTool)(nil)
	_ output.ToolPort = (*WikipediaTool)(nil)
	_ output.ToolPort = (*SaveTool)(nil)
)

// decodeInput accepts either a JSON object matching v or a bare string,
// which is handed to bare as the tool's single input.
func decodeInput(arguments string, v any, bare func(string)) error {
	trimmed := strings.TrimSpace(arguments)
	if strings.HasPrefix(trimmed, "{") {
		if err := json.Unmarshal([]byte(trimmed), v); err != nil {
			return fmt.Errorf("invalid input format: %w", err)
		}
		return nil
	}
	bare(trimmed)
	return nil
}

func singleStringParameter(name, description string) map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			name: map[string]interface{}{
				"type":        "string",
				"description": description,
			},
		},
		"required": []string{name},
	}
}

type SearchTool struct {
	search output.SearchPort
	logger output.LoggerPort
}

func NewSearchTool(search output.SearchPort, logger output.LoggerPort) *SearchTool {
	return &SearchTool{search: search, logger: logger}
}

func (t *SearchTool) Name() entity.ToolName { return entity.ToolSearch }
func (t *SearchTool) Description() string   { return "Searches the internet for information" }
func (t *SearchTool) Parameters() map[string]interface{} {
	return singleStringParameter("query", "Search query")
}

func (t *SearchTool) Execute(ctx context.Context, args string) (string, error) {
	var input struct {
		Query string `json:"query"`
	}
	if err := decodeInput(args, &input, func(s string) { input.Query = s }); err != nil {
		return "", entity.NewToolError(t.Name().String(), err)
	}
	if strings.TrimSpace(input.Query) == "" {
		return "", entity.NewToolError(t.Name().String(), errors.New("query parameter is required"))
	}

	hits, err := t.search.Search(ctx, input.Query)
	if err != nil {
		return "", entity.NewToolError(t.Name().String(), err)
	}
	t.logger.Debug("Search completed", "query", input.Query, "hits", len(hits))

	if len(hits) == 0 {
		return noSearchResultsReply, nil
	}

	blocks := make([]string, 0, len(hits))
	for _, h := range hits {
		block := fmt.Sprintf("Title: %s\nURL: %s", h.Title, h.URL)
		if h.Snippet != "" {
			block += "\nSnippet: " + h.Snippet
		}
		blocks = append(blocks, block)
	}
	return strings.Join(blocks, "\n\n"), nil
}

type WikipediaTool struct {
	wiki   output.EncyclopediaPort
	logger output.LoggerPort
}

func NewWikipediaTool(wiki output.EncyclopediaPort, logger output.LoggerPort) *WikipediaTool {
	return &WikipediaTool{wiki: wiki, logger: logger}
}

func (t *WikipediaTool) Name() entity.ToolName { return entity.ToolWikipedia }
func (t *WikipediaTool) Description() string {
	return "A wrapper around Wikipedia. Useful for when you need to answer general questions about " +
		"people, places, companies, facts, historical events, or other subjects. Input should be a search query."
}
func (t *WikipediaTool) Parameters() map[string]interface{} {
	return singleStringParameter("query", "Topic to look up on Wikipedia")
}

// Execute returns an empty string, not an error, when nothing matches.
func (t *WikipediaTool) Execute(ctx context.Context, args string) (string, error) {
	var input struct {
		Query string `json:"query"`
	}
	if err := decodeInput(args, &input, func(s string) { input.Query = s }); err != nil {
		return "", entity.NewToolError(t.Name().String(), err)
	}

	entries, err := t.wiki.Lookup(ctx, input.Query, WikipediaTopK)
	if err != nil {
		return "", entity.NewToolError(t.Name().String(), err)
	}
	t.logger.Debug("Wikipedia lookup completed", "query", input.Query, "pages", len(entries))

	if len(entries) > WikipediaTopK {
		entries = entries[:WikipediaTopK]
	}
	blocks := make([]string, 0, len(entries))
	for _, e := range entries {
		blocks = append(blocks, fmt.Sprintf("Page: %s\nSummary: %s", e.Title, truncateRunes(e.Summary, WikipediaMaxChars)))
	}
	return strings.Join(blocks, "\n\n"), nil
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

type SaveTool struct {
	store           output.TextStorePort
	defaultFilename string
	logger          output.LoggerPort
	now             func() time.Time
}

func NewSaveTool(store output.TextStorePort, defaultFilename string, logger output.LoggerPort) *SaveTool {
	return &SaveTool{
		store:           store,
		defaultFilename: defaultFilename,
		logger:          logger,
		now:             time.Now,
	}
}

func (t *SaveTool) Name() entity.ToolName { return entity.ToolSaveData }
func (t *SaveTool) Description() string   { return "Saves structured research data to a text file." }
func (t *SaveTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"data": map[string]interface{}{
				"type":        "string",
				"description": "Research data to save",
			},
			"filename": map[string]interface{}{
				"type":        "string",
				"description": fmt.Sprintf("Optional file name, defaults to %s", t.defaultFilename),
			},
		},
		"required": []string{"data"},
	}
}

// Execute saves the data field. A JSON object without one, such as the
// research result itself, is saved verbatim.
func (t *SaveTool) Execute(ctx context.Context, args string) (string, error) {
	var input struct {
		Data     *string `json:"data"`
		Filename string  `json:"filename"`
	}
	raw := strings.TrimSpace(args)
	if err := decodeInput(args, &input, func(s string) { input.Data = &s }); err != nil {
		return "", entity.NewToolError(t.Name().String(), err)
	}

	data := raw
	if input.Data != nil {
		data = *input.Data
	}
	if strings.TrimSpace(data) == "" {
		return "", entity.NewToolError(t.Name().String(), errors.New("data parameter is required"))
	}

	filename := input.Filename
	if filename == "" {
		filename = t.defaultFilename
	}

	path, err := t.store.Append(filename, data, t.now())
	if err != nil {
		return "", entity.NewToolError(t.Name().String(), err)
	}
	t.logger.Info("Research data saved", "path", path, "bytes", len(data))

	return fmt.Sprintf("Research data successfully saved to %s", filename), nil
}
