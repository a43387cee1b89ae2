package userinteraction

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"research-agent/internal/application/port/output"
	"research-agent/internal/domain/entity"

	"github.com/fatih/color"
)

var _ output.UserInteractionPort = (*Console)(nil)

type Console struct {
	reader *bufio.Reader
	out    io.Writer
}

func NewConsole() *Console {
	return NewConsoleWith(os.Stdin, color.Output)
}

func NewConsoleWith(in io.Reader, out io.Writer) *Console {
	return &Console{
		reader: bufio.NewReader(in),
		out:    out,
	}
}

// AskQuery prints prompt and reads a single line. A final line without a
// trailing newline is still accepted.
func (c *Console) AskQuery(ctx context.Context, prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)

	line, err := c.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read query: %w", err)
	}

	return strings.TrimSpace(line), nil
}

func (c *Console) ShowIteration(ctx context.Context, iteration, maxIterations int) {
	color.New(color.FgCyan, color.Bold).Fprintf(c.out, "\n━━━ Step %d/%d ━━━\n", iteration, maxIterations)
}

func (c *Console) ShowThinking(ctx context.Context, content string) {
	if content == "" {
		return
	}

	color.New(color.FgBlue).Fprint(c.out, "\n💭 Thinking: ")
	color.New(color.Faint).Fprintln(c.out, truncate(content, 500))
}

func (c *Console) ShowToolStart(ctx context.Context, toolName, arguments string) {
	icon, name := toolDisplay(toolName)
	color.New(color.FgYellow, color.Bold).Fprintf(c.out, "\n%s %s\n", icon, name)

	if summary := formatToolArguments(toolName, arguments); summary != "" {
		color.New(color.Faint).Fprintf(c.out, "   %s\n", summary)
	}
}

func (c *Console) ShowToolResult(ctx context.Context, toolName, result string, isError bool) {
	if isError {
		color.New(color.FgRed).Fprint(c.out, "❌ Error: ")
		color.New(color.Faint).Fprintln(c.out, truncate(result, 300))
		return
	}

	color.New(color.FgGreen).Fprintf(c.out, "✓ %s\n", formatToolResult(toolName, result))
}

func (c *Console) ShowResult(ctx context.Context, result *entity.ResearchResult) {
	if result == nil {
		return
	}

	bold := color.New(color.Bold)
	color.New(color.FgGreen, color.Bold).Fprintln(c.out, "\n━━━ Research result ━━━")

	bold.Fprint(c.out, "Topic: ")
	fmt.Fprintln(c.out, result.Topic)
	bold.Fprintln(c.out, "Summary:")
	fmt.Fprintln(c.out, result.Summary)

	bold.Fprintln(c.out, "Sources:")
	writeList(c.out, result.Sources)
	bold.Fprintln(c.out, "Tools used:")
	writeList(c.out, result.ToolsUsed)
}

func (c *Console) ShowParseFailure(ctx context.Context, raw string, err error) {
	color.New(color.FgYellow, color.Bold).Fprintln(c.out, "\nError parsing response")
	fmt.Fprintf(c.out, "%v\n", err)
	color.New(color.Faint).Fprint(c.out, "Raw response: ")
	fmt.Fprintln(c.out, raw)
}

func (c *Console) ShowError(ctx context.Context, err error) {
	color.New(color.FgRed, color.Bold).Fprint(c.out, "\n❌ Research failed: ")
	fmt.Fprintln(c.out, err)
}

func writeList(w io.Writer, items []string) {
	if len(items) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", item)
	}
}

func toolDisplay(toolName string) (string, string) {
	displays := map[entity.ToolName][2]string{
		entity.ToolSearch:    {"🔎", "Web search"},
		entity.ToolWikipedia: {"📚", "Wikipedia"},
		entity.ToolSaveData:  {"💾", "Save to file"},
	}

	if display, ok := displays[entity.ToolName(toolName)]; ok {
		return display[0], display[1]
	}
	return "🔧", toolName
}

func formatToolArguments(toolName, arguments string) string {
	var args map[string]interface{}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		// bare string input
		return truncate(strings.TrimSpace(arguments), 80)
	}

	switch entity.ToolName(toolName) {
	case entity.ToolSearch, entity.ToolWikipedia:
		if query, ok := args["query"].(string); ok {
			return fmt.Sprintf("Query: %s", truncate(query, 80))
		}

	case entity.ToolSaveData:
		data, _ := args["data"].(string)
		if filename, ok := args["filename"].(string); ok && filename != "" {
			return fmt.Sprintf("File: %s (%d chars)", filename, utf8.RuneCountInString(data))
		}
		return fmt.Sprintf("%d chars", utf8.RuneCountInString(data))
	}

	return ""
}

func formatToolResult(toolName, result string) string {
	switch entity.ToolName(toolName) {
	case entity.ToolSearch:
		if n := strings.Count(result, "Title: "); n > 0 {
			return fmt.Sprintf("%d results", n)
		}
		return truncate(result, 100)

	case entity.ToolWikipedia:
		if result == "" {
			return "No matching article"
		}
		if n := strings.Count(result, "Page: "); n > 0 {
			return fmt.Sprintf("%d articles", n)
		}

	case entity.ToolSaveData:
		return result
	}

	return truncate(result, 100)
}

func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen]) + "..."
}
