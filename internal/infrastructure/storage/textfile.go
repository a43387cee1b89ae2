package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"research-agent/internal/application/port/output"
)

var _ output.TextStorePort = (*TextFile)(nil)

const (
	DefaultFilename = "research_data.txt"
	BlockHeader     = "--- Research Output ---"
	timestampLayout = "2006-01-02 15:04:05"
)

// TextFile appends research blocks to plain UTF-8 files under one directory.
type TextFile struct {
	dir string
	mu  sync.Mutex
}

func NewTextFile(dir string) *TextFile {
	if dir == "" {
		dir = "."
	}
	return &TextFile{dir: dir}
}

// FormatBlock renders one appended block.
func FormatBlock(payload string, at time.Time) string {
	return fmt.Sprintf("%s\nTimestamp: %s\n\n%s\n\n", BlockHeader, at.Format(timestampLayout), payload)
}

// Append writes a block to filename, creating the file if needed, and
// returns the path written. Filenames must stay inside the store directory.
func (s *TextFile) Append(filename, payload string, at time.Time) (string, error) {
	if filename == "" {
		filename = DefaultFilename
	}
	if !filepath.IsLocal(filename) {
		return "", fmt.Errorf("filename %q must be a relative path inside the output directory", filename)
	}
	path := filepath.Join(s.dir, filename)

	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("create output dir: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}

	if _, err := f.WriteString(FormatBlock(payload, at)); err != nil {
		f.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return path, nil
}
