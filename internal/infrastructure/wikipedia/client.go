package wikipedia

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"research-agent/internal/application/port/output"
	"research-agent/internal/domain/entity"
)

var _ output.EncyclopediaPort = (*Client)(nil)

type Config struct {
	BaseURL   string
	Language  string
	UserAgent string
	Timeout   time.Duration
}

func DefaultConfig() Config {
	return Config{
		Language:  "en",
		UserAgent: "research-agent/1.0 (https://github.com/research-agent)",
		Timeout:   15 * time.Second,
	}
}

// Client queries the MediaWiki action API.
type Client struct {
	http      *http.Client
	baseURL   string
	userAgent string
}

func NewClient(cfg Config) *Client {
	def := DefaultConfig()
	if cfg.Language == "" {
		cfg.Language = def.Language
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = fmt.Sprintf("https://%s.wikipedia.org/w/api.php", cfg.Language)
	}
	return &Client{
		http:      &http.Client{Timeout: cfg.Timeout},
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
	}
}

type searchResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

type extractResponse struct {
	Query struct {
		Pages []struct {
			Title   string `json:"title"`
			Extract string `json:"extract"`
			Missing bool   `json:"missing"`
		} `json:"pages"`
	} `json:"query"`
}

// Lookup searches for topic and returns the intro of up to limit pages,
// in search rank order.
func (c *Client) Lookup(ctx context.Context, topic string, limit int) ([]output.EncyclopediaEntry, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" || limit <= 0 {
		return nil, nil
	}

	var found searchResponse
	err := c.get(ctx, url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srsearch": {topic},
		"srlimit":  {strconv.Itoa(limit)},
	}, &found)
	if err != nil {
		return nil, err
	}

	var entries []output.EncyclopediaEntry
	for _, hit := range found.Query.Search {
		if len(entries) >= limit {
			break
		}
		entry, ok, err := c.extract(ctx, hit.Title)
		if err != nil {
			return nil, err
		}
		if ok {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func (c *Client) extract(ctx context.Context, title string) (output.EncyclopediaEntry, bool, error) {
	var resp extractResponse
	err := c.get(ctx, url.Values{
		"action":      {"query"},
		"prop":        {"extracts"},
		"exintro":     {"1"},
		"explaintext": {"1"},
		"redirects":   {"1"},
		"titles":      {title},
	}, &resp)
	if err != nil {
		return output.EncyclopediaEntry{}, false, err
	}

	for _, page := range resp.Query.Pages {
		if page.Missing || strings.TrimSpace(page.Extract) == "" {
			continue
		}
		return output.EncyclopediaEntry{Title: page.Title, Summary: strings.TrimSpace(page.Extract)}, true, nil
	}
	return output.EncyclopediaEntry{}, false, nil
}

func (c *Client) get(ctx context.Context, params url.Values, dst any) error {
	params.Set("format", "json")
	params.Set("formatversion", "2")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: wikipedia: %v", entity.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: wikipedia http %d", entity.ErrNetwork, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode wikipedia response: %w", err)
	}
	return nil
}
