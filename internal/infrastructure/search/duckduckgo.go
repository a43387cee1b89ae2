package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"research-agent/internal/application/port/output"
	"research-agent/internal/domain/entity"

	"golang.org/x/net/html"
)

var _ output.SearchPort = (*DuckDuckGo)(nil)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type Config struct {
	Endpoint    string
	UserAgent   string
	MaxResults  int
	Timeout     time.Duration
	MinInterval time.Duration
	MaxRetries  int
	RetryDelay  time.Duration
}

func DefaultConfig() Config {
	return Config{
		Endpoint:    "https://lite.duckduckgo.com/lite/",
		UserAgent:   defaultUserAgent,
		MaxResults:  5,
		Timeout:     15 * time.Second,
		MinInterval: time.Second,
		MaxRetries:  3,
		RetryDelay:  time.Second,
	}
}

// DuckDuckGo scrapes the DuckDuckGo lite HTML page.
type DuckDuckGo struct {
	client *http.Client
	cfg    Config

	mu   sync.Mutex
	last time.Time
}

func NewDuckDuckGo(cfg Config) *DuckDuckGo {
	def := DefaultConfig()
	if cfg.Endpoint == "" {
		cfg.Endpoint = def.Endpoint
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = def.MaxResults
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = def.RetryDelay
	}
	return &DuckDuckGo{
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
	}
}

func (d *DuckDuckGo) Search(ctx context.Context, query string) ([]output.SearchHit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("query is empty")
	}

	if err := d.pace(ctx); err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("q", query)

	var resp *http.Response
	delay := d.cfg.RetryDelay
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.Endpoint, strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", d.cfg.UserAgent)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err = d.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: duckduckgo: %v", entity.ErrNetwork, err)
		}
		if resp.StatusCode != http.StatusTooManyRequests || attempt >= d.cfg.MaxRetries {
			break
		}
		resp.Body.Close()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: duckduckgo http %d", entity.ErrNetwork, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read duckduckgo response: %v", entity.ErrNetwork, err)
	}

	return parseResults(string(body), d.cfg.MaxResults)
}

// pace keeps at least MinInterval between consecutive requests.
func (d *DuckDuckGo) pace(ctx context.Context) error {
	d.mu.Lock()
	wait := time.Until(d.last.Add(d.cfg.MinInterval))
	if wait <= 0 {
		d.last = time.Now()
		d.mu.Unlock()
		return nil
	}
	d.last = d.last.Add(d.cfg.MinInterval)
	d.mu.Unlock()

	select {
	case <-time.After(wait):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func parseResults(page string, limit int) ([]output.SearchHit, error) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse duckduckgo html: %w", err)
	}

	var hits []output.SearchHit
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "a" && hasClass(n, "result-link"):
				href := resolveLink(attr(n, "href"))
				title := collapse(textContent(n))
				if href != "" && title != "" {
					hits = append(hits, output.SearchHit{Title: title, URL: href})
				}
				return
			case n.Data == "td" && hasClass(n, "result-snippet"):
				if len(hits) > 0 && hits[len(hits)-1].Snippet == "" {
					hits[len(hits)-1].Snippet = collapse(textContent(n))
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// resolveLink unwraps DuckDuckGo redirect links (//duckduckgo.com/l/?uddg=...).
func resolveLink(href string) string {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if strings.HasSuffix(u.Host, "duckduckgo.com") && strings.HasPrefix(u.Path, "/l/") {
		if target := u.Query().Get("uddg"); target != "" {
			return target
		}
	}
	return href
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
