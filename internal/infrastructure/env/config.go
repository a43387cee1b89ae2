package env

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"research-agent/internal/application/port/output"
	"research-agent/internal/domain/entity"
)

const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
)

var defaultModels = map[string]string{
	ProviderAnthropic:  "claude-3-5-sonnet-20241022",
	ProviderOpenAI:     "gpt-4o-mini",
	ProviderOpenRouter: "anthropic/claude-3.5-sonnet",
}

// Config is resolved once at startup. Nothing reads the environment after
// LoadConfig returns.
type Config struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string

	MaxIterations    int
	MaxExecutionTime time.Duration
	Verbose          bool

	OutputFile       string
	OutputDir        string
	LogDir           string
	WikipediaLang    string
	SearchMaxResults int

	// UserAgent overrides the HTTP clients' own defaults when set.
	UserAgent string
}

func LoadConfig(src output.ConfigPort) (Config, error) {
	cfg := Config{
		Provider:      strings.ToLower(src.GetWithDefault("LLM_PROVIDER", ProviderAnthropic)),
		BaseURL:       src.Get("LLM_BASE_URL"),
		OutputFile:    src.GetWithDefault("RESEARCH_OUTPUT_FILE", "research_data.txt"),
		OutputDir:     src.GetWithDefault("RESEARCH_OUTPUT_DIR", "."),
		LogDir:        src.GetWithDefault("LOG_DIR", "log"),
		WikipediaLang: src.GetWithDefault("WIKIPEDIA_LANG", "en"),
		UserAgent:     src.Get("HTTP_USER_AGENT"),
	}

	defaultModel, ok := defaultModels[cfg.Provider]
	if !ok {
		return Config{}, fmt.Errorf("%w: unknown LLM_PROVIDER %q", entity.ErrConfiguration, cfg.Provider)
	}
	cfg.Model = src.GetWithDefault("LLM_MODEL", defaultModel)

	key, err := apiKey(src, cfg.Provider)
	if err != nil {
		return Config{}, err
	}
	cfg.APIKey = key

	if cfg.MaxIterations, err = positiveInt(src, "AGENT_MAX_ITERATIONS", 15); err != nil {
		return Config{}, err
	}
	if cfg.SearchMaxResults, err = positiveInt(src, "SEARCH_MAX_RESULTS", 5); err != nil {
		return Config{}, err
	}

	seconds, err := intSetting(src, "AGENT_MAX_EXECUTION_TIME", 0)
	if err != nil {
		return Config{}, err
	}
	if seconds < 0 {
		return Config{}, fmt.Errorf("%w: AGENT_MAX_EXECUTION_TIME must not be negative", entity.ErrConfiguration)
	}
	cfg.MaxExecutionTime = time.Duration(seconds) * time.Second

	if cfg.Verbose, err = boolSetting(src, "AGENT_VERBOSE", true); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func apiKey(src output.ConfigPort, provider string) (string, error) {
	var keys []string
	switch provider {
	case ProviderAnthropic:
		keys = []string{"ANTHROPIC_KEY", "ANTHROPIC_API_KEY"}
	case ProviderOpenAI:
		keys = []string{"OPENAI_API_KEY"}
	case ProviderOpenRouter:
		keys = []string{"OPENROUTER_API_KEY"}
	}

	for _, k := range keys {
		if v := strings.TrimSpace(src.Get(k)); v != "" {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %s is not set", entity.ErrConfiguration, strings.Join(keys, " or "))
}

func intSetting(src output.ConfigPort, key string, def int) (int, error) {
	raw := strings.TrimSpace(src.Get(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an integer", entity.ErrConfiguration, key, raw)
	}
	return v, nil
}

func positiveInt(src output.ConfigPort, key string, def int) (int, error) {
	v, err := intSetting(src, key, def)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, fmt.Errorf("%w: %s must be positive", entity.ErrConfiguration, key)
	}
	return v, nil
}

func boolSetting(src output.ConfigPort, key string, def bool) (bool, error) {
	raw := strings.TrimSpace(src.Get(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s=%q is not a boolean", entity.ErrConfiguration, key, raw)
	}
	return v, nil
}
