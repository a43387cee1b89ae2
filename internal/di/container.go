package di

import (
	"fmt"

	"research-agent/internal/adapter/tool"
	"research-agent/internal/application/port/input"
	"research-agent/internal/application/port/output"
	"research-agent/internal/application/service"
	"research-agent/internal/infrastructure/env"
	"research-agent/internal/infrastructure/llm/claude"
	"research-agent/internal/infrastructure/llm/openrouter"
	"research-agent/internal/infrastructure/logger"
	"research-agent/internal/infrastructure/prompts"
	"research-agent/internal/infrastructure/schema"
	"research-agent/internal/infrastructure/search"
	"research-agent/internal/infrastructure/storage"
	"research-agent/internal/infrastructure/wikipedia"
	"research-agent/internal/usecase/executor"
	"research-agent/internal/usecase/research"
)

type Container struct {
	LLM          output.LLMPort
	Logger       output.LoggerPort
	Tools        output.ToolRegistry
	TaskExecutor input.TaskExecutor
	Research     input.ResearchExecutor
}

// NewContainer wires one research run. progress may be nil; it is only
// used when cfg.Verbose is set.
func NewContainer(cfg env.Config, query string, progress output.ProgressPort) (*Container, error) {
	log, err := logger.NewLoggerAdapter(cfg.LogDir, query)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	c, err := newContainer(cfg, log, progress)
	if err != nil {
		log.Close()
		return nil, err
	}
	return c, nil
}

func newContainer(cfg env.Config, log output.LoggerPort, progress output.ProgressPort) (*Container, error) {
	llm, err := newLLM(cfg, log)
	if err != nil {
		return nil, err
	}

	tools := service.NewToolRegistry()
	if err := registerResearchTools(tools, cfg, log); err != nil {
		return nil, err
	}

	responseSchema, err := schema.New()
	if err != nil {
		return nil, fmt.Errorf("failed to build response schema: %w", err)
	}
	prompt := prompts.NewTemplate(prompts.DefaultSystemPrompt, responseSchema.FormatInstructions())

	if !cfg.Verbose {
		progress = nil
	}

	uc := executor.New(llm, tools, prompt, log, progress, executor.Config{
		MaxIterations:    cfg.MaxIterations,
		MaxExecutionTime: cfg.MaxExecutionTime,
	})

	return &Container{
		LLM:          llm,
		Logger:       log,
		Tools:        tools,
		TaskExecutor: uc,
		Research:     research.NewService(uc, responseSchema, log),
	}, nil
}

func newLLM(cfg env.Config, log output.LoggerPort) (output.LLMPort, error) {
	switch cfg.Provider {
	case env.ProviderAnthropic:
		llmCfg := claude.DefaultConfig(cfg.APIKey, cfg.Model)
		llmCfg.BaseURL = cfg.BaseURL
		llmCfg.Logger = log
		return claude.NewAdapter(llmCfg), nil

	case env.ProviderOpenAI, env.ProviderOpenRouter:
		llmCfg := openrouter.DefaultConfig(cfg.APIKey, cfg.Model)
		if cfg.Provider == env.ProviderOpenAI {
			llmCfg.BaseURL = openrouter.OpenAIBaseURL
		}
		if cfg.BaseURL != "" {
			llmCfg.BaseURL = cfg.BaseURL
		}
		llmCfg.Logger = log
		return openrouter.NewOpenRouterAdapter(llmCfg), nil
	}

	return nil, fmt.Errorf("unsupported LLM provider %q", cfg.Provider)
}

func registerResearchTools(registry *service.ToolRegistryImpl, cfg env.Config, log output.LoggerPort) error {
	searchCfg := search.DefaultConfig()
	searchCfg.MaxResults = cfg.SearchMaxResults
	if cfg.UserAgent != "" {
		searchCfg.UserAgent = cfg.UserAgent
	}

	wikiCfg := wikipedia.DefaultConfig()
	wikiCfg.Language = cfg.WikipediaLang
	if cfg.UserAgent != "" {
		wikiCfg.UserAgent = cfg.UserAgent
	}

	tools := []output.ToolPort{
		tool.NewSearchTool(search.NewDuckDuckGo(searchCfg), log),
		tool.NewWikipediaTool(wikipedia.NewClient(wikiCfg), log),
		tool.NewSaveTool(storage.NewTextFile(cfg.OutputDir), cfg.OutputFile, log),
	}
	for _, t := range tools {
		if err := registry.Register(t); err != nil {
			return fmt.Errorf("failed to register tool %s: %w", t.Name(), err)
		}
	}
	return nil
}

func (c *Container) Close() {
	if c.Logger != nil {
		c.Logger.Close()
	}
}
