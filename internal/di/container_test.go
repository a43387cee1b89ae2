package di

import (
	"testing"

	"research-agent/internal/domain/entity"
	"research-agent/internal/infrastructure/env"
	"research-agent/internal/infrastructure/llm/claude"
	"research-agent/internal/infrastructure/llm/openrouter"
	"research-agent/internal/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, provider string) env.Config {
	return env.Config{
		Provider:         provider,
		APIKey:           "key",
		Model:            "model",
		MaxIterations:    3,
		Verbose:          true,
		OutputFile:       "research_data.txt",
		OutputDir:        t.TempDir(),
		LogDir:           t.TempDir(),
		WikipediaLang:    "en",
		SearchMaxResults: 5,
	}
}

func TestNewContainer_RegistersToolsInOrder(t *testing.T) {
	c, err := NewContainer(testConfig(t, env.ProviderAnthropic), "octopus facts", nil)
	require.NoError(t, err)
	defer c.Close()

	var names []string
	for _, def := range c.Tools.Definitions() {
		names = append(names, def.Name)
	}
	assert.Equal(t, []string{
		entity.ToolSearch.String(),
		entity.ToolWikipedia.String(),
		entity.ToolSaveData.String(),
	}, names)
	assert.NotNil(t, c.Research)
	assert.NotNil(t, c.TaskExecutor)
}

func TestNewLLM_SelectsProvider(t *testing.T) {
	log := logger.NewNopLogger()

	llm, err := newLLM(testConfig(t, env.ProviderAnthropic), log)
	require.NoError(t, err)
	assert.IsType(t, &claude.Adapter{}, llm)

	for _, p := range []string{env.ProviderOpenAI, env.ProviderOpenRouter} {
		llm, err = newLLM(testConfig(t, p), log)
		require.NoError(t, err)
		assert.IsType(t, &openrouter.OpenRouterAdapter{}, llm)
	}

	_, err = newLLM(testConfig(t, "bard"), log)
	assert.Error(t, err)
}
