package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, float32(1.0), cfg.OpenAI.TopP)
	assert.Equal(t, 1000, cfg.OpenAI.MaxTokens)
	assert.True(t, cfg.OpenAI.Stream)
	assert.Equal(t, MinimumAPIVersion, cfg.OpenAI.APIVersion)
	assert.False(t, cfg.HistoryEnabled())
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("AZURE_OPENAI_ENDPOINT", "https://example.openai.azure.com/")
	t.Setenv("AZURE_OPENAI_MODEL", "gpt-4o")
	t.Setenv("AZURE_OPENAI_STREAM", "false")
	t.Setenv("AZURE_OPENAI_TEMPERATURE", "0.7")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://example.openai.azure.com/", cfg.OpenAI.Endpoint)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
	assert.False(t, cfg.OpenAI.Stream)
	assert.Equal(t, float32(0.7), cfg.OpenAI.Temperature)
	assert.True(t, cfg.HistoryEnabled())
}
