package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Options(t *testing.T) {
	cfg := NewConfig(
		WithHost("http://embed.internal:9100"),
		WithModel("text-embedding-3-small"),
		WithAPIKey("sk-test"),
		WithTimeout(5*time.Second),
	)

	assert.Equal(t, "http://embed.internal:9100", cfg.Host)
	assert.Equal(t, "text-embedding-3-small", cfg.Model)
	assert.Equal(t, "sk-test", cfg.APIKey)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
}

func TestNormalize_AddsV1Suffix(t *testing.T) {
	cfg := NewConfig(WithHost("http://localhost:11434"))
	cfg.Normalize()
	assert.Equal(t, "http://localhost:11434/v1", cfg.Host)

	cfg = NewConfig(WithHost("http://localhost:11434/"))
	cfg.Normalize()
	assert.Equal(t, "http://localhost:11434/v1", cfg.Host)

	cfg = NewConfig(WithHost("http://localhost:11434/v1"))
	cfg.Normalize()
	assert.Equal(t, "http://localhost:11434/v1", cfg.Host)
}

func TestValidate(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, cfg.Validate())

	cfg = NewConfig(WithHost(""))
	assert.ErrorIs(t, cfg.Validate(), ErrMissingHost)

	cfg = NewConfig(WithModel(""))
	assert.ErrorIs(t, cfg.Validate(), ErrMissingModel)
}

func TestValidate_FillsDefaults(t *testing.T) {
	cfg := &Config{Host: "http://localhost:11434", Model: "embeddinggemma"}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "none", cfg.APIKey)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}
