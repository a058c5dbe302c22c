package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_OverridesKeepDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[llm]
provider = "claude"
model = "claude-sonnet-4"

[heuristics]
co_access_min_count = 5
`
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, "claude", cfg.LLM.Provider)
	assert.Equal(t, 5, cfg.Heuristics.CoAccessMinCount)

	// Untouched heuristics keep their defaults.
	assert.Equal(t, 0.85, cfg.Heuristics.EmbeddingSimilarityThreshold)
	assert.Equal(t, []string{"official", "verified", "certified", "approved"}, cfg.Heuristics.AuthoritativeSources)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}
