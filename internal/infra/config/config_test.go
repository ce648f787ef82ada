package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.Model)
	assert.Equal(t, "imagen-4.0-generate-001", cfg.ImageGen.Model)
	assert.InDelta(t, 0.8, cfg.Gemini.Temperature, 1e-9)
	assert.InDelta(t, 0.9, cfg.Gemini.TopP, 1e-9)
	assert.Equal(t, 2, cfg.Render.ExportScale)
	assert.Equal(t, "carousel_session", cfg.Session.CookieName)

	// a run is one text call plus one round of image calls, each bounded on its own
	assert.Less(t, cfg.ImageGen.TimeoutSeconds, cfg.HTTPClient.TimeoutSeconds)
	assert.Less(t, cfg.HTTPClient.TimeoutSeconds+cfg.ImageGen.TimeoutSeconds, cfg.Server.WriteTimeoutSeconds)
}

func TestLoad_YAMLThenEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlDoc := `
server:
  addr: ":9090"
gemini:
  model: "gemini-from-file"
image_gen:
  timeout_seconds: 30
limiter:
  max_concurrent: 2
  rate_per_second: 0.5
`
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0o644))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("API_KEY", "shared-key")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("IMAGEGEN_API_KEY", "image-key")
	t.Setenv("GEMINI_MODEL", "gemini-from-env")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "gemini-from-env", cfg.Gemini.Model)
	assert.Equal(t, 30, cfg.ImageGen.TimeoutSeconds)
	assert.Equal(t, 2, cfg.Limiter.MaxConcurrent)
	assert.InDelta(t, 0.5, cfg.Limiter.RatePerSecond, 1e-9)
	assert.Equal(t, "shared-key", cfg.Gemini.APIKey)
	assert.Equal(t, "image-key", cfg.ImageGen.APIKey)
	// untouched sections keep their defaults
	assert.Equal(t, "./output", cfg.Storage.BasePath)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unterminated"), 0o644))
	t.Setenv("CONFIG_PATH", path)

	_, err := Load()
	assert.Error(t, err)
}
