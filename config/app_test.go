package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppConfigDefaults(t *testing.T) {
	cfg, err := LoadAppConfig("")
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, "tesseract", cfg.OCR.Backend)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadAppConfigOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yaml")
	body := `
workers: 8
output_dir: /tmp/batches
logging:
  level: debug
ocr:
  backend: textract
  language: eng+deu
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	cfg, err := LoadAppConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, "/tmp/batches", cfg.OutputDir)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "textract", cfg.OCR.Backend)
	assert.Equal(t, "eng+deu", cfg.OCR.Language)
	// untouched keys keep their defaults
	assert.Equal(t, 4, cfg.Queue.Concurrency)
}

func TestLoadAppConfigRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: -1\n"), 0644))

	_, err := LoadAppConfig(path)
	assert.Error(t, err)
}

func TestLoadAppConfigMissingFile(t *testing.T) {
	_, err := LoadAppConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
