package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AppConfig is the file-based application configuration shared by the
// CLI, the API server, and the background worker. Credentials stay in
// the environment; everything tunable lives here.
type AppConfig struct {
	// Workers bounds the batch worker pool.
	Workers int `yaml:"workers"`
	// OutputDir is the default destination for batch artifacts.
	OutputDir string `yaml:"output_dir"`

	Logging LoggingSettings `yaml:"logging"`
	OCR     OCRSettings     `yaml:"ocr"`
	Queue   QueueSettings   `yaml:"queue"`
	Storage StorageSettings `yaml:"storage"`
	Server  ServerSettings  `yaml:"server"`
}

type LoggingSettings struct {
	Level    string   `yaml:"level"`
	Encoding string   `yaml:"encoding"`
	Outputs  []string `yaml:"outputs"`
}

type OCRSettings struct {
	Backend    string `yaml:"backend"`
	Language   string `yaml:"language"`
	Preprocess bool   `yaml:"preprocess"`
	DPI        int    `yaml:"dpi"`
}

type QueueSettings struct {
	Concurrency int `yaml:"concurrency"`
	// ResultTTLHours bounds how long job status survives in Redis.
	ResultTTLHours int `yaml:"result_ttl_hours"`
}

type StorageSettings struct {
	// Backend is "minio", "s3", or "" for local-only operation.
	Backend string `yaml:"backend"`
}

type ServerSettings struct {
	Addr string `yaml:"addr"`
}

// DefaultAppConfig returns the configuration used when no file is given.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Workers:   4,
		OutputDir: "output",
		Logging: LoggingSettings{
			Level:    "info",
			Encoding: "json",
			Outputs:  []string{"stdout"},
		},
		OCR: OCRSettings{
			Backend:    "tesseract",
			Language:   "eng",
			Preprocess: true,
			DPI:        300,
		},
		Queue: QueueSettings{
			Concurrency:    4,
			ResultTTLHours: 24,
		},
		Server: ServerSettings{
			Addr: ":8080",
		},
	}
}

// LoadAppConfig reads path and overlays it on the defaults. An empty
// path returns the defaults unchanged.
func LoadAppConfig(path string) (*AppConfig, error) {
	cfg := DefaultAppConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if cfg.Workers <= 0 {
		return nil, fmt.Errorf("workers must be positive, got %d", cfg.Workers)
	}
	if cfg.Queue.Concurrency <= 0 {
		return nil, fmt.Errorf("queue concurrency must be positive, got %d", cfg.Queue.Concurrency)
	}
	return cfg, nil
}
