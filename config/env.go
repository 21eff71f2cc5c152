package config

import (
	"log"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/joho/godotenv"
)

var envOnce sync.Once

// loadEnv loads the project-root .env file once. Missing files are fine;
// the accessors fall back to the process environment.
func loadEnv() {
	envOnce.Do(func() {
		_, filename, _, _ := runtime.Caller(0)
		configDir := filepath.Dir(filename)

		rootDir := filepath.Dir(configDir)
		envPath := filepath.Join(rootDir, ".env")

		if err := godotenv.Load(envPath); err != nil {
			log.Printf("Warning: .env file not found at %s, falling back to environment variables", envPath)
		}
	})
}
