package ocr

import (
	"context"
	"fmt"

	"github.com/feichai0017/pdf-toolbox/pkg/logger"
)

// Backend names accepted by NewEngine.
const (
	BackendTesseract = "tesseract"
	BackendTextract  = "textract"
)

// Config selects and configures the recognition backend.
type Config struct {
	Backend  string
	Textract TextractConfig
}

// NewEngine builds the configured engine. An empty backend means the
// local tesseract installation.
func NewEngine(ctx context.Context, cfg Config, log logger.Logger) (Engine, error) {
	switch cfg.Backend {
	case "", BackendTesseract:
		return NewTesseractEngine(log), nil
	case BackendTextract:
		return NewTextractEngine(ctx, cfg.Textract, log)
	default:
		return nil, fmt.Errorf("unsupported ocr backend: %s", cfg.Backend)
	}
}
