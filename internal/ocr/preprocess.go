package ocr

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ImagePreprocessor is one step of the scan cleanup pipeline.
type ImagePreprocessor interface {
	Process(img image.Image) (image.Image, error)
}

type GrayscaleProcessor struct{}

func NewGrayscaleProcessor() *GrayscaleProcessor {
	return &GrayscaleProcessor{}
}

func (p *GrayscaleProcessor) Process(img image.Image) (image.Image, error) {
	return imaging.Grayscale(img), nil
}

type DenoiseProcessor struct {
	strength float64
}

func NewDenoiseProcessor(strength float64) *DenoiseProcessor {
	return &DenoiseProcessor{strength: strength}
}

func (p *DenoiseProcessor) Process(img image.Image) (image.Image, error) {
	return imaging.Blur(img, p.strength), nil
}

type ContrastNormalizationProcessor struct{}

func NewContrastNormalizationProcessor() *ContrastNormalizationProcessor {
	return &ContrastNormalizationProcessor{}
}

func (p *ContrastNormalizationProcessor) Process(img image.Image) (image.Image, error) {
	return imaging.AdjustContrast(img, 20), nil
}

type SharpenProcessor struct {
	strength float64
}

func NewSharpenProcessor(strength float64) *SharpenProcessor {
	return &SharpenProcessor{strength: strength}
}

func (p *SharpenProcessor) Process(img image.Image) (image.Image, error) {
	return imaging.Sharpen(img, p.strength), nil
}

// defaultPipeline is tuned for typical office scans: flatten color,
// knock back scanner noise, then restore edge contrast for the
// recognizer.
func defaultPipeline() []ImagePreprocessor {
	return []ImagePreprocessor{
		NewGrayscaleProcessor(),
		NewDenoiseProcessor(0.5),
		NewContrastNormalizationProcessor(),
		NewSharpenProcessor(0.5),
	}
}

func applyPipeline(img image.Image, pipeline []ImagePreprocessor) (image.Image, error) {
	if img == nil {
		return nil, fmt.Errorf("input image is nil")
	}
	result := img
	for _, p := range pipeline {
		var err error
		result, err = p.Process(result)
		if err != nil {
			return nil, fmt.Errorf("preprocessing failed: %w", err)
		}
		if result == nil {
			return nil, fmt.Errorf("preprocessor returned nil image")
		}
	}
	return result, nil
}
