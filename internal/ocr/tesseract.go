package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/feichai0017/pdf-toolbox/pkg/logger"
)

const defaultLanguage = "eng"

// TesseractEngine recognizes text with a local tesseract installation.
// A fresh gosseract client is created per image; the client is not safe
// for concurrent use and is cheap next to the recognition itself.
type TesseractEngine struct {
	log           logger.Logger
	preprocessors []ImagePreprocessor
	minConfidence float64
}

func NewTesseractEngine(log logger.Logger) *TesseractEngine {
	return &TesseractEngine{
		log:           log.Named("tesseract"),
		preprocessors: defaultPipeline(),
		minConfidence: 60.0,
	}
}

func (e *TesseractEngine) RecognizeImage(ctx context.Context, img image.Image, opts Options) (PageResult, error) {
	if err := ctx.Err(); err != nil {
		return PageResult{}, err
	}

	if opts.Preprocess {
		var err error
		img, err = applyPipeline(img, e.preprocessors)
		if err != nil {
			return PageResult{}, err
		}
	}

	client := gosseract.NewClient()
	defer client.Close()

	lang := opts.Language
	if lang == "" {
		lang = defaultLanguage
	}
	if err := client.SetLanguage(strings.Split(lang, "+")...); err != nil {
		return PageResult{}, fmt.Errorf("set language %q: %w", lang, err)
	}

	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		return PageResult{}, fmt.Errorf("encode image: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return PageResult{}, fmt.Errorf("set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return PageResult{}, fmt.Errorf("recognize: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		// Text without word geometry is still a usable result.
		e.log.Warn("bounding boxes unavailable", logger.Error(err))
		return PageResult{Text: text}, nil
	}

	words, confidence := e.collectWords(boxes)
	return PageResult{
		Text:       text,
		Words:      words,
		Confidence: confidence,
	}, nil
}

func (e *TesseractEngine) RecognizeDocument(ctx context.Context, doc PageRenderer, opts Options) (Result, error) {
	return recognizeDocument(ctx, e, doc, opts)
}

func (e *TesseractEngine) Close() error {
	return nil
}

// collectWords drops low-confidence boxes and averages the rest.
func (e *TesseractEngine) collectWords(boxes []gosseract.BoundingBox) ([]Word, float64) {
	var words []Word
	var total float64

	for _, box := range boxes {
		if box.Confidence < e.minConfidence {
			continue
		}
		words = append(words, Word{
			Text:       box.Word,
			Confidence: box.Confidence,
			X:          box.Box.Min.X,
			Y:          box.Box.Min.Y,
			Width:      box.Box.Dx(),
			Height:     box.Box.Dy(),
		})
		total += box.Confidence
	}

	if len(words) == 0 {
		return nil, 0
	}
	return words, total / float64(len(words))
}
