package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"

	"github.com/feichai0017/pdf-toolbox/pkg/logger"
)

// TextractConfig carries the AWS settings for the cloud backend.
type TextractConfig struct {
	Region        string
	AccessKey     string
	SecretKey     string
	MinConfidence float32
}

// TextractEngine recognizes text through AWS Textract. Pages are
// rendered locally and submitted one image at a time.
type TextractEngine struct {
	client *textract.Client
	log    logger.Logger
	config TextractConfig
}

func NewTextractEngine(ctx context.Context, cfg TextractConfig, log logger.Logger) (*TextractEngine, error) {
	creds := credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(creds),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}

	return &TextractEngine{
		client: textract.NewFromConfig(awsCfg),
		log:    log.Named("textract"),
		config: cfg,
	}, nil
}

func (e *TextractEngine) RecognizeImage(ctx context.Context, img image.Image, opts Options) (PageResult, error) {
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		return PageResult{}, fmt.Errorf("encode image: %w", err)
	}

	out, err := e.client.DetectDocumentText(ctx, &textract.DetectDocumentTextInput{
		Document: &types.Document{Bytes: buf.Bytes()},
	})
	if err != nil {
		return PageResult{}, fmt.Errorf("detect document text: %w", err)
	}

	bounds := img.Bounds()
	var lines []string
	var words []Word
	var total float64

	for _, block := range out.Blocks {
		if block.Confidence != nil && *block.Confidence < e.config.MinConfidence {
			continue
		}
		switch block.BlockType {
		case types.BlockTypeLine:
			if block.Text != nil {
				lines = append(lines, *block.Text)
			}
		case types.BlockTypeWord:
			if block.Text == nil {
				continue
			}
			w := Word{Text: *block.Text}
			if block.Confidence != nil {
				w.Confidence = float64(*block.Confidence)
				total += w.Confidence
			}
			// Textract geometry is relative to the page; scale it back
			// to the rendered image's pixel space.
			if block.Geometry != nil && block.Geometry.BoundingBox != nil {
				bb := block.Geometry.BoundingBox
				w.X = int(bb.Left * float32(bounds.Dx()))
				w.Y = int(bb.Top * float32(bounds.Dy()))
				w.Width = int(bb.Width * float32(bounds.Dx()))
				w.Height = int(bb.Height * float32(bounds.Dy()))
			}
			words = append(words, w)
		}
	}

	confidence := 0.0
	if len(words) > 0 {
		confidence = total / float64(len(words))
	}

	return PageResult{
		Text:       strings.Join(lines, "\n"),
		Words:      words,
		Confidence: confidence,
	}, nil
}

func (e *TextractEngine) RecognizeDocument(ctx context.Context, doc PageRenderer, opts Options) (Result, error) {
	return recognizeDocument(ctx, e, doc, opts)
}

func (e *TextractEngine) Close() error {
	return nil
}
