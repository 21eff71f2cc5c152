package ocr

import (
	"context"
	"fmt"
	"image"
	"strings"

	"golang.org/x/sync/errgroup"
)

const (
	defaultRenderDPI   = 300
	maxConcurrentPages = 4
)

// Word is one recognized word with its pixel-space bounding box.
type Word struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
}

// PageResult is the recognition output for a single page.
type PageResult struct {
	Page       int     `json:"page"`
	Text       string  `json:"text"`
	Words      []Word  `json:"words,omitempty"`
	Confidence float64 `json:"confidence"`
}

// Result is the recognition output for a whole document, pages in order.
type Result struct {
	Text       string       `json:"text"`
	Pages      []PageResult `json:"pages"`
	Confidence float64      `json:"confidence"`
}

// Options tune a single recognition run.
type Options struct {
	// Language is a tesseract-style language spec, e.g. "eng" or "eng+deu".
	Language string
	// Preprocess runs the image cleanup pipeline before recognition.
	Preprocess bool
	// DPI used when rendering document pages. Zero means 300.
	DPI float64
}

// PageRenderer is the document side of recognition: anything that can
// say how many pages it has and rasterize one of them.
type PageRenderer interface {
	PageCount() int
	RenderPage(page int, dpi float64) (image.Image, error)
}

// Engine recognizes text in images and rendered documents.
type Engine interface {
	RecognizeImage(ctx context.Context, img image.Image, opts Options) (PageResult, error)
	RecognizeDocument(ctx context.Context, doc PageRenderer, opts Options) (Result, error)
	Close() error
}

// recognizeDocument fans page recognition out over a bounded set of
// goroutines and reassembles the results in page order.
func recognizeDocument(ctx context.Context, e Engine, doc PageRenderer, opts Options) (Result, error) {
	total := doc.PageCount()
	if total == 0 {
		return Result{}, fmt.Errorf("document has no pages")
	}

	dpi := opts.DPI
	if dpi <= 0 {
		dpi = defaultRenderDPI
	}

	pages := make([]PageResult, total)

	g, ctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, maxConcurrentPages)

	for i := 1; i <= total; i++ {
		page := i
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return ctx.Err()
			}

			img, err := doc.RenderPage(page, dpi)
			if err != nil {
				return fmt.Errorf("render page %d: %w", page, err)
			}
			res, err := e.RecognizeImage(ctx, img, opts)
			if err != nil {
				return fmt.Errorf("recognize page %d: %w", page, err)
			}
			res.Page = page
			pages[page-1] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	var sb strings.Builder
	var confidence float64
	for i, p := range pages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(p.Text)
		confidence += p.Confidence
	}

	return Result{
		Text:       sb.String(),
		Pages:      pages,
		Confidence: confidence / float64(total),
	}, nil
}
