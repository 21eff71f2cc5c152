package ocr

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/pdf-toolbox/pkg/logger"
)

type fakeRenderer struct {
	pages int
}

func (r *fakeRenderer) PageCount() int { return r.pages }

func (r *fakeRenderer) RenderPage(page int, dpi float64) (image.Image, error) {
	if page < 1 || page > r.pages {
		return nil, fmt.Errorf("page %d out of range", page)
	}
	return image.NewGray(image.Rect(0, 0, page, 1)), nil
}

// fakeEngine identifies each page by the width of its rendered image.
type fakeEngine struct {
	mu       sync.Mutex
	inflight int
	peak     int
	failPage int
}

func (e *fakeEngine) RecognizeImage(ctx context.Context, img image.Image, opts Options) (PageResult, error) {
	e.mu.Lock()
	e.inflight++
	if e.inflight > e.peak {
		e.peak = e.inflight
	}
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.inflight--
		e.mu.Unlock()
	}()

	page := img.Bounds().Dx()
	if page == e.failPage {
		return PageResult{}, fmt.Errorf("boom")
	}
	return PageResult{
		Text:       fmt.Sprintf("page %d text", page),
		Confidence: float64(page * 10),
	}, nil
}

func (e *fakeEngine) RecognizeDocument(ctx context.Context, doc PageRenderer, opts Options) (Result, error) {
	return recognizeDocument(ctx, e, doc, opts)
}

func (e *fakeEngine) Close() error { return nil }

func TestRecognizeDocumentPreservesPageOrder(t *testing.T) {
	engine := &fakeEngine{}
	doc := &fakeRenderer{pages: 6}

	res, err := engine.RecognizeDocument(context.Background(), doc, Options{})
	require.NoError(t, err)

	require.Len(t, res.Pages, 6)
	for i, p := range res.Pages {
		assert.Equal(t, i+1, p.Page)
		assert.Equal(t, fmt.Sprintf("page %d text", i+1), p.Text)
	}
	assert.Equal(t, strings.Join([]string{
		"page 1 text", "page 2 text", "page 3 text",
		"page 4 text", "page 5 text", "page 6 text",
	}, "\n\n"), res.Text)
	assert.InDelta(t, 35.0, res.Confidence, 0.001)
	assert.LessOrEqual(t, engine.peak, maxConcurrentPages)
}

func TestRecognizeDocumentPageFailureFailsRun(t *testing.T) {
	engine := &fakeEngine{failPage: 3}
	doc := &fakeRenderer{pages: 5}

	_, err := engine.RecognizeDocument(context.Background(), doc, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page 3")
}

func TestRecognizeDocumentEmptyDocument(t *testing.T) {
	engine := &fakeEngine{}
	_, err := engine.RecognizeDocument(context.Background(), &fakeRenderer{pages: 0}, Options{})
	assert.Error(t, err)
}

func TestApplyPipeline(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			src.Set(x, y, color.RGBA{R: uint8(x * 30), G: uint8(y * 30), B: 100, A: 255})
		}
	}

	out, err := applyPipeline(src, defaultPipeline())
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, src.Bounds().Dx(), out.Bounds().Dx())
	assert.Equal(t, src.Bounds().Dy(), out.Bounds().Dy())
}

func TestApplyPipelineNilImage(t *testing.T) {
	_, err := applyPipeline(nil, defaultPipeline())
	assert.Error(t, err)
}

func TestNewEngineUnknownBackend(t *testing.T) {
	_, err := NewEngine(context.Background(), Config{Backend: "abbyy"}, logger.NewTestLogger())
	assert.Error(t, err)
}
