package pdfops

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/errgroup"

	"github.com/feichai0017/pdf-toolbox/internal/batch"
)

const (
	defaultRenderDPI    = 300
	defaultImageQuality = 90
	renderConcurrency   = 4
)

// Convert writes doc to outPath in the requested format. Text and HTML
// produce a single file at outPath; image formats produce one file per
// page (a single-page document keeps outPath as-is).
func (t *Toolkit) Convert(doc batch.Document, outPath string, p batch.ConvertParams) ([]string, error) {
	d, err := t.local(doc)
	if err != nil {
		return nil, err
	}

	switch p.Format {
	case "txt":
		text, err := d.ExtractText(0)
		if err != nil {
			return nil, fmt.Errorf("extract text: %w", err)
		}
		if err := os.WriteFile(outPath, []byte(text), 0644); err != nil {
			return nil, err
		}
		return []string{outPath}, nil

	case "html":
		return t.convertToHTML(d, outPath)

	case "png", "jpeg", "tiff":
		return t.convertToImages(d, outPath, p)

	default:
		return nil, fmt.Errorf("unsupported convert format %q", p.Format)
	}
}

func (t *Toolkit) convertToHTML(d *Document, outPath string) ([]string, error) {
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html>\n<body>\n")
	for page := 1; page <= d.PageCount(); page++ {
		html, err := d.ExtractHTML(page)
		if err != nil {
			return nil, fmt.Errorf("render page %d as html: %w", page, err)
		}
		sb.WriteString(html)
		sb.WriteString("\n")
	}
	sb.WriteString("</body>\n</html>\n")
	if err := os.WriteFile(outPath, []byte(sb.String()), 0644); err != nil {
		return nil, err
	}
	return []string{outPath}, nil
}

// convertToImages rasterizes every page. Rendering is fanned out over a
// small errgroup; MuPDF serializes page access internally, but encoding
// and writing overlap.
func (t *Toolkit) convertToImages(d *Document, outPath string, p batch.ConvertParams) ([]string, error) {
	dpi := float64(p.DPI)
	if dpi <= 0 {
		dpi = defaultRenderDPI
	}
	quality := p.Quality
	if quality <= 0 {
		quality = defaultImageQuality
	}

	total := d.PageCount()
	if total == 0 {
		return nil, fmt.Errorf("document has no pages")
	}

	ext := filepath.Ext(outPath)
	stem := strings.TrimSuffix(outPath, ext)

	pathFor := func(page int) string {
		if total == 1 {
			return outPath
		}
		return fmt.Sprintf("%s_page_%d%s", stem, page, ext)
	}

	outputs := make([]string, total)
	var g errgroup.Group
	g.SetLimit(renderConcurrency)

	for page := 1; page <= total; page++ {
		page := page
		g.Go(func() error {
			img, err := d.RenderPage(page, dpi)
			if err != nil {
				return fmt.Errorf("render page %d: %w", page, err)
			}
			out := pathFor(page)
			if err := imaging.Save(img, out, imaging.JPEGQuality(quality)); err != nil {
				return fmt.Errorf("save page %d: %w", page, err)
			}
			outputs[page-1] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}
