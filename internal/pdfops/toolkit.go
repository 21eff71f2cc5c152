package pdfops

import (
	"context"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/feichai0017/pdf-toolbox/internal/batch"
	"github.com/feichai0017/pdf-toolbox/internal/ocr"
	"github.com/feichai0017/pdf-toolbox/pkg/logger"
)

// Toolkit is the production implementation of the batch coordinator's
// document operation surface. It is stateless apart from its
// collaborators and safe for concurrent use; every operation works on
// the handle (or path) it is given.
type Toolkit struct {
	ocr ocr.Engine
	log logger.Logger
}

// NewToolkit assembles the toolkit. ocrEngine may be nil when OCR
// operations are not needed (they will fail per-file with a clear error).
func NewToolkit(ocrEngine ocr.Engine, log logger.Logger) *Toolkit {
	return &Toolkit{
		ocr: ocrEngine,
		log: log.Named("pdfops"),
	}
}

// Open opens one input document.
func (t *Toolkit) Open(path string) (batch.Document, error) {
	return Open(path)
}

// local unwraps a batch.Document back to the concrete handle. A foreign
// handle can only reach this point through a miswired test double.
func (t *Toolkit) local(doc batch.Document) (*Document, error) {
	d, ok := doc.(*Document)
	if !ok {
		return nil, fmt.Errorf("unexpected document handle %T", doc)
	}
	return d, nil
}

// OCR recognizes doc and writes the result to outFile. Born-digital
// documents with an embedded text layer skip recognition entirely: for
// txt output the layer is extracted directly, for pdf output the file is
// already searchable and is copied through.
func (t *Toolkit) OCR(doc batch.Document, outFile string, p batch.OCRParams) error {
	d, err := t.local(doc)
	if err != nil {
		return err
	}

	switch p.Format {
	case "txt":
		if d.HasTextLayer() {
			t.log.Debug("text layer present, skipping recognition", logger.String("input", d.path))
			text, err := d.ExtractText(0)
			if err != nil {
				return fmt.Errorf("extract text: %w", err)
			}
			return os.WriteFile(outFile, []byte(text), 0644)
		}
		res, err := t.recognize(d, p)
		if err != nil {
			return err
		}
		return os.WriteFile(outFile, []byte(res.Text), 0644)

	case "pdf":
		if d.HasTextLayer() {
			t.log.Debug("document is already searchable", logger.String("input", d.path))
			return copyFile(d.path, outFile)
		}
		return t.searchablePDF(d, outFile, p)

	default:
		return fmt.Errorf("unsupported ocr output format %q", p.Format)
	}
}

func (t *Toolkit) recognize(d *Document, p batch.OCRParams) (ocr.Result, error) {
	if t.ocr == nil {
		return ocr.Result{}, fmt.Errorf("no OCR engine configured")
	}
	return t.ocr.RecognizeDocument(context.Background(), d, ocr.Options{
		Language:   p.Language,
		Preprocess: p.Preprocess,
	})
}

// searchablePDF rebuilds a scanned document as a fresh PDF from its page
// renders and attaches the recognized text so it travels with the file.
func (t *Toolkit) searchablePDF(d *Document, outFile string, p batch.OCRParams) error {
	res, err := t.recognize(d, p)
	if err != nil {
		return err
	}

	tmpDir, err := os.MkdirTemp("", "pdf-toolbox-ocr-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmpDir)

	images := make([]string, 0, d.PageCount())
	for page := 1; page <= d.PageCount(); page++ {
		img, err := d.RenderPage(page, defaultRenderDPI)
		if err != nil {
			return fmt.Errorf("render page %d: %w", page, err)
		}
		imgPath := filepath.Join(tmpDir, fmt.Sprintf("page_%03d.png", page))
		f, err := os.Create(imgPath)
		if err != nil {
			return err
		}
		err = png.Encode(f, img)
		f.Close()
		if err != nil {
			return fmt.Errorf("encode page %d: %w", page, err)
		}
		images = append(images, imgPath)
	}

	if err := t.ImagesToPDF(images, outFile); err != nil {
		return fmt.Errorf("assemble pdf: %w", err)
	}

	sidecar := filepath.Join(tmpDir, baseName(d.path)+"_ocr.txt")
	if err := os.WriteFile(sidecar, []byte(res.Text), 0644); err != nil {
		return err
	}
	if err := api.AddAttachmentsFile(outFile, "", []string{sidecar}, false, newConfiguration()); err != nil {
		return fmt.Errorf("attach recognized text: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func baseName(path string) string {
	name := filepath.Base(path)
	return name[:len(name)-len(filepath.Ext(name))]
}
