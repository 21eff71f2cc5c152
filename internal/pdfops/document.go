// Package pdfops implements the document operation surface of the toolbox:
// opening and inspecting PDFs, page organization, watermarking, format
// conversion, optimization and encryption. Parsing and rendering are
// delegated to MuPDF (go-fitz); structural rewrites to pdfcpu.
package pdfops

import (
	"fmt"
	"image"
	"io"
	"os"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
)

// Document is an open handle on one PDF file. Handles are cheap and not
// safe for concurrent use; each batch worker opens its own.
type Document struct {
	path string
	fz   *fitz.Document
}

// Open opens a PDF for reading. The file must exist and be parseable.
func Open(path string) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	fz, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("cannot parse %s: %w", path, err)
	}
	return &Document{path: path, fz: fz}, nil
}

// Path returns the file path the document was opened from.
func (d *Document) Path() string { return d.path }

// PageCount returns the number of pages.
func (d *Document) PageCount() int { return d.fz.NumPage() }

// Close releases the underlying MuPDF document.
func (d *Document) Close() error {
	return d.fz.Close()
}

// ExtractText returns the plain text of the given 1-based page, or of the
// whole document when page is 0.
func (d *Document) ExtractText(page int) (string, error) {
	if page > 0 {
		if page > d.PageCount() {
			return "", fmt.Errorf("page %d out of range (document has %d pages)", page, d.PageCount())
		}
		return d.fz.Text(page - 1)
	}

	var sb strings.Builder
	for i := 0; i < d.PageCount(); i++ {
		text, err := d.fz.Text(i)
		if err != nil {
			return "", fmt.Errorf("extract text from page %d: %w", i+1, err)
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// ExtractHTML returns the given 1-based page rendered as HTML.
func (d *Document) ExtractHTML(page int) (string, error) {
	if page < 1 || page > d.PageCount() {
		return "", fmt.Errorf("page %d out of range (document has %d pages)", page, d.PageCount())
	}
	return d.fz.HTML(page-1, true)
}

// RenderPage rasterizes the given 1-based page at the requested DPI.
func (d *Document) RenderPage(page int, dpi float64) (image.Image, error) {
	if page < 1 || page > d.PageCount() {
		return nil, fmt.Errorf("page %d out of range (document has %d pages)", page, d.PageCount())
	}
	if dpi <= 0 {
		dpi = 96
	}
	return d.fz.ImageDPI(page-1, dpi)
}

// Metadata returns the document information dictionary (title, author...).
func (d *Document) Metadata() map[string]string {
	return d.fz.Metadata()
}

// HasTextLayer reports whether the document carries an embedded text
// layer. Scanned documents without one need OCR before text extraction
// is useful. The probe uses a separate pure-Go parser so it stays cheap
// and cannot disturb the MuPDF handle.
func (d *Document) HasTextLayer() bool {
	f, r, err := pdf.Open(d.path)
	if err != nil {
		return false
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return false
	}
	buf := make([]byte, 4096)
	for {
		n, err := reader.Read(buf)
		if strings.TrimSpace(string(buf[:n])) != "" {
			return true
		}
		if err == io.EOF || err != nil {
			return false
		}
	}
}
