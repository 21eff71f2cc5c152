package pdfops

import (
	"fmt"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/feichai0017/pdf-toolbox/internal/batch"
	"github.com/feichai0017/pdf-toolbox/pkg/logger"
)

func newConfiguration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// Merge combines the inputs, in order, into outFile.
func (t *Toolkit) Merge(inputs []string, outFile string) error {
	if len(inputs) < 2 {
		return fmt.Errorf("merge needs at least two inputs, got %d", len(inputs))
	}
	return api.MergeCreateFile(inputs, outFile, false, newConfiguration())
}

// ExtractPages writes the selected 1-based pages of doc into outFile as a
// new document.
func (t *Toolkit) ExtractPages(doc batch.Document, pages []int, outFile string) error {
	d, err := t.local(doc)
	if err != nil {
		return err
	}
	sel := pagesToSelector(pages)
	if len(sel) == 0 {
		return fmt.Errorf("no pages selected")
	}
	return api.TrimFile(d.path, outFile, sel, newConfiguration())
}

// DeletePages writes a copy of doc without the selected pages.
func (t *Toolkit) DeletePages(doc batch.Document, pages []int, outFile string) error {
	d, err := t.local(doc)
	if err != nil {
		return err
	}
	sel := pagesToSelector(pages)
	if len(sel) == 0 {
		return fmt.Errorf("no pages selected")
	}
	return api.RemovePagesFile(d.path, outFile, sel, newConfiguration())
}

// RotatePages rotates the selected pages by angle degrees (multiples of
// 90). An empty page list rotates the whole document.
func (t *Toolkit) RotatePages(doc batch.Document, pages []int, angle int, outFile string) error {
	d, err := t.local(doc)
	if err != nil {
		return err
	}
	if angle%90 != 0 {
		return fmt.Errorf("rotation must be a multiple of 90, got %d", angle)
	}
	return api.RotateFile(d.path, outFile, angle, pagesToSelector(pages), newConfiguration())
}

// ReorderPages writes doc's pages in the given explicit order. Pages may
// repeat; pages left out are dropped.
func (t *Toolkit) ReorderPages(doc batch.Document, order []int, outFile string) error {
	d, err := t.local(doc)
	if err != nil {
		return err
	}
	if len(order) == 0 {
		return fmt.Errorf("no page order given")
	}
	return api.CollectFile(d.path, outFile, pageOrderSelector(order), newConfiguration())
}

var watermarkAnchors = map[batch.WatermarkPosition]string{
	batch.PosCenter:      "c",
	batch.PosTopLeft:     "tl",
	batch.PosTopRight:    "tr",
	batch.PosBottomLeft:  "bl",
	batch.PosBottomRight: "br",
}

// AddWatermark stamps every page of doc with a text or image watermark.
func (t *Toolkit) AddWatermark(doc batch.Document, outFile string, p batch.WatermarkParams) error {
	d, err := t.local(doc)
	if err != nil {
		return err
	}

	opacity := p.Opacity
	if opacity == 0 {
		opacity = 0.5
	}
	anchor := watermarkAnchors[p.Position]
	if anchor == "" {
		anchor = "c"
	}
	desc := fmt.Sprintf("pos:%s, op:%.2f, rot:%d", anchor, opacity, int(p.Rotation))

	var wm *model.Watermark
	if p.Text != "" {
		wm, err = api.TextWatermark(p.Text, desc+", points:48, fillc:#808080", false, false, types.POINTS)
	} else {
		wm, err = api.ImageWatermark(p.ImagePath, desc+", scale:0.5 rel", false, false, types.POINTS)
	}
	if err != nil {
		return fmt.Errorf("build watermark: %w", err)
	}
	return api.AddWatermarksFile(d.path, outFile, nil, wm, newConfiguration())
}

var pageNumberAnchors = map[batch.PageNumberPosition]string{
	batch.NumBottomCenter: "bc",
	batch.NumBottomLeft:   "bl",
	batch.NumBottomRight:  "br",
	batch.NumTopCenter:    "tc",
	batch.NumTopLeft:      "tl",
	batch.NumTopRight:     "tr",
}

// AddPageNumbers stamps a page number onto every page. The format string
// may use %p for the page number and %P for the page count.
func (t *Toolkit) AddPageNumbers(doc batch.Document, outFile string, p batch.PageNumberParams) error {
	d, err := t.local(doc)
	if err != nil {
		return err
	}

	format := p.Format
	if format == "" {
		format = "%p / %P"
	}
	// pdfcpu's stamp macros use %p / %P as well; guard against stray
	// newlines breaking the stamp description.
	format = strings.ReplaceAll(format, "\n", " ")

	anchor := pageNumberAnchors[p.Position]
	if anchor == "" {
		anchor = "bc"
	}
	fontSize := p.FontSize
	if fontSize == 0 {
		fontSize = 12
	}
	desc := fmt.Sprintf("pos:%s, points:%d, op:1, scale:1 abs", anchor, fontSize)

	wm, err := api.TextWatermark(format, desc, true, false, types.POINTS)
	if err != nil {
		return fmt.Errorf("build page number stamp: %w", err)
	}
	return api.AddWatermarksFile(d.path, outFile, nil, wm, newConfiguration())
}

// ImagesToPDF builds a fresh PDF with one page per input image.
func (t *Toolkit) ImagesToPDF(images []string, outFile string) error {
	if len(images) == 0 {
		return fmt.Errorf("no images given")
	}
	return api.ImportImagesFile(images, outFile, nil, newConfiguration())
}

// Optimize rewrites doc with deduplicated resources and compacted
// structure. quality is recorded for observability; pdfcpu decides image
// handling on its own.
func (t *Toolkit) Optimize(doc batch.Document, outFile string, quality int) error {
	d, err := t.local(doc)
	if err != nil {
		return err
	}
	t.log.Debug("optimizing document",
		logger.String("input", d.path),
		logger.Int("quality", quality),
	)
	return api.OptimizeFile(d.path, outFile, newConfiguration())
}
