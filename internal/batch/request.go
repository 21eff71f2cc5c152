package batch

import (
	"fmt"
	"strings"
)

// OperationKind identifies the batch operation applied to every input.
type OperationKind string

const (
	OpConvert     OperationKind = "convert"
	OpMerge       OperationKind = "merge"
	OpSplit       OperationKind = "split"
	OpWatermark   OperationKind = "watermark"
	OpOCR         OperationKind = "ocr"
	OpPageNumbers OperationKind = "page-numbers"
	OpCompress    OperationKind = "compress"
	OpEncrypt     OperationKind = "encrypt"
	OpDecrypt     OperationKind = "decrypt"
)

// Params is the typed parameter bag for one operation kind. Each kind has
// its own struct; NewRequest rejects a bag whose kind does not match the
// request, so bad parameters surface at construction instead of deep
// inside a worker task.
type Params interface {
	Kind() OperationKind
	Validate() error
}

// ConvertFormats lists the supported convert target formats.
var ConvertFormats = []string{"txt", "html", "png", "jpeg", "tiff"}

// ConvertParams configures the convert operation.
type ConvertParams struct {
	Format  string `json:"format"`            // one of ConvertFormats
	DPI     int    `json:"dpi,omitempty"`     // image formats only, 0 means default
	Quality int    `json:"quality,omitempty"` // jpeg only, 0 means default
}

func (ConvertParams) Kind() OperationKind { return OpConvert }

func (p ConvertParams) Validate() error {
	for _, f := range ConvertFormats {
		if p.Format == f {
			if p.Quality < 0 || p.Quality > 100 {
				return fmt.Errorf("quality must be in [0,100], got %d", p.Quality)
			}
			if p.DPI < 0 {
				return fmt.Errorf("dpi must be non-negative, got %d", p.DPI)
			}
			return nil
		}
	}
	return fmt.Errorf("unsupported convert format %q (supported: %s)",
		p.Format, strings.Join(ConvertFormats, ", "))
}

// MergeParams configures the merge operation. Merge is the one aggregate
// operation: all inputs combine into a single output file.
type MergeParams struct {
	OutputFile string `json:"outputFile"` // file name inside the request's output directory
}

func (MergeParams) Kind() OperationKind { return OpMerge }

func (p MergeParams) Validate() error {
	if strings.TrimSpace(p.OutputFile) == "" {
		return fmt.Errorf("merge output file name is required")
	}
	return nil
}

// SplitMode selects how split partitions a document.
type SplitMode string

const (
	SplitSingle SplitMode = "single" // one file per page
	SplitRange  SplitMode = "range"  // one file per requested page range
	SplitSize   SplitMode = "size"   // unsupported, kept for wire compatibility
)

// PageRange is a 1-based inclusive page interval.
type PageRange struct {
	From int `json:"from"`
	To   int `json:"to"`
}

func (r PageRange) validate() error {
	if r.From < 1 || r.To < r.From {
		return fmt.Errorf("invalid page range %d-%d", r.From, r.To)
	}
	return nil
}

// SplitParams configures the split operation.
type SplitParams struct {
	Mode   SplitMode   `json:"mode"`
	Ranges []PageRange `json:"ranges,omitempty"` // range mode only
}

func (SplitParams) Kind() OperationKind { return OpSplit }

func (p SplitParams) Validate() error {
	switch p.Mode {
	case SplitSingle:
		return nil
	case SplitRange:
		if len(p.Ranges) == 0 {
			return fmt.Errorf("range split requires at least one page range")
		}
		for _, r := range p.Ranges {
			if err := r.validate(); err != nil {
				return err
			}
		}
		return nil
	case SplitSize:
		// Present in the request schema but deliberately not implemented.
		return fmt.Errorf("split by size is not supported")
	default:
		return fmt.Errorf("unknown split mode %q", p.Mode)
	}
}

// WatermarkPosition anchors a watermark on the page.
type WatermarkPosition string

const (
	PosCenter      WatermarkPosition = "center"
	PosTopLeft     WatermarkPosition = "top-left"
	PosTopRight    WatermarkPosition = "top-right"
	PosBottomLeft  WatermarkPosition = "bottom-left"
	PosBottomRight WatermarkPosition = "bottom-right"
)

// WatermarkParams configures the watermark operation. Exactly one of Text
// and ImagePath must be set.
type WatermarkParams struct {
	Text      string            `json:"text,omitempty"`
	ImagePath string            `json:"imagePath,omitempty"`
	Opacity   float64           `json:"opacity,omitempty"` // 0 means default (0.5)
	Position  WatermarkPosition `json:"position,omitempty"`
	Rotation  float64           `json:"rotation,omitempty"` // degrees
}

func (WatermarkParams) Kind() OperationKind { return OpWatermark }

func (p WatermarkParams) Validate() error {
	if (p.Text == "") == (p.ImagePath == "") {
		return fmt.Errorf("exactly one of watermark text or image is required")
	}
	if p.Opacity < 0 || p.Opacity > 1 {
		return fmt.Errorf("opacity must be in [0,1], got %v", p.Opacity)
	}
	switch p.Position {
	case "", PosCenter, PosTopLeft, PosTopRight, PosBottomLeft, PosBottomRight:
		return nil
	default:
		return fmt.Errorf("unknown watermark position %q", p.Position)
	}
}

// OCRFormats lists the supported OCR output formats.
var OCRFormats = []string{"pdf", "txt"}

// OCRParams configures the ocr operation.
type OCRParams struct {
	Format     string `json:"format"`               // "pdf" for a searchable PDF, "txt" for plain text
	Language   string `json:"language,omitempty"`   // tesseract language spec, e.g. "eng" or "chi_sim+eng"
	Preprocess bool   `json:"preprocess,omitempty"` // run the image cleanup pipeline before recognition
}

func (OCRParams) Kind() OperationKind { return OpOCR }

func (p OCRParams) Validate() error {
	for _, f := range OCRFormats {
		if p.Format == f {
			return nil
		}
	}
	return fmt.Errorf("unsupported ocr output format %q (supported: %s)",
		p.Format, strings.Join(OCRFormats, ", "))
}

// PageNumberPosition anchors page numbers on the page.
type PageNumberPosition string

const (
	NumBottomCenter PageNumberPosition = "bottom-center"
	NumBottomLeft   PageNumberPosition = "bottom-left"
	NumBottomRight  PageNumberPosition = "bottom-right"
	NumTopCenter    PageNumberPosition = "top-center"
	NumTopLeft      PageNumberPosition = "top-left"
	NumTopRight     PageNumberPosition = "top-right"
)

// PageNumberParams configures the page-numbers operation.
type PageNumberParams struct {
	Position PageNumberPosition `json:"position,omitempty"`
	Format   string             `json:"format,omitempty"`   // "%p" page, "%P" total; empty means "%p / %P"
	FontSize int                `json:"fontSize,omitempty"` // 0 means default
}

func (PageNumberParams) Kind() OperationKind { return OpPageNumbers }

func (p PageNumberParams) Validate() error {
	switch p.Position {
	case "", NumBottomCenter, NumBottomLeft, NumBottomRight, NumTopCenter, NumTopLeft, NumTopRight:
	default:
		return fmt.Errorf("unknown page number position %q", p.Position)
	}
	if p.FontSize < 0 {
		return fmt.Errorf("font size must be non-negative, got %d", p.FontSize)
	}
	return nil
}

// CompressParams configures the compress operation.
type CompressParams struct {
	Quality int `json:"quality,omitempty"` // image re-encode quality, 0 means default (85)
}

func (CompressParams) Kind() OperationKind { return OpCompress }

func (p CompressParams) Validate() error {
	if p.Quality < 0 || p.Quality > 100 {
		return fmt.Errorf("quality must be in [0,100], got %d", p.Quality)
	}
	return nil
}

// EncryptParams configures the encrypt operation.
type EncryptParams struct {
	UserPassword  string      `json:"userPassword"`
	OwnerPassword string      `json:"ownerPassword,omitempty"` // empty means same as user password
	Permissions   Permissions `json:"permissions"`
}

// Permissions mirrors the PDF permission bits exposed to callers.
type Permissions struct {
	AllowPrint    bool `json:"allowPrint"`
	AllowCopy     bool `json:"allowCopy"`
	AllowModify   bool `json:"allowModify"`
	AllowAnnotate bool `json:"allowAnnotate"`
}

func (EncryptParams) Kind() OperationKind { return OpEncrypt }

func (p EncryptParams) Validate() error {
	if p.UserPassword == "" {
		return fmt.Errorf("user password is required")
	}
	return nil
}

// DecryptParams configures the decrypt operation.
type DecryptParams struct {
	Password string `json:"password"`
}

func (DecryptParams) Kind() OperationKind { return OpDecrypt }

func (p DecryptParams) Validate() error {
	if p.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

// Request is one immutable batch submission: a single operation applied to
// an ordered list of input documents.
type Request struct {
	op        OperationKind
	inputs    []string
	outputDir string
	params    Params
}

// NewRequest validates and builds a Request. Input existence is not
// checked here; open failures are reported per file at run time.
func NewRequest(inputs []string, outputDir string, params Params) (*Request, error) {
	if params == nil {
		return nil, fmt.Errorf("operation parameters are required")
	}
	if len(inputs) == 0 {
		return nil, ErrNoInputs
	}
	if strings.TrimSpace(outputDir) == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s parameters: %w", params.Kind(), err)
	}
	req := &Request{
		op:        params.Kind(),
		inputs:    append([]string(nil), inputs...),
		outputDir: outputDir,
		params:    params,
	}
	return req, nil
}

// Operation returns the operation kind.
func (r *Request) Operation() OperationKind { return r.op }

// Inputs returns a copy of the ordered input document paths.
func (r *Request) Inputs() []string {
	return append([]string(nil), r.inputs...)
}

// OutputDir returns the output directory.
func (r *Request) OutputDir() string { return r.outputDir }

// Params returns the typed parameter bag.
func (r *Request) Params() Params { return r.params }
