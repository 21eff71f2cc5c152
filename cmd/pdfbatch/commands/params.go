package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/feichai0017/pdf-toolbox/internal/batch"
)

// opFlags collects every operation-specific flag; buildParams picks the
// ones the chosen operation understands.
type opFlags struct {
	// convert
	format  string
	dpi     int
	quality int
	// merge
	outputFile string
	// split
	splitMode string
	ranges    string
	// watermark
	text     string
	image    string
	opacity  float64
	position string
	rotation float64
	// ocr
	language   string
	preprocess bool
	// page numbers
	numberFormat string
	fontSize     int
	// encrypt / decrypt
	userPassword  string
	ownerPassword string
	password      string
	allowPrint    bool
	allowCopy     bool
	allowModify   bool
	allowAnnotate bool
}

func buildParams(op string, f *opFlags) (batch.Params, error) {
	switch batch.OperationKind(op) {
	case batch.OpConvert:
		return batch.ConvertParams{Format: f.format, DPI: f.dpi, Quality: f.quality}, nil

	case batch.OpMerge:
		return batch.MergeParams{OutputFile: f.outputFile}, nil

	case batch.OpSplit:
		ranges, err := parseRanges(f.ranges)
		if err != nil {
			return nil, err
		}
		mode := batch.SplitMode(f.splitMode)
		if f.splitMode == "" {
			mode = batch.SplitSingle
		}
		return batch.SplitParams{Mode: mode, Ranges: ranges}, nil

	case batch.OpWatermark:
		return batch.WatermarkParams{
			Text:      f.text,
			ImagePath: f.image,
			Opacity:   f.opacity,
			Position:  batch.WatermarkPosition(f.position),
			Rotation:  f.rotation,
		}, nil

	case batch.OpOCR:
		format := f.format
		if format == "" {
			format = "pdf"
		}
		return batch.OCRParams{Format: format, Language: f.language, Preprocess: f.preprocess}, nil

	case batch.OpPageNumbers:
		return batch.PageNumberParams{
			Position: batch.PageNumberPosition(f.position),
			Format:   f.numberFormat,
			FontSize: f.fontSize,
		}, nil

	case batch.OpCompress:
		return batch.CompressParams{Quality: f.quality}, nil

	case batch.OpEncrypt:
		return batch.EncryptParams{
			UserPassword:  f.userPassword,
			OwnerPassword: f.ownerPassword,
			Permissions: batch.Permissions{
				AllowPrint:    f.allowPrint,
				AllowCopy:     f.allowCopy,
				AllowModify:   f.allowModify,
				AllowAnnotate: f.allowAnnotate,
			},
		}, nil

	case batch.OpDecrypt:
		return batch.DecryptParams{Password: f.password}, nil

	default:
		return nil, fmt.Errorf("unknown operation %q", op)
	}
}

// parseRanges turns "1-3,7,9-12" into page ranges. A bare page is a
// one-page range.
func parseRanges(spec string) ([]batch.PageRange, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, nil
	}

	var ranges []batch.PageRange
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		from, to, found := strings.Cut(part, "-")
		start, err := strconv.Atoi(strings.TrimSpace(from))
		if err != nil {
			return nil, fmt.Errorf("invalid page range %q", part)
		}
		end := start
		if found {
			end, err = strconv.Atoi(strings.TrimSpace(to))
			if err != nil {
				return nil, fmt.Errorf("invalid page range %q", part)
			}
		}
		ranges = append(ranges, batch.PageRange{From: start, To: end})
	}
	return ranges, nil
}
