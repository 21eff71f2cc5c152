package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/feichai0017/pdf-toolbox/internal/ocr"
	"github.com/feichai0017/pdf-toolbox/internal/pdfops"
	"github.com/feichai0017/pdf-toolbox/pkg/logger"
)

var (
	pagesSpec  string
	pagesAngle int
	pagesOut   string
	pagesOrder string
)

var pagesCmd = &cobra.Command{
	Use:   "pages",
	Short: "Single-file page surgery: extract, delete, rotate, reorder",
}

var pagesExtractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract the selected pages into a new PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDocument(args[0], "_extracted", func(tk *pdfops.Toolkit, doc *pdfops.Document, out string) error {
			pages, err := expandRanges(pagesSpec)
			if err != nil {
				return err
			}
			return tk.ExtractPages(doc, pages, out)
		})
	},
}

var pagesDeleteCmd = &cobra.Command{
	Use:   "delete <file>",
	Short: "Remove the selected pages",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDocument(args[0], "_trimmed", func(tk *pdfops.Toolkit, doc *pdfops.Document, out string) error {
			pages, err := expandRanges(pagesSpec)
			if err != nil {
				return err
			}
			return tk.DeletePages(doc, pages, out)
		})
	},
}

var pagesRotateCmd = &cobra.Command{
	Use:   "rotate <file>",
	Short: "Rotate the selected pages (all pages when none given)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDocument(args[0], "_rotated", func(tk *pdfops.Toolkit, doc *pdfops.Document, out string) error {
			pages, err := expandRanges(pagesSpec)
			if err != nil {
				return err
			}
			return tk.RotatePages(doc, pages, pagesAngle, out)
		})
	},
}

var pagesReorderCmd = &cobra.Command{
	Use:   "reorder <file>",
	Short: "Rewrite the document with pages in the given order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDocument(args[0], "_reordered", func(tk *pdfops.Toolkit, doc *pdfops.Document, out string) error {
			order, err := expandRanges(pagesOrder)
			if err != nil {
				return err
			}
			return tk.ReorderPages(doc, order, out)
		})
	},
}

func init() {
	for _, cmd := range []*cobra.Command{pagesExtractCmd, pagesDeleteCmd, pagesRotateCmd} {
		cmd.Flags().StringVar(&pagesSpec, "pages", "", "Page selection, e.g. 1-3,7")
	}
	pagesRotateCmd.Flags().IntVar(&pagesAngle, "angle", 90, "Rotation angle, multiple of 90")
	pagesReorderCmd.Flags().StringVar(&pagesOrder, "order", "", "Explicit page order, e.g. 3,1,2")
	pagesCmd.PersistentFlags().StringVar(&pagesOut, "out", "", "Output file (default next to the input)")

	pagesCmd.AddCommand(pagesExtractCmd, pagesDeleteCmd, pagesRotateCmd, pagesReorderCmd)
	rootCmd.AddCommand(pagesCmd)
}

// withDocument opens the input, derives the output path and runs op.
func withDocument(path, suffix string, op func(*pdfops.Toolkit, *pdfops.Document, string) error) error {
	log, err := logger.NewLogger(
		logger.WithLevel("warn"),
		logger.WithEncoding("console"),
		logger.WithOutputPaths([]string{"stderr"}),
	)
	if err != nil {
		return err
	}
	tk := pdfops.NewToolkit(ocr.NewTesseractEngine(log), log)

	doc, err := pdfops.Open(path)
	if err != nil {
		return err
	}
	defer doc.Close()

	out := pagesOut
	if out == "" {
		ext := filepath.Ext(path)
		out = path[:len(path)-len(ext)] + suffix + ext
	}

	if err := op(tk, doc, out); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", out)
	return nil
}

// expandRanges flattens a range spec into an explicit page list,
// preserving the order in which pages are named.
func expandRanges(spec string) ([]int, error) {
	ranges, err := parseRanges(spec)
	if err != nil {
		return nil, err
	}
	var pages []int
	for _, r := range ranges {
		for p := r.From; p <= r.To; p++ {
			pages = append(pages, p)
		}
	}
	return pages, nil
}
