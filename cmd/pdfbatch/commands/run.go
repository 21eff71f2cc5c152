package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/feichai0017/pdf-toolbox/internal/batch"
	svc "github.com/feichai0017/pdf-toolbox/internal/service/batch"
	"github.com/feichai0017/pdf-toolbox/pkg/progress"
)

var runFlags opFlags

var runCmd = &cobra.Command{
	Use:   "run <operation> <file>...",
	Short: "Run a batch operation on the given PDF files",
	Long: `Run applies one operation to every listed file and waits for the
batch to finish, showing a progress bar. Each file succeeds or fails
on its own; the exit status is non-zero if any file failed.

Operations: convert, merge, split, watermark, ocr, page-numbers,
compress, encrypt, decrypt.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runBatch,
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runFlags.format, "format", "", "Target format (convert: txt|html|png|jpeg|tiff, ocr: pdf|txt)")
	f.IntVar(&runFlags.dpi, "dpi", 0, "Render resolution for image output")
	f.IntVar(&runFlags.quality, "quality", 0, "Image quality 1-100")
	f.StringVar(&runFlags.outputFile, "output-file", "merged.pdf", "Merged output file name")
	f.StringVar(&runFlags.splitMode, "mode", "", "Split mode: single|range")
	f.StringVar(&runFlags.ranges, "pages", "", "Page ranges for range split, e.g. 1-3,7,9-12")
	f.StringVar(&runFlags.text, "text", "", "Watermark text")
	f.StringVar(&runFlags.image, "image", "", "Watermark image path")
	f.Float64Var(&runFlags.opacity, "opacity", 0, "Watermark opacity 0-1")
	f.StringVar(&runFlags.position, "position", "", "Stamp position, e.g. center or bottom-center")
	f.Float64Var(&runFlags.rotation, "rotation", 0, "Watermark rotation in degrees")
	f.StringVar(&runFlags.language, "language", "", "OCR language spec, e.g. eng or eng+deu")
	f.BoolVar(&runFlags.preprocess, "preprocess", false, "Clean up scans before OCR")
	f.StringVar(&runFlags.numberFormat, "number-format", "", "Page number format, %p page and %P total")
	f.IntVar(&runFlags.fontSize, "font-size", 0, "Page number font size")
	f.StringVar(&runFlags.userPassword, "user-password", "", "Encrypt: user password")
	f.StringVar(&runFlags.ownerPassword, "owner-password", "", "Encrypt: owner password")
	f.StringVar(&runFlags.password, "password", "", "Decrypt: password")
	f.BoolVar(&runFlags.allowPrint, "allow-print", false, "Encrypt: allow printing")
	f.BoolVar(&runFlags.allowCopy, "allow-copy", false, "Encrypt: allow copying")
	f.BoolVar(&runFlags.allowModify, "allow-modify", false, "Encrypt: allow modification")
	f.BoolVar(&runFlags.allowAnnotate, "allow-annotate", false, "Encrypt: allow annotation")

	rootCmd.AddCommand(runCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	op, files := args[0], args[1:]

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	environment, err := newEnv(ctx, false)
	if err != nil {
		return err
	}
	defer environment.log.Sync()

	params, err := buildParams(op, &runFlags)
	if err != nil {
		return err
	}
	rawParams, err := json.Marshal(params)
	if err != nil {
		return err
	}

	bar := progress.NewBar(fmt.Sprintf("%s (%d files)", op, len(files)))
	summary, err := environment.service.RunSync(ctx, &svc.Submission{
		Operation: op,
		Inputs:    files,
		OutputDir: outputDir,
		Params:    rawParams,
	}, bar.Sink())
	bar.Finish()
	if err != nil {
		return err
	}

	printSummary(summary)
	if summary.Failed() {
		return fmt.Errorf("%d of %d files failed", summary.FailedCount, summary.Total)
	}
	return nil
}

func printSummary(s *batch.Summary) {
	results := append([]batch.FileResult(nil), s.Results...)
	sort.Slice(results, func(i, j int) bool { return results[i].Input < results[j].Input })

	for _, r := range results {
		mark := "ok"
		if !r.Success {
			mark = "FAILED: " + r.Message
		}
		name := r.Input
		if name == "" {
			name = strings.Join(r.Outputs, ", ")
		}
		fmt.Printf("  %-50s %s\n", name, mark)
	}

	fmt.Printf("\n%s: %d succeeded, %d failed of %d files in %s\n",
		s.Operation, s.SuccessCount, s.FailedCount, s.Total, s.Duration.Round(time.Millisecond))
}
