package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	svc "github.com/feichai0017/pdf-toolbox/internal/service/batch"
)

var submitFlags opFlags
var submitPriority int

var submitCmd = &cobra.Command{
	Use:   "submit <operation> <file>...",
	Short: "Queue a batch for background processing",
	Long: `Submit validates the batch and hands it to the Redis-backed queue
instead of running it in-process. Use "pdfbatch status <job-id>" to
follow it. A running worker (pdf-toolbox-worker) is required.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runSubmit,
}

var statusCmd = &cobra.Command{
	Use:   "status <job-id>",
	Short: "Show the status of a queued batch",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

var cancelCmd = &cobra.Command{
	Use:   "cancel <job-id>",
	Short: "Cancel a queued batch",
	Args:  cobra.ExactArgs(1),
	RunE:  runCancel,
}

func init() {
	f := submitCmd.Flags()
	f.StringVar(&submitFlags.format, "format", "", "Target format")
	f.IntVar(&submitFlags.dpi, "dpi", 0, "Render resolution for image output")
	f.IntVar(&submitFlags.quality, "quality", 0, "Image quality 1-100")
	f.StringVar(&submitFlags.outputFile, "output-file", "merged.pdf", "Merged output file name")
	f.StringVar(&submitFlags.splitMode, "mode", "", "Split mode: single|range")
	f.StringVar(&submitFlags.ranges, "pages", "", "Page ranges for range split")
	f.StringVar(&submitFlags.text, "text", "", "Watermark text")
	f.StringVar(&submitFlags.image, "image", "", "Watermark image path")
	f.Float64Var(&submitFlags.opacity, "opacity", 0, "Watermark opacity 0-1")
	f.StringVar(&submitFlags.position, "position", "", "Stamp position")
	f.Float64Var(&submitFlags.rotation, "rotation", 0, "Watermark rotation in degrees")
	f.StringVar(&submitFlags.language, "language", "", "OCR language spec")
	f.BoolVar(&submitFlags.preprocess, "preprocess", false, "Clean up scans before OCR")
	f.StringVar(&submitFlags.numberFormat, "number-format", "", "Page number format")
	f.IntVar(&submitFlags.fontSize, "font-size", 0, "Page number font size")
	f.StringVar(&submitFlags.userPassword, "user-password", "", "Encrypt: user password")
	f.StringVar(&submitFlags.ownerPassword, "owner-password", "", "Encrypt: owner password")
	f.StringVar(&submitFlags.password, "password", "", "Decrypt: password")
	f.BoolVar(&submitFlags.allowPrint, "allow-print", false, "Encrypt: allow printing")
	f.BoolVar(&submitFlags.allowCopy, "allow-copy", false, "Encrypt: allow copying")
	f.BoolVar(&submitFlags.allowModify, "allow-modify", false, "Encrypt: allow modification")
	f.BoolVar(&submitFlags.allowAnnotate, "allow-annotate", false, "Encrypt: allow annotation")
	f.IntVar(&submitPriority, "priority", 2, "Queue priority: 1 critical, 2 default, 3 low")

	rootCmd.AddCommand(submitCmd, statusCmd, cancelCmd)
}

func runSubmit(cmd *cobra.Command, args []string) error {
	op, files := args[0], args[1:]
	ctx := context.Background()

	environment, err := newEnv(ctx, true)
	if err != nil {
		return err
	}
	defer environment.log.Sync()

	params, err := buildParams(op, &submitFlags)
	if err != nil {
		return err
	}
	rawParams, err := json.Marshal(params)
	if err != nil {
		return err
	}

	jobID, err := environment.service.Submit(ctx, &svc.Submission{
		Operation: op,
		Inputs:    files,
		OutputDir: outputDir,
		Params:    rawParams,
		Priority:  submitPriority,
	})
	if err != nil {
		return err
	}

	fmt.Printf("queued %s batch of %d files\njob id: %s\n", op, len(files), jobID)
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	environment, err := newEnv(ctx, true)
	if err != nil {
		return err
	}
	defer environment.log.Sync()

	status, err := environment.service.Status(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("job:      %s\n", status.JobID)
	fmt.Printf("state:    %s\n", status.State)
	fmt.Printf("progress: %.0f%%\n", status.Progress*100)
	if status.StatusLine != "" {
		fmt.Printf("last:     %s\n", status.StatusLine)
	}
	if status.Error != "" {
		fmt.Printf("error:    %s\n", status.Error)
	}
	if len(status.Summary) > 0 {
		fmt.Printf("summary:  %s\n", string(status.Summary))
	}
	return nil
}

func runCancel(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	environment, err := newEnv(ctx, true)
	if err != nil {
		return err
	}
	defer environment.log.Sync()

	if err := environment.service.Cancel(ctx, args[0]); err != nil {
		return err
	}
	fmt.Printf("cancelled job %s\n", args[0])
	return nil
}
