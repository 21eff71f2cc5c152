package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/feichai0017/pdf-toolbox/internal/pdfops"
)

var infoCmd = &cobra.Command{
	Use:   "info <file>...",
	Short: "Show page count and metadata for PDF files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	var failed int
	for _, path := range args {
		doc, err := pdfops.Open(path)
		if err != nil {
			fmt.Printf("%s: %v\n", path, err)
			failed++
			continue
		}

		fmt.Printf("%s\n", path)
		fmt.Printf("  pages: %d\n", doc.PageCount())
		if doc.HasTextLayer() {
			fmt.Printf("  text layer: yes\n")
		} else {
			fmt.Printf("  text layer: no (scanned or image-only)\n")
		}

		meta := doc.Metadata()
		keys := make([]string, 0, len(meta))
		for k := range meta {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if meta[k] != "" {
				fmt.Printf("  %s: %s\n", k, meta[k])
			}
		}

		doc.Close()
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files could not be read", failed, len(args))
	}
	return nil
}
