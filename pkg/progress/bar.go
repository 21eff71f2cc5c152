package progress

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Bar renders batch progress on stderr. It maps fractional updates onto a
// fixed-resolution bar so the terminal output stays stable regardless of
// batch size.
type Bar struct {
	bar *progressbar.ProgressBar
}

const barResolution = 1000

// NewBar creates a terminal progress bar with the given description.
func NewBar(description string) *Bar {
	bar := progressbar.NewOptions(
		barResolution,
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
	return &Bar{bar: bar}
}

// Sink returns the callback that drives the bar.
func (b *Bar) Sink() Sink {
	return func(fraction float64, status string) {
		if status != "" {
			b.bar.Describe(status)
		}
		_ = b.bar.Set(int(fraction * barResolution))
	}
}

// Finish completes the bar and moves to a fresh line.
func (b *Bar) Finish() {
	_ = b.bar.Finish()
}
