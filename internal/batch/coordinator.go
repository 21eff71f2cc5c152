// Package batch runs one PDF operation across many input files with a
// bounded worker pool, per-file failure isolation and incremental
// progress reporting.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/feichai0017/pdf-toolbox/pkg/logger"
	"github.com/feichai0017/pdf-toolbox/pkg/progress"
)

// DefaultWorkers bounds batch parallelism unless overridden.
const DefaultWorkers = 4

// Coordinator executes batch requests. It owns no document state; every
// worker task opens and closes its own handle through the toolkit.
type Coordinator struct {
	toolkit Toolkit
	log     logger.Logger
	workers int
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithWorkers sets the worker pool size.
func WithWorkers(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.workers = n
		}
	}
}

// New creates a Coordinator around the given toolkit.
func New(toolkit Toolkit, log logger.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{
		toolkit: toolkit,
		log:     log.Named("batch"),
		workers: DefaultWorkers,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run executes req and returns the finalized summary.
//
// Batch-fatal conditions (empty input list, output directory not
// creatable) are returned as errors before any task is dispatched. Every
// other failure is converted to data: a failed FileResult in the summary.
// The sink, if non-nil, is invoked after each completion with
// completed/total; sink panics are logged and swallowed.
//
// ctx is checked between tasks only. A task already handed to a worker
// runs to completion; inputs not yet started when ctx is cancelled are
// recorded as failed.
func (c *Coordinator) Run(ctx context.Context, req *Request, sink progress.Sink) (*Summary, error) {
	if req == nil {
		return nil, fmt.Errorf("batch: nil request")
	}
	inputs := req.Inputs()
	if len(inputs) == 0 {
		return nil, ErrNoInputs
	}
	if err := os.MkdirAll(req.OutputDir(), 0755); err != nil {
		return nil, fmt.Errorf("batch: cannot create output directory %s: %w", req.OutputDir(), err)
	}

	start := time.Now()
	summary := &Summary{
		Operation: req.Operation(),
		Total:     len(inputs),
	}

	c.log.Info("batch started",
		logger.String("operation", string(req.Operation())),
		logger.Int("files", len(inputs)),
		logger.String("outputDir", req.OutputDir()),
		logger.Int("workers", c.workers),
	)

	if req.Operation() == OpMerge {
		c.runMerge(req, summary, sink)
		summary.Duration = time.Since(start)
		c.logFinished(summary)
		return summary, nil
	}

	tasks := make(chan string)
	results := make(chan FileResult)

	var wg sync.WaitGroup
	workers := c.workers
	if workers > len(inputs) {
		workers = len(inputs)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for input := range tasks {
				// Cooperative cancellation: checked between tasks, never
				// during one.
				if ctx.Err() != nil {
					results <- FileResult{
						Input:     input,
						Success:   false,
						Message:   "batch cancelled before this file was processed",
						StartedAt: time.Now(),
						EndedAt:   time.Now(),
					}
					continue
				}
				results <- c.runFileTask(req, input)
			}
		}()
	}

	go func() {
		for _, input := range inputs {
			tasks <- input
		}
		close(tasks)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	// Single aggregating owner of the summary: results arrive in
	// completion order over the channel, no shared mutation.
	completed := 0
	for res := range results {
		summary.add(res)
		completed++
		c.notify(sink, float64(completed)/float64(len(inputs)), statusLine(req.Operation(), res))
	}

	summary.Duration = time.Since(start)
	c.logFinished(summary)
	return summary, nil
}

// runMerge executes the one aggregate operation: all inputs combine into
// a single output. The summary keeps Total = number of inputs but holds
// exactly one result; its Input field is empty because no single input
// identifies the outcome.
func (c *Coordinator) runMerge(req *Request, summary *Summary, sink progress.Sink) {
	params := req.Params().(MergeParams)
	outFile := filepath.Join(req.OutputDir(), params.OutputFile)

	res := FileResult{StartedAt: time.Now()}
	if err := c.invoke(func() error {
		return c.toolkit.Merge(req.Inputs(), outFile)
	}); err != nil {
		res.Message = err.Error()
	} else {
		res.Success = true
		res.Message = fmt.Sprintf("merged %d files", summary.Total)
		res.Outputs = []string{outFile}
	}
	res.EndedAt = time.Now()
	res.Duration = res.EndedAt.Sub(res.StartedAt)

	summary.add(res)
	c.notify(sink, 1.0, statusLine(OpMerge, res))
}

// runFileTask processes one input end to end: open, operate, close. All
// failures, including panics out of the toolkit, are converted to a
// failed result here and never cross the task boundary.
func (c *Coordinator) runFileTask(req *Request, input string) FileResult {
	res := FileResult{
		Input:     input,
		StartedAt: time.Now(),
	}

	err := c.invoke(func() error {
		doc, err := c.toolkit.Open(input)
		if err != nil {
			return fmt.Errorf("cannot open file: %w", err)
		}
		defer doc.Close()

		outputs, err := c.operate(req, doc)
		if err != nil {
			return err
		}
		res.Outputs = outputs
		return nil
	})

	if err != nil {
		res.Message = err.Error()
		c.log.Warn("file task failed",
			logger.String("input", input),
			logger.String("operation", string(req.Operation())),
			logger.Error(err),
		)
	} else {
		res.Success = true
		res.Message = "ok"
	}

	res.EndedAt = time.Now()
	res.Duration = res.EndedAt.Sub(res.StartedAt)
	return res
}

// operate dispatches on the request's operation kind. Output naming
// follows the toolbox conventions: derived from the input base name,
// suffixed per operation.
func (c *Coordinator) operate(req *Request, doc Document) ([]string, error) {
	base := baseName(doc.Path())
	dir := req.OutputDir()

	switch p := req.Params().(type) {
	case ConvertParams:
		out := filepath.Join(dir, base+"."+p.Format)
		return c.toolkit.Convert(doc, out, p)

	case SplitParams:
		return c.split(doc, dir, base, p)

	case WatermarkParams:
		out := filepath.Join(dir, base+"_watermarked.pdf")
		return single(out, c.toolkit.AddWatermark(doc, out, p))

	case OCRParams:
		var out string
		if p.Format == "pdf" {
			out = filepath.Join(dir, base+"_searchable.pdf")
		} else {
			out = filepath.Join(dir, base+"_ocr."+p.Format)
		}
		return single(out, c.toolkit.OCR(doc, out, p))

	case PageNumberParams:
		out := filepath.Join(dir, base+"_paged.pdf")
		return single(out, c.toolkit.AddPageNumbers(doc, out, p))

	case CompressParams:
		out := filepath.Join(dir, base+"_compressed.pdf")
		quality := p.Quality
		if quality == 0 {
			quality = 85
		}
		return single(out, c.toolkit.Optimize(doc, out, quality))

	case EncryptParams:
		out := filepath.Join(dir, base+"_encrypted.pdf")
		return single(out, c.toolkit.Encrypt(doc, out, p))

	case DecryptParams:
		out := filepath.Join(dir, base+"_decrypted.pdf")
		return single(out, c.toolkit.Decrypt(doc, out, p.Password))

	default:
		return nil, fmt.Errorf("unsupported operation %q", req.Operation())
	}
}

// split writes one output per page (single mode) or per range (range
// mode) into a per-input subdirectory.
func (c *Coordinator) split(doc Document, dir, base string, p SplitParams) ([]string, error) {
	fileDir := filepath.Join(dir, base)
	if err := os.MkdirAll(fileDir, 0755); err != nil {
		return nil, fmt.Errorf("cannot create split directory: %w", err)
	}

	var outputs []string
	switch p.Mode {
	case SplitSingle:
		total := doc.PageCount()
		if total <= 0 {
			return nil, fmt.Errorf("document has no pages")
		}
		for page := 1; page <= total; page++ {
			out := filepath.Join(fileDir, fmt.Sprintf("%s_page_%d.pdf", base, page))
			if err := c.toolkit.ExtractPages(doc, []int{page}, out); err != nil {
				return nil, fmt.Errorf("extract page %d: %w", page, err)
			}
			outputs = append(outputs, out)
		}
	case SplitRange:
		for _, r := range p.Ranges {
			pages := make([]int, 0, r.To-r.From+1)
			for page := r.From; page <= r.To; page++ {
				pages = append(pages, page)
			}
			out := filepath.Join(fileDir, fmt.Sprintf("%s_pages_%d-%d.pdf", base, r.From, r.To))
			if err := c.toolkit.ExtractPages(doc, pages, out); err != nil {
				return nil, fmt.Errorf("extract pages %d-%d: %w", r.From, r.To, err)
			}
			outputs = append(outputs, out)
		}
	default:
		// SplitSize is rejected at request construction; this covers a
		// hand-built request.
		return nil, fmt.Errorf("split mode %q is not supported", p.Mode)
	}
	return outputs, nil
}

// invoke runs fn, converting a panic into an error so a misbehaving
// toolkit cannot take down sibling tasks.
func (c *Coordinator) invoke(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("operation panicked: %v", r)
		}
	}()
	return fn()
}

// notify delivers a progress update. A panicking sink is logged and
// otherwise ignored; it never fails the batch.
func (c *Coordinator) notify(sink progress.Sink, fraction float64, status string) {
	if sink == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			c.log.Warn("progress sink panicked", logger.Any("panic", r))
		}
	}()
	sink(fraction, status)
}

func (c *Coordinator) logFinished(s *Summary) {
	c.log.Info("batch finished",
		logger.String("operation", string(s.Operation)),
		logger.Int("total", s.Total),
		logger.Int("succeeded", s.SuccessCount),
		logger.Int("failed", s.FailedCount),
		logger.Duration("duration", s.Duration),
	)
}

func statusLine(op OperationKind, res FileResult) string {
	name := filepath.Base(res.Input)
	if res.Input == "" && len(res.Outputs) > 0 {
		name = filepath.Base(res.Outputs[0])
	}
	if res.Success {
		return fmt.Sprintf("%s done: %s", op, name)
	}
	return fmt.Sprintf("%s failed: %s", op, name)
}

func baseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func single(out string, err error) ([]string, error) {
	if err != nil {
		return nil, err
	}
	return []string{out}, nil
}
