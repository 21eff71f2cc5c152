package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/pdf-toolbox/internal/batch"
	"github.com/feichai0017/pdf-toolbox/pkg/logger"
	"github.com/feichai0017/pdf-toolbox/pkg/progress"
	"github.com/feichai0017/pdf-toolbox/pkg/queue"
)

type nopDocument struct{ path string }

func (d *nopDocument) Path() string   { return d.path }
func (d *nopDocument) PageCount() int { return 1 }
func (d *nopDocument) Close() error   { return nil }

// nopToolkit writes an empty artifact for every operation.
type nopToolkit struct{}

func (nopToolkit) Open(path string) (batch.Document, error) {
	return &nopDocument{path: path}, nil
}

func (nopToolkit) Merge(inputs []string, outFile string) error {
	return os.WriteFile(outFile, nil, 0644)
}

func (nopToolkit) Convert(doc batch.Document, outPath string, p batch.ConvertParams) ([]string, error) {
	if err := os.WriteFile(outPath, nil, 0644); err != nil {
		return nil, err
	}
	return []string{outPath}, nil
}

func (nopToolkit) ExtractPages(doc batch.Document, pages []int, outFile string) error {
	return os.WriteFile(outFile, nil, 0644)
}

func (nopToolkit) AddWatermark(doc batch.Document, outFile string, p batch.WatermarkParams) error {
	return os.WriteFile(outFile, nil, 0644)
}

func (nopToolkit) AddPageNumbers(doc batch.Document, outFile string, p batch.PageNumberParams) error {
	return os.WriteFile(outFile, nil, 0644)
}

func (nopToolkit) OCR(doc batch.Document, outFile string, p batch.OCRParams) error {
	return os.WriteFile(outFile, nil, 0644)
}

func (nopToolkit) Optimize(doc batch.Document, outFile string, quality int) error {
	return os.WriteFile(outFile, nil, 0644)
}

func (nopToolkit) Encrypt(doc batch.Document, outFile string, p batch.EncryptParams) error {
	return os.WriteFile(outFile, nil, 0644)
}

func (nopToolkit) Decrypt(doc batch.Document, outFile string, password string) error {
	return os.WriteFile(outFile, nil, 0644)
}

type fakeQueue struct {
	jobs       []*queue.BatchJob
	statuses   map[string]*queue.JobStatus
	enqueueErr error
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{statuses: make(map[string]*queue.JobStatus)}
}

func (q *fakeQueue) Enqueue(ctx context.Context, job *queue.BatchJob) error {
	if q.enqueueErr != nil {
		return q.enqueueErr
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *fakeQueue) GetJobStatus(ctx context.Context, jobID string) (*queue.JobStatus, error) {
	status, ok := q.statuses[jobID]
	if !ok {
		return nil, fmt.Errorf("job %s not found", jobID)
	}
	return status, nil
}

func (q *fakeQueue) CancelJob(ctx context.Context, jobID string) error {
	q.statuses[jobID] = &queue.JobStatus{JobID: jobID, State: queue.StateCancelled}
	return nil
}

func (q *fakeQueue) SaveStatus(ctx context.Context, status *queue.JobStatus) error {
	q.statuses[status.JobID] = status
	return nil
}

func newTestService(t *testing.T, q queue.Queue) *BatchService {
	t.Helper()
	log := logger.NewTestLogger()
	coordinator := batch.New(nopToolkit{}, log, batch.WithWorkers(2))
	return NewService(coordinator, q, nil, log, nil)
}

func inputFiles(t *testing.T, names ...string) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, 0, len(names))
	for _, name := range names {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte("%PDF-1.4"), 0644))
		paths = append(paths, p)
	}
	return paths
}

func TestRunSyncProducesSummary(t *testing.T) {
	svc := newTestService(t, nil)
	inputs := inputFiles(t, "a.pdf", "b.pdf")

	sub := &Submission{
		Operation: "convert",
		Inputs:    inputs,
		OutputDir: t.TempDir(),
		Params:    json.RawMessage(`{"format":"txt"}`),
	}

	summary, err := svc.RunSync(context.Background(), sub, progress.Discard)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 2, summary.SuccessCount)
}

func TestRunSyncRejectsNonPDFInput(t *testing.T) {
	svc := newTestService(t, nil)

	sub := &Submission{
		Operation: "convert",
		Inputs:    []string{"report.docx"},
		OutputDir: t.TempDir(),
		Params:    json.RawMessage(`{"format":"txt"}`),
	}

	_, err := svc.RunSync(context.Background(), sub, progress.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".docx")
}

func TestRunSyncRejectsBadParams(t *testing.T) {
	svc := newTestService(t, nil)
	inputs := inputFiles(t, "a.pdf")

	sub := &Submission{
		Operation: "split",
		Inputs:    inputs,
		OutputDir: t.TempDir(),
		Params:    json.RawMessage(`{"mode":"size"}`),
	}

	_, err := svc.RunSync(context.Background(), sub, progress.Discard)
	assert.Error(t, err)
}

func TestSubmitEnqueuesValidatedJob(t *testing.T) {
	q := newFakeQueue()
	svc := newTestService(t, q)
	inputs := inputFiles(t, "a.pdf", "b.pdf")

	sub := &Submission{
		Operation: "watermark",
		Inputs:    inputs,
		Params:    json.RawMessage(`{"text":"CONFIDENTIAL"}`),
		Priority:  1,
	}

	jobID, err := svc.Submit(context.Background(), sub)
	require.NoError(t, err)
	assert.NotEmpty(t, jobID)

	require.Len(t, q.jobs, 1)
	job := q.jobs[0]
	assert.Equal(t, jobID, job.ID)
	assert.Equal(t, "watermark", job.Operation)
	assert.Equal(t, inputs, job.Inputs)
	// empty output dir falls back to the service default
	assert.Equal(t, "output", job.OutputDir)
}

func TestSubmitRejectsInvalidSubmission(t *testing.T) {
	q := newFakeQueue()
	svc := newTestService(t, q)

	_, err := svc.Submit(context.Background(), &Submission{
		Operation: "watermark",
		Inputs:    nil,
		Params:    json.RawMessage(`{"text":"X"}`),
	})
	require.Error(t, err)
	assert.Empty(t, q.jobs)
}

func TestSubmitWithoutQueue(t *testing.T) {
	svc := newTestService(t, nil)
	_, err := svc.Submit(context.Background(), &Submission{
		Operation: "convert",
		Inputs:    inputFiles(t, "a.pdf"),
		Params:    json.RawMessage(`{"format":"txt"}`),
	})
	assert.Error(t, err)
}

func TestStatusAndCancelDelegateToQueue(t *testing.T) {
	q := newFakeQueue()
	svc := newTestService(t, q)

	q.statuses["job-1"] = &queue.JobStatus{JobID: "job-1", State: queue.StateRunning, Progress: 0.5}

	status, err := svc.Status(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, queue.StateRunning, status.State)

	require.NoError(t, svc.Cancel(context.Background(), "job-1"))
	assert.Equal(t, queue.StateCancelled, q.statuses["job-1"].State)
}
