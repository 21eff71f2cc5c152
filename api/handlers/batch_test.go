package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/pdf-toolbox/internal/batch"
	svc "github.com/feichai0017/pdf-toolbox/internal/service/batch"
	"github.com/feichai0017/pdf-toolbox/pkg/logger"
	"github.com/feichai0017/pdf-toolbox/pkg/progress"
	"github.com/feichai0017/pdf-toolbox/pkg/queue"
)

type fakeService struct {
	submitID  string
	submitErr error
	statuses  map[string]*queue.JobStatus
	cancelErr error
	cancelled []string
}

func (f *fakeService) RunSync(ctx context.Context, sub *svc.Submission, sink progress.Sink) (*batch.Summary, error) {
	return nil, fmt.Errorf("not used")
}

func (f *fakeService) Submit(ctx context.Context, sub *svc.Submission) (string, error) {
	if f.submitErr != nil {
		return "", f.submitErr
	}
	return f.submitID, nil
}

func (f *fakeService) Status(ctx context.Context, jobID string) (*queue.JobStatus, error) {
	status, ok := f.statuses[jobID]
	if !ok {
		return nil, fmt.Errorf("job %s not found", jobID)
	}
	return status, nil
}

func (f *fakeService) Cancel(ctx context.Context, jobID string) error {
	if f.cancelErr != nil {
		return f.cancelErr
	}
	f.cancelled = append(f.cancelled, jobID)
	return nil
}

func newTestRouter(f *fakeService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewBatchHandler(f, logger.NewTestLogger())

	r.POST("/api/v1/batches", h.SubmitBatch)
	r.GET("/api/v1/batches/:jobId", h.GetStatus)
	r.DELETE("/api/v1/batches/:jobId", h.CancelBatch)
	r.GET("/api/v1/health", h.Health)
	return r
}

func TestSubmitBatchAccepted(t *testing.T) {
	f := &fakeService{submitID: "job-42"}
	r := newTestRouter(f)

	body, _ := json.Marshal(svc.Submission{
		Operation: "convert",
		Inputs:    []string{"a.pdf", "b.pdf"},
		Params:    json.RawMessage(`{"format":"txt"}`),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/batches", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)

	var resp SubmitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "job-42", resp.JobID)
	assert.Equal(t, "pending", resp.State)
	assert.Equal(t, 2, resp.Inputs)
}

func TestSubmitBatchValidationError(t *testing.T) {
	f := &fakeService{submitErr: fmt.Errorf("unsupported input type \".docx\"")}
	r := newTestRouter(f)

	body, _ := json.Marshal(svc.Submission{Operation: "convert", Inputs: []string{"a.docx"}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/batches", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitBatchMalformedBody(t *testing.T) {
	r := newTestRouter(&fakeService{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/batches", bytes.NewReader([]byte("{")))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetStatus(t *testing.T) {
	f := &fakeService{statuses: map[string]*queue.JobStatus{
		"job-1": {JobID: "job-1", State: queue.StateRunning, Progress: 0.4},
	}}
	r := newTestRouter(f)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/batches/job-1", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var status queue.JobStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, queue.StateRunning, status.State)
	assert.Equal(t, 0.4, status.Progress)
}

func TestGetStatusNotFound(t *testing.T) {
	r := newTestRouter(&fakeService{statuses: map[string]*queue.JobStatus{}})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/batches/ghost", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCancelBatch(t *testing.T) {
	f := &fakeService{}
	r := newTestRouter(f)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/batches/job-9", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"job-9"}, f.cancelled)
}

func TestHealth(t *testing.T) {
	r := newTestRouter(&fakeService{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}
