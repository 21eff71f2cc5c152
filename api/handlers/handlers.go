package handlers

import (
	svc "github.com/feichai0017/pdf-toolbox/internal/service/batch"
	"github.com/feichai0017/pdf-toolbox/pkg/logger"
)

type Handlers struct {
	Batch *BatchHandler
}

func NewHandlers(batchService svc.BatchProcessor, log logger.Logger) *Handlers {
	return &Handlers{
		Batch: NewBatchHandler(batchService, log),
	}
}
