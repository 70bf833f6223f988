// internal/workers/search/sync-project-index/handler.go
package syncprojectindex

import (
	"context"
	"time"

	"devtogether/internal/common/camunda"
	"devtogether/internal/common/errors"
	"devtogether/internal/common/logger"
	"devtogether/internal/common/metrics"
	"devtogether/internal/search"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "sync-project-index"

// IndexSyncer is implemented by *search.Indexer.
type IndexSyncer interface {
	EnsureIndex(ctx context.Context) error
	Sync(ctx context.Context) (*search.SyncResult, error)
}

type Handler struct {
	config       *Config
	indexer      IndexSyncer
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(config *Config, indexer IndexSyncer, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		indexer:      indexer,
		logger:       l,
		errorHandler: errors.NewErrorHandler(l),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := camunda.JobContext(h.config.Timeout)
	defer cancel()

	h.logger.Info("Processing job", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	var input Input
	if err := camunda.DecodeVariables(job, h.config.Schema, &input); err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.ErrCodeInvalidInput)).Inc()
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.AsStandardError(err).Code)).Inc()
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	if err := camunda.CompleteJob(ctx, client, job, output); err != nil {
		h.logger.Error("Failed to complete job", map[string]interface{}{"jobKey": job.GetKey(), "error": err.Error()})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.EnsureIndex {
		if err := h.indexer.EnsureIndex(ctx); err != nil {
			return nil, err
		}
	}

	result, err := h.indexer.Sync(ctx)
	if err != nil {
		return nil, err
	}

	return &Output{
		Indexed:    result.Indexed,
		Removed:    result.Removed,
		Failed:     result.Failed,
		DurationMs: result.Duration.Milliseconds(),
	}, nil
}
