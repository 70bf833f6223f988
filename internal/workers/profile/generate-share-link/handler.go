// internal/workers/profile/generate-share-link/handler.go
package generatesharelink

import (
	"context"
	"time"

	"devtogether/internal/common/camunda"
	"devtogether/internal/common/errors"
	"devtogether/internal/common/logger"
	"devtogether/internal/common/metrics"
	"devtogether/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "generate-share-link"

type Sharer interface {
	GenerateShareableProfile(ctx context.Context, userID string) models.ShareableProfile
}

type Handler struct {
	config       *Config
	sharer       Sharer
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(config *Config, sharer Sharer, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		sharer:       sharer,
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

// Execute issues the link. Storage failures do not fail the job; they surface as
// Fallback in the output.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.UserID == "" {
		return nil, errors.NewInvalidInputError("userId is required")
	}

	share := h.sharer.GenerateShareableProfile(ctx, input.UserID)
	if share.IsFallback() {
		h.logger.Warn("Issued fallback share link", map[string]interface{}{"userId": input.UserID})
	}

	return &Output{
		ShareURL:   share.ShareURL,
		ShareToken: share.ShareToken,
		QRCodeURL:  share.QRCodeURL,
		IsPublic:   share.IsPublic,
		Fallback:   share.IsFallback(),
	}, nil
}
