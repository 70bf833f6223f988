// internal/workers/profile/track-profile-view/handler.go
package trackprofileview

import (
	"context"

	"devtogether/internal/common/camunda"
	"devtogether/internal/common/errors"
	"devtogether/internal/common/logger"
	"devtogether/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "track-profile-view"

type ViewTracker interface {
	TrackProfileView(ctx context.Context, profileID, viewerID string)
}

type Handler struct {
	config       *Config
	tracker      ViewTracker
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(config *Config, tracker ViewTracker, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		tracker:      tracker,
		logger:       l,
		errorHandler: errors.NewErrorHandler(l),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
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
}

// Execute records the view. Tracking is best effort, so the job completes even when
// the view was a duplicate or could not be stored.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input.ProfileID == "" {
		return nil, errors.NewInvalidInputError("profileId is required")
	}
	h.tracker.TrackProfileView(ctx, input.ProfileID, input.ViewerID)
	return &Output{ViewTracked: true}, nil
}
