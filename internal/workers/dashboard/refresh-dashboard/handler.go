// internal/workers/dashboard/refresh-dashboard/handler.go
package refreshdashboard

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

const TaskType = "refresh-dashboard"

// Refresher builds a complete dashboard snapshot.
type Refresher interface {
	Refresh(ctx context.Context, developerID string) (*models.DashboardSnapshot, error)
}

type Handler struct {
	config       *Config
	dashboard    Refresher
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

func NewHandler(config *Config, dashboard Refresher, log logger.Logger) *Handler {
	l := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		dashboard:    dashboard,
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
		h.fail(ctx, client, job, err)
		return
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		h.fail(ctx, client, job, err)
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
	if input.DeveloperID == "" {
		return nil, errors.NewInvalidInputError("developerId is required")
	}

	snap, err := h.dashboard.Refresh(ctx, input.DeveloperID)
	if err != nil {
		return nil, err
	}

	h.logger.Info("Dashboard refreshed", map[string]interface{}{
		"developerId":     input.DeveloperID,
		"activeProjects":  len(snap.ActiveProjects),
		"recommendations": len(snap.Recommendations),
	})
	return &Output{Dashboard: snap}, nil
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.AsStandardError(err).Code)).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, err)
}
