// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	apperrors "devtogether/internal/common/errors"
	"devtogether/internal/common/config"
	"devtogether/internal/common/logger"
	"devtogether/internal/common/observability"
	"devtogether/internal/common/validation"
	"devtogether/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// JobHandler is implemented by every worker package.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

// Pool opens job workers and closes them together on shutdown. Every job runs inside
// a span and is counted by task type.
type Pool struct {
	client zbc.Client
	obs    *observability.Observability
	logger logger.Logger

	mu      sync.Mutex
	workers map[string]worker.JobWorker
}

func NewPool(client zbc.Client, obs *observability.Observability, log logger.Logger) *Pool {
	if obs == nil {
		obs = observability.NewNoop()
	}
	return &Pool{
		client:  client,
		obs:     obs,
		logger:  log.WithFields(map[string]interface{}{"component": "worker-pool"}),
		workers: make(map[string]worker.JobWorker),
	}
}

// Start opens a worker for taskType unless it is disabled. Starting the same task type
// twice is a no-op.
func (p *Pool) Start(taskType string, wcfg config.WorkerConfig, handler JobHandler) {
	if !wcfg.Enabled {
		p.logger.Info("Worker disabled", map[string]interface{}{"taskType": taskType})
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.workers[taskType]; exists {
		return
	}

	p.workers[taskType] = p.client.NewJobWorker().
		JobType(taskType).
		Handler(p.instrument(taskType, handler)).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Name(fmt.Sprintf("%s-worker", taskType)).
		Open()

	p.logger.Info("Worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeoutMs":     wcfg.Timeout,
	})
}

func (p *Pool) instrument(taskType string, handler JobHandler) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		start := time.Now()
		ctx, span := p.obs.StartSpan(context.Background(), "job "+taskType, map[string]string{
			"taskType": taskType,
			"jobKey":   strconv.FormatInt(job.GetKey(), 10),
		})
		defer span.End()

		handler.Handle(client, job)

		p.obs.RecordJobProcessed(ctx, taskType, "handled")
		p.obs.RecordJobDuration(ctx, taskType, time.Since(start), "handled")
	}
}

// Running lists the task types with an open worker.
func (p *Pool) Running() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.workers))
	for taskType := range p.workers {
		out = append(out, taskType)
	}
	return out
}

// Close stops every worker, waiting for in-flight jobs or ctx, whichever comes first.
func (p *Pool) Close(ctx context.Context) {
	p.mu.Lock()
	workers := p.workers
	p.workers = make(map[string]worker.JobWorker)
	p.mu.Unlock()

	var wg sync.WaitGroup
	for taskType, w := range workers {
		wg.Add(1)
		go func(taskType string, w worker.JobWorker) {
			defer wg.Done()
			w.Close()
			w.AwaitClose()
			p.logger.Info("Worker stopped", map[string]interface{}{"taskType": taskType})
		}(taskType, w)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		p.logger.Warn("Timed out waiting for workers to stop", nil)
	}
}

// DecodeVariables validates the job variables against schema and decodes them into out.
func DecodeVariables(job entities.Job, schema *validation.SchemaValidator, out interface{}) error {
	raw := job.GetVariables()
	if raw == "" {
		raw = "{}"
	}
	if err := schema.Check(raw); err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return apperrors.NewInvalidInputError(fmt.Sprintf("parse job variables: %v", err))
	}
	return nil
}

// CompleteJob completes job with output as its variables.
func CompleteJob(ctx context.Context, client worker.JobClient, job entities.Job, output interface{}) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.GetKey()).
		VariablesFromObject(output)
	if err != nil {
		return fmt.Errorf("create complete job command: %w", err)
	}
	if _, err := cmd.Send(ctx); err != nil {
		return fmt.Errorf("send complete job command: %w", err)
	}
	return nil
}

// JobContext derives the per-job context. A zero timeout falls back to 30s.
func JobContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(context.Background(), timeout)
}

// InputValidator compiles the registry input schema for taskType.
func InputValidator(reg *registry.ActivityRegistry, taskType string) (*validation.SchemaValidator, error) {
	activity, ok := reg.ByTaskType(taskType)
	if !ok {
		return nil, fmt.Errorf("task type %s is not in the activity registry", taskType)
	}
	v, err := validation.NewSchemaValidator(activity.InputSchema)
	if err != nil {
		return nil, fmt.Errorf("task type %s: %w", taskType, err)
	}
	return v, nil
}
