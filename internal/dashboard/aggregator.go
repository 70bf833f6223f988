// Package dashboard computes the developer dashboard: statistics, active projects,
// achievements, the recent-activity feed and project recommendations.
//
// Every call re-reads the store. Nothing is cached between calls and no read is retried.
package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"devtogether/internal/common/config"
	"devtogether/internal/common/logger"
	"devtogether/internal/common/metrics"
	"devtogether/internal/common/observability"
	"devtogether/internal/models"

	"go.opentelemetry.io/otel/codes"
)

// Reader is the subset of the store the dashboard reads from.
type Reader interface {
	ListApplications(ctx context.Context, developerID string) ([]models.Application, error)
	ListAcceptedApplications(ctx context.Context, developerID string) ([]models.Application, error)
	GetProfileRef(ctx context.Context, id string) (*models.ProfileRef, error)
	ListProjectTeam(ctx context.Context, projectID string) ([]models.ProfileRef, error)
	GetSkills(ctx context.Context, userID string) ([]string, error)
	ListOpenProjects(ctx context.Context, excludeIDs []string) ([]models.Project, error)
	ListMessagesSentBy(ctx context.Context, userID string, limit int) ([]models.Message, error)
	ListMessagesInProjects(ctx context.Context, projectIDs []string, limit int) ([]models.Message, error)
}

// Aggregator is the dashboard statistics service.
type Aggregator struct {
	reader Reader
	logger logger.Logger
	obs    *observability.Observability
	now    func() time.Time
	limits config.DashboardConfig
}

type Option func(*Aggregator)

// WithClock overrides the time source used for relative times, recency bonuses and
// approximate achievement dates.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// WithLimits sets the list sizes used by Refresh and by calls with a non-positive limit.
func WithLimits(limits config.DashboardConfig) Option {
	return func(a *Aggregator) {
		if limits.ActivityLimit > 0 {
			a.limits.ActivityLimit = limits.ActivityLimit
		}
		if limits.RecommendationLimit > 0 {
			a.limits.RecommendationLimit = limits.RecommendationLimit
		}
		if limits.AchievementLimit > 0 {
			a.limits.AchievementLimit = limits.AchievementLimit
		}
	}
}

func WithObservability(obs *observability.Observability) Option {
	return func(a *Aggregator) {
		if obs != nil {
			a.obs = obs
		}
	}
}

func NewAggregator(reader Reader, log logger.Logger, opts ...Option) *Aggregator {
	a := &Aggregator{
		reader: reader,
		logger: log.WithFields(map[string]interface{}{"component": "dashboard"}),
		obs:    observability.NewNoop(),
		now:    time.Now,
		limits: config.DashboardConfig{
			ActivityLimit:       10,
			RecommendationLimit: 5,
			AchievementLimit:    3,
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Limits returns the effective default list sizes.
func (a *Aggregator) Limits() config.DashboardConfig {
	return a.limits
}

// observe starts a span for op and returns the function that finishes it.
func (a *Aggregator) observe(ctx context.Context, op, developerID string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := a.obs.StartSpan(ctx, op, map[string]string{"developerId": developerID})
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			a.logger.Error("Aggregation failed", map[string]interface{}{
				"operation":   op,
				"developerId": developerID,
				"error":       err.Error(),
			})
		}
		span.End()
		metrics.ObserveAggregation(op, start, err)
	}
}

// Refresh computes the full dashboard. The independent parts run concurrently; the
// first failure cancels the others and fails the whole refresh.
func (a *Aggregator) Refresh(ctx context.Context, developerID string) (snap *models.DashboardSnapshot, err error) {
	ctx, done := a.observe(ctx, "dashboard.refresh", developerID)
	defer func() { done(err) }()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	snapshot := &models.DashboardSnapshot{DeveloperID: developerID}

	var wg sync.WaitGroup
	var mu sync.Mutex
	errChan := make(chan error, 5)

	run := func(part string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				a.logger.Warn("Dashboard part failed", map[string]interface{}{
					"developerId": developerID,
					"part":        part,
					"error":       err.Error(),
				})
				errChan <- err
				cancel()
			}
		}()
	}

	run("stats", func() error {
		stats, err := a.ComputeDeveloperStats(ctx, developerID)
		if err != nil {
			return err
		}
		mu.Lock()
		snapshot.Stats = *stats
		snapshot.Achievements = ComputeAchievements(*stats)
		mu.Unlock()
		return nil
	})

	run("activeProjects", func() error {
		projects, err := a.ComputeActiveProjects(ctx, developerID)
		if err != nil {
			return err
		}
		mu.Lock()
		snapshot.ActiveProjects = projects
		mu.Unlock()
		return nil
	})

	run("recentAchievements", func() error {
		recent, err := a.ComputeRecentAchievements(ctx, developerID, a.limits.AchievementLimit)
		if err != nil {
			return err
		}
		mu.Lock()
		snapshot.RecentAchievements = recent
		mu.Unlock()
		return nil
	})

	run("recentActivity", func() error {
		activity, err := a.ComputeRecentActivity(ctx, developerID, a.limits.ActivityLimit)
		if err != nil {
			return err
		}
		mu.Lock()
		snapshot.RecentActivity = activity
		mu.Unlock()
		return nil
	})

	run("recommendations", func() error {
		recs, err := a.ComputeRecommendedProjects(ctx, developerID, a.limits.RecommendationLimit)
		if err != nil {
			return err
		}
		mu.Lock()
		snapshot.Recommendations = recs
		mu.Unlock()
		return nil
	})

	wg.Wait()
	close(errChan)

	if firstErr, ok := <-errChan; ok {
		return nil, firstErr
	}

	snapshot.GeneratedAt = a.now()
	return snapshot, nil
}

// limitOr returns limit when positive, otherwise fallback.
func limitOr(limit, fallback int) int {
	if limit > 0 {
		return limit
	}
	return fallback
}

func wrapRead(what string, err error) error {
	return fmt.Errorf("%s: %w", what, err)
}

