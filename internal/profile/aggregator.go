// Package profile computes the public profile view of a user: tenure and application
// statistics, portfolio, skill proficiency, share links, privacy and view tracking.
//
// Reads that depend on optional columns degrade to defaults instead of failing the call.
package profile

import (
	"context"
	"time"

	"devtogether/internal/common/config"
	"devtogether/internal/common/logger"
	"devtogether/internal/common/metrics"
	"devtogether/internal/common/observability"
	"devtogether/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/codes"
)

// Reader is the subset of the store the profile aggregator reads and writes.
type Reader interface {
	ListAcceptedApplications(ctx context.Context, developerID string) ([]models.Application, error)
	GetSkills(ctx context.Context, userID string) ([]string, error)
	GetProfileTenure(ctx context.Context, userID string) (*models.ProfileTenure, error)
	GetProfileCreatedAt(ctx context.Context, userID string) (time.Time, error)
	DeveloperFeedback(ctx context.Context, developerID string) (models.FeedbackSummary, error)
	OrganizationFeedback(ctx context.Context, organizationID string) (models.FeedbackSummary, error)
	SetShareToken(ctx context.Context, userID, token string) error
	GetIsPublic(ctx context.Context, userID string) (bool, error)
	UpdateIsPublic(ctx context.Context, userID string, isPublic bool) error
	GetProfileByShareToken(ctx context.Context, token string) (*models.Profile, error)
	CountProjectsByStatus(ctx context.Context, organizationID string) (map[models.ProjectStatus]int, error)
	CountApplicationsByStatus(ctx context.Context, organizationID string) (map[models.ApplicationStatus]int, error)
	CountActiveDevelopers(ctx context.Context, organizationID string) (int, error)
}

// StatsSource provides developer statistics. *dashboard.Aggregator satisfies it.
type StatsSource interface {
	ComputeDeveloperStats(ctx context.Context, developerID string) (*models.DeveloperStats, error)
}

// ViewRecorder persists profile views.
type ViewRecorder interface {
	IncrementProfileViews(ctx context.Context, profileID string) error
	RecordProfileView(ctx context.Context, view models.ProfileView) error
}

// Config carries the sharing and analytics settings.
type Config struct {
	Sharing   config.SharingConfig
	Analytics config.AnalyticsConfig
}

type Aggregator struct {
	reader   Reader
	stats    StatsSource
	views    ViewRecorder
	redis    redis.Cmdable
	logger   logger.Logger
	obs      *observability.Observability
	cfg      Config
	now      func() time.Time
	newToken func() string
}

type Option func(*Aggregator)

func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// WithRedis enables view de-duplication and view event publishing.
func WithRedis(client redis.Cmdable) Option {
	return func(a *Aggregator) { a.redis = client }
}

// WithTokenGenerator replaces the share token generator.
func WithTokenGenerator(gen func() string) Option {
	return func(a *Aggregator) { a.newToken = gen }
}

func WithObservability(obs *observability.Observability) Option {
	return func(a *Aggregator) {
		if obs != nil {
			a.obs = obs
		}
	}
}

func NewAggregator(reader Reader, stats StatsSource, views ViewRecorder, log logger.Logger, cfg Config, opts ...Option) *Aggregator {
	a := &Aggregator{
		reader:   reader,
		stats:    stats,
		views:    views,
		logger:   log.WithFields(map[string]interface{}{"component": "profile"}),
		obs:      observability.NewNoop(),
		cfg:      cfg,
		now:      time.Now,
		newToken: uuid.NewString,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Aggregator) observe(ctx context.Context, op, userID string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := a.obs.StartSpan(ctx, op, map[string]string{"userId": userID})
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			a.logger.Error("Profile operation failed", map[string]interface{}{
				"operation": op,
				"userId":    userID,
				"error":     err.Error(),
			})
		}
		span.End()
		metrics.ObserveAggregation(op, start, err)
	}
}

// degraded logs a read that fell back to a default and counts it.
func (a *Aggregator) degraded(op, field, userID string, err error) {
	a.logger.Warn("Falling back to default", map[string]interface{}{
		"operation": op,
		"field":     field,
		"userId":    userID,
		"error":     err.Error(),
	})
	metrics.Degraded(op, field)
}
