package profile

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	apperrors "devtogether/internal/common/errors"
	"devtogether/internal/common/metrics"
	"devtogether/internal/models"
	"devtogether/internal/store"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func schemaMissing(what string) error {
	return fmt.Errorf("get %s: %w: column does not exist", what, store.ErrSchemaMissing)
}

func intPtr(n int) *int { return &n }

// ==========================================
// ComputeProfileStats
// ==========================================

func TestComputeProfileStats_FullTenure(t *testing.T) {
	s := &fakeStore{
		tenure:   &models.ProfileTenure{CreatedAt: ago(100 * day), UpdatedAt: ago(1 * day), ProfileViews: intPtr(42)},
		feedback: models.FeedbackSummary{AverageRating: 4.5, Count: 2},
	}
	stats := fakeStats{stats: &models.DeveloperStats{
		TotalApplications: 4, AcceptedApplications: 3, ActiveProjects: 2, CompletedProjects: 1, AcceptanceRate: 75,
	}}
	agg := newTestAggregator(t, s, stats)

	got, err := agg.ComputeProfileStats(context.Background(), "dev-1")
	require.NoError(t, err)

	assert.Equal(t, 4, got.TotalApplications)
	assert.Equal(t, 75, got.AcceptanceRate)
	assert.Equal(t, 100, got.PlatformDays)
	assert.Equal(t, 42, got.ProfileViews)
	assert.Equal(t, ago(100*day), got.MemberSince)
	assert.Equal(t, ago(1*day), got.LastActive)
	assert.Equal(t, 4.5, got.AverageRating)
	assert.Equal(t, 2, got.FeedbackCount)
}

func TestComputeProfileStats_UnreadableViewsFallBackToCreatedAt(t *testing.T) {
	s := &fakeStore{
		createdAt: ago(10*day + 3*time.Hour),
		errs:      map[string]error{"GetProfileTenure": schemaMissing("profile tenure")},
	}
	agg := newTestAggregator(t, s, nil)

	before := testutil.ToFloat64(metrics.DegradedReads.WithLabelValues("profile.stats", "tenure"))

	got, err := agg.ComputeProfileStats(context.Background(), "dev-1")
	require.NoError(t, err)

	assert.Equal(t, 0, got.ProfileViews)
	assert.Equal(t, 10, got.PlatformDays)
	assert.Equal(t, got.MemberSince, got.LastActive)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.DegradedReads.WithLabelValues("profile.stats", "tenure")))
}

func TestComputeProfileStats_BothTenureReadsFail(t *testing.T) {
	s := &fakeStore{errs: map[string]error{
		"GetProfileTenure":    schemaMissing("profile tenure"),
		"GetProfileCreatedAt": errors.New("connection reset"),
		"DeveloperFeedback":   schemaMissing("organization_feedback"),
	}}
	agg := newTestAggregator(t, s, nil)

	got, err := agg.ComputeProfileStats(context.Background(), "dev-1")
	require.NoError(t, err)

	assert.Equal(t, now, got.MemberSince)
	assert.Equal(t, 0, got.PlatformDays)
	assert.Equal(t, 0, got.ProfileViews)
	assert.Zero(t, got.AverageRating)
	assert.Zero(t, got.FeedbackCount)
}

func TestComputeProfileStats_NullViewsIsZero(t *testing.T) {
	s := &fakeStore{tenure: &models.ProfileTenure{CreatedAt: ago(2 * day), UpdatedAt: ago(2 * day)}}
	agg := newTestAggregator(t, s, nil)

	got, err := agg.ComputeProfileStats(context.Background(), "dev-1")
	require.NoError(t, err)
	assert.Equal(t, 0, got.ProfileViews)
	assert.Equal(t, 2, got.PlatformDays)
}

func TestComputeProfileStats_StatsErrorPropagates(t *testing.T) {
	statsErr := apperrors.NewStatsQueryFailedError("dev-1", errors.New("db down"))
	agg := newTestAggregator(t, &fakeStore{}, fakeStats{err: statsErr})

	got, err := agg.ComputeProfileStats(context.Background(), "dev-1")
	require.Error(t, err)
	assert.Nil(t, got)

	stdErr := apperrors.AsStandardError(err)
	assert.Equal(t, apperrors.ErrCodeProfileStatsFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
	assert.Contains(t, stdErr.Details, "userId: dev-1")
	assert.Contains(t, stdErr.Details, "STATS_QUERY_FAILED")
}

func TestDaysSince(t *testing.T) {
	assert.Equal(t, 0, daysSince(now, now))
	assert.Equal(t, 0, daysSince(now.Add(day), now))
	assert.Equal(t, 0, daysSince(ago(23*time.Hour), now))
	assert.Equal(t, 1, daysSince(ago(day), now))
	assert.Equal(t, 365, daysSince(ago(365*day), now))
}

// ==========================================
// GetOrganizationStats
// ==========================================

func TestGetOrganizationStats(t *testing.T) {
	s := &fakeStore{
		projects: map[models.ProjectStatus]int{
			models.ProjectOpen: 2, models.ProjectInProgress: 1, models.ProjectCompleted: 3, models.ProjectCancelled: 1,
		},
		applications: map[models.ApplicationStatus]int{
			models.ApplicationPending: 4, models.ApplicationAccepted: 5, models.ApplicationRejected: 2,
		},
		developers: 4,
		feedback:   models.FeedbackSummary{AverageRating: 4.2, Count: 5},
		tenure:     &models.ProfileTenure{CreatedAt: ago(400 * day), ProfileViews: intPtr(12)},
	}
	agg := newTestAggregator(t, s, nil)

	got, err := agg.GetOrganizationStats(context.Background(), "org-1")
	require.NoError(t, err)

	assert.Equal(t, "org-1", got.OrganizationID)
	assert.Equal(t, 7, got.TotalProjects)
	assert.Equal(t, 2, got.OpenProjects)
	assert.Equal(t, 1, got.InProgressProjects)
	assert.Equal(t, 3, got.CompletedProjects)
	assert.Equal(t, 11, got.TotalApplications)
	assert.Equal(t, 4, got.PendingApplications)
	assert.Equal(t, 5, got.AcceptedApplications)
	assert.Equal(t, 4, got.ActiveDevelopers)
	assert.Equal(t, 4.2, got.AverageRating)
	assert.Equal(t, 12, got.ProfileViews)
}

func TestGetOrganizationStats_OptionalPartsDegrade(t *testing.T) {
	s := &fakeStore{
		projects:     map[models.ProjectStatus]int{models.ProjectOpen: 1},
		applications: map[models.ApplicationStatus]int{},
		errs: map[string]error{
			"CountActiveDevelopers": errors.New("timeout"),
			"OrganizationFeedback":  schemaMissing("organization_feedback"),
			"GetProfileTenure":      schemaMissing("profile tenure"),
		},
	}
	agg := newTestAggregator(t, s, nil)

	got, err := agg.GetOrganizationStats(context.Background(), "org-1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.TotalProjects)
	assert.Zero(t, got.ActiveDevelopers)
	assert.Zero(t, got.AverageRating)
	assert.Zero(t, got.ProfileViews)
}

func TestGetOrganizationStats_RequiredCountsFail(t *testing.T) {
	for _, method := range []string{"CountProjectsByStatus", "CountApplicationsByStatus"} {
		t.Run(method, func(t *testing.T) {
			s := &fakeStore{errs: map[string]error{method: errors.New("boom")}}
			agg := newTestAggregator(t, s, nil)

			got, err := agg.GetOrganizationStats(context.Background(), "org-1")
			require.Error(t, err)
			assert.Nil(t, got)
			assert.Equal(t, apperrors.ErrCodeOrganizationStatsFail, apperrors.AsStandardError(err).Code)
		})
	}
}
