package dashboard

import (
	"context"
	"errors"
	"testing"

	"devtogether/internal/common/config"
	apperrors "devtogether/internal/common/errors"
	"devtogether/internal/common/logger"
	"devtogether/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioReader() *fakeReader {
	return &fakeReader{
		skills: []string{"Go"},
		apps: []models.Application{
			application("a1", "p1", models.ApplicationAccepted, ago(20*day), ago(19*day), project("p1", models.ProjectInProgress, "Go")),
			application("a2", "p2", models.ApplicationAccepted, ago(15*day), ago(14*day), project("p2", models.ProjectCompleted)),
			application("a3", "p3", models.ApplicationAccepted, ago(10*day), ago(9*day), project("p3", models.ProjectOpen)),
			application("a4", "p4", models.ApplicationPending, ago(5*day), ago(5*day), project("p4", models.ProjectOpen)),
		},
		openProjects: []models.Project{
			*project("p4", models.ProjectOpen, "Go"),
			*project("p9", models.ProjectOpen, "Go"),
		},
		profiles: map[string]models.ProfileRef{"dev-1": {ID: "dev-1", DisplayName: "Grace Hopper"}},
	}
}

// ==========================================
// Refresh
// ==========================================

func TestRefresh_ComposesAllParts(t *testing.T) {
	agg := newTestAggregator(t, scenarioReader())

	snap, err := agg.Refresh(context.Background(), "dev-1")
	require.NoError(t, err)

	assert.Equal(t, "dev-1", snap.DeveloperID)
	assert.Equal(t, now, snap.GeneratedAt)
	assert.Equal(t, 75, snap.Stats.AcceptanceRate)
	assert.Len(t, snap.Achievements, 7)
	assert.Len(t, snap.ActiveProjects, 3)
	assert.Len(t, snap.RecentAchievements, 3)
	assert.NotEmpty(t, snap.RecentActivity)

	require.Len(t, snap.Recommendations, 1)
	assert.Equal(t, "p9", snap.Recommendations[0].ID)
	assert.Equal(t, 40, snap.Recommendations[0].MatchScore)
}

func TestRefresh_AnyPartFailingFailsRefresh(t *testing.T) {
	methods := map[string]apperrors.ErrorCode{
		"ListAcceptedApplications": "",
		"ListProjectTeam":          apperrors.ErrCodeActiveProjectsFailed,
		"GetSkills":                apperrors.ErrCodeRecommendationFailed,
		"ListOpenProjects":         apperrors.ErrCodeRecommendationFailed,
		"ListMessagesSentBy":       apperrors.ErrCodeActivityQueryFailed,
		"ListMessagesInProjects":   apperrors.ErrCodeActivityQueryFailed,
		"ListApplications":         "",
	}

	for method, wantCode := range methods {
		t.Run(method, func(t *testing.T) {
			r := scenarioReader()
			r.errs = map[string]error{method: errors.New("store unavailable")}
			agg := newTestAggregator(t, r)

			snap, err := agg.Refresh(context.Background(), "dev-1")
			require.Error(t, err)
			assert.Nil(t, snap)

			stdErr := apperrors.AsStandardError(err)
			assert.True(t, stdErr.Retryable)
			if wantCode != "" {
				assert.Equal(t, wantCode, stdErr.Code)
			}
		})
	}
}

func TestRefresh_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := scenarioReader()
	agg := newTestAggregator(t, r)

	// the fake ignores ctx, so a cancelled caller still gets a full snapshot
	snap, err := agg.Refresh(ctx, "dev-1")
	require.NoError(t, err)
	assert.NotNil(t, snap)
}

func TestWithLimits(t *testing.T) {
	agg := NewAggregator(&fakeReader{}, logger.NewNoOpLogger(),
		WithLimits(config.DashboardConfig{ActivityLimit: 20, RecommendationLimit: 0, AchievementLimit: 1}))

	limits := agg.Limits()
	assert.Equal(t, 20, limits.ActivityLimit)
	assert.Equal(t, 5, limits.RecommendationLimit)
	assert.Equal(t, 1, limits.AchievementLimit)
}

func TestLimitOr(t *testing.T) {
	assert.Equal(t, 3, limitOr(3, 10))
	assert.Equal(t, 10, limitOr(0, 10))
	assert.Equal(t, 10, limitOr(-1, 10))
}
