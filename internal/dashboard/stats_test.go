package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "devtogether/internal/common/errors"
	"devtogether/internal/common/logger"
	"devtogether/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAggregator(t *testing.T, r *fakeReader) *Aggregator {
	t.Helper()
	return NewAggregator(r, logger.NewTestLogger(t), WithClock(func() time.Time { return now }))
}

// ==========================================
// ComputeDeveloperStats
// ==========================================

func TestComputeDeveloperStats_NoApplications(t *testing.T) {
	agg := newTestAggregator(t, &fakeReader{})

	stats, err := agg.ComputeDeveloperStats(context.Background(), "dev-1")
	require.NoError(t, err)
	assert.Equal(t, models.DeveloperStats{}, *stats)
	assert.Equal(t, 0, stats.AcceptanceRate)
}

func TestComputeDeveloperStats_ThreeOfFourAccepted(t *testing.T) {
	r := &fakeReader{apps: []models.Application{
		application("a1", "p1", models.ApplicationAccepted, ago(20*day), ago(19*day), project("p1", models.ProjectInProgress)),
		application("a2", "p2", models.ApplicationAccepted, ago(15*day), ago(14*day), project("p2", models.ProjectCompleted)),
		application("a3", "p3", models.ApplicationAccepted, ago(10*day), ago(9*day), project("p3", models.ProjectOpen)),
		application("a4", "p4", models.ApplicationPending, ago(5*day), ago(5*day), project("p4", models.ProjectOpen)),
	}}
	agg := newTestAggregator(t, r)

	stats, err := agg.ComputeDeveloperStats(context.Background(), "dev-1")
	require.NoError(t, err)

	assert.Equal(t, 4, stats.TotalApplications)
	assert.Equal(t, 3, stats.AcceptedApplications)
	assert.Equal(t, 1, stats.PendingApplications)
	assert.Equal(t, 0, stats.RejectedApplications)
	assert.Equal(t, 75, stats.AcceptanceRate)
	assert.Equal(t, 2, stats.ActiveProjects)
	assert.Equal(t, 1, stats.CompletedProjects)
}

func TestComputeDeveloperStats_WithdrawnAndRemovedOnlyInTotal(t *testing.T) {
	r := &fakeReader{apps: []models.Application{
		application("a1", "p1", models.ApplicationWithdrawn, ago(3*day), ago(2*day), nil),
		application("a2", "p2", models.ApplicationRemoved, ago(3*day), ago(2*day), nil),
		application("a3", "p3", models.ApplicationRejected, ago(3*day), ago(2*day), nil),
	}}
	agg := newTestAggregator(t, r)

	stats, err := agg.ComputeDeveloperStats(context.Background(), "dev-1")
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalApplications)
	assert.LessOrEqual(t, stats.AcceptedApplications+stats.RejectedApplications+stats.PendingApplications, stats.TotalApplications)
	assert.Equal(t, 1, stats.RejectedApplications)
	assert.Equal(t, 0, stats.AcceptanceRate)
}

func TestComputeDeveloperStats_Rounding(t *testing.T) {
	assert.Equal(t, 67, acceptanceRate(2, 3))
	assert.Equal(t, 33, acceptanceRate(1, 3))
	assert.Equal(t, 50, acceptanceRate(1, 2))
	assert.Equal(t, 0, acceptanceRate(0, 0))
}

func TestComputeDeveloperStats_ReadErrorPropagates(t *testing.T) {
	r := &fakeReader{errs: map[string]error{"ListAcceptedApplications": errors.New("connection refused")}}
	agg := newTestAggregator(t, r)

	stats, err := agg.ComputeDeveloperStats(context.Background(), "dev-1")
	require.Error(t, err)
	assert.Nil(t, stats)

	stdErr := apperrors.AsStandardError(err)
	assert.Equal(t, apperrors.ErrCodeStatsQueryFailed, stdErr.Code)
	assert.Contains(t, stdErr.Details, "connection refused")
}

// ==========================================
// ComputeActiveProjects
// ==========================================

func TestComputeActiveProjects_EnrichesAndFilters(t *testing.T) {
	deadline := time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)
	withDeadline := project("p1", models.ProjectInProgress, "Go")
	withDeadline.Deadline = &deadline

	r := &fakeReader{
		apps: []models.Application{
			application("a1", "p1", models.ApplicationAccepted, ago(20*day), ago(19*day), withDeadline),
			application("a2", "gone", models.ApplicationAccepted, ago(18*day), ago(17*day), nil),
			application("a3", "p3", models.ApplicationAccepted, ago(10*day), ago(9*day), project("p3", models.ProjectCompleted)),
			application("a4", "p4", models.ApplicationPending, ago(5*day), ago(5*day), project("p4", models.ProjectOpen)),
		},
		teams: map[string][]models.ProfileRef{
			"p1": {
				{ID: "dev-1", DisplayName: "Grace Hopper"},
				{ID: "dev-2", DisplayName: "Linus T"},
				{ID: "dev-2", DisplayName: "Linus T"},
			},
			"p3": {{ID: "dev-1", DisplayName: "Grace Hopper"}},
		},
	}
	agg := newTestAggregator(t, r)

	projects, err := agg.ComputeActiveProjects(context.Background(), "dev-1")
	require.NoError(t, err)
	require.Len(t, projects, 2, "dangling project and pending application are excluded")

	p1 := projects[0]
	assert.Equal(t, "p1", p1.ID)
	assert.Equal(t, 50, p1.Progress)
	assert.Equal(t, "Apr 30, 2024", p1.DueDate)
	assert.Equal(t, "Helping Hands", p1.OrganizationName)
	require.Len(t, p1.TeamMembers, 3)
	assert.Equal(t, "org-1", p1.TeamMembers[0].ID)
	assert.Equal(t, models.RoleOrganization, p1.TeamMembers[0].Role)
	assert.Equal(t, "dev-2", p1.TeamMembers[1].ID)
	assert.Equal(t, "dev-1", p1.TeamMembers[2].ID)

	p3 := projects[1]
	assert.Equal(t, 100, p3.Progress)
	assert.Equal(t, "Completed", p3.DueDate)

	assert.Equal(t, 0, r.callCount("GetProfileRef"), "embedded organization and team make extra lookups unnecessary")
}

func TestComputeActiveProjects_ResolvesMissingOrganizationAndSelf(t *testing.T) {
	p := project("p1", models.ProjectOpen)
	p.Organization = nil
	p.Deadline = nil

	r := &fakeReader{
		apps: []models.Application{
			application("a1", "p1", models.ApplicationAccepted, ago(3*day), ago(2*day), p),
		},
		profiles: map[string]models.ProfileRef{
			"org-1": {ID: "org-1", DisplayName: "Code for Good", AvatarURL: "https://cdn/cfg.png"},
			"dev-1": {ID: "dev-1", DisplayName: "Grace Hopper"},
		},
	}
	agg := newTestAggregator(t, r)

	projects, err := agg.ComputeActiveProjects(context.Background(), "dev-1")
	require.NoError(t, err)
	require.Len(t, projects, 1)

	assert.Equal(t, "Code for Good", projects[0].OrganizationName)
	assert.Equal(t, "https://cdn/cfg.png", projects[0].OrganizationAvatar)
	assert.Equal(t, 10, projects[0].Progress)
	assert.Equal(t, "No deadline", projects[0].DueDate)
	require.Len(t, projects[0].TeamMembers, 2)
	assert.Equal(t, "Grace Hopper", projects[0].TeamMembers[1].Name)
}

func TestComputeActiveProjects_TeamReadFails(t *testing.T) {
	r := &fakeReader{
		apps: []models.Application{
			application("a1", "p1", models.ApplicationAccepted, ago(3*day), ago(2*day), project("p1", models.ProjectOpen)),
		},
		errs: map[string]error{"ListProjectTeam": errors.New("timeout")},
	}
	agg := newTestAggregator(t, r)

	_, err := agg.ComputeActiveProjects(context.Background(), "dev-1")
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeActiveProjectsFailed, apperrors.AsStandardError(err).Code)
}

func TestProjectProgress(t *testing.T) {
	tests := []struct {
		status models.ProjectStatus
		want   int
	}{
		{models.ProjectOpen, 10},
		{models.ProjectInProgress, 50},
		{models.ProjectCompleted, 100},
		{models.ProjectCancelled, 25},
		{models.ProjectRejected, 25},
		{"", 25},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, projectProgress(tt.status))
		})
	}
}
