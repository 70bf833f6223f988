package profile

import (
	"context"
	"time"

	apperrors "devtogether/internal/common/errors"
	"devtogether/internal/models"
)

// ComputeProfileStats combines the developer statistics with tenure, profile views and
// feedback. A stats failure is returned as PROFILE_STATS_FAILED; tenure falls back from the full optional read
// to created_at only and finally to the current time.
func (a *Aggregator) ComputeProfileStats(ctx context.Context, userID string) (out *models.ProfileStats, err error) {
	const op = "profile.stats"
	ctx, done := a.observe(ctx, op, userID)
	defer func() { done(err) }()

	dev, err := a.stats.ComputeDeveloperStats(ctx, userID)
	if err != nil {
		return nil, apperrors.NewProfileStatsFailedError(userID, err)
	}

	now := a.now()
	out = &models.ProfileStats{
		TotalApplications:    dev.TotalApplications,
		AcceptedApplications: dev.AcceptedApplications,
		ActiveProjects:       dev.ActiveProjects,
		CompletedProjects:    dev.CompletedProjects,
		AcceptanceRate:       dev.AcceptanceRate,
		MemberSince:          now,
		LastActive:           now,
	}

	tenure, err := a.reader.GetProfileTenure(ctx, userID)
	if err == nil {
		out.MemberSince = tenure.CreatedAt
		out.LastActive = tenure.UpdatedAt
		if tenure.ProfileViews != nil {
			out.ProfileViews = *tenure.ProfileViews
		}
	} else {
		a.degraded(op, "tenure", userID, err)
		created, err := a.reader.GetProfileCreatedAt(ctx, userID)
		if err != nil {
			a.degraded(op, "created_at", userID, err)
		} else {
			out.MemberSince = created
			out.LastActive = created
		}
	}
	out.PlatformDays = daysSince(out.MemberSince, now)

	feedback, err := a.reader.DeveloperFeedback(ctx, userID)
	if err != nil {
		a.degraded(op, "rating", userID, err)
	} else {
		out.AverageRating = feedback.AverageRating
		out.FeedbackCount = feedback.Count
	}

	return out, nil
}

// daysSince counts whole days between t and now, never negative.
func daysSince(t, now time.Time) int {
	if t.IsZero() || !now.After(t) {
		return 0
	}
	return int(now.Sub(t) / (24 * time.Hour))
}

// GetOrganizationStats summarises an organization's projects and applications. The
// project and application counts are required; developers, rating and views degrade
// to zero.
func (a *Aggregator) GetOrganizationStats(ctx context.Context, orgID string) (out *models.OrganizationStats, err error) {
	const op = "profile.organization_stats"
	ctx, done := a.observe(ctx, op, orgID)
	defer func() { done(err) }()

	projects, err := a.reader.CountProjectsByStatus(ctx, orgID)
	if err != nil {
		return nil, apperrors.NewOrganizationStatsFailedError(orgID, err)
	}
	applications, err := a.reader.CountApplicationsByStatus(ctx, orgID)
	if err != nil {
		return nil, apperrors.NewOrganizationStatsFailedError(orgID, err)
	}

	out = &models.OrganizationStats{
		OrganizationID:       orgID,
		OpenProjects:         projects[models.ProjectOpen],
		InProgressProjects:   projects[models.ProjectInProgress],
		CompletedProjects:    projects[models.ProjectCompleted],
		PendingApplications:  applications[models.ApplicationPending],
		AcceptedApplications: applications[models.ApplicationAccepted],
	}
	for _, n := range projects {
		out.TotalProjects += n
	}
	for _, n := range applications {
		out.TotalApplications += n
	}

	if developers, err := a.reader.CountActiveDevelopers(ctx, orgID); err != nil {
		a.degraded(op, "active_developers", orgID, err)
	} else {
		out.ActiveDevelopers = developers
	}

	if feedback, err := a.reader.OrganizationFeedback(ctx, orgID); err != nil {
		a.degraded(op, "rating", orgID, err)
	} else {
		out.AverageRating = feedback.AverageRating
		out.FeedbackCount = feedback.Count
	}

	if tenure, err := a.reader.GetProfileTenure(ctx, orgID); err != nil {
		a.degraded(op, "profile_views", orgID, err)
	} else if tenure.ProfileViews != nil {
		out.ProfileViews = *tenure.ProfileViews
	}

	return out, nil
}
