package dashboard

import (
	"context"
	"errors"
	"math"

	apperrors "devtogether/internal/common/errors"
	"devtogether/internal/models"
	"devtogether/internal/store"
)

// ComputeDeveloperStats counts the developer's applications by status and partitions
// the projects of accepted applications into active and completed.
func (a *Aggregator) ComputeDeveloperStats(ctx context.Context, developerID string) (stats *models.DeveloperStats, err error) {
	ctx, done := a.observe(ctx, "dashboard.stats", developerID)
	defer func() { done(err) }()

	apps, err := a.reader.ListApplications(ctx, developerID)
	if err != nil {
		return nil, apperrors.NewStatsQueryFailedError(developerID, wrapRead("applications", err))
	}

	accepted, err := a.reader.ListAcceptedApplications(ctx, developerID)
	if err != nil {
		return nil, apperrors.NewStatsQueryFailedError(developerID, wrapRead("accepted projects", err))
	}

	s := statsFrom(apps, accepted)
	return &s, nil
}

// statsFrom is the pure part of ComputeDeveloperStats.
func statsFrom(apps, accepted []models.Application) models.DeveloperStats {
	var s models.DeveloperStats
	s.TotalApplications = len(apps)
	for _, app := range apps {
		switch app.Status {
		case models.ApplicationPending:
			s.PendingApplications++
		case models.ApplicationAccepted:
			s.AcceptedApplications++
		case models.ApplicationRejected:
			s.RejectedApplications++
		}
	}
	s.AcceptanceRate = acceptanceRate(s.AcceptedApplications, s.TotalApplications)

	for _, app := range accepted {
		if app.Project == nil {
			continue
		}
		switch {
		case app.Project.Status.IsActive():
			s.ActiveProjects++
		case app.Project.Status == models.ProjectCompleted:
			s.CompletedProjects++
		}
	}
	return s
}

// acceptanceRate is accepted/total as a rounded percentage, 0 when total is 0.
func acceptanceRate(accepted, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(accepted) / float64(total) * 100))
}

func acceptedOnly(apps []models.Application) []models.Application {
	out := make([]models.Application, 0, len(apps))
	for _, app := range apps {
		if app.Status == models.ApplicationAccepted {
			out = append(out, app)
		}
	}
	return out
}

// progressByStatus is a coarse placeholder; there is no task-level completion data.
var progressByStatus = map[models.ProjectStatus]int{
	models.ProjectOpen:       10,
	models.ProjectInProgress: 50,
	models.ProjectCompleted:  100,
}

const defaultProgress = 25

func projectProgress(status models.ProjectStatus) int {
	if p, ok := progressByStatus[status]; ok {
		return p
	}
	return defaultProgress
}

const dueDateLayout = "Jan 2, 2006"

func dueDate(p models.Project) string {
	switch {
	case p.Status == models.ProjectCompleted:
		return "Completed"
	case p.Deadline != nil:
		return p.Deadline.Format(dueDateLayout)
	default:
		return "No deadline"
	}
}

// ComputeActiveProjects returns the projects the developer was accepted onto, each
// enriched with its organization and team. Applications whose project row is missing
// are skipped.
func (a *Aggregator) ComputeActiveProjects(ctx context.Context, developerID string) (out []models.ActiveProject, err error) {
	ctx, done := a.observe(ctx, "dashboard.active_projects", developerID)
	defer func() { done(err) }()

	accepted, err := a.reader.ListAcceptedApplications(ctx, developerID)
	if err != nil {
		return nil, apperrors.NewActiveProjectsFailedError(developerID, err)
	}

	var self *models.ProfileRef
	out = make([]models.ActiveProject, 0, len(accepted))
	for _, app := range accepted {
		if app.Project == nil {
			a.logger.Debug("Skipping application with missing project", map[string]interface{}{
				"applicationId": app.ID,
				"projectId":     app.ProjectID,
			})
			continue
		}
		project := *app.Project

		org, err := a.resolveOrganization(ctx, project)
		if err != nil {
			return nil, apperrors.NewActiveProjectsFailedError(developerID, err)
		}

		members, err := a.reader.ListProjectTeam(ctx, project.ID)
		if err != nil {
			return nil, apperrors.NewActiveProjectsFailedError(developerID, wrapRead("team", err))
		}

		if self == nil && !containsRef(members, developerID) {
			ref, err := a.reader.GetProfileRef(ctx, developerID)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return nil, apperrors.NewActiveProjectsFailedError(developerID, wrapRead("developer profile", err))
			}
			if ref == nil {
				ref = &models.ProfileRef{ID: developerID, Role: models.RoleDeveloper}
			}
			self = ref
		}

		ap := models.ActiveProject{
			ID:              project.ID,
			Title:           project.Title,
			Description:     project.Description,
			Status:          project.Status,
			TechnologyStack: project.TechnologyStack,
			OrganizationID:  project.OrganizationID,
			Progress:        projectProgress(project.Status),
			DueDate:         dueDate(project),
			Deadline:        project.Deadline,
			JoinedAt:        app.UpdatedAt,
			TeamMembers:     buildTeam(org, members, developerID, self),
		}
		if org != nil {
			ap.OrganizationName = org.DisplayName
			ap.OrganizationAvatar = org.AvatarURL
		}
		out = append(out, ap)
	}
	return out, nil
}

// resolveOrganization uses the embedded organization when the join produced one and
// otherwise looks the owner up. A missing owner profile yields nil.
func (a *Aggregator) resolveOrganization(ctx context.Context, p models.Project) (*models.ProfileRef, error) {
	if p.Organization != nil {
		return p.Organization, nil
	}
	if p.OrganizationID == "" {
		return nil, nil
	}
	ref, err := a.reader.GetProfileRef(ctx, p.OrganizationID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapRead("organization", err)
	}
	return ref, nil
}

// buildTeam lists the organization owner, the other accepted developers and the
// current developer, without duplicates.
func buildTeam(org *models.ProfileRef, members []models.ProfileRef, developerID string, self *models.ProfileRef) []models.TeamMember {
	seen := make(map[string]bool)
	team := make([]models.TeamMember, 0, len(members)+2)

	add := func(ref models.ProfileRef, role models.Role) {
		if ref.ID == "" || seen[ref.ID] {
			return
		}
		seen[ref.ID] = true
		team = append(team, models.TeamMember{
			ID:        ref.ID,
			Name:      ref.DisplayName,
			AvatarURL: ref.AvatarURL,
			Role:      role,
		})
	}

	if org != nil {
		add(*org, models.RoleOrganization)
	}
	var current *models.ProfileRef
	for i := range members {
		if members[i].ID == developerID {
			current = &members[i]
			continue
		}
		add(members[i], models.RoleDeveloper)
	}
	if current == nil {
		current = self
	}
	if current != nil {
		add(*current, models.RoleDeveloper)
	}
	return team
}

func containsRef(refs []models.ProfileRef, id string) bool {
	for _, r := range refs {
		if r.ID == id {
			return true
		}
	}
	return false
}
