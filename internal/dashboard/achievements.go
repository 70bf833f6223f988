package dashboard

import (
	"context"
	"sort"
	"time"

	apperrors "devtogether/internal/common/errors"
	"devtogether/internal/models"
)

// achievementRule is one entry of the achievement catalog. progress is nil for
// achievements without a partial state.
type achievementRule struct {
	id          string
	title       string
	description string
	icon        string
	unlocked    func(models.DeveloperStats) bool
	progress    func(models.DeveloperStats) (current, max int)
}

func countTo(max int, field func(models.DeveloperStats) int) func(models.DeveloperStats) (int, int) {
	return func(s models.DeveloperStats) (int, int) {
		current := field(s)
		if current > max {
			current = max
		}
		return current, max
	}
}

func totalApplications(s models.DeveloperStats) int { return s.TotalApplications }

func acceptedApplications(s models.DeveloperStats) int { return s.AcceptedApplications }

func completedProjects(s models.DeveloperStats) int { return s.CompletedProjects }

// Achievement ids.
const (
	FirstApplication   = "first_application"
	FiveApplications   = "five_applications"
	FirstAcceptance    = "first_acceptance"
	TeamPlayer         = "team_player"
	FirstCompletion    = "first_completion"
	ProjectVeteran     = "project_veteran"
	HighAcceptanceRate = "high_acceptance_rate"
)

// catalog is evaluated in order and the order is kept in the output.
var catalog = []achievementRule{
	{
		id:          FirstApplication,
		title:       "First Steps",
		description: "Submitted your first project application",
		icon:        "send",
		unlocked:    func(s models.DeveloperStats) bool { return s.TotalApplications >= 1 },
	},
	{
		id:          FiveApplications,
		title:       "Eager Contributor",
		description: "Submitted five project applications",
		icon:        "layers",
		unlocked:    func(s models.DeveloperStats) bool { return s.TotalApplications >= 5 },
		progress:    countTo(5, totalApplications),
	},
	{
		id:          FirstAcceptance,
		title:       "Welcome Aboard",
		description: "Got accepted to your first project",
		icon:        "handshake",
		unlocked:    func(s models.DeveloperStats) bool { return s.AcceptedApplications >= 1 },
	},
	{
		id:          TeamPlayer,
		title:       "Team Player",
		description: "Got accepted to three projects",
		icon:        "users",
		unlocked:    func(s models.DeveloperStats) bool { return s.AcceptedApplications >= 3 },
		progress:    countTo(3, acceptedApplications),
	},
	{
		id:          FirstCompletion,
		title:       "Finisher",
		description: "Completed your first project",
		icon:        "check-circle",
		unlocked:    func(s models.DeveloperStats) bool { return s.CompletedProjects >= 1 },
	},
	{
		id:          ProjectVeteran,
		title:       "Project Veteran",
		description: "Completed five projects",
		icon:        "award",
		unlocked:    func(s models.DeveloperStats) bool { return s.CompletedProjects >= 5 },
		progress:    countTo(5, completedProjects),
	},
	{
		id:          HighAcceptanceRate,
		title:       "In Demand",
		description: "Acceptance rate of at least 50% over three or more applications",
		icon:        "trending-up",
		unlocked: func(s models.DeveloperStats) bool {
			return s.AcceptanceRate >= 50 && s.TotalApplications >= 3
		},
	},
}

// ComputeAchievements evaluates the catalog against stats. It makes no calls.
func ComputeAchievements(stats models.DeveloperStats) []models.Achievement {
	out := make([]models.Achievement, 0, len(catalog))
	for _, rule := range catalog {
		a := models.Achievement{
			ID:          rule.id,
			Title:       rule.title,
			Description: rule.description,
			Icon:        rule.icon,
			Achieved:    rule.unlocked(stats),
		}
		if rule.progress != nil {
			current, max := rule.progress(stats)
			a.Progress = &current
			a.MaxProgress = &max
		}
		out = append(out, a)
	}
	return out
}

// ComputeRecentAchievements returns unlocked achievements with the time each was
// earned, newest first. Earn times are inferred from the application history; an
// achievement the history cannot date is stamped with the current time and marked
// Approximate.
func (a *Aggregator) ComputeRecentAchievements(ctx context.Context, developerID string, limit int) (out []models.RecentAchievement, err error) {
	ctx, done := a.observe(ctx, "dashboard.recent_achievements", developerID)
	defer func() { done(err) }()

	limit = limitOr(limit, a.limits.AchievementLimit)

	apps, err := a.reader.ListApplications(ctx, developerID)
	if err != nil {
		return nil, apperrors.NewAchievementQueryFailedError(developerID, err)
	}

	history := newHistory(apps)
	stats := statsFrom(apps, history.accepted)
	now := a.now()

	for _, achievement := range ComputeAchievements(stats) {
		if !achievement.Achieved {
			continue
		}
		earned, ok := history.earnedAt(achievement.ID)
		if !ok {
			earned = now
		}
		out = append(out, models.RecentAchievement{
			Achievement: achievement,
			EarnedAt:    earned,
			Approximate: !ok,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].EarnedAt.After(out[j].EarnedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// history is the chronological view of a developer's applications.
type history struct {
	submitted   []time.Time // application created_at, ascending
	accepted    []models.Application
	acceptedAt  []time.Time // accepted application updated_at, ascending
	completedAt []time.Time // completed project updated_at, ascending
}

func newHistory(apps []models.Application) history {
	var h history
	for _, app := range apps {
		h.submitted = append(h.submitted, app.CreatedAt)
	}
	h.accepted = acceptedOnly(apps)
	for _, app := range h.accepted {
		h.acceptedAt = append(h.acceptedAt, app.UpdatedAt)
		if app.Project != nil && app.Project.Status == models.ProjectCompleted {
			h.completedAt = append(h.completedAt, app.Project.UpdatedAt)
		}
	}
	sortTimes(h.submitted)
	sortTimes(h.acceptedAt)
	sortTimes(h.completedAt)
	return h
}

func sortTimes(ts []time.Time) {
	sort.Slice(ts, func(i, j int) bool { return ts[i].Before(ts[j]) })
}

// nth returns the n-th (1-based) time of ts.
func nth(ts []time.Time, n int) (time.Time, bool) {
	if len(ts) < n {
		return time.Time{}, false
	}
	return ts[n-1], true
}

func (h history) earnedAt(id string) (time.Time, bool) {
	switch id {
	case FirstApplication:
		return nth(h.submitted, 1)
	case FiveApplications:
		return nth(h.submitted, 5)
	case FirstAcceptance:
		return nth(h.acceptedAt, 1)
	case TeamPlayer:
		return nth(h.acceptedAt, 3)
	case FirstCompletion:
		return nth(h.completedAt, 1)
	case ProjectVeteran:
		return nth(h.completedAt, 5)
	default:
		return time.Time{}, false
	}
}
