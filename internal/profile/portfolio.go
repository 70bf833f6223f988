package profile

import (
	"context"
	"strings"
	"time"

	"devtogether/internal/models"
)

const recentUsageWindow = 90 * 24 * time.Hour

// ComputeProjectPortfolio lists the projects the developer was accepted onto. Read
// failures yield an empty portfolio.
func (a *Aggregator) ComputeProjectPortfolio(ctx context.Context, userID string) []models.PortfolioItem {
	const op = "profile.portfolio"
	ctx, done := a.observe(ctx, op, userID)
	defer done(nil)

	apps, err := a.reader.ListAcceptedApplications(ctx, userID)
	if err != nil {
		a.degraded(op, "applications", userID, err)
		return []models.PortfolioItem{}
	}

	items := make([]models.PortfolioItem, 0, len(apps))
	for _, app := range apps {
		if app.Project == nil {
			continue
		}
		p := app.Project
		item := models.PortfolioItem{
			ProjectID:        p.ID,
			Title:            p.Title,
			Description:      p.Description,
			OrganizationName: p.OrganizationName(),
			TechnologyStack:  p.TechnologyStack,
			Status:           models.PortfolioActive,
			JoinedAt:         app.UpdatedAt,
		}
		if p.Status == models.ProjectCompleted {
			item.Status = models.PortfolioCompleted
			completed := p.UpdatedAt
			item.CompletedAt = &completed
		}
		items = append(items, item)
	}
	return items
}

// ComputeSkillProficiency rates each declared skill by how many accepted projects use
// it. The result has one entry per declared skill, in declaration order.
func (a *Aggregator) ComputeSkillProficiency(ctx context.Context, userID string) []models.SkillProficiency {
	const op = "profile.skills"
	ctx, done := a.observe(ctx, op, userID)
	defer done(nil)

	skills, err := a.reader.GetSkills(ctx, userID)
	if err != nil {
		a.degraded(op, "skills", userID, err)
		return []models.SkillProficiency{}
	}

	var usage map[string]techUsage
	apps, err := a.reader.ListAcceptedApplications(ctx, userID)
	if err != nil {
		a.degraded(op, "technology_stack", userID, err)
	} else {
		usage = tallyTechnologies(apps, a.now())
	}

	out := make([]models.SkillProficiency, 0, len(skills))
	for _, skill := range skills {
		u := usage[strings.ToLower(strings.TrimSpace(skill))]
		out = append(out, models.SkillProficiency{
			Skill:        skill,
			Level:        LevelFor(u.count),
			ProjectCount: u.count,
			RecentUsage:  u.recent,
		})
	}
	return out
}

type techUsage struct {
	count  int
	recent bool
}

// tallyTechnologies counts, per lower-cased technology, the accepted projects listing it.
// A technology is recent when one of those projects was updated in the last 90 days.
func tallyTechnologies(apps []models.Application, now time.Time) map[string]techUsage {
	usage := make(map[string]techUsage)
	for _, app := range apps {
		if app.Project == nil {
			continue
		}
		recent := now.Sub(app.Project.UpdatedAt) <= recentUsageWindow
		seen := make(map[string]bool, len(app.Project.TechnologyStack))
		for _, tech := range app.Project.TechnologyStack {
			key := strings.ToLower(strings.TrimSpace(tech))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			u := usage[key]
			u.count++
			u.recent = u.recent || recent
			usage[key] = u
		}
	}
	return usage
}

// LevelFor maps a project count to a proficiency level.
func LevelFor(projects int) models.SkillLevel {
	switch {
	case projects >= 5:
		return models.SkillExpert
	case projects >= 3:
		return models.SkillAdvanced
	case projects >= 1:
		return models.SkillIntermediate
	default:
		return models.SkillBeginner
	}
}
