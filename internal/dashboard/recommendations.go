package dashboard

import (
	"context"
	"sort"
	"strings"
	"time"

	apperrors "devtogether/internal/common/errors"
	"devtogether/internal/models"
)

const (
	baseMatchScore   = 10
	perTechMatch     = 30
	recentBonus      = 10
	maxMatchScore    = 100
	recentProjectAge = 7 * 24 * time.Hour
)

// ComputeRecommendedProjects scores the open projects the developer has not applied
// to against the developer's skills and returns the best limit of them.
func (a *Aggregator) ComputeRecommendedProjects(ctx context.Context, developerID string, limit int) (out []models.RecommendedProject, err error) {
	ctx, done := a.observe(ctx, "dashboard.recommendations", developerID)
	defer func() { done(err) }()

	limit = limitOr(limit, a.limits.RecommendationLimit)

	skills, err := a.reader.GetSkills(ctx, developerID)
	if err != nil {
		return nil, apperrors.NewRecommendationFailedError(developerID, wrapRead("skills", err))
	}

	apps, err := a.reader.ListApplications(ctx, developerID)
	if err != nil {
		return nil, apperrors.NewRecommendationFailedError(developerID, wrapRead("applications", err))
	}
	applied := make(map[string]bool, len(apps))
	appliedIDs := make([]string, 0, len(apps))
	for _, app := range apps {
		if !applied[app.ProjectID] {
			applied[app.ProjectID] = true
			appliedIDs = append(appliedIDs, app.ProjectID)
		}
	}

	projects, err := a.reader.ListOpenProjects(ctx, appliedIDs)
	if err != nil {
		return nil, apperrors.NewRecommendationFailedError(developerID, wrapRead("open projects", err))
	}

	now := a.now()
	out = make([]models.RecommendedProject, 0, len(projects))
	for _, p := range projects {
		if applied[p.ID] {
			continue
		}
		score, matching := MatchScore(skills, p, now)
		out = append(out, models.RecommendedProject{
			ID:               p.ID,
			Title:            p.Title,
			Description:      p.Description,
			OrganizationID:   p.OrganizationID,
			OrganizationName: p.OrganizationName(),
			TechnologyStack:  p.TechnologyStack,
			MatchScore:       score,
			MatchingSkills:   matching,
			Deadline:         p.Deadline,
			CreatedAt:        p.CreatedAt,
		})
	}

	sortRecommendations(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// MatchScore scores project for a developer with skills: a base of 10, 30 for every
// technology some skill matches and 10 when the project is less than a week old,
// capped at 100. It also returns the skills that matched, in declaration order.
func MatchScore(skills []string, project models.Project, now time.Time) (int, []string) {
	score := baseMatchScore
	matchedSkill := make([]bool, len(skills))

	for _, tech := range project.TechnologyStack {
		techMatched := false
		for i, skill := range skills {
			if skillMatches(skill, tech) {
				techMatched = true
				matchedSkill[i] = true
			}
		}
		if techMatched {
			score += perTechMatch
		}
	}

	if !project.CreatedAt.IsZero() && now.Sub(project.CreatedAt) < recentProjectAge {
		score += recentBonus
	}
	if score > maxMatchScore {
		score = maxMatchScore
	}

	matching := make([]string, 0)
	for i, ok := range matchedSkill {
		if ok {
			matching = append(matching, skills[i])
		}
	}
	return score, matching
}

// skillMatches is a case-insensitive substring match in either direction. Blank
// values never match.
func skillMatches(skill, tech string) bool {
	s := strings.ToLower(strings.TrimSpace(skill))
	t := strings.ToLower(strings.TrimSpace(tech))
	if s == "" || t == "" {
		return false
	}
	return strings.Contains(s, t) || strings.Contains(t, s)
}

// sortRecommendations orders by score, then newer projects, then id.
func sortRecommendations(recs []models.RecommendedProject) {
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].MatchScore != recs[j].MatchScore {
			return recs[i].MatchScore > recs[j].MatchScore
		}
		if !recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].CreatedAt.After(recs[j].CreatedAt)
		}
		return recs[i].ID < recs[j].ID
	})
}
