// internal/store/projects.go
package store

import (
	"context"
	"database/sql"

	"devtogether/internal/models"

	"github.com/lib/pq"
)

// projectColumns selects a project together with its owning organization profile.
// Callers must alias projects as p and LEFT JOIN profiles as o.
const projectColumns = `p.id, p.organization_id, p.title, COALESCE(p.description, ''), p.technology_stack,
       p.status, p.deadline, p.created_at, p.updated_at,
       o.id, COALESCE(o.organization_name, ''), COALESCE(o.first_name, ''), COALESCE(o.last_name, ''),
       COALESCE(o.avatar_url, ''), COALESCE(o.role, '')`

// projectRow holds the nullable shape of projectColumns so it can be reused by
// LEFT JOINed reads where the whole project may be absent.
type projectRow struct {
	id, organizationID, title, status sql.NullString
	description                       string
	stack                             pq.StringArray
	deadline, createdAt, updatedAt    sql.NullTime
	orgID                             sql.NullString
	orgName, firstName, lastName      string
	avatarURL, role                   string
}

func (r *projectRow) dest() []interface{} {
	return []interface{}{
		&r.id, &r.organizationID, &r.title, &r.description, &r.stack,
		&r.status, &r.deadline, &r.createdAt, &r.updatedAt,
		&r.orgID, &r.orgName, &r.firstName, &r.lastName, &r.avatarURL, &r.role,
	}
}

// project returns nil when the joined project row was missing.
func (r *projectRow) project() *models.Project {
	if !r.id.Valid {
		return nil
	}
	p := &models.Project{
		ID:              r.id.String,
		OrganizationID:  r.organizationID.String,
		Title:           r.title.String,
		Description:     r.description,
		TechnologyStack: []string(r.stack),
		Status:          models.ProjectStatus(r.status.String),
		Deadline:        timePtr(r.deadline),
		CreatedAt:       r.createdAt.Time,
		UpdatedAt:       r.updatedAt.Time,
	}
	if p.TechnologyStack == nil {
		p.TechnologyStack = []string{}
	}
	if r.orgID.Valid {
		p.Organization = &models.ProfileRef{
			ID:          r.orgID.String,
			DisplayName: models.DisplayName(r.orgName, r.firstName, r.lastName),
			AvatarURL:   r.avatarURL,
			Role:        models.Role(r.role),
		}
	}
	return p
}

func scanProject(row rowScanner) (*models.Project, error) {
	var r projectRow
	if err := row.Scan(r.dest()...); err != nil {
		return nil, err
	}
	return r.project(), nil
}

const listOpenProjectsQuery = `
SELECT ` + projectColumns + `
FROM projects p
LEFT JOIN profiles o ON o.id = p.organization_id
WHERE p.status = 'open' AND NOT (p.id::text = ANY($1))
ORDER BY p.created_at DESC`

// ListOpenProjects returns open projects, newest first, skipping excludeIDs.
func (s *Store) ListOpenProjects(ctx context.Context, excludeIDs []string) ([]models.Project, error) {
	if excludeIDs == nil {
		excludeIDs = []string{}
	}
	var out []models.Project
	err := s.queryRows(ctx, "list open projects", listOpenProjectsQuery, func(row rowScanner) error {
		p, err := scanProject(row)
		if err != nil {
			return err
		}
		if p != nil {
			out = append(out, *p)
		}
		return nil
	}, pq.Array(excludeIDs))
	return out, err
}

const listProjectsForIndexQuery = `
SELECT ` + projectColumns + `
FROM projects p
LEFT JOIN profiles o ON o.id = p.organization_id
WHERE p.id::text > $1
ORDER BY p.id::text ASC
LIMIT $2`

// ListProjectsForIndex pages through every project by id, starting after afterID.
func (s *Store) ListProjectsForIndex(ctx context.Context, afterID string, limit int) ([]models.Project, error) {
	var out []models.Project
	err := s.queryRows(ctx, "list projects for index", listProjectsForIndexQuery, func(row rowScanner) error {
		p, err := scanProject(row)
		if err != nil {
			return err
		}
		if p != nil {
			out = append(out, *p)
		}
		return nil
	}, afterID, limit)
	return out, err
}

const countProjectsByStatusQuery = `
SELECT status, COUNT(*)
FROM projects
WHERE organization_id = $1
GROUP BY status`

// CountProjectsByStatus counts an organization's projects per status.
func (s *Store) CountProjectsByStatus(ctx context.Context, organizationID string) (map[models.ProjectStatus]int, error) {
	out := make(map[models.ProjectStatus]int)
	err := s.queryRows(ctx, "count projects by status", countProjectsByStatusQuery, func(row rowScanner) error {
		var status string
		var n int
		if err := row.Scan(&status, &n); err != nil {
			return err
		}
		out[models.ProjectStatus(status)] = n
		return nil
	}, organizationID)
	return out, err
}
