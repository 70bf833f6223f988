// internal/store/applications.go
package store

import (
	"context"

	"devtogether/internal/models"
)

const applicationColumns = `a.id, a.project_id, a.developer_id, a.status, a.created_at, a.updated_at, ` + projectColumns

const applicationJoins = `
FROM applications a
LEFT JOIN projects p ON p.id = a.project_id
LEFT JOIN profiles o ON o.id = p.organization_id`

const listApplicationsQuery = `
SELECT ` + applicationColumns + applicationJoins + `
WHERE a.developer_id = $1
ORDER BY a.created_at ASC`

const listApplicationsByStatusQuery = `
SELECT ` + applicationColumns + applicationJoins + `
WHERE a.developer_id = $1 AND a.status = $2
ORDER BY a.created_at ASC`

func scanApplication(row rowScanner) (models.Application, error) {
	var a models.Application
	var status string
	var pr projectRow
	dest := append([]interface{}{&a.ID, &a.ProjectID, &a.DeveloperID, &status, &a.CreatedAt, &a.UpdatedAt}, pr.dest()...)
	if err := row.Scan(dest...); err != nil {
		return a, err
	}
	a.Status = models.ApplicationStatus(status)
	a.Project = pr.project()
	return a, nil
}

func (s *Store) listApplications(ctx context.Context, op, query string, args ...interface{}) ([]models.Application, error) {
	var out []models.Application
	err := s.queryRows(ctx, op, query, func(row rowScanner) error {
		a, err := scanApplication(row)
		if err != nil {
			return err
		}
		out = append(out, a)
		return nil
	}, args...)
	return out, err
}

// ListApplications returns every application of the developer in submission order,
// each with its project and owning organization embedded.
func (s *Store) ListApplications(ctx context.Context, developerID string) ([]models.Application, error) {
	return s.listApplications(ctx, "list applications", listApplicationsQuery, developerID)
}

// ListAcceptedApplications returns the developer's accepted applications in submission order.
func (s *Store) ListAcceptedApplications(ctx context.Context, developerID string) ([]models.Application, error) {
	return s.listApplications(ctx, "list accepted applications", listApplicationsByStatusQuery,
		developerID, string(models.ApplicationAccepted))
}

const listProjectTeamQuery = `
SELECT pr.id, COALESCE(pr.organization_name, ''), COALESCE(pr.first_name, ''), COALESCE(pr.last_name, ''),
       COALESCE(pr.avatar_url, ''), COALESCE(pr.role, 'developer')
FROM applications a
JOIN profiles pr ON pr.id = a.developer_id
WHERE a.project_id = $1 AND a.status = 'accepted'
ORDER BY a.updated_at ASC`

// ListProjectTeam returns the developers accepted onto a project.
func (s *Store) ListProjectTeam(ctx context.Context, projectID string) ([]models.ProfileRef, error) {
	var out []models.ProfileRef
	err := s.queryRows(ctx, "list project team", listProjectTeamQuery, func(row rowScanner) error {
		var ref models.ProfileRef
		var orgName, first, last, role string
		if err := row.Scan(&ref.ID, &orgName, &first, &last, &ref.AvatarURL, &role); err != nil {
			return err
		}
		ref.DisplayName = models.DisplayName(orgName, first, last)
		ref.Role = models.Role(role)
		out = append(out, ref)
		return nil
	}, projectID)
	return out, err
}

const countApplicationsByStatusQuery = `
SELECT a.status, COUNT(*)
FROM applications a
JOIN projects p ON p.id = a.project_id
WHERE p.organization_id = $1
GROUP BY a.status`

// CountApplicationsByStatus counts applications received on an organization's projects.
func (s *Store) CountApplicationsByStatus(ctx context.Context, organizationID string) (map[models.ApplicationStatus]int, error) {
	out := make(map[models.ApplicationStatus]int)
	err := s.queryRows(ctx, "count applications by status", countApplicationsByStatusQuery, func(row rowScanner) error {
		var status string
		var n int
		if err := row.Scan(&status, &n); err != nil {
			return err
		}
		out[models.ApplicationStatus(status)] = n
		return nil
	}, organizationID)
	return out, err
}

const countActiveDevelopersQuery = `
SELECT COUNT(DISTINCT a.developer_id)
FROM applications a
JOIN projects p ON p.id = a.project_id
WHERE p.organization_id = $1 AND a.status = 'accepted'`

// CountActiveDevelopers counts distinct developers accepted onto the organization's projects.
func (s *Store) CountActiveDevelopers(ctx context.Context, organizationID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, countActiveDevelopersQuery, organizationID).Scan(&n)
	return n, classify("count active developers", err)
}

