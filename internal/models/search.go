// internal/models/search.go
package models

import "time"

// ProjectDocument is the search-index representation of a project.
type ProjectDocument struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	TechnologyStack  []string   `json:"technology_stack"`
	Status           string     `json:"status"`
	OrganizationID   string     `json:"organization_id"`
	OrganizationName string     `json:"organization_name"`
	Deadline         *time.Time `json:"deadline,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// NewProjectDocument flattens a project with its embedded organization.
func NewProjectDocument(p Project) ProjectDocument {
	return ProjectDocument{
		ID:               p.ID,
		Title:            p.Title,
		Description:      p.Description,
		TechnologyStack:  p.TechnologyStack,
		Status:           string(p.Status),
		OrganizationID:   p.OrganizationID,
		OrganizationName: p.OrganizationName(),
		Deadline:         p.Deadline,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

// ProjectFilter mirrors the browse page filter panel.
type ProjectFilter struct {
	Query          string   `json:"query,omitempty"`
	Technologies   []string `json:"technologies,omitempty"`
	Statuses       []string `json:"statuses,omitempty"`
	OrganizationID string   `json:"organizationId,omitempty"`
	Page           int      `json:"page"`
	PageSize       int      `json:"pageSize"`
}

type ProjectSearchHit struct {
	ProjectDocument
	Score float64 `json:"score"`
}

type ProjectSearchResult struct {
	Total    int                `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"pageSize"`
	MaxScore float64            `json:"maxScore"`
	Hits     []ProjectSearchHit `json:"hits"`
}
