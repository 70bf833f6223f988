// internal/models/project.go
package models

import "time"

type ProjectStatus string

const (
	ProjectOpen       ProjectStatus = "open"
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectCompleted  ProjectStatus = "completed"
	ProjectCancelled  ProjectStatus = "cancelled"
	ProjectRejected   ProjectStatus = "rejected"
)

// IsActive reports whether the project is still being worked on.
func (s ProjectStatus) IsActive() bool {
	return s == ProjectOpen || s == ProjectInProgress
}

type Project struct {
	ID              string        `json:"id"`
	OrganizationID  string        `json:"organizationId"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	TechnologyStack []string      `json:"technologyStack"`
	Status          ProjectStatus `json:"status"`
	Deadline        *time.Time    `json:"deadline,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`

	// Organization is embedded by reads that join the owning profile.
	Organization *ProfileRef `json:"organization,omitempty"`
}

// OrganizationName returns the embedded organization's display name, if any.
func (p Project) OrganizationName() string {
	if p.Organization == nil {
		return ""
	}
	return p.Organization.DisplayName
}
