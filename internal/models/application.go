// internal/models/application.go
package models

import "time"

type ApplicationStatus string

const (
	ApplicationPending   ApplicationStatus = "pending"
	ApplicationAccepted  ApplicationStatus = "accepted"
	ApplicationRejected  ApplicationStatus = "rejected"
	ApplicationWithdrawn ApplicationStatus = "withdrawn"
	ApplicationRemoved   ApplicationStatus = "removed"
)

// Application links a developer to a project. Status transitions are read as
// committed facts.
type Application struct {
	ID          string            `json:"id"`
	ProjectID   string            `json:"projectId"`
	DeveloperID string            `json:"developerId"`
	Status      ApplicationStatus `json:"status"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`

	// Project is embedded by joined reads; nil when the project row is missing.
	Project *Project `json:"project,omitempty"`
}

// ProjectTitle returns the embedded project's title, or "" when absent.
func (a Application) ProjectTitle() string {
	if a.Project == nil {
		return ""
	}
	return a.Project.Title
}

type Message struct {
	ID           string    `json:"id"`
	ProjectID    string    `json:"projectId"`
	ProjectTitle string    `json:"projectTitle"`
	SenderID     string    `json:"senderId"`
	SenderName   string    `json:"senderName"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ProfileView is a row of profile_analytics.
type ProfileView struct {
	ProfileID string    `json:"profileId"`
	ViewerID  string    `json:"viewerId,omitempty"`
	ViewedAt  time.Time `json:"viewedAt"`
}
