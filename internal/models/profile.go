// internal/models/profile.go
package models

import (
	"strings"
	"time"
)

type Role string

const (
	RoleDeveloper    Role = "developer"
	RoleOrganization Role = "organization"
	RoleAdmin        Role = "admin"
)

// Profile is the identity record shared by developers, organizations and admins.
type Profile struct {
	ID               string    `json:"id"`
	Role             Role      `json:"role"`
	FirstName        string    `json:"firstName,omitempty"`
	LastName         string    `json:"lastName,omitempty"`
	OrganizationName string    `json:"organizationName,omitempty"`
	Email            string    `json:"email,omitempty"`
	AvatarURL        string    `json:"avatarUrl,omitempty"`
	Skills           []string  `json:"skills"`
	Location         string    `json:"location,omitempty"`
	Bio              string    `json:"bio,omitempty"`
	GithubURL        string    `json:"githubUrl,omitempty"`
	LinkedinURL      string    `json:"linkedinUrl,omitempty"`
	PortfolioURL     string    `json:"portfolioUrl,omitempty"`
	IsPublic         bool      `json:"isPublic"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// DisplayName prefers the organization name and falls back to "first last".
func (p Profile) DisplayName() string {
	return DisplayName(p.OrganizationName, p.FirstName, p.LastName)
}

// DisplayName applies the naming rule used wherever a profile is rendered by name.
func DisplayName(organizationName, firstName, lastName string) string {
	if name := strings.TrimSpace(organizationName); name != "" {
		return name
	}
	return strings.TrimSpace(strings.TrimSpace(firstName) + " " + strings.TrimSpace(lastName))
}

// ProfileRef is the embedded summary of a related profile.
type ProfileRef struct {
	ID          string `json:"id"`
	DisplayName string `json:"name"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
	Role        Role   `json:"role,omitempty"`
}

// ProfileTenure holds the optional profile columns read for tenure and view counts.
// ProfileViews is nil when the column could not be read.
type ProfileTenure struct {
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ProfileViews *int
}

type PrivacySettings struct {
	IsPublic bool `json:"isPublic"`
}

// FeedbackSummary aggregates organization_feedback ratings.
type FeedbackSummary struct {
	AverageRating float64 `json:"averageRating"`
	Count         int     `json:"count"`
}
