// internal/models/profile_stats.go
package models

import (
	"strings"
	"time"
)

type ProfileStats struct {
	TotalApplications    int       `json:"totalApplications"`
	AcceptedApplications int       `json:"acceptedApplications"`
	ActiveProjects       int       `json:"activeProjects"`
	CompletedProjects    int       `json:"completedProjects"`
	AcceptanceRate       int       `json:"acceptanceRate"`
	PlatformDays         int       `json:"platformDays"`
	ProfileViews         int       `json:"profileViews"`
	MemberSince          time.Time `json:"memberSince"`
	LastActive           time.Time `json:"lastActive"`
	AverageRating        float64   `json:"averageRating"`
	FeedbackCount        int       `json:"feedbackCount"`
}

type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
	SkillExpert       SkillLevel = "expert"
)

type SkillProficiency struct {
	Skill        string     `json:"skill"`
	Level        SkillLevel `json:"level"`
	ProjectCount int        `json:"projectCount"`
	RecentUsage  bool       `json:"recentUsage"`
}

type PortfolioStatus string

const (
	PortfolioActive    PortfolioStatus = "active"
	PortfolioCompleted PortfolioStatus = "completed"
)

type PortfolioItem struct {
	ProjectID        string          `json:"projectId"`
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	OrganizationName string          `json:"organizationName"`
	TechnologyStack  []string        `json:"technologyStack"`
	Status           PortfolioStatus `json:"status"`
	JoinedAt         time.Time       `json:"joinedAt"`
	CompletedAt      *time.Time      `json:"completedAt,omitempty"`
}

// FallbackTokenPrefix marks share tokens issued while sharing storage is unavailable.
const FallbackTokenPrefix = "fallback-"

type ShareableProfile struct {
	UserID     string `json:"userId"`
	ShareToken string `json:"shareToken"`
	ShareURL   string `json:"shareUrl"`
	QRCodeURL  string `json:"qrCodeUrl"`
	IsPublic   bool   `json:"isPublic"`
}

// IsFallback reports whether the link was issued in degraded mode.
func (s ShareableProfile) IsFallback() bool {
	return IsFallbackToken(s.ShareToken)
}

func IsFallbackToken(token string) bool {
	return strings.HasPrefix(token, FallbackTokenPrefix)
}

type OrganizationStats struct {
	OrganizationID       string  `json:"organizationId"`
	TotalProjects        int     `json:"totalProjects"`
	OpenProjects         int     `json:"openProjects"`
	InProgressProjects   int     `json:"inProgressProjects"`
	CompletedProjects    int     `json:"completedProjects"`
	TotalApplications    int     `json:"totalApplications"`
	PendingApplications  int     `json:"pendingApplications"`
	AcceptedApplications int     `json:"acceptedApplications"`
	ActiveDevelopers     int     `json:"activeDevelopers"`
	AverageRating        float64 `json:"averageRating"`
	FeedbackCount        int     `json:"feedbackCount"`
	ProfileViews         int     `json:"profileViews"`
}
