// internal/models/dashboard.go
package models

import "time"

type DeveloperStats struct {
	TotalApplications    int `json:"totalApplications"`
	PendingApplications  int `json:"pendingApplications"`
	AcceptedApplications int `json:"acceptedApplications"`
	RejectedApplications int `json:"rejectedApplications"`
	ActiveProjects       int `json:"activeProjects"`
	CompletedProjects    int `json:"completedProjects"`
	AcceptanceRate       int `json:"acceptanceRate"`
}

type TeamMember struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	Role      Role   `json:"role"`
}

type ActiveProject struct {
	ID                 string        `json:"id"`
	Title              string        `json:"title"`
	Description        string        `json:"description"`
	Status             ProjectStatus `json:"status"`
	TechnologyStack    []string      `json:"technologyStack"`
	OrganizationID     string        `json:"organizationId"`
	OrganizationName   string        `json:"organizationName"`
	OrganizationAvatar string        `json:"organizationAvatar,omitempty"`
	Progress           int           `json:"progress"`
	DueDate            string        `json:"dueDate"`
	Deadline           *time.Time    `json:"deadline,omitempty"`
	JoinedAt           time.Time     `json:"joinedAt"`
	TeamMembers        []TeamMember  `json:"teamMembers"`
}

type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Achieved    bool   `json:"achieved"`
	Progress    *int   `json:"progress,omitempty"`
	MaxProgress *int   `json:"maxProgress,omitempty"`
}

// RecentAchievement carries an inferred earn time. Approximate is set when no history
// row dates the unlock and EarnedAt is the time of the request.
type RecentAchievement struct {
	Achievement
	EarnedAt    time.Time `json:"earnedAt"`
	Approximate bool      `json:"approximate"`
}

type ActivityType string

const (
	ActivityApplicationSubmitted ActivityType = "application_submitted"
	ActivityApplicationAccepted  ActivityType = "application_accepted"
	ActivityApplicationRejected  ActivityType = "application_rejected"
	ActivityMessageSent          ActivityType = "message_sent"
	ActivityMessageReceived      ActivityType = "message_received"
)

type ActivityItem struct {
	ID           string       `json:"id"`
	Type         ActivityType `json:"type"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	ProjectID    string       `json:"projectId,omitempty"`
	ProjectTitle string       `json:"projectTitle,omitempty"`
	Timestamp    time.Time    `json:"timestamp"`
	RelativeTime string       `json:"relativeTime"`
}

type RecommendedProject struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	OrganizationID   string     `json:"organizationId"`
	OrganizationName string     `json:"organizationName"`
	TechnologyStack  []string   `json:"technologyStack"`
	MatchScore       int        `json:"matchScore"`
	MatchingSkills   []string   `json:"matchingSkills"`
	Deadline         *time.Time `json:"deadline,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// DashboardSnapshot is the composed result of a dashboard refresh.
type DashboardSnapshot struct {
	DeveloperID        string               `json:"developerId"`
	Stats              DeveloperStats       `json:"stats"`
	ActiveProjects     []ActiveProject      `json:"activeProjects"`
	Achievements       []Achievement        `json:"achievements"`
	RecentAchievements []RecentAchievement  `json:"recentAchievements"`
	RecentActivity     []ActivityItem       `json:"recentActivity"`
	Recommendations    []RecommendedProject `json:"recommendations"`
	GeneratedAt        time.Time            `json:"generatedAt"`
}
