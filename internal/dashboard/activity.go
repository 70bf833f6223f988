package dashboard

import (
	"context"
	"fmt"
	"sort"
	"time"
	"unicode/utf8"

	apperrors "devtogether/internal/common/errors"
	"devtogether/internal/models"
)

const messagePreviewLength = 80

// ComputeRecentActivity merges application lifecycle events and message events into
// one feed, newest first. Items are ordered by their raw timestamp; RelativeTime is
// rendered afterwards for display only.
func (a *Aggregator) ComputeRecentActivity(ctx context.Context, developerID string, limit int) (out []models.ActivityItem, err error) {
	ctx, done := a.observe(ctx, "dashboard.activity", developerID)
	defer func() { done(err) }()

	limit = limitOr(limit, a.limits.ActivityLimit)

	apps, err := a.reader.ListApplications(ctx, developerID)
	if err != nil {
		return nil, apperrors.NewActivityQueryFailedError(developerID, wrapRead("applications", err))
	}

	items := applicationEvents(apps)

	sent, err := a.reader.ListMessagesSentBy(ctx, developerID, limit)
	if err != nil {
		return nil, apperrors.NewActivityQueryFailedError(developerID, wrapRead("sent messages", err))
	}

	var projectIDs []string
	for _, app := range acceptedOnly(apps) {
		projectIDs = append(projectIDs, app.ProjectID)
	}
	received, err := a.reader.ListMessagesInProjects(ctx, projectIDs, limit)
	if err != nil {
		return nil, apperrors.NewActivityQueryFailedError(developerID, wrapRead("project messages", err))
	}

	items = append(items, messageEvents(developerID, sent, received)...)

	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].Timestamp.Equal(items[j].Timestamp) {
			return items[i].Timestamp.After(items[j].Timestamp)
		}
		return items[i].ID < items[j].ID
	})
	if len(items) > limit {
		items = items[:limit]
	}

	now := a.now()
	for i := range items {
		items[i].RelativeTime = FormatRelativeTime(items[i].Timestamp, now)
	}
	return items, nil
}

func applicationEvents(apps []models.Application) []models.ActivityItem {
	items := make([]models.ActivityItem, 0, len(apps)*2)
	for _, app := range apps {
		title := app.ProjectTitle()
		if title == "" {
			title = "a project"
		}

		items = append(items, models.ActivityItem{
			ID:           "application-" + app.ID,
			Type:         models.ActivityApplicationSubmitted,
			Title:        "Application submitted",
			Description:  fmt.Sprintf("You applied to %s", title),
			ProjectID:    app.ProjectID,
			ProjectTitle: app.ProjectTitle(),
			Timestamp:    app.CreatedAt,
		})

		if !app.UpdatedAt.After(app.CreatedAt) {
			continue
		}
		switch app.Status {
		case models.ApplicationAccepted:
			items = append(items, models.ActivityItem{
				ID:           "application-" + app.ID + "-accepted",
				Type:         models.ActivityApplicationAccepted,
				Title:        "Application accepted",
				Description:  fmt.Sprintf("You were accepted to %s", title),
				ProjectID:    app.ProjectID,
				ProjectTitle: app.ProjectTitle(),
				Timestamp:    app.UpdatedAt,
			})
		case models.ApplicationRejected:
			items = append(items, models.ActivityItem{
				ID:           "application-" + app.ID + "-rejected",
				Type:         models.ActivityApplicationRejected,
				Title:        "Application not selected",
				Description:  fmt.Sprintf("Your application to %s was not selected", title),
				ProjectID:    app.ProjectID,
				ProjectTitle: app.ProjectTitle(),
				Timestamp:    app.UpdatedAt,
			})
		}
	}
	return items
}

// messageEvents merges both message streams, keeping each message id once.
func messageEvents(developerID string, streams ...[]models.Message) []models.ActivityItem {
	seen := make(map[string]bool)
	var items []models.ActivityItem
	for _, stream := range streams {
		for _, m := range stream {
			if seen[m.ID] {
				continue
			}
			seen[m.ID] = true

			item := models.ActivityItem{
				ID:           "message-" + m.ID,
				ProjectID:    m.ProjectID,
				ProjectTitle: m.ProjectTitle,
				Description:  preview(m.Content),
				Timestamp:    m.CreatedAt,
			}
			if m.SenderID == developerID {
				item.Type = models.ActivityMessageSent
				item.Title = fmt.Sprintf("You posted in %s", projectLabel(m.ProjectTitle))
			} else {
				item.Type = models.ActivityMessageReceived
				item.Title = fmt.Sprintf("%s posted in %s", senderLabel(m.SenderName), projectLabel(m.ProjectTitle))
			}
			items = append(items, item)
		}
	}
	return items
}

func projectLabel(title string) string {
	if title == "" {
		return "a project"
	}
	return title
}

func senderLabel(name string) string {
	if name == "" {
		return "Someone"
	}
	return name
}

func preview(content string) string {
	if utf8.RuneCountInString(content) <= messagePreviewLength {
		return content
	}
	runes := []rune(content)
	return string(runes[:messagePreviewLength]) + "..."
}

// FormatRelativeTime renders t relative to now: "Just now" under an hour, hours
// under a day, "Yesterday", days up to six, and the calendar date after that.
func FormatRelativeTime(t, now time.Time) string {
	d := now.Sub(t)
	if d < time.Hour {
		return "Just now"
	}
	if hours := int(d / time.Hour); hours < 24 {
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	}
	days := int(d / (24 * time.Hour))
	switch {
	case days == 1:
		return "Yesterday"
	case days <= 6:
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.Format(dueDateLayout)
	}
}
