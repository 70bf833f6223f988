package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"devtogether/internal/common/metrics"
	"devtogether/internal/models"
)

const defaultViewDedupeWindow = 30 * time.Minute

// ViewEvent is published on the analytics channel for every counted view.
type ViewEvent struct {
	ProfileID string    `json:"profileId"`
	ViewerID  string    `json:"viewerId,omitempty"`
	ViewedAt  time.Time `json:"viewedAt"`
}

// TrackProfileView counts a view of profileID by viewerID. Self views are ignored and a
// known viewer is counted once per de-duplication window. Failures are logged only.
func (a *Aggregator) TrackProfileView(ctx context.Context, profileID, viewerID string) {
	const op = "profile.track_view"
	ctx, done := a.observe(ctx, op, profileID)
	defer done(nil)

	log := a.logger.WithFields(map[string]interface{}{
		"profileId": profileID,
		"viewerId":  viewerID,
	})

	if profileID == "" {
		return
	}
	if viewerID != "" && viewerID == profileID {
		metrics.ProfileViewsTracked.WithLabelValues("self").Inc()
		return
	}
	if !a.firstViewInWindow(ctx, profileID, viewerID) {
		metrics.ProfileViewsTracked.WithLabelValues("duplicate").Inc()
		return
	}

	viewedAt := a.now()
	if err := a.views.IncrementProfileViews(ctx, profileID); err != nil {
		log.Warn("Failed to increment profile views", map[string]interface{}{"error": err.Error()})
		metrics.Degraded(op, "profile_views")
	}
	view := models.ProfileView{ProfileID: profileID, ViewerID: viewerID, ViewedAt: viewedAt}
	if err := a.views.RecordProfileView(ctx, view); err != nil {
		log.Warn("Failed to record profile view", map[string]interface{}{"error": err.Error()})
		metrics.Degraded(op, "profile_analytics")
	}
	a.publishView(ctx, ViewEvent(view))

	metrics.ProfileViewsTracked.WithLabelValues("counted").Inc()
}

func viewKey(profileID, viewerID string) string {
	return fmt.Sprintf("profile-view:%s:%s", profileID, viewerID)
}

// firstViewInWindow claims the (profile, viewer) pair in Redis. Anonymous viewers, a
// missing Redis client and Redis errors all count the view.
func (a *Aggregator) firstViewInWindow(ctx context.Context, profileID, viewerID string) bool {
	if a.redis == nil || viewerID == "" {
		return true
	}
	window := time.Duration(a.cfg.Analytics.ViewDedupeWindow) * time.Millisecond
	if window <= 0 {
		window = defaultViewDedupeWindow
	}

	ok, err := a.redis.SetNX(ctx, viewKey(profileID, viewerID), a.now().Unix(), window).Result()
	if err != nil {
		a.logger.Warn("View de-duplication unavailable", map[string]interface{}{
			"profileId": profileID,
			"error":     err.Error(),
		})
		return true
	}
	return ok
}

func (a *Aggregator) publishView(ctx context.Context, event ViewEvent) {
	channel := a.cfg.Analytics.EventsChannel
	if a.redis == nil || channel == "" {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := a.redis.Publish(ctx, channel, payload).Err(); err != nil {
		a.logger.Warn("Failed to publish profile view", map[string]interface{}{
			"profileId": event.ProfileID,
			"channel":   channel,
			"error":     err.Error(),
		})
	}
}
