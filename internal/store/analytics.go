// internal/store/analytics.go
package store

import (
	"context"
	"database/sql"

	"devtogether/internal/models"
)

const incrementProfileViewsQuery = `SELECT increment_profile_views($1)`

// IncrementProfileViews calls the atomic counter procedure.
func (s *Store) IncrementProfileViews(ctx context.Context, profileID string) error {
	_, err := s.db.ExecContext(ctx, incrementProfileViewsQuery, profileID)
	return classify("increment profile views", err)
}

const insertProfileViewQuery = `
INSERT INTO profile_analytics (profile_id, viewer_id, viewed_at)
VALUES ($1, $2, $3)`

// RecordProfileView appends a profile_analytics row. An empty viewer is stored as NULL.
func (s *Store) RecordProfileView(ctx context.Context, view models.ProfileView) error {
	viewer := sql.NullString{String: view.ViewerID, Valid: view.ViewerID != ""}
	_, err := s.db.ExecContext(ctx, insertProfileViewQuery, view.ProfileID, viewer, view.ViewedAt)
	return classify("record profile view", err)
}
