// internal/store/feedback.go
package store

import (
	"context"
	"database/sql"

	"devtogether/internal/models"
)

const developerFeedbackQuery = `
SELECT AVG(rating)::float8, COUNT(*)
FROM organization_feedback
WHERE developer_id = $1`

const organizationFeedbackQuery = `
SELECT AVG(rating)::float8, COUNT(*)
FROM organization_feedback
WHERE organization_id = $1`

// DeveloperFeedback summarises ratings organizations have given a developer.
func (s *Store) DeveloperFeedback(ctx context.Context, developerID string) (models.FeedbackSummary, error) {
	return s.feedback(ctx, "developer feedback", developerFeedbackQuery, developerID)
}

// OrganizationFeedback summarises ratings an organization has given across its projects.
func (s *Store) OrganizationFeedback(ctx context.Context, organizationID string) (models.FeedbackSummary, error) {
	return s.feedback(ctx, "organization feedback", organizationFeedbackQuery, organizationID)
}

func (s *Store) feedback(ctx context.Context, op, query, id string) (models.FeedbackSummary, error) {
	var avg sql.NullFloat64
	var n int
	if err := s.db.QueryRowContext(ctx, query, id).Scan(&avg, &n); err != nil {
		return models.FeedbackSummary{}, classify(op, err)
	}
	return models.FeedbackSummary{AverageRating: avg.Float64, Count: n}, nil
}
