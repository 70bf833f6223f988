// internal/store/messages.go
package store

import (
	"context"

	"devtogether/internal/models"

	"github.com/lib/pq"
)

const messageColumns = `m.id, m.project_id, COALESCE(p.title, ''), m.sender_id,
       COALESCE(s.organization_name, ''), COALESCE(s.first_name, ''), COALESCE(s.last_name, ''),
       COALESCE(m.content, ''), m.created_at
FROM messages m
LEFT JOIN projects p ON p.id = m.project_id
LEFT JOIN profiles s ON s.id = m.sender_id`

const listMessagesSentByQuery = `
SELECT ` + messageColumns + `
WHERE m.sender_id = $1
ORDER BY m.created_at DESC
LIMIT $2`

const listMessagesInProjectsQuery = `
SELECT ` + messageColumns + `
WHERE m.project_id::text = ANY($1)
ORDER BY m.created_at DESC
LIMIT $2`

func scanMessage(row rowScanner) (models.Message, error) {
	var m models.Message
	var orgName, first, last string
	err := row.Scan(&m.ID, &m.ProjectID, &m.ProjectTitle, &m.SenderID, &orgName, &first, &last, &m.Content, &m.CreatedAt)
	m.SenderName = models.DisplayName(orgName, first, last)
	return m, err
}

func (s *Store) listMessages(ctx context.Context, op, query string, args ...interface{}) ([]models.Message, error) {
	var out []models.Message
	err := s.queryRows(ctx, op, query, func(row rowScanner) error {
		m, err := scanMessage(row)
		if err != nil {
			return err
		}
		out = append(out, m)
		return nil
	}, args...)
	return out, err
}

// ListMessagesSentBy returns the newest messages sent by userID.
func (s *Store) ListMessagesSentBy(ctx context.Context, userID string, limit int) ([]models.Message, error) {
	return s.listMessages(ctx, "list messages sent", listMessagesSentByQuery, userID, limit)
}

// ListMessagesInProjects returns the newest messages posted on any of projectIDs.
func (s *Store) ListMessagesInProjects(ctx context.Context, projectIDs []string, limit int) ([]models.Message, error) {
	if len(projectIDs) == 0 {
		return nil, nil
	}
	return s.listMessages(ctx, "list project messages", listMessagesInProjectsQuery, pq.Array(projectIDs), limit)
}
