// internal/store/profiles.go
package store

import (
	"context"
	"database/sql"
	"time"

	"devtogether/internal/models"

	"github.com/lib/pq"
)

const getSkillsQuery = `SELECT skills FROM profiles WHERE id = $1`

// GetSkills returns the declared skills of a profile.
func (s *Store) GetSkills(ctx context.Context, userID string) ([]string, error) {
	var skills pq.StringArray
	if err := s.db.QueryRowContext(ctx, getSkillsQuery, userID).Scan(&skills); err != nil {
		return nil, classify("get skills", err)
	}
	return []string(skills), nil
}

const getProfileRefQuery = `
SELECT id, COALESCE(organization_name, ''), COALESCE(first_name, ''), COALESCE(last_name, ''),
       COALESCE(avatar_url, ''), COALESCE(role, '')
FROM profiles
WHERE id = $1`

// GetProfileRef resolves the display name and avatar of a profile.
func (s *Store) GetProfileRef(ctx context.Context, id string) (*models.ProfileRef, error) {
	var ref models.ProfileRef
	var orgName, first, last, role string
	err := s.db.QueryRowContext(ctx, getProfileRefQuery, id).Scan(&ref.ID, &orgName, &first, &last, &ref.AvatarURL, &role)
	if err != nil {
		return nil, classify("get profile ref", err)
	}
	ref.DisplayName = models.DisplayName(orgName, first, last)
	ref.Role = models.Role(role)
	return &ref, nil
}

// profile_views and updated_at are added by a later migration.
const getProfileTenureQuery = `SELECT created_at, updated_at, profile_views FROM profiles WHERE id = $1`

const getProfileCreatedAtQuery = `SELECT created_at FROM profiles WHERE id = $1`

// GetProfileTenure reads the optional tenure columns. It fails with ErrSchemaMissing
// when they have not been provisioned.
func (s *Store) GetProfileTenure(ctx context.Context, userID string) (*models.ProfileTenure, error) {
	var created time.Time
	var updated sql.NullTime
	var views sql.NullInt64
	if err := s.db.QueryRowContext(ctx, getProfileTenureQuery, userID).Scan(&created, &updated, &views); err != nil {
		return nil, classify("get profile tenure", err)
	}

	t := &models.ProfileTenure{CreatedAt: created, UpdatedAt: created}
	if updated.Valid {
		t.UpdatedAt = updated.Time
	}
	if views.Valid {
		n := int(views.Int64)
		t.ProfileViews = &n
	}
	return t, nil
}

// GetProfileCreatedAt reads only the guaranteed created_at column.
func (s *Store) GetProfileCreatedAt(ctx context.Context, userID string) (time.Time, error) {
	var created time.Time
	err := s.db.QueryRowContext(ctx, getProfileCreatedAtQuery, userID).Scan(&created)
	return created, classify("get profile created_at", err)
}

const setShareTokenQuery = `UPDATE profiles SET share_token = $2 WHERE id = $1`

// SetShareToken stores token for the profile.
func (s *Store) SetShareToken(ctx context.Context, userID, token string) error {
	res, err := s.db.ExecContext(ctx, setShareTokenQuery, userID, token)
	if err != nil {
		return classify("set share token", err)
	}
	return requireAffected("set share token", res)
}

const getIsPublicQuery = `SELECT is_public FROM profiles WHERE id = $1`

// GetIsPublic reads the visibility flag; NULL is treated as public.
func (s *Store) GetIsPublic(ctx context.Context, userID string) (bool, error) {
	var isPublic sql.NullBool
	if err := s.db.QueryRowContext(ctx, getIsPublicQuery, userID).Scan(&isPublic); err != nil {
		return true, classify("get is_public", err)
	}
	return !isPublic.Valid || isPublic.Bool, nil
}

const updateIsPublicQuery = `UPDATE profiles SET is_public = $2, updated_at = NOW() WHERE id = $1`

// UpdateIsPublic sets the visibility flag.
func (s *Store) UpdateIsPublic(ctx context.Context, userID string, isPublic bool) error {
	res, err := s.db.ExecContext(ctx, updateIsPublicQuery, userID, isPublic)
	if err != nil {
		return classify("update is_public", err)
	}
	return requireAffected("update is_public", res)
}

const getProfileByShareTokenQuery = `
SELECT id, COALESCE(role, ''), COALESCE(first_name, ''), COALESCE(last_name, ''), COALESCE(organization_name, ''),
       COALESCE(avatar_url, ''), skills, COALESCE(location, ''), COALESCE(bio, ''),
       COALESCE(github_url, ''), COALESCE(linkedin_url, ''), COALESCE(portfolio_url, ''),
       COALESCE(is_public, true), created_at, updated_at
FROM profiles
WHERE share_token = $1`

// GetProfileByShareToken returns the profile holding token. Email is never selected.
func (s *Store) GetProfileByShareToken(ctx context.Context, token string) (*models.Profile, error) {
	var p models.Profile
	var role string
	var skills pq.StringArray
	var updated sql.NullTime
	err := s.db.QueryRowContext(ctx, getProfileByShareTokenQuery, token).Scan(
		&p.ID, &role, &p.FirstName, &p.LastName, &p.OrganizationName,
		&p.AvatarURL, &skills, &p.Location, &p.Bio,
		&p.GithubURL, &p.LinkedinURL, &p.PortfolioURL,
		&p.IsPublic, &p.CreatedAt, &updated,
	)
	if err != nil {
		return nil, classify("get profile by share token", err)
	}
	p.Role = models.Role(role)
	p.Skills = []string(skills)
	if p.Skills == nil {
		p.Skills = []string{}
	}
	p.UpdatedAt = p.CreatedAt
	if updated.Valid {
		p.UpdatedAt = updated.Time
	}
	return &p, nil
}

func requireAffected(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return classify(op, err)
	}
	if n == 0 {
		return classify(op, sql.ErrNoRows)
	}
	return nil
}
