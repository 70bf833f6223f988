package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"devtogether/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	created = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	updated = time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db), mock
}

var applicationRowColumns = []string{
	"id", "project_id", "developer_id", "status", "created_at", "updated_at",
	"p_id", "organization_id", "title", "description", "technology_stack", "p_status", "deadline", "p_created_at", "p_updated_at",
	"o_id", "organization_name", "first_name", "last_name", "avatar_url", "role",
}

// ==========================================
// Applications
// ==========================================

func TestListApplications_EmbedsProjectAndOrganization(t *testing.T) {
	s, mock := newMockStore(t)

	rows := sqlmock.NewRows(applicationRowColumns).
		AddRow("app-1", "proj-1", "dev-1", "accepted", created, updated,
			"proj-1", "org-1", "Food Bank App", "desc", "{React,Go}", "in_progress", nil, created, updated,
			"org-1", "", "Ada", "Lovelace", "https://cdn/ada.png", "organization").
		AddRow("app-2", "proj-gone", "dev-1", "pending", created, created,
			nil, nil, nil, "", nil, nil, nil, nil, nil,
			nil, "", "", "", "", "")

	mock.ExpectQuery(regexp.QuoteMeta("FROM applications a")).
		WithArgs("dev-1").
		WillReturnRows(rows)

	apps, err := s.ListApplications(context.Background(), "dev-1")
	require.NoError(t, err)
	require.Len(t, apps, 2)

	first := apps[0]
	assert.Equal(t, models.ApplicationAccepted, first.Status)
	require.NotNil(t, first.Project)
	assert.Equal(t, "Food Bank App", first.Project.Title)
	assert.Equal(t, []string{"React", "Go"}, first.Project.TechnologyStack)
	assert.Equal(t, models.ProjectInProgress, first.Project.Status)
	assert.Nil(t, first.Project.Deadline)
	require.NotNil(t, first.Project.Organization)
	assert.Equal(t, "Ada Lovelace", first.Project.Organization.DisplayName)

	assert.Nil(t, apps[1].Project, "dangling project reference should not be embedded")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAcceptedApplications_FiltersByStatus(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE a.developer_id = $1 AND a.status = $2")).
		WithArgs("dev-1", "accepted").
		WillReturnRows(sqlmock.NewRows(applicationRowColumns))

	apps, err := s.ListAcceptedApplications(context.Background(), "dev-1")
	require.NoError(t, err)
	assert.Empty(t, apps)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListApplications_QueryError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM applications a")).
		WithArgs("dev-1").
		WillReturnError(errors.New("connection reset"))

	_, err := s.ListApplications(context.Background(), "dev-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list applications")
	assert.False(t, IsSchemaMissing(err))
}

func TestListProjectTeam(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE a.project_id = $1 AND a.status = 'accepted'")).
		WithArgs("proj-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "organization_name", "first_name", "last_name", "avatar_url", "role"}).
			AddRow("dev-1", "", "Grace", "Hopper", "", "developer").
			AddRow("dev-2", "", "Linus", "", "https://cdn/l.png", "developer"))

	team, err := s.ListProjectTeam(context.Background(), "proj-1")
	require.NoError(t, err)
	require.Len(t, team, 2)
	assert.Equal(t, "Grace Hopper", team[0].DisplayName)
	assert.Equal(t, "Linus", team[1].DisplayName)
	assert.Equal(t, models.RoleDeveloper, team[1].Role)
}

func TestCountApplicationsByStatus(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY a.status")).
		WithArgs("org-1").
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("pending", 4).
			AddRow("accepted", 2))

	counts, err := s.CountApplicationsByStatus(context.Background(), "org-1")
	require.NoError(t, err)
	assert.Equal(t, 4, counts[models.ApplicationPending])
	assert.Equal(t, 2, counts[models.ApplicationAccepted])
	assert.Equal(t, 0, counts[models.ApplicationRejected])
}

// ==========================================
// Projects
// ==========================================

func TestListOpenProjects_ExcludesAppliedIDs(t *testing.T) {
	s, mock := newMockStore(t)

	deadline := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE p.status = 'open' AND NOT (p.id::text = ANY($1))")).
		WithArgs(pq.Array([]string{"proj-1"})).
		WillReturnRows(sqlmock.NewRows(applicationRowColumns[6:]).
			AddRow("proj-2", "org-1", "Shelter Finder", "", "{Vue}", "open", deadline, created, created,
				"org-1", "Helping Hands", "", "", "", "organization"))

	projects, err := s.ListOpenProjects(context.Background(), []string{"proj-1"})
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, "Helping Hands", projects[0].OrganizationName())
	require.NotNil(t, projects[0].Deadline)
	assert.True(t, deadline.Equal(*projects[0].Deadline))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListOpenProjects_NilExcludeBecomesEmptyArray(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM projects p")).
		WithArgs(pq.Array([]string{})).
		WillReturnRows(sqlmock.NewRows(applicationRowColumns[6:]))

	projects, err := s.ListOpenProjects(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, projects)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListProjectsForIndex_Keyset(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE p.id::text > $1")).
		WithArgs("proj-100", 50).
		WillReturnRows(sqlmock.NewRows(applicationRowColumns[6:]))

	_, err := s.ListProjectsForIndex(context.Background(), "proj-100", 50)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================================
// Profiles
// ==========================================

func TestGetProfileTenure_SchemaMissing(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT created_at, updated_at, profile_views FROM profiles")).
		WithArgs("dev-1").
		WillReturnError(&pq.Error{Code: "42703", Message: `column "profile_views" does not exist`})

	_, err := s.GetProfileTenure(context.Background(), "dev-1")
	require.Error(t, err)
	assert.True(t, IsSchemaMissing(err))
}

func TestGetProfileTenure_NullableColumns(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT created_at, updated_at, profile_views FROM profiles")).
		WithArgs("dev-1").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at", "profile_views"}).
			AddRow(created, nil, nil))

	tenure, err := s.GetProfileTenure(context.Background(), "dev-1")
	require.NoError(t, err)
	assert.Equal(t, created, tenure.UpdatedAt)
	assert.Nil(t, tenure.ProfileViews)
}

func TestGetProfileCreatedAt_NotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT created_at FROM profiles")).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := s.GetProfileCreatedAt(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetSkills(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT skills FROM profiles")).
		WithArgs("dev-1").
		WillReturnRows(sqlmock.NewRows([]string{"skills"}).AddRow(`{React,"Node.js",PostgreSQL}`))

	skills, err := s.GetSkills(context.Background(), "dev-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"React", "Node.js", "PostgreSQL"}, skills)
}

func TestGetIsPublic_NullDefaultsToPublic(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT is_public FROM profiles")).
		WithArgs("dev-1").
		WillReturnRows(sqlmock.NewRows([]string{"is_public"}).AddRow(nil))

	isPublic, err := s.GetIsPublic(context.Background(), "dev-1")
	require.NoError(t, err)
	assert.True(t, isPublic)
}

func TestSetShareToken(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE profiles SET share_token = $2 WHERE id = $1")).
		WithArgs("dev-1", "tok").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, s.SetShareToken(context.Background(), "dev-1", "tok"))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE profiles SET share_token")).
		WithArgs("ghost", "tok").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, s.SetShareToken(context.Background(), "ghost", "tok"), ErrNotFound)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE profiles SET share_token")).
		WithArgs("dev-1", "tok").
		WillReturnError(&pq.Error{Code: "42703", Message: `column "share_token" does not exist`})
	assert.True(t, IsSchemaMissing(s.SetShareToken(context.Background(), "dev-1", "tok")))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProfileByShareToken(t *testing.T) {
	s, mock := newMockStore(t)

	columns := []string{"id", "role", "first_name", "last_name", "organization_name", "avatar_url", "skills",
		"location", "bio", "github_url", "linkedin_url", "portfolio_url", "is_public", "created_at", "updated_at"}
	mock.ExpectQuery(regexp.QuoteMeta("WHERE share_token = $1")).
		WithArgs("tok").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("dev-1", "developer", "Grace", "Hopper", "", "", nil, "NYC", "", "", "", "", false, created, nil))

	p, err := s.GetProfileByShareToken(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "Grace Hopper", p.DisplayName())
	assert.False(t, p.IsPublic)
	assert.Equal(t, []string{}, p.Skills)
	assert.Equal(t, created, p.UpdatedAt)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE share_token = $1")).
		WithArgs("unknown").
		WillReturnError(sql.ErrNoRows)
	_, err = s.GetProfileByShareToken(context.Background(), "unknown")
	assert.ErrorIs(t, err, ErrNotFound)
}

// ==========================================
// Messages, feedback, analytics
// ==========================================

func TestListMessagesSentBy(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE m.sender_id = $1")).
		WithArgs("dev-1", 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "project_id", "title", "sender_id", "organization_name", "first_name", "last_name", "content", "created_at"}).
			AddRow("msg-1", "proj-1", "Food Bank App", "dev-1", "", "Grace", "Hopper", "hello", created))

	msgs, err := s.ListMessagesSentBy(context.Background(), "dev-1", 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Grace Hopper", msgs[0].SenderName)
	assert.Equal(t, "Food Bank App", msgs[0].ProjectTitle)
}

func TestListMessagesInProjects_EmptyIDsSkipsQuery(t *testing.T) {
	s, mock := newMockStore(t)

	msgs, err := s.ListMessagesInProjects(context.Background(), nil, 10)
	require.NoError(t, err)
	assert.Nil(t, msgs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeveloperFeedback_NoRows(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE developer_id = $1")).
		WithArgs("dev-1").
		WillReturnRows(sqlmock.NewRows([]string{"avg", "count"}).AddRow(nil, 0))

	summary, err := s.DeveloperFeedback(context.Background(), "dev-1")
	require.NoError(t, err)
	assert.Equal(t, models.FeedbackSummary{}, summary)
}

func TestIncrementProfileViews_FunctionMissing(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta("SELECT increment_profile_views($1)")).
		WithArgs("dev-1").
		WillReturnError(&pq.Error{Code: "42883", Message: "function increment_profile_views(uuid) does not exist"})

	err := s.IncrementProfileViews(context.Background(), "dev-1")
	assert.True(t, IsSchemaMissing(err))
}

func TestRecordProfileView_AnonymousViewer(t *testing.T) {
	s, mock := newMockStore(t)

	viewedAt := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO profile_analytics")).
		WithArgs("dev-1", nil, viewedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := s.RecordProfileView(context.Background(), models.ProfileView{ProfileID: "dev-1", ViewedAt: viewedAt})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
