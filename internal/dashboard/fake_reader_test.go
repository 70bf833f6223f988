package dashboard

import (
	"context"
	"sync"
	"time"

	"devtogether/internal/models"
	"devtogether/internal/store"
)

var now = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func ago(d time.Duration) time.Time { return now.Add(-d) }

const day = 24 * time.Hour

// fakeReader is an in-memory Reader. errs maps a method name to the error it returns.
type fakeReader struct {
	mu sync.Mutex

	apps            []models.Application
	skills          []string
	openProjects    []models.Project
	teams           map[string][]models.ProfileRef
	profiles        map[string]models.ProfileRef
	sent            []models.Message
	projectMessages []models.Message
	errs            map[string]error

	calls       map[string]int
	lastExclude []string
}

func (f *fakeReader) record(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[method]++
	return f.errs[method]
}

func (f *fakeReader) callCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeReader) ListApplications(ctx context.Context, developerID string) ([]models.Application, error) {
	if err := f.record("ListApplications"); err != nil {
		return nil, err
	}
	return f.apps, nil
}

func (f *fakeReader) ListAcceptedApplications(ctx context.Context, developerID string) ([]models.Application, error) {
	if err := f.record("ListAcceptedApplications"); err != nil {
		return nil, err
	}
	return acceptedOnly(f.apps), nil
}

func (f *fakeReader) GetProfileRef(ctx context.Context, id string) (*models.ProfileRef, error) {
	if err := f.record("GetProfileRef"); err != nil {
		return nil, err
	}
	ref, ok := f.profiles[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &ref, nil
}

func (f *fakeReader) ListProjectTeam(ctx context.Context, projectID string) ([]models.ProfileRef, error) {
	if err := f.record("ListProjectTeam"); err != nil {
		return nil, err
	}
	return f.teams[projectID], nil
}

func (f *fakeReader) GetSkills(ctx context.Context, userID string) ([]string, error) {
	if err := f.record("GetSkills"); err != nil {
		return nil, err
	}
	return f.skills, nil
}

func (f *fakeReader) ListOpenProjects(ctx context.Context, excludeIDs []string) ([]models.Project, error) {
	if err := f.record("ListOpenProjects"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.lastExclude = excludeIDs
	f.mu.Unlock()
	// returns everything so callers must filter applied projects themselves
	return f.openProjects, nil
}

func (f *fakeReader) ListMessagesSentBy(ctx context.Context, userID string, limit int) ([]models.Message, error) {
	if err := f.record("ListMessagesSentBy"); err != nil {
		return nil, err
	}
	return f.sent, nil
}

func (f *fakeReader) ListMessagesInProjects(ctx context.Context, projectIDs []string, limit int) ([]models.Message, error) {
	if err := f.record("ListMessagesInProjects"); err != nil {
		return nil, err
	}
	ids := make(map[string]bool)
	for _, id := range projectIDs {
		ids[id] = true
	}
	var out []models.Message
	for _, m := range f.projectMessages {
		if ids[m.ProjectID] {
			out = append(out, m)
		}
	}
	return out, nil
}

func application(id, projectID string, status models.ApplicationStatus, createdAt, updatedAt time.Time, project *models.Project) models.Application {
	return models.Application{
		ID:          id,
		ProjectID:   projectID,
		DeveloperID: "dev-1",
		Status:      status,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
		Project:     project,
	}
}

func project(id string, status models.ProjectStatus, stack ...string) *models.Project {
	return &models.Project{
		ID:              id,
		OrganizationID:  "org-1",
		Title:           "Project " + id,
		TechnologyStack: stack,
		Status:          status,
		CreatedAt:       ago(30 * day),
		UpdatedAt:       ago(2 * day),
		Organization:    &models.ProfileRef{ID: "org-1", DisplayName: "Helping Hands", Role: models.RoleOrganization},
	}
}
