package profile

import (
	"context"
	"sync"
	"testing"
	"time"

	"devtogether/internal/common/config"
	"devtogether/internal/common/logger"
	"devtogether/internal/models"
	"devtogether/internal/store"
)

var now = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

const day = 24 * time.Hour

func ago(d time.Duration) time.Time { return now.Add(-d) }

// fakeStore implements Reader and ViewRecorder in memory. errs maps a method name to
// the error it returns.
type fakeStore struct {
	mu sync.Mutex

	accepted     []models.Application
	skills       []string
	tenure       *models.ProfileTenure
	createdAt    time.Time
	feedback     models.FeedbackSummary
	isPublic     bool
	shared       map[string]*models.Profile
	projects     map[models.ProjectStatus]int
	applications map[models.ApplicationStatus]int
	developers   int
	errs         map[string]error

	tokens     map[string]string
	publicSet  *bool
	increments int
	recorded   []models.ProfileView
}

func (f *fakeStore) err(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errs[method]
}

func (f *fakeStore) ListAcceptedApplications(ctx context.Context, developerID string) ([]models.Application, error) {
	if err := f.err("ListAcceptedApplications"); err != nil {
		return nil, err
	}
	return f.accepted, nil
}

func (f *fakeStore) GetSkills(ctx context.Context, userID string) ([]string, error) {
	if err := f.err("GetSkills"); err != nil {
		return nil, err
	}
	return f.skills, nil
}

func (f *fakeStore) GetProfileTenure(ctx context.Context, userID string) (*models.ProfileTenure, error) {
	if err := f.err("GetProfileTenure"); err != nil {
		return nil, err
	}
	if f.tenure == nil {
		return nil, store.ErrNotFound
	}
	return f.tenure, nil
}

func (f *fakeStore) GetProfileCreatedAt(ctx context.Context, userID string) (time.Time, error) {
	if err := f.err("GetProfileCreatedAt"); err != nil {
		return time.Time{}, err
	}
	return f.createdAt, nil
}

func (f *fakeStore) DeveloperFeedback(ctx context.Context, developerID string) (models.FeedbackSummary, error) {
	if err := f.err("DeveloperFeedback"); err != nil {
		return models.FeedbackSummary{}, err
	}
	return f.feedback, nil
}

func (f *fakeStore) OrganizationFeedback(ctx context.Context, organizationID string) (models.FeedbackSummary, error) {
	if err := f.err("OrganizationFeedback"); err != nil {
		return models.FeedbackSummary{}, err
	}
	return f.feedback, nil
}

func (f *fakeStore) SetShareToken(ctx context.Context, userID, token string) error {
	if err := f.err("SetShareToken"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.tokens == nil {
		f.tokens = make(map[string]string)
	}
	f.tokens[userID] = token
	return nil
}

func (f *fakeStore) GetIsPublic(ctx context.Context, userID string) (bool, error) {
	if err := f.err("GetIsPublic"); err != nil {
		return true, err
	}
	return f.isPublic, nil
}

func (f *fakeStore) UpdateIsPublic(ctx context.Context, userID string, isPublic bool) error {
	if err := f.err("UpdateIsPublic"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.publicSet = &isPublic
	return nil
}

func (f *fakeStore) GetProfileByShareToken(ctx context.Context, token string) (*models.Profile, error) {
	if err := f.err("GetProfileByShareToken"); err != nil {
		return nil, err
	}
	p, ok := f.shared[token]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) CountProjectsByStatus(ctx context.Context, organizationID string) (map[models.ProjectStatus]int, error) {
	if err := f.err("CountProjectsByStatus"); err != nil {
		return nil, err
	}
	return f.projects, nil
}

func (f *fakeStore) CountApplicationsByStatus(ctx context.Context, organizationID string) (map[models.ApplicationStatus]int, error) {
	if err := f.err("CountApplicationsByStatus"); err != nil {
		return nil, err
	}
	return f.applications, nil
}

func (f *fakeStore) CountActiveDevelopers(ctx context.Context, organizationID string) (int, error) {
	if err := f.err("CountActiveDevelopers"); err != nil {
		return 0, err
	}
	return f.developers, nil
}

func (f *fakeStore) IncrementProfileViews(ctx context.Context, profileID string) error {
	if err := f.err("IncrementProfileViews"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.increments++
	return nil
}

func (f *fakeStore) RecordProfileView(ctx context.Context, view models.ProfileView) error {
	if err := f.err("RecordProfileView"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recorded = append(f.recorded, view)
	return nil
}

func (f *fakeStore) incrementCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.increments
}

type fakeStats struct {
	stats *models.DeveloperStats
	err   error
}

func (f fakeStats) ComputeDeveloperStats(ctx context.Context, developerID string) (*models.DeveloperStats, error) {
	if f.err != nil {
		return nil, f.err
	}
	s := *f.stats
	return &s, nil
}

var testConfig = Config{
	Sharing: config.SharingConfig{
		PublicBaseURL: "https://devtogether.example",
		QRCodeBaseURL: "https://api.qrserver.com/v1/create-qr-code/",
		QRCodeSize:    200,
	},
	Analytics: config.AnalyticsConfig{
		ViewDedupeWindow: int((30 * time.Minute).Milliseconds()),
	},
}

func newTestAggregator(t *testing.T, s *fakeStore, stats StatsSource, opts ...Option) *Aggregator {
	t.Helper()
	if stats == nil {
		stats = fakeStats{stats: &models.DeveloperStats{}}
	}
	opts = append([]Option{WithClock(func() time.Time { return now })}, opts...)
	return NewAggregator(s, stats, s, logger.NewTestLogger(t), testConfig, opts...)
}

func acceptedOn(id string, status models.ProjectStatus, updated time.Time, stack ...string) models.Application {
	return models.Application{
		ID:          "app-" + id,
		ProjectID:   id,
		DeveloperID: "dev-1",
		Status:      models.ApplicationAccepted,
		CreatedAt:   updated.Add(-10 * day),
		UpdatedAt:   updated.Add(-5 * day),
		Project: &models.Project{
			ID:              id,
			OrganizationID:  "org-1",
			Title:           "Project " + id,
			TechnologyStack: stack,
			Status:          status,
			UpdatedAt:       updated,
			Organization:    &models.ProfileRef{ID: "org-1", DisplayName: "Helping Hands"},
		},
	}
}
