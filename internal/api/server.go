// Package api exposes the dashboard, profile and search operations as a JSON HTTP API.
package api

import (
	"context"
	"net/http"
	"time"

	"devtogether/internal/common/logger"
	"devtogether/internal/common/validation"
	"devtogether/internal/models"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type DashboardService interface {
	Refresh(ctx context.Context, developerID string) (*models.DashboardSnapshot, error)
	ComputeDeveloperStats(ctx context.Context, developerID string) (*models.DeveloperStats, error)
	ComputeActiveProjects(ctx context.Context, developerID string) ([]models.ActiveProject, error)
	ComputeRecentAchievements(ctx context.Context, developerID string, limit int) ([]models.RecentAchievement, error)
	ComputeRecentActivity(ctx context.Context, developerID string, limit int) ([]models.ActivityItem, error)
	ComputeRecommendedProjects(ctx context.Context, developerID string, limit int) ([]models.RecommendedProject, error)
}

type ProfileService interface {
	ComputeProfileStats(ctx context.Context, userID string) (*models.ProfileStats, error)
	ComputeProjectPortfolio(ctx context.Context, userID string) []models.PortfolioItem
	ComputeSkillProficiency(ctx context.Context, userID string) []models.SkillProficiency
	GenerateShareableProfile(ctx context.Context, userID string) models.ShareableProfile
	UpdatePrivacySettings(ctx context.Context, userID string, settings models.PrivacySettings) error
	TrackProfileView(ctx context.Context, profileID, viewerID string)
	GetProfileByShareToken(ctx context.Context, token string) (*models.Profile, error)
	GetOrganizationStats(ctx context.Context, orgID string) (*models.OrganizationStats, error)
}

type ProjectSearcher interface {
	Search(ctx context.Context, filter models.ProjectFilter) (*models.ProjectSearchResult, error)
}

// Pinger is a backing service checked by /ready.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server holds the services behind the HTTP routes.
type Server struct {
	dashboard      DashboardService
	profiles       ProfileService
	search         ProjectSearcher
	checks         map[string]Pinger
	logger         logger.Logger
	requestTimeout time.Duration

	privacySchema *validation.SchemaValidator
	viewSchema    *validation.SchemaValidator
}

type Option func(*Server)

// WithSearch enables /api/projects/search.
func WithSearch(s ProjectSearcher) Option {
	return func(srv *Server) { srv.search = s }
}

// WithReadinessCheck adds a named dependency to /ready.
func WithReadinessCheck(name string, p Pinger) Option {
	return func(srv *Server) { srv.checks[name] = p }
}

// WithRequestTimeout bounds every API request.
func WithRequestTimeout(d time.Duration) Option {
	return func(srv *Server) {
		if d > 0 {
			srv.requestTimeout = d
		}
	}
}

func NewServer(dashboard DashboardService, profiles ProfileService, log logger.Logger, opts ...Option) *Server {
	s := &Server{
		dashboard:      dashboard,
		profiles:       profiles,
		checks:         make(map[string]Pinger),
		logger:         log.WithFields(map[string]interface{}{"component": "api"}),
		requestTimeout: 30 * time.Second,
		privacySchema:  mustSchema(privacyRequestSchema),
		viewSchema:     mustSchema(viewRequestSchema),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the chi router with middleware and every route.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimw.Recoverer)
	r.Use(instrument)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(chimw.Timeout(s.requestTimeout))

		r.Route("/developers/{id}", func(r chi.Router) {
			r.Get("/dashboard", s.handleDashboard)
			r.Get("/stats", s.handleDeveloperStats)
			r.Get("/achievements", s.handleAchievements)
			r.Get("/activity", s.handleActivity)
			r.Get("/recommendations", s.handleRecommendations)
			r.Get("/projects", s.handleActiveProjects)
		})

		r.Route("/profiles/{id}", func(r chi.Router) {
			r.Get("/stats", s.handleProfileStats)
			r.Get("/portfolio", s.handlePortfolio)
			r.Get("/skills", s.handleSkills)
			r.Post("/share", s.handleShare)
			r.Put("/privacy", s.handlePrivacy)
			r.Post("/views", s.handleTrackView)
		})

		r.Get("/share/{token}", s.handleSharedProfile)
		r.Get("/organizations/{id}/stats", s.handleOrganizationStats)
		r.Get("/projects/search", s.handleSearch)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(s.checks))
	for name, p := range s.checks {
		if err := p.Ping(ctx); err != nil {
			s.logger.Warn("Readiness check failed", map[string]interface{}{"dependency": name, "error": err.Error()})
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	body := map[string]interface{}{"status": "ready", "checks": results}
	if status != http.StatusOK {
		body["status"] = "not ready"
	}
	writeJSON(w, status, body)
}
