package api

import (
	"net/http"

	"devtogether/internal/dashboard"
	"devtogether/internal/models"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	snap, err := s.dashboard.Refresh(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDeveloperStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.dashboard.ComputeDeveloperStats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type achievementsResponse struct {
	Achievements []models.Achievement       `json:"achievements"`
	Recent       []models.RecentAchievement `json:"recent"`
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	limit, err := queryLimit(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	stats, err := s.dashboard.ComputeDeveloperStats(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	recent, err := s.dashboard.ComputeRecentAchievements(r.Context(), id, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, achievementsResponse{
		Achievements: dashboard.ComputeAchievements(*stats),
		Recent:       recent,
	})
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	items, err := s.dashboard.ComputeRecentActivity(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	recs, err := s.dashboard.ComputeRecommendedProjects(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleActiveProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.dashboard.ComputeActiveProjects(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}
