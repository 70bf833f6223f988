package api

import (
	"encoding/json"
	"io"
	"net/http"

	apperrors "devtogether/internal/common/errors"
	"devtogether/internal/models"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 64 << 10

func (s *Server) handleProfileStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.profiles.ComputeProfileStats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.profiles.ComputeProjectPortfolio(r.Context(), chi.URLParam(r, "id")))
}

func (s *Server) handleSkills(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.profiles.ComputeSkillProficiency(r.Context(), chi.URLParam(r, "id")))
}

func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.profiles.GenerateShareableProfile(r.Context(), chi.URLParam(r, "id")))
}

func (s *Server) handlePrivacy(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, r, apperrors.NewInvalidInputError(err.Error()))
		return
	}
	if err := s.privacySchema.Check(body); err != nil {
		s.writeError(w, r, err)
		return
	}

	var settings models.PrivacySettings
	if err := json.Unmarshal(body, &settings); err != nil {
		s.writeError(w, r, apperrors.NewInvalidInputError(err.Error()))
		return
	}
	if err := s.profiles.UpdatePrivacySettings(r.Context(), chi.URLParam(r, "id"), settings); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

type viewRequest struct {
	ViewerID string `json:"viewerId"`
}

// handleTrackView accepts an optional {"viewerId"} body. An empty body is an
// anonymous view.
func (s *Server) handleTrackView(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, r, apperrors.NewInvalidInputError(err.Error()))
		return
	}

	var req viewRequest
	if len(body) > 0 {
		if err := s.viewSchema.Check(body); err != nil {
			s.writeError(w, r, err)
			return
		}
		if err := json.Unmarshal(body, &req); err != nil {
			s.writeError(w, r, apperrors.NewInvalidInputError(err.Error()))
			return
		}
	}

	s.profiles.TrackProfileView(r.Context(), chi.URLParam(r, "id"), req.ViewerID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSharedProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.profiles.GetProfileByShareToken(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if profile == nil {
		writeJSON(w, http.StatusNotFound, errorBody{
			Code:    string(apperrors.ErrCodeProfileNotFound),
			Message: "Shared profile not found",
		})
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleOrganizationStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.profiles.GetOrganizationStats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
