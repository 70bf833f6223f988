package api

import (
	"net/http"
	"strconv"
	"strings"

	apperrors "devtogether/internal/common/errors"
	"devtogether/internal/models"
)

// handleSearch maps ?q=&tech=&status=&organization=&page=&pageSize= onto a project
// filter. tech and status may repeat or be comma separated.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.search == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{
			Code:    string(apperrors.ErrCodeElasticsearchConnectionFailed),
			Message: "Project search is not configured",
		})
		return
	}

	q := r.URL.Query()
	filter := models.ProjectFilter{
		Query:          q.Get("q"),
		Technologies:   splitValues(q["tech"]),
		Statuses:       splitValues(q["status"]),
		OrganizationID: q.Get("organization"),
	}

	var err error
	if filter.Page, err = optionalInt(q.Get("page")); err != nil {
		s.writeError(w, r, apperrors.NewInvalidInputError("page must be an integer"))
		return
	}
	if filter.PageSize, err = optionalInt(q.Get("pageSize")); err != nil {
		s.writeError(w, r, apperrors.NewInvalidInputError("pageSize must be an integer"))
		return
	}

	result, err := s.search.Search(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func splitValues(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func optionalInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
