package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	apperrors "devtogether/internal/common/errors"
	"devtogether/internal/common/validation"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   string `json:"details,omitempty"`
	Retryable bool   `json:"retryable"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	stdErr := apperrors.AsStandardError(err)
	writeJSON(w, statusFor(stdErr.Code), errorBody{
		Code:      string(stdErr.Code),
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
	})
}

func statusFor(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case apperrors.ErrCodeProfileNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeRequestTimeout:
		return http.StatusGatewayTimeout
	case apperrors.ErrCodeDatabaseConnectionFailed, apperrors.ErrCodeElasticsearchConnectionFailed,
		apperrors.ErrCodeSearchQueryFailed:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// queryLimit reads ?limit=. Absent means 0, which the aggregators treat as their default.
func queryLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 || n > 100 {
		return 0, apperrors.NewInvalidInputError("limit must be an integer between 0 and 100")
	}
	return n, nil
}

const privacyRequestSchema = `{
  "type": "object",
  "required": ["isPublic"],
  "properties": {
    "isPublic": {"type": "boolean"}
  }
}`

const viewRequestSchema = `{
  "type": "object",
  "properties": {
    "viewerId": {"type": "string", "maxLength": 64}
  }
}`

func mustSchema(raw string) *validation.SchemaValidator {
	var schema map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &schema); err != nil {
		panic(err)
	}
	v, err := validation.NewSchemaValidator(schema)
	if err != nil {
		panic(err)
	}
	return v
}
