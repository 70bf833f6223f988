// Package errors provides the structured error type shared by the HTTP API and the
// job workers, plus its conversion to BPMN errors.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrCodeInternal       ErrorCode = "INTERNAL_ERROR"
	ErrCodeRequestTimeout ErrorCode = "REQUEST_TIMEOUT"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeStatsQueryFailed         ErrorCode = "STATS_QUERY_FAILED"
	ErrCodeActiveProjectsFailed     ErrorCode = "ACTIVE_PROJECTS_QUERY_FAILED"
	ErrCodeActivityQueryFailed      ErrorCode = "ACTIVITY_QUERY_FAILED"
	ErrCodeRecommendationFailed     ErrorCode = "RECOMMENDATION_QUERY_FAILED"
	ErrCodeAchievementQueryFailed   ErrorCode = "ACHIEVEMENT_QUERY_FAILED"
	ErrCodeDashboardRefreshFailed   ErrorCode = "DASHBOARD_REFRESH_FAILED"

	ErrCodeProfileNotFound        ErrorCode = "PROFILE_NOT_FOUND"
	ErrCodeProfileStatsFailed     ErrorCode = "PROFILE_STATS_FAILED"
	ErrCodePrivacyUpdateFailed    ErrorCode = "PRIVACY_UPDATE_FAILED"
	ErrCodeOrganizationStatsFail  ErrorCode = "ORGANIZATION_STATS_FAILED"
	ErrCodeShareTokenLookupFailed ErrorCode = "SHARE_TOKEN_LOOKUP_FAILED"

	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeSearchQueryFailed             ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeIndexSyncFailed               ErrorCode = "INDEX_SYNC_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata attaches a key/value pair and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

func detailsOf(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// NewInvalidInputError creates a non-retryable validation error.
func NewInvalidInputError(details string) *StandardError {
	return newError(ErrCodeInvalidInput, "Invalid input", details, false)
}

// NewInternalError wraps an unexpected failure.
func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", detailsOf(err), false)
}

// NewRequestTimeoutError reports an operation that exceeded its deadline.
func NewRequestTimeoutError(operation string) *StandardError {
	return newError(ErrCodeRequestTimeout, "Request timed out", fmt.Sprintf("operation: %s", operation), true)
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", detailsOf(err), true)
}

// NewStatsQueryFailedError is returned when developer statistics cannot be read.
func NewStatsQueryFailedError(developerID string, err error) *StandardError {
	return newError(ErrCodeStatsQueryFailed, "Failed to load developer statistics",
		fmt.Sprintf("developerId: %s, error: %s", developerID, detailsOf(err)), true)
}

func NewActiveProjectsFailedError(developerID string, err error) *StandardError {
	return newError(ErrCodeActiveProjectsFailed, "Failed to load active projects",
		fmt.Sprintf("developerId: %s, error: %s", developerID, detailsOf(err)), true)
}

func NewActivityQueryFailedError(developerID string, err error) *StandardError {
	return newError(ErrCodeActivityQueryFailed, "Failed to load recent activity",
		fmt.Sprintf("developerId: %s, error: %s", developerID, detailsOf(err)), true)
}

func NewRecommendationFailedError(developerID string, err error) *StandardError {
	return newError(ErrCodeRecommendationFailed, "Failed to load project recommendations",
		fmt.Sprintf("developerId: %s, error: %s", developerID, detailsOf(err)), true)
}

func NewAchievementQueryFailedError(developerID string, err error) *StandardError {
	return newError(ErrCodeAchievementQueryFailed, "Failed to load achievements",
		fmt.Sprintf("developerId: %s, error: %s", developerID, detailsOf(err)), true)
}

// NewDashboardRefreshFailedError is returned when any part of a dashboard refresh fails.
func NewDashboardRefreshFailedError(developerID string, err error) *StandardError {
	return newError(ErrCodeDashboardRefreshFailed, "Failed to refresh dashboard",
		fmt.Sprintf("developerId: %s, error: %s", developerID, detailsOf(err)), true)
}

// NewProfileNotFoundError creates a non-retryable not found error.
func NewProfileNotFoundError(userID string) *StandardError {
	return newError(ErrCodeProfileNotFound, "Profile not found", fmt.Sprintf("userId: %s", userID), false)
}

// NewProfileStatsFailedError wraps a developer statistics failure seen while building profile stats.
func NewProfileStatsFailedError(userID string, err error) *StandardError {
	return newError(ErrCodeProfileStatsFailed, "Failed to load profile statistics",
		fmt.Sprintf("userId: %s, error: %s", userID, detailsOf(err)), true)
}

func NewPrivacyUpdateFailedError(userID string, err error) *StandardError {
	return newError(ErrCodePrivacyUpdateFailed, "Failed to update privacy settings",
		fmt.Sprintf("userId: %s, error: %s", userID, detailsOf(err)), true)
}

func NewOrganizationStatsFailedError(orgID string, err error) *StandardError {
	return newError(ErrCodeOrganizationStatsFail, "Failed to load organization statistics",
		fmt.Sprintf("organizationId: %s, error: %s", orgID, detailsOf(err)), true)
}

func NewShareTokenLookupFailedError(err error) *StandardError {
	return newError(ErrCodeShareTokenLookupFailed, "Failed to resolve share link", detailsOf(err), true)
}

// NewElasticsearchConnectionFailedError creates a retryable Elasticsearch connection error.
func NewElasticsearchConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeElasticsearchConnectionFailed, "Elasticsearch connection error", detailsOf(err), true)
}

// NewSearchQueryFailedError creates a retryable search query error.
func NewSearchQueryFailedError(index string, err error) *StandardError {
	return newError(ErrCodeSearchQueryFailed, "Elasticsearch query error",
		fmt.Sprintf("index: %s, error: %s", index, detailsOf(err)), true)
}

// NewIndexSyncFailedError reports a failed bulk synchronisation of the search index.
func NewIndexSyncFailedError(index string, err error) *StandardError {
	return newError(ErrCodeIndexSyncFailed, "Search index synchronisation failed",
		fmt.Sprintf("index: %s, error: %s", index, detailsOf(err)), true)
}

// AsStandardError unwraps err into a *StandardError, wrapping unknown errors as internal.
func AsStandardError(err error) *StandardError {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return NewInternalError(err)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to the codes modelled on boundary events.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidInput:                  "INVALID_INPUT",
	ErrCodeDatabaseConnectionFailed:      "DATABASE_CONNECTION_FAILED",
	ErrCodeStatsQueryFailed:              "DASHBOARD_UNAVAILABLE",
	ErrCodeActiveProjectsFailed:          "DASHBOARD_UNAVAILABLE",
	ErrCodeActivityQueryFailed:           "DASHBOARD_UNAVAILABLE",
	ErrCodeRecommendationFailed:          "DASHBOARD_UNAVAILABLE",
	ErrCodeAchievementQueryFailed:        "DASHBOARD_UNAVAILABLE",
	ErrCodeDashboardRefreshFailed:        "DASHBOARD_UNAVAILABLE",
	ErrCodeProfileNotFound:               "PROFILE_NOT_FOUND",
	ErrCodeProfileStatsFailed:            "PROFILE_UNAVAILABLE",
	ErrCodeElasticsearchConnectionFailed: "SEARCH_UNAVAILABLE",
	ErrCodeSearchQueryFailed:             "SEARCH_UNAVAILABLE",
	ErrCodeIndexSyncFailed:               "INDEX_SYNC_FAILED",
}

// GetRetryCount returns the recommended retry count for an error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeStatsQueryFailed,
		ErrCodeActiveProjectsFailed,
		ErrCodeActivityQueryFailed,
		ErrCodeRecommendationFailed,
		ErrCodeAchievementQueryFailed,
		ErrCodeDashboardRefreshFailed,
		ErrCodeProfileStatsFailed,
		ErrCodeElasticsearchConnectionFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeIndexSyncFailed:
		return 3

	case ErrCodeRequestTimeout:
		return 2

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "DATABASE"):
		return "DATABASE"
	case strings.Contains(codeStr, "ELASTICSEARCH") || strings.Contains(codeStr, "SEARCH") || strings.Contains(codeStr, "INDEX"):
		return "SEARCH"
	case strings.Contains(codeStr, "PROFILE") || strings.Contains(codeStr, "PRIVACY") ||
		strings.Contains(codeStr, "SHARE") || strings.Contains(codeStr, "ORGANIZATION"):
		return "PROFILE"
	case strings.HasSuffix(codeStr, "_FAILED") && (strings.Contains(codeStr, "STATS") ||
		strings.Contains(codeStr, "ACTIVITY") || strings.Contains(codeStr, "RECOMMENDATION") ||
		strings.Contains(codeStr, "ACHIEVEMENT") || strings.Contains(codeStr, "DASHBOARD") ||
		strings.Contains(codeStr, "PROJECTS")):
		return "DASHBOARD"
	case strings.Contains(codeStr, "INVALID") || strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
