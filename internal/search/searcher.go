package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"devtogether/internal/common/config"
	apperrors "devtogether/internal/common/errors"
	"devtogether/internal/common/logger"
	"devtogether/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Searcher runs browse page queries against the project index.
type Searcher struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewSearcher(client *elasticsearch.Client, cfg config.SearchConfig, log logger.Logger) *Searcher {
	index := cfg.Index
	if index == "" {
		index = "projects"
	}
	return &Searcher{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "search", "index": index}),
	}
}

// Normalize clamps the page to at least 1 and the page size to 1..MaxPageSize,
// defaulting to DefaultPageSize.
func Normalize(f models.ProjectFilter) models.ProjectFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	switch {
	case f.PageSize <= 0:
		f.PageSize = DefaultPageSize
	case f.PageSize > MaxPageSize:
		f.PageSize = MaxPageSize
	}
	f.Query = strings.TrimSpace(f.Query)
	return f
}

// BuildQuery renders the filter as an Elasticsearch search body.
func BuildQuery(f models.ProjectFilter) map[string]interface{} {
	must := []interface{}{}
	filter := []interface{}{}

	if f.Query != "" {
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  f.Query,
				"fields": []string{"title^3", "description", "organization_name"},
				"type":   "best_fields",
			},
		})
	}
	if techs := nonBlank(f.Technologies); len(techs) > 0 {
		filter = append(filter, map[string]interface{}{
			"terms": map[string]interface{}{"technology_stack": techs},
		})
	}
	if statuses := nonBlank(f.Statuses); len(statuses) > 0 {
		filter = append(filter, map[string]interface{}{
			"terms": map[string]interface{}{"status": statuses},
		})
	}
	if f.OrganizationID != "" {
		filter = append(filter, map[string]interface{}{
			"term": map[string]interface{}{"organization_id": f.OrganizationID},
		})
	}

	query := map[string]interface{}{"match_all": map[string]interface{}{}}
	if len(must) > 0 || len(filter) > 0 {
		query = map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   must,
				"filter": filter,
			},
		}
	}

	return map[string]interface{}{
		"query": query,
		"from":  (f.Page - 1) * f.PageSize,
		"size":  f.PageSize,
		"sort": []interface{}{
			map[string]interface{}{"_score": map[string]string{"order": "desc"}},
			map[string]interface{}{"created_at": map[string]string{"order": "desc"}},
		},
		"track_total_hits": true,
	}
}

func nonBlank(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		MaxScore *float64 `json:"max_score"`
		Hits     []struct {
			ID     string                 `json:"_id"`
			Score  *float64               `json:"_score"`
			Source models.ProjectDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search returns one page of matching projects. A missing index yields an empty page.
func (s *Searcher) Search(ctx context.Context, filter models.ProjectFilter) (*models.ProjectSearchResult, error) {
	filter = Normalize(filter)
	result := &models.ProjectSearchResult{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		Hits:     []models.ProjectSearchHit{},
	}

	body, err := json.Marshal(BuildQuery(filter))
	if err != nil {
		return nil, apperrors.NewSearchQueryFailedError(s.index, err)
	}

	res, err := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  strings.NewReader(string(body)),
	}.Do(ctx, s.client)
	if err != nil {
		if ctx.Err() != nil {
			return nil, apperrors.NewRequestTimeoutError("project search")
		}
		return nil, apperrors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		s.logger.Warn("Search index missing, returning no results", nil)
		return result, nil
	}
	if res.IsError() {
		return nil, apperrors.NewSearchQueryFailedError(s.index, fmt.Errorf("%s: %s", res.Status(), readError(res.Body)))
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, apperrors.NewSearchQueryFailedError(s.index, fmt.Errorf("decode response: %w", err))
	}

	result.Total = parsed.Hits.Total.Value
	if parsed.Hits.MaxScore != nil {
		result.MaxScore = *parsed.Hits.MaxScore
	}
	for _, h := range parsed.Hits.Hits {
		hit := models.ProjectSearchHit{ProjectDocument: h.Source}
		if hit.ID == "" {
			hit.ID = h.ID
		}
		if h.Score != nil {
			hit.Score = *h.Score
		}
		result.Hits = append(result.Hits, hit)
	}
	return result, nil
}
