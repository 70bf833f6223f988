package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"devtogether/internal/common/config"
	apperrors "devtogether/internal/common/errors"
	"devtogether/internal/common/logger"
	"devtogether/internal/common/metrics"
	"devtogether/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const defaultBatchSize = 500

// ProjectSource pages through every project by id.
type ProjectSource interface {
	ListProjectsForIndex(ctx context.Context, afterID string, limit int) ([]models.Project, error)
}

// SyncResult summarises one synchronisation run.
type SyncResult struct {
	Indexed  int           `json:"indexed"`
	Removed  int           `json:"removed"`
	Failed   int           `json:"failed"`
	Batches  int           `json:"batches"`
	Duration time.Duration `json:"duration"`
}

// Indexer copies projects from the store into the search index. Open and in-progress
// projects are indexed; every other project is removed from the index.
type Indexer struct {
	client    *elasticsearch.Client
	source    ProjectSource
	index     string
	batchSize int
	logger    logger.Logger
}

func NewIndexer(client *elasticsearch.Client, source ProjectSource, cfg config.SearchConfig, log logger.Logger) *Indexer {
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	index := cfg.Index
	if index == "" {
		index = "projects"
	}
	return &Indexer{
		client:    client,
		source:    source,
		index:     index,
		batchSize: batch,
		logger:    log.WithFields(map[string]interface{}{"component": "search-indexer", "index": index}),
	}
}

// EnsureIndex creates the index with its mapping when it is missing.
func (i *Indexer) EnsureIndex(ctx context.Context) error {
	res, err := esapi.IndicesExistsRequest{Index: []string{i.index}}.Do(ctx, i.client)
	if err != nil {
		return apperrors.NewElasticsearchConnectionFailedError(err)
	}
	res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
	default:
		return apperrors.NewIndexSyncFailedError(i.index, fmt.Errorf("index exists check: %s", res.Status()))
	}

	res, err = esapi.IndicesCreateRequest{
		Index: i.index,
		Body:  strings.NewReader(indexMapping),
	}.Do(ctx, i.client)
	if err != nil {
		return apperrors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		// another replica created it first
		if msg := readError(res.Body); !strings.Contains(msg, "resource_already_exists_exception") {
			return apperrors.NewIndexSyncFailedError(i.index, fmt.Errorf("create index: %s", msg))
		}
	}
	i.logger.Info("Search index ready", nil)
	return nil
}

// Sync walks every project in id order and applies it to the index in bulk batches.
func (i *Indexer) Sync(ctx context.Context) (*SyncResult, error) {
	start := time.Now()
	result := &SyncResult{}

	if err := i.EnsureIndex(ctx); err != nil {
		metrics.SearchIndexSyncs.WithLabelValues("error").Inc()
		return nil, err
	}

	afterID := ""
	for {
		projects, err := i.source.ListProjectsForIndex(ctx, afterID, i.batchSize)
		if err != nil {
			metrics.SearchIndexSyncs.WithLabelValues("error").Inc()
			return nil, apperrors.NewIndexSyncFailedError(i.index, err)
		}
		if len(projects) == 0 {
			break
		}

		if err := i.bulk(ctx, projects, result); err != nil {
			metrics.SearchIndexSyncs.WithLabelValues("error").Inc()
			return nil, err
		}
		result.Batches++
		afterID = projects[len(projects)-1].ID

		if len(projects) < i.batchSize {
			break
		}
	}

	result.Duration = time.Since(start)
	status := "success"
	if result.Failed > 0 {
		status = "partial"
	}
	metrics.SearchIndexSyncs.WithLabelValues(status).Inc()
	metrics.SearchIndexedDocuments.Set(float64(result.Indexed))

	i.logger.Info("Search index synchronised", map[string]interface{}{
		"indexed":  result.Indexed,
		"removed":  result.Removed,
		"failed":   result.Failed,
		"batches":  result.Batches,
		"duration": result.Duration.String(),
	})
	return result, nil
}

type bulkItem struct {
	ID     string `json:"_id"`
	Status int    `json:"status"`
	Error  *struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error,omitempty"`
}

type bulkResponse struct {
	Errors bool                  `json:"errors"`
	Items  []map[string]bulkItem `json:"items"`
}

func (i *Indexer) bulk(ctx context.Context, projects []models.Project, result *SyncResult) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, p := range projects {
		if p.Status.IsActive() {
			if err := enc.Encode(map[string]interface{}{"index": map[string]string{"_id": p.ID}}); err != nil {
				return apperrors.NewIndexSyncFailedError(i.index, err)
			}
			if err := enc.Encode(models.NewProjectDocument(p)); err != nil {
				return apperrors.NewIndexSyncFailedError(i.index, err)
			}
			continue
		}
		if err := enc.Encode(map[string]interface{}{"delete": map[string]string{"_id": p.ID}}); err != nil {
			return apperrors.NewIndexSyncFailedError(i.index, err)
		}
	}

	res, err := esapi.BulkRequest{
		Index: i.index,
		Body:  &buf,
	}.Do(ctx, i.client)
	if err != nil {
		return apperrors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return apperrors.NewIndexSyncFailedError(i.index, fmt.Errorf("bulk: %s", readError(res.Body)))
	}

	var parsed bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return apperrors.NewIndexSyncFailedError(i.index, fmt.Errorf("decode bulk response: %w", err))
	}

	for _, entry := range parsed.Items {
		for action, item := range entry {
			switch {
			case action == "delete" && (item.Status < 300 || item.Status == http.StatusNotFound):
				if item.Status < 300 {
					result.Removed++
				}
			case item.Status < 300:
				result.Indexed++
			default:
				result.Failed++
				fields := map[string]interface{}{"projectId": item.ID, "action": action, "status": item.Status}
				if item.Error != nil {
					fields["reason"] = item.Error.Reason
				}
				i.logger.Warn("Bulk item failed", fields)
			}
		}
	}
	return nil
}

func readError(body io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil {
		return err.Error()
	}
	return string(b)
}
