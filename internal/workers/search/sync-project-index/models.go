// internal/workers/search/sync-project-index/models.go
package syncprojectindex

type Input struct {
	// EnsureIndex creates the index with its mapping before syncing when it is missing.
	EnsureIndex bool `json:"ensureIndex,omitempty"`
}

type Output struct {
	Indexed    int   `json:"indexedProjects"`
	Removed    int   `json:"removedProjects"`
	Failed     int   `json:"failedProjects"`
	DurationMs int64 `json:"syncDurationMs"`
}
