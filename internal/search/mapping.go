// Package search keeps the project search index in Elasticsearch and serves the
// browse page filter queries from it.
package search

// indexMapping is applied when the index does not exist yet. Technology and status
// keywords are lower-cased so filters match regardless of case.
const indexMapping = `{
  "settings": {
    "analysis": {
      "normalizer": {
        "lowercase": {"type": "custom", "filter": ["lowercase"]}
      }
    }
  },
  "mappings": {
    "properties": {
      "id":                {"type": "keyword"},
      "title":             {"type": "text"},
      "description":       {"type": "text"},
      "technology_stack":  {"type": "keyword", "normalizer": "lowercase"},
      "status":            {"type": "keyword", "normalizer": "lowercase"},
      "organization_id":   {"type": "keyword"},
      "organization_name": {"type": "text"},
      "deadline":          {"type": "date"},
      "created_at":        {"type": "date"},
      "updated_at":        {"type": "date"}
    }
  }
}`
