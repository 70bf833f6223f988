package search

import (
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/require"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   string
}

// fakeTransport answers Elasticsearch requests from respond and records them.
type fakeTransport struct {
	mu       sync.Mutex
	requests []recordedRequest
	respond  func(req recordedRequest) (int, string)
}

func (f *fakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body string
	if req.Body != nil {
		b, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		body = string(b)
	}
	rec := recordedRequest{Method: req.Method, Path: req.URL.Path, Body: body}

	f.mu.Lock()
	f.requests = append(f.requests, rec)
	f.mu.Unlock()

	status, payload := f.respond(rec)
	header := http.Header{}
	header.Set("X-Elastic-Product", "Elasticsearch")
	header.Set("Content-Type", "application/json")
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(payload)),
		Request:    req,
	}, nil
}

func (f *fakeTransport) requestsTo(method, pathSuffix string) []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []recordedRequest
	for _, r := range f.requests {
		if r.Method == method && strings.HasSuffix(r.Path, pathSuffix) {
			out = append(out, r)
		}
	}
	return out
}

func newFakeClient(t *testing.T, respond func(req recordedRequest) (int, string)) (*elasticsearch.Client, *fakeTransport) {
	t.Helper()
	transport := &fakeTransport{respond: respond}
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{"http://es.test:9200"},
		Transport: transport,
	})
	require.NoError(t, err)
	return client, transport
}
