package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"docqa-backend/internal/search"
)

const defaultIndex = "documents"

const indexMapping = `{
  "mappings": {
    "properties": {
      "document_id": {"type": "keyword"},
      "user_id":     {"type": "keyword"},
      "file_name":   {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "content":     {"type": "text"},
      "created_at":  {"type": "date"}
    }
  }
}`

// Options configures the Elasticsearch index.
type Options struct {
	Addresses []string
	Index     string
	Username  string
	Password  string
	APIKey    string
	// Transport overrides the HTTP transport. Used by tests.
	Transport http.RoundTripper
}

// Index stores document entries in a single Elasticsearch index keyed by document id.
type Index struct {
	client *elasticsearch.Client
	index  string
}

// New builds an Elasticsearch-backed index. It does not contact the cluster.
func New(opts Options) (*Index, error) {
	cfg := elasticsearch.Config{
		Addresses: opts.Addresses,
		Username:  opts.Username,
		Password:  opts.Password,
		APIKey:    opts.APIKey,
	}
	if opts.Transport != nil {
		cfg.Transport = opts.Transport
	}
	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}
	name := strings.TrimSpace(opts.Index)
	if name == "" {
		name = defaultIndex
	}
	return &Index{client: client, index: name}, nil
}

// EnsureIndex creates the index with its mapping when it does not exist yet.
func (i *Index) EnsureIndex(ctx context.Context) error {
	res, err := esapi.IndicesExistsRequest{Index: []string{i.index}}.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("elasticsearch exists index=%s: %w", i.index, err)
	}
	drain(res)
	switch res.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
	default:
		return fmt.Errorf("elasticsearch exists index=%s: status %d", i.index, res.StatusCode)
	}

	res, err = esapi.IndicesCreateRequest{
		Index: i.index,
		Body:  strings.NewReader(indexMapping),
	}.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("elasticsearch create index=%s: %w", i.index, err)
	}
	defer drain(res)
	if res.IsError() && !strings.Contains(readBody(res), "resource_already_exists_exception") {
		return fmt.Errorf("elasticsearch create index=%s: status %d", i.index, res.StatusCode)
	}
	return nil
}

// Index writes entry under documentID, replacing any existing entry.
func (i *Index) Index(ctx context.Context, documentID string, entry search.Entry) error {
	entry.DocumentID = documentID
	body, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}

	res, err := esapi.IndexRequest{
		Index:      i.index,
		DocumentID: documentID,
		Body:       bytes.NewReader(body),
	}.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("elasticsearch index index=%s id=%s: %w", i.index, documentID, err)
	}
	defer drain(res)
	if res.IsError() {
		return fmt.Errorf("elasticsearch index index=%s id=%s: status %d: %s", i.index, documentID, res.StatusCode, readBody(res))
	}
	return nil
}

// Delete removes the entry for documentID. A missing entry is not an error.
func (i *Index) Delete(ctx context.Context, documentID string) error {
	res, err := esapi.DeleteRequest{
		Index:      i.index,
		DocumentID: documentID,
	}.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("elasticsearch delete index=%s id=%s: %w", i.index, documentID, err)
	}
	defer drain(res)
	if res.StatusCode == http.StatusNotFound {
		return nil
	}
	if res.IsError() {
		return fmt.Errorf("elasticsearch delete index=%s id=%s: status %d", i.index, documentID, res.StatusCode)
	}
	return nil
}

// Ping checks cluster reachability.
func (i *Index) Ping(ctx context.Context) error {
	res, err := esapi.PingRequest{}.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("elasticsearch ping: %w", err)
	}
	defer drain(res)
	if res.IsError() {
		return fmt.Errorf("elasticsearch ping: status %d", res.StatusCode)
	}
	return nil
}

func readBody(res *esapi.Response) string {
	if res == nil || res.Body == nil {
		return ""
	}
	data, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	return string(data)
}

func drain(res *esapi.Response) {
	if res == nil || res.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, res.Body)
	res.Body.Close()
}

var _ search.Index = (*Index)(nil)
