package weaviate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/fault"
	"github.com/weaviate/weaviate/entities/models"

	"docqa-backend/internal/search"
)

const defaultClass = "Document"

// Options configures the Weaviate index.
type Options struct {
	Host   string
	Scheme string
	APIKey string
	Class  string
}

// Index stores document entries as Weaviate objects whose id is the document id.
// Vectorization is left to the class configuration; objects are written without vectors.
type Index struct {
	client *weaviate.Client
	class  string
}

// New builds a Weaviate-backed index.
func New(opts Options) (*Index, error) {
	scheme := strings.TrimSpace(opts.Scheme)
	host := strings.TrimSpace(opts.Host)
	for _, s := range []string{"https", "http"} {
		if strings.HasPrefix(host, s+"://") {
			scheme = s
			host = strings.TrimPrefix(host, s+"://")
		}
	}
	if scheme == "" {
		scheme = "http"
	}
	if host == "" {
		return nil, fmt.Errorf("weaviate host is required")
	}

	cfg := weaviate.Config{Host: host, Scheme: scheme}
	if opts.APIKey != "" {
		cfg.AuthConfig = auth.ApiKey{Value: opts.APIKey}
	}
	client, err := weaviate.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("weaviate client: %w", err)
	}

	class := strings.TrimSpace(opts.Class)
	if class == "" {
		class = defaultClass
	}
	return &Index{client: client, class: class}, nil
}

func classSchema(name string) *models.Class {
	return &models.Class{
		Class:      name,
		Vectorizer: "none",
		Properties: []*models.Property{
			{Name: "documentId", DataType: []string{"text"}},
			{Name: "userId", DataType: []string{"text"}},
			{Name: "fileName", DataType: []string{"text"}},
			{Name: "content", DataType: []string{"text"}},
			{Name: "createdAt", DataType: []string{"date"}},
		},
	}
}

// EnsureSchema creates the document class when it is missing.
func (i *Index) EnsureSchema(ctx context.Context) error {
	dump, err := i.client.Schema().Getter().Do(ctx)
	if err != nil {
		return fmt.Errorf("weaviate get schema: %w", err)
	}
	for _, c := range dump.Classes {
		if c.Class == i.class {
			return nil
		}
	}
	if err := i.client.Schema().ClassCreator().WithClass(classSchema(i.class)).Do(ctx); err != nil {
		return fmt.Errorf("weaviate create class=%s: %w", i.class, err)
	}
	return nil
}

// Index upserts the entry as the object with id documentID.
func (i *Index) Index(ctx context.Context, documentID string, entry search.Entry) error {
	props := toProperties(documentID, entry)

	exists, err := i.client.Data().Checker().
		WithClassName(i.class).
		WithID(documentID).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("weaviate check class=%s id=%s: %w", i.class, documentID, err)
	}

	if exists {
		err = i.client.Data().Updater().
			WithClassName(i.class).
			WithID(documentID).
			WithProperties(props).
			Do(ctx)
		if err != nil {
			return fmt.Errorf("weaviate update class=%s id=%s: %w", i.class, documentID, err)
		}
		return nil
	}

	_, err = i.client.Data().Creator().
		WithClassName(i.class).
		WithID(documentID).
		WithProperties(props).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("weaviate create class=%s id=%s: %w", i.class, documentID, err)
	}
	return nil
}

// Delete removes the object for documentID. A missing object is not an error.
func (i *Index) Delete(ctx context.Context, documentID string) error {
	err := i.client.Data().Deleter().
		WithClassName(i.class).
		WithID(documentID).
		Do(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("weaviate delete class=%s id=%s: %w", i.class, documentID, err)
	}
	return nil
}

// Ping checks that the Weaviate node reports ready.
func (i *Index) Ping(ctx context.Context) error {
	ready, err := i.client.Misc().ReadyChecker().Do(ctx)
	if err != nil {
		return fmt.Errorf("weaviate ready: %w", err)
	}
	if !ready {
		return fmt.Errorf("weaviate not ready")
	}
	return nil
}

func toProperties(documentID string, entry search.Entry) map[string]any {
	return map[string]any{
		"documentId": documentID,
		"userId":     entry.UserID,
		"fileName":   entry.FileName,
		"content":    entry.Content,
		"createdAt":  entry.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func isNotFound(err error) bool {
	var clientErr *fault.WeaviateClientError
	return errors.As(err, &clientErr) && clientErr.StatusCode == http.StatusNotFound
}

var _ search.Index = (*Index)(nil)
