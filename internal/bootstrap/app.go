package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	"docqa-backend/internal/documents"
	"docqa-backend/internal/extract"
	"docqa-backend/internal/llm"
	"docqa-backend/internal/llm/gemini"
	"docqa-backend/internal/llm/openai"
	"docqa-backend/internal/queries"
	"docqa-backend/internal/queue"
	"docqa-backend/internal/search"
	"docqa-backend/internal/search/elastic"
	"docqa-backend/internal/search/weaviate"
	"docqa-backend/internal/services/health"
	"docqa-backend/internal/shared/auth"
	"docqa-backend/internal/shared/config"
	"docqa-backend/internal/shared/server"
	"docqa-backend/internal/shared/storage/db"
	"docqa-backend/internal/shared/storage/object"
	localstore "docqa-backend/internal/shared/storage/object/local"
	s3store "docqa-backend/internal/shared/storage/object/s3"
	"docqa-backend/internal/shared/telemetry"
)

// App holds shared dependencies and the HTTP router.
type App struct {
	Config           config.Config
	Router           *gin.Engine
	DB               *sql.DB
	Store            object.ObjectStore
	Index            search.Index
	Queue            queue.Client
	Sessions         auth.SessionStore
	Generator        llm.Generator
	DocumentsRepo    documents.Repo
	QueriesRepo      queries.Repo
	DocumentsService *documents.Service
	QueriesService   *queries.Service
	Health           *health.Service

	closers []io.Closer
}

// Option overrides a dependency Build would otherwise construct from config.
type Option func(*App)

// WithGenerator replaces the configured language model provider.
func WithGenerator(g llm.Generator) Option {
	return func(a *App) { a.Generator = g }
}

// WithStore replaces the configured blob store.
func WithStore(s object.ObjectStore) Option {
	return func(a *App) { a.Store = s }
}

// WithIndex replaces the configured search index.
func WithIndex(i search.Index) Option {
	return func(a *App) { a.Index = i }
}

// WithQueue replaces the reconcile notice publisher.
func WithQueue(q queue.Client) Option {
	return func(a *App) { a.Queue = q }
}

// Build prepares shared dependencies and wires routes.
func Build(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}

	app := &App{Config: cfg}
	for _, opt := range opts {
		opt(app)
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.DB = sqlDB
	if sqlDB != nil {
		app.closers = append(app.closers, sqlDB)
	}

	steps := []func(context.Context, *App) error{
		buildStore,
		buildIndex,
		buildQueue,
		buildSessions,
		buildGenerator,
	}
	for _, step := range steps {
		if err := step(ctx, app); err != nil {
			_ = app.Close()
			return nil, err
		}
	}

	secret, err := auth.SecretKey(cfg.Env, cfg.JWTSecret)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		JWTSecret:       secret,
		Sessions:        app.Sessions,
		Health:          app.Health,
		DocumentHandler: documents.NewHandler(app.DocumentsService, cfg.MaxUploadBytes),
		QueryHandler:    queries.NewHandler(app.QueriesService),
	})

	return app, nil
}

// Close releases connections opened by Build.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_repositories", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_repositories", map[string]any{"reason": "database connect failed", "error": err})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, app *App) error {
	if app.Store != nil {
		return nil
	}
	cfg := app.Config
	switch cfg.ObjectStoreType {
	case "s3":
		store, err := s3store.New(ctx, s3store.Options{
			Region:       cfg.AWSRegion,
			Bucket:       cfg.S3Bucket,
			Prefix:       cfg.S3Prefix,
			Endpoint:     cfg.S3Endpoint,
			UsePathStyle: cfg.S3UsePathStyle,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
			KMSKeyID:     cfg.SSEKMSKeyID,
			CreateBucket: cfg.S3CreateBucket,
		})
		if err != nil {
			return fmt.Errorf("s3 store: %w", err)
		}
		app.Store = store
	default:
		app.Store = localstore.New(cfg.LocalStoreDir)
	}
	return nil
}

func buildIndex(ctx context.Context, app *App) error {
	if app.Index != nil {
		return nil
	}
	cfg := app.Config
	switch cfg.SearchIndex {
	case "elasticsearch":
		idx, err := elastic.New(elastic.Options{
			Addresses: []string{cfg.ElasticsearchURL},
			Index:     cfg.ElasticsearchIndex,
		})
		if err != nil {
			return fmt.Errorf("elasticsearch index: %w", err)
		}
		if err := idx.EnsureIndex(ctx); err != nil {
			if !cfg.IsDevLike() {
				return fmt.Errorf("elasticsearch index: %w", err)
			}
			telemetry.Warn("bootstrap.index_setup_failed", map[string]any{"backend": "elasticsearch", "error": err})
		}
		app.Index = idx
	case "weaviate":
		idx, err := weaviate.New(weaviate.Options{
			Host:   cfg.WeaviateHost,
			Scheme: cfg.WeaviateScheme,
			APIKey: cfg.WeaviateAPIKey,
			Class:  cfg.WeaviateClass,
		})
		if err != nil {
			return fmt.Errorf("weaviate index: %w", err)
		}
		if err := idx.EnsureSchema(ctx); err != nil {
			if !cfg.IsDevLike() {
				return fmt.Errorf("weaviate index: %w", err)
			}
			telemetry.Warn("bootstrap.index_setup_failed", map[string]any{"backend": "weaviate", "error": err})
		}
		app.Index = idx
	case "none":
		app.Index = search.Nop{}
	default:
		app.Index = search.NewMemoryIndex()
	}
	return nil
}

func buildQueue(ctx context.Context, app *App) error {
	if app.Queue != nil {
		return nil
	}
	if strings.TrimSpace(app.Config.ReconcileQueueURL) == "" {
		app.Queue = queue.Nop{}
		return nil
	}
	client, err := queue.NewSQSClient(ctx, app.Config.ReconcileQueueURL, app.Config.AWSRegion)
	if err != nil {
		return fmt.Errorf("reconcile queue: %w", err)
	}
	app.Queue = client
	return nil
}

func buildSessions(_ context.Context, app *App) error {
	if strings.TrimSpace(app.Config.RedisURL) == "" {
		return nil
	}
	sessions, err := auth.NewRedisSessions(app.Config.RedisURL, app.Config.SessionTTL)
	if err != nil {
		return err
	}
	app.Sessions = sessions
	app.closers = append(app.closers, sessions)
	return nil
}

func buildGenerator(ctx context.Context, app *App) error {
	if app.Generator != nil {
		return nil
	}
	cfg := app.Config
	switch cfg.LLMProvider {
	case "gemini":
		if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
			telemetry.Warn("bootstrap.llm_not_configured", map[string]any{"provider": "gemini", "reason": "GEMINI_API_KEY empty"})
			app.Generator = llm.PlaceholderGenerator{}
			return nil
		}
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.LLMModel)
		if err != nil {
			return err
		}
		app.Generator = llm.WithRetry(client)
		app.closers = append(app.closers, client)
	case "openai":
		if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
			telemetry.Warn("bootstrap.llm_not_configured", map[string]any{"provider": "openai", "reason": "OPENAI_API_KEY empty"})
			app.Generator = llm.PlaceholderGenerator{}
			return nil
		}
		client, err := openai.NewClient(openai.Options{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.LLMModel,
			BaseURL: cfg.OpenAIBaseURL,
		})
		if err != nil {
			return err
		}
		app.Generator = llm.WithRetry(client)
	default:
		app.Generator = llm.PlaceholderGenerator{}
	}
	return nil
}

func buildServices(app *App) {
	if app.DB != nil {
		app.DocumentsRepo = &documents.PGRepo{DB: app.DB}
		app.QueriesRepo = &queries.PGRepo{DB: app.DB}
	} else {
		app.DocumentsRepo = documents.NewMemoryRepo()
		app.QueriesRepo = queries.NewMemoryRepo()
	}

	app.DocumentsService = &documents.Service{
		Store:     app.Store,
		Repo:      app.DocumentsRepo,
		Index:     app.Index,
		Extractor: extract.New(),
		Notifier:  app.Queue,
	}
	app.QueriesService = &queries.Service{
		Documents: app.DocumentsService,
		Generator: app.Generator,
		Repo:      app.QueriesRepo,
	}
	app.Health = health.NewService(healthChecks(app)...)
}

type pinger interface {
	Ping(ctx context.Context) error
}

func healthChecks(app *App) []health.Check {
	var checks []health.Check
	if app.DB != nil {
		checks = append(checks, health.Check{Name: "database", Ping: app.DB.PingContext})
	}
	if p, ok := app.Store.(pinger); ok {
		checks = append(checks, health.Check{Name: "blob_store", Ping: p.Ping})
	}
	if p, ok := app.Index.(search.Pinger); ok {
		checks = append(checks, health.Check{Name: "search_index", Ping: p.Ping})
	}
	if p, ok := app.Sessions.(pinger); ok {
		checks = append(checks, health.Check{Name: "sessions", Ping: p.Ping})
	}
	return checks
}
