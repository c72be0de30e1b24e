package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"docqa-backend/internal/documents"
	"docqa-backend/internal/queries"
	"docqa-backend/internal/services/health"
	"docqa-backend/internal/shared/auth"
	"docqa-backend/internal/shared/config"
	"docqa-backend/internal/shared/metrics"
	"docqa-backend/internal/shared/server/middleware"
	"docqa-backend/internal/shared/server/respond"
)

// RouterDeps collects handlers and identity sources for NewRouter.
type RouterDeps struct {
	Config          config.Config
	JWTSecret       []byte
	Sessions        auth.SessionStore
	Health          *health.Service
	DocumentHandler *documents.Handler
	QueryHandler    *queries.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
// /health and /metrics are public; everything else requires an identity.
func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/health", healthHandler(deps.Health))
	r.GET("/metrics", metrics.Handler())

	api := r.Group("")
	api.Use(
		middleware.Auth(middleware.AuthConfig{
			Env:      deps.Config.Env,
			Secret:   deps.JWTSecret,
			Sessions: deps.Sessions,
		}),
		middleware.RateLimit(middleware.RateLimitConfig{
			GroupFor: rateLimitGroup,
			Rules: map[string]middleware.RateLimitRule{
				"DEFAULT": {Rate: deps.Config.RateLimitRate, Burst: deps.Config.RateLimitBurst},
				middleware.QueryRateLimitGroup: {
					Rate:  deps.Config.QueryRateLimitRate,
					Burst: deps.Config.QueryRateLimitBurst,
				},
			},
		}),
	)

	registerMeRoutes(api)
	if deps.DocumentHandler != nil {
		deps.DocumentHandler.RegisterRoutes(api)
	}
	if deps.QueryHandler != nil {
		deps.QueryHandler.RegisterRoutes(api)
	}

	return r
}

func rateLimitGroup(c *gin.Context) string {
	if c.Request.Method == http.MethodPost && c.FullPath() == "/query" {
		return middleware.QueryRateLimitGroup
	}
	return "DEFAULT"
}

func healthHandler(svc *health.Service) gin.HandlerFunc {
	if svc == nil {
		svc = health.NewService()
	}
	return func(c *gin.Context) {
		report := svc.Status(c.Request.Context())
		status := http.StatusOK
		if !report.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, report)
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
