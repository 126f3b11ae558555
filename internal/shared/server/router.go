package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yaroslaavl/recruiter-cv-service/internal/cv"
	"github.com/yaroslaavl/recruiter-cv-service/internal/shared/config"
	"github.com/yaroslaavl/recruiter-cv-service/internal/shared/metrics"
	"github.com/yaroslaavl/recruiter-cv-service/internal/shared/server/middleware"
	"github.com/yaroslaavl/recruiter-cv-service/internal/shared/server/respond"
)

// RouterDeps carries the wired handlers the router needs.
type RouterDeps struct {
	Config    config.Config
	CVHandler *cv.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.Use(
		middleware.Auth(),
		middleware.RateLimit(uploadRateLimit()),
	)

	deps.CVHandler.RegisterRoutes(api)

	return r
}

// uploadRateLimit throttles the upload endpoint per principal; other routes
// pass through.
func uploadRateLimit() middleware.RateLimitConfig {
	return middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			"UPLOAD": {Rate: 1, Burst: 5},
		},
		GroupFor: func(c *gin.Context) string {
			if c.Request.Method == http.MethodPost && c.FullPath() == "/api/v1/cv/upload" {
				return "UPLOAD"
			}
			return ""
		},
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
