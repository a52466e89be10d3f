// Package httpapi wires the HTTP transport (Gin) to the assistant service,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation and session IDs, logging, panic recovery, metrics,
// compression, CORS, security headers, and rate limiting.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-recipe-assistant/internal/config"
	"github.com/tbourn/go-recipe-assistant/internal/http/handlers"
	"github.com/tbourn/go-recipe-assistant/internal/http/middleware"
	"github.com/tbourn/go-recipe-assistant/internal/llm"
	"github.com/tbourn/go-recipe-assistant/internal/services"
	"github.com/tbourn/go-recipe-assistant/internal/session"
)

// RegisterRoutes attaches all middleware and endpoints to the given Gin
// engine.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID / SessionID: correlation and conversation identity
//  3. Logger: structured access logs
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics, gzip
//  7. Rate limiter (per session/IP)
//  8. CORS and security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, completer llm.Completer, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.SessionID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(limitBody(1 << 20))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyBySessionOrIP())
	r.Use(rl.Handler())

	if len(cfg.CORS.AllowedOrigins) == 0 {
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.SessionIDHeader},
			ExposeHeaders:    []string{"X-Request-ID", middleware.SessionIDHeader, "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	} else {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.SessionIDHeader},
			ExposeHeaders:    []string{"X-Request-ID", middleware.SessionIDHeader, "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	svc := &services.AssistantService{
		DB:            db,
		Generator:     llm.NewPipeline(db, completer),
		Sessions:      session.NewRegistry(),
		Threshold:     cfg.Threshold,
		TopK:          cfg.TopK,
		MaxQueryRunes: cfg.MaxQueryRunes,
	}
	h := handlers.New(db, svc)

	api := r.Group("/api/v1")
	{
		api.POST("/ask", h.Ask)
		api.GET("/session/export", h.ExportSession)
		api.GET("/categories", h.ListCategories)
		api.GET("/recipes", h.ListRecipes)
		api.GET("/recipes/:id", h.GetRecipe)
		api.GET("/stats", h.Stats)
	}
}

// limitBody caps the request body size for all endpoints using
// http.MaxBytesReader; oversized bodies error on read downstream.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
