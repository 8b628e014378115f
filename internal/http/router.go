// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, session authentication, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/listoflists/go-survey-backend/internal/config"
	"github.com/listoflists/go-survey-backend/internal/domain"
	"github.com/listoflists/go-survey-backend/internal/http/handlers"
	"github.com/listoflists/go-survey-backend/internal/http/middleware"
	"github.com/listoflists/go-survey-backend/internal/repo"
	"github.com/listoflists/go-survey-backend/internal/services"
)

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), rate limiting,
// CORS and security headers, session authentication, health and metrics
// endpoints, and then mounts the versioned public API under /api/v*.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Rate limiter (per user/IP)
//  8. CORS and Security headers
//  9. Session authentication (cookie → account)
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{
			"Cookie", // session tokens must never reach the logs
		},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 8) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins: cfg.CORS.AllowedOrigins,
			AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders: []string{"X-Request-ID", "Content-Length"},
			// The session cookie must ride cross-origin requests.
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Dependency injection: services ← db
	accountSvc := &services.AccountService{DB: db}
	sessionSvc := &services.SessionService{DB: db, TTL: cfg.Session.TTL}
	visSvc := &services.VisibilityService{DB: db}
	surveySvc := &services.SurveyService{
		DB:         db,
		Visibility: visSvc,
		Index:      &services.SurveyIndex{DB: db},
	}
	orderSvc := &services.OrderingService{DB: db}
	friendSvc := &services.FriendService{DB: db}

	h := handlers.New(
		accountSvc,
		sessionSvc,
		surveySvc,
		orderSvc,
		visSvc,
		friendSvc,
		func(ctx context.Context) (*repo.Stats, error) { return repo.GlobalStats(ctx, db) },
		handlers.CookieOptions{
			Name:   cfg.Session.CookieName,
			MaxAge: int(cfg.Session.TTL / time.Second),
			Secure: cfg.Session.CookieSecure,
		},
	)

	// 9) Resolve the session cookie on every request
	r.Use(middleware.SessionAuth(cfg.Session.CookieName, func(ctx context.Context, token string) (*domain.User, error) {
		username, err := sessionSvc.Resolve(ctx, token)
		if err != nil {
			return nil, err
		}
		return accountSvc.Get(ctx, username)
	}))

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	auth := api.Group("", middleware.RequireUser())
	{
		// Surveys
		api.GET("/surveys", h.ListSurveys)
		api.GET("/surveys/search", h.SearchSurveys)
		api.GET("/surveys/:id", h.GetSurvey)
		auth.POST("/surveys", h.CreateSurvey)
		auth.POST("/surveys/:id/renumber", h.RenumberSurvey)

		// Questions
		auth.POST("/questions", h.AddQuestion)
		auth.POST("/questions/:id/:action", h.MoveQuestion)

		// Responses
		auth.POST("/responses", h.SubmitResponse)
		auth.GET("/responses/:id", h.GetResponse)
		auth.DELETE("/responses/:id", h.DeleteResponse)

		// Users
		api.POST("/users", h.Register)
		api.POST("/users/login", h.Login)
		api.POST("/users/logout", h.Logout)
		auth.GET("/users/me", h.Me)
		auth.POST("/users/me", h.UpdateMe)
		auth.DELETE("/users/me", h.DeleteMe)

		// Friends
		auth.GET("/friends", h.ListFriends)
		auth.POST("/friends", h.RequestFriend)
		auth.DELETE("/friends/:username", h.RemoveFriend)

		// Stats (loopback only; guarded in the handler)
		api.GET("/stats", h.GetStats)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
