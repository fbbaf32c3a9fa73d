// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, access logging, panic recovery, metrics, CORS,
// security headers, compression, idempotency, and rate limiting.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	_ "github.com/snaportho/snaportho-web/docs"
	"github.com/snaportho/snaportho-web/internal/config"
	"github.com/snaportho/snaportho-web/internal/generation"
	"github.com/snaportho/snaportho-web/internal/http/handlers"
	"github.com/snaportho/snaportho-web/internal/http/middleware"
	"github.com/snaportho/snaportho-web/internal/repo"
	"github.com/snaportho/snaportho-web/internal/seen"
	"github.com/snaportho/snaportho-web/internal/services"
	"github.com/snaportho/snaportho-web/internal/web"
)

// maxBodyBytes caps every request body.
const maxBodyBytes = 1 << 20

// RegisterRoutes attaches all middleware and endpoints to r: the pages, the
// health and metrics endpoints, and the JSON API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Auth: resolve the bearer token so logs carry the user
//  4. Logger: request-scoped, scrubbed access logs
//  5. Recovery: capture panics after logger
//  6. Body size limiter
//  7. Metrics
//  8. Visitor cookie
//  9. Rate limiter (per user/IP)
//  10. CORS, security headers, gzip
//
// Route-scoped: a stricter limiter on BroBot asks, and the idempotency
// validator on feedback ahead of its own limiter so replays are not charged.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, gen generation.Generator, store seen.Store, cfg config.Config) {
	r.HandleMethodNotAllowed = true
	r.SetHTMLTemplate(web.MustTemplates())
	handlers.RegisterValidators()

	authSvc := &services.AuthService{
		DB:         db,
		Secret:     []byte(cfg.Auth.JWTSecret),
		Issuer:     cfg.Auth.Issuer,
		TokenTTL:   cfg.Auth.TokenTTL,
		BcryptCost: cfg.Auth.BcryptCost,
	}

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.Auth(authSvc))
	r.Use(middleware.Logger(middleware.LogOptions{
		MaskHeaders: []string{"X-API-Key", "Idempotency-Key"},
	}))
	r.Use(middleware.Recovery())
	r.Use(limitBody(maxBodyBytes))

	r.Use(middleware.Metrics("/metrics", "/health"))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Use(middleware.Visitor(cfg.Security.EnableHSTS))

	rl := middleware.NewRateLimiter("global", cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	r.Use(corsMiddleware(cfg.CORS))
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:            cfg.Security.EnableHSTS,
		HSTSMaxAge:            cfg.Security.HSTSMaxAge,
		NoStorePrefix:         cfg.APIBasePath,
		EnablePolicy:          true,
		ContentSecurityPolicy: true,
	}))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := handlers.New(handlers.Deps{
		BroBot: &services.BroBotService{
			DB:             db,
			Generator:      gen,
			MaxPromptRunes: cfg.BroBot.MaxPromptRunes,
		},
		Feedback:       &services.FeedbackService{DB: db},
		Auth:           authSvc,
		Profiles:       &services.ProfileService{DB: db},
		Seen:           store,
		DeepLink:       cfg.DeepLink,
		IdempotencyTTL: cfg.IdempotencyTTL,
	})

	// Pages
	r.GET("/", h.Home)
	r.GET("/app", h.App)
	r.GET("/open", h.Open)
	r.GET("/health", h.Health)

	askRL := middleware.NewRateLimiter("brobot_ask", cfg.BroBot.RateRPS, cfg.BroBot.RateBurst, middleware.KeyByUserOrIP())
	feedbackRL := middleware.NewRateLimiter("brobot_feedback", cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	feedbackIdem := middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{MaxLen: 200, Scope: services.ScopeFeedback},
		idempotencyLookup(db),
	)

	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		api.POST("/auth/signup", h.SignUp)
		api.POST("/auth/signin", h.SignIn)
		api.GET("/auth/session", h.CurrentSession)

		api.POST("/brobot/ask", askRL.Handler(), h.Ask)
		api.GET("/brobot/history", middleware.RequireUser(), h.History)
		api.POST("/brobot/feedback", feedbackIdem, feedbackRL.Handler(), h.SubmitFeedback)

		api.GET("/seen/:flag", h.GetSeen)
		api.PUT("/seen/:flag", h.MarkSeen)

		member := api.Group("", middleware.RequireUser())
		member.GET("/profile", h.GetProfile)
		member.PUT("/profile", h.SaveProfile)
	}
}

// corsMiddleware allows every origin without credentials when no allowlist
// is configured, otherwise only the listed origins.
// idempotencyLookup reports whether a live record exists for the tuple. Only
// a missing record counts as "not seen"; store failures are surfaced so the
// validator can log them.
func idempotencyLookup(db *gorm.DB) middleware.IdempotencyLookup {
	return func(ctx context.Context, userID, scope, key string, now time.Time) (bool, error) {
		_, err := repo.GetIdempotency(ctx, db, userID, scope, key, now)
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, repo.ErrNotFound):
			return false, nil
		default:
			return false, err
		}
	}
}

func corsMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	cc := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderIdempotencyKey},
		ExposeHeaders: []string{"X-Request-ID", "Content-Length", "ETag", handlers.HeaderIdempotencyReplayed},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = cfg.AllowedOrigins
	}
	return cors.New(cc)
}

// limitBody caps the request body at maxBytes; reads past the cap fail and
// JSON binding turns that into a 400.
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
