// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, idempotency, and rate limiting.
//
// Design goals:
//   - Observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Venue routes guarded by bearer-token auth; intake and tracking public
package httpapi

import (
	"context"
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

	"github.com/Reem-mvem/Lost-Found-Management-System/internal/assistant"
	"github.com/Reem-mvem/Lost-Found-Management-System/internal/config"
	"github.com/Reem-mvem/Lost-Found-Management-System/internal/domain"
	"github.com/Reem-mvem/Lost-Found-Management-System/internal/extract"
	"github.com/Reem-mvem/Lost-Found-Management-System/internal/http/handlers"
	"github.com/Reem-mvem/Lost-Found-Management-System/internal/http/middleware"
	"github.com/Reem-mvem/Lost-Found-Management-System/internal/repo"
	"github.com/Reem-mvem/Lost-Found-Management-System/internal/services"
)

// venueRepoShim adapts the repository free functions to the services.VenueRepo
// interface expected by the AuthService. This keeps services decoupled from
// the concrete repo package while reusing existing functions.
type venueRepoShim struct{}

// CreateVenue proxies repo.CreateVenue.
func (venueRepoShim) CreateVenue(ctx context.Context, db *gorm.DB, name, email, passwordHash, typ, address, logo string) (*domain.Venue, error) {
	return repo.CreateVenue(ctx, db, name, email, passwordHash, typ, address, logo)
}

// GetVenue proxies repo.GetVenue.
func (venueRepoShim) GetVenue(ctx context.Context, db *gorm.DB, id string) (*domain.Venue, error) {
	return repo.GetVenue(ctx, db, id)
}

// GetVenueByEmail proxies repo.GetVenueByEmail.
func (venueRepoShim) GetVenueByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.Venue, error) {
	return repo.GetVenueByEmail(ctx, db, email)
}

// UpdateVenueProfile proxies repo.UpdateVenueProfile.
func (venueRepoShim) UpdateVenueProfile(ctx context.Context, db *gorm.DB, id string, updates map[string]any) error {
	return repo.UpdateVenueProfile(ctx, db, id, updates)
}

// itemRepoShim adapts the repository free functions to services.ItemRepo.
type itemRepoShim struct{}

// CreateItem proxies repo.CreateItem.
func (itemRepoShim) CreateItem(ctx context.Context, db *gorm.DB, item *domain.LostItem, photos []string) (*domain.LostItem, error) {
	return repo.CreateItem(ctx, db, item, photos)
}

// ListItems proxies repo.ListItems.
func (itemRepoShim) ListItems(ctx context.Context, db *gorm.DB, venueID string) ([]domain.LostItem, error) {
	return repo.ListItems(ctx, db, venueID)
}

// GetItem proxies repo.GetItem.
func (itemRepoShim) GetItem(ctx context.Context, db *gorm.DB, id, venueID string) (*domain.LostItem, error) {
	return repo.GetItem(ctx, db, id, venueID)
}

// DeleteItemCascade proxies repo.DeleteItemCascade.
func (itemRepoShim) DeleteItemCascade(ctx context.Context, db *gorm.DB, id, venueID string) error {
	return repo.DeleteItemCascade(ctx, db, id, venueID)
}

// claimRepoShim adapts the repository free functions to services.ClaimRepo.
type claimRepoShim struct{}

// CreateClaim proxies repo.CreateClaim.
func (claimRepoShim) CreateClaim(ctx context.Context, db *gorm.DB, trackingNumber, itemID, summary, userDescription, contactInfo string) (*domain.Claim, error) {
	return repo.CreateClaim(ctx, db, trackingNumber, itemID, summary, userDescription, contactInfo)
}

// GetClaim proxies repo.GetClaim.
func (claimRepoShim) GetClaim(ctx context.Context, db *gorm.DB, id string) (*domain.Claim, error) {
	return repo.GetClaim(ctx, db, id)
}

// GetClaimByTracking proxies repo.GetClaimByTracking.
func (claimRepoShim) GetClaimByTracking(ctx context.Context, db *gorm.DB, trackingNumber string) (*domain.Claim, error) {
	return repo.GetClaimByTracking(ctx, db, trackingNumber)
}

// ListClaimsForVenue proxies repo.ListClaimsForVenue.
func (claimRepoShim) ListClaimsForVenue(ctx context.Context, db *gorm.DB, venueID string) ([]domain.Claim, error) {
	return repo.ListClaimsForVenue(ctx, db, venueID)
}

// UpdateClaimStatus proxies repo.UpdateClaimStatus.
func (claimRepoShim) UpdateClaimStatus(ctx context.Context, db *gorm.DB, id, fromStatus, toStatus string) (int64, error) {
	return repo.UpdateClaimStatus(ctx, db, id, fromStatus, toStatus)
}

// GetItem proxies repo.GetItem (venue-scoped claim visibility).
func (claimRepoShim) GetItem(ctx context.Context, db *gorm.DB, id, venueID string) (*domain.LostItem, error) {
	return repo.GetItem(ctx, db, id, venueID)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), idempotency and
// rate limiting, CORS and security headers, health and metrics endpoints, and
// then mounts the versioned API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Gzip compression (photo-heavy catalog responses)
//  7. Metrics
//  8. Idempotency validator (before rate limiter to allow bypass on replay)
//  9. Rate limiter (per venue/IP, bypass on replay)
//  10. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, engine *assistant.Engine, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction (intake turns carry PII)
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{
			"X-API-Key",
		},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (4 MiB: items carry up to 3 base64 photos)
	r.Use(limitBody(4 << 20))

	// 6) Compress responses; photo data URLs shrink well
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) Idempotency validation (before rate limiting)
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen: 200,
		},
		func(ctx context.Context, subject, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, db, subject, key, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return true, nil
		},
	))

	// 9) Token-bucket rate limiter per venue/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByVenueOrIP())
	r.Use(rl.Handler())

	// 10) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderIdempotencyKey},
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
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
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

	// Swagger UI (disabled by default outside development)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db/engine
	authSvc := &services.AuthService{
		DB:         db,
		Repo:       venueRepoShim{},
		JWTSecret:  cfg.Auth.JWTSecret,
		AccessTTL:  cfg.Auth.AccessTTL,
		BcryptCost: cfg.Auth.BcryptCost,
	}
	itemSvc := &services.ItemService{DB: db, Repo: itemRepoShim{}}
	claimSvc := &services.ClaimService{DB: db, Repo: claimRepoShim{}}
	intakeSvc := &services.IntakeService{
		DB:             db,
		Engine:         engine,
		Extractor:      extract.Heuristic{},
		Claims:         claimSvc,
		MaxTurnRunes:   2000,
		IdempotencyTTL: cfg.IdempotencyTTL,
	}

	h := handlers.New(authSvc, itemSvc, claimSvc, intakeSvc, services.NoMatcher{})

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	{
		// Venue accounts
		api.POST("/venues/signup", h.Signup)
		api.POST("/venues/login", h.Login)

		// Conversational intake (anonymous)
		api.GET("/intake/greeting", h.Greeting)
		api.POST("/intake/messages", h.PostIntakeMessage)

		// Public claim tracking
		api.GET("/claims/track/:trackingNumber", h.TrackClaim)
	}

	// Venue-scoped API (bearer token required)
	authed := api.Group("", middleware.RequireVenue(authSvc.ParseToken))
	{
		authed.GET("/venues/me", h.Me)
		authed.PUT("/venues/me", h.UpdateMe)

		// Catalog
		authed.POST("/items", h.CreateItem)
		authed.GET("/items", h.ListItems)
		authed.DELETE("/items/:id", h.DeleteItem)

		// Claim review
		authed.GET("/claims", h.ListClaims)
		authed.POST("/claims/:id/verify", h.VerifyClaim)
		authed.POST("/claims/:id/reject", h.RejectClaim)
		authed.GET("/claims/:id/matches", h.ClaimMatches)
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
