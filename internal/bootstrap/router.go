package bootstrap

import (
	"database/sql"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ctein-nexus/nexus-backend/config"
	httpapi "github.com/ctein-nexus/nexus-backend/internal/api/http"
	apimw "github.com/ctein-nexus/nexus-backend/internal/api/http/middleware"
	"github.com/ctein-nexus/nexus-backend/internal/auth"
	authhttp "github.com/ctein-nexus/nexus-backend/internal/auth/http"
	authmw "github.com/ctein-nexus/nexus-backend/internal/auth/middleware"
	"github.com/ctein-nexus/nexus-backend/internal/blobstore"
	"github.com/ctein-nexus/nexus-backend/internal/cache"
	"github.com/ctein-nexus/nexus-backend/internal/metrics"
	projectshttp "github.com/ctein-nexus/nexus-backend/internal/projects/http"
	"github.com/ctein-nexus/nexus-backend/internal/projects/repository"
	"github.com/ctein-nexus/nexus-backend/internal/projects/service"
	"github.com/ctein-nexus/nexus-backend/internal/users"
)

type RouterDeps struct {
	ServiceName string
	Config      *config.Config
	Logger      zerolog.Logger

	SQL   *sql.DB
	Pool  *pgxpool.Pool
	Redis *redis.Client
	Blobs blobstore.Gateway

	// Verifier checks identity tokens. Ignored when Config.Auth.DevBypass is set.
	Verifier authmw.TokenVerifier
	// Orphans receives keys of blobs whose deletion failed; nil only logs.
	Orphans service.OrphanRecorder
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	cfg := dep.Config
	r := gin.New()

	r.Use(apimw.RequestIDMiddleware(dep.Logger))
	r.Use(apimw.AccessLog())
	r.Use(apimw.Metrics())
	r.Use(apimw.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", apimw.HeaderRequestID},
		ExposeHeaders:    []string{apimw.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, cfg.App.Version, dep.Pool, dep.Redis)
	healthHandler.RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api/v1")

	var c service.Cache
	if dep.Redis != nil {
		c = cache.NewRedisCache(dep.Redis, cfg.Redis.CacheTTL)
	}
	cleanup := service.LogAndContinue{Orphans: dep.Orphans}

	projectRepo := repository.NewProjectRepository(dep.SQL)
	productRepo := repository.NewProductRepository(dep.SQL)
	typeRepo := repository.NewProductTypeRepository(dep.SQL)
	attachmentRepo := repository.NewAttachmentRepository(dep.SQL)
	publicRepo := repository.NewPublicRepository(dep.SQL)
	guard := service.NewGuard(projectRepo, productRepo, attachmentRepo)

	public := service.NewPublicService(publicRepo, productRepo, c)

	handler := projectshttp.New(projectshttp.Deps{
		Projects: service.NewProjectService(service.ProjectDeps{
			Guard: guard, Projects: projectRepo, Products: productRepo, Attachments: attachmentRepo,
			Blobs: dep.Blobs, Cleanup: cleanup, Cache: c,
		}),
		Products: service.NewProductService(service.ProductDeps{
			Guard: guard, Products: productRepo, Types: typeRepo, Attachments: attachmentRepo,
			Blobs: dep.Blobs, Cleanup: cleanup, Cache: c,
		}),
		ProductTypes: service.NewProductTypeService(typeRepo, c),
		Attachments: service.NewAttachmentService(service.AttachmentDeps{
			Guard: guard, Store: attachmentRepo, Blobs: dep.Blobs, Cleanup: cleanup, Cache: c,
			FolderRoot: cfg.Storage.FolderRoot, MaxBytes: cfg.Server.MaxUploadBytes,
		}),
		Public:         public,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
	})

	admins := auth.NewAdminSet(cfg.Auth.AdminUIDs)
	identity := authmw.FirebaseAuthMiddleware(dep.Verifier, admins)
	if cfg.Auth.DevBypass {
		dep.Logger.Warn().Str("uid", cfg.Auth.DevUserID).Msg("auth dev bypass enabled")
		identity = authmw.DevIdentityMiddleware(cfg.Auth.DevUserID, admins)
	}
	authenticated := []gin.HandlerFunc{identity}

	var userRepo *users.Repo
	if dep.Pool != nil {
		userRepo = users.NewRepo(dep.Pool)
		authenticated = append(authenticated, authmw.EnsureUser(userRepo))
	}

	handler.Register(api, projectshttp.Guards{
		Authenticated: authenticated,
		Admin:         []gin.HandlerFunc{authmw.RequireAdmin()},
		PublicLimit:   []gin.HandlerFunc{publicLimiter(dep)},
	})

	if userRepo != nil {
		authhttp.New(userRepo, public).Register(api.Group("", authenticated...))
	}

	return r
}

// publicLimiter prefers counters shared through Redis and falls back to a
// per-instance store when Redis cannot take them.
func publicLimiter(dep RouterDeps) gin.HandlerFunc {
	rate := dep.Config.Public.RateLimit
	limit, err := apimw.NewRateLimiter(rate, dep.Redis)
	if err == nil {
		return limit
	}
	dep.Logger.Warn().Err(err).Msg("shared rate limit store unavailable, limiting per instance")
	if limit, err = apimw.NewRateLimiter(rate, nil); err == nil {
		return limit
	}
	dep.Logger.Error().Err(err).Str("rate", rate).Msg("public rate limit disabled")
	return func(c *gin.Context) { c.Next() }
}
