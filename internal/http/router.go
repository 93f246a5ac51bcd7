package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/jatolabs/projecthub/internal/auth"
	"github.com/jatolabs/projecthub/internal/cache"
	"github.com/jatolabs/projecthub/internal/config"
	"github.com/jatolabs/projecthub/internal/http/handlers"
	"github.com/jatolabs/projecthub/internal/http/middlewares"
	"github.com/jatolabs/projecthub/internal/observability"
	"github.com/jatolabs/projecthub/internal/repo/postgres"
)

const maxBodyBytes = 1 << 20 // 1 MiB

func NewRouter(log *slog.Logger, pool *pgxpool.Pool, store cache.Store, jwtSecret string, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// metrics registry with the standard process/go collectors
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	prom := observability.NewProm(reg)

	// middleware
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))
	r.Use(middlewares.RequireJSON())
	r.Use(prom.GinHandleMiddleware())

	if cfg.OTLPEndpoint != "" {
		r.Use(otelgin.Middleware("projecthub-api"))
	}

	generalLimiter := middlewares.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	r.Use(generalLimiter.Middleware())

	// health
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	health := handlers.NewHealthHandler(ping)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	r.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"message": "Project tracker API is running"})
	})

	// wire up repositories
	usersRepo := postgres.NewUsersRepo(pool)
	projectsRepo := postgres.NewProjectsRepo(pool, prom)

	jwtManager := auth.NewManager(jwtSecret, cfg.JWTTTL())

	authHandler := handlers.NewAuthHandler(usersRepo, usersRepo, jwtManager)
	dashboardHandler := handlers.NewDashboardHandler(projectsRepo, store)
	projectsHandler := handlers.NewProjectsHandler(projectsRepo, dashboardHandler.Invalidate)

	// credential endpoints get a stricter bucket
	authLimiter := middlewares.NewRateLimiter(cfg.AuthRateLimitRPS, cfg.AuthRateLimitBurst)

	authGroup := r.Group("/auth")
	authGroup.Use(authLimiter.Middleware())
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)

	requireAuth := middlewares.NewAuthMiddleware(jwtManager, usersRepo).RequireAuth()

	authGroup.GET("/me", requireAuth, authHandler.Me)

	projects := r.Group("/projects", requireAuth)
	projects.GET("", projectsHandler.List)
	projects.POST("", projectsHandler.Create)

	// dashboard routes sit above :id so gin does not swallow them
	projects.GET("/dashboard/metrics", dashboardHandler.Metrics)
	projects.GET("/dashboard/alerts", dashboardHandler.Alerts)

	projects.GET("/:id", projectsHandler.Get)
	projects.PUT("/:id", projectsHandler.Update)
	projects.DELETE("/:id", projectsHandler.Delete)

	return r
}
