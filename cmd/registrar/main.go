package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/unireg/registrar-api/api/swagger"
	"github.com/unireg/registrar-api/internal/handler"
	"github.com/unireg/registrar-api/internal/middleware"
	"github.com/unireg/registrar-api/internal/models"
	"github.com/unireg/registrar-api/internal/repository"
	"github.com/unireg/registrar-api/internal/seed"
	"github.com/unireg/registrar-api/internal/service"
	"github.com/unireg/registrar-api/internal/store"
	"github.com/unireg/registrar-api/pkg/cache"
	"github.com/unireg/registrar-api/pkg/config"
	"github.com/unireg/registrar-api/pkg/database"
	"github.com/unireg/registrar-api/pkg/logger"
	corsmiddleware "github.com/unireg/registrar-api/pkg/middleware/cors"
	reqidmiddleware "github.com/unireg/registrar-api/pkg/middleware/requestid"
)

// @title Registrar API
// @version 1.0.0
// @description Course registration workflow service
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx := context.Background()
	validate := validator.New()
	metrics := service.NewMetricsService()

	st := store.New(models.RegistrationPolicy{
		MaxCredits:          cfg.Policy.MaxCredits,
		AllowConflicts:      cfg.Policy.AllowConflicts,
		AllowPrereqOverride: cfg.Policy.AllowPrereqOverride,
	})

	var cacheRepo service.CacheRepository
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, catalog cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close() //nolint:errcheck
			cacheRepo = repository.NewRedisCacheRepository(redisClient)
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, cfg.Cache.Enabled)

	var snapshots *service.SnapshotService
	if cfg.Snapshots.Enabled {
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			logr.Warn("postgres unavailable, snapshots disabled", zap.Error(err))
		} else {
			defer db.Close() //nolint:errcheck
			snapshots = service.NewSnapshotService(st, repository.NewSnapshotRepository(db), metrics, logr)
			if cfg.Snapshots.RestoreOnBoot {
				if err := snapshots.Restore(ctx); err != nil {
					logr.Warn("snapshot restore failed", zap.Error(err))
				}
			}
			snapshots.StartPeriodic(ctx, cfg.Snapshots.SaveInterval)
			defer snapshots.Stop()
		}
	}

	if cfg.Seed.Enabled {
		if err := seed.Load(st, logr); err != nil {
			logr.Warn("seed load failed", zap.Error(err))
		}
	}

	authSvc := service.NewAuthService(st, cfg.JWT, validate, logr)
	catalogSvc := service.NewCatalogService(st, cacheSvc, validate, logr)
	registrationSvc := service.NewRegistrationService(st, metrics, validate, logr)
	requestSvc := service.NewRequestService(st, validate, logr)
	notificationSvc := service.NewNotificationService(st, logr)
	policySvc := service.NewPolicyService(st, validate, logr)
	exportSvc := service.NewExportService(st, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	catalogHandler := handler.NewCatalogHandler(catalogSvc)
	registrationHandler := handler.NewRegistrationHandler(registrationSvc)
	requestHandler := handler.NewRequestHandler(requestSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	policyHandler := handler.NewPolicyHandler(policySvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	snapshotHandler := handler.NewSnapshotHandler(snapshots)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/register", authHandler.SignUp)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWTAuth(authSvc), authHandler.Logout)
	}

	secured := api.Group("")
	secured.Use(middleware.JWTAuth(authSvc))
	{
		secured.GET("/courses", catalogHandler.ListCourses)
		secured.GET("/courses/:code", catalogHandler.GetCourse)
		secured.GET("/courses/:code/offerings", catalogHandler.CourseOfferings)
		secured.POST("/courses", middleware.RequireRoles(models.RoleAdmin), catalogHandler.CreateCourse)
		secured.POST("/courses/:code/prerequisites", middleware.RequireRoles(models.RoleAdmin), catalogHandler.AddPrerequisite)
		secured.DELETE("/courses/:code", middleware.RequireRoles(models.RoleAdmin), catalogHandler.DeleteCourse)

		secured.GET("/offerings", catalogHandler.ListOfferings)
		secured.GET("/offerings/:id", catalogHandler.GetOffering)
		secured.POST("/offerings", middleware.RequireRoles(models.RoleAdmin), catalogHandler.CreateOffering)
		secured.GET("/offerings/:id/students",
			middleware.RequireRoles(models.RoleAdmin, models.RoleInstructor), registrationHandler.Roster)
		secured.GET("/offerings/:id/roster",
			middleware.RequireRoles(models.RoleAdmin, models.RoleInstructor), exportHandler.Roster)

		secured.GET("/registrations", middleware.RequireRoles(models.RoleStudent), registrationHandler.History)
		secured.POST("/registrations", middleware.RequireRoles(models.RoleStudent), registrationHandler.Register)
		secured.DELETE("/registrations/:id", middleware.RequireRoles(models.RoleStudent), registrationHandler.Drop)

		secured.GET("/requests", middleware.RequireRoles(models.RoleStudent), requestHandler.Mine)
		secured.POST("/requests", middleware.RequireRoles(models.RoleStudent), requestHandler.Submit)
		secured.GET("/requests/pending", middleware.RequireRoles(models.RoleInstructor), requestHandler.Pending)
		secured.PUT("/requests/:id/approve",
			middleware.RequireRoles(models.RoleAdmin, models.RoleInstructor), requestHandler.Approve)
		secured.PUT("/requests/:id/reject",
			middleware.RequireRoles(models.RoleAdmin, models.RoleInstructor), requestHandler.Reject)

		secured.GET("/notifications", notificationHandler.List)
		secured.PUT("/notifications/:id/read", notificationHandler.MarkRead)

		secured.GET("/policy", middleware.RequireRoles(models.RoleAdmin), policyHandler.Get)
		secured.PUT("/policy", middleware.RequireRoles(models.RoleAdmin), policyHandler.Update)
		secured.GET("/terms", policyHandler.Terms)
		secured.POST("/terms/:name/open", middleware.RequireRoles(models.RoleAdmin), policyHandler.OpenTerm)
		secured.POST("/terms/:name/close", middleware.RequireRoles(models.RoleAdmin), policyHandler.CloseTerm)

		secured.POST("/snapshots", middleware.RequireRoles(models.RoleAdmin), snapshotHandler.Save)
		secured.POST("/snapshots/restore", middleware.RequireRoles(models.RoleAdmin), snapshotHandler.Restore)

		secured.GET("/users", middleware.RequireRoles(models.RoleAdmin), authHandler.ListUsers)
		secured.POST("/users/instructors", middleware.RequireRoles(models.RoleAdmin), authHandler.CreateInstructor)
		secured.DELETE("/users/:id", middleware.RequireRoles(models.RoleAdmin), authHandler.DeleteUser)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := r.Run(addr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}
