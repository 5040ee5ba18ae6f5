package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/it-dept/dept-cms-api/api/swagger"
	"github.com/it-dept/dept-cms-api/internal/handler"
	"github.com/it-dept/dept-cms-api/internal/middleware"
	"github.com/it-dept/dept-cms-api/internal/repository"
	"github.com/it-dept/dept-cms-api/internal/service"
	"github.com/it-dept/dept-cms-api/pkg/cache"
	"github.com/it-dept/dept-cms-api/pkg/config"
	"github.com/it-dept/dept-cms-api/pkg/database"
	"github.com/it-dept/dept-cms-api/pkg/logger"
	corsmiddleware "github.com/it-dept/dept-cms-api/pkg/middleware/cors"
	reqidmiddleware "github.com/it-dept/dept-cms-api/pkg/middleware/requestid"
	"github.com/it-dept/dept-cms-api/pkg/storage"
)

// @title Department CMS API
// @version 1.0.0
// @description Content management backend for an academic department site
// @BasePath /api
// @schemes http

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	store, err := storage.NewLocalStorage(cfg.Uploads.Dir)
	if err != nil {
		logr.Fatal("failed to init upload storage", zap.Error(err))
	}

	metricsSvc := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	cacheEnabled := false
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		} else {
			cacheRepo = repository.NewCacheRepository(client)
			cacheEnabled = true
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.PublicTTL, logr, cacheEnabled)

	validate := validator.New()

	subjectRepo := repository.NewSubjectRepository(db)
	detailRepo := repository.NewSubjectDetailRepository(db)
	facultyRepo := repository.NewFacultyRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	blogRepo := repository.NewBlogRepository(db)
	userRepo := repository.NewUserRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})
	subjectSvc := service.NewSubjectService(subjectRepo, cacheSvc, validate, logr)
	detailSvc := service.NewSubjectDetailService(detailRepo, subjectRepo, cacheSvc, validate, logr)
	facultySvc := service.NewFacultyService(facultyRepo, validate, logr)
	activitySvc := service.NewActivityService(activityRepo, cacheSvc, validate, logr)
	blogSvc := service.NewBlogService(blogRepo, activityRepo, cacheSvc, validate, logr)
	uploadSvc := service.NewUploadService(store, blogRepo, metricsSvc, cfg.Uploads.MaxFileSizeBytes, cfg.Uploads.PublicBasePath, logr)
	statsSvc := service.NewStatsService(subjectRepo, activityRepo, blogRepo, logr)

	seedCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := authSvc.EnsureAdmin(seedCtx, cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.FullName); err != nil {
		logr.Warn("admin seed failed", zap.Error(err))
	}
	cancel()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.Register(r, cfg.APIPrefix, handler.Handlers{
		Auth:           handler.NewAuthHandler(authSvc),
		Subjects:       handler.NewSubjectHandler(subjectSvc, cfg.Export.PDFFontPath),
		SubjectDetails: handler.NewSubjectDetailHandler(detailSvc),
		Faculty:        handler.NewFacultyHandler(facultySvc),
		Activities:     handler.NewActivityHandler(activitySvc),
		Blogs:          handler.NewBlogHandler(blogSvc),
		Public:         handler.NewPublicHandler(facultySvc, blogSvc),
		Upload:         handler.NewUploadHandler(uploadSvc),
		Images:         handler.NewImageHandler(uploadSvc),
		Stats:          handler.NewStatsHandler(statsSvc),
	}, authSvc)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
