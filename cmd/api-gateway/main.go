package main

import (
	"context"
	"fmt"
	"log"
	"net/http/pprof"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/course-scheduler/api/swagger"
	"github.com/noah-isme/course-scheduler/internal/engine"
	internalhandler "github.com/noah-isme/course-scheduler/internal/handler"
	internalmiddleware "github.com/noah-isme/course-scheduler/internal/middleware"
	"github.com/noah-isme/course-scheduler/internal/models"
	"github.com/noah-isme/course-scheduler/internal/repository"
	"github.com/noah-isme/course-scheduler/internal/service"
	"github.com/noah-isme/course-scheduler/pkg/cache"
	"github.com/noah-isme/course-scheduler/pkg/config"
	"github.com/noah-isme/course-scheduler/pkg/database"
	"github.com/noah-isme/course-scheduler/pkg/jobs"
	"github.com/noah-isme/course-scheduler/pkg/logger"
	corsmiddleware "github.com/noah-isme/course-scheduler/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/course-scheduler/pkg/middleware/requestid"
	"github.com/noah-isme/course-scheduler/pkg/storage"
)

// @title Course Scheduler API
// @version 1.0.0
// @description Hybrid CP/GA weekly class scheduling engine
// @BasePath /
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	metricsSvc := service.NewMetricsService()
	metricsHandler := internalhandler.NewMetricsHandler(metricsSvc)

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to initialise database", "error", err)
	}
	defer db.Close()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)
	r.GET("/metrics/snapshot", metricsHandler.Snapshot)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
		registerPprof(r)
	}

	api := r.Group(cfg.APIPrefix)

	// --- auth ---

	userRepo := repository.NewUserRepository(db)
	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "course-scheduler",
		Audience:           []string{"course-scheduler-clients"},
	})
	authHandler := internalhandler.NewAuthHandler(authSvc)

	authRoutes := api.Group("/auth")
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.POST("/refresh", authHandler.Refresh)
	authRoutes.POST("/forgot-password", authHandler.ForgotPassword)
	authRoutes.POST("/reset-password", authHandler.ResetPassword)

	protectedAuth := authRoutes.Group("")
	protectedAuth.Use(internalmiddleware.JWT(authSvc))
	protectedAuth.POST("/logout", authHandler.Logout)
	protectedAuth.POST("/change-password", authHandler.ChangePassword)
	protectedAuth.GET("/me", authHandler.Me)

	secured := api.Group("")
	secured.Use(internalmiddleware.JWT(authSvc))

	// --- users ---

	userSvc := service.NewUserService(userRepo, nil, logr)
	userHandler := internalhandler.NewUserHandler(userSvc)

	usersGroup := secured.Group("/users")
	usersGroup.Use(internalmiddleware.RBAC(string(models.RoleAdmin), string(models.RoleSuperAdmin)))
	usersGroup.GET("", userHandler.List)
	usersGroup.POST("", userHandler.Create)
	usersGroup.GET("/:id", userHandler.Get)
	usersGroup.PUT("/:id", userHandler.Update)
	usersGroup.DELETE("/:id", userHandler.Delete)

	// --- professors ---

	professorRepo := repository.NewProfessorRepository(db)
	professorSvc := service.NewProfessorService(professorRepo, nil, logr)
	professorHandler := internalhandler.NewProfessorHandler(professorSvc)

	professorsGroup := secured.Group("/professors")
	professorsGroup.GET("", internalmiddleware.RBAC(string(models.RoleAdmin), string(models.RoleSuperAdmin)), professorHandler.List)
	professorsGroup.POST("", internalmiddleware.RBAC(string(models.RoleAdmin), string(models.RoleSuperAdmin)), professorHandler.Create)
	professorsGroup.GET("/:id", internalmiddleware.RBAC("SELF", string(models.RoleAdmin), string(models.RoleSuperAdmin)), professorHandler.Get)
	professorsGroup.PUT("/:id", internalmiddleware.RBAC(string(models.RoleAdmin), string(models.RoleSuperAdmin)), professorHandler.Update)
	professorsGroup.DELETE("/:id", internalmiddleware.RBAC(string(models.RoleSuperAdmin)), professorHandler.Delete)

	// --- subjects ---

	subjectRepo := repository.NewSubjectRepository(db)
	subjectSvc := service.NewSubjectService(subjectRepo, nil, logr)
	subjectHandler := internalhandler.NewSubjectHandler(subjectSvc)

	subjectsGroup := secured.Group("/subjects")
	subjectsGroup.GET("", subjectHandler.List)
	subjectsGroup.GET("/:id", subjectHandler.Get)
	subjectsGroup.POST("", internalmiddleware.RBAC(string(models.RoleAdmin), string(models.RoleSuperAdmin)), subjectHandler.Create)
	subjectsGroup.PUT("/:id", internalmiddleware.RBAC(string(models.RoleAdmin), string(models.RoleSuperAdmin)), subjectHandler.Update)
	subjectsGroup.DELETE("/:id", internalmiddleware.RBAC(string(models.RoleSuperAdmin)), subjectHandler.Delete)

	// --- academic periods ---

	periodRepo := repository.NewAcademicPeriodRepository(db)
	periodSvc := service.NewAcademicPeriodService(periodRepo, nil, logr)
	periodHandler := internalhandler.NewAcademicPeriodHandler(periodSvc)

	periodsGroup := secured.Group("/academic-periods")
	periodsGroup.GET("", periodHandler.List)
	periodsGroup.GET("/active", periodHandler.Active)
	periodsGroup.GET("/:id", periodHandler.Get)
	periodsGroup.POST("", internalmiddleware.RBAC(string(models.RoleAdmin), string(models.RoleSuperAdmin)), periodHandler.Create)
	periodsGroup.PUT("/:id", internalmiddleware.RBAC(string(models.RoleAdmin), string(models.RoleSuperAdmin)), periodHandler.Update)
	periodsGroup.POST("/:id/activate", internalmiddleware.RBAC(string(models.RoleAdmin), string(models.RoleSuperAdmin)), periodHandler.Activate)
	periodsGroup.DELETE("/:id", internalmiddleware.RBAC(string(models.RoleSuperAdmin)), periodHandler.Delete)

	// --- students ---

	studentRepo := repository.NewStudentRepository(db)
	studentSvc := service.NewStudentService(studentRepo, nil, logr)
	studentHandler := internalhandler.NewStudentHandler(studentSvc)

	studentsGroup := secured.Group("/students")
	studentsGroup.GET("", internalmiddleware.RBAC(string(models.RoleProfessor), string(models.RoleAdmin), string(models.RoleSuperAdmin)), studentHandler.List)
	studentsGroup.POST("", internalmiddleware.RBAC(string(models.RoleAdmin), string(models.RoleSuperAdmin)), studentHandler.Create)
	studentsGroup.GET("/:id", internalmiddleware.RBAC("SELF", string(models.RoleProfessor), string(models.RoleAdmin), string(models.RoleSuperAdmin)), studentHandler.Get)
	studentsGroup.PUT("/:id", internalmiddleware.RBAC(string(models.RoleAdmin), string(models.RoleSuperAdmin)), studentHandler.Update)
	studentsGroup.DELETE("/:id", internalmiddleware.RBAC(string(models.RoleSuperAdmin)), studentHandler.Delete)

	// --- scheduling engine ---

	catalogRepo := repository.NewCatalogRepository(db, subjectRepo, periodRepo)
	studentCatalogReader := repository.NewStudentCatalogReader(studentRepo)

	engineObserver := service.NewEngineObserver(metricsSvc.Registry())
	eng := engine.New(catalogRepo, studentCatalogReader, engine.Config{
		CPTimeout: cfg.Scheduler.CPTimeout,
		GAWorkers: cfg.Scheduler.GAWorkers,
		Observer:  engineObserver,
	})

	var cacheRepo *repository.CacheRepository
	var cacheCloser interface{ Close() error }
	if client, err := cache.NewRedis(cfg.Redis); err != nil {
		logr.Sugar().Warnw("schedule result cache disabled", "error", err)
	} else {
		cacheCloser = client
		cacheRepo = repository.NewCacheRepository(client, logr)
	}
	if cacheCloser != nil {
		defer cacheCloser.Close()
	}

	var cacheSvc *service.CacheService
	if cacheRepo != nil {
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Scheduler.ResultCacheTTL, logr, true)
	}

	var jobStore service.ScheduleJobStore
	if cacheRepo != nil {
		jobRepo := repository.NewScheduleJobRepository(cacheRepo, cfg.Scheduler.ResultCacheTTL*4)
		jobStore = service.NewRedisScheduleJobStore(jobRepo)
	}

	// The queue needs the service's job handler, and the service needs the
	// queue, so the handler is threaded through a placeholder service built
	// without a queue and then rebuilt once the queue exists.
	bootstrapSvc := service.NewSchedulingService(eng, cacheSvc, nil, jobStore, cfg.Scheduler, logr)

	var scheduleQueue *jobs.Queue
	schedulingSvc := bootstrapSvc
	queueCtx, cancelQueue := context.WithCancel(context.Background())
	defer cancelQueue()

	if jobStore != nil {
		scheduleQueue = jobs.NewQueue("schedule-generation", bootstrapSvc.JobHandler(), jobs.QueueConfig{
			Workers:    2,
			MaxRetries: 1,
			RetryDelay: 2 * time.Second,
			Logger:     logr,
		})
		scheduleQueue.Start(queueCtx)
		defer scheduleQueue.Stop()
		schedulingSvc = service.NewSchedulingService(eng, cacheSvc, scheduleQueue, jobStore, cfg.Scheduler, logr)
	}

	var exportSvc *service.ExportService
	if cfg.Exports.Enabled {
		exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init export storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exportSvc = service.NewExportService(exportStore, signer, service.ExportConfig{
			APIPrefix: cfg.APIPrefix,
			ResultTTL: cfg.Exports.SignedURLTTL,
		}, logr, nil, nil)
	}

	scheduleHandler := internalhandler.NewScheduleHandler(schedulingSvc, exportSvc)

	schedulesGroup := secured.Group("/schedules")
	schedulesGroup.Use(internalmiddleware.RBAC(string(models.RoleStudent), string(models.RoleAdmin), string(models.RoleSuperAdmin)))
	schedulesGroup.POST("/generate", scheduleHandler.Generate)
	schedulesGroup.GET("/jobs/:id", scheduleHandler.JobStatus)
	if exportSvc != nil {
		schedulesGroup.POST("/export", scheduleHandler.Export)
		api.GET("/schedules/export/:token", scheduleHandler.Download)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func registerPprof(r *gin.Engine) {
	group := r.Group("/debug/pprof")
	group.GET("/", gin.WrapF(pprof.Index))
	group.GET("/cmdline", gin.WrapF(pprof.Cmdline))
	group.GET("/profile", gin.WrapF(pprof.Profile))
	group.POST("/symbol", gin.WrapF(pprof.Symbol))
	group.GET("/symbol", gin.WrapF(pprof.Symbol))
	group.GET("/trace", gin.WrapF(pprof.Trace))
	group.GET("/allocs", gin.WrapH(pprof.Handler("allocs")))
	group.GET("/block", gin.WrapH(pprof.Handler("block")))
	group.GET("/goroutine", gin.WrapH(pprof.Handler("goroutine")))
	group.GET("/heap", gin.WrapH(pprof.Handler("heap")))
	group.GET("/mutex", gin.WrapH(pprof.Handler("mutex")))
	group.GET("/threadcreate", gin.WrapH(pprof.Handler("threadcreate")))
}
