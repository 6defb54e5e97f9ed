package app

import (
	"baobab_academy/internal/config"
	"baobab_academy/internal/controller"
	"baobab_academy/internal/middleware"
	"baobab_academy/internal/repository"
	"baobab_academy/internal/service"
	"baobab_academy/internal/util"
	"baobab_academy/pkg/configwatcher"
	"baobab_academy/pkg/database"
	"baobab_academy/pkg/logger"
	"baobab_academy/pkg/monitoring"
	"baobab_academy/pkg/security"
	"baobab_academy/pkg/tracing"
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	ConfigDir       string
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	origins         *security.OriginSet
	tracer          *sdktrace.TracerProvider
	events          *service.EventHub
	configCallbacks []configwatcher.Reloader
}

type repositories struct {
	user     *repository.UserRepository
	category *repository.CategoryRepository
	course   *repository.CourseRepository
	chapter  *repository.ChapterRepository
	lesson   *repository.LessonRepository
	progress *repository.ProgressRepository
}

type services struct {
	auth         *service.AuthService
	storage      *service.StorageService
	media        *service.MediaService
	category     *service.CategoryService
	course       *service.CourseService
	coursePublic *service.CoursePublicService
	progress     *service.ProgressService
	events       *service.EventHub
}

type controllers struct {
	auth         *controller.AuthController
	category     *controller.CategoryController
	courseAdmin  *controller.CourseAdminController
	coursePublic *controller.CoursePublicController
	courseUser   *controller.CourseUserController
	health       *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback configwatcher.Reloader) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:     repository.NewUserRepository(db),
		category: repository.NewCategoryRepository(db),
		course:   repository.NewCourseRepository(db),
		chapter:  repository.NewChapterRepository(db),
		lesson:   repository.NewLessonRepository(db),
		progress: repository.NewProgressRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	s.events = service.NewEventHub(rdb)
	s.events.AllowOrigin = a.origins.Allowed
	s.storage = service.NewStorageService(cfg)
	s.media = service.NewMediaService(s.storage)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.category = service.NewCategoryService(repos.category, rdb, cfg)
	s.course = service.NewCourseService(
		db,
		repos.course,
		repos.chapter,
		repos.lesson,
		repos.category,
		repos.progress,
		s.storage,
		s.media,
		s.category,
		rdb,
	)
	s.course.Events = s.events
	s.coursePublic = service.NewCoursePublicService(repos.course, s.category, rdb, cfg)
	s.progress = service.NewProgressService(db, repos.course, repos.chapter, repos.lesson, repos.progress, s.coursePublic)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:         controller.NewAuthController(s.auth),
		category:     controller.NewCategoryController(s.category),
		courseAdmin:  controller.NewCourseAdminController(s.course),
		coursePublic: controller.NewCoursePublicController(s.coursePublic),
		courseUser:   controller.NewCourseUserController(s.progress),
		health:       controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(a.origins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, cfg.RateWindow()))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
	router.Use(middleware.ConfigMiddleware(cfg))
}

// NewApp connects storage backends and builds the router. Redis is optional:
// without it the category and catalog caches are disabled.
func NewApp(cfg *config.Config, configDir string) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database, cfg.ForceMigrate || cfg.Server.Mode != gin.ReleaseMode)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	app := &App{
		Config:    cfg,
		ConfigDir: configDir,
		DB:        db,
		origins:   security.NewOriginSet(cfg.CORS.AllowedOrigins),
	}
	if cfg.MigrateOnly {
		return app
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Warn("Redis unavailable, caching disabled", zap.Error(err))
		rdb = nil
	}
	app.Redis = rdb

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, rdb)
	app.events = services.events
	controllers := app.initControllers(services, db, rdb)

	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("baobab-academy", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Error("Failed to initialize tracing", zap.Error(err))
			cfg.Tracing.Enabled = false
		} else {
			app.tracer = tp
		}
	}

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.RegisterConfigCallback(func(newCfg *config.Config) {
		app.origins.Replace(newCfg.CORS.AllowedOrigins)
		logger.Log.Info("CORS origins reloaded", zap.Strings("origins", newCfg.CORS.AllowedOrigins))
	})

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	go a.events.Run(watchCtx)
	go func() {
		file := filepath.Join(a.ConfigDir, "config.yaml")
		if err := configwatcher.Watch(watchCtx, file, a.configCallbacks...); err != nil {
			logger.Log.Warn("Config hot reload disabled", zap.Error(err))
		}
	}()

	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	stopWatch()

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	logger.Log.Info("Server exiting")
}
