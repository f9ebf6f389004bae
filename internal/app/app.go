package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"brolearn_backend/internal/config"
	"brolearn_backend/internal/controller"
	"brolearn_backend/internal/middleware"
	"brolearn_backend/internal/repository"
	"brolearn_backend/internal/service"
	"brolearn_backend/internal/util"
	"brolearn_backend/pkg/configwatcher"
	"brolearn_backend/pkg/database"
	"brolearn_backend/pkg/logger"
	"brolearn_backend/pkg/monitoring"
	"brolearn_backend/pkg/security"
	"brolearn_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// configDir holds config.yaml; it is also the directory watched for reloads.
const configDir = "configs"

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	// Redis is nil when redis is disabled.
	Redis *redis.Client

	services        *services
	scheduler       *gocron.Scheduler
	tracer          *sdktrace.TracerProvider
	ctx             context.Context
	cancel          context.CancelFunc
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user            *repository.UserRepository
	catalog         *repository.CatalogRepository
	progress        *repository.ProgressRepository
	achievement     *repository.AchievementRepository
	userAchievement *repository.UserAchievementRepository
}

type services struct {
	auth        *service.AuthService
	storage     *service.StorageService
	course      *service.CourseService
	progress    *service.ProgressService
	achievement *service.AchievementService
}

type controllers struct {
	auth        *controller.AuthController
	course      *controller.CourseController
	progress    *controller.ProgressController
	achievement *controller.AchievementController
	health      *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:            repository.NewUserRepository(db),
		catalog:         repository.NewCatalogRepository(db),
		progress:        repository.NewProgressRepository(db),
		achievement:     repository.NewAchievementRepository(db),
		userAchievement: repository.NewUserAchievementRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	// completions of one user are serialized; across instances only redis can do that
	var locker service.Locker
	var cache service.LeaderboardCache
	cacheTTL := time.Duration(cfg.Jobs.LeaderboardRefreshMinutes) * time.Minute
	if rdb != nil {
		locker = service.NewRedisLocker(rdb)
		cache = service.NewRedisLeaderboardCache(rdb, cacheTTL)
	} else {
		locker = service.NewLocalLocker()
		cache = service.NewMemoryLeaderboardCache(cacheTTL)
	}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg.JWT)
	s.achievement = service.NewAchievementService(repos.achievement, repos.userAchievement, repos.user, cache)
	s.progress = service.NewProgressService(repos.catalog, repos.user, repos.progress, s.achievement, locker)
	s.course = service.NewCourseService(repos.catalog, repos.progress, s.storage)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:        controller.NewAuthController(s.auth),
		course:      controller.NewCourseController(s.course),
		progress:    controller.NewProgressController(s.progress),
		achievement: controller.NewAchievementController(s.achievement),
		health:      controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(middleware.RequestID())
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if a.Redis != nil {
		router.Use(security.RedisRateLimiter(a.Redis, cfg.RateLimit.MaxRequests, window))
	} else {
		router.Use(security.RateLimiter(a.ctx, cfg.RateLimit.MaxRequests, window))
	}

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// prepareDatabase migrates in debug mode or when forced, and seeds the
// catalog when asked to.
func (a *App) prepareDatabase(ctx context.Context) error {
	if a.Config.Server.Mode == gin.DebugMode || a.Config.ForceMigrate {
		logger.Log.Info("Running database migrations")
		if err := database.Migrate(ctx, a.DB); err != nil {
			return err
		}
	}

	if a.Config.SeedCatalog && a.Config.Seed.CatalogFile != "" {
		seed, err := database.LoadCatalogSeed(a.Config.Seed.CatalogFile)
		if err != nil {
			return err
		}
		seeded, err := database.SeedCatalog(ctx, a.DB, seed)
		if err != nil {
			return err
		}
		if !seeded {
			logger.Log.Info("Catalog already present, seed skipped")
		}
	}
	return nil
}

func (a *App) watchConfig() {
	a.RegisterConfigCallback(func(cfg *config.Config) {
		logger.SetLevel(logger.LevelFor(cfg))
		logger.Log.Info("Log level reloaded", zap.String("level", logger.Level().String()))
	})

	go func() {
		err := configwatcher.WatchConfig(a.ctx, configDir, func(cfg *config.Config) {
			for _, cb := range a.configCallbacks {
				cb(cfg)
			}
		})
		if err != nil {
			logger.Log.Error("Config watcher stopped", zap.Error(err))
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")
	gin.SetMode(cfg.Server.Mode)

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = database.InitRedis(&cfg.Redis)
		if err != nil {
			logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
		ctx:    ctx,
		cancel: cancel,
	}

	if err := app.prepareDatabase(ctx); err != nil {
		logger.Log.Fatal("Failed to prepare database", zap.Error(err))
	}
	if cfg.MigrateOnly {
		return app
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("brolearn", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.scheduler = app.startBackgroundTasks(services)
	app.watchConfig()

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// wait for an interrupt, then shut down with a 5 second grace period
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	a.Close(ctx)
	logger.Log.Info("Server exiting")
}

// Close stops background work and releases connections.
func (a *App) Close(ctx context.Context) {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.cancel != nil {
		a.cancel()
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		sqlDB.Close()
	}
}
