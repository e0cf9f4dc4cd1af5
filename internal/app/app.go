package app

import (
	"aptitude_backend/internal/config"
	"aptitude_backend/internal/controller"
	"aptitude_backend/internal/repository"
	"aptitude_backend/internal/service"
	"aptitude_backend/internal/util"
	"aptitude_backend/pkg/configwatcher"
	"aptitude_backend/pkg/database"
	"aptitude_backend/pkg/logger"
	"aptitude_backend/pkg/monitoring"
	"aptitude_backend/pkg/security"
	"aptitude_backend/pkg/tracing"
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	Config    *config.Config
	ConfigDir string
	Router    *gin.Engine
	Mongo     *database.MongoManager
	Redis     *redis.Client

	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	question *repository.QuestionRepository
	lecture  *repository.LectureRepository
}

type services struct {
	question *service.QuestionService
	lecture  *service.LectureService
	storage  *service.StorageService
}

type controllers struct {
	question *controller.QuestionController
	lecture  *controller.LectureController
	health   *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) applyConfig(cfg *config.Config) {
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(store repository.Store) *repositories {
	return &repositories{
		question: repository.NewQuestionRepository(store),
		lecture:  repository.NewLectureRepository(store),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	return &services{
		question: service.NewQuestionService(repos.question),
		lecture:  service.NewLectureService(repos.lecture),
		storage:  service.NewStorageService(&cfg.Storage),
	}
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		question: controller.NewQuestionController(s.question, s.storage),
		lecture:  controller.NewLectureController(s.lecture),
		health:   controller.NewHealthController(a.Mongo),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	switch {
	case cfg.RateLimit.MaxRequests <= 0:
		logger.Log.Info("Rate limiting disabled")
	case a.Redis != nil:
		router.Use(security.RedisRateLimiter(a.Redis, cfg.RateLimit.MaxRequests, window))
	default:
		router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, window))
	}

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config, configDir string) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	util.SetExposeErrors(cfg.Server.ExposeErrors)
	switch cfg.Server.Mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		gin.SetMode(cfg.Server.Mode)
	}

	mongo := database.NewMongoManager(cfg.Mongo)
	mongo.OnConnect(repository.EnsureIndexes)

	app := &App{
		Config:    cfg,
		ConfigDir: configDir,
		Mongo:     mongo,
	}

	if cfg.RateLimit.Backend == "redis" {
		rdb, err := database.InitRedis(&cfg.Redis)
		if err != nil {
			logger.Log.Warn("Redis unavailable, rate limiting per instance", zap.Error(err))
		} else {
			app.Redis = rdb
		}
	}

	repos := app.initRepositories(mongo)
	services := app.initServices(repos, cfg)
	controllers := app.initControllers(services)

	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Error("Failed to initialize tracing", zap.Error(err))
			cfg.Tracing.Enabled = false
		} else {
			app.tracer = tp
		}
	}

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.RegisterConfigCallback(func(c *config.Config) {
		logger.SetLevel(c.Server.Mode)
		util.SetExposeErrors(c.Server.ExposeErrors)
	})

	return app
}

// Run serves until SIGINT or SIGTERM, then drains requests and releases the
// store connection.
func (a *App) Run() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !a.Config.Server.IsProduction() {
		go func() {
			if err := a.Mongo.EnsureReady(ctx); err != nil {
				logger.Log.Warn("MongoDB not reachable at startup, will retry on demand", zap.Error(err))
				return
			}
			logger.Log.Info("MongoDB connected")
		}()
	}

	if a.ConfigDir != "" {
		go func() {
			if err := configwatcher.WatchConfig(ctx, a.ConfigDir, "config.yaml", a.applyConfig); err != nil {
				logger.Log.Warn("Config hot reload disabled", zap.Error(err))
			}
		}()
	}

	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := a.Mongo.Close(shutdownCtx); err != nil {
		logger.Log.Error("Failed to close MongoDB connection", zap.Error(err))
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}

	logger.Log.Info("Server exiting")
}
