package app

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"quizmaster_backend/internal/config"
	"quizmaster_backend/internal/controller"
	"quizmaster_backend/internal/repository"
	"quizmaster_backend/internal/service"
	"quizmaster_backend/pkg/configwatcher"
	"quizmaster_backend/pkg/database"
	"quizmaster_backend/pkg/events"
	"quizmaster_backend/pkg/logger"
	"quizmaster_backend/pkg/monitoring"
	"quizmaster_backend/pkg/security"
	"quizmaster_backend/pkg/tracing"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	Store           *repository.Store
	Redis           *redis.Client
	publisher       *events.Publisher
	generator       service.QuizGenerator
	tracer          *sdktrace.TracerProvider
	cancel          context.CancelFunc
	configCallbacks []func(*config.Config)
}

// Dependencies 路由所需的外部依赖，测试中可替换为内存实现
type Dependencies struct {
	Store     *repository.Store
	Sessions  repository.SessionBlacklist
	Generator service.QuizGenerator
	Publisher service.EventPublisher
	Storage   *service.StorageService
}

type services struct {
	auth       *service.AuthService
	user       *service.UserService
	quiz       *service.QuizService
	attempt    *service.AttemptService
	generation *service.GenerationService
	storage    *service.StorageService
}

type controllers struct {
	auth       *controller.AuthController
	user       *controller.UserController
	quiz       *controller.QuizController
	attempt    *controller.AttemptController
	generation *controller.GenerationController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func initServices(deps Dependencies, cfg *config.Config) *services {
	store := deps.Store
	return &services{
		auth:       service.NewAuthService(store.Users, deps.Sessions, cfg),
		user:       service.NewUserService(store.Users, store.Quizzes, deps.Publisher),
		quiz:       service.NewQuizService(store.Quizzes, store.Users, deps.Publisher),
		attempt:    service.NewAttemptService(store.Attempts, store.Quizzes, store.Users, deps.Publisher),
		generation: service.NewGenerationService(deps.Generator, cfg.AI),
		storage:    deps.Storage,
	}
}

func initControllers(s *services, store *repository.Store, cfg *config.Config) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth, s.user, cfg.IsRelease()),
		user:       controller.NewUserController(s.user),
		quiz:       controller.NewQuizController(s.quiz, s.storage),
		attempt:    controller.NewAttemptController(s.attempt),
		generation: controller.NewGenerationController(s.generation, cfg.AI.MaxUploadMB),
		health:     controller.NewHealthController(store),
	}
}

func setupMiddlewares(ctx context.Context, router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(ctx, cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// NewRouter 组装服务、控制器和路由，ctx 结束时停止后台清理任务
func NewRouter(ctx context.Context, cfg *config.Config, deps Dependencies) *gin.Engine {
	if deps.Sessions == nil {
		deps.Sessions = repository.NewMemorySessionRepository()
	}
	if deps.Storage == nil {
		deps.Storage = service.NewStorageService(ctx, cfg)
	}

	s := initServices(deps, cfg)
	c := initControllers(s, deps.Store, cfg)

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	setupMiddlewares(ctx, router, cfg)
	registerRoutes(router, c, deps.Sessions, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}
	return router
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")
	gin.SetMode(cfg.Server.Mode)

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{Config: cfg, cancel: cancel}

	store, err := database.InitStore(ctx, cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize store", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}
	app.Store = store

	// 会话吊销列表：启用 Redis 时跨实例共享
	var sessions repository.SessionBlacklist = repository.NewMemorySessionRepository()
	if cfg.Redis.Enabled {
		rdb, err := database.InitRedis(&cfg.Redis)
		if err != nil {
			logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		}
		app.Redis = rdb
		sessions = repository.NewRedisSessionRepository(rdb)
	}

	var publisher service.EventPublisher
	if cfg.Events.Enabled {
		p, err := events.NewPublisher(cfg.Events.URL, cfg.Events.Exchange)
		if err != nil {
			logger.Log.Error("Failed to connect event publisher, events disabled", zap.Error(err))
		} else {
			app.publisher = p
			publisher = p
		}
	}

	generator, err := service.NewQuizGenerator(ctx, cfg.AI)
	if err != nil {
		logger.Log.Fatal("Failed to initialize quiz generator", zap.String("provider", cfg.AI.Provider), zap.Error(err))
	}
	app.generator = generator

	// 监控初始化
	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	app.Router = NewRouter(ctx, cfg, Dependencies{
		Store:     store,
		Sessions:  sessions,
		Generator: generator,
		Publisher: publisher,
		Storage:   service.NewStorageService(ctx, cfg),
	})

	app.RegisterConfigCallback(logger.ApplyConfig)
	if cfg.ConfigFile != "" {
		err := configwatcher.WatchConfig(ctx, cfg.ConfigFile, func(newCfg *config.Config) {
			for _, cb := range app.configCallbacks {
				cb(newCfg)
			}
		})
		if err != nil {
			logger.Log.Warn("Config hot reload disabled", zap.Error(err))
		}
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	a.shutdown(ctx)
	logger.Log.Info("Server exiting")
}

// shutdown 释放存储、消息、追踪等连接
func (a *App) shutdown(ctx context.Context) {
	a.cancel()

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			logger.Log.Error("Failed to close event publisher", zap.Error(err))
		}
	}
	if closer, ok := a.generator.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			logger.Log.Error("Failed to close quiz generator", zap.Error(err))
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			logger.Log.Error("Failed to close redis", zap.Error(err))
		}
	}
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if err := a.Store.Close(ctx); err != nil {
		logger.Log.Error("Failed to close store", zap.Error(err))
	}
	_ = logger.Log.Sync()
}
