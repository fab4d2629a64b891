package app

import (
	"achievements_tracker_backend/internal/config"
	"achievements_tracker_backend/internal/controller"
	"achievements_tracker_backend/internal/docstore"
	"achievements_tracker_backend/internal/middleware"
	"achievements_tracker_backend/internal/model"
	"achievements_tracker_backend/internal/repository"
	"achievements_tracker_backend/internal/service"
	"achievements_tracker_backend/internal/util"
	"achievements_tracker_backend/pkg/configwatcher"
	"achievements_tracker_backend/pkg/database"
	"achievements_tracker_backend/pkg/logger"
	"achievements_tracker_backend/pkg/monitoring"
	"achievements_tracker_backend/pkg/security"
	"achievements_tracker_backend/pkg/tracing"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

const serviceName = "achievements-tracker"

type App struct {
	Config *config.Config
	Router *gin.Engine
	Store  docstore.Store

	ctx             context.Context
	cancel          context.CancelFunc
	tracerProvider  *sdktrace.TracerProvider
	mu              sync.Mutex
	configCallbacks []func(*config.Config)
}

type services struct {
	achievement *service.AchievementService
}

type controllers struct {
	achievement *controller.AchievementController
	user        *controller.UserController
	health      *controller.HealthController
}

var registerValidationsOnce sync.Once

// registerValidations 注册枚举校验到 gin 的默认校验器
func registerValidations() {
	registerValidationsOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			model.RegisterValidations(v)
		}
	})
}

// RegisterConfigCallback 注册配置热更新回调
func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) applyConfig(cfg *config.Config) {
	a.mu.Lock()
	callbacks := append([]func(*config.Config){}, a.configCallbacks...)
	a.mu.Unlock()
	for _, cb := range callbacks {
		cb(cfg)
	}
}

func (a *App) initServices(store docstore.Store, cfg *config.Config) *services {
	repo := repository.NewAchievementGroupRepository(store)
	return &services{
		achievement: service.NewAchievementService(repo, cfg.Store.MaxRetries),
	}
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		achievement: controller.NewAchievementController(s.achievement),
		user:        controller.NewUserController(),
		health:      controller.NewHealthController(s.achievement),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(a.ctx, cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}
	router.Use(monitoring.MetricsMiddleware())
}

// New assembles the HTTP application on top of an opened store. Every store call is
// bounded by store.timeout_seconds and reported to the metrics collectors.
func New(cfg *config.Config, store docstore.Store, verifier middleware.TokenVerifier) *App {
	registerValidations()
	monitoring.Init()

	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		Config: cfg,
		Store:  docstore.Instrument(store, cfg.Store.Timeout(), monitoring.ObserveStoreOperation),
		ctx:    ctx,
		cancel: cancel,
	}

	s := app.initServices(app.Store, cfg)
	c := app.initControllers(s)

	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Server.Mode == gin.DebugMode {
		router.Use(gin.Logger())
	}
	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, c, verifier)
	app.Router = router

	// 日志级别支持热更新
	app.RegisterConfigCallback(func(newCfg *config.Config) {
		if logger.SetLevel(newCfg.Log.Level) {
			logger.Log.Info("Log level reloaded", zap.String("level", newCfg.Log.Level))
		}
	})

	return app
}

// NewApp 根据配置连接存储、初始化日志与链路追踪
func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	store, err := database.OpenDocumentStore(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to open document store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	logger.Log.Info("Document store ready", zap.String("driver", cfg.Store.Driver))

	var tp *sdktrace.TracerProvider
	if cfg.Tracing.Enabled {
		tp, err = tracing.InitTracer(serviceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	verifier := util.NewJWTVerifier(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience)
	app := New(cfg, store, verifier)
	app.tracerProvider = tp
	return app
}

// WatchConfig 监听 configDir/config.yaml，变更后触发已注册的回调
func (a *App) WatchConfig(configDir string) {
	path := filepath.Join(configDir, "config.yaml")
	go func() {
		if err := configwatcher.WatchConfig(a.ctx, path, time.Second, a.applyConfig); err != nil {
			logger.Log.Warn("Config watcher stopped", zap.String("path", path), zap.Error(err))
		}
	}()
}

// Close 释放后台任务、存储连接和追踪导出器
func (a *App) Close(ctx context.Context) error {
	a.cancel()
	var errs []error
	if err := a.Store.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
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
			logger.Log.Fatal("listen failed", zap.Error(err))
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
	if err := a.Close(ctx); err != nil {
		logger.Log.Error("Failed to release resources", zap.Error(err))
	}

	logger.Log.Info("Server exiting")
	logger.Log.Sync()
}
