package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"study_planner_backend/internal/config"
	"study_planner_backend/internal/controller"
	"study_planner_backend/internal/planner"
	"study_planner_backend/internal/repository"
	"study_planner_backend/internal/service"
	"study_planner_backend/pkg/configwatcher"
	"study_planner_backend/pkg/database"
	"study_planner_backend/pkg/logger"
	"study_planner_backend/pkg/monitoring"
	"study_planner_backend/pkg/security"
	"study_planner_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	Store           *planner.Store
	cors            *security.OriginPolicy
	limiter         *security.RateLimiter
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user     *repository.UserRepository
	journal  *repository.PlannerJournal
	views    *repository.ViewRepository
	requests *repository.RequestLogRepository
}

type services struct {
	auth    *service.AuthService
	storage *service.StorageService
	planner *service.PlannerService
	detail  *service.TaskDetailService
}

type controllers struct {
	auth    *controller.AuthController
	planner *controller.PlannerController
	mentor  *controller.MentorController
	detail  *controller.TodoDetailController
	health  *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) applyConfig(cfg *config.Config) {
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client) *repositories {
	return &repositories{
		user:     repository.NewUserRepository(db),
		journal:  repository.NewPlannerJournal(db),
		views:    repository.NewViewRepository(rdb),
		requests: repository.NewRequestLogRepository(rdb),
	}
}

// initStore loads every persisted planner row into memory. The store is the
// read path from here on; the journal only receives writes.
func (a *App) initStore(repos *repositories, cfg *config.Config) (*planner.Store, error) {
	store := planner.NewStore(repos.journal, cfg.Planner.DefaultSubjects)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	snap, err := repos.journal.Load(ctx)
	if err != nil {
		return nil, err
	}
	store.Hydrate(snap)

	logger.Log.Info("Planner store hydrated",
		zap.Int("dates", len(snap.TasksByDate)),
		zap.Int("subjects", len(store.Subjects())),
	)
	return store, nil
}

func (a *App) initServices(repos *repositories, store *planner.Store, cfg *config.Config) *services {
	guard := planner.NewGuard(store, repos.user)

	s := &services{}
	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.planner = service.NewPlannerService(guard, repos.user, repos.views)
	s.planner.Blobs = s.storage
	s.detail = service.NewTaskDetailService(guard, s.storage, cfg.Storage.MaxUploadMB)
	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:    controller.NewAuthController(s.auth, a.Config),
		planner: controller.NewPlannerController(s.planner),
		mentor:  controller.NewMentorController(s.planner),
		detail:  controller.NewTodoDetailController(s.detail, a.Config.Storage.MaxUploadMB),
		health:  controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	a.cors = security.NewOriginPolicy(cfg.CORS.AllowedOrigins)
	a.limiter = security.NewRateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute)

	router.Use(security.CORS(a.cors))
	router.Use(security.Secure())
	router.Use(a.limiter.Handler())

	// 분산 추적
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())

	// CORS 와 요청 한도는 설정 파일 변경 시 바로 반영
	a.RegisterConfigCallback(func(c *config.Config) {
		a.cors.Update(c.CORS.AllowedOrigins)
		a.limiter.Update(c.RateLimit.MaxRequests, time.Duration(c.RateLimit.WindowMinutes)*time.Minute)
		logger.Log.Info("CORS and rate limit reloaded",
			zap.Strings("origins", c.CORS.AllowedOrigins),
			zap.Int("maxRequests", c.RateLimit.MaxRequests),
		)
	})
}

func applyTimezone(cfg *config.Config) {
	if cfg.Planner.Timezone == "" {
		return
	}
	loc, err := time.LoadLocation(cfg.Planner.Timezone)
	if err != nil {
		logger.Log.Fatal("Invalid planner timezone", zap.Error(err))
	}
	// 날짜 키는 로컬 달력 기준이다
	time.Local = loc
}

func shouldMigrate(cfg *config.Config) bool {
	return cfg.ForceMigrate || cfg.Server.Mode != "release"
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")
	applyTimezone(cfg)

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if shouldMigrate(cfg) {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Database migration failed", zap.Error(err))
		}
	}

	app := &App{
		Config: cfg,
		DB:     db,
	}
	if cfg.MigrateOnly {
		return app
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}
	app.Redis = rdb

	repos := app.initRepositories(db, rdb)
	store, err := app.initStore(repos, cfg)
	if err != nil {
		logger.Log.Fatal("Failed to load planner data", zap.Error(err))
	}
	app.Store = store

	services := app.initServices(repos, store, cfg)
	controllers := app.initControllers(services, db, rdb)

	// 모니터링 초기화
	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Tracing)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Server.Mode == "debug" {
		router.Use(gin.Logger())
	}
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, repos, cfg)

	return app
}

// SeedUsers connects to the database and upserts the demo accounts. It backs
// the seed-users command.
func SeedUsers(cfg *config.Config) error {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}
	auth := service.NewAuthService(repository.NewUserRepository(db), cfg)
	return auth.SeedUsers()
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	go func() {
		path := filepath.Join(a.Config.ConfigDir, "config.yaml")
		if err := configwatcher.WatchConfig(watchCtx, path, a.applyConfig); err != nil {
			logger.Log.Error("Config watcher stopped", zap.Error(err))
		}
	}()

	// 서버 시작
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 종료 신호를 받으면 5초 안에 정상 종료
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	a.limiter.Stop()
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

	log.Println("Server exiting")
}
