package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"speech_therapy_backend/internal/config"
	"speech_therapy_backend/internal/controller"
	"speech_therapy_backend/internal/ml"
	"speech_therapy_backend/internal/phonetic"
	"speech_therapy_backend/internal/repository"
	"speech_therapy_backend/internal/service"
	"speech_therapy_backend/pkg/configwatcher"
	"speech_therapy_backend/pkg/database"
	"speech_therapy_backend/pkg/logger"
	"speech_therapy_backend/pkg/monitoring"
	"speech_therapy_backend/pkg/security"
	"speech_therapy_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	services *services
}

type repositories struct {
	user         *repository.UserRepository
	child        *repository.ChildRepository
	activity     *repository.ActivityRepository
	session      *repository.SessionRepository
	performance  *repository.PerformanceRepository
	learningPath *repository.LearningPathRepository
	feedback     *repository.FeedbackRepository
}

type services struct {
	auth             *service.AuthService
	child            *service.ChildService
	activity         *service.ActivityService
	session          *service.SessionService
	sessionAnalytics *service.SessionAnalyticsService
	performance      *service.PerformanceService
	personalization  *service.PersonalizationService
	recommendation   *service.RecommendationService
	progress         *service.ProgressService
	speech           *service.SpeechService
	feedback         *service.FeedbackService
	storage          service.StorageProvider
}

type controllers struct {
	auth            *controller.AuthController
	child           *controller.ChildController
	activity        *controller.ActivityController
	session         *controller.SessionController
	speech          *controller.SpeechController
	personalization *controller.PersonalizationController
	analytics       *controller.AnalyticsController
	feedback        *controller.FeedbackController
	health          *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:         repository.NewUserRepository(db),
		child:        repository.NewChildRepository(db),
		activity:     repository.NewActivityRepository(db),
		session:      repository.NewSessionRepository(db),
		performance:  repository.NewPerformanceRepository(db),
		learningPath: repository.NewLearningPathRepository(db),
		feedback:     repository.NewFeedbackRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	storage, err := service.NewStorage(cfg.Storage)
	if err != nil {
		logger.Log.Fatal("Failed to initialize storage", zap.Error(err))
	}
	s.storage = storage

	// 分类模型缺失时降级为规则推荐，不阻塞启动
	var classifier ml.Classifier
	if cfg.ML.ModelPath != "" {
		loaded, err := ml.LoadModel(cfg.ML.ModelPath)
		if err != nil {
			logger.Log.Warn("Failed to load ml model, rule fallback only",
				zap.String("path", cfg.ML.ModelPath), zap.Error(err))
		} else {
			classifier = loaded
		}
	}

	engine := phonetic.New()

	s.auth = service.NewAuthService(repos.user, cfg.JWT.Secret, cfg.JWT.ExpireTime)
	s.child = service.NewChildService(repos.child)
	s.activity = service.NewActivityService(repos.activity, rdb)
	s.performance = service.NewPerformanceService(repos.performance, repos.session, cfg.Scoring)
	s.personalization = service.NewPersonalizationService(
		repos.child,
		repos.activity,
		repos.session,
		repos.performance,
		repos.learningPath,
		cfg.Scoring,
	)
	s.recommendation = service.NewRecommendationService(
		repos.child,
		repos.activity,
		repos.session,
		repos.performance,
		classifier,
		cfg.ML.Timeout,
	)
	s.progress = service.NewProgressService(repos.child, repos.session, repos.activity)
	s.sessionAnalytics = service.NewSessionAnalyticsService(repos.session, repos.child, repos.activity)
	s.speech = service.NewSpeechService(
		service.NewWhisperClient(cfg.Speech),
		engine,
		repos.session,
		repos.activity,
		s.performance,
	)
	s.session = service.NewSessionService(repos.session, repos.child, repos.activity, s.performance, s.personalization)
	s.feedback = service.NewFeedbackService(repos.feedback, repos.child)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:            controller.NewAuthController(s.auth),
		child:           controller.NewChildController(s.child),
		activity:        controller.NewActivityController(s.activity),
		session:         controller.NewSessionController(s.session, s.sessionAnalytics),
		speech:          controller.NewSpeechController(s.speech, s.storage),
		personalization: controller.NewPersonalizationController(s.personalization),
		analytics:       controller.NewAnalyticsController(s.recommendation, s.progress),
		feedback:        controller.NewFeedbackController(s.feedback),
		health:          controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// watchScoringConfig 评分权重与画像阈值支持热更新，改完配置文件即生效
func (a *App) watchScoringConfig() {
	go configwatcher.WatchConfig("configs/config.yaml", func(newCfg *config.Config) {
		a.services.performance.SetScoring(newCfg.Scoring)
		a.services.personalization.SetScoring(newCfg.Scoring)
		logger.Log.Info("scoring config reloaded",
			zap.Float64("verbal_weight", newCfg.Scoring.VerbalWeight),
			zap.Float64("selection_weight", newCfg.Scoring.SelectionWeight))
	})
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// Redis 只承载目录缓存，不可用时直接读库
		logger.Log.Warn("Failed to initialize redis, catalog cache disabled", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db)

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("speech-therapy-platform", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "local" {
		if _, err := os.Stat(cfg.Storage.LocalPath); os.IsNotExist(err) {
			os.MkdirAll(cfg.Storage.LocalPath, os.ModePerm)
		}
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.watchScoringConfig()

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
