package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/yigit/achievement-portal/internal/app/controllers"
	appMigrations "github.com/yigit/achievement-portal/internal/app/migrations"
	appRepos "github.com/yigit/achievement-portal/internal/app/repositories"
	appRoutes "github.com/yigit/achievement-portal/internal/app/routes"
	appServices "github.com/yigit/achievement-portal/internal/app/services"
	"github.com/yigit/achievement-portal/internal/app/workflow"
	"github.com/yigit/achievement-portal/internal/config"
	"github.com/yigit/achievement-portal/internal/db"
	appMiddleware "github.com/yigit/achievement-portal/internal/middleware"
	pkgAuth "github.com/yigit/achievement-portal/internal/pkg/auth"
	"github.com/yigit/achievement-portal/internal/pkg/filestorage"
	"github.com/yigit/achievement-portal/internal/pkg/logger"
	"github.com/yigit/achievement-portal/internal/pkg/metrics"
	"github.com/yigit/achievement-portal/internal/pkg/notify"
	"github.com/yigit/achievement-portal/internal/pkg/validation"
	"github.com/yigit/achievement-portal/internal/seed"
)

// UploadsURLPrefix is where stored files are served from
const UploadsURLPrefix = "/uploads"

// Dependencies holds all the application dependencies
type Dependencies struct {
	DB             *db.PostgresDB
	Repos          *appRepos.Repositories
	JWTService     *pkgAuth.JWTService
	FileStorage    *filestorage.LocalStorage
	Dispatcher     *notify.Dispatcher
	Services       *appServices.Services
	Controllers    appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	start := time.Now()
	if err := database.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		database.Close()
		return nil, err
	}
	metrics.ObserveDBPing(time.Since(start))
	lgr.Info().Msg("Database connection successfully established.")

	if cfg.Database.AutoMigrate {
		if err := RunMigrations(context.Background(), database); err != nil {
			lgr.Error().Err(err).Msg("Database migration error")
			database.Close()
			return nil, err
		}
	}

	return database, nil
}

// RunMigrations applies every pending schema migration.
func RunMigrations(ctx context.Context, database *db.PostgresDB) error {
	logger.Info().Msg("Running database migrations...")
	migrator, err := appMigrations.NewMigrator(database.Pool)
	if err != nil {
		return err
	}
	defer migrator.Close()

	if err := migrator.Up(ctx); err != nil {
		return fmt.Errorf("database migrations failed: %w", err)
	}
	logger.Info().Msg("Database migrations successfully applied.")
	return nil
}

// BuildServices wires repositories and services over an open database.
// It is shared by the API server and the admin CLI.
func BuildServices(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{DB: database, Logger: lgr}
	deps.Repos = appRepos.NewRepositories(database.Pool)

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, UploadsURLPrefix, int64(cfg.Server.MaxUploadMB)<<20)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: cfg.AccessTokenTTL(),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	sender, err := notify.NewSender(notify.Config{
		Provider:       cfg.Mail.Provider,
		FromName:       cfg.Mail.FromName,
		FromEmail:      cfg.Mail.FromEmail,
		SMTPHost:       cfg.Mail.SMTPHost,
		SMTPPort:       cfg.Mail.SMTPPort,
		SMTPUsername:   cfg.Mail.SMTPUsername,
		SMTPPassword:   cfg.Mail.SMTPPassword,
		SMTPUseTLS:     cfg.Mail.SMTPUseTLS,
		SendGridAPIKey: cfg.Mail.SendGridAPIKey,
	}, logger.Component("mail"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mail sender: %w", err)
	}
	deps.Dispatcher = notify.NewDispatcher(sender, cfg.MailSendTimeout())

	deps.Services = appServices.NewServices(
		appServices.Stores{
			Accounts:      deps.Repos.Accounts,
			Admins:        deps.Repos.Admins,
			Achievements:  deps.Repos.Achievements,
			ERP:           deps.Repos.ERP,
			Announcements: deps.Repos.Announcements,
		},
		database,
		deps.JWTService,
		deps.FileStorage,
		deps.Dispatcher,
		appServices.Options{
			PortalURL:        cfg.Mail.PortalURL,
			LeaderboardLimit: cfg.Ranking.LeaderboardLimit,
			RejectPolicy:     workflow.RejectPolicy{ReversePoints: cfg.Review.ReversePointsOnReject},
		},
	)

	return deps, nil
}

// BuildDependencies initializes services plus the HTTP controllers and middleware.
func BuildDependencies(cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps, err := BuildServices(cfg, database, lgr)
	if err != nil {
		return nil, err
	}

	if err := seed.EnsureAdmin(context.Background(), deps.Services.Auth, cfg, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to seed admin account, proceeding anyway...")
	}

	if err := validation.RegisterWithGin(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	svc := deps.Services
	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)
	deps.Controllers = appRoutes.Controllers{
		Auth:          appControllers.NewAuthController(svc.Auth, logger.Component("auth")),
		Achievements:  appControllers.NewAchievementController(svc.Achievements, svc.Review, svc.Ledger, logger.Component("achievements")),
		ERP:           appControllers.NewERPController(svc.ERP, logger.Component("erp")),
		Leaderboard:   appControllers.NewLeaderboardController(svc.Ranking, logger.Component("leaderboard")),
		Admin:         appControllers.NewAdminController(svc.Activity, svc.Assessment, logger.Component("admin")),
		Announcements: appControllers.NewAnnouncementController(svc.Announcements, logger.Component("announcements")),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.MaxMultipartMemory = int64(cfg.Server.MaxUploadMB) << 20
	router.Use(
		appMiddleware.Recovery(),
		appMiddleware.RequestID(),
		appMiddleware.RequestLogger(),
		appMiddleware.Metrics(),
		appMiddleware.Timeout(cfg.RequestTimeout()),
		cors.New(cors.Config{
			AllowOrigins:     cfg.Server.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", appMiddleware.HeaderRequestID},
			ExposeHeaders:    []string{"Content-Disposition", appMiddleware.HeaderRequestID},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	)

	router.Static(UploadsURLPrefix, cfg.Server.StoragePath)
	if cfg.Observability.MetricsEnabled {
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware, healthHandler(deps.DB))

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router
}

func healthHandler(database *db.PostgresDB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		start := time.Now()
		err := database.Ping(ctx)
		metrics.ObserveDBPing(time.Since(start))
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
	}
}
