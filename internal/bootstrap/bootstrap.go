// Package bootstrap wires configuration, storage and the dependency graph.
package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/walkandtalk/walktalk/internal/app/controllers"
	appMigrations "github.com/walkandtalk/walktalk/internal/app/migrations"
	appRepos "github.com/walkandtalk/walktalk/internal/app/repositories"
	appRoutes "github.com/walkandtalk/walktalk/internal/app/routes"
	appServices "github.com/walkandtalk/walktalk/internal/app/services"
	"github.com/walkandtalk/walktalk/internal/config"
	"github.com/walkandtalk/walktalk/internal/db"
	"github.com/walkandtalk/walktalk/internal/gateway"
	appMiddleware "github.com/walkandtalk/walktalk/internal/middleware"
	pkgAuth "github.com/walkandtalk/walktalk/internal/pkg/auth"
	"github.com/walkandtalk/walktalk/internal/pkg/filestorage"
	"github.com/walkandtalk/walktalk/internal/pkg/helpers"
	"github.com/walkandtalk/walktalk/internal/pkg/logger"
	"github.com/walkandtalk/walktalk/internal/realtime"
	"github.com/walkandtalk/walktalk/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	AuthService    *appServices.AuthService
	AuthController *appControllers.AuthController
	GatewayHandler *gateway.Handler
	AuthMiddleware *appMiddleware.AuthMiddleware
	Repos          *appRepos.Repositories
	Hub            *realtime.Hub
	JWTService     *pkgAuth.JWTService
	Logger         zerolog.Logger
	FileStorage    *filestorage.LocalStorage
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and
// seeds the lookup tables.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool, lgr)
	if err := migrator.Migrate(ctx); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		dbPool.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	if err := seed.CreateDefaultData(ctx, dbPool, lgr); err != nil {
		// Missing lookup rows only degrade event creation, not startup
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return dbPool, nil
}

// BuildDependencies initializes repositories, services, controllers and the
// WebSocket gateway.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Hub = realtime.NewHub(lgr)
	deps.Repos = appRepos.NewRepositories(dbPool, deps.Hub)

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Storage.Path, cfg.Storage.BaseURL)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})

	provider := pkgAuth.NewUserInfoProvider(cfg.Provider.UserInfoURL)

	deps.AuthService = appServices.NewAuthService(
		deps.Repos.Users,
		deps.Repos.Tokens,
		deps.JWTService,
		provider,
		lgr,
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)
	deps.AuthController = appControllers.NewAuthController(deps.AuthService, lgr)
	deps.GatewayHandler = gateway.NewHandler(deps.Repos, deps.Hub, deps.FileStorage, lgr)

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
	router.Use(appMiddleware.RequestLogger(lgr))
	router.Use(gin.Recovery())

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.GatewayHandler,
		deps.AuthMiddleware,
		cfg.Storage.Path,
	)

	return router
}
