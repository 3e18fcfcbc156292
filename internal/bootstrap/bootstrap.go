package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	appControllers "github.com/yigit/gtostat/internal/app/controllers"
	appMigrations "github.com/yigit/gtostat/internal/app/migrations"
	"github.com/yigit/gtostat/internal/app/models"
	appRepos "github.com/yigit/gtostat/internal/app/repositories"
	appRoutes "github.com/yigit/gtostat/internal/app/routes"
	appServices "github.com/yigit/gtostat/internal/app/services"
	"github.com/yigit/gtostat/internal/config"
	"github.com/yigit/gtostat/internal/db"
	appMiddleware "github.com/yigit/gtostat/internal/middleware"
	pkgAuth "github.com/yigit/gtostat/internal/pkg/auth"
	"github.com/yigit/gtostat/internal/pkg/cache"
	"github.com/yigit/gtostat/internal/pkg/helpers"
	"github.com/yigit/gtostat/internal/pkg/logger"
	"github.com/yigit/gtostat/internal/pkg/websocket"
	"github.com/yigit/gtostat/internal/seed"
)

// DefaultConfigPath is where the configuration file is looked up
const DefaultConfigPath = "configs/config.yaml"

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos              *appRepos.Repositories
	JWTService         *pkgAuth.JWTService
	TokenService       appServices.TokenService
	AuthService        *appServices.AuthService
	UserService        appServices.UserService
	InstituteService   appServices.InstituteService
	GroupService       appServices.GroupService
	StudentService     appServices.StudentService
	RatingEngine       appServices.RatingEngine
	GTOReader          appServices.GTOReader
	AchievementService appServices.AchievementService
	ReportService      appServices.ReportService
	ResultService      appServices.ResultService
	Hub                *websocket.Hub
	AuthMiddleware     *appMiddleware.AuthMiddleware
	Controllers        appRoutes.Controllers
	Logger             zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})

	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		database.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Str("dir", migrationsDir).Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(database.Pool, lgr)
	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return database.Pool, nil
}

// SetupCache connects to Redis when enabled. A nil client means standings are computed on every request.
func SetupCache(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*redis.Client, error) {
	if !cfg.Redis.Enabled {
		lgr.Info().Msg("Redis cache disabled")
		return nil, nil
	}

	client, err := cache.NewRedisClient(ctx, cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, err
	}
	lgr.Info().Str("addr", cfg.Redis.Addr).Msg("Redis cache connected")
	return client, nil
}

// resultSegment is the URL path segment of a table-backed result kind
func resultSegment(kind models.ResultKind) string {
	if kind == models.ResultKindStandard {
		return "standards"
	}
	return string(kind)
}

// resultStores picks the repositories of the configured result kinds, keeping config order
func resultStores(kinds []string, repos *appRepos.Repositories) []appServices.ResultStore {
	var stores []appServices.ResultStore
	for _, kind := range kinds {
		switch models.ResultKind(kind) {
		case models.ResultKindStandard:
			stores = append(stores, repos.StandardRepository)
		case models.ResultKindTheory:
			stores = append(stores, repos.TheoryRepository)
		}
	}
	return stores
}

// BuildDependencies initializes application repositories, services, and controllers.
// redisClient may be nil.
func BuildDependencies(cfg *config.Config, database appRepos.DB, redisClient *redis.Client, lgr zerolog.Logger) *Dependencies {
	deps := &Dependencies{Logger: lgr}
	deps.Repos = appRepos.NewRepositories(database)
	r := deps.Repos

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:   cfg.JWT.Secret,
		TokenTTL:    helpers.ParseDuration(cfg.JWT.TokenTTL, 60*time.Hour),
		TokenIssuer: cfg.JWT.Issuer,
	})
	deps.TokenService = appServices.NewTokenService(deps.JWTService, r.TokenRepository, cfg.JWT.TrackRevocation, lgr)
	deps.AuthService = appServices.NewAuthService(r.UserRepository, deps.TokenService, lgr)
	deps.UserService = appServices.NewUserService(r.UserRepository, deps.TokenService, lgr)

	var standingsCache appServices.StandingsCache
	if redisClient != nil {
		standingsCache = cache.NewStandingsCache(redisClient, helpers.ParseDuration(cfg.Redis.ReportTTL, 5*time.Minute))
	}

	deps.RatingEngine = appServices.NewRatingEngine(appServices.RatingEngineConfig{
		Institutes:   r.InstituteRepository,
		Groups:       r.GroupRepository,
		Students:     r.StudentRepository,
		Achievements: r.AchievementRepository,
		Cache:        standingsCache,
		MaxCourse:    cfg.GTO.MaxCourse,
		Logger:       lgr,
	})
	deps.InstituteService = appServices.NewInstituteService(r.InstituteRepository, deps.RatingEngine)
	deps.GroupService = appServices.NewGroupService(r.GroupRepository, r.InstituteRepository, deps.RatingEngine)
	deps.StudentService = appServices.NewStudentService(r.StudentRepository, r.GroupRepository, r.InstituteRepository, deps.RatingEngine)
	deps.GTOReader = appServices.NewGTOReader(appServices.GTOReaderConfig{
		Institutes:   r.InstituteRepository,
		Groups:       r.GroupRepository,
		Students:     r.StudentRepository,
		Achievements: r.AchievementRepository,
		MaxCourse:    cfg.GTO.MaxCourse,
	})
	deps.Hub = websocket.NewHub(lgr)
	deps.AchievementService = appServices.NewAchievementService(
		r.AchievementRepository,
		r.StudentRepository,
		deps.RatingEngine,
		deps.Hub,
		nil,
		lgr,
	)
	deps.ReportService = appServices.NewReportService(deps.GTOReader, deps.RatingEngine)
	deps.ResultService = appServices.NewResultService(appServices.ResultServiceConfig{
		Institutes:   r.InstituteRepository,
		Groups:       r.GroupRepository,
		Students:     r.StudentRepository,
		Achievements: r.AchievementRepository,
		Stores:       resultStores(cfg.Results.Kinds, r),
		MaxCourse:    cfg.GTO.MaxCourse,
		Logger:       lgr,
	})

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.AuthService, lgr)

	results := make(map[string]*appControllers.ResultController)
	for _, kind := range deps.ResultService.Kinds() {
		if kind == models.ResultKindGTO {
			continue
		}
		results[resultSegment(kind)] = appControllers.NewResultController(deps.ResultService, kind)
	}

	deps.Controllers = appRoutes.Controllers{
		Auth:         appControllers.NewAuthController(deps.AuthService, lgr),
		User:         appControllers.NewUserController(deps.UserService, lgr),
		Institute:    appControllers.NewInstituteController(deps.InstituteService, deps.GroupService),
		Student:      appControllers.NewStudentController(deps.StudentService),
		GTO:          appControllers.NewGTOController(deps.ReportService, deps.AchievementService, deps.GTOReader, lgr),
		Results:      results,
		ScopeResults: appControllers.ListScopeResults(deps.ResultService),
		GTOLive:      websocket.NewHandler(deps.Hub, deps.InstituteService, cfg.Server.AllowedOrigins, lgr).HandleConnection,
	}

	return deps
}

// SeedData creates the configured admin account. Failures are logged, not fatal.
func SeedData(ctx context.Context, cfg *config.Config, deps *Dependencies) {
	err := seed.CreateDefaultData(ctx, deps.UserService, seed.AdminAccount{
		Email:    cfg.Admin.Email,
		Password: cfg.Admin.Password,
		FullName: cfg.Admin.FullName,
	}, deps.Logger)
	if err != nil {
		deps.Logger.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) (*gin.Engine, error) {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := appMiddleware.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(lgr))

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	return router, nil
}

// Handler wraps the router with the CORS policy of the configuration
func Handler(cfg *config.Config, router *gin.Engine) http.Handler {
	return appMiddleware.CORS(cfg.Server.AllowedOrigins, router)
}
