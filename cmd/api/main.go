package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-api/internal/config"
	"github.com/noah-isme/campus-api/internal/database"
	"github.com/noah-isme/campus-api/internal/handler"
	"github.com/noah-isme/campus-api/internal/middleware"
	"github.com/noah-isme/campus-api/internal/models"
	"github.com/noah-isme/campus-api/internal/observability"
	"github.com/noah-isme/campus-api/internal/repository"
	"github.com/noah-isme/campus-api/internal/router"
	"github.com/noah-isme/campus-api/internal/service"
	"github.com/noah-isme/campus-api/internal/similarity"
	"github.com/noah-isme/campus-api/internal/utils"
	cloud "github.com/noah-isme/campus-api/pkg/cloudinary"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	logger = logger.Level(level).With().Str("service", cfg.AppName).Str("env", cfg.AppEnv).Logger()

	observability.RegisterMetrics()

	db, err := database.ConnectPostgres(cfg.DatabaseURL, database.PoolConfig{
		MaxOpenConns: cfg.DatabaseMaxOpenConns,
		MaxIdleConns: cfg.DatabaseMaxIdleConns,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := db.AutoMigrate(
		&models.Student{},
		&models.Course{},
		&models.Assignment{},
		&models.Submission{},
		&models.SubmissionAttachment{},
	); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(context.Background(), cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
	} else {
		logger.Warn().Msg("redis url not configured, similarity reports will not be cached")
	}

	natsConn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to nats")
	}
	if natsConn == nil {
		logger.Warn().Msg("nats url not configured, similarity alerts are disabled")
	}

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create cloudinary client")
	}

	validate := utils.NewValidator()

	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	courseRepo := repository.NewCourseRepository(db)

	engine := similarity.NewEngine(
		similarity.WithThreshold(cfg.SimilarityThreshold),
		similarity.WithScorer(similarity.NewScorer(cfg.SimilaritySkewExponent)),
	)
	alerts := service.NewThrottledAlertPublisher(
		service.NewNATSAlertPublisher(natsConn, cfg.SimilarityAlertSubject),
		cfg.SimilarityAlertEvery,
	)

	similarityService := service.NewSimilarityService(assignmentRepo, courseRepo, engine, redisClient, cfg.SimilarityCacheTTL, alerts, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, courseRepo, validate, uploader, similarityService, logger)
	submissionService := service.NewSubmissionService(submissionRepo, assignmentRepo, studentRepo, validate, uploader, similarityService, logger)
	courseService := service.NewCourseService(courseRepo, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    32 * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{
		Logger:       &logger,
		AllowOrigins: cfg.CORSAllowOrigins,
		AccessLog:    !cfg.IsProduction(),
	})
	router.Register(app, cfg, router.Dependencies{
		DB:                db,
		CourseHandler:     handler.NewCourseHandler(courseService, logger),
		AssignmentHandler: handler.NewAssignmentHandler(assignmentService, logger),
		SubmissionHandler: handler.NewSubmissionHandler(submissionService, logger),
		SimilarityHandler: handler.NewSimilarityHandler(similarityService, logger),
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
		StaffMiddleware:   middleware.RequireStaff(),
		PlagiarismLimiter: middleware.RateLimit("plagiarism", cfg.PlagiarismRatePerMin, time.Minute),
	})

	go func() {
		logger.Info().Str("address", cfg.HTTPAddress()).Msg("http server listening")
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, logger, redisClient, natsConn)
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger, redisClient *redis.Client, natsConn *nats.Conn) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	if natsConn != nil {
		if err := natsConn.Drain(); err != nil {
			logger.Warn().Err(err).Msg("failed to drain nats connection")
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close redis client")
		}
	}

	logger.Info().Msg("server stopped")
}
