// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"musefeed/internal/config"
	"musefeed/internal/database"
	"musefeed/internal/middleware"
	"musefeed/internal/models"
	"musefeed/internal/notifications"
	"musefeed/internal/observability"
	"musefeed/internal/repository"
	"musefeed/internal/service"
	redispkg "musefeed/pkg/redis"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	auth           *middleware.Authenticator
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	postRepo       repository.PostRepository
	commentRepo    repository.CommentRepository
	mediaRepo      repository.MediaRepository
	notifier       *notifications.Notifier
	hub            *notifications.Hub
	postService    *service.PostService
	commentService *service.CommentService
	likeService    *service.LikeService
	searchService  *service.SearchService
}

// NewServer connects to the database and Redis described by cfg and builds a Server on top.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	redisClient := redispkg.NewClient(cfg.RedisURL, redispkg.ErrorHook{
		OnError: func(command string) {
			observability.RedisErrors.WithLabelValues(command).Inc()
		},
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		// Realtime falls back to in-process delivery without Redis.
		observability.Logger.Warn("redis unavailable, realtime events stay local", "error", err)
		_ = redisClient.Close()
		redisClient = nil
	}

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// redisClient may be nil.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if db == nil {
		return nil, errors.New("server: nil database")
	}

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("musefeed-api"),
		auth:           middleware.NewAuthenticator(cfg.JWTSecret),
		postRepo:       repository.NewPostRepository(db),
		commentRepo:    repository.NewCommentRepository(db),
		mediaRepo:      repository.NewMediaRepository(db),
		hub:            notifications.NewHub(),
	}
	s.postService = service.NewPostService(s.postRepo, s.mediaRepo)
	s.commentService = service.NewCommentService(s.commentRepo, s.postRepo)
	s.likeService = service.NewLikeService(s.postRepo)
	s.searchService = service.NewSearchService(s.postRepo, s.mediaRepo)

	if redisClient != nil {
		s.notifier = notifications.NewNotifier(redisClient)
	}

	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())

	// Tracing before the context middleware so the trace id reaches the logger
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger(observability.Logger))

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version, " + middleware.CorrelationIDHeader,
		ExposeHeaders:    middleware.CorrelationIDHeader + ", X-Trace-ID",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	api := app.Group("/api")
	required := s.auth.Required()
	optional := s.auth.Optional()

	posts := api.Group("/posts")
	posts.Get("/", optional, s.GetPosts)
	// Specific routes before the generic /:id
	posts.Get("/search", optional, s.SearchPosts)
	posts.Get("/:id/comments", s.GetPostComments)
	posts.Post("/:id/comments", required, s.CreateComment)
	posts.Post("/:id/like", required, s.ToggleLike)
	posts.Get("/:id", optional, s.GetPost)
	posts.Post("/", required, s.CreatePost)
	posts.Put("/:id", required, s.UpdatePost)
	posts.Delete("/:id", required, s.DeletePost)

	comments := api.Group("/comments")
	comments.Get("/", s.GetComments)
	comments.Put("/:commentId", required, s.UpdateComment)
	comments.Delete("/:commentId", required, s.DeleteComment)

	api.Get("/ws", RequireUpgrade, required, s.WebsocketHandler())
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports 503 when the database, or a configured Redis, does not answer.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// App builds the Fiber application with middleware and routes installed.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "MuseFeed API",
		ErrorHandler: errorHandler,
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) && fiberErr.Code < fiber.StatusInternalServerError {
		return models.RespondWithError(c, fiberErr.Code, errors.New(fiberErr.Message))
	}
	observability.Logger.ErrorContext(c.UserContext(), "unhandled error",
		"path", c.Path(), "error", err)
	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

// Start wires realtime delivery and listens on the configured port until Shutdown.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := s.App()

	if s.notifier != nil {
		if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
			observability.Logger.Error("failed to start realtime wiring", "error", err)
		}
	}

	observability.Logger.Info("Server starting", "port", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	var errs []error
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}

	if err := s.hub.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("hub shutdown: %w", err))
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			errs = append(errs, fmt.Errorf("close database: %w", cerr))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", rerr))
		}
	}

	observability.Logger.Info("Server shutdown complete")
	return errors.Join(errs...)
}
