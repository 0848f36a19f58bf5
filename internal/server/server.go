// Package server exposes the blogging core and the feed backend over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"scribble/internal/cache"
	"scribble/internal/config"
	"scribble/internal/database"
	"scribble/internal/middleware"
	"scribble/internal/models"
	"scribble/internal/observability"
	"scribble/internal/remote"
	"scribble/internal/repository"
	"scribble/internal/session"
	"scribble/internal/store"
	"scribble/internal/views"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// RemoteClient is the feed and account backend as seen by the client core.
type RemoteClient interface {
	views.Feed
	Login(ctx context.Context, username, password string) (*models.AuthResponse, error)
	Register(ctx context.Context, username, email, password string) (*models.AuthResponse, error)
}

// Deps are the already-initialized dependencies of a Server.
type Deps struct {
	Store    *store.Store
	Feed     repository.FeedRepository
	Creators repository.CreatorRepository
	Users    repository.UserRepository
	Remote   RemoteClient
	Redis    *redis.Client
	Mongo    *mongo.Database
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	store          *store.Store
	redis          *redis.Client
	mongo          *mongo.Database
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus

	posts   repository.PostRepository
	liked   repository.LikedRepository
	session *session.Provider
	home    *views.Home
	remote  RemoteClient

	feedRepo    repository.FeedRepository
	creatorRepo repository.CreatorRepository
	userRepo    repository.UserRepository

	now func() time.Time
}

// NewServer opens every backend named by cfg and builds the server.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	cache.InitRedis(cfg.RedisURL)
	redisClient := cache.GetClient()

	st, err := store.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("local store: %w", err)
	}

	deps := Deps{
		Store:    st,
		Creators: repository.NewFileCreatorRepository(cfg.CreatorsFile),
		Remote:   remote.NewClient(cfg.RemoteBaseURL, time.Duration(cfg.RemoteTimeoutSeconds)*time.Second),
		Redis:    redisClient,
	}

	switch cfg.FeedBackend {
	case config.FeedMongo:
		db, err := database.ConnectMongo(ctx, cfg.MongoURL, cfg.MongoDB)
		if err != nil {
			_ = st.Close()
			return nil, err
		}
		deps.Mongo = db
		deps.Feed = repository.NewMongoFeedRepository(repository.FeedCollection(db))
		deps.Users = repository.NewMongoUserRepository(repository.UsersCollection(db))
	default:
		deps.Feed = repository.NewMemoryFeedRepository()
		deps.Users = repository.NewMemoryUserRepository()
	}

	return NewServerWithDeps(ctx, cfg, deps), nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// The local collections and the session are loaded from deps.Store once.
func NewServerWithDeps(ctx context.Context, cfg *config.Config, deps Deps) *Server {
	return &Server{
		config:         cfg,
		store:          deps.Store,
		redis:          deps.Redis,
		mongo:          deps.Mongo,
		promMiddleware: middleware.InitMetrics("scribble-api"),
		posts:          repository.NewPostRepository(ctx, deps.Store),
		liked:          repository.NewLikedRepository(ctx, deps.Store),
		session:        session.NewProvider(ctx, deps.Store),
		home:           views.NewHome(deps.Remote),
		remote:         deps.Remote,
		feedRepo:       deps.Feed,
		creatorRepo:    deps.Creators,
		userRepo:       deps.Users,
		now:            time.Now,
	}
}

// App builds the Fiber app with middleware and routes installed.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Scribble API",
		DisableStartupMessage: s.config.Env == "test",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			observability.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	authRequired := middleware.AuthRequired(s.config.JWTSecret)

	// Feed backend
	app.Get("/posts", s.ListFeed)
	app.Post("/posts", authRequired, s.CreateFeedPost)
	app.Get("/top/user", s.GetTopCreators)

	auth := app.Group("/auth")
	auth.Post("/register", middleware.RateLimit(s.redis, 3, 10*time.Minute, "register"), s.RegisterAccount)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.LoginAccount)
	auth.Get("/me", authRequired, s.Me)

	// Client core
	api := app.Group("/api")

	sess := api.Group("/session")
	sess.Get("/", s.GetSession)
	sess.Post("/login", s.SessionLogin)
	sess.Post("/register", s.SessionRegister)
	sess.Post("/signout", s.SessionSignOut)

	posts := api.Group("/posts", s.SessionRequired())
	posts.Post("/", s.CreatePost)
	// Specific routes before the generic /:id ones
	posts.Post("/bulk-delete", s.BulkDeletePosts)
	posts.Post("/:id/archive", s.ArchivePost)
	posts.Post("/:id/restore", s.RestorePost)
	posts.Post("/:id/like", s.LikePost)
	posts.Delete("/:id", s.DeletePost)

	api.Delete("/likes/:id", s.SessionRequired(), s.UnlikePost)

	v := api.Group("/views")
	v.Get("/home", s.HomeView)
	v.Get("/archive", s.ArchiveView)
	v.Get("/mine", s.MyPostsView)
	v.Get("/liked", s.LikedView)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   s.now(),
	})
}

// ReadinessCheck reports the local store and, when configured, Redis and
// MongoDB. Redis is optional; only a configured but failing client counts.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	storeStatus := "healthy"
	if err := s.store.Ping(ctx); err != nil {
		storeStatus = "unhealthy"
	}

	redisStatus := "disabled"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	mongoStatus := "disabled"
	if s.mongo != nil {
		mongoStatus = "healthy"
		if err := s.mongo.Client().Ping(ctx, nil); err != nil {
			mongoStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overall := "healthy"
	if storeStatus != "healthy" || redisStatus == "unhealthy" || mongoStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"store": storeStatus,
			"redis": redisStatus,
			"mongo": mongoStatus,
		},
		"time": s.now(),
	})
}

// SessionRequired rejects client-core mutations while signed out.
func (s *Server) SessionRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !s.session.Current().Authenticated {
			return respondError(c, models.NewUnauthenticatedError("sign in to continue"))
		}
		return c.Next()
	}
}

// Start starts the server
func (s *Server) Start() error {
	s.app = s.App()
	observability.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutting down HTTP server: %w", err))
		}
	}
	if err := s.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing local store: %w", err))
	}
	if s.mongo != nil {
		if err := s.mongo.Client().Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("disconnecting mongo: %w", err))
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing redis: %w", err))
		}
	}

	observability.Logger.Info("Server shutdown complete")
	return errors.Join(errs...)
}
