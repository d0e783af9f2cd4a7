package server

import (
	"context"

	"github.com/ShaileshBisht/DecentraLink/internal/auth"
	"github.com/ShaileshBisht/DecentraLink/internal/config"
	"github.com/ShaileshBisht/DecentraLink/internal/logging"
	"github.com/ShaileshBisht/DecentraLink/internal/metrics"
	"github.com/ShaileshBisht/DecentraLink/internal/posts"
	"github.com/ShaileshBisht/DecentraLink/internal/stream"
	"github.com/ShaileshBisht/DecentraLink/internal/users"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Stream *stream.Hub
	Log    logging.Logger
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client, log logging.Logger) *Server {
	app := fiber.New(fiber.Config{AppName: "DecentraLink"})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(metrics.Middleware())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Stream: stream.NewHub(redisClient, log),
		Log:    log,
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	s.App.Get("/metrics", metrics.Handler())

	var nonces auth.NonceStore = auth.NewMemoryNonceStore()
	if s.Redis != nil {
		nonces = auth.NewRedisNonceStore(s.Redis)
	}
	issuer := auth.NewIssuer(s.Cfg.JWTSecret, s.Cfg.TokenTTL)
	authSvc := auth.NewService(issuer, nonces, s.Cfg.ChallengeMaxAge, s.Log)

	requireWallet := auth.RequireWallet(authSvc)
	optionalWallet := auth.OptionalWallet(authSvc)

	auth.RegisterRoutes(s.App.Group("/auth"), authSvc, requireWallet)
	if s.DB != nil {
		posts.RegisterRoutes(s.App.Group("/posts"), posts.NewService(s.DB, s.Stream, s.Log), requireWallet, optionalWallet)
		users.RegisterRoutes(s.App.Group("/users"), users.NewService(s.DB, s.Log), requireWallet)
	} else {
		s.Log.Warn(context.Background(), "postgres unavailable, data routes disabled")
		s.App.Use("/posts", databaseUnavailable)
		s.App.Use("/users", databaseUnavailable)
	}
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}

func databaseUnavailable(c *fiber.Ctx) error {
	return fiber.NewError(fiber.StatusServiceUnavailable, "database unavailable")
}

// Close releases background resources owned by the server.
func (s *Server) Close() {
	s.Stream.Close()
}
