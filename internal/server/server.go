package server

import (
	"backend-socialfeed/internal/apperr"
	"backend-socialfeed/internal/auth"
	"backend-socialfeed/internal/cache"
	"backend-socialfeed/internal/config"
	"backend-socialfeed/internal/db"
	"backend-socialfeed/internal/logger"
	"backend-socialfeed/internal/media"
	"backend-socialfeed/internal/metrics"
	"backend-socialfeed/internal/social"
	"backend-socialfeed/internal/stream"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App     *fiber.App
	Cfg     config.Config
	DB      db.Querier
	Redis   *redis.Client
	Stream  *stream.Hub
	Cache   cache.Store
	Metrics *metrics.Metrics
	Log     logger.Logger
}

// NewServer builds the fiber app and every service it serves. The returned
// server owns the stream hub and feed cache; release them with Close.
func NewServer(cfg config.Config, querier db.Querier, redisClient *redis.Client, log logger.Logger) (*Server, error) {
	if log == nil {
		log = logger.NewNoopLogger()
	}
	m := metrics.New()

	store, err := cache.New(cfg.CacheBackend, redisClient, log, m)
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{ErrorHandler: apperr.ErrorHandler(log)})
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New())

	s := &Server{
		App:     app,
		Cfg:     cfg,
		DB:      querier,
		Redis:   redisClient,
		Stream:  stream.NewHub(redisClient, log, m),
		Cache:   store,
		Metrics: m,
		Log:     log,
	}

	registerRoutes(s)
	return s, nil
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	s.App.Get("/metrics", s.Metrics.Handler())

	tokens := auth.NewTokenIssuer(s.Cfg.JWTSecret, s.Cfg.TokenTTL)
	requireAuth := auth.RequireAuth(auth.NewAuthenticator(tokens, s.DB))

	feed := social.NewService(s.DB, s.Cache,
		social.WithPublisher(s.Stream),
		social.WithLogger(s.Log),
		social.WithMetrics(s.Metrics),
	)

	auth.RegisterRoutes(s.App.Group("/users"), auth.NewService(s.DB, auth.NewBcryptHasher(s.Cfg.BcryptCost), tokens))
	social.RegisterRoutes(s.App, feed, requireAuth)
	media.RegisterRoutes(s.App.Group("/media"), media.NewService(s.DB, s.Cfg.MediaBaseURL), requireAuth)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}

// Close stops the stream hub and releases the in-process cache.
func (s *Server) Close() {
	s.Stream.Close()
	if mem, ok := s.Cache.(*cache.MemoryStore); ok {
		mem.Close()
	}
}
