package server

import (
	"time"

	"mailagent/internal/config"
	"mailagent/internal/database"
	"mailagent/internal/handlers"
	"mailagent/internal/knowledge"
	"mailagent/internal/scheduler"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/oauth2"
)

// Server represents the application server
type Server struct {
	echo      *echo.Echo
	db        *sqlx.DB
	config    *config.Config
	logger    zerolog.Logger
	oauth     *oauth2.Config
	users     *database.UserStore
	orders    *database.OrderStore
	triage    *database.TriageStore
	knowledge *knowledge.Store
	scheduler *scheduler.Scheduler
}

// New creates a new server instance
func New(cfg *config.Config, db *sqlx.DB, logger zerolog.Logger, oauth *oauth2.Config,
	users *database.UserStore, orders *database.OrderStore, triageStore *database.TriageStore,
	knowledgeStore *knowledge.Store, sched *scheduler.Scheduler) *Server {
	return &Server{
		config:    cfg,
		db:        db,
		logger:    logger,
		oauth:     oauth,
		users:     users,
		orders:    orders,
		triage:    triageStore,
		knowledge: knowledgeStore,
		scheduler: sched,
	}
}

// zerologMiddleware creates a zerolog-based logging middleware for Echo
func (s *Server) zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			req := c.Request()
			res := c.Response()

			s.logger.Info().
				Str("method", req.Method).
				Str("uri", req.RequestURI).
				Str("remote_ip", c.RealIP()).
				Int("status", res.Status).
				Int64("latency_ms", time.Since(start).Milliseconds()).
				Str("user_agent", req.UserAgent()).
				Msg("HTTP request")

			return err
		}
	}
}

// Initialize sets up the Echo framework with middleware and routes
func (s *Server) Initialize() {
	s.echo = echo.New()

	// Middleware
	s.echo.Use(s.zerologMiddleware())
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.CORS())

	// Hide Echo banner
	s.echo.HideBanner = true

	// Setup routes
	s.setupRoutes()
}

// setupRoutes configures all the application routes
func (s *Server) setupRoutes() {
	// Swagger documentation
	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)

	// Health endpoints (keep at root level for monitoring)
	s.echo.GET("/healthz", handlers.HealthHandler(s.config.Version))
	s.echo.GET("/healthz/db", handlers.DBHealthHandler(s.db))

	// OAuth callback must match the redirect URI registered with Google
	s.echo.GET("/auth/callback", handlers.AuthCallbackHandler(s.oauth, s.users))

	// API endpoints under /api prefix
	api := s.echo.Group("/api")
	api.GET("/", handlers.RootHandler(s.config.Version))
	api.GET("/auth/gmail", handlers.AuthURLHandler(s.oauth))
	api.GET("/users", handlers.UsersHandler(s.users))
	api.POST("/users/:id/activate", handlers.SetUserActiveHandler(s.users, true))
	api.POST("/users/:id/deactivate", handlers.SetUserActiveHandler(s.users, false))
	api.GET("/orders", handlers.OrdersHandler(s.orders))
	api.POST("/orders", handlers.CreateOrderHandler(s.orders))
	api.POST("/process/:id", handlers.ProcessUserHandler(s.scheduler, s.users))
	api.POST("/knowledge", handlers.KnowledgeAddHandler(s.knowledge))
	api.GET("/knowledge/search", handlers.KnowledgeSearchHandler(s.knowledge))
	api.GET("/knowledge/info", handlers.KnowledgeInfoHandler(s.knowledge))
	api.GET("/stats", handlers.StatsHandler(s.triage, s.scheduler))
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info().Str("port", s.config.Port).Msg("Server starting")
	return s.echo.Start(":" + s.config.Port)
}
