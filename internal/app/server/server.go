package server

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/shortyhq/shorty/internal/app/service"
	"github.com/shortyhq/shorty/internal/auth"
	inthttp "github.com/shortyhq/shorty/internal/http/handler"
	"github.com/shortyhq/shorty/internal/http/middleware"
	"go.uber.org/zap"
)

// Dependencies bundles everything required by the HTTP server.
type Dependencies struct {
	Logger      *zap.Logger
	LinkService *service.LinkService
	Resolver    *service.Resolver
	Auth        *auth.Resolver
}

// Server wraps the Fiber application and its dependencies.
type Server struct {
	app  *fiber.App
	deps Dependencies
}

// New creates a new HTTP server instance with default routes.
func New(deps Dependencies) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		app:  app,
		deps: deps,
	}

	s.registerRoutes()
	return s
}

// App exposes the underlying Fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen starts the Fiber server on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the Fiber server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) registerRoutes() {
	log := s.deps.Logger

	s.app.Use(middleware.RequestID())
	s.app.Use(middleware.Logger(log))
	s.app.Use(middleware.Recovery(log))
	s.app.Use(middleware.CORS())

	linkHandler := inthttp.NewLinkHandler(inthttp.LinkDeps{
		Logger:       log,
		Service:      s.deps.LinkService,
		AuthOptional: auth.Optional(s.deps.Auth, log),
		AuthRequired: auth.Required(s.deps.Auth, log),
	})
	linkHandler.Register(s.app)

	redirectHandler := inthttp.NewRedirectHandler(inthttp.RedirectDeps{
		Logger:   log,
		Resolver: s.deps.Resolver,
	})
	redirectHandler.Register(s.app)
}
