package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shortyhq/shorty/internal/app/repository"
	"github.com/shortyhq/shorty/internal/app/service"
	"go.uber.org/zap"
)

// RedirectDeps groups dependencies required by the redirect handler.
type RedirectDeps struct {
	Logger   *zap.Logger
	Resolver *service.Resolver
}

// RedirectHandler serves GET /r/:slug and the health probe.
type RedirectHandler struct {
	logger   *zap.Logger
	resolver *service.Resolver
}

// NewRedirectHandler creates a redirect handler with the provided dependencies.
func NewRedirectHandler(deps RedirectDeps) *RedirectHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedirectHandler{
		logger:   logger,
		resolver: deps.Resolver,
	}
}

// Register wires redirect routes onto the provided router.
func (h *RedirectHandler) Register(router fiber.Router) {
	router.Get("/health", h.Health)
	router.Get("/r/:slug", h.Redirect)
}

// Health is a simple probe so we know the service is running.
func (h *RedirectHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": "shorty",
		"status":  "ok",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Redirect handles GET /r/:slug.
func (h *RedirectHandler) Redirect(c *fiber.Ctx) error {
	slugValue := c.Params("slug")
	if slugValue == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing slug",
		})
	}

	meta := service.ClickMeta{
		Referrer:  c.Get(fiber.HeaderReferer),
		UserAgent: c.Get(fiber.HeaderUserAgent),
		Country:   clientCountry(c),
		Addr:      clientAddr(c),
	}

	link, err := h.resolver.Resolve(userCtx(c), slugValue, meta)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrLinkNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "link not found",
			})
		case errors.Is(err, service.ErrLinkExpired):
			return c.Status(fiber.StatusGone).JSON(fiber.Map{
				"error": "link expired",
			})
		case errors.Is(err, service.ErrClickLimitReached):
			return c.Status(fiber.StatusGone).JSON(fiber.Map{
				"error": "click limit exceeded",
			})
		default:
			h.logger.Error("redirect failed", zap.String("slug", slugValue), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "internal server error",
			})
		}
	}

	// Liveness can change between visits; the redirect must not be cached.
	c.Set(fiber.HeaderCacheControl, "no-store")
	h.logger.Debug("redirecting",
		zap.String("slug", slugValue), zap.String("target", link.TargetURL))
	return c.Redirect(link.TargetURL, fiber.StatusFound)
}

// clientCountry reads the coarse country hint injected by the edge proxy.
func clientCountry(c *fiber.Ctx) string {
	if country := c.Get("X-Vercel-IP-Country"); country != "" {
		return country
	}
	return c.Get("CF-IPCountry")
}
