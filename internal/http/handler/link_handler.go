package handler

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shortyhq/shorty/internal/app/repository"
	"github.com/shortyhq/shorty/internal/app/service"
	"github.com/shortyhq/shorty/internal/app/slug"
	"github.com/shortyhq/shorty/internal/auth"
	"go.uber.org/zap"
)

// LinkDeps groups dependencies required by the management API handlers.
type LinkDeps struct {
	Logger       *zap.Logger
	Service      *service.LinkService
	AuthOptional fiber.Handler
	AuthRequired fiber.Handler
}

// LinkHandler implements the /links management surface plus /stats and /logs.
type LinkHandler struct {
	logger       *zap.Logger
	service      *service.LinkService
	authOptional fiber.Handler
	authRequired fiber.Handler
}

// NewLinkHandler creates a link handler with the provided dependencies.
func NewLinkHandler(deps LinkDeps) *LinkHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LinkHandler{
		logger:       logger,
		service:      deps.Service,
		authOptional: deps.AuthOptional,
		authRequired: deps.AuthRequired,
	}
}

// Register wires the management routes onto the provided router.
func (h *LinkHandler) Register(router fiber.Router) {
	router.Post("/links", h.authOptional, h.CreateLink)
	router.Get("/links", h.authOptional, h.ListLinks)
	router.Patch("/links", h.authRequired, h.UpdateLink)
	router.Delete("/links", h.authRequired, h.DeleteLink)
	router.Get("/stats", h.authRequired, h.Stats)
	router.Get("/logs", h.authRequired, h.AuditLog)
}

// CreateLinkRequest is the POST /links body. Field names follow the wire
// format the frontend already speaks.
type CreateLinkRequest struct {
	URL        string     `json:"url"`
	Slug       string     `json:"slug,omitempty"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
	ClickLimit *int64     `json:"clickLimit,omitempty"`
}

// CreateLink handles POST /links.
func (h *LinkHandler) CreateLink(c *fiber.Ctx) error {
	var req CreateLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.URL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "url is required",
		})
	}

	link, err := h.service.CreateLink(userCtx(c), auth.IdentityFromCtx(c), service.CreateLinkInput{
		TargetURL:  req.URL,
		Slug:       req.Slug,
		ExpiresAt:  req.ExpiresAt,
		ClickLimit: req.ClickLimit,
		Addr:       clientAddr(c),
	})
	if err != nil {
		return h.writeError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"link": link})
}

// ListLinks handles GET /links. With ?slug= it is the unauthenticated
// availability check; otherwise a policy-scoped listing.
func (h *LinkHandler) ListLinks(c *fiber.Ctx) error {
	if candidate := c.Query("slug"); candidate != "" {
		available, err := h.service.CheckAvailability(userCtx(c), candidate)
		if err != nil {
			return h.writeError(c, err)
		}
		return c.JSON(fiber.Map{"available": available})
	}

	links, err := h.service.ListLinks(userCtx(c), auth.IdentityFromCtx(c),
		c.Query("status"), c.Query("search"))
	if err != nil {
		return h.writeError(c, err)
	}

	return c.JSON(fiber.Map{"links": links})
}

// UpdateLinkRequest is the PATCH /links body.
type UpdateLinkRequest struct {
	ID     string `json:"id"`
	Active *bool  `json:"active,omitempty"`
}

// UpdateLink handles PATCH /links.
func (h *LinkHandler) UpdateLink(c *fiber.Ctx) error {
	var req UpdateLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.ID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "id is required",
		})
	}

	link, err := h.service.UpdateLink(userCtx(c), auth.IdentityFromCtx(c), req.ID,
		service.UpdateLinkInput{Active: req.Active})
	if err != nil {
		return h.writeError(c, err)
	}

	return c.JSON(fiber.Map{"link": link})
}

// DeleteLink handles DELETE /links?id=.
func (h *LinkHandler) DeleteLink(c *fiber.Ctx) error {
	id := c.Query("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "id is required",
		})
	}

	if err := h.service.DeleteLink(userCtx(c), auth.IdentityFromCtx(c), id); err != nil {
		return h.writeError(c, err)
	}

	return c.JSON(fiber.Map{"ok": true})
}

// Stats handles GET /stats?days=.
func (h *LinkHandler) Stats(c *fiber.Ctx) error {
	days := c.QueryInt("days", 30)

	stats, err := h.service.LinkStats(userCtx(c), auth.IdentityFromCtx(c), days)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(stats)
}

// AuditLog handles GET /logs.
func (h *LinkHandler) AuditLog(c *fiber.Ctx) error {
	entries, err := h.service.AuditLog(userCtx(c), auth.IdentityFromCtx(c))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(fiber.Map{"logs": entries})
}

// writeError maps service and repository errors onto the HTTP surface.
// Not-found and forbidden are deliberately the same 400: a non-owner must
// not learn whether a record exists.
func (h *LinkHandler) writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, slug.ErrInvalidSlug),
		errors.Is(err, slug.ErrInvalidURL),
		errors.Is(err, service.ErrInvalidClickLimit),
		errors.Is(err, service.ErrNoFields):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrUnsafeURL):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrSlugConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "slug already exists"})
	case errors.Is(err, service.ErrRateLimited):
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrLinkNotFound):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "link not found"})
	default:
		h.logger.Error("request failed", zap.Error(err), zap.String("path", c.Path()))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
}

// userCtx returns the request context, falling back to Background outside a
// real request cycle.
func userCtx(c *fiber.Ctx) context.Context {
	if ctx := c.UserContext(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// clientAddr extracts the client network address, preferring the first
// X-Forwarded-For hop set by the fronting proxy.
func clientAddr(c *fiber.Ctx) string {
	if fwd := c.Get(fiber.HeaderXForwardedFor); fwd != "" {
		if first, _, found := strings.Cut(fwd, ","); found || first != "" {
			return strings.TrimSpace(first)
		}
	}
	return c.IP()
}
