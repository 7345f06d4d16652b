package http

import (
	"clubportal/internal/discussion/usecase"
	"clubportal/internal/shared/httpx"
	"clubportal/internal/shared/profile"

	"github.com/gofiber/fiber/v2"
)

// ContentRequest is the body of comment and reply posts. Blank content is rejected by
// the usecase.
type ContentRequest struct {
	Content string `json:"content" validate:"max=2000"`
}

// DiscussionHTTPHandler serves the event discussion.
type DiscussionHTTPHandler struct {
	usecase usecase.DiscussionUsecaseInterface
	tokens  httpx.TokenSource
}

// NewDiscussionHTTPHandler creates a new discussion HTTP handler.
func NewDiscussionHTTPHandler(uc usecase.DiscussionUsecaseInterface, tokens httpx.TokenSource) *DiscussionHTTPHandler {
	return &DiscussionHTTPHandler{usecase: uc, tokens: tokens}
}

// RegisterRoutes mounts the discussion routes.
func (h *DiscussionHTTPHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/events/:uid/comments", h.Open)
	router.Post("/events/:uid/comments", h.Comment)
	router.Delete("/events/:uid/comments", h.Close)
	router.Post("/comments/:uid/replies", h.Reply)
}

// Open handles GET /events/:uid/comments and makes the event the displayed thread.
func (h *DiscussionHTTPHandler) Open(c *fiber.Ctx) error {
	token, err := httpx.Token(c, h.tokens)
	if err != nil {
		return httpx.Error(c, err)
	}
	forest, err := h.usecase.Open(c.UserContext(), profile.ID(c), token, httpx.Param(c, "uid"))
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(fiber.Map{"comments": forest})
}

// Comment handles POST /events/:uid/comments.
func (h *DiscussionHTTPHandler) Comment(c *fiber.Ctx) error {
	var req ContentRequest
	if err := httpx.Bind(c, &req); err != nil {
		return httpx.Error(c, err)
	}
	token, err := httpx.Token(c, h.tokens)
	if err != nil {
		return httpx.Error(c, err)
	}
	res, err := h.usecase.Comment(c.UserContext(), profile.ID(c), token, httpx.Param(c, "uid"), req.Content)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

// Reply handles POST /comments/:uid/replies.
func (h *DiscussionHTTPHandler) Reply(c *fiber.Ctx) error {
	var req ContentRequest
	if err := httpx.Bind(c, &req); err != nil {
		return httpx.Error(c, err)
	}
	token, err := httpx.Token(c, h.tokens)
	if err != nil {
		return httpx.Error(c, err)
	}
	res, err := h.usecase.Reply(c.UserContext(), profile.ID(c), token, httpx.Param(c, "uid"), req.Content)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

// Close handles DELETE /events/:uid/comments when the view navigates away.
func (h *DiscussionHTTPHandler) Close(c *fiber.Ctx) error {
	h.usecase.Close(profile.ID(c))
	return c.SendStatus(fiber.StatusNoContent)
}
