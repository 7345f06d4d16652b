package http

import (
	"clubportal/internal/clubs/usecase"
	"clubportal/internal/shared/httpx"
	"clubportal/internal/shared/profile"

	"github.com/gofiber/fiber/v2"
)

// ClubsHTTPHandler serves the club and event views.
type ClubsHTTPHandler struct {
	usecase usecase.ClubsUsecaseInterface
	tokens  httpx.TokenSource
}

// NewClubsHTTPHandler creates a new clubs HTTP handler.
func NewClubsHTTPHandler(uc usecase.ClubsUsecaseInterface, tokens httpx.TokenSource) *ClubsHTTPHandler {
	return &ClubsHTTPHandler{usecase: uc, tokens: tokens}
}

// RegisterRoutes mounts /clubs and /events.
func (h *ClubsHTTPHandler) RegisterRoutes(router fiber.Router) {
	clubs := router.Group("/clubs")
	clubs.Get("/", h.ListClubs)
	clubs.Get("/my-clubs", h.MyClubs)
	clubs.Get("/:uid", h.ClubPage)
	clubs.Post("/:uid/join", h.JoinClub)
	clubs.Post("/:uid/leave", h.LeaveClub)

	events := router.Group("/events")
	events.Get("/", h.ListEvents)
	events.Get("/:uid", h.EventPage)
	events.Post("/:uid/join", h.JoinEvent)
	events.Post("/:uid/leave", h.LeaveEvent)
}

// ListClubs handles GET /clubs.
func (h *ClubsHTTPHandler) ListClubs(c *fiber.Ctx) error {
	token, err := httpx.Token(c, h.tokens)
	if err != nil {
		return httpx.Error(c, err)
	}
	clubs, err := h.usecase.Clubs(c.UserContext(), token)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(clubs)
}

// MyClubs handles GET /clubs/my-clubs.
func (h *ClubsHTTPHandler) MyClubs(c *fiber.Ctx) error {
	token, err := httpx.Token(c, h.tokens)
	if err != nil {
		return httpx.Error(c, err)
	}
	clubs, err := h.usecase.MyClubs(c.UserContext(), token)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(clubs)
}

// ClubPage handles GET /clubs/:uid.
func (h *ClubsHTTPHandler) ClubPage(c *fiber.Ctx) error {
	token, err := httpx.Token(c, h.tokens)
	if err != nil {
		return httpx.Error(c, err)
	}
	page, err := h.usecase.ClubPage(c.UserContext(), token, httpx.Param(c, "uid"))
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(page)
}

// JoinClub handles POST /clubs/:uid/join.
func (h *ClubsHTTPHandler) JoinClub(c *fiber.Ctx) error {
	token, err := httpx.Token(c, h.tokens)
	if err != nil {
		return httpx.Error(c, err)
	}
	page, err := h.usecase.JoinClub(c.UserContext(), profile.ID(c), token, httpx.Param(c, "uid"))
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(page)
}

// LeaveClub handles POST /clubs/:uid/leave.
func (h *ClubsHTTPHandler) LeaveClub(c *fiber.Ctx) error {
	token, err := httpx.Token(c, h.tokens)
	if err != nil {
		return httpx.Error(c, err)
	}
	page, err := h.usecase.LeaveClub(c.UserContext(), profile.ID(c), token, httpx.Param(c, "uid"))
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(page)
}

// ListEvents handles GET /events.
func (h *ClubsHTTPHandler) ListEvents(c *fiber.Ctx) error {
	token, err := httpx.Token(c, h.tokens)
	if err != nil {
		return httpx.Error(c, err)
	}
	events, err := h.usecase.Events(c.UserContext(), token)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(events)
}

// EventPage handles GET /events/:uid.
func (h *ClubsHTTPHandler) EventPage(c *fiber.Ctx) error {
	token, err := httpx.Token(c, h.tokens)
	if err != nil {
		return httpx.Error(c, err)
	}
	event, err := h.usecase.EventPage(c.UserContext(), token, httpx.Param(c, "uid"))
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(event)
}

// JoinEvent handles POST /events/:uid/join.
func (h *ClubsHTTPHandler) JoinEvent(c *fiber.Ctx) error {
	token, err := httpx.Token(c, h.tokens)
	if err != nil {
		return httpx.Error(c, err)
	}
	event, err := h.usecase.JoinEvent(c.UserContext(), profile.ID(c), token, httpx.Param(c, "uid"))
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(event)
}

// LeaveEvent handles POST /events/:uid/leave.
func (h *ClubsHTTPHandler) LeaveEvent(c *fiber.Ctx) error {
	token, err := httpx.Token(c, h.tokens)
	if err != nil {
		return httpx.Error(c, err)
	}
	event, err := h.usecase.LeaveEvent(c.UserContext(), profile.ID(c), token, httpx.Param(c, "uid"))
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(event)
}
