package http

import (
	"time"

	"clubportal/internal/session/domain/model"
	"clubportal/internal/session/usecase"
	"clubportal/internal/shared/httpx"
	"clubportal/internal/shared/profile"

	"github.com/gofiber/fiber/v2"
)

// LoginRequest is the body of POST /session/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is the body of POST /session/register.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// SessionView is what views see of a session. The token stays in the edge.
type SessionView struct {
	Authenticated bool        `json:"authenticated"`
	User          *model.User `json:"user,omitempty"`
	ExpiresAt     *time.Time  `json:"expires_at,omitempty"`
}

func viewOf(s *model.Session) SessionView {
	if s == nil || s.Token == "" {
		return SessionView{}
	}
	return SessionView{Authenticated: true, User: s.User, ExpiresAt: s.ExpiresAt}
}

// SessionHTTPHandler serves the sign-in flows and the current session.
type SessionHTTPHandler struct {
	usecase usecase.AuthenticatorInterface
}

// NewSessionHTTPHandler creates a new session HTTP handler.
func NewSessionHTTPHandler(uc usecase.AuthenticatorInterface) *SessionHTTPHandler {
	return &SessionHTTPHandler{usecase: uc}
}

// RegisterRoutes mounts the routes under /session.
func (h *SessionHTTPHandler) RegisterRoutes(router fiber.Router) {
	g := router.Group("/session")
	g.Get("/", h.Current)
	g.Post("/login", h.Login)
	g.Post("/register", h.Register)
	g.Post("/logout", h.Logout)
}

// Login handles POST /session/login.
func (h *SessionHTTPHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := httpx.Bind(c, &req); err != nil {
		return httpx.Error(c, err)
	}
	s, err := h.usecase.SignIn(c.UserContext(), profile.ID(c), req.Email, req.Password)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(viewOf(s))
}

// Register handles POST /session/register.
func (h *SessionHTTPHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := httpx.Bind(c, &req); err != nil {
		return httpx.Error(c, err)
	}
	s, err := h.usecase.SignUp(c.UserContext(), profile.ID(c), req.Name, req.Email, req.Password)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(viewOf(s))
}

// Logout handles POST /session/logout. Signing out twice is fine.
func (h *SessionHTTPHandler) Logout(c *fiber.Ctx) error {
	if err := h.usecase.SignOut(c.UserContext(), profile.ID(c)); err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(fiber.Map{})
}

// Current handles GET /session.
func (h *SessionHTTPHandler) Current(c *fiber.Ctx) error {
	s, err := h.usecase.Current(c.UserContext(), profile.ID(c))
	if err != nil {
		return httpx.Error(c, err)
	}
	view := viewOf(s)
	if !view.Authenticated {
		return c.Status(fiber.StatusUnauthorized).JSON(view)
	}
	return c.JSON(view)
}
