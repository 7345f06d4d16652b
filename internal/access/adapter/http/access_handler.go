package http

import (
	"context"

	"clubportal/internal/access/domain/model"
	"clubportal/internal/access/usecase"
	clubmodel "clubportal/internal/clubs/domain/model"
	sessionmodel "clubportal/internal/session/domain/model"
	"clubportal/internal/shared/httpx"
	"clubportal/internal/shared/logger"
	"clubportal/internal/shared/profile"

	"github.com/gofiber/fiber/v2"
)

// SessionReader returns a profile's session.
type SessionReader interface {
	Current(ctx context.Context, profileID string) (*sessionmodel.Session, error)
}

// ClubLister returns the caller's clubs.
type ClubLister interface {
	MyClubs(ctx context.Context, token string) ([]clubmodel.Club, error)
}

// ClubSelection keeps the selected club consistent with the caller's clubs.
type ClubSelection interface {
	Reconcile(ctx context.Context, profileID string, myClubs []clubmodel.Club) (*clubmodel.Club, error)
}

// AccessHTTPHandler answers whether the caller may open a view.
type AccessHTTPHandler struct {
	guard     usecase.GuardInterface
	sessions  SessionReader
	clubs     ClubLister
	selection ClubSelection
	log       logger.Logger
}

// NewAccessHTTPHandler creates a new access HTTP handler.
func NewAccessHTTPHandler(guard usecase.GuardInterface, sessions SessionReader, clubs ClubLister, selection ClubSelection, log logger.Logger) *AccessHTTPHandler {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &AccessHTTPHandler{
		guard:     guard,
		sessions:  sessions,
		clubs:     clubs,
		selection: selection,
		log:       log.WithComponent("access-http"),
	}
}

// RegisterRoutes mounts /views.
func (h *AccessHTTPHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/views", h.List)
	router.Get("/views/:name/access", h.Check)
}

// List handles GET /views.
func (h *AccessHTTPHandler) List(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"views": h.guard.Views()})
}

// Check handles GET /views/:name/access.
func (h *AccessHTTPHandler) Check(c *fiber.Ctx) error {
	subject, err := h.subject(c.UserContext(), profile.ID(c))
	if err != nil {
		return httpx.Error(c, err)
	}
	decision, err := h.guard.Check(c.UserContext(), httpx.Param(c, "name"), subject)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(decision)
}

// subject describes the caller. A failed club lookup counts as no clubs and leaves the
// selection alone.
func (h *AccessHTTPHandler) subject(ctx context.Context, profileID string) (model.Subject, error) {
	s, err := h.sessions.Current(ctx, profileID)
	if err != nil {
		return model.Subject{}, err
	}
	if s == nil || s.Token == "" {
		return model.Subject{}, nil
	}

	subject := model.Subject{Authenticated: true}
	if s.User != nil {
		subject.UserUID = s.User.UID
		subject.UserName = s.User.Name
		subject.UserEmail = s.User.Email
	}
	if h.clubs == nil {
		return subject, nil
	}

	log := h.log.WithFields(map[string]interface{}{"profile_id": profileID})
	clubs, err := h.clubs.MyClubs(ctx, s.Token)
	if err != nil {
		log.Warnf("Failed to fetch clubs: %v", err)
		return subject, nil
	}
	subject.ClubCount = len(clubs)
	if h.selection != nil {
		selected, err := h.selection.Reconcile(ctx, profileID, clubs)
		if err != nil {
			log.Warnf("Failed to reconcile selected club: %v", err)
		}
		subject.ClubSelected = selected != nil
	}
	return subject, nil
}
