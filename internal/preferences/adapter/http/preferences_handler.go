package http

import (
	"context"

	clubmodel "clubportal/internal/clubs/domain/model"
	"clubportal/internal/preferences/domain/model"
	"clubportal/internal/preferences/usecase"
	"clubportal/internal/shared/httpx"
	"clubportal/internal/shared/profile"

	"github.com/gofiber/fiber/v2"
)

// ClubLister returns the caller's clubs.
type ClubLister interface {
	MyClubs(ctx context.Context, token string) ([]clubmodel.Club, error)
}

// PaletteRequest is the body of PUT /preferences/palette.
type PaletteRequest struct {
	Palette string `json:"palette" validate:"required"`
}

// ClubRequest is the body of PUT /preferences/club.
type ClubRequest struct {
	Club clubmodel.Club `json:"club"`
}

// PaletteResponse carries the palette and the choices.
type PaletteResponse struct {
	Palette  model.Palette   `json:"palette"`
	Palettes []model.Palette `json:"palettes"`
}

// ClubResponse carries the selected club, null when none.
type ClubResponse struct {
	Club *clubmodel.Club `json:"club"`
}

// PreferencesHTTPHandler serves palette and selected-club preferences.
type PreferencesHTTPHandler struct {
	usecase usecase.PreferencesUsecaseInterface
	clubs   ClubLister
	tokens  httpx.TokenSource
}

// NewPreferencesHTTPHandler creates a new preferences HTTP handler.
func NewPreferencesHTTPHandler(uc usecase.PreferencesUsecaseInterface, clubs ClubLister, tokens httpx.TokenSource) *PreferencesHTTPHandler {
	return &PreferencesHTTPHandler{usecase: uc, clubs: clubs, tokens: tokens}
}

// RegisterRoutes mounts /preferences.
func (h *PreferencesHTTPHandler) RegisterRoutes(router fiber.Router) {
	g := router.Group("/preferences")
	g.Get("/palette", h.GetPalette)
	g.Put("/palette", h.SetPalette)
	g.Post("/palette/cycle", h.CyclePalette)
	g.Get("/club", h.GetClub)
	g.Put("/club", h.SelectClub)
	g.Delete("/club", h.ClearClub)
	g.Post("/club/reconcile", h.ReconcileClub)
}

func paletteResponse(p model.Palette) PaletteResponse {
	return PaletteResponse{Palette: p, Palettes: model.Palettes()}
}

// GetPalette handles GET /preferences/palette.
func (h *PreferencesHTTPHandler) GetPalette(c *fiber.Ctx) error {
	p, err := h.usecase.Palette(c.UserContext(), profile.ID(c))
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(paletteResponse(p))
}

// SetPalette handles PUT /preferences/palette.
func (h *PreferencesHTTPHandler) SetPalette(c *fiber.Ctx) error {
	var req PaletteRequest
	if err := httpx.Bind(c, &req); err != nil {
		return httpx.Error(c, err)
	}
	p, err := h.usecase.SetPalette(c.UserContext(), profile.ID(c), model.Palette(req.Palette))
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(paletteResponse(p))
}

// CyclePalette handles POST /preferences/palette/cycle.
func (h *PreferencesHTTPHandler) CyclePalette(c *fiber.Ctx) error {
	p, err := h.usecase.CyclePalette(c.UserContext(), profile.ID(c))
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(paletteResponse(p))
}

// GetClub handles GET /preferences/club.
func (h *PreferencesHTTPHandler) GetClub(c *fiber.Ctx) error {
	club, err := h.usecase.SelectedClub(c.UserContext(), profile.ID(c))
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(ClubResponse{Club: club})
}

// SelectClub handles PUT /preferences/club.
func (h *PreferencesHTTPHandler) SelectClub(c *fiber.Ctx) error {
	var req ClubRequest
	if err := httpx.Bind(c, &req); err != nil {
		return httpx.Error(c, err)
	}
	if err := h.usecase.SelectClub(c.UserContext(), profile.ID(c), req.Club); err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(ClubResponse{Club: &req.Club})
}

// ClearClub handles DELETE /preferences/club.
func (h *PreferencesHTTPHandler) ClearClub(c *fiber.Ctx) error {
	if err := h.usecase.ClearClub(c.UserContext(), profile.ID(c)); err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(ClubResponse{})
}

// ReconcileClub handles POST /preferences/club/reconcile: it refreshes the caller's club
// list and fixes the selection against it.
func (h *PreferencesHTTPHandler) ReconcileClub(c *fiber.Ctx) error {
	token, err := httpx.Token(c, h.tokens)
	if err != nil {
		return httpx.Error(c, err)
	}
	clubs, err := h.clubs.MyClubs(c.UserContext(), token)
	if err != nil {
		return httpx.Error(c, err)
	}
	club, err := h.usecase.Reconcile(c.UserContext(), profile.ID(c), clubs)
	if err != nil {
		return httpx.Error(c, err)
	}
	return c.JSON(fiber.Map{"club": club, "clubs": clubs})
}
