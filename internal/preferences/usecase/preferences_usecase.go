package usecase

import (
	"context"
	"encoding/json"
	"time"

	clubmodel "clubportal/internal/clubs/domain/model"
	"clubportal/internal/preferences/domain/model"
	apperrors "clubportal/internal/shared/errors"
	"clubportal/internal/shared/eventbus"
	"clubportal/internal/shared/logger"
	"clubportal/internal/storage"
)

// PreferencesUsecaseInterface is what the settings and club-switcher views call.
type PreferencesUsecaseInterface interface {
	Palette(ctx context.Context, profileID string) (model.Palette, error)
	SetPalette(ctx context.Context, profileID string, palette model.Palette) (model.Palette, error)
	CyclePalette(ctx context.Context, profileID string) (model.Palette, error)
	SelectedClub(ctx context.Context, profileID string) (*clubmodel.Club, error)
	SelectClub(ctx context.Context, profileID string, club clubmodel.Club) error
	ClearClub(ctx context.Context, profileID string) error
	Reconcile(ctx context.Context, profileID string, myClubs []clubmodel.Club) (*clubmodel.Club, error)
}

// Config holds preference defaults.
type Config struct {
	DefaultPalette model.Palette
	StorageTimeout time.Duration
}

// DefaultConfig returns the stock defaults.
func DefaultConfig() Config {
	return Config{DefaultPalette: model.DefaultPalette, StorageTimeout: 5 * time.Second}
}

// PreferencesUsecase persists the palette and the selected club per profile.
type PreferencesUsecase struct {
	backend storage.Backend
	cfg     Config
	bus     eventbus.EventBusInterface
	log     logger.Logger
}

// NewPreferencesUsecase creates the usecase. bus may be nil.
func NewPreferencesUsecase(backend storage.Backend, cfg Config, bus eventbus.EventBusInterface, log logger.Logger) *PreferencesUsecase {
	if log == nil {
		log = logger.NewNopLogger()
	}
	if !cfg.DefaultPalette.Valid() {
		cfg.DefaultPalette = model.DefaultPalette
	}
	if cfg.StorageTimeout <= 0 {
		cfg.StorageTimeout = DefaultConfig().StorageTimeout
	}
	return &PreferencesUsecase{
		backend: backend,
		cfg:     cfg,
		bus:     bus,
		log:     log.WithComponent("preferences"),
	}
}

// Palette returns the stored palette, or the default when none or an unknown one is stored.
func (u *PreferencesUsecase) Palette(ctx context.Context, profileID string) (model.Palette, error) {
	store, err := u.store(profileID)
	if err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, u.cfg.StorageTimeout)
	defer cancel()

	raw, ok, err := store.Get(ctx, storage.KeyPalette)
	if err != nil {
		return "", apperrors.NewInfrastructureError("failed to read palette").WithCause(err)
	}
	if p := model.Palette(raw); ok && p.Valid() {
		return p, nil
	}
	return u.cfg.DefaultPalette, nil
}

// SetPalette stores palette. Unknown names are rejected and leave the stored value alone.
func (u *PreferencesUsecase) SetPalette(ctx context.Context, profileID string, palette model.Palette) (model.Palette, error) {
	if !palette.Valid() {
		return "", apperrors.NewValidationError("unknown palette").
			WithDetail("palette", string(palette)).
			WithCause(apperrors.ErrUnknownPalette)
	}
	store, err := u.store(profileID)
	if err != nil {
		return "", err
	}
	ctx, cancel := context.WithTimeout(ctx, u.cfg.StorageTimeout)
	defer cancel()

	if err := store.Set(ctx, map[string]string{storage.KeyPalette: string(palette)}); err != nil {
		return "", apperrors.NewInfrastructureError("failed to save palette").WithCause(err)
	}
	u.publish(ctx, eventbus.EventTypePaletteChanged, profileID, map[string]interface{}{"palette": string(palette)})
	return palette, nil
}

// CyclePalette advances to the next palette, wrapping around.
func (u *PreferencesUsecase) CyclePalette(ctx context.Context, profileID string) (model.Palette, error) {
	current, err := u.Palette(ctx, profileID)
	if err != nil {
		return "", err
	}
	return u.SetPalette(ctx, profileID, current.Next())
}

// SelectedClub returns the selected club or nil. A corrupt entry is dropped.
func (u *PreferencesUsecase) SelectedClub(ctx context.Context, profileID string) (*clubmodel.Club, error) {
	store, err := u.store(profileID)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, u.cfg.StorageTimeout)
	defer cancel()

	raw, ok, err := store.Get(ctx, storage.KeySelectedClub)
	if err != nil {
		return nil, apperrors.NewInfrastructureError("failed to read selected club").WithCause(err)
	}
	if !ok || raw == "" {
		return nil, nil
	}
	var club clubmodel.Club
	if err := json.Unmarshal([]byte(raw), &club); err != nil || club.UID == "" {
		u.log.WithFields(map[string]interface{}{"profile_id": profileID}).Warn("Dropping unreadable selected club")
		if err := store.Remove(ctx, storage.KeySelectedClub); err != nil {
			u.log.Warnf("Failed to remove selected club: %v", err)
		}
		return nil, nil
	}
	return &club, nil
}

// SelectClub makes club the selected one.
func (u *PreferencesUsecase) SelectClub(ctx context.Context, profileID string, club clubmodel.Club) error {
	if club.UID == "" {
		return apperrors.NewValidationError("club uid is required")
	}
	store, err := u.store(profileID)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(club)
	if err != nil {
		return apperrors.NewInternalError("failed to encode club").WithCause(err)
	}
	ctx, cancel := context.WithTimeout(ctx, u.cfg.StorageTimeout)
	defer cancel()

	if err := store.Set(ctx, map[string]string{storage.KeySelectedClub: string(raw)}); err != nil {
		return apperrors.NewInfrastructureError("failed to save selected club").WithCause(err)
	}
	u.publish(ctx, eventbus.EventTypeClubSelected, profileID, map[string]interface{}{"club_uid": club.UID})
	return nil
}

// ClearClub removes the selection.
func (u *PreferencesUsecase) ClearClub(ctx context.Context, profileID string) error {
	store, err := u.store(profileID)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, u.cfg.StorageTimeout)
	defer cancel()

	if err := store.Remove(ctx, storage.KeySelectedClub); err != nil {
		return apperrors.NewInfrastructureError("failed to clear selected club").WithCause(err)
	}
	u.publish(ctx, eventbus.EventTypeClubSelected, profileID, map[string]interface{}{"club_uid": ""})
	return nil
}

// Reconcile brings the selection in line with the caller's current club list: the first
// club is selected when nothing is, a selection that is no longer listed is replaced by the
// first club, and an empty list clears it.
func (u *PreferencesUsecase) Reconcile(ctx context.Context, profileID string, myClubs []clubmodel.Club) (*clubmodel.Club, error) {
	selected, err := u.SelectedClub(ctx, profileID)
	if err != nil {
		return nil, err
	}

	if selected != nil {
		for _, c := range myClubs {
			if c.UID == selected.UID {
				return selected, nil
			}
		}
	}

	if len(myClubs) == 0 {
		if selected != nil {
			if err := u.ClearClub(ctx, profileID); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}

	first := myClubs[0]
	if err := u.SelectClub(ctx, profileID, first); err != nil {
		return nil, err
	}
	return &first, nil
}

func (u *PreferencesUsecase) store(profileID string) (storage.Store, error) {
	store, err := storage.For(u.backend, profileID)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid client profile").WithCause(err)
	}
	return store, nil
}

func (u *PreferencesUsecase) publish(ctx context.Context, eventType, profileID string, data map[string]interface{}) {
	if u.bus == nil {
		return
	}
	if err := u.bus.Publish(ctx, eventbus.NewProfileEvent(eventType, profileID, "preferences", data)); err != nil {
		u.log.Warnf("Failed to publish %s: %v", eventType, err)
	}
}
