package usecase

import (
	"context"
	"testing"

	clubmodel "clubportal/internal/clubs/domain/model"
	"clubportal/internal/preferences/domain/model"
	apperrors "clubportal/internal/shared/errors"
	"clubportal/internal/shared/eventbus"
	"clubportal/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type PreferencesTestSuite struct {
	suite.Suite
	ctx     context.Context
	backend *storage.MemoryBackend
	bus     *eventbus.EventBus
	events  []eventbus.Event
	uc      *PreferencesUsecase
}

func (s *PreferencesTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.backend = storage.NewMemoryBackend()
	s.bus = eventbus.NewEventBus(nil)
	s.events = nil
	s.bus.Subscribe("preferences.*", func(_ context.Context, e eventbus.Event) error {
		s.events = append(s.events, e)
		return nil
	})
	s.uc = NewPreferencesUsecase(s.backend, DefaultConfig(), s.bus, nil)
}

func (s *PreferencesTestSuite) stored(key string) (string, bool) {
	v, ok, err := s.backend.Get(s.ctx, "p1", key)
	s.Require().NoError(err)
	return v, ok
}

func (s *PreferencesTestSuite) TestPalette_DefaultsToDark() {
	p, err := s.uc.Palette(s.ctx, "p1")
	s.Require().NoError(err)
	s.Equal(model.PaletteDark, p)
}

func (s *PreferencesTestSuite) TestPalette_UnknownStoredValueFallsBack() {
	s.Require().NoError(s.backend.Set(s.ctx, "p1", map[string]string{storage.KeyPalette: "neon"}))
	p, err := s.uc.Palette(s.ctx, "p1")
	s.Require().NoError(err)
	s.Equal(model.PaletteDark, p)
}

func (s *PreferencesTestSuite) TestSetPalette_Persists() {
	_, err := s.uc.SetPalette(s.ctx, "p1", model.PaletteOcean)
	s.Require().NoError(err)

	v, ok := s.stored(storage.KeyPalette)
	s.True(ok)
	s.Equal("ocean", v)
	s.Require().Len(s.events, 1)
	s.Equal(eventbus.EventTypePaletteChanged, s.events[0].Type())
	s.Equal("p1", s.events[0].ProfileID())
}

func (s *PreferencesTestSuite) TestSetPalette_UnknownIgnored() {
	_, err := s.uc.SetPalette(s.ctx, "p1", model.PaletteLight)
	s.Require().NoError(err)

	_, err = s.uc.SetPalette(s.ctx, "p1", "neon")
	s.True(apperrors.IsValidation(err))
	s.ErrorIs(err, apperrors.ErrUnknownPalette)

	p, err := s.uc.Palette(s.ctx, "p1")
	s.Require().NoError(err)
	s.Equal(model.PaletteLight, p)
}

func (s *PreferencesTestSuite) TestCyclePalette_Wraps() {
	_, err := s.uc.SetPalette(s.ctx, "p1", model.PaletteSunset)
	s.Require().NoError(err)

	p, err := s.uc.CyclePalette(s.ctx, "p1")
	s.Require().NoError(err)
	s.Equal(model.PaletteSystem, p)

	p, err = s.uc.CyclePalette(s.ctx, "p1")
	s.Require().NoError(err)
	s.Equal(model.PaletteDark, p)
}

func (s *PreferencesTestSuite) TestSelectClub_RoundTrip() {
	club := clubmodel.Club{UID: "c1", Name: "Chess", Role: "president"}
	s.Require().NoError(s.uc.SelectClub(s.ctx, "p1", club))

	got, err := s.uc.SelectedClub(s.ctx, "p1")
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(club, *got)

	s.Require().NoError(s.uc.ClearClub(s.ctx, "p1"))
	got, err = s.uc.SelectedClub(s.ctx, "p1")
	s.Require().NoError(err)
	s.Nil(got)
	_, ok := s.stored(storage.KeySelectedClub)
	s.False(ok)
}

func (s *PreferencesTestSuite) TestSelectedClub_CorruptEntryDropped() {
	s.Require().NoError(s.backend.Set(s.ctx, "p1", map[string]string{storage.KeySelectedClub: "{not json"}))
	got, err := s.uc.SelectedClub(s.ctx, "p1")
	s.Require().NoError(err)
	s.Nil(got)
	_, ok := s.stored(storage.KeySelectedClub)
	s.False(ok)
}

func (s *PreferencesTestSuite) TestReconcile_SelectsFirstWhenNone() {
	clubs := []clubmodel.Club{{UID: "c1"}, {UID: "c2"}}
	got, err := s.uc.Reconcile(s.ctx, "p1", clubs)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal("c1", got.UID)
}

func (s *PreferencesTestSuite) TestReconcile_KeepsListedSelection() {
	s.Require().NoError(s.uc.SelectClub(s.ctx, "p1", clubmodel.Club{UID: "c2"}))
	got, err := s.uc.Reconcile(s.ctx, "p1", []clubmodel.Club{{UID: "c1"}, {UID: "c2"}})
	s.Require().NoError(err)
	s.Equal("c2", got.UID)
}

func (s *PreferencesTestSuite) TestReconcile_ReplacesStaleSelection() {
	s.Require().NoError(s.uc.SelectClub(s.ctx, "p1", clubmodel.Club{UID: "gone"}))
	got, err := s.uc.Reconcile(s.ctx, "p1", []clubmodel.Club{{UID: "c1"}, {UID: "c2"}})
	s.Require().NoError(err)
	s.Equal("c1", got.UID)

	stored, err := s.uc.SelectedClub(s.ctx, "p1")
	s.Require().NoError(err)
	s.Equal("c1", stored.UID)
}

func (s *PreferencesTestSuite) TestReconcile_EmptyListClears() {
	s.Require().NoError(s.uc.SelectClub(s.ctx, "p1", clubmodel.Club{UID: "gone"}))
	got, err := s.uc.Reconcile(s.ctx, "p1", nil)
	s.Require().NoError(err)
	s.Nil(got)

	stored, err := s.uc.SelectedClub(s.ctx, "p1")
	s.Require().NoError(err)
	s.Nil(stored)
}

func (s *PreferencesTestSuite) TestProfilesAreIsolated() {
	_, err := s.uc.SetPalette(s.ctx, "p1", model.PaletteOcean)
	s.Require().NoError(err)
	p, err := s.uc.Palette(s.ctx, "p2")
	s.Require().NoError(err)
	s.Equal(model.PaletteDark, p)
}

func (s *PreferencesTestSuite) TestInvalidProfile() {
	_, err := s.uc.Palette(s.ctx, "")
	s.True(apperrors.IsValidation(err))
}

func TestPreferencesTestSuite(t *testing.T) {
	suite.Run(t, new(PreferencesTestSuite))
}

func TestConfiguredDefaultPalette(t *testing.T) {
	uc := NewPreferencesUsecase(storage.NewMemoryBackend(), Config{DefaultPalette: model.PaletteSystem}, nil, nil)
	p, err := uc.Palette(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, model.PaletteSystem, p)

	uc = NewPreferencesUsecase(storage.NewMemoryBackend(), Config{DefaultPalette: "neon"}, nil, nil)
	p, err = uc.Palette(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, model.PaletteDark, p)
}
