package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPalette_NextWraps(t *testing.T) {
	cases := map[Palette]Palette{
		PaletteSystem: PaletteDark,
		PaletteDark:   PaletteLight,
		PaletteLight:  PaletteOcean,
		PaletteOcean:  PaletteSunset,
		PaletteSunset: PaletteSystem,
	}
	for from, want := range cases {
		assert.Equal(t, want, from.Next(), "after %s", from)
	}
}

func TestPalette_FullCycleReturnsToStart(t *testing.T) {
	p := PaletteOcean
	for range Palettes() {
		p = p.Next()
	}
	assert.Equal(t, PaletteOcean, p)
}

func TestPalette_Valid(t *testing.T) {
	assert.True(t, PaletteSunset.Valid())
	assert.False(t, Palette("neon").Valid())
	assert.False(t, Palette("").Valid())
	assert.Equal(t, PaletteSystem, Palette("neon").Next())
}

func TestPalettes_ReturnsCopy(t *testing.T) {
	list := Palettes()
	list[0] = "mutated"
	assert.Equal(t, PaletteSystem, Palettes()[0])
}
