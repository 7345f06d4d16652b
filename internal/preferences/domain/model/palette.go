package model

// Palette is a named colour scheme.
type Palette string

// Palettes in cycle order.
const (
	PaletteSystem Palette = "system"
	PaletteDark   Palette = "dark"
	PaletteLight  Palette = "light"
	PaletteOcean  Palette = "ocean"
	PaletteSunset Palette = "sunset"
)

// DefaultPalette is used when nothing valid is stored.
const DefaultPalette = PaletteDark

var palettes = []Palette{PaletteSystem, PaletteDark, PaletteLight, PaletteOcean, PaletteSunset}

// Palettes returns every palette in cycle order.
func Palettes() []Palette {
	out := make([]Palette, len(palettes))
	copy(out, palettes)
	return out
}

// Valid reports whether p is one of the known palettes.
func (p Palette) Valid() bool {
	return p.index() >= 0
}

// Next returns the palette after p, wrapping to the first. Unknown palettes start the cycle.
func (p Palette) Next() Palette {
	return palettes[(p.index()+1)%len(palettes)]
}

func (p Palette) index() int {
	for i, known := range palettes {
		if known == p {
			return i
		}
	}
	return -1
}
