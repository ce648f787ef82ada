// Package catalog holds the static selections offered by the form: color
// palettes and content intentions.
package catalog

import (
	"image/color"
	"strings"
)

// Palette is a named set of five style roles. Values come from the catalog
// and are never mutated.
type Palette struct {
	Name       string
	Background color.RGBA
	Text       color.RGBA
	Primary    color.RGBA
	Secondary  color.RGBA
	Accent     color.RGBA
}

var intentions = []string{
	"Informativo",
	"Inspirador",
	"Educacional",
	"Promocional",
	"Divertido",
	"Contar História",
}

var palettes = []Palette{
	{
		Name:       "Twilight",
		Background: hex(0x111827),
		Text:       hex(0xFFFFFF),
		Primary:    hex(0x6366F1),
		Secondary:  hex(0xA5B4FC),
		Accent:     hex(0x6366F1),
	},
	{
		Name:       "Sunrise",
		Background: hex(0xFFFBEB),
		Text:       hex(0x1F2937),
		Primary:    hex(0xF59E0B),
		Secondary:  hex(0xB45309),
		Accent:     hex(0xF59E0B),
	},
	{
		Name:       "Ocean",
		Background: hex(0xFFFFFF),
		Text:       hex(0x1E293B),
		Primary:    hex(0x0284C7),
		Secondary:  hex(0x075985),
		Accent:     hex(0x0284C7),
	},
	{
		Name:       "Forest",
		Background: hex(0x064E3B),
		Text:       hex(0xECFDF5),
		Primary:    hex(0x10B981),
		Secondary:  hex(0x6EE7B7),
		Accent:     hex(0x10B981),
	},
	{
		Name:       "Rose",
		Background: hex(0xFFF1F2),
		Text:       hex(0x881337),
		Primary:    hex(0xF43F5E),
		Secondary:  hex(0xBE123C),
		Accent:     hex(0xF43F5E),
	},
	{
		Name:       "Minimalist",
		Background: hex(0xF4F4F5),
		Text:       hex(0x18181B),
		Primary:    hex(0x000000),
		Secondary:  hex(0x52525B),
		Accent:     hex(0x000000),
	},
}

// Intentions returns the selectable intentions in display order.
func Intentions() []string {
	out := make([]string, len(intentions))
	copy(out, intentions)
	return out
}

// DefaultIntention is the first catalog entry.
func DefaultIntention() string {
	return intentions[0]
}

// IsIntention reports whether name is one of the catalog intentions.
func IsIntention(name string) bool {
	for _, in := range intentions {
		if in == name {
			return true
		}
	}
	return false
}

// Palettes returns the palette catalog in display order.
func Palettes() []Palette {
	out := make([]Palette, len(palettes))
	copy(out, palettes)
	return out
}

// DefaultPalette is the first catalog entry.
func DefaultPalette() Palette {
	return palettes[0]
}

// PaletteByName looks a palette up case-insensitively.
func PaletteByName(name string) (Palette, bool) {
	for _, p := range palettes {
		if strings.EqualFold(p.Name, strings.TrimSpace(name)) {
			return p, true
		}
	}
	return Palette{}, false
}

// Hex formats c as #rrggbb for the page and JSON views.
func Hex(c color.RGBA) string {
	const digits = "0123456789abcdef"
	b := []byte{'#', 0, 0, 0, 0, 0, 0}
	for i, v := range []uint8{c.R, c.G, c.B} {
		b[1+i*2] = digits[v>>4]
		b[2+i*2] = digits[v&0x0f]
	}
	return string(b)
}

func hex(v uint32) color.RGBA {
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}
