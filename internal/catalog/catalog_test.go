package catalog

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPalettes(t *testing.T) {
	all := Palettes()
	require.Len(t, all, 6)
	assert.Equal(t, "Twilight", DefaultPalette().Name)

	names := make([]string, 0, len(all))
	for _, p := range all {
		names = append(names, p.Name)
		assert.Equal(t, uint8(0xff), p.Background.A, p.Name)
	}
	assert.Equal(t, []string{"Twilight", "Sunrise", "Ocean", "Forest", "Rose", "Minimalist"}, names)

	// callers get a copy
	all[0].Name = "mutated"
	assert.Equal(t, "Twilight", Palettes()[0].Name)
}

func TestPaletteByName(t *testing.T) {
	p, ok := PaletteByName(" ocean ")
	require.True(t, ok)
	assert.Equal(t, "Ocean", p.Name)
	assert.Equal(t, color.RGBA{R: 0x02, G: 0x84, B: 0xC7, A: 0xff}, p.Primary)

	_, ok = PaletteByName("Neon")
	assert.False(t, ok)
}

func TestIntentions(t *testing.T) {
	assert.Equal(t, "Informativo", DefaultIntention())
	assert.True(t, IsIntention("Inspirador"))
	assert.True(t, IsIntention("Contar História"))
	assert.False(t, IsIntention("inspirador"))
	assert.Len(t, Intentions(), 6)
}

func TestHex(t *testing.T) {
	assert.Equal(t, "#6366f1", Hex(color.RGBA{R: 0x63, G: 0x66, B: 0xF1, A: 0xff}))
	assert.Equal(t, "#000000", Hex(color.RGBA{A: 0xff}))
}
