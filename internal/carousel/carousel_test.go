package carousel

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ChaseRain/carouselgen/pkg/errors"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
		ok   bool
	}{
		{"cover", RoleCover, true},
		{" CTA ", RoleCTA, true},
		{"Content", RoleContent, true},
		{"outro", Role("outro"), false},
		{"", Role(""), false},
	}
	for _, tt := range tests {
		got, ok := ParseRole(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestGenerationRequest_Validate(t *testing.T) {
	assert.NoError(t, GenerationRequest{Topic: "5 dicas para uma manhã produtiva", Intention: "Inspirador"}.Validate())
	assert.NoError(t, GenerationRequest{Topic: "café"}.Validate())

	err := GenerationRequest{Topic: "   \t\n"}.Validate()
	assert.True(t, errors.Is(err, errors.ErrCodeValidation))

	err = GenerationRequest{Topic: "café", Intention: "Sarcástico"}.Validate()
	assert.True(t, errors.Is(err, errors.ErrCodeValidation))
}

func TestGenerationRequest_Normalize(t *testing.T) {
	got := GenerationRequest{Topic: "  café  "}.Normalize()
	assert.Equal(t, "café", got.Topic)
	assert.Equal(t, "Informativo", got.Intention)
}

func TestDeck(t *testing.T) {
	deck := NewDeck([]SlideContent{
		{Title: "a", Role: RoleCover},
		{Title: "b", Role: RoleContent},
	})
	assert.Len(t, deck, 2)
	assert.Equal(t, 0, deck.ImageCount())

	deck[1].ImageURL = "data:image/png;base64,AAAA"
	assert.Equal(t, 1, deck.ImageCount())
	assert.Equal(t, "a", deck[0].Title)
}

func TestDecodeDataURI(t *testing.T) {
	raw, err := DecodeDataURI(PNGDataURI("aGVsbG8="))
	assert.NoError(t, err)
	assert.Equal(t, []byte("hello"), raw)

	for _, in := range []string{"", "http://x/y.png", "data:image/png,raw", "data:image/png;base64,@@"} {
		_, err := DecodeDataURI(in)
		assert.Error(t, err, in)
	}
}
