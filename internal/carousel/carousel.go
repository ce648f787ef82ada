// Package carousel defines the slide and deck types shared by the pipeline,
// the renderer and the session controller.
package carousel

import (
	"strings"

	"github.com/ChaseRain/carouselgen/internal/catalog"
	"github.com/ChaseRain/carouselgen/pkg/errors"
)

// Role selects the layout template of a slide.
type Role string

const (
	RoleCover   Role = "cover"
	RoleContent Role = "content"
	RoleCTA     Role = "cta"
)

// ParseRole normalizes s and reports whether it names a known role.
func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleCover, RoleContent, RoleCTA:
		return r, true
	default:
		return Role(s), false
	}
}

// SlideContent is the copy for one slide as returned by the text model.
type SlideContent struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Role    Role   `json:"slide_type"`
}

// Slide is SlideContent plus an optional image reference (a data URI).
type Slide struct {
	SlideContent
	ImageURL string `json:"imageUrl,omitempty"`
}

func (s Slide) HasImage() bool {
	return s.ImageURL != ""
}

// Deck is the ordered slide list of one generation run. Order is generation,
// display and export order.
type Deck []Slide

// NewDeck wraps text-only content as a deck with no images attached.
func NewDeck(contents []SlideContent) Deck {
	deck := make(Deck, len(contents))
	for i, c := range contents {
		deck[i] = Slide{SlideContent: c}
	}
	return deck
}

// ImageCount returns how many slides carry an image.
func (d Deck) ImageCount() int {
	n := 0
	for _, s := range d {
		if s.HasImage() {
			n++
		}
	}
	return n
}

// GenerationRequest is what the pipeline needs from the form.
type GenerationRequest struct {
	Topic     string
	Intention string
}

// Normalize trims the topic and fills in the default intention.
func (r GenerationRequest) Normalize() GenerationRequest {
	r.Topic = strings.TrimSpace(r.Topic)
	r.Intention = strings.TrimSpace(r.Intention)
	if r.Intention == "" {
		r.Intention = catalog.DefaultIntention()
	}
	return r
}

// Validate runs before any remote call is made.
func (r GenerationRequest) Validate() error {
	if strings.TrimSpace(r.Topic) == "" {
		return errors.New(errors.ErrCodeValidation, "Por favor, insira um tópico para o carrossel.")
	}
	intention := strings.TrimSpace(r.Intention)
	if intention != "" && !catalog.IsIntention(intention) {
		return errors.New(errors.ErrCodeValidation, "Intenção desconhecida: "+intention)
	}
	return nil
}
