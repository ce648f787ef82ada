package render

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"strings"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/ChaseRain/carouselgen/internal/carousel"
	"github.com/ChaseRain/carouselgen/internal/catalog"
)

const (
	// CardSize is the edge of a card at scale 1, in pixels.
	CardSize = 1080

	DefaultUsername = "@seunomeaqui"

	cornerRadius = 40
	overlayInset = 32
	swipeHint    = "Deslize para o lado →"
	ctaBadge     = "Siga para mais!"
)

// Card is everything needed to draw one slide.
type Card struct {
	Slide    carousel.Slide
	Palette  catalog.Palette
	Username string
	// Index is 1-based.
	Index int
	Total int
}

// Renderer rasterizes cards. The parsed fonts are shared between renders;
// faces are not goroutine-safe and are created per call.
type Renderer struct {
	regular *opentype.Font
	bold    *opentype.Font
	mono    *opentype.Font
}

func New() (*Renderer, error) {
	regular, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse regular font: %w", err)
	}
	bold, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse bold font: %w", err)
	}
	mono, err := opentype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse mono font: %w", err)
	}
	return &Renderer{regular: regular, bold: bold, mono: mono}, nil
}

// Render draws the card as a square of CardSize*scale pixels with rounded,
// transparent corners. Slides with an image put it in the top half; unknown
// roles use the content template.
func (r *Renderer) Render(card Card, scale int) (image.Image, error) {
	if scale < 1 {
		scale = 1
	}

	photo, err := decodePhoto(card.Slide)
	if err != nil {
		return nil, fmt.Errorf("slide %d: %w", card.Index, err)
	}

	c := newCanvas(CardSize*scale, scale)
	defer c.close()
	fillRect(c.img, c.img.Bounds(), card.Palette.Background)

	if photo != nil {
		err = r.drawIllustrated(c, card, photo)
	} else {
		err = r.drawPlain(c, card)
	}
	if err != nil {
		return nil, fmt.Errorf("slide %d: %w", card.Index, err)
	}

	return roundCorners(c.img, c.px(cornerRadius)), nil
}

func decodePhoto(s carousel.Slide) (image.Image, error) {
	if !s.HasImage() {
		return nil, nil
	}
	raw, err := carousel.DecodeDataURI(s.ImageURL)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

func (r *Renderer) drawPlain(c *canvas, card Card) error {
	size := c.size()
	pal := card.Palette

	box := image.Rect(c.px(80), c.px(120), size-c.px(80), size-c.px(140))
	blocks, h, v := r.template(card, false)
	if err := c.layout(c.img.Bounds(), box, blocks, h, v); err != nil {
		return err
	}

	if card.Slide.Role == carousel.RoleCover {
		hint := tag{text: swipeHint, style: style{font: r.bold, size: 24, lineHeight: 1.2, color: pal.Secondary}}
		if err := c.drawTag(hint, image.Pt(size/2, size-c.px(80)), bottomCenter); err != nil {
			return err
		}
	}

	user := tag{text: username(card), style: style{font: r.bold, size: 28, lineHeight: 1.2, color: withAlpha(pal.Text, 178)}}
	if err := c.drawTag(user, image.Pt(c.px(overlayInset), c.px(overlayInset)), topLeft); err != nil {
		return err
	}

	marker := tag{
		text:  position(card),
		style: style{font: r.mono, size: 22, lineHeight: 1.2, color: withAlpha(pal.Text, 204)},
		pill:  &pill{fill: withAlpha(pal.Primary, 204), padX: 16, padY: 8, radius: 6},
	}
	return c.drawTag(marker, image.Pt(size-c.px(overlayInset), size-c.px(overlayInset)), bottomRight)
}

func (r *Renderer) drawIllustrated(c *canvas, card Card, photo image.Image) error {
	size := c.size()
	split := size / 2

	fitted := imaging.Fill(photo, size, split, imaging.Center, imaging.Lanczos)
	draw.Draw(c.img, image.Rect(0, 0, size, split), fitted, image.Point{}, draw.Src)

	area := image.Rect(0, split, size, size)
	box := image.Rect(c.px(40), split+c.px(48), size-c.px(40), size-c.px(48))
	blocks, h, v := r.template(card, true)
	if err := c.layout(area, box, blocks, h, v); err != nil {
		return err
	}

	shade := &pill{fill: shadeColor, padX: 16, padY: 8, radius: 6}
	user := tag{text: username(card), style: style{font: r.bold, size: 28, lineHeight: 1.2, color: white}, pill: shade}
	if err := c.drawTag(user, image.Pt(c.px(overlayInset), c.px(overlayInset)), topLeft); err != nil {
		return err
	}

	marker := tag{text: position(card), style: style{font: r.mono, size: 22, lineHeight: 1.2, color: white}, pill: shade}
	return c.drawTag(marker, image.Pt(size-c.px(overlayInset), split-c.px(overlayInset)), bottomRight)
}

// template returns the role-specific text blocks with their horizontal and
// vertical alignment. compact selects the smaller type used when an image
// takes the top half.
func (r *Renderer) template(card Card, compact bool) ([]block, align, align) {
	pal := card.Palette
	s := card.Slide
	pt := func(plain, small float64) float64 {
		if compact {
			return small
		}
		return plain
	}

	switch s.Role {
	case carousel.RoleCover:
		return []block{
			{text: s.Title, style: style{font: r.bold, size: pt(72, 52), lineHeight: 1.2, color: pal.Text}},
			{text: s.Content, style: style{font: r.regular, size: pt(36, 28), lineHeight: 1.6, color: pal.Secondary}, marginTop: 24},
		}, alignCenter, alignCenter
	case carousel.RoleCTA:
		return []block{
			{text: s.Title, style: style{font: r.bold, size: pt(56, 40), lineHeight: 1.3, color: pal.Secondary}},
			{text: s.Content, style: style{font: r.bold, size: pt(42, 32), lineHeight: 1.5, color: pal.Text}, marginTop: 24},
			{
				text:      ctaBadge,
				style:     style{font: r.bold, size: pt(32, 28), lineHeight: 1.2, color: pal.Text},
				marginTop: 32,
				pill:      &pill{fill: pal.Primary, padX: 40, padY: 20, radius: 8},
			},
		}, alignCenter, alignCenter
	default:
		v := alignCenter
		if compact {
			v = alignStart
		}
		return []block{
			{text: s.Title, style: style{font: r.bold, size: pt(50, 40), lineHeight: 1.3, color: pal.Secondary}},
			{text: s.Content, style: style{font: r.regular, size: pt(34, 28), lineHeight: 1.6, color: pal.Text}, marginTop: 24},
		}, alignStart, v
	}
}

func username(card Card) string {
	if u := strings.TrimSpace(card.Username); u != "" {
		return u
	}
	return DefaultUsername
}

func position(card Card) string {
	return fmt.Sprintf("%d/%d", card.Index, card.Total)
}
