package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

var (
	white      = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	shadeColor = color.NRGBA{A: 102}
)

type align int

const (
	alignStart align = iota
	alignCenter
)

type corner int

const (
	topLeft corner = iota
	bottomRight
	bottomCenter
)

// style sizes are in points at scale 1; lineHeight is a multiple of size.
type style struct {
	font       *opentype.Font
	size       float64
	lineHeight float64
	color      color.Color
}

type pill struct {
	fill   color.Color
	padX   int
	padY   int
	radius int
}

type block struct {
	text      string
	style     style
	marginTop int
	pill      *pill
}

// tag is a single-line label pinned to a corner of the card.
type tag struct {
	text  string
	style style
	pill  *pill
}

type faceKey struct {
	font *opentype.Font
	size float64
}

// canvas carries the per-render state.
type canvas struct {
	img   *image.RGBA
	scale int
	buf   sfnt.Buffer
	faces map[faceKey]font.Face
}

func newCanvas(size, scale int) *canvas {
	return &canvas{
		img:   image.NewRGBA(image.Rect(0, 0, size, size)),
		scale: scale,
		faces: make(map[faceKey]font.Face),
	}
}

func (c *canvas) px(v int) int { return v * c.scale }

func (c *canvas) size() int { return c.img.Bounds().Dx() }

func (c *canvas) close() {
	for _, f := range c.faces {
		_ = f.Close()
	}
}

func (c *canvas) face(f *opentype.Font, size float64) (font.Face, error) {
	key := faceKey{font: f, size: size}
	if face, ok := c.faces[key]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size * float64(c.scale),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create font face: %w", err)
	}
	c.faces[key] = face
	return face, nil
}

func (c *canvas) lineHeight(st style) int {
	return int(math.Round(st.size * st.lineHeight * float64(c.scale)))
}

// printable drops runes the font has no glyph for, such as emoji.
func (c *canvas) printable(f *opentype.Font, s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return r
		}
		if idx, err := f.GlyphIndex(&c.buf, r); err != nil || idx == 0 {
			return -1
		}
		return r
	}, s)
}

type placed struct {
	block
	face   font.Face
	lines  []string
	lh     int
	height int
}

// layout stacks blocks inside box. Anything falling outside clip is cut off.
func (c *canvas) layout(clip, box image.Rectangle, blocks []block, h, v align) error {
	dst := c.img.SubImage(clip).(*image.RGBA)

	var items []placed
	total := 0
	for _, b := range blocks {
		text := c.printable(b.style.font, b.text)
		if strings.TrimSpace(text) == "" {
			continue
		}
		face, err := c.face(b.style.font, b.style.size)
		if err != nil {
			return err
		}

		width := box.Dx()
		if b.pill != nil {
			width -= 2 * c.px(b.pill.padX)
		}
		it := placed{block: b, face: face, lines: wrap(face, text, width), lh: c.lineHeight(b.style)}
		it.height = len(it.lines) * it.lh
		if b.pill != nil {
			it.height += 2 * c.px(b.pill.padY)
		}

		if len(items) > 0 {
			total += c.px(b.marginTop)
		}
		total += it.height
		items = append(items, it)
	}

	y := box.Min.Y
	if v == alignCenter && total < box.Dy() {
		y += (box.Dy() - total) / 2
	}

	for i, it := range items {
		if i > 0 {
			y += c.px(it.marginTop)
		}
		area := image.Rect(box.Min.X, y, box.Max.X, y+it.height)
		if it.pill != nil {
			w := maxWidth(it.face, it.lines) + 2*c.px(it.pill.padX)
			x := box.Min.X
			if h == alignCenter {
				x += (box.Dx() - w) / 2
			}
			area = image.Rect(x, y, x+w, y+it.height)
			fillRounded(dst, area, c.px(it.pill.radius), it.pill.fill)
			area.Min.X += c.px(it.pill.padX)
			area.Max.X -= c.px(it.pill.padX)
			area.Min.Y += c.px(it.pill.padY)
		}
		drawLines(dst, it.face, it.style.color, it.lines, area, it.lh, h)
		y += it.height
	}
	return nil
}

// drawTag places a one-line label so that the given corner of its box sits at at.
func (c *canvas) drawTag(t tag, at image.Point, anchor corner) error {
	text := c.printable(t.style.font, t.text)
	face, err := c.face(t.style.font, t.style.size)
	if err != nil {
		return err
	}

	lh := c.lineHeight(t.style)
	w := font.MeasureString(face, text).Ceil()
	h := lh
	var padX, padY int
	if t.pill != nil {
		padX, padY = c.px(t.pill.padX), c.px(t.pill.padY)
		w += 2 * padX
		h += 2 * padY
	}

	var origin image.Point
	switch anchor {
	case topLeft:
		origin = at
	case bottomRight:
		origin = image.Pt(at.X-w, at.Y-h)
	case bottomCenter:
		origin = image.Pt(at.X-w/2, at.Y-h)
	}
	rect := image.Rectangle{Min: origin, Max: origin.Add(image.Pt(w, h))}

	if t.pill != nil {
		fillRounded(c.img, rect, c.px(t.pill.radius), t.pill.fill)
	}
	inner := image.Rect(rect.Min.X+padX, rect.Min.Y+padY, rect.Max.X-padX, rect.Max.Y-padY)
	drawLines(c.img, face, t.style.color, []string{text}, inner, lh, alignStart)
	return nil
}

// drawLines writes lines top-down from area.Min.Y, one per line height.
func drawLines(dst draw.Image, face font.Face, col color.Color, lines []string, area image.Rectangle, lh int, h align) {
	m := face.Metrics()
	ascent, descent := m.Ascent.Ceil(), m.Descent.Ceil()
	src := image.NewUniform(col)

	for i, line := range lines {
		if line == "" {
			continue
		}
		x := area.Min.X
		if h == alignCenter {
			x += (area.Dx() - font.MeasureString(face, line).Ceil()) / 2
		}
		top := area.Min.Y + i*lh
		baseline := top + (lh-(ascent+descent))/2 + ascent

		d := &font.Drawer{
			Dst:  dst,
			Src:  src,
			Face: face,
			Dot:  fixed.P(x, baseline),
		}
		d.DrawString(line)
	}
}

// wrap breaks text into lines no wider than width. Explicit newlines are
// kept, blank ones included; words wider than a whole line are split.
func wrap(face font.Face, text string, width int) []string {
	if width < 1 {
		width = 1
	}
	limit := fixed.I(width)

	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}

		line := ""
		for _, w := range words {
			for utf8.RuneCountInString(w) > 1 && font.MeasureString(face, w) > limit {
				head, tail := splitToFit(face, w, limit)
				if tail == "" {
					break
				}
				if line != "" {
					lines = append(lines, line)
					line = ""
				}
				lines = append(lines, head)
				w = tail
			}

			if line == "" {
				line = w
				continue
			}
			if candidate := line + " " + w; font.MeasureString(face, candidate) <= limit {
				line = candidate
				continue
			}
			lines = append(lines, line)
			line = w
		}
		lines = append(lines, line)
	}
	return lines
}

func splitToFit(face font.Face, w string, limit fixed.Int26_6) (string, string) {
	var advance fixed.Int26_6
	for i, r := range w {
		a, _ := face.GlyphAdvance(r)
		if i > 0 && advance+a > limit {
			return w[:i], w[i:]
		}
		advance += a
	}
	return w, ""
}

func maxWidth(face font.Face, lines []string) int {
	widest := 0
	for _, l := range lines {
		if w := font.MeasureString(face, l).Ceil(); w > widest {
			widest = w
		}
	}
	return widest
}

func withAlpha(c color.RGBA, a uint8) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: a}
}

func fillRect(dst draw.Image, r image.Rectangle, col color.Color) {
	draw.Draw(dst, r, image.NewUniform(col), image.Point{}, draw.Src)
}

func fillRounded(dst draw.Image, r image.Rectangle, radius int, col color.Color) {
	if r.Empty() {
		return
	}
	draw.DrawMask(dst, r, image.NewUniform(col), image.Point{}, roundedMask(r.Dx(), r.Dy(), radius), image.Point{}, draw.Over)
}

// roundCorners returns a copy of img whose corners outside radius are transparent.
func roundCorners(img *image.RGBA, radius int) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(b)
	draw.DrawMask(out, b, img, b.Min, roundedMask(b.Dx(), b.Dy(), radius), image.Point{}, draw.Src)
	return out
}

// roundedMask is an anti-aliased w×h rounded-rectangle coverage mask.
func roundedMask(w, h, radius int) *image.Alpha {
	m := image.NewAlpha(image.Rect(0, 0, w, h))
	for i := range m.Pix {
		m.Pix[i] = 0xff
	}

	if radius > w/2 {
		radius = w / 2
	}
	if radius > h/2 {
		radius = h / 2
	}

	rf := float64(radius)
	for y := 0; y < radius; y++ {
		for x := 0; x < radius; x++ {
			// sampled at pixel centres against the corner circle
			dist := math.Hypot(rf-(float64(x)+0.5), rf-(float64(y)+0.5))
			cov := math.Max(0, math.Min(1, rf-dist+0.5))
			a := color.Alpha{A: uint8(cov * 0xff)}
			m.SetAlpha(x, y, a)
			m.SetAlpha(w-1-x, y, a)
			m.SetAlpha(x, h-1-y, a)
			m.SetAlpha(w-1-x, h-1-y, a)
		}
	}
	return m
}
