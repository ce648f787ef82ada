package export

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"image"
	"time"

	"github.com/disintegration/imaging"

	"github.com/ChaseRain/carouselgen/internal/infra/logger"
	"github.com/ChaseRain/carouselgen/internal/infra/metrics"
	"github.com/ChaseRain/carouselgen/internal/service/render"
	"github.com/ChaseRain/carouselgen/pkg/errors"
)

const (
	KindSlide   = "slide"
	KindArchive = "archive"

	ArchiveName  = "carousel-slides.zip"
	DefaultScale = 2
)

// Rasterizer draws one card. *render.Renderer satisfies it.
type Rasterizer interface {
	Render(card render.Card, scale int) (image.Image, error)
}

type File struct {
	Name        string
	ContentType string
	Data        []byte
}

type Exporter struct {
	renderer Rasterizer
	scale    int
	metrics  *metrics.Metrics
	logger   *logger.Logger
}

func New(r Rasterizer, scale int, m *metrics.Metrics, log *logger.Logger) *Exporter {
	if scale < 1 {
		scale = DefaultScale
	}
	return &Exporter{
		renderer: r,
		scale:    scale,
		metrics:  m,
		logger:   log,
	}
}

// SlideFileName names the PNG for the card at the given 1-based position.
func SlideFileName(index int) string {
	return fmt.Sprintf("carousel-slide-%d.png", index)
}

// Slide renders one card as a PNG attachment.
func (e *Exporter) Slide(card render.Card) (*File, error) {
	data, err := e.encode(card)
	if err != nil {
		e.logger.Error("slide export failed", "slide", card.Index, "error", err)
		e.metrics.Export(KindSlide, false)
		return nil, errors.Wrap(err, errors.ErrCodeExport, fmt.Sprintf("failed to export slide %d", card.Index))
	}

	e.metrics.Export(KindSlide, true)
	return &File{
		Name:        SlideFileName(card.Index),
		ContentType: "image/png",
		Data:        data,
	}, nil
}

// Preview renders one card at scale 1 for on-screen display. It is not
// counted as an export.
func (e *Exporter) Preview(card render.Card) (*File, error) {
	data, err := e.encodeAt(card, 1)
	if err != nil {
		e.logger.Warn("slide preview failed", "slide", card.Index, "error", err)
		return nil, errors.Wrap(err, errors.ErrCodeExport, fmt.Sprintf("failed to render slide %d", card.Index))
	}
	return &File{
		Name:        fmt.Sprintf("carousel-slide-%d-preview.png", card.Index),
		ContentType: "image/png",
		Data:        data,
	}, nil
}

// Archive renders the cards one after another, in order, into a single zip.
// A card that fails to render is left out and its Index reported in skipped;
// only a failure of the archive itself is returned as an error.
func (e *Exporter) Archive(ctx context.Context, cards []render.Card) (file *File, skipped []int, err error) {
	defer func() {
		e.metrics.Export(KindArchive, err == nil)
	}()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	now := time.Now()

	for _, card := range cards {
		if err := ctx.Err(); err != nil {
			return nil, nil, errors.Wrap(err, errors.ErrCodeExport, "archive export cancelled")
		}

		data, err := e.encode(card)
		if err != nil {
			e.logger.Warn("skipping slide in archive", "slide", card.Index, "error", err)
			skipped = append(skipped, card.Index)
			continue
		}

		// PNG is already deflated
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     SlideFileName(card.Index),
			Method:   zip.Store,
			Modified: now,
		})
		if err != nil {
			return nil, nil, errors.Wrap(err, errors.ErrCodeExport, "failed to add archive entry")
		}
		if _, err := w.Write(data); err != nil {
			return nil, nil, errors.Wrap(err, errors.ErrCodeExport, "failed to write archive entry")
		}
	}

	if err := zw.Close(); err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrCodeExport, "failed to finalize archive")
	}

	e.logger.Info("archive exported",
		"slides", len(cards)-len(skipped),
		"skipped", len(skipped),
		"size", buf.Len(),
	)

	return &File{
		Name:        ArchiveName,
		ContentType: "application/zip",
		Data:        buf.Bytes(),
	}, skipped, nil
}

func (e *Exporter) encode(card render.Card) ([]byte, error) {
	return e.encodeAt(card, e.scale)
}

func (e *Exporter) encodeAt(card render.Card, scale int) ([]byte, error) {
	img, err := e.renderer.Render(card, scale)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
