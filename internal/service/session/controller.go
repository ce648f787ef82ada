package session

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ChaseRain/carouselgen/internal/carousel"
	"github.com/ChaseRain/carouselgen/internal/catalog"
	"github.com/ChaseRain/carouselgen/internal/infra/logger"
	"github.com/ChaseRain/carouselgen/internal/service/orchestrator"
	"github.com/ChaseRain/carouselgen/internal/service/render"
	"github.com/ChaseRain/carouselgen/pkg/errors"
)

const (
	MessageBlankUsername     = "Por favor, insira um nome de usuário."
	MessageRunInProgress     = "Aguarde: o carrossel ainda está sendo gerado."
	MessageExportInProgress  = "A exportação já está em andamento."
	MessageNothingToExport   = "Gere um carrossel antes de exportar."
	MessageSlideNotFound     = "Slide não encontrado."
	messageUnknownPalettePfx = "Paleta desconhecida: "
)

// Generator runs one generation. *orchestrator.Orchestrator satisfies it.
type Generator interface {
	Generate(ctx context.Context, req *orchestrator.GenerateRequest, onProgress orchestrator.ProgressCallback) (*orchestrator.Result, error)
}

// Form holds the user's inputs.
type Form struct {
	Topic          string
	Username       string
	Intention      string
	Palette        string
	GenerateImages bool
}

func DefaultForm() Form {
	return Form{
		Username:       render.DefaultUsername,
		Intention:      catalog.DefaultIntention(),
		Palette:        catalog.DefaultPalette().Name,
		GenerateImages: true,
	}
}

func (f Form) request() carousel.GenerationRequest {
	return carousel.GenerationRequest{Topic: f.Topic, Intention: f.Intention}.Normalize()
}

// Validate checks the form and resolves its palette. An empty palette means
// the default one.
func (f Form) Validate() (catalog.Palette, error) {
	if err := f.request().Validate(); err != nil {
		return catalog.Palette{}, err
	}
	if strings.TrimSpace(f.Username) == "" {
		return catalog.Palette{}, errors.New(errors.ErrCodeValidation, MessageBlankUsername)
	}
	return resolvePalette(f.Palette)
}

func resolvePalette(name string) (catalog.Palette, error) {
	if strings.TrimSpace(name) == "" {
		return catalog.DefaultPalette(), nil
	}
	p, ok := catalog.PaletteByName(name)
	if !ok {
		return catalog.Palette{}, errors.New(errors.ErrCodeValidation, messageUnknownPalettePfx+strings.TrimSpace(name))
	}
	return p, nil
}

// Snapshot is a consistent copy of a controller's state.
type Snapshot struct {
	ID        string
	Form      Form
	Palette   catalog.Palette
	State     RunState
	Exporting bool
}

// Controller owns the form and run state of one session. The mutex is never
// held across a remote call.
type Controller struct {
	id     string
	gen    Generator
	logger *logger.Logger
	now    func() time.Time

	mu         sync.Mutex
	form       Form
	palette    catalog.Palette
	state      RunState
	exporting  bool
	lastActive time.Time
}

func NewController(id string, gen Generator, log *logger.Logger) *Controller {
	return newController(id, gen, log, time.Now)
}

func newController(id string, gen Generator, log *logger.Logger, now func() time.Time) *Controller {
	return &Controller{
		id:         id,
		gen:        gen,
		logger:     log.With("session_id", id),
		now:        now,
		form:       DefaultForm(),
		palette:    catalog.DefaultPalette(),
		lastActive: now(),
	}
}

func (c *Controller) ID() string { return c.id }

// Submit validates the form and runs a generation. Invalid input leaves the
// state untouched; a submission while a run is loading is rejected.
func (c *Controller) Submit(ctx context.Context, form Form, onProgress orchestrator.ProgressCallback) (*orchestrator.Result, error) {
	form.Username = strings.TrimSpace(form.Username)
	palette, err := form.Validate()
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()

	c.mu.Lock()
	if c.state.Loading {
		c.mu.Unlock()
		return nil, errors.New(errors.ErrCodeRunInProgress, MessageRunInProgress)
	}
	form.Palette = palette.Name
	c.form = form
	c.palette = palette
	c.state = Begin(c.state, runID)
	c.lastActive = c.now()
	c.mu.Unlock()

	c.logger.Info("run submitted", "run_id", runID)

	res, err := c.gen.Generate(ctx, &orchestrator.GenerateRequest{
		RunID:        runID,
		Request:      form.request(),
		AttachImages: form.GenerateImages,
	}, onProgress)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = Fail(c.state, runID, errors.MessageOf(err))
	} else {
		c.state = Succeed(c.state, runID, res)
	}
	c.lastActive = c.now()

	return res, err
}

// SetAppearance changes the username and palette of the displayed deck
// without regenerating it.
func (c *Controller) SetAppearance(username, paletteName string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return errors.New(errors.ErrCodeValidation, MessageBlankUsername)
	}
	palette, err := resolvePalette(paletteName)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.form.Username = username
	c.form.Palette = palette.Name
	c.palette = palette
	c.lastActive = c.now()
	return nil
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := c.state
	if state.Deck != nil {
		state.Deck = append(carousel.Deck{}, state.Deck...)
	}
	return Snapshot{
		ID:        c.id,
		Form:      c.form,
		Palette:   c.palette,
		State:     state,
		Exporting: c.exporting,
	}
}

// Card returns the render input for the slide at 1-based position n.
func (c *Controller) Card(n int) (render.Card, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastActive = c.now()

	if c.state.Loading || n < 1 || n > len(c.state.Deck) {
		return render.Card{}, errors.New(errors.ErrCodeNotFound, MessageSlideNotFound)
	}
	return c.cardLocked(n - 1), nil
}

// BeginExport claims the all-cards export and returns the cards to draw.
// EndExport must follow a successful call.
func (c *Controller) BeginExport() ([]render.Card, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.exporting {
		return nil, errors.New(errors.ErrCodeExportInProgress, MessageExportInProgress)
	}
	if c.state.Loading || len(c.state.Deck) == 0 {
		return nil, errors.New(errors.ErrCodeNotFound, MessageNothingToExport)
	}

	c.exporting = true
	c.lastActive = c.now()
	cards := make([]render.Card, len(c.state.Deck))
	for i := range cards {
		cards[i] = c.cardLocked(i)
	}
	return cards, nil
}

func (c *Controller) EndExport() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exporting = false
	c.lastActive = c.now()
}

func (c *Controller) cardLocked(i int) render.Card {
	return render.Card{
		Slide:    c.state.Deck[i],
		Palette:  c.palette,
		Username: c.form.Username,
		Index:    i + 1,
		Total:    len(c.state.Deck),
	}
}

// idleSince reports when the controller was last used, or ok=false while it
// is busy with a run or an export.
func (c *Controller) idleSince() (t time.Time, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Loading || c.exporting {
		return time.Time{}, false
	}
	return c.lastActive, true
}
