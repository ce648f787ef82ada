package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ChaseRain/carouselgen/internal/carousel"
	"github.com/ChaseRain/carouselgen/internal/infra/limiter"
	"github.com/ChaseRain/carouselgen/internal/infra/logger"
	"github.com/ChaseRain/carouselgen/internal/infra/metrics"
	"github.com/ChaseRain/carouselgen/pkg/errors"
)

const (
	MessageGenerationFailed = "Não foi possível gerar o conteúdo. Verifique o tópico e tente novamente."
	MessagePartialImages    = "Algumas imagens não puderam ser geradas. Exibindo o conteúdo disponível."
)

// Progress stages, in the order they are emitted.
const (
	StageGeneratingText   = "generating_text"
	StageTextReady        = "text_ready"
	StageGeneratingImages = "generating_images"
	StageImageSettled     = "image_settled"
	StageComplete         = "complete"
)

// TextGenerator drafts the slide copy for a topic.
type TextGenerator interface {
	GenerateSlides(ctx context.Context, topic, intention string) ([]carousel.SlideContent, error)
}

// ImageGenerator returns a displayable image reference for one slide.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, title, content string) (string, error)
}

type GenerateRequest struct {
	RunID        string
	Request      carousel.GenerationRequest
	AttachImages bool
}

type Result struct {
	RunID string
	Deck  carousel.Deck
	// FailedImages holds the 0-based positions whose image request failed.
	FailedImages []int
	// Warning is set iff FailedImages is non-empty.
	Warning *errors.AppError
}

// ProgressEvent 进度事件
type ProgressEvent struct {
	Stage    string
	Message  string
	Progress int
	Data     interface{}
}

// ImageSettledData accompanies StageImageSettled events.
type ImageSettledData struct {
	Slide int  `json:"slide"`
	OK    bool `json:"ok"`
}

// ProgressCallback 进度回调函数
type ProgressCallback func(event ProgressEvent)

type Options struct {
	// ImageTimeout bounds each image request on its own. Zero means no bound
	// beyond the HTTP client's.
	ImageTimeout time.Duration
}

type Orchestrator struct {
	text    TextGenerator
	images  ImageGenerator
	limiter *limiter.Limiter
	metrics *metrics.Metrics
	logger  *logger.Logger
	opts    Options
}

func New(
	text TextGenerator,
	images ImageGenerator,
	lim *limiter.Limiter,
	m *metrics.Metrics,
	log *logger.Logger,
	opts Options,
) *Orchestrator {
	return &Orchestrator{
		text:    text,
		images:  images,
		limiter: lim,
		metrics: m,
		logger:  log,
		opts:    opts,
	}
}

// Generate runs one carousel generation: text first, then the optional
// per-slide image fan-out. A returned error is always an *errors.AppError
// coded VALIDATION_ERROR, RATE_LIMITED or GENERATION_FAILED; image failures
// never fail the run and are reported through Result.Warning instead.
func (o *Orchestrator) Generate(ctx context.Context, req *GenerateRequest, onProgress ProgressCallback) (*Result, error) {
	genReq := req.Request.Normalize()
	if err := genReq.Validate(); err != nil {
		o.metrics.ObserveRun(metrics.OutcomeRejected, 0)
		return nil, err
	}

	release, err := o.limiter.Acquire(ctx)
	if err != nil {
		o.metrics.ObserveRun(metrics.OutcomeRejected, 0)
		return nil, errors.Wrap(err, errors.ErrCodeRateLimited, "rate limit exceeded")
	}
	defer release()

	// image goroutines report concurrently
	var emitMu sync.Mutex
	emit := func(stage, message string, progress int, data interface{}) {
		if onProgress == nil {
			return
		}
		emitMu.Lock()
		defer emitMu.Unlock()
		onProgress(ProgressEvent{
			Stage:    stage,
			Message:  message,
			Progress: progress,
			Data:     data,
		})
	}

	log := o.logger.With("run_id", req.RunID)
	start := time.Now()

	log.Info("starting carousel generation",
		"topic", genReq.Topic,
		"intention", genReq.Intention,
		"attach_images", req.AttachImages,
	)

	// Step 1: slide copy
	emit(StageGeneratingText, "Gerando o texto dos slides...", 10, nil)

	contents, err := o.text.GenerateSlides(ctx, genReq.Topic, genReq.Intention)
	if err == nil && len(contents) == 0 {
		err = errors.New(errors.ErrCodeTextGenAPI, "text generation returned no slides")
	}
	if err != nil {
		log.Error("text generation failed", "error", err)
		o.metrics.ObserveRun(metrics.OutcomeFatal, time.Since(start).Seconds())
		return nil, errors.Wrap(err, errors.ErrCodeGenerationFailed, MessageGenerationFailed)
	}

	deck := carousel.NewDeck(contents)
	log.Info("slide content generated", "slides", len(deck))
	emit(StageTextReady, "Texto dos slides pronto", 40, cloneDeck(deck))

	result := &Result{
		RunID: req.RunID,
		Deck:  deck,
	}

	// Step 2: illustrations
	if req.AttachImages {
		emit(StageGeneratingImages, "Gerando as imagens...", 50, nil)
		result.FailedImages = o.attachImages(ctx, log, deck, emit)
	}

	outcome := metrics.OutcomeSuccess
	if len(result.FailedImages) > 0 {
		outcome = metrics.OutcomePartial
		result.Warning = errors.New(errors.ErrCodePartialImages, MessagePartialImages)
		log.Warn("some slide images failed, continuing without them",
			"failed", len(result.FailedImages),
			"slides", len(deck),
		)
	}
	o.metrics.ObserveRun(outcome, time.Since(start).Seconds())

	emit(StageComplete, "Carrossel pronto!", 100, cloneDeck(deck))
	log.Info("carousel generation completed",
		"slides", len(deck),
		"images", deck.ImageCount(),
		"elapsed", time.Since(start).String(),
	)

	return result, nil
}

// attachImages issues every image request at once and waits for all of them
// to settle. Slot i of the deck receives the result of request i; failed
// positions are returned and their slides keep no image.
func (o *Orchestrator) attachImages(
	ctx context.Context,
	log *logger.Logger,
	deck carousel.Deck,
	emit func(stage, message string, progress int, data interface{}),
) []int {
	urls := make([]string, len(deck))
	errs := make([]error, len(deck))
	var settled atomic.Int32

	var g errgroup.Group
	for i := range deck {
		i := i
		slide := deck[i].SlideContent
		g.Go(func() error {
			imgCtx, cancel := o.imageContext(ctx)
			defer cancel()

			url, err := o.images.GenerateImage(imgCtx, slide.Title, slide.Content)
			if err == nil && url == "" {
				err = errors.New(errors.ErrCodeImageGenAPI, "no image in response")
			}
			urls[i], errs[i] = url, err
			o.metrics.ImageRequest(err == nil)

			n := int(settled.Add(1))
			emit(StageImageSettled,
				fmt.Sprintf("Imagem %d de %d processada", n, len(deck)),
				50+n*40/len(deck),
				ImageSettledData{Slide: i + 1, OK: err == nil},
			)
			// never cancel siblings
			return nil
		})
	}
	_ = g.Wait()

	var failed []int
	for i := range deck {
		if errs[i] != nil {
			log.Warn("image generation failed", "slide", i+1, "error", errs[i])
			failed = append(failed, i)
			continue
		}
		deck[i].ImageURL = urls[i]
	}
	return failed
}

func (o *Orchestrator) imageContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.opts.ImageTimeout > 0 {
		return context.WithTimeout(ctx, o.opts.ImageTimeout)
	}
	return context.WithCancel(ctx)
}

func cloneDeck(d carousel.Deck) carousel.Deck {
	out := make(carousel.Deck, len(d))
	copy(out, d)
	return out
}
