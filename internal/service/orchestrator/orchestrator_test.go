package orchestrator

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ChaseRain/carouselgen/internal/carousel"
	"github.com/ChaseRain/carouselgen/internal/infra/limiter"
	"github.com/ChaseRain/carouselgen/internal/infra/logger"
	"github.com/ChaseRain/carouselgen/internal/infra/metrics"
	"github.com/ChaseRain/carouselgen/pkg/errors"
)

type mockText struct {
	mock.Mock
}

func (m *mockText) GenerateSlides(ctx context.Context, topic, intention string) ([]carousel.SlideContent, error) {
	args := m.Called(ctx, topic, intention)
	slides, _ := args.Get(0).([]carousel.SlideContent)
	return slides, args.Error(1)
}

// fakeImages fails for the titles listed in failTitles and succeeds otherwise.
type fakeImages struct {
	mu         sync.Mutex
	calls      []string
	failTitles map[string]bool
	// when set, every call blocks until this many calls are in flight
	barrier  int
	inFlight atomic.Int32
	release  chan struct{}
	once     sync.Once
}

func (f *fakeImages) GenerateImage(ctx context.Context, title, content string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, title)
	f.mu.Unlock()

	if f.barrier > 0 {
		if int(f.inFlight.Add(1)) == f.barrier {
			f.once.Do(func() { close(f.release) })
		}
		select {
		case <-f.release:
		case <-time.After(2 * time.Second):
			return "", stderrors.New("requests were not issued concurrently")
		}
	}

	if f.failTitles[title] {
		return "", errors.New(errors.ErrCodeImageGenAPI, "image generation API returned 500")
	}
	return "data:image/png;base64," + title, nil
}

func (f *fakeImages) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func fiveSlides() []carousel.SlideContent {
	return []carousel.SlideContent{
		{Title: "s1", Content: "capa", Role: carousel.RoleCover},
		{Title: "s2", Content: "um", Role: carousel.RoleContent},
		{Title: "s3", Content: "dois", Role: carousel.RoleContent},
		{Title: "s4", Content: "três", Role: carousel.RoleContent},
		{Title: "s5", Content: "siga", Role: carousel.RoleCTA},
	}
}

func newOrchestrator(text TextGenerator, images ImageGenerator) *Orchestrator {
	return New(text, images, limiter.New(4, 0), metrics.New(), logger.NewNop(), Options{ImageTimeout: time.Second})
}

func request(topic string, images bool) *GenerateRequest {
	return &GenerateRequest{
		RunID:        "run-1",
		Request:      carousel.GenerationRequest{Topic: topic, Intention: "Inspirador"},
		AttachImages: images,
	}
}

func TestGenerate_TextOnlyKeepsOrderAndSkipsImages(t *testing.T) {
	text := &mockText{}
	text.On("GenerateSlides", mock.Anything, "manhãs", "Inspirador").Return(fiveSlides(), nil).Once()
	images := &fakeImages{}

	res, err := newOrchestrator(text, images).Generate(context.Background(), request("  manhãs ", false), nil)
	require.NoError(t, err)

	require.Len(t, res.Deck, 5)
	for i, s := range res.Deck {
		assert.Equal(t, fmt.Sprintf("s%d", i+1), s.Title)
		assert.False(t, s.HasImage())
	}
	assert.Nil(t, res.Warning)
	assert.Empty(t, res.FailedImages)
	assert.Equal(t, "run-1", res.RunID)
	assert.Equal(t, 0, images.callCount())
	text.AssertExpectations(t)
}

func TestGenerate_AllImagesSucceed(t *testing.T) {
	text := &mockText{}
	text.On("GenerateSlides", mock.Anything, mock.Anything, mock.Anything).Return(fiveSlides(), nil)
	images := &fakeImages{}

	res, err := newOrchestrator(text, images).Generate(context.Background(), request("manhãs", true), nil)
	require.NoError(t, err)

	assert.Nil(t, res.Warning)
	assert.Equal(t, 5, res.Deck.ImageCount())
	for i, s := range res.Deck {
		assert.Equal(t, "data:image/png;base64,"+fmt.Sprintf("s%d", i+1), s.ImageURL, "image must pair with its own slide")
	}
	assert.Equal(t, 5, images.callCount())
}

func TestGenerate_PartialImageFailure(t *testing.T) {
	text := &mockText{}
	text.On("GenerateSlides", mock.Anything, "5 dicas para uma manhã produtiva", "Inspirador").Return(fiveSlides(), nil)
	images := &fakeImages{failTitles: map[string]bool{"s2": true, "s4": true}}

	res, err := newOrchestrator(text, images).Generate(context.Background(), request("5 dicas para uma manhã produtiva", true), nil)
	require.NoError(t, err)

	require.Len(t, res.Deck, 5)
	assert.True(t, res.Deck[0].HasImage())
	assert.False(t, res.Deck[1].HasImage())
	assert.True(t, res.Deck[2].HasImage())
	assert.False(t, res.Deck[3].HasImage())
	assert.True(t, res.Deck[4].HasImage())
	assert.Equal(t, "s2", res.Deck[1].Title, "text survives image failure")

	assert.Equal(t, []int{1, 3}, res.FailedImages)
	require.NotNil(t, res.Warning)
	assert.Equal(t, errors.ErrCodePartialImages, res.Warning.Code)
	assert.Equal(t, MessagePartialImages, res.Warning.Message)
}

func TestGenerate_AllImagesFailStillReturnsDeck(t *testing.T) {
	text := &mockText{}
	text.On("GenerateSlides", mock.Anything, mock.Anything, mock.Anything).Return(fiveSlides()[:2], nil)
	images := &fakeImages{failTitles: map[string]bool{"s1": true, "s2": true}}

	res, err := newOrchestrator(text, images).Generate(context.Background(), request("x", true), nil)
	require.NoError(t, err)
	assert.Len(t, res.Deck, 2)
	assert.Equal(t, 0, res.Deck.ImageCount())
	assert.NotNil(t, res.Warning)
}

func TestGenerate_ImageRequestsAreConcurrent(t *testing.T) {
	text := &mockText{}
	text.On("GenerateSlides", mock.Anything, mock.Anything, mock.Anything).Return(fiveSlides(), nil)
	images := &fakeImages{barrier: 5, release: make(chan struct{}), failTitles: map[string]bool{"s3": true}}

	res, err := newOrchestrator(text, images).Generate(context.Background(), request("x", true), nil)
	require.NoError(t, err)

	// every request had to be in flight before any could finish
	assert.Equal(t, 4, res.Deck.ImageCount())
	assert.Equal(t, []int{2}, res.FailedImages)
}

func TestGenerate_ImageTimeoutIsPerRequest(t *testing.T) {
	text := &mockText{}
	text.On("GenerateSlides", mock.Anything, mock.Anything, mock.Anything).Return(fiveSlides()[:2], nil)
	hang := imageFunc(func(ctx context.Context, title, content string) (string, error) {
		if title == "s1" {
			<-ctx.Done()
			return "", ctx.Err()
		}
		return "data:image/png;base64,ok", nil
	})

	orch := New(text, hang, limiter.New(1, 0), nil, logger.NewNop(), Options{ImageTimeout: 30 * time.Millisecond})
	res, err := orch.Generate(context.Background(), request("x", true), nil)
	require.NoError(t, err)

	assert.False(t, res.Deck[0].HasImage())
	assert.True(t, res.Deck[1].HasImage())
	assert.Equal(t, []int{0}, res.FailedImages)
}

type imageFunc func(ctx context.Context, title, content string) (string, error)

func (f imageFunc) GenerateImage(ctx context.Context, title, content string) (string, error) {
	return f(ctx, title, content)
}

func TestGenerate_TextFailureIsFatalAndSkipsImages(t *testing.T) {
	tests := []struct {
		name   string
		slides []carousel.SlideContent
		err    error
	}{
		{"transport", nil, errors.New(errors.ErrCodeTextGenAPI, "gemini API returned 503")},
		{"empty result", []carousel.SlideContent{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := &mockText{}
			text.On("GenerateSlides", mock.Anything, mock.Anything, mock.Anything).Return(tt.slides, tt.err)
			images := &fakeImages{}

			res, err := newOrchestrator(text, images).Generate(context.Background(), request("x", true), nil)
			assert.Nil(t, res)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeGenerationFailed))
			assert.Equal(t, MessageGenerationFailed, errors.MessageOf(err))
			assert.Equal(t, 0, images.callCount())
		})
	}
}

func TestGenerate_BlankTopicMakesNoRemoteCall(t *testing.T) {
	text := &mockText{}
	images := &fakeImages{}

	res, err := newOrchestrator(text, images).Generate(context.Background(), request("   ", true), nil)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, errors.ErrCodeValidation))
	text.AssertNotCalled(t, "GenerateSlides", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, 0, images.callCount())
}

func TestGenerate_ProgressEvents(t *testing.T) {
	text := &mockText{}
	text.On("GenerateSlides", mock.Anything, mock.Anything, mock.Anything).Return(fiveSlides(), nil)
	images := &fakeImages{failTitles: map[string]bool{"s5": true}}

	var stages []string
	settled := 0
	onProgress := func(ev ProgressEvent) {
		stages = append(stages, ev.Stage)
		if ev.Stage == StageImageSettled {
			settled++
			data := ev.Data.(ImageSettledData)
			assert.Equal(t, data.Slide != 5, data.OK)
		}
	}

	_, err := newOrchestrator(text, images).Generate(context.Background(), request("x", true), onProgress)
	require.NoError(t, err)

	assert.Equal(t, 5, settled)
	require.GreaterOrEqual(t, len(stages), 4)
	assert.Equal(t, []string{StageGeneratingText, StageTextReady, StageGeneratingImages}, stages[:3])
	assert.Equal(t, StageComplete, stages[len(stages)-1])
}

func TestGenerate_RateLimitedWhenContextDone(t *testing.T) {
	text := &mockText{}
	lim := limiter.New(1, 0)
	hold, err := lim.Acquire(context.Background())
	require.NoError(t, err)
	defer hold()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	orch := New(text, &fakeImages{}, lim, nil, logger.NewNop(), Options{})
	_, err = orch.Generate(ctx, request("x", false), nil)
	assert.True(t, errors.Is(err, errors.ErrCodeRateLimited))
	text.AssertNotCalled(t, "GenerateSlides", mock.Anything, mock.Anything, mock.Anything)
}
