package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChaseRain/carouselgen/internal/infra/logger"
	"github.com/ChaseRain/carouselgen/internal/service/orchestrator"
	"github.com/ChaseRain/carouselgen/pkg/errors"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestStore(gen Generator, ttl time.Duration) (*Store, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	s := NewStore(gen, ttl, logger.NewNop())
	s.now = clock.Now
	return s, clock
}

func TestStore_CreateAndGet(t *testing.T) {
	s, _ := newTestStore(&fakeGenerator{}, time.Hour)

	c := s.Create()
	require.NotEmpty(t, c.ID())
	got, err := s.Get(c.ID())
	require.NoError(t, err)
	assert.Same(t, c, got)

	_, err = s.Get("missing")
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))

	assert.Same(t, c, s.GetOrCreate(c.ID()))
	other := s.GetOrCreate("missing")
	assert.NotEqual(t, c.ID(), other.ID())
	got, err = s.Get(other.ID())
	require.NoError(t, err)
	assert.Same(t, other, got)
}

func TestStore_SweepDropsIdleSessions(t *testing.T) {
	s, clock := newTestStore(&fakeGenerator{result: &orchestrator.Result{Deck: deck("a")}}, 30*time.Minute)

	stale := s.Create()
	clock.Advance(20 * time.Minute)
	fresh := s.Create()
	clock.Advance(15 * time.Minute)

	assert.Equal(t, 1, s.Sweep())
	_, err := s.Get(stale.ID())
	assert.Error(t, err)
	_, err = s.Get(fresh.ID())
	assert.NoError(t, err)
}

func TestStore_SweepKeepsExportingSessions(t *testing.T) {
	s, clock := newTestStore(&fakeGenerator{result: &orchestrator.Result{Deck: deck("a")}}, time.Minute)

	c := s.Create()
	_, err := c.Submit(context.Background(), validForm(), nil)
	require.NoError(t, err)
	_, err = c.BeginExport()
	require.NoError(t, err)

	clock.Advance(time.Hour)
	assert.Equal(t, 0, s.Sweep())

	c.EndExport()
	clock.Advance(2 * time.Minute)
	assert.Equal(t, 1, s.Sweep())
	_, err = s.Get(c.ID())
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))
}

func TestStore_ZeroTTLNeverExpires(t *testing.T) {
	s, clock := newTestStore(&fakeGenerator{}, 0)
	s.Create()
	clock.Advance(1000 * time.Hour)
	assert.Equal(t, 0, s.Sweep())
}

func TestStore_RunStopsWithContext(t *testing.T) {
	s, _ := newTestStore(&fakeGenerator{}, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
