package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ChaseRain/carouselgen/internal/carousel"
	"github.com/ChaseRain/carouselgen/internal/service/orchestrator"
	"github.com/ChaseRain/carouselgen/pkg/errors"
)

func deck(titles ...string) carousel.Deck {
	d := make(carousel.Deck, len(titles))
	for i, t := range titles {
		d[i] = carousel.Slide{SlideContent: carousel.SlideContent{Title: t, Role: carousel.RoleContent}}
	}
	return d
}

func TestRunState_Phases(t *testing.T) {
	var s RunState
	assert.Equal(t, PhaseIdle, s.Phase())

	s = Begin(s, "r1")
	assert.Equal(t, PhaseLoading, s.Phase())

	ready := Succeed(s, "r1", &orchestrator.Result{RunID: "r1", Deck: deck("a", "b")})
	assert.Equal(t, PhaseReady, ready.Phase())
	assert.Len(t, ready.Deck, 2)
	assert.Empty(t, ready.Warning)

	failed := Fail(s, "r1", "boom")
	assert.Equal(t, PhaseFailed, failed.Phase())
	assert.Nil(t, failed.Deck)
	assert.Equal(t, "boom", failed.Error)
}

func TestBegin_ClearsPreviousOutcome(t *testing.T) {
	prev := RunState{RunID: "r1", Deck: deck("a"), Warning: "w", FailedImages: []int{0}}
	s := Begin(prev, "r2")
	assert.Equal(t, RunState{RunID: "r2", Loading: true}, s)

	s = Begin(RunState{RunID: "r1", Error: "x"}, "r2")
	assert.Empty(t, s.Error)
}

func TestSucceed_CarriesWarning(t *testing.T) {
	s := Begin(RunState{}, "r1")
	s = Succeed(s, "r1", &orchestrator.Result{
		Deck:         deck("a", "b", "c"),
		FailedImages: []int{1},
		Warning:      errors.New(errors.ErrCodePartialImages, orchestrator.MessagePartialImages),
	})
	assert.Equal(t, PhaseReady, s.Phase())
	assert.Equal(t, orchestrator.MessagePartialImages, s.Warning)
	assert.Equal(t, []int{1}, s.FailedImages)
	assert.False(t, s.Loading)
}

func TestCompletions_StaleRunsAreDiscarded(t *testing.T) {
	current := Begin(Begin(RunState{}, "old"), "new")

	assert.Equal(t, current, Succeed(current, "old", &orchestrator.Result{Deck: deck("stale")}))
	assert.Equal(t, current, Fail(current, "old", "stale failure"))

	done := Succeed(current, "new", &orchestrator.Result{Deck: deck("fresh")})
	// a late completion after the run settled changes nothing either
	assert.Equal(t, done, Fail(done, "new", "late"))
	assert.Equal(t, "fresh", done.Deck[0].Title)
}

func TestSucceed_EmptyDeckIsReady(t *testing.T) {
	s := Succeed(Begin(RunState{}, "r"), "r", &orchestrator.Result{})
	assert.Equal(t, PhaseReady, s.Phase())
}
