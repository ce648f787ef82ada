package session

import (
	"github.com/ChaseRain/carouselgen/internal/carousel"
	"github.com/ChaseRain/carouselgen/internal/service/orchestrator"
)

type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseReady   Phase = "ready"
	PhaseFailed  Phase = "failed"
)

// RunState is the result area of one session. Transitions go through Begin,
// Succeed and Fail only.
type RunState struct {
	RunID   string
	Deck    carousel.Deck
	Loading bool
	Error   string
	Warning string
	// FailedImages holds the 0-based positions whose image is missing.
	FailedImages []int
}

func (s RunState) Phase() Phase {
	switch {
	case s.Loading:
		return PhaseLoading
	case s.Error != "":
		return PhaseFailed
	case s.Deck != nil:
		return PhaseReady
	default:
		return PhaseIdle
	}
}

// Begin starts run runID, dropping the previous deck, error and warning.
func Begin(_ RunState, runID string) RunState {
	return RunState{RunID: runID, Loading: true}
}

// Succeed applies the result of run runID. Completions of any other run are stale
// and leave s unchanged.
func Succeed(s RunState, runID string, res *orchestrator.Result) RunState {
	if !s.Loading || s.RunID != runID || res == nil {
		return s
	}
	next := RunState{RunID: runID, Deck: res.Deck}
	if next.Deck == nil {
		next.Deck = carousel.Deck{}
	}
	if res.Warning != nil {
		next.Warning = res.Warning.Message
		next.FailedImages = res.FailedImages
	}
	return next
}

// Fail records a fatal outcome of run runID, with the same staleness rule as Succeed.
func Fail(s RunState, runID, message string) RunState {
	if !s.Loading || s.RunID != runID {
		return s
	}
	return RunState{RunID: runID, Error: message}
}
