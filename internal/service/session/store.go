package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ChaseRain/carouselgen/internal/infra/logger"
	"github.com/ChaseRain/carouselgen/pkg/errors"
)

const MessageSessionNotFound = "Sessão não encontrada."

// Store keeps the live sessions in memory. Sessions idle for longer than the
// TTL are dropped by Sweep.
type Store struct {
	gen    Generator
	ttl    time.Duration
	logger *logger.Logger
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*Controller
}

func NewStore(gen Generator, ttl time.Duration, log *logger.Logger) *Store {
	return &Store{
		gen:      gen,
		ttl:      ttl,
		logger:   log,
		now:      time.Now,
		sessions: make(map[string]*Controller),
	}
}

func (s *Store) Create() *Controller {
	c := newController(uuid.NewString(), s.gen, s.logger, s.now)

	s.mu.Lock()
	s.sessions[c.id] = c
	s.mu.Unlock()

	s.logger.Debug("session created", "session_id", c.id)
	return c
}

func (s *Store) Get(id string) (*Controller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.sessions[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, MessageSessionNotFound)
	}
	return c, nil
}

// GetOrCreate returns the session id names, or a fresh one when it is unknown.
func (s *Store) GetOrCreate(id string) *Controller {
	if id != "" {
		if c, err := s.Get(id); err == nil {
			return c
		}
	}
	return s.Create()
}

// Sweep drops idle sessions and returns how many were removed. Sessions in
// the middle of a run or an export are kept.
func (s *Store) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, c := range s.sessions {
		if last, ok := c.idleSince(); ok && last.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Info("expired idle sessions", "removed", removed, "remaining", len(s.sessions))
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
