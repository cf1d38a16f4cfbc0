// Package session keeps one form controller per browser.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/saqibullah/diabetes-prediction-form/form"
	"github.com/saqibullah/diabetes-prediction-form/logger"
	"github.com/saqibullah/diabetes-prediction-form/metrics"
)

type entry struct {
	ctrl     *form.Controller
	lastSeen time.Time
}

// Store holds controllers in memory. Nothing survives a restart.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry
	newCtrl  func() *form.Controller
	idle     time.Duration
	now      func() time.Time
	log      logger.Logger
	rec      metrics.Recorder
}

// NewStore creates a store building controllers with newCtrl. Sessions idle
// longer than idle are evicted by Sweep; zero keeps them forever.
func NewStore(newCtrl func() *form.Controller, idle time.Duration, log logger.Logger, rec metrics.Recorder) *Store {
	if log == nil {
		log = logger.NopLogger{}
	}
	if rec == nil {
		rec = metrics.NopRecorder{}
	}
	return &Store{
		sessions: make(map[string]*entry),
		newCtrl:  newCtrl,
		idle:     idle,
		now:      time.Now,
		log:      log,
		rec:      rec,
	}
}

// Create starts a new session.
func (s *Store) Create() (string, *form.Controller) {
	id := uuid.NewString()
	ctrl := s.newCtrl()
	s.mu.Lock()
	s.sessions[id] = &entry{ctrl: ctrl, lastSeen: s.now()}
	n := len(s.sessions)
	s.mu.Unlock()
	s.rec.SetActiveSessions(n)
	return id, ctrl
}

// Get returns the controller of session id and marks it as seen.
func (s *Store) Get(id string) (*form.Controller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = s.now()
	return e.ctrl, true
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep evicts sessions idle for longer than the idle timeout at now and
// returns how many were removed.
func (s *Store) Sweep(now time.Time) int {
	if s.idle <= 0 {
		return 0
	}
	s.mu.Lock()
	removed := 0
	for id, e := range s.sessions {
		if now.Sub(e.lastSeen) > s.idle {
			delete(s.sessions, id)
			removed++
		}
	}
	n := len(s.sessions)
	s.mu.Unlock()
	if removed > 0 {
		s.log.Debugw("evicted idle sessions", map[string]any{"removed": removed, "remaining": n})
	}
	s.rec.SetActiveSessions(n)
	return removed
}

// Run sweeps every interval until ctx is cancelled.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 || s.idle <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(s.now())
		}
	}
}
