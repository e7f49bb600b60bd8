// Package session keeps the client's single view of the current backend
// session and fans session changes out to subscribers.
//
// Only backend events write the session. Each subscriber has its own FIFO
// queue drained by its own goroutine, so subscribers see every event in
// backend order and a slow subscriber never holds up the backend or anyone
// else.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/gymrecord/internal/client/backend"
	"github.com/dmitrijs2005/gymrecord/internal/client/models"
	"github.com/dmitrijs2005/gymrecord/internal/logging"
)

var ErrAlreadyStarted = errors.New("session store already started")

type Listener func(change models.SessionChange)

type Store struct {
	auth backend.AuthClient
	log  logging.Logger

	mu       sync.Mutex
	session  *models.Session
	ready    bool
	sawEvent bool
	started  bool
	detach   func()
	subs     map[uint64]*subscriber
	nextID   uint64
}

func NewStore(auth backend.AuthClient, log logging.Logger) *Store {
	return &Store{auth: auth, log: log, subs: make(map[uint64]*subscriber)}
}

// Start attaches to the backend and resolves the startup snapshot. Events
// delivered while the snapshot is being read are newer than it, so the
// snapshot is then discarded. The store is ready afterwards even if the
// snapshot could not be read.
func (s *Store) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.started = true
	s.mu.Unlock()

	detach := s.auth.OnSessionChange(s.onChange)

	snap, err := s.auth.GetSession(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.detach = detach
	if err == nil && !s.sawEvent {
		s.session = snap
	}
	s.markReadyLocked()

	if err != nil {
		s.log.Warn(ctx, "failed to read session snapshot", "error", err)
		return fmt.Errorf("read session snapshot: %w", err)
	}
	return nil
}

// Current is the latest session, nil when signed out or not yet ready.
func (s *Store) Current() *models.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

func (s *Store) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// Subscribe registers listener. It first receives the current session
// (right away if the store is ready, otherwise once it becomes ready) and
// then one call per backend event. The returned func unsubscribes; calling it
// more than once is harmless.
func (s *Store) Subscribe(listener Listener) func() {
	sub := newSubscriber(listener)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = sub
	if s.ready {
		sub.primed = true
		sub.enqueue(models.SessionChange{Event: models.EventInitialSession, Session: s.session})
	}
	s.mu.Unlock()

	go sub.run()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
		sub.stop()
	}
}

// Close detaches from the backend and stops every subscriber.
func (s *Store) Close() {
	s.mu.Lock()
	detach := s.detach
	s.detach = nil
	subs := s.subs
	s.subs = make(map[uint64]*subscriber)
	s.mu.Unlock()

	if detach != nil {
		detach()
	}
	for _, sub := range subs {
		sub.stop()
	}
}

func (s *Store) onChange(change models.SessionChange) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session = change.Session
	s.sawEvent = true
	s.ready = true

	for _, sub := range s.subs {
		sub.primed = true
		sub.enqueue(change)
	}
}

func (s *Store) markReadyLocked() {
	if s.ready {
		return
	}
	s.ready = true
	initial := models.SessionChange{Event: models.EventInitialSession, Session: s.session}
	for _, sub := range s.subs {
		if !sub.primed {
			sub.primed = true
			sub.enqueue(initial)
		}
	}
}
