package session

import (
	"sync"

	"github.com/dmitrijs2005/gymrecord/internal/client/models"
)

type subscriber struct {
	fn Listener
	// primed is guarded by Store.mu.
	primed bool

	mu    sync.Mutex
	queue []models.SessionChange

	wake chan struct{}
	done chan struct{}
	once sync.Once
}

func newSubscriber(fn Listener) *subscriber {
	return &subscriber{
		fn:   fn,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

func (s *subscriber) enqueue(c models.SessionChange) {
	s.mu.Lock()
	s.queue = append(s.queue, c)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *subscriber) stop() {
	s.once.Do(func() { close(s.done) })
}

func (s *subscriber) next() (models.SessionChange, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return models.SessionChange{}, false
	}
	c := s.queue[0]
	s.queue[0] = models.SessionChange{}
	s.queue = s.queue[1:]
	return c, true
}

func (s *subscriber) run() {
	for {
		select {
		case <-s.done:
			return
		case <-s.wake:
		}

		for {
			select {
			case <-s.done:
				return
			default:
			}
			c, ok := s.next()
			if !ok {
				break
			}
			s.fn(c)
		}
	}
}
