package client

import (
	"slices"
	"sync"

	"github.com/dmitrijs2005/til/internal/client/models"
)

type authEvent struct {
	kind    models.AuthEvent
	session *models.Session
	target  int // 0 means every listener
}

// broadcaster fans auth events out to listeners from a single goroutine,
// so every listener observes events in emission order.
type broadcaster struct {
	mu        sync.Mutex
	nextID    int
	listeners map[int]AuthListener
	queue     []authEvent
	wake      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func newBroadcaster() *broadcaster {
	b := &broadcaster{
		listeners: make(map[int]AuthListener),
		wake:      make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
	go b.run()
	return b
}

type subscription struct {
	b  *broadcaster
	id int
}

func (s *subscription) Unsubscribe() {
	s.b.mu.Lock()
	delete(s.b.listeners, s.id)
	s.b.mu.Unlock()
}

func (b *broadcaster) subscribe(fn AuthListener, initial *models.Session) Subscription {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.listeners[id] = fn
	b.queue = append(b.queue, authEvent{kind: models.AuthInitialSession, session: initial, target: id})
	b.mu.Unlock()

	b.signal()
	return &subscription{b: b, id: id}
}

func (b *broadcaster) emit(kind models.AuthEvent, s *models.Session) {
	b.mu.Lock()
	b.queue = append(b.queue, authEvent{kind: kind, session: s})
	b.mu.Unlock()

	b.signal()
}

func (b *broadcaster) signal() {
	select {
	case b.wake <- struct{}{}:
	default:
	}
}

func (b *broadcaster) close() {
	b.closeOnce.Do(func() { close(b.done) })
}

func (b *broadcaster) run() {
	for {
		select {
		case <-b.done:
			return
		case <-b.wake:
		}

		for {
			b.mu.Lock()
			if len(b.queue) == 0 {
				b.mu.Unlock()
				break
			}
			ev := b.queue[0]
			b.queue = b.queue[1:]

			var targets []AuthListener
			if ev.target != 0 {
				if fn, ok := b.listeners[ev.target]; ok {
					targets = append(targets, fn)
				}
			} else {
				ids := make([]int, 0, len(b.listeners))
				for id := range b.listeners {
					ids = append(ids, id)
				}
				slices.Sort(ids)
				for _, id := range ids {
					targets = append(targets, b.listeners[id])
				}
			}
			b.mu.Unlock()

			for _, fn := range targets {
				fn(ev.kind, ev.session.Clone())
			}
		}
	}
}
