package service

import (
	"errors"
	"sync"

	"github.com/benbeisheim/minichess-backend/internal/ws"
	"github.com/rs/zerolog"
)

// outboxSize bounds the messages queued for one subscriber. A subscriber that
// falls further behind is dropped.
const outboxSize = 16

var ErrSubscriberBehind = errors.New("subscriber is too far behind")

// Subscriber receives state updates for one game. *websocket.Conn satisfies it.
type Subscriber interface {
	WriteJSON(v interface{}) error
	Close() error
}

// subscription owns the writer goroutine of one subscriber. Messages are
// queued in order and written outside any game lock.
type subscription struct {
	clientID string
	sub      Subscriber
	out      chan ws.Message
	stopOnce sync.Once
}

func (s *subscription) stop() {
	s.stopOnce.Do(func() {
		close(s.out)
	})
}

// hub holds the state feed subscribers of a single game.
type hub struct {
	subs map[string]*subscription // clientID -> subscription
	mu   sync.RWMutex
	log  zerolog.Logger
}

func newHub(log zerolog.Logger) *hub {
	return &hub{
		subs: make(map[string]*subscription),
		log:  log,
	}
}

// register adds sub under clientID. An existing subscriber with the same id is
// replaced; its queue is flushed and it is closed.
func (h *hub) register(clientID string, sub Subscriber) {
	s := &subscription{
		clientID: clientID,
		sub:      sub,
		out:      make(chan ws.Message, outboxSize),
	}

	h.mu.Lock()
	old, exists := h.subs[clientID]
	h.subs[clientID] = s
	if exists {
		old.stop()
	}
	h.mu.Unlock()

	if exists {
		h.log.Debug().Str("client", clientID).Msg("replacing subscriber")
	}
	go h.pump(s)
}

// pump writes queued messages until the subscription stops or a write fails,
// then closes the subscriber.
func (h *hub) pump(s *subscription) {
	for msg := range s.out {
		if err := s.sub.WriteJSON(msg); err != nil {
			h.log.Warn().Err(err).Str("client", s.clientID).Msg("dropping subscriber")
			h.remove(s)
			break
		}
	}
	if err := s.sub.Close(); err != nil {
		h.log.Debug().Err(err).Str("client", s.clientID).Msg("closing subscriber")
	}
}

// unregister removes clientID only if sub is still the registered subscriber.
func (h *hub) unregister(clientID string, sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if current, ok := h.subs[clientID]; ok && current.sub == sub {
		delete(h.subs, clientID)
		current.stop()
	}
}

func (h *hub) remove(s *subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if current, ok := h.subs[s.clientID]; ok && current == s {
		delete(h.subs, s.clientID)
	}
	s.stop()
}

func (h *hub) size() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// enqueue must be called with h.mu held.
func (h *hub) enqueue(s *subscription, msg ws.Message) bool {
	select {
	case s.out <- msg:
		return true
	default:
		return false
	}
}

// send queues msg for one subscriber.
func (h *hub) send(clientID string, msg ws.Message) error {
	h.mu.RLock()
	s, ok := h.subs[clientID]
	queued := ok && h.enqueue(s, msg)
	h.mu.RUnlock()

	if ok && !queued {
		h.log.Warn().Str("client", clientID).Msg("subscriber queue full")
		h.remove(s)
		return ErrSubscriberBehind
	}
	return nil
}

// broadcast queues msg for every subscriber. Callers hold the game lock, so
// each subscriber sees updates in order. Subscribers with a full queue are
// dropped.
func (h *hub) broadcast(msg ws.Message) {
	var behind []*subscription
	h.mu.RLock()
	for _, s := range h.subs {
		if !h.enqueue(s, msg) {
			behind = append(behind, s)
		}
	}
	h.mu.RUnlock()

	for _, s := range behind {
		h.log.Warn().Str("client", s.clientID).Msg("subscriber queue full")
		h.remove(s)
	}
}

// closeAll notifies and stops every subscriber, leaving the hub empty.
func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for clientID, s := range h.subs {
		h.enqueue(s, ws.Message{Type: ws.MessageTypeClosed})
		s.stop()
		delete(h.subs, clientID)
	}
}
