package httpapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/dw-flyingw/the-gold-monkey-sub001/internal/playback"
	"github.com/dw-flyingw/the-gold-monkey-sub001/internal/protocol"
)

// eventHub fans playback events out to websocket subscribers. Slow clients
// are never allowed to stall the playback worker: sends are non-blocking
// and events are dropped when a subscriber's buffer is full.
type eventHub struct {
	mu   sync.Mutex
	subs map[chan protocol.PlaybackEvent]struct{}
}

func newEventHub() *eventHub {
	return &eventHub{subs: make(map[chan protocol.PlaybackEvent]struct{})}
}

func (h *eventHub) subscribe() chan protocol.PlaybackEvent {
	ch := make(chan protocol.PlaybackEvent, 32)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *eventHub) unsubscribe(ch chan protocol.PlaybackEvent) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
}

func (h *eventHub) broadcast(event protocol.PlaybackEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- event:
		default:
			// Subscriber is behind; drop rather than block the worker.
		}
	}
}

func (h *eventHub) broadcastFlush() {
	h.broadcast(protocol.PlaybackEvent{
		Type: protocol.TypeQueueFlushed,
		TSMs: time.Now().UnixMilli(),
	})
}

// ItemStarted implements playback.Listener.
func (s *Server) ItemStarted(item *playback.Item) {
	s.hub.broadcast(protocol.PlaybackEvent{
		Type:  protocol.TypePlaybackStarted,
		Kind:  string(item.Kind),
		Label: item.Label(),
		TSMs:  time.Now().UnixMilli(),
	})
}

// ItemFinished implements playback.Listener.
func (s *Server) ItemFinished(item *playback.Item, err error) {
	event := protocol.PlaybackEvent{
		Type:  protocol.TypePlaybackFinished,
		Kind:  string(item.Kind),
		Label: item.Label(),
		TSMs:  time.Now().UnixMilli(),
	}
	if err != nil {
		event.Error = err.Error()
	}
	s.hub.broadcast(event)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	events := s.hub.subscribe()
	defer s.hub.unsubscribe(events)

	// Reader goroutine only watches for the client going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case event := <-events:
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		}
	}
}
