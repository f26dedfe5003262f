package activity

import (
	"context"
	"sync"

	"github.com/secmon-lab/talentbridge/pkg/domain/interfaces"
	"github.com/secmon-lab/talentbridge/pkg/domain/model"
	"github.com/secmon-lab/talentbridge/pkg/utils/logging"
)

// subscriberBuffer is how many events a slow subscriber may lag behind
// before further events are dropped for it
const subscriberBuffer = 16

// Hub fans stage change events out to live subscribers such as SSE streams
type Hub struct {
	mu      sync.Mutex
	clients map[chan *model.StageChangeEvent]struct{}
}

var _ interfaces.ActivityEmitter = &Hub{}

func NewHub() *Hub {
	return &Hub{clients: make(map[chan *model.StageChangeEvent]struct{})}
}

func (h *Hub) Subscribe() chan *model.StageChangeEvent {
	ch := make(chan *model.StageChangeEvent, subscriberBuffer)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) Unsubscribe(ch chan *model.StageChangeEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[ch]; !ok {
		return
	}
	delete(h.clients, ch)
	close(ch)
}

// Subscribers returns the number of live subscribers
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Emit publishes without blocking; a subscriber with a full buffer misses the event
func (h *Hub) Emit(ctx context.Context, event *model.StageChangeEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.clients {
		select {
		case ch <- event:
		default:
			logging.From(ctx).Warn("dropping activity event for slow subscriber", "event_id", event.ID)
		}
	}
}

// Fanout forwards every event to each emitter in order
type Fanout []interfaces.ActivityEmitter

func (f Fanout) Emit(ctx context.Context, event *model.StageChangeEvent) {
	for _, e := range f {
		if e != nil {
			e.Emit(ctx, event)
		}
	}
}
