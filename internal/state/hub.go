package state

import "sync"

// Slice names the store that published an event.
type Slice string

const (
	SliceAuth      Slice = "auth"
	SliceProfile   Slice = "profile"
	SliceWallet    Slice = "wallet"
	SliceCommunity Slice = "community"
)

// Phase is the lifecycle step an action reached.
type Phase int

const (
	PhasePending Phase = iota
	PhaseFulfilled
	PhaseRejected
	PhaseCanceled
	// PhaseLocal marks synchronous transitions such as logout or filter changes.
	PhaseLocal
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseFulfilled:
		return "fulfilled"
	case PhaseRejected:
		return "rejected"
	case PhaseCanceled:
		return "canceled"
	case PhaseLocal:
		return "local"
	default:
		return "unknown"
	}
}

// Event is published after a store transition has been applied. Listeners
// read the new state through the store's Snapshot.
type Event struct {
	Slice  Slice
	Action string
	Phase  Phase
	Error  string
}

type subscriber struct {
	id int
	fn func(Event)
}

// Hub fans store events out to subscribers. Listeners run synchronously on
// the publishing goroutine, in subscription order, with no store lock held.
type Hub struct {
	mu          sync.Mutex
	nextId      int
	subscribers []subscriber
}

func NewHub() *Hub {
	return &Hub{}
}

// Subscribe registers fn and returns a function that removes it.
func (h *Hub) Subscribe(fn func(Event)) func() {
	h.mu.Lock()
	h.nextId++
	id := h.nextId
	h.subscribers = append(h.subscribers, subscriber{id: id, fn: fn})
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			for i, s := range h.subscribers {
				if s.id == id {
					h.subscribers = append(h.subscribers[:i:i], h.subscribers[i+1:]...)
					return
				}
			}
		})
	}
}

func (h *Hub) publish(ev Event) {
	h.mu.Lock()
	subs := make([]subscriber, len(h.subscribers))
	copy(subs, h.subscribers)
	h.mu.Unlock()

	for _, s := range subs {
		s.fn(ev)
	}
}
