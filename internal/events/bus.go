package events

import "sync"

// Bus fans simulator events out to subscribers, one channel per
// subscription. Publishing never blocks the engine: a subscriber that falls
// behind loses messages instead of stalling a tick.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[Event]map[int]chan any
}

func NewBus() *Bus {
	return &Bus{subs: make(map[Event]map[int]chan any)}
}

// Subscribe registers a buffered listener for one event topic. The returned
// function cancels the subscription and closes the channel; calling it more
// than once is safe.
func (b *Bus) Subscribe(e Event, buffer int) (<-chan any, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs[e] == nil {
		b.subs[e] = make(map[int]chan any)
	}
	id := b.nextID
	b.nextID++
	ch := make(chan any, buffer)
	b.subs[e][id] = ch

	var once sync.Once
	unsub := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs[e], id)
			close(ch)
		})
	}
	return ch, unsub
}

// Publish delivers the payload to every subscriber of the event. A full
// buffer drops the message rather than blocking the publisher.
func (b *Bus) Publish(e Event, payload any) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs[e] {
		select {
		case ch <- payload:
		default:
		}
	}
}
