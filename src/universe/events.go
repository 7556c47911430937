package universe

import (
	"sync"

	"github.com/google/uuid"
)

//ChangeEvent tells that the cell at Row, Col took State in Generation
type ChangeEvent struct {
	Row        int
	Col        int
	State      State
	Generation uint64
}

//ChangeHandler receives change events in commit order
//handlers may read, mutate and step the grid; events caused by a handler are delivered after the current batch,
//and while a batch is being dispatched other callers leave their events to the dispatching goroutine
type ChangeHandler func(ChangeEvent)

//Subscription identifies a registered ChangeHandler
type Subscription struct {
	ID  uuid.UUID
	bus *changeBus
}

//Cancel detaches the handler, it is safe to call more than once and from the handler itself
func (s Subscription) Cancel() {
	if s.bus != nil {
		s.bus.remove(s.ID)
	}
}

type subscriber struct {
	id uuid.UUID
	fn ChangeHandler
}

//changeBus fans events out to every subscriber in subscription order
type changeBus struct {
	mu   sync.RWMutex
	subs []subscriber
}

func (b *changeBus) add(fn ChangeHandler) Subscription {
	s := subscriber{id: uuid.New(), fn: fn}
	b.mu.Lock()
	b.subs = append(b.subs, s)
	b.mu.Unlock()
	return Subscription{ID: s.id, bus: b}
}

func (b *changeBus) remove(id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

func (b *changeBus) len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *changeBus) dispatch(events []ChangeEvent) {
	if len(events) == 0 {
		return
	}
	b.mu.RLock()
	subs := append([]subscriber(nil), b.subs...)
	b.mu.RUnlock()
	for _, e := range events {
		for _, s := range subs {
			s.fn(e)
		}
	}
}
