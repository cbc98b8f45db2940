package dispatch

import (
	"sync"
)

// Signal is a named event channel. Slots are invoked in registration order.
// Connect and Emit are safe to call from any goroutine; slots connected with
// Connect run on the emitting goroutine.
type Signal[T any] struct {
	mu     sync.Mutex
	slots  []slot[T]
	nextID uint64
}

type slot[T any] struct {
	id uint64
	fn func(T)
}

// Connection is the handle returned when a slot is registered.
type Connection struct {
	disconnect func()
}

// Disconnect removes the slot. Calling it more than once is harmless.
func (c Connection) Disconnect() {
	if c.disconnect != nil {
		c.disconnect()
	}
}

// NewSignal creates an empty signal
func NewSignal[T any]() *Signal[T] {
	return &Signal[T]{}
}

// Connect registers fn to be called synchronously on every Emit.
func (s *Signal[T]) Connect(fn func(T)) Connection {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.slots = append(s.slots, slot[T]{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return Connection{disconnect: func() {
		once.Do(func() { s.remove(id) })
	}}
}

// ConnectQueued registers fn to be delivered through q instead of on the
// emitting goroutine. A value emitted before Disconnect is still delivered
// even if the slot is disconnected before q runs it.
func (s *Signal[T]) ConnectQueued(q *Queue, fn func(T)) Connection {
	return s.Connect(func(v T) {
		q.Post(func() { fn(v) })
	})
}

// Emit delivers v to every connected slot.
func (s *Signal[T]) Emit(v T) {
	s.mu.Lock()
	slots := make([]slot[T], len(s.slots))
	copy(slots, s.slots)
	s.mu.Unlock()

	for _, sl := range slots {
		sl.fn(v)
	}
}

// Len returns the number of connected slots
func (s *Signal[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots)
}

// DisconnectAll drops every slot.
func (s *Signal[T]) DisconnectAll() {
	s.mu.Lock()
	s.slots = nil
	s.mu.Unlock()
}

func (s *Signal[T]) remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sl := range s.slots {
		if sl.id == id {
			s.slots = append(s.slots[:i:i], s.slots[i+1:]...)
			return
		}
	}
}
