// Package observe holds a small synchronous observer list.
package observe

import "sync"

type entry[T any] struct {
	id       int
	callback func(T)
}

// Observers notifies subscribers synchronously, in subscription order, on the
// goroutine that calls Notify.
type Observers[T any] struct {
	mu      sync.RWMutex
	entries []entry[T]
	nextID  int
}

// Subscribe registers callback and returns a function that removes it.
func (o *Observers[T]) Subscribe(callback func(T)) func() {
	o.mu.Lock()
	o.nextID++
	id := o.nextID
	o.entries = append(o.entries, entry[T]{id: id, callback: callback})
	o.mu.Unlock()

	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		for i, e := range o.entries {
			if e.id == id {
				o.entries = append(o.entries[:i], o.entries[i+1:]...)
				break
			}
		}
	}
}

// Notify calls every subscriber in registration order.
func (o *Observers[T]) Notify(value T) {
	o.mu.RLock()
	callbacks := make([]entry[T], len(o.entries))
	copy(callbacks, o.entries)
	o.mu.RUnlock()

	for _, e := range callbacks {
		e.callback(value)
	}
}

func (o *Observers[T]) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.entries)
}
