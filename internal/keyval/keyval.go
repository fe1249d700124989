package keyval

import (
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("key not found")

// Store is the minimal persistence surface shared by every widget: a durable
// backend for production and an in-memory one for tests, swappable without
// touching estimator or aggregator logic.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// Broker wraps a Store and makes every write observable. Signal-driven
// consumers Subscribe and are notified synchronously after each persist;
// polling consumers use Poll with their own staleness tolerance. Both
// converge on the same stored value.
type Broker struct {
	store  Store
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]func(value string)
}

func NewBroker(store Store) *Broker {
	return &Broker{
		store: store,
		subs:  make(map[string]map[int]func(string)),
	}
}

func (b *Broker) Get(key string) (string, error) {
	return b.store.Get(key)
}

// Set persists the value, then notifies subscribers for the key. Persistence
// happens before notification so a listener that re-reads sees the new value.
func (b *Broker) Set(key, value string) error {
	if err := b.store.Set(key, value); err != nil {
		return err
	}
	b.mu.Lock()
	fns := make([]func(string), 0, len(b.subs[key]))
	for _, fn := range b.subs[key] {
		fns = append(fns, fn)
	}
	b.mu.Unlock()
	for _, fn := range fns {
		fn(value)
	}
	return nil
}

// Subscribe registers fn to run on every write to key. The returned cancel
// func removes the subscription and is safe to call more than once.
func (b *Broker) Subscribe(key string, fn func(value string)) (cancel func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	if b.subs[key] == nil {
		b.subs[key] = make(map[int]func(string))
	}
	b.subs[key][id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[key], id)
	}
}

// Poll re-reads key on a fixed interval and hands the result to fn, missing
// keys included (fn receives ErrNotFound). The returned cancel func stops the
// ticker; an in-flight fn call is allowed to finish.
func (b *Broker) Poll(key string, interval time.Duration, fn func(value string, err error)) (cancel func()) {
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				v, err := b.store.Get(key)
				fn(v, err)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(stop) })
	}
}
