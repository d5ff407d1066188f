// Package locks provides in-process mutual exclusion keyed by string.
package locks

import (
	"context"
	"sync"
)

type entry struct {
	// sem holds one token while the key is locked.
	sem  chan struct{}
	refs int
}

// KeyedMutex hands out one mutex per key. Entries are dropped once no goroutine holds or waits on them,
// so the map stays proportional to the number of keys in use.
type KeyedMutex struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{entries: make(map[string]*entry)}
}

// LockContext blocks until key is held or ctx is done. On success it returns
// the matching unlock func; on cancellation it returns ctx.Err() and holds nothing.
func (k *KeyedMutex) LockContext(ctx context.Context, key string) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e := k.acquireRef(key)

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		k.releaseRef(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.sem
			k.releaseRef(key, e)
		})
	}, nil
}

func (k *KeyedMutex) acquireRef(key string) *entry {
	k.mu.Lock()
	defer k.mu.Unlock()
	e, ok := k.entries[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		k.entries[key] = e
	}
	e.refs++
	return e
}

func (k *KeyedMutex) releaseRef(key string, e *entry) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(k.entries, key)
	}
}

// size returns the number of keys currently held or awaited.
func (k *KeyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}
