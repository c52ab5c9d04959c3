package services

import (
	"sort"
	"sync"
)

// KeyedLocker serializes work on logical keys such as "invoice:<id>" and "org:<id>".
// Keys are deduplicated and taken in sorted order, so two callers can never
// hold parts of each other's key sets.
type KeyedLocker struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

// NewKeyedLocker returns an empty locker.
func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{locks: make(map[string]*keyedLock)}
}

// Lock blocks until every key is held and returns the function that releases them.
func (l *KeyedLocker) Lock(keys ...string) (unlock func()) {
	ordered := dedupeSorted(keys)

	held := make([]*keyedLock, 0, len(ordered))
	for _, key := range ordered {
		kl := l.acquireRef(key)
		kl.mu.Lock()
		held = append(held, kl)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			for i := len(held) - 1; i >= 0; i-- {
				held[i].mu.Unlock()
				l.releaseRef(ordered[i])
			}
		})
	}
}

func (l *KeyedLocker) acquireRef(key string) *keyedLock {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyedLock{}
		l.locks[key] = kl
	}
	kl.refs++
	return kl
}

func (l *KeyedLocker) releaseRef(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl := l.locks[key]
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
}

// size reports how many keys are currently tracked.
func (l *KeyedLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

func dedupeSorted(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func invoiceKey(id string) string { return "invoice:" + id }
func orgKey(id string) string     { return "org:" + id }
