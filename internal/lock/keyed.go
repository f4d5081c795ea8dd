package lock

import (
	"context"
	"sync"
)

// Locker выдаёт эксклюзивную блокировку по строковому ключу.
// unlock нужно вызвать ровно один раз.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

type semEntry struct {
	ch   chan struct{}
	refs int
}

// KeyedMutex - Locker в пределах процесса. Записи по ключу удаляются,
// когда их никто не держит и не ждёт.
type KeyedMutex struct {
	mu      sync.Mutex
	entries map[string]*semEntry
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{entries: make(map[string]*semEntry)}
}

func (k *KeyedMutex) Lock(ctx context.Context, key string) (func(), error) {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &semEntry{ch: make(chan struct{}, 1)}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		k.release(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			k.release(key, e)
		})
	}, nil
}

func (k *KeyedMutex) release(key string, e *semEntry) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(k.entries, key)
	}
}

// size: число живых ключей (для тестов).
func (k *KeyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}

type rwEntry struct {
	mu   sync.RWMutex
	refs int
}

// KeyedRWMutex - RW-блокировка по ключу в пределах процесса.
type KeyedRWMutex struct {
	mu      sync.Mutex
	entries map[string]*rwEntry
}

func NewKeyedRWMutex() *KeyedRWMutex {
	return &KeyedRWMutex{entries: make(map[string]*rwEntry)}
}

func (k *KeyedRWMutex) acquire(key string) *rwEntry {
	k.mu.Lock()
	defer k.mu.Unlock()
	e, ok := k.entries[key]
	if !ok {
		e = &rwEntry{}
		k.entries[key] = e
	}
	e.refs++
	return e
}

func (k *KeyedRWMutex) release(key string, e *rwEntry) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(k.entries, key)
	}
}

// Lock берёт ключ на запись и возвращает функцию освобождения.
func (k *KeyedRWMutex) Lock(key string) func() {
	e := k.acquire(key)
	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.release(key, e)
	}
}

// RLock берёт ключ на чтение.
func (k *KeyedRWMutex) RLock(key string) func() {
	e := k.acquire(key)
	e.mu.RLock()
	return func() {
		e.mu.RUnlock()
		k.release(key, e)
	}
}

func (k *KeyedRWMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}
