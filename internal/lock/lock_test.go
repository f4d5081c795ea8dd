package lock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	k := NewKeyedMutex()
	ctx := context.Background()

	var (
		inside  atomic.Int32
		maxSeen atomic.Int32
		wg      sync.WaitGroup
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := k.Lock(ctx, "slot")
			if err != nil {
				t.Errorf("lock: %v", err)
				return
			}
			n := inside.Add(1)
			if n > maxSeen.Load() {
				maxSeen.Store(n)
			}
			time.Sleep(time.Millisecond)
			inside.Add(-1)
			unlock()
		}()
	}
	wg.Wait()

	if maxSeen.Load() != 1 {
		t.Fatalf("expected at most one holder, saw %d", maxSeen.Load())
	}
	if k.size() != 0 {
		t.Fatalf("expected entries to be cleaned up, got %d", k.size())
	}
}

func TestKeyedMutex_DifferentKeysDoNotBlock(t *testing.T) {
	k := NewKeyedMutex()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	unlockA, err := k.Lock(ctx, "a")
	if err != nil {
		t.Fatalf("lock a: %v", err)
	}
	defer unlockA()

	unlockB, err := k.Lock(ctx, "b")
	if err != nil {
		t.Fatalf("lock b while a is held: %v", err)
	}
	unlockB()
}

func TestKeyedMutex_ContextCancelled(t *testing.T) {
	k := NewKeyedMutex()
	unlock, err := k.Lock(context.Background(), "slot")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := k.Lock(ctx, "slot"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	unlock()
	unlock() // повторный вызов безопасен
	if k.size() != 0 {
		t.Fatalf("expected entries to be cleaned up, got %d", k.size())
	}
}

func TestKeyedRWMutex_WriterExcludesReaders(t *testing.T) {
	k := NewKeyedRWMutex()

	unlock := k.Lock("1/2025-10-28")
	acquired := make(chan struct{})
	go func() {
		runlock := k.RLock("1/2025-10-28")
		close(acquired)
		runlock()
	}()

	select {
	case <-acquired:
		t.Fatalf("reader acquired the key while the writer held it")
	case <-time.After(20 * time.Millisecond):
	}

	unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatalf("reader never acquired the key")
	}

	// Читатели друг другу не мешают.
	r1 := k.RLock("1/2025-10-28")
	r2 := k.RLock("1/2025-10-28")
	r1()
	r2()

	// Освобождение после горутины может быть чуть позже.
	deadline := time.Now().Add(time.Second)
	for k.size() != 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if k.size() != 0 {
		t.Fatalf("expected entries to be cleaned up, got %d", k.size())
	}
}

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewRedisClient(context.Background(), mr.Addr(), "", 0)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisLocker_ExclusiveAndReleased(t *testing.T) {
	mr, client := newMiniredis(t)
	l := NewRedisLocker(client, 5*time.Second, nil)

	unlock, err := l.Lock(context.Background(), "slot:1/2025-10-28/10:00")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	if !mr.Exists(keyPrefix + "slot:1/2025-10-28/10:00") {
		t.Fatalf("expected lock key in redis")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	if _, err := l.Lock(ctx, "slot:1/2025-10-28/10:00"); !errors.Is(err, ErrLockTimeout) {
		t.Fatalf("expected ErrLockTimeout, got %v", err)
	}

	unlock()
	if mr.Exists(keyPrefix + "slot:1/2025-10-28/10:00") {
		t.Fatalf("expected lock key to be deleted on unlock")
	}

	unlock2, err := l.Lock(context.Background(), "slot:1/2025-10-28/10:00")
	if err != nil {
		t.Fatalf("relock: %v", err)
	}
	unlock2()
}

func TestRedisLocker_UnlockDoesNotStealForeignLock(t *testing.T) {
	mr, client := newMiniredis(t)
	core, logs := observer.New(zap.WarnLevel)
	l := NewRedisLocker(client, time.Second, zap.New(core))

	unlock, err := l.Lock(context.Background(), "user:U")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}

	// TTL истёк, ключ перехватил другой держатель.
	mr.FastForward(2 * time.Second)
	if err := mr.Set(keyPrefix+"user:U", "foreign"); err != nil {
		t.Fatalf("set: %v", err)
	}

	unlock()
	got, err := mr.Get(keyPrefix + "user:U")
	if err != nil || got != "foreign" {
		t.Fatalf("foreign lock must survive, got %q (%v)", got, err)
	}
	if n := logs.FilterMessage("redis lock expired before release").Len(); n != 1 {
		t.Fatalf("expired-lock warnings = %d, want 1", n)
	}
}

func TestRedisLocker_LogsReleaseError(t *testing.T) {
	mr, client := newMiniredis(t)
	core, logs := observer.New(zap.WarnLevel)
	l := NewRedisLocker(client, 5*time.Second, zap.New(core))

	unlock, err := l.Lock(context.Background(), "slot:1/2025-10-28/10:00")
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	mr.Close()
	unlock()

	if n := logs.FilterMessage("redis unlock failed").Len(); n != 1 {
		t.Fatalf("unlock errors logged = %d, want 1", n)
	}
}
