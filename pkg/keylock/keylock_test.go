package keylock_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"orderflow/pkg/keylock"

	"github.com/stretchr/testify/assert"
)

func TestManager_SerializesSameKey(t *testing.T) {
	m := keylock.New()

	// Without mutual exclusion the unsynchronized counter updates would
	// race; with it, every increment survives.
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.WithLock("same-key", func() error {
				counter++
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
}

func TestManager_ExclusionWithinKey(t *testing.T) {
	m := keylock.New()

	inCritical := 0
	maxInCritical := 0
	var observe sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.WithLock("k", func() error {
				observe.Lock()
				inCritical++
				if inCritical > maxInCritical {
					maxInCritical = inCritical
				}
				observe.Unlock()

				time.Sleep(time.Millisecond)

				observe.Lock()
				inCritical--
				observe.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInCritical, "two operations held the same key at once")
}

func TestManager_DistinctKeysDoNotBlock(t *testing.T) {
	m := keylock.New()

	// Hold key A, then take key B from another goroutine. If distinct keys
	// shared a lock, this would deadlock the test.
	aHeld := make(chan struct{})
	releaseA := make(chan struct{})
	go func() {
		_ = m.WithLock("a", func() error {
			close(aHeld)
			<-releaseA
			return nil
		})
	}()
	<-aHeld

	done := make(chan struct{})
	go func() {
		_ = m.WithLock("b", func() error { return nil })
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("lock for key b blocked behind key a")
	}
	close(releaseA)
}

func TestManager_PassesThroughError(t *testing.T) {
	m := keylock.New()

	wantErr := errors.New("operation failed")
	err := m.WithLock("k", func() error { return wantErr })
	assert.ErrorIs(t, err, wantErr)

	// The key must be usable again after a failed operation.
	err = m.WithLock("k", func() error { return nil })
	assert.NoError(t, err)
}

func TestManager_EvictsIdleKeys(t *testing.T) {
	m := keylock.New()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := string(rune('a' + n%26))
			_ = m.WithLock(key, func() error { return nil })
		}(i)
	}
	wg.Wait()

	// Every critical section has exited, so no key may linger in the map.
	assert.Equal(t, 0, m.Len())
}
