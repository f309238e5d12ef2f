package services

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestOrderLockerSerializesSameOrder(t *testing.T) {
	locker := NewOrderLocker(nil)

	var inCritical bool
	var overlaps int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locker.Lock(context.Background(), 42)
			if err != nil {
				t.Errorf("lock: %v", err)
				return
			}
			defer release()

			mu.Lock()
			if inCritical {
				overlaps++
			}
			inCritical = true
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inCritical = false
			mu.Unlock()
		}()
	}
	wg.Wait()

	if overlaps != 0 {
		t.Errorf("critical section entered concurrently %d times", overlaps)
	}
}

func TestOrderLockerEvictsReleasedEntries(t *testing.T) {
	locker := NewOrderLocker(nil)

	entries := func() int {
		locker.mu.Lock()
		defer locker.mu.Unlock()
		return len(locker.local)
	}

	release, err := locker.Lock(context.Background(), 7)
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	if entries() != 1 {
		t.Fatalf("entries = %d while held, want 1", entries())
	}

	release()
	if entries() != 0 {
		t.Errorf("entries = %d after release, want 0", entries())
	}

	// Contended locks evict too once the last holder is done.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locker.Lock(context.Background(), 9)
			if err != nil {
				t.Errorf("lock: %v", err)
				return
			}
			release()
		}()
	}
	wg.Wait()
	if entries() != 0 {
		t.Errorf("entries = %d after contended releases, want 0", entries())
	}
}

func TestOrderLockerIndependentOrders(t *testing.T) {
	locker := NewOrderLocker(nil)

	release1, err := locker.Lock(context.Background(), 1)
	if err != nil {
		t.Fatalf("lock order 1: %v", err)
	}
	defer release1()

	// Holding order 1 must not block order 2.
	done := make(chan struct{})
	go func() {
		release2, err := locker.Lock(context.Background(), 2)
		if err == nil {
			release2()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on an unrelated order blocked")
	}
}
