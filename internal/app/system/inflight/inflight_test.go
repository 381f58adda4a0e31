// internal/app/system/inflight/inflight_test.go
package inflight

import (
	"sync"
	"testing"
)

func TestGuardRejectsSecondBegin(t *testing.T) {
	g := NewGuard()

	done, ok := g.Begin("signin:user@example.com")
	if !ok {
		t.Fatal("first Begin should succeed")
	}
	if _, ok := g.Begin("signin:user@example.com"); ok {
		t.Fatal("second Begin for same key should be rejected")
	}
	if !g.Active("signin:user@example.com") {
		t.Fatal("key should be active before done")
	}

	done()

	if g.Active("signin:user@example.com") {
		t.Fatal("key should be released after done")
	}
	if _, ok := g.Begin("signin:user@example.com"); !ok {
		t.Fatal("Begin should succeed again after release")
	}
}

func TestGuardKeysAreIndependent(t *testing.T) {
	g := NewGuard()
	if _, ok := g.Begin("a"); !ok {
		t.Fatal("Begin(a) should succeed")
	}
	if _, ok := g.Begin("b"); !ok {
		t.Fatal("Begin(b) should succeed while a is active")
	}
}

func TestGuardConcurrentSingleWinner(t *testing.T) {
	g := NewGuard()

	const n = 50
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := g.Begin("k"); ok {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if winners != 1 {
		t.Fatalf("expected exactly one winner, got %d", winners)
	}
}
