package refcache

import (
	"sync"
	"testing"
)

func TestHolderSwapAndSnapshot(t *testing.T) {
	first, err := Build(1, []Sample{testSample("emp-001", "Jana Dvořáková", 0, 0)})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	h := NewHolder(first)
	if got := h.Snapshot(); got != first {
		t.Fatal("expected initial snapshot")
	}

	second, err := Build(2, []Sample{
		testSample("emp-001", "Jana Dvořáková", 0, 0),
		testSample("emp-002", "Petr Malý", 0, 20),
	})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	h.Swap(second)
	if got := h.Snapshot(); got != second {
		t.Error("expected swapped snapshot")
	}
	// The old snapshot stays valid for readers that grabbed it earlier.
	if first.Version() != 1 || first.SampleCount() != 1 {
		t.Error("previous snapshot mutated by swap")
	}
}

func TestHolderNilInitial(t *testing.T) {
	h := NewHolder(nil)
	if got := h.Snapshot(); got != nil {
		t.Errorf("expected nil snapshot, got %v", got)
	}
}

func TestHolderConcurrentReaders(t *testing.T) {
	cache, err := Build(1, []Sample{testSample("emp-001", "Jana Dvořáková", 0, 0)})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	h := NewHolder(cache)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				if s := h.Snapshot(); s == nil {
					t.Error("snapshot became nil")
					return
				}
			}
		}()
	}
	for i := 2; i < 10; i++ {
		next, err := Build(i, []Sample{testSample("emp-001", "Jana Dvořáková", 0, 0)})
		if err != nil {
			t.Fatalf("Build failed: %v", err)
		}
		h.Swap(next)
	}
	wg.Wait()
}
