package id

import (
	"strings"
	"sync"
	"testing"
)

func TestSequenceGenerator_UniqueUnderConcurrency(t *testing.T) {
	t.Parallel()

	gen := NewSequenceGenerator("match")
	const workers = 16
	ids := make(chan string, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			value, _ := gen.NewID()
			ids <- value
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]struct{}, workers)
	for value := range ids {
		if !strings.HasPrefix(value, "match-") {
			t.Fatalf("expected match- prefix, got=%s", value)
		}
		if _, dup := seen[value]; dup {
			t.Fatalf("duplicate id %s", value)
		}
		seen[value] = struct{}{}
	}
}

func TestUUIDGenerator_IsTimeOrdered(t *testing.T) {
	t.Parallel()

	gen := NewUUIDGenerator()
	first, err := gen.NewID()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	second, _ := gen.NewID()
	if len(first) != 36 || first >= second {
		t.Fatalf("expected ordered uuids, got=%s then %s", first, second)
	}
}
