package ring

import (
	"fmt"
	"sync"
	"testing"
)

func TestNewBufferEmpty(t *testing.T) {
	b := New[string](10)
	if b.Len() != 0 {
		t.Errorf("expected 0 entries, got %d", b.Len())
	}
	if b.Cap() != 10 {
		t.Errorf("expected capacity 10, got %d", b.Cap())
	}
	if New[string](0).Cap() != 1 {
		t.Error("expected capacity below one to be raised to one")
	}
}

func TestAddEvictsOldest(t *testing.T) {
	b := New[string](3)
	for i := 0; i < 5; i++ {
		b.Add("/" + string(rune('a'+i)))
	}

	entries := b.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	want := []string{"/c", "/d", "/e"}
	for i := range want {
		if entries[i] != want[i] {
			t.Errorf("entry %d: expected %s, got %s", i, want[i], entries[i])
		}
	}
}

func TestEntriesReturnsCopy(t *testing.T) {
	b := New[string](4)
	b.Add("orig")

	entries := b.Entries()
	entries[0] = "mutated"

	if b.Entries()[0] != "orig" {
		t.Error("Entries did not return a copy; mutation leaked")
	}
}

func TestFilterKeepsOrder(t *testing.T) {
	b := New[int](5)
	for i := 1; i <= 8; i++ {
		b.Add(i)
	}
	even := b.Filter(func(v int) bool { return v%2 == 0 })
	if fmt.Sprint(even) != "[4 6 8]" {
		t.Errorf("expected [4 6 8], got %v", even)
	}
}

func TestLoadTruncatesToNewest(t *testing.T) {
	b := New[int](3)
	b.Add(99)
	b.Load([]int{1, 2, 3, 4, 5})
	if fmt.Sprint(b.Entries()) != "[3 4 5]" {
		t.Errorf("expected [3 4 5], got %v", b.Entries())
	}
	b.Add(6)
	if fmt.Sprint(b.Entries()) != "[4 5 6]" {
		t.Errorf("expected [4 5 6], got %v", b.Entries())
	}
}

func TestClear(t *testing.T) {
	b := New[int](3)
	b.Add(1)
	b.Clear()
	if b.Len() != 0 {
		t.Errorf("expected 0 entries after clear, got %d", b.Len())
	}
}

func TestConcurrentAdd(t *testing.T) {
	b := New[int](50)
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b.Add(i)
			b.Entries()
		}(i)
	}
	wg.Wait()
	if b.Len() != 50 {
		t.Errorf("expected 50 retained entries, got %d", b.Len())
	}
}
