package handle

import (
	"sync"
	"testing"
)

func TestTableInsertGet(t *testing.T) {
	tb := New[string]()
	a := tb.Insert("a")
	b := tb.Insert("b")
	if a != 1 || b != 2 {
		t.Errorf("Insert() handles = %d, %d, want 1, 2", a, b)
	}
	if v, ok := tb.Get(a); !ok || v != "a" {
		t.Errorf("Get(%d) = %q, %v, want \"a\", true", a, v, ok)
	}
	if _, ok := tb.Get(0); ok {
		t.Error("Get(0) found a value")
	}
	if tb.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tb.Len())
	}
}

func TestTableHandlesNotReused(t *testing.T) {
	tb := New[int]()
	h := tb.Insert(1)
	if _, ok := tb.Delete(h); !ok {
		t.Fatal("Delete() did not find handle")
	}
	if _, ok := tb.Delete(h); ok {
		t.Error("Delete() twice succeeded")
	}
	if next := tb.Insert(2); next == h {
		t.Errorf("Insert() reused handle %d", h)
	}
}

func TestTableReplace(t *testing.T) {
	tb := New[int]()
	h := tb.Insert(1)
	if !tb.Replace(h, 5) {
		t.Fatal("Replace() = false")
	}
	if v, _ := tb.Get(h); v != 5 {
		t.Errorf("Get() = %d, want 5", v)
	}
	if tb.Replace(99, 1) {
		t.Error("Replace(unknown) = true")
	}
}

func TestTableLen(t *testing.T) {
	tb := New[int]()
	for i := 0; i < 5; i++ {
		tb.Insert(i)
	}
	tb.Delete(1)
	tb.Delete(1)
	if tb.Len() != 4 {
		t.Errorf("Len() = %d, want 4", tb.Len())
	}
}

func TestTableConcurrent(t *testing.T) {
	tb := New[int]()
	var wg sync.WaitGroup
	seen := make([]uint64, 100)
	for i := range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seen[i] = tb.Insert(i)
		}()
	}
	wg.Wait()

	unique := make(map[uint64]bool)
	for _, h := range seen {
		if h == 0 || unique[h] {
			t.Fatalf("duplicate or zero handle %d", h)
		}
		unique[h] = true
	}
}

func BenchmarkTableGet(b *testing.B) {
	tb := New[int]()
	h := tb.Insert(42)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tb.Get(h)
	}
}
