package scheduler

import "testing"

func TestSeenMapGetSet(t *testing.T) {
	m := newSeenMap()
	if _, ok := m.Get("a"); ok {
		t.Fatal("expected miss on empty map")
	}
	m.Set("a", 100)
	v, ok := m.Get("a")
	if !ok || v != 100 {
		t.Fatalf("Get(a) = %d, %v; want 100, true", v, ok)
	}
	m.Set("a", 200)
	v, ok = m.Get("a")
	if !ok || v != 200 {
		t.Fatalf("Get(a) after update = %d, %v; want 200, true", v, ok)
	}
	if m.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", m.Len())
	}
}

func TestSeenMapEvictsOldestFirst(t *testing.T) {
	m := newSeenMap()
	m.cap = 3

	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("c", 3)
	if m.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", m.Len())
	}

	m.Set("d", 4) // should evict "a"

	if _, ok := m.Get("a"); ok {
		t.Error("expected \"a\" to be evicted")
	}
	for _, k := range []string{"b", "c", "d"} {
		if _, ok := m.Get(k); !ok {
			t.Errorf("expected %q to still be present", k)
		}
	}
	if m.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", m.Len())
	}
}

func TestSeenMapUpdateDoesNotChangeEvictionOrder(t *testing.T) {
	m := newSeenMap()
	m.cap = 2

	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("a", 99) // touching "a" again must not move it to the back

	m.Set("c", 3) // should still evict "a", not "b"

	if _, ok := m.Get("a"); ok {
		t.Error("expected \"a\" to be evicted despite the update")
	}
	if _, ok := m.Get("b"); !ok {
		t.Error("expected \"b\" to survive")
	}
}
