package ratelimit

import (
	"testing"
	"time"
)

func ts(sec int) time.Time {
	return time.Unix(int64(sec), 0)
}

func TestHistory_Empty(t *testing.T) {
	h := newHistory(3)

	if h.Len() != 0 {
		t.Errorf("expected empty history, got len %d", h.Len())
	}
	if h.Cap() != 3 {
		t.Errorf("expected capacity 3, got %d", h.Cap())
	}
	if _, ok := h.Newest(); ok {
		t.Error("Newest on empty history reported an entry")
	}
	if _, ok := h.NthNewest(1); ok {
		t.Error("NthNewest on empty history reported an entry")
	}
}

func TestHistory_AppendAndEvict(t *testing.T) {
	h := newHistory(3)

	h.record(ts(1))
	h.record(ts(2))
	h.record(ts(3))
	if h.Len() != 3 {
		t.Fatalf("expected len 3, got %d", h.Len())
	}

	// Fourth append must evict the oldest entry
	h.record(ts(4))
	if h.Len() != 3 {
		t.Fatalf("expected len 3 after eviction, got %d", h.Len())
	}

	newest, _ := h.Newest()
	if !newest.Equal(ts(4)) {
		t.Errorf("expected newest 4s, got %v", newest)
	}
	oldest, _ := h.NthNewest(3)
	if !oldest.Equal(ts(2)) {
		t.Errorf("expected oldest 2s after eviction, got %v", oldest)
	}
}

func TestHistory_NthNewest(t *testing.T) {
	h := newHistory(5)
	for i := 1; i <= 4; i++ {
		h.record(ts(i))
	}

	got, ok := h.NthNewest(1)
	if !ok || !got.Equal(ts(4)) {
		t.Errorf("NthNewest(1) = %v, %v; want 4s", got, ok)
	}
	got, ok = h.NthNewest(4)
	if !ok || !got.Equal(ts(1)) {
		t.Errorf("NthNewest(4) = %v, %v; want 1s", got, ok)
	}
	if _, ok := h.NthNewest(5); ok {
		t.Error("NthNewest(5) reported an entry with only 4 recorded")
	}
	if _, ok := h.NthNewest(0); ok {
		t.Error("NthNewest(0) reported an entry")
	}
}

func TestHistory_Fill(t *testing.T) {
	h := newHistory(4)
	h.fill(ts(7))

	if h.Len() != 4 {
		t.Fatalf("expected full history, got len %d", h.Len())
	}
	for n := 1; n <= 4; n++ {
		got, ok := h.NthNewest(n)
		if !ok || !got.Equal(ts(7)) {
			t.Errorf("NthNewest(%d) = %v, %v; want 7s", n, got, ok)
		}
	}
}

func TestHistory_MinimumCapacity(t *testing.T) {
	h := newHistory(0)
	if h.Cap() != 1 {
		t.Errorf("expected capacity clamped to 1, got %d", h.Cap())
	}

	h.record(ts(1))
	h.record(ts(2))
	newest, _ := h.Newest()
	if h.Len() != 1 || !newest.Equal(ts(2)) {
		t.Errorf("single-slot history should keep only the newest entry, len=%d newest=%v", h.Len(), newest)
	}
}
