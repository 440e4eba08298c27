package ratelimit

import "time"

// History is a fixed-capacity, ordered record of admission timestamps.
//
// The newest entry is appended at the tail; once the capacity is reached,
// each append evicts the oldest entry (ring buffer semantics, O(1)).
// Entries are non-decreasing because the limiter appends under its mutex
// with a monotonic clock. A timestamp may lie in the future: the limiter
// reserves the slot at the instant the admission will complete, before the
// associated sleep happens.
//
// Read accessors are exported so criteria (including user-supplied ones)
// can inspect the record; mutation is reserved to the owning Limiter.
type History struct {
	buf   []time.Time
	start int // index of the oldest entry
	size  int
}

func newHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{buf: make([]time.Time, capacity)}
}

// Len returns the number of recorded timestamps.
func (h *History) Len() int {
	return h.size
}

// Cap returns the fixed capacity of the history.
func (h *History) Cap() int {
	return len(h.buf)
}

// Newest returns the most recent timestamp. The second return is false when
// the history is empty.
func (h *History) Newest() (time.Time, bool) {
	if h.size == 0 {
		return time.Time{}, false
	}
	return h.at(h.size - 1), true
}

// NthNewest returns the n-th most recent timestamp, where n=1 is the newest
// entry. The second return is false when fewer than n entries exist.
func (h *History) NthNewest(n int) (time.Time, bool) {
	if n < 1 || n > h.size {
		return time.Time{}, false
	}
	return h.at(h.size - n), true
}

// at returns the i-th oldest entry. Caller guarantees 0 <= i < size.
func (h *History) at(i int) time.Time {
	return h.buf[(h.start+i)%len(h.buf)]
}

// record appends a timestamp, evicting the oldest entry when full.
// Caller holds the limiter mutex.
func (h *History) record(t time.Time) {
	if h.size == len(h.buf) {
		h.buf[h.start] = t
		h.start = (h.start + 1) % len(h.buf)
		return
	}
	h.buf[(h.start+h.size)%len(h.buf)] = t
	h.size++
}

// fill loads every slot with the same timestamp. Used for safe start, where
// all configured limits must read as immediately full.
func (h *History) fill(t time.Time) {
	for i := range h.buf {
		h.buf[i] = t
	}
	h.start = 0
	h.size = len(h.buf)
}
