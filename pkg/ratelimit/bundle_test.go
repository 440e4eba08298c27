package ratelimit

import (
	"errors"
	"sort"
	"testing"
	"time"
)

// fakeClient is a Limitable test double with two guarded operations.
type fakeClient struct {
	bindings map[string]*Binding
}

func newFakeClient(names ...string) *fakeClient {
	c := &fakeClient{bindings: make(map[string]*Binding, len(names))}
	for _, name := range names {
		c.bindings[name] = Placeholder()
	}
	return c
}

func (c *fakeClient) RateLimitBindings() map[string]*Binding {
	return c.bindings
}

func testBundle(t *testing.T) *Bundle {
	t.Helper()
	upload, _ := manualLimiter(t, []Criterion{PerSecond(2)}, WithName("upload"))
	query, _ := manualLimiter(t, []Criterion{Limit{Calls: 10, Window: time.Minute}}, WithName("query"))
	return NewBundle(map[string]*Limiter{
		"upload": upload,
		"query":  query,
	})
}

// ============================================================================
// Container operations
// ============================================================================

func TestBundle_Container(t *testing.T) {
	b := testBundle(t)

	if b.Len() != 2 {
		t.Errorf("Len() = %d, want 2", b.Len())
	}
	if !b.Contains("upload") || b.Contains("delete") {
		t.Error("Contains reported wrong membership")
	}
	if rl := b.Get("query"); rl == nil || rl.Name() != "query" {
		t.Errorf("Get(query) = %v", rl)
	}
	if _, ok := b.Lookup("delete"); ok {
		t.Error("Lookup found a limiter that was never stored")
	}

	names := b.Names()
	sort.Strings(names)
	if len(names) != 2 || names[0] != "query" || names[1] != "upload" {
		t.Errorf("Names() = %v", names)
	}

	extra, _ := manualLimiter(t, []Criterion{PerSecond(1)})
	b.Set("delete", extra)
	if b.Len() != 3 {
		t.Errorf("Len() after Set = %d, want 3", b.Len())
	}
	b.Delete("delete")
	if b.Contains("delete") {
		t.Error("Delete left the limiter in place")
	}
}

// ============================================================================
// Apply
// ============================================================================

func TestBundle_ApplyCopiesByDefault(t *testing.T) {
	b := testBundle(t)
	client := newFakeClient("upload", "query")

	if err := b.Apply(client); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	for name, binding := range client.bindings {
		attached, on := binding.State()
		if !on {
			t.Errorf("binding %q not enabled after apply", name)
		}
		if attached == nil {
			t.Fatalf("binding %q has no limiter after apply", name)
		}
		if attached == b.Get(name) {
			t.Errorf("binding %q shares the bundle's instance, want an independent copy", name)
		}
	}

	// Admissions through one client must not count against the bundle's
	// own instances.
	if err := client.bindings["upload"].Do(func() error { return nil }); err != nil {
		t.Fatal(err)
	}
	if got := b.Get("upload").HistoryLen(); got != 0 {
		t.Errorf("bundle instance saw %d admissions through a copied binding, want 0", got)
	}
}

func TestBundle_ApplyShared(t *testing.T) {
	b := testBundle(t)
	first := newFakeClient("upload", "query")
	second := newFakeClient("upload", "query")

	if err := b.Apply(first, SharedLimiters()); err != nil {
		t.Fatal(err)
	}
	if err := b.Apply(second, SharedLimiters()); err != nil {
		t.Fatal(err)
	}

	if first.bindings["upload"].Limiter() != b.Get("upload") {
		t.Error("shared apply did not attach the bundle's own instance")
	}
	if first.bindings["upload"].Limiter() != second.bindings["upload"].Limiter() {
		t.Error("two shared applies attached different instances")
	}
}

func TestBundle_ApplyMissingBinding(t *testing.T) {
	b := testBundle(t)
	client := newFakeClient("upload") // no "query" binding

	err := b.Apply(client)
	if !errors.Is(err, ErrNotLimitable) {
		t.Fatalf("expected ErrNotLimitable, got %v", err)
	}

	if err := b.Apply(client, IgnoreMissing()); err != nil {
		t.Fatalf("IgnoreMissing apply failed: %v", err)
	}
	if client.bindings["upload"].Limiter() == nil {
		t.Error("present binding was not attached under IgnoreMissing")
	}
}

func TestBundle_ApplyOverrides(t *testing.T) {
	b := NewBundle(map[string]*Limiter{})
	rl, _ := manualLimiter(t, []Criterion{Limit{Calls: 3, Window: time.Minute}})
	b.Set("fetch", rl)

	client := newFakeClient("fetch")
	if err := b.Apply(client, WithOverrides(WithSafeStart(true))); err != nil {
		t.Fatal(err)
	}

	attached := client.bindings["fetch"].Limiter()
	if attached.HistoryLen() != attached.HistoryCap() {
		t.Error("override WithSafeStart(true) not applied to the attached copy")
	}
	if rl.HistoryLen() != 0 {
		t.Error("override leaked into the bundle's own instance")
	}
}

func TestBundle_BakedOptions(t *testing.T) {
	b := testBundle(t).Bake(IgnoreMissing())
	client := newFakeClient("upload") // "query" missing, tolerated by baked option

	if err := b.Apply(client); err != nil {
		t.Fatalf("apply with baked IgnoreMissing failed: %v", err)
	}
	if client.bindings["upload"].Limiter() == nil {
		t.Error("present binding was not attached")
	}
}
