package ratelimit

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_AdmissionOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	rl, _ := manualLimiter(t,
		[]Criterion{PerSecond(2)},
		WithName("api"),
		WithMetrics(m),
	)

	// First call is immediate, second is delayed by the rate interval.
	if err := rl.Admit(); err != nil {
		t.Fatal(err)
	}
	if err := rl.Admit(); err != nil {
		t.Fatal(err)
	}

	if got := testutil.ToFloat64(m.admissions.WithLabelValues("api", string(OutcomeImmediate))); got != 1 {
		t.Errorf("immediate admissions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.admissions.WithLabelValues("api", string(OutcomeDelayed))); got != 1 {
		t.Errorf("delayed admissions = %v, want 1", got)
	}
}

func TestMetrics_RejectedOutcome(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	rl, _ := manualLimiter(t,
		[]Criterion{Limit{Calls: 1, Window: time.Hour}},
		WithName("strict"),
		WithSafeStart(true),
		WithThrowOnLimit(true),
		WithMetrics(m),
	)

	if err := rl.Admit(); err == nil {
		t.Fatal("expected rejection")
	}
	if got := testutil.ToFloat64(m.admissions.WithLabelValues("strict", string(OutcomeRejected))); got != 1 {
		t.Errorf("rejected admissions = %v, want 1", got)
	}
}

func TestMetrics_SharedAcrossLimiters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	a, _ := manualLimiter(t, []Criterion{PerSecond(100)}, WithName("a"), WithMetrics(m))
	b, _ := manualLimiter(t, []Criterion{PerSecond(100)}, WithName("b"), WithMetrics(m))

	for i := 0; i < 2; i++ {
		if err := a.Admit(); err != nil {
			t.Fatal(err)
		}
	}
	if err := b.Admit(); err != nil {
		t.Fatal(err)
	}

	if got := testutil.ToFloat64(m.admissions.WithLabelValues("a", string(OutcomeImmediate))); got != 2 {
		t.Errorf("limiter a immediate admissions = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.admissions.WithLabelValues("b", string(OutcomeImmediate))); got != 1 {
		t.Errorf("limiter b immediate admissions = %v, want 1", got)
	}
}

// captureRecorder retains every admission it is handed.
type captureRecorder struct {
	admissions []Admission
}

func (r *captureRecorder) Record(a Admission) {
	r.admissions = append(r.admissions, a)
}

func TestRecorder_ReceivesDecisions(t *testing.T) {
	rec := &captureRecorder{}
	rl, clk := manualLimiter(t,
		[]Criterion{PerSecond(2)},
		WithName("journal-me"),
		WithRecorder(rec),
	)

	start := clk.Now()
	if err := rl.Admit(); err != nil {
		t.Fatal(err)
	}
	if err := rl.Admit(); err != nil {
		t.Fatal(err)
	}

	if len(rec.admissions) != 2 {
		t.Fatalf("recorder saw %d admissions, want 2", len(rec.admissions))
	}

	first := rec.admissions[0]
	if first.Limiter != "journal-me" || first.Outcome != OutcomeImmediate || first.Wait != 0 {
		t.Errorf("first admission = %+v", first)
	}
	if !first.At.Equal(start) {
		t.Errorf("first admission at %v, want %v", first.At, start)
	}

	second := rec.admissions[1]
	if second.Outcome != OutcomeDelayed || second.Wait != 500*time.Millisecond {
		t.Errorf("second admission = %+v", second)
	}
}
