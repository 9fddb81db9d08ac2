package resilience

import (
	"errors"
	"testing"
	"time"
)

func openBreaker(t *testing.T) (*CircuitBreaker, *time.Time) {
	t.Helper()
	cb := NewCircuitBreaker(2, time.Minute)
	now := time.Now()
	cb.nowFunc = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		cb.Record(errors.New("down"))
	}
	if cb.State() != CircuitOpen {
		t.Fatal("expected open breaker")
	}
	return cb, &now
}

func TestCircuitBreaker_HalfOpenAdmitsSingleProbe(t *testing.T) {
	cb, now := openBreaker(t)

	*now = now.Add(2 * time.Minute)
	if err := cb.Allow(); err != nil {
		t.Fatalf("first call after cooldown must be the probe, got %v", err)
	}

	// While the probe is in flight, further callers are still rejected.
	for i := 0; i < 3; i++ {
		if err := cb.Allow(); !errors.Is(err, ErrCircuitOpen) {
			t.Fatalf("call %d during the probe: got %v, want ErrCircuitOpen", i+1, err)
		}
	}

	cb.Record(nil)
	if cb.State() != CircuitClosed {
		t.Errorf("expected closed after successful probe, got %s", cb.State())
	}
	if err := cb.Allow(); err != nil {
		t.Errorf("closed breaker must allow calls, got %v", err)
	}
}

func TestCircuitBreaker_FailedProbeReopens(t *testing.T) {
	cb, now := openBreaker(t)

	*now = now.Add(2 * time.Minute)
	if err := cb.Allow(); err != nil {
		t.Fatalf("probe must be admitted, got %v", err)
	}
	cb.Record(errors.New("still down"))

	if cb.State() != CircuitOpen {
		t.Fatalf("failed probe must reopen the circuit, got %s", cb.State())
	}
	if err := cb.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("reopened circuit must reject calls, got %v", err)
	}

	// A second cooldown admits a fresh probe.
	*now = now.Add(2 * time.Minute)
	if err := cb.Allow(); err != nil {
		t.Errorf("probe after second cooldown must be admitted, got %v", err)
	}
}
