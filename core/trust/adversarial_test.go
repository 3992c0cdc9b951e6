package trust

import (
	"testing"
	"time"
)

func TestAdversarialFirstSamplePasses(t *testing.T) {
	f := NewAdversarialFilter(0)
	v := f.Check("line-1", 1e9, time.Unix(100, 0))
	if !v.Valid {
		t.Fatalf("first sample rejected: %+v", v)
	}
	if v.Reason != FlagBaseline {
		t.Fatalf("unexpected reason %q", v.Reason)
	}
}

func TestAdversarialNonIncreasingTimestampRejected(t *testing.T) {
	f := NewAdversarialFilter(0)
	ts := time.Unix(100, 0)
	f.Check("a", 10, ts)
	for _, next := range []time.Time{ts, ts.Add(-time.Second)} {
		v := f.Check("a", 10, next)
		if v.Valid || v.Reason != FlagTimestampAnomaly {
			t.Fatalf("expected timestamp anomaly, got %+v", v)
		}
	}
}

func TestAdversarialRateCeiling(t *testing.T) {
	f := NewAdversarialFilter(500)
	ts := time.Unix(0, 0)
	f.Check("a", 0, ts)

	v := f.Check("a", 600, ts.Add(time.Second))
	if v.Valid {
		t.Fatalf("expected rejection for 600/s")
	}
	if len(v.Flags) != 1 || v.Flags[0] != FlagAdversarial {
		t.Fatalf("missing adversarial flag: %v", v.Flags)
	}

	// baseline must not have moved to 600
	v = f.Check("a", 400, ts.Add(2*time.Second))
	if !v.Valid {
		t.Fatalf("expected 400 over 2s to pass: %+v", v)
	}
	if v.RateOfChange != 200 {
		t.Fatalf("rate = %v, want 200", v.RateOfChange)
	}
}

func TestAdversarialAssetsIndependent(t *testing.T) {
	f := NewAdversarialFilter(1)
	ts := time.Unix(0, 0)
	f.Check("a", 0, ts)
	if v := f.Check("b", 1000, ts.Add(time.Second)); !v.Valid {
		t.Fatalf("asset b should establish its own baseline")
	}
	f.Forget("a")
	if v := f.Check("a", 1000, ts.Add(time.Second)); !v.Valid {
		t.Fatalf("forgotten asset should re-baseline")
	}
}
