// README: Tracking record unit tests.
package tracking

import (
	"testing"

	"catering/internal/modules/order"
)

func TestNewRecordLegs(t *testing.T) {
	rec := NewRecord([]int64{1, 7})
	if rec.Version != schemaVersion {
		t.Fatalf("expected version %d, got %d", schemaVersion, rec.Version)
	}
	if len(rec.Restaurants) != 2 {
		t.Fatalf("expected 2 legs, got %d", len(rec.Restaurants))
	}
	leg, ok := rec.Leg(7)
	if !ok {
		t.Fatal("leg 7 missing")
	}
	if leg.Status != order.StatusNotStarted {
		t.Fatalf("expected not_started, got %s", leg.Status)
	}
	if _, ok := rec.Leg(99); ok {
		t.Fatal("leg 99 should not exist")
	}
}

func TestLegAdvanceForwardOnly(t *testing.T) {
	leg := &Leg{Status: order.StatusNotStarted}

	if !leg.Advance(order.StatusCooking) {
		t.Fatal("not_started -> cooking should advance")
	}
	if !leg.Advance(order.StatusCooked) {
		t.Fatal("cooking -> cooked should advance")
	}
	if leg.Advance(order.StatusCooking) {
		t.Fatal("cooked -> cooking must be dropped")
	}
	if leg.Status != order.StatusCooked {
		t.Fatalf("stale write changed status to %s", leg.Status)
	}
	if leg.Advance(order.StatusCooked) {
		t.Fatal("duplicate cooked must report no change")
	}
}

func TestLegAdvanceMarkers(t *testing.T) {
	leg := &Leg{Status: order.StatusCooking}
	if !leg.Advance(order.StatusTimedOut) {
		t.Fatal("marker write on an unfinished leg should apply")
	}
	if leg.Status != order.StatusTimedOut {
		t.Fatalf("expected timed_out, got %s", leg.Status)
	}

	for _, marker := range []order.Status{order.StatusTimedOut, order.StatusFailed} {
		cooked := &Leg{Status: order.StatusCooked}
		if cooked.Advance(marker) {
			t.Fatalf("marker %s must not overwrite a cooked leg", marker)
		}
		if cooked.Status != order.StatusCooked {
			t.Fatalf("cooked leg regressed to %s", cooked.Status)
		}
	}
}

func TestAllCooked(t *testing.T) {
	rec := NewRecord([]int64{1, 2})
	if rec.AllCooked() {
		t.Fatal("fresh record cannot be all cooked")
	}

	leg, _ := rec.Leg(1)
	leg.Advance(order.StatusCooked)
	if rec.AllCooked() {
		t.Fatal("one cooked leg out of two is not all cooked")
	}

	leg, _ = rec.Leg(2)
	leg.Advance(order.StatusCooked)
	if !rec.AllCooked() {
		t.Fatal("both legs cooked")
	}

	empty := &Record{Version: schemaVersion, Restaurants: map[string]*Leg{}}
	if empty.AllCooked() {
		t.Fatal("empty record must not count as cooked")
	}
}

func TestLegByExternalID(t *testing.T) {
	rec := NewRecord([]int64{1, 2})
	id := "ext-42"
	leg, _ := rec.Leg(2)
	leg.ExternalID = &id

	got, ok := rec.LegByExternalID("ext-42")
	if !ok || got != leg {
		t.Fatal("expected leg 2 by external id")
	}
	if _, ok := rec.LegByExternalID("ext-unknown"); ok {
		t.Fatal("unknown external id must not resolve")
	}
}
