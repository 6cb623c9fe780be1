// README: Status pipeline unit tests.
package order

import "testing"

func TestCanAdvanceForwardOnly(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusNotStarted, StatusCooking, true},
		{StatusCooking, StatusCooked, true},
		{StatusCooked, StatusDeliveryLookup, true},
		{StatusDeliveryLookup, StatusDelivery, true},
		{StatusDelivery, StatusDelivered, true},
		{StatusNotStarted, StatusDelivered, true},
		{StatusCooked, StatusCooking, false},
		{StatusDelivered, StatusDelivery, false},
		{StatusCooking, StatusCooking, false},
	}
	for _, tc := range cases {
		if got := CanAdvance(tc.from, tc.to); got != tc.want {
			t.Errorf("CanAdvance(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestMarkersHaveNoRank(t *testing.T) {
	for _, s := range []Status{StatusTimedOut, StatusFailed} {
		if _, ok := Rank(s); ok {
			t.Errorf("marker %s must not be part of the pipeline", s)
		}
		if CanAdvance(StatusNotStarted, s) {
			t.Errorf("CanAdvance to marker %s must be false", s)
		}
		if CanAdvance(s, StatusDelivered) {
			t.Errorf("CanAdvance from marker %s must be false", s)
		}
	}
}

func TestPriorStatuses(t *testing.T) {
	prior := priorStatuses(StatusCooked)
	want := map[Status]bool{StatusNotStarted: true, StatusCooking: true}
	if len(prior) != len(want) {
		t.Fatalf("expected %d prior statuses, got %v", len(want), prior)
	}
	for _, s := range prior {
		if !want[s] {
			t.Fatalf("unexpected prior status %s for cooked", s)
		}
	}

	if got := priorStatuses(StatusTimedOut); got != nil {
		t.Fatalf("markers have no prior set, got %v", got)
	}
}
