// README: Cache-resident tracking record: per-leg cooking state plus delivery state.
package tracking

import (
	"strconv"

	"catering/internal/modules/order"
	"catering/internal/types"
)

// schemaVersion guards against decoding records written by an older
// shape of this struct. A mismatch is a decode failure, never a silent
// partial default.
const schemaVersion = 1

// Record is the ephemeral working state of one order's fulfillment. The
// restaurant key set is fixed by the scheduler at creation and never
// changes afterwards.
type Record struct {
	Version     int             `json:"v"`
	Restaurants map[string]*Leg `json:"restaurants"`
	Delivery    Delivery        `json:"delivery"`
}

type Leg struct {
	Status     order.Status `json:"status"`
	ExternalID *string      `json:"external_id"`
}

type Delivery struct {
	Status   *order.Status `json:"status"`
	Location *types.Point  `json:"location"`
}

// NewRecord builds the initial record: one not-started leg per
// restaurant, empty delivery.
func NewRecord(restaurantIDs []int64) *Record {
	legs := make(map[string]*Leg, len(restaurantIDs))
	for _, id := range restaurantIDs {
		legs[legKey(id)] = &Leg{Status: order.StatusNotStarted}
	}
	return &Record{Version: schemaVersion, Restaurants: legs}
}

// Leg returns the leg for a restaurant, if the scheduler created one.
func (r *Record) Leg(restaurantID int64) (*Leg, bool) {
	leg, ok := r.Restaurants[legKey(restaurantID)]
	return leg, ok
}

// LegByExternalID resolves a leg from a provider-side order id, as
// webhook payloads carry only the external id.
func (r *Record) LegByExternalID(externalID string) (*Leg, bool) {
	for _, leg := range r.Restaurants {
		if leg.ExternalID != nil && *leg.ExternalID == externalID {
			return leg, true
		}
	}
	return nil, false
}

// Advance moves the leg's status forward and reports whether anything
// changed. Once a leg is cooked it never reverts: stale provider
// statuses arriving late are dropped here, and failure markers no
// longer apply either (a redelivered task timing out against finished
// work must not undo it).
func (l *Leg) Advance(to order.Status) bool {
	if to == order.StatusTimedOut || to == order.StatusFailed {
		if l.Status == order.StatusCooked {
			return false
		}
		l.Status = to
		return true
	}
	if !order.CanAdvance(l.Status, to) {
		return false
	}
	l.Status = to
	return true
}

// AllCooked reports whether every leg reached the cooked state.
func (r *Record) AllCooked() bool {
	if len(r.Restaurants) == 0 {
		return false
	}
	for _, leg := range r.Restaurants {
		if leg.Status != order.StatusCooked {
			return false
		}
	}
	return true
}

func legKey(restaurantID int64) string {
	return strconv.FormatInt(restaurantID, 10)
}
