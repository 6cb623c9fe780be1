// README: Durable order aggregate, status pipeline, and provider enums.
package order

import (
	"time"

	"catering/internal/types"
)

type Status string

const (
	StatusNotStarted     Status = "not_started"
	StatusCooking        Status = "cooking"
	StatusCooked         Status = "cooked"
	StatusDeliveryLookup Status = "delivery_lookup"
	StatusDelivery       Status = "delivery"
	StatusDelivered      Status = "delivered"

	// Leg-local markers. Never written to the durable order row; a stuck
	// leg leaves the order at its last reached stage.
	StatusTimedOut Status = "timed_out"
	StatusFailed   Status = "failed"
)

// statusRank orders the fulfillment pipeline. Leg markers are absent on
// purpose: they carry no rank and never advance anything.
var statusRank = map[Status]int{
	StatusNotStarted:     0,
	StatusCooking:        1,
	StatusCooked:         2,
	StatusDeliveryLookup: 3,
	StatusDelivery:       4,
	StatusDelivered:      5,
}

// Rank returns the pipeline position of s and whether s belongs to the
// pipeline at all.
func Rank(s Status) (int, bool) {
	r, ok := statusRank[s]
	return r, ok
}

// CanAdvance reports whether moving from -> to is a forward transition.
// Late stale writes (a poller observing "cooking" after the aggregator
// already wrote "cooked") must not regress the pipeline.
func CanAdvance(from, to Status) bool {
	fr, ok := statusRank[from]
	if !ok {
		return false
	}
	tr, ok := statusRank[to]
	if !ok {
		return false
	}
	return tr > fr
}

// priorStatuses lists every pipeline status strictly below to. Used by
// the store as the guard set for monotonic UPDATEs.
func priorStatuses(to Status) []Status {
	tr, ok := statusRank[to]
	if !ok {
		return nil
	}
	var prior []Status
	for s, r := range statusRank {
		if r < tr {
			prior = append(prior, s)
		}
	}
	return prior
}

// CookingProvider is the closed set of restaurant integrations. It is
// resolved from the restaurant row when the order is created, never by
// parsing a display name.
type CookingProvider string

const (
	ProviderSilpo CookingProvider = "silpo"
	ProviderKFC   CookingProvider = "kfc"
)

// DeliveryProvider is the closed set of courier integrations.
type DeliveryProvider string

const (
	ProviderUklon DeliveryProvider = "uklon"
	ProviderUber  DeliveryProvider = "uber"
)

type Order struct {
	ID               int64
	UserID           int64
	Status           Status
	DeliveryProvider DeliveryProvider
	Items            []Item
	Eta              time.Time
	Total            types.Money
	CreatedAt        time.Time
}

// Item is immutable once the order is created.
type Item struct {
	DishID   int64
	Quantity int
}

// Leg is one restaurant's share of an order, joined with everything the
// fulfillment workers need: the cooking provider, the dish names for the
// provider request body, and the address for delivery dispatch.
type Leg struct {
	RestaurantID   int64
	RestaurantName string
	Address        string
	Provider       CookingProvider
	Items          []LegItem
}

type LegItem struct {
	Dish     string
	Quantity int
}
