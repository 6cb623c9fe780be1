// README: Normalized request/response shapes shared by all provider adapters.
package providers

import (
	"errors"
	"net/http"
	"time"

	"catering/internal/types"
)

var (
	// ErrUnavailable is transient (network failure or provider 5xx);
	// the calling loop or the task queue retries.
	ErrUnavailable = errors.New("provider unavailable")
	// ErrRejected means the provider declined the order. Not retried;
	// the leg is surfaced as failed.
	ErrRejected = errors.New("provider rejected order")
)

type Item struct {
	Dish     string `json:"dish"`
	Quantity int    `json:"quantity"`
}

// CookingRequest is the wire body both cooking providers accept.
type CookingRequest struct {
	Order []Item `json:"order"`
}

// DeliveryRequest carries one address/comment pair per restaurant leg.
type DeliveryRequest struct {
	Addresses []string `json:"addresses"`
	Comments  []string `json:"comments"`
}

// Order is the normalized adapter result. Status is the provider-native
// token; callers run it through the status mapper before acting on it.
type Order struct {
	ID       string
	Status   string
	Location *types.Point
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 10 * time.Second}
}
