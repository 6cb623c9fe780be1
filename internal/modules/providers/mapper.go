// README: Fixed translation tables from provider status tokens to internal statuses.
package providers

import (
	"errors"
	"fmt"

	"catering/internal/modules/order"
)

// ErrUnknownStatus means the translation table has a gap for a
// (provider, token) pair. Fatal to the operation that hit it; fixed by
// extending the table, not by retrying.
var ErrUnknownStatus = errors.New("unknown provider status")

// Both cooking providers report "finished" after "cooked"; the two
// tokens collapse to the same internal status on purpose.
var cookingStatuses = map[order.CookingProvider]map[string]order.Status{
	order.ProviderSilpo: {
		"not started": order.StatusNotStarted,
		"cooking":     order.StatusCooking,
		"cooked":      order.StatusCooked,
		"finished":    order.StatusCooked,
	},
	order.ProviderKFC: {
		"not started": order.StatusNotStarted,
		"not_started": order.StatusNotStarted,
		"cooking":     order.StatusCooking,
		"cooked":      order.StatusCooked,
		"finished":    order.StatusCooked,
	},
}

var deliveryStatuses = map[order.DeliveryProvider]map[string]order.Status{
	order.ProviderUklon: {
		"not started": order.StatusNotStarted,
		"delivery":    order.StatusDelivery,
		"delivered":   order.StatusDelivered,
	},
	order.ProviderUber: {
		"not started": order.StatusNotStarted,
		"delivery":    order.StatusDelivery,
		"delivered":   order.StatusDelivered,
	},
}

func TranslateCooking(p order.CookingProvider, token string) (order.Status, error) {
	st, ok := cookingStatuses[p][token]
	if !ok {
		return "", fmt.Errorf("%w: %s %q", ErrUnknownStatus, p, token)
	}
	return st, nil
}

func TranslateDelivery(p order.DeliveryProvider, token string) (order.Status, error) {
	st, ok := deliveryStatuses[p][token]
	if !ok {
		return "", fmt.Errorf("%w: %s %q", ErrUnknownStatus, p, token)
	}
	return st, nil
}
