package service

import "github.com/aurelle-shop/fulfillment/internal/core/domain"

type RatePolicy string

const (
	RatePolicyCheapest RatePolicy = "cheapest"
	RatePolicyFastest  RatePolicy = "fastest"
)

// SelectQuote applies the rate policy over the provider's quote list.
// Selection is stable: ties keep the first quote in list order, so a
// given quote list always yields the same choice.
//
// Fastest compares the provider's day estimates when every quote
// carries one; quotes without estimates fall back to the first quote
// in list order. See DESIGN.md.
func SelectQuote(quotes []domain.Quote, policy RatePolicy) (*domain.Quote, error) {
	if len(quotes) == 0 {
		return nil, domain.ErrNoRatesAvailable
	}

	best := 0
	switch policy {
	case RatePolicyFastest:
		for i, q := range quotes {
			if q.EstimatedDays <= 0 {
				// Incomparable estimate somewhere in the list;
				// keep the provider's ordering.
				best = 0
				break
			}
			if q.EstimatedDays < quotes[best].EstimatedDays {
				best = i
			}
		}
	default: // cheapest
		for i, q := range quotes {
			if q.Price < quotes[best].Price {
				best = i
			}
		}
	}

	q := quotes[best]
	return &q, nil
}
