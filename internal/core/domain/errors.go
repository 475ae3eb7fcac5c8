package domain

import "errors"

// Pipeline error taxonomy. Adapters and services wrap these sentinels
// so the orchestrator can classify a failure with errors.Is without
// knowing which layer produced it.
var (
	// ErrInvalidAddress: the order's shipping address is missing fields
	// a carrier requires. Skip the order; no alert.
	ErrInvalidAddress = errors.New("invalid shipping address")

	// ErrProviderUnavailable: network failure, 5xx, or unparseable
	// response from the shipping or email provider. The order stays
	// eligible for the next run.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrNoRatesAvailable: the provider returned zero quotes for the
	// parcel. A defined result, not a transport failure.
	ErrNoRatesAvailable = errors.New("no shipping rates available")

	// ErrBookingFailed: the provider accepted the rate check but
	// rejected the booking, or returned no tracking identifier.
	ErrBookingFailed = errors.New("shipment booking failed")

	// ErrShipmentConflict: the conditional fulfillment write lost the
	// race to a concurrent run. Expected under overlap; no alert.
	ErrShipmentConflict = errors.New("shipment already recorded")

	// ErrNotificationFailed: the email send exhausted its retry budget.
	// Logged only; never rolls back the shipment.
	ErrNotificationFailed = errors.New("notification delivery failed")

	ErrOrderNotFound    = errors.New("order not found")
	ErrOrderNotEligible = errors.New("order not eligible for fulfillment")
)
