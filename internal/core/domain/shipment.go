package domain

import "time"

// ParcelSpec describes the physical parcel derived from an order's
// items. It is recomputed on every run and never persisted.
type ParcelSpec struct {
	WeightKg      float64
	LengthCm      float64
	WidthCm       float64
	HeightCm      float64
	DeclaredValue float64
	Content       string
}

// Quote is a single rate offered by a carrier for a parcel. Transient.
type Quote struct {
	Carrier           string
	Service           string
	Price             float64
	Currency          string
	EstimatedDays     int
	EstimatedDelivery string
}

// ShipmentRecord is the durable result of booking a shipment. Its
// fields are written into the order's fulfillment columns.
type ShipmentRecord struct {
	TrackingNumber    string
	Carrier           string
	Service           string
	Cost              float64
	EstimatedDelivery string
	BookedAt          time.Time
}

// TrackingStatus is a point-in-time snapshot from the carrier.
type TrackingStatus struct {
	TrackingNumber string
	Status         string
	Description    string
	LastUpdate     time.Time
}
