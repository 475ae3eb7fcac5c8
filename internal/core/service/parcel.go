package service

import (
	"fmt"
	"strings"

	"github.com/aurelle-shop/fulfillment/internal/core/domain"
)

// ParcelConfig holds the constants the estimator derives a parcel from.
type ParcelConfig struct {
	// PerItemWeightKg is the assumed weight of one item. The legacy
	// systems disagreed on this value (0.2 vs 0.3); see DESIGN.md.
	PerItemWeightKg float64
	MinWeightKg     float64
	LengthCm        float64
	WidthCm         float64
	BaseHeightCm    float64
	HeightCmPerKg   float64
	DefaultContent  string
}

func DefaultParcelConfig() ParcelConfig {
	return ParcelConfig{
		PerItemWeightKg: 0.3,
		MinWeightKg:     0.5,
		LengthCm:        35,
		WidthCm:         25,
		BaseHeightCm:    10,
		HeightCmPerKg:   4,
		DefaultContent:  "apparel",
	}
}

// EstimateParcel derives the physical parcel spec from an order's
// items. Pure and deterministic; a zero-item order falls back to the
// minimum weight and default content.
func EstimateParcel(cfg ParcelConfig, items []domain.OrderItem) domain.ParcelSpec {
	var totalQty int
	var value float64
	names := make([]string, 0, len(items))
	for _, it := range items {
		totalQty += it.Quantity
		value += it.UnitPrice * float64(it.Quantity)
		label := it.Name
		if it.Size != "" {
			label = fmt.Sprintf("%s (%s)", it.Name, it.Size)
		}
		if it.Quantity > 1 {
			label = fmt.Sprintf("%dx %s", it.Quantity, label)
		}
		names = append(names, label)
	}

	weight := cfg.PerItemWeightKg * float64(totalQty)
	if weight < cfg.MinWeightKg {
		weight = cfg.MinWeightKg
	}

	height := cfg.HeightCmPerKg * weight
	if height < cfg.BaseHeightCm {
		height = cfg.BaseHeightCm
	}

	content := strings.Join(names, ", ")
	if content == "" {
		content = cfg.DefaultContent
	}

	return domain.ParcelSpec{
		WeightKg:      weight,
		LengthCm:      cfg.LengthCm,
		WidthCm:       cfg.WidthCm,
		HeightCm:      height,
		DeclaredValue: value,
		Content:       content,
	}
}
