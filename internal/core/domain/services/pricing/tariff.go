package pricing

import "expedition/internal/core/domain/model/expedition"

// Tariff is the price list used by Engine. Amounts are whole currency units (XAF).
type Tariff struct {
	HandlingBase        float64
	PerBillableKg       float64
	VolumetricDivisor   float64
	VolumetricFactor    float64
	FragileSurcharge    float64
	PerishableSurcharge float64
	LiquidSurcharge     float64
	InsuranceRate       float64
	PickupFee           float64
	DeliveryFee         float64
	ExpressMultipliers  map[expedition.ExpressTier]float64
	TravelBase          float64
	TravelPerKm         float64
	MobileMoneyFee      int64
}

// DefaultTariff returns the standard price list.
func DefaultTariff() Tariff {
	return Tariff{
		HandlingBase:        1500,
		PerBillableKg:       300,
		VolumetricDivisor:   1_000_000,
		VolumetricFactor:    200,
		FragileSurcharge:    1200,
		PerishableSurcharge: 800,
		LiquidSurcharge:     500,
		InsuranceRate:       0.02,
		PickupFee:           1000,
		DeliveryFee:         1000,
		ExpressMultipliers: map[expedition.ExpressTier]float64{
			expedition.TierStandard: 1.0,
			expedition.Tier48h:      1.5,
			expedition.Tier24h:      2.0,
		},
		TravelBase:     500,
		TravelPerKm:    80,
		MobileMoneyFee: 100,
	}
}

func (t Tariff) multiplier(tier expedition.ExpressTier) float64 {
	if m, ok := t.ExpressMultipliers[tier]; ok {
		return m
	}
	return 1.0
}
