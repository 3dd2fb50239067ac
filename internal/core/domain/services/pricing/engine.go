package pricing

import (
	"math"

	"expedition/internal/core/domain/model/expedition"
)

var _ expedition.Quoter = Engine{}

// Engine prices shipments from a Tariff. It holds no state besides the tariff and is
// safe for concurrent use.
//
// Example usage:
//
//	engine := pricing.NewEngine()
//	quote := engine.Quote(&parcel, 10, expedition.PaymentMobileMoney)
//	fmt.Println(*quote.TotalPrice)
type Engine struct {
	tariff Tariff
}

// NewEngine creates an Engine with DefaultTariff.
func NewEngine() Engine {
	return NewEngineWithTariff(DefaultTariff())
}

// NewEngineWithTariff creates an Engine with a custom price list.
func NewEngineWithTariff(tariff Tariff) Engine {
	return Engine{tariff: tariff}
}

// Tariff returns the price list of the engine.
func (e Engine) Tariff() Tariff {
	return e.tariff
}

// VolumetricWeight returns L·W·H / divisor · factor in kilograms, blank dimensions
// counting as expedition.DefaultDimensionCm.
func (e Engine) VolumetricWeight(parcel expedition.Parcel) float64 {
	l, w, h := parcel.Dimensions()
	return l * w * h / e.tariff.VolumetricDivisor * e.tariff.VolumetricFactor
}

// BillableWeight returns the greater of the actual and the volumetric weight.
func (e Engine) BillableWeight(parcel expedition.Parcel) float64 {
	return math.Max(parcel.WeightKg, e.VolumetricWeight(parcel))
}

// HandlingPrice prices the parcel itself. The parcel is expected to be valid.
//
// Returns:
//   - the rounded handling price, the draft's base price
func (e Engine) HandlingPrice(parcel expedition.Parcel) int64 {
	t := e.tariff
	price := t.HandlingBase + e.BillableWeight(parcel)*t.PerBillableKg

	if parcel.Fragile {
		price += t.FragileSurcharge
	}
	if parcel.Perishable {
		price += t.PerishableSurcharge
	}
	if parcel.Liquid {
		price += t.LiquidSurcharge
	}
	if parcel.Insured && parcel.DeclaredValue > 0 {
		price += parcel.DeclaredValue * t.InsuranceRate
	}
	if parcel.PickupRequested {
		price += t.PickupFee
	}
	if parcel.DeliveryRequested {
		price += t.DeliveryFee
	}

	return int64(math.Round(price * t.multiplier(parcel.ExpressTier)))
}

// TravelPrice prices the distance; 0 or a negative distance means unresolved and costs nothing.
func (e Engine) TravelPrice(distanceKm float64) int64 {
	if distanceKm <= 0 {
		return 0
	}
	return int64(math.Round(e.tariff.TravelBase + e.tariff.TravelPerKm*distanceKm))
}

// OperatorFee returns the mobile money fee, 0 for any other method.
func (e Engine) OperatorFee(method expedition.PaymentMethod) int64 {
	if method == expedition.PaymentMobileMoney {
		return e.tariff.MobileMoneyFee
	}
	return 0
}

// Quote prices a shipment outside of any draft. A nil parcel leaves the base and total
// prices unknown.
func (e Engine) Quote(parcel *expedition.Parcel, distanceKm float64, method expedition.PaymentMethod) expedition.Pricing {
	var base *int64
	if parcel != nil {
		handling := e.HandlingPrice(*parcel)
		base = &handling
	}
	return expedition.NewPricing(base, e.TravelPrice(distanceKm), e.OperatorFee(method))
}
