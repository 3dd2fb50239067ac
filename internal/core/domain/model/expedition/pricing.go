package expedition

// Quoter prices the parts of a shipment. Amounts are whole currency units.
type Quoter interface {
	HandlingPrice(parcel Parcel) int64
	TravelPrice(distanceKm float64) int64
	OperatorFee(method PaymentMethod) int64
}

// Pricing is the quote derived from the rest of the draft. It is never edited directly.
type Pricing struct {
	// BasePrice is nil until the package stage has been completed once.
	BasePrice   *int64 `json:"basePrice"`
	TravelPrice int64  `json:"travelPrice"`
	OperatorFee int64  `json:"operatorFee"`
	// TotalPrice is nil while BasePrice is.
	TotalPrice *int64 `json:"totalPrice"`
}

// NewPricing assembles a quote; the total is base + travel + fee when base is known.
func NewPricing(base *int64, travel, fee int64) Pricing {
	p := Pricing{TravelPrice: travel, OperatorFee: fee}
	if base != nil {
		b := *base
		total := b + travel + fee
		p.BasePrice = &b
		p.TotalPrice = &total
	}
	return p
}

// Total returns the total price, or 0 when it is not known yet.
func (p Pricing) Total() int64 {
	if p.TotalPrice == nil {
		return 0
	}
	return *p.TotalPrice
}

func (p Pricing) clone() Pricing {
	return NewPricing(p.BasePrice, p.TravelPrice, p.OperatorFee)
}
