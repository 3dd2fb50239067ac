// Package queries contains read operations that do not change any session.
// Every query is built by its constructor and checked by its handler.
package queries

import (
	"errors"

	"expedition/internal/core/domain/model/expedition"
	"expedition/internal/pkg/errs"
	"expedition/internal/pkg/guard"
)

var ErrGetQuoteQueryIsNotConstructed = errors.New(
	"GetQuoteQuery must be created via NewGetQuoteQuery constructor",
)

// GetQuoteQuery prices a shipment without opening a session.
//
// Example:
//
//	query, err := NewGetQuoteQuery(&expedition.ParcelInput{Weight: "3,5", Fragile: true}, 12.4, "cash")
//	if err != nil {
//	    return fmt.Errorf("invalid quote request: %w", err)
//	}
//	quote, err := handler.Handle(ctx, query)
type GetQuoteQuery struct { //nolint:recvcheck //using for validation
	parcel     *expedition.Parcel
	distanceKm float64
	method     expedition.PaymentMethod

	guard guard.ConstructorGuard
}

// NewGetQuoteQuery creates a quote query. A nil parcel prices only the travel and the
// operator fee. The photo is not needed for a quote.
func NewGetQuoteQuery(parcel *expedition.ParcelInput, distanceKm float64, method string) (GetQuoteQuery, error) {
	query := GetQuoteQuery{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		query.setParcel(parcel),
		query.setDistanceKm(distanceKm),
		query.setMethod(method),
	); err != nil {
		return GetQuoteQuery{}, err
	}

	return query, nil
}

// Validate ensures the query was created through the constructor.
func (q GetQuoteQuery) Validate() error {
	return q.guard.Validate(ErrGetQuoteQueryIsNotConstructed)
}

// Parcel returns a copy of the priced parcel, nil when none was given.
func (q GetQuoteQuery) Parcel() *expedition.Parcel {
	if q.parcel == nil {
		return nil
	}
	parcel := *q.parcel
	return &parcel
}

func (q GetQuoteQuery) DistanceKm() float64 {
	return q.distanceKm
}

func (q GetQuoteQuery) Method() expedition.PaymentMethod {
	return q.method
}

func (q *GetQuoteQuery) setParcel(input *expedition.ParcelInput) error {
	if input == nil {
		return nil
	}
	parcel, err := input.Attributes()
	if err != nil {
		return err
	}
	parcel.Photo = nil

	q.parcel = &parcel
	return nil
}

func (q *GetQuoteQuery) setDistanceKm(distanceKm float64) error {
	if distanceKm < 0 {
		return errs.NewValueIsOutOfRangeError("distanceKm", distanceKm, 0, "∞")
	}

	q.distanceKm = distanceKm
	return nil
}

func (q *GetQuoteQuery) setMethod(raw string) error {
	method, err := expedition.ParsePaymentMethod(raw)
	if err != nil {
		return err
	}

	q.method = method
	return nil
}

// GetQuoteQueryResponse is the price breakdown of a quote, in XAF. BasePrice and
// TotalPrice are nil when no parcel was given.
type GetQuoteQueryResponse struct {
	BasePrice          *int64
	TravelPrice        int64
	OperatorFee        int64
	TotalPrice         *int64
	VolumetricWeightKg float64
	BillableWeightKg   float64
}
