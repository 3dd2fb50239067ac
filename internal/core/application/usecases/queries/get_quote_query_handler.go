package queries

import (
	"context"

	"expedition/internal/core/domain/services/pricing"
	"expedition/internal/pkg/metrics"
)

// GetQuoteQueryHandler prices quote queries with the pricing engine.
type GetQuoteQueryHandler struct {
	engine  pricing.Engine
	metrics *metrics.Metrics
}

// NewGetQuoteQueryHandler creates a handler; metrics may be nil.
func NewGetQuoteQueryHandler(engine pricing.Engine, metrics *metrics.Metrics) GetQuoteQueryHandler {
	return GetQuoteQueryHandler{engine: engine, metrics: metrics}
}

// Handle returns the price breakdown for the query.
func (h GetQuoteQueryHandler) Handle(ctx context.Context, query GetQuoteQuery) (GetQuoteQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetQuoteQueryResponse{}, err
	}
	if err := ctx.Err(); err != nil {
		return GetQuoteQueryResponse{}, err
	}

	parcel := query.Parcel()
	pricing := h.engine.Quote(parcel, query.DistanceKm(), query.Method())
	response := GetQuoteQueryResponse{
		BasePrice:   pricing.BasePrice,
		TravelPrice: pricing.TravelPrice,
		OperatorFee: pricing.OperatorFee,
		TotalPrice:  pricing.TotalPrice,
	}

	tier := "none"
	if parcel != nil {
		response.VolumetricWeightKg = h.engine.VolumetricWeight(*parcel)
		response.BillableWeightKg = h.engine.BillableWeight(*parcel)
		tier = string(parcel.ExpressTier)
	}
	h.metrics.IncrementQuote("preview", tier)

	return response, nil
}
