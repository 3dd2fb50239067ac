package queries_test

import (
	"context"
	"testing"

	"expedition/internal/core/application/usecases/queries"
	"expedition/internal/core/domain/model/expedition"
	"expedition/internal/core/domain/services/pricing"
	"expedition/internal/pkg/errs"
	"expedition/internal/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGetQuoteQuery(t *testing.T) {
	t.Run("valid without parcel", func(t *testing.T) {
		q, err := queries.NewGetQuoteQuery(nil, 10, "")
		require.NoError(t, err)
		require.NoError(t, q.Validate())
		assert.Nil(t, q.Parcel())
		assert.Equal(t, expedition.PaymentCash, q.Method())
	})

	t.Run("photo is not required", func(t *testing.T) {
		q, err := queries.NewGetQuoteQuery(&expedition.ParcelInput{Weight: "2,5"}, 0, "cash")
		require.NoError(t, err)
		require.NotNil(t, q.Parcel())
		assert.InDelta(t, 2.5, q.Parcel().WeightKg, 1e-9)
	})

	t.Run("joins every invalid field", func(t *testing.T) {
		_, err := queries.NewGetQuoteQuery(&expedition.ParcelInput{Weight: ""}, -1, "cheque")
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("rejects a non-numeric weight", func(t *testing.T) {
		for _, raw := range []string{"NaN", "Inf", "0x1p3"} {
			_, err := queries.NewGetQuoteQuery(&expedition.ParcelInput{Weight: raw}, 5, "cash")
			require.ErrorIs(t, err, errs.ErrValueIsInvalid, raw)
		}
	})

	t.Run("zero value is not constructed", func(t *testing.T) {
		err := queries.GetQuoteQuery{}.Validate()
		require.ErrorIs(t, err, queries.ErrGetQuoteQueryIsNotConstructed)
	})
}

func TestGetQuoteQueryHandler_Handle(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	h := queries.NewGetQuoteQueryHandler(pricing.NewEngine(), m)

	tests := []struct {
		name        string
		parcel      *expedition.ParcelInput
		distanceKm  float64
		method      string
		base        *int64
		travel      int64
		fee         int64
		total       *int64
		billableKg  float64
		volumetricK float64
	}{
		{
			name:        "plain two kilo parcel across town",
			parcel:      &expedition.ParcelInput{Weight: "2"},
			distanceKm:  10,
			method:      "cash",
			base:        ptr(2100),
			travel:      1300,
			total:       ptr(3400),
			billableKg:  2,
			volumetricK: 0.2,
		},
		{
			name:        "fragile insured express parcel paid by mobile money",
			parcel:      &expedition.ParcelInput{Weight: "5", Fragile: true, Insured: true, DeclaredValue: "50000", ExpressTier: "24h"},
			distanceKm:  0,
			method:      "mobileMoney",
			base:        ptr(10400),
			fee:         100,
			total:       ptr(10500),
			billableKg:  5,
			volumetricK: 0.2,
		},
		{
			name:       "travel only",
			distanceKm: 2.5,
			method:     "recipientPays",
			travel:     700,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := queries.NewGetQuoteQuery(tt.parcel, tt.distanceKm, tt.method)
			require.NoError(t, err)

			got, err := h.Handle(t.Context(), q)
			require.NoError(t, err)

			assert.Equal(t, tt.base, got.BasePrice)
			assert.Equal(t, tt.travel, got.TravelPrice)
			assert.Equal(t, tt.fee, got.OperatorFee)
			assert.Equal(t, tt.total, got.TotalPrice)
			assert.InDelta(t, tt.billableKg, got.BillableWeightKg, 1e-9)
			assert.InDelta(t, tt.volumetricK, got.VolumetricWeightKg, 1e-9)
		})
	}

	assert.InDelta(t, 1, testutil.ToFloat64(m.Quotes.WithLabelValues("preview", "none")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Quotes.WithLabelValues("preview", "24h")), 0)
}

func TestGetQuoteQueryHandler_Handle_Errors(t *testing.T) {
	h := queries.NewGetQuoteQueryHandler(pricing.NewEngine(), nil)

	_, err := h.Handle(t.Context(), queries.GetQuoteQuery{})
	require.ErrorIs(t, err, queries.ErrGetQuoteQueryIsNotConstructed)

	q, _ := queries.NewGetQuoteQuery(nil, 1, "cash")
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, err = h.Handle(ctx, q)
	require.ErrorIs(t, err, context.Canceled)
}

func ptr(v int64) *int64 { return &v }
