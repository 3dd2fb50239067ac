package expedition_test

import (
	"expedition/internal/core/domain/model/expedition"
	"expedition/internal/core/domain/model/kernel"
)

// flatQuoter prices every parcel the same and charges per kilometre.
type flatQuoter struct {
	handling int64
	perKm    int64
	fee      int64
}

func (q flatQuoter) HandlingPrice(expedition.Parcel) int64 { return q.handling }

func (q flatQuoter) TravelPrice(distanceKm float64) int64 {
	if distanceKm <= 0 {
		return 0
	}
	return int64(distanceKm) * q.perKm
}

func (q flatQuoter) OperatorFee(method expedition.PaymentMethod) int64 {
	if method == expedition.PaymentMobileMoney {
		return q.fee
	}
	return 0
}

var testQuoter = flatQuoter{handling: 2000, perKm: 100, fee: 100}

func sender() expedition.Party {
	c, _ := kernel.NewCoordinates(3.8480, 11.5021)
	return expedition.Party{
		FirstName:   "Alice",
		LastName:    "Mbarga",
		Phone:       "699123456",
		Country:     "Cameroun",
		Region:      "Centre",
		City:        "Yaoundé",
		Address:     "Rue 1.234",
		Landmark:    "Carrefour Bastos",
		Coordinates: &c,
	}
}

func recipient() expedition.Party {
	return expedition.Party{
		FirstName: "Bob",
		LastName:  "Etoa",
		Phone:     "677654321",
		Country:   "Cameroun",
		Region:    "Littoral",
		City:      "Douala",
		Address:   "Boulevard de la Liberté",
		Landmark:  "Akwa",
	}
}

func parcel() expedition.Parcel {
	return expedition.Parcel{
		Photo:       &expedition.Photo{Inline: "data:image/png;base64,AAAA"},
		Designation: "Books",
		WeightKg:    2,
		ExpressTier: expedition.TierStandard,
	}
}

func signature() expedition.Signature {
	img := "data:image/png;base64,SIGN"
	return expedition.Signature{ImageData: &img}
}

// draftAt walks a fresh draft up to stage with valid data.
func draftAt(stage expedition.Stage) *expedition.Draft {
	d := expedition.NewDraft()
	steps := []func() error{
		func() error { return d.CompleteSender(sender(), testQuoter) },
		func() error { return d.CompleteRecipient(recipient(), testQuoter) },
		func() error { return d.CompletePackage(parcel(), testQuoter) },
		func() error {
			if err := d.AttachRoute(expedition.Route{DistanceKm: 12, DurationMinutes: 25}, testQuoter); err != nil {
				return err
			}
			return d.CompleteRoute()
		},
		func() error { return d.CompleteSignature(signature()) },
		func() error { return d.Confirm("TRK-1") },
	}
	for i := 0; i < int(stage)-1; i++ {
		if err := steps[i](); err != nil {
			panic(err)
		}
	}
	return d
}
