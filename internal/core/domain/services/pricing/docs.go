// Package pricing turns parcel attributes, route distance and payment method into a quote.
//
// The package includes:
//   - Tariff: the fees, rates and multipliers of the price list
//   - Engine: pure functions pricing handling, travel and mobile money fees
//
// Handling price:
//
//	volumetric = L·W·H / 1 000 000 · 200   (blank dimensions count as 10 cm)
//	billable   = max(weight, volumetric)
//	base       = 1500 + 300·billable
//	           + 1200 fragile + 800 perishable + 500 liquid + 2% of declared value if insured
//	           + 1000 pickup + 1000 delivery
//	handling   = round(base × express multiplier)   (standard 1.0, 48h 1.5, 24h 2.0)
//
// Travel price is 0 for an unresolved route, round(500 + 80·km) otherwise.
// Mobile money adds an operator fee of 100.
package pricing
