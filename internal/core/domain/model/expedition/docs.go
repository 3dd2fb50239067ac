// Package expedition provides the shipment draft aggregate composed by the intake wizard.
//
// The package includes:
//   - Draft: the aggregate root holding everything entered so far and the derived quote
//   - Stage: the seven-step state machine (sender, recipient, package, route, signature,
//     payment, confirmation)
//   - Party, Parcel, Route, Signature, Payment, Pricing: the records the draft is made of
//   - Stage inputs: the raw, unvalidated values a stage submits
//   - Snapshot: the serializable form persisted between requests
//
// Key business rules:
//   - The stage moves one step at a time; confirmation is terminal except for a reset
//   - The base price stays unknown until the package stage has been completed once
//   - The travel price stays 0 until a route with a positive distance is attached
//   - Total = base + travel + operator fee, recomputed on every mutation
//   - A draft without a package photo never goes past the package stage
package expedition
