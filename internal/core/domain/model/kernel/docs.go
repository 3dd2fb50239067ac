// Package kernel provides the value objects shared by the expedition domain.
//
// The package includes:
//   - UUID: identifier of a wizard session (and of anything else needing one)
//   - Coordinates: a validated latitude/longitude pair used for pickup and delivery points
//
// Both are immutable, safe for concurrent use, and invalid as zero values: create
// them through their constructors.
package kernel
