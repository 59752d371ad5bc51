// Package kernel provides the value objects shared by the dispatch domain model:
//   - UUID: identifiers for jobs, contractors, queue entries, bids and history entries
//   - GeoPoint: a validated latitude/longitude pair with a flat-earth distance estimate
//   - Money: a non-negative amount in cents
//
// Zero values are invalid; every type exposes Validate and must be created through
// its constructor.
package kernel
