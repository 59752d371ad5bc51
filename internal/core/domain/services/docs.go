// Package services provides domain services that work across aggregates:
//
//   - ContractorSelector picks the contractor that receives a job.
//   - BidRanker ranks the pending bids of a job.
//
// Both are pure. Loading candidates and persisting the outcome is left to the
// command handlers.
package services
