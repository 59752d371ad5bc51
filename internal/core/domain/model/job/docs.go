// Package job provides the Job aggregate: a customer service request that is
// dispatched to a field contractor directly or through open bidding.
//
// Status workflow:
//
//	new ──> assigned ──> en_route ──> on_site ──> completed
//	 ^         │  └──────────┴────────────┴─────> completed
//	 └─────────┘ (unassign)
//	any non-terminal status ──> cancelled
//
// Every transition appends one HistoryEntry. Entries are handed to the repository
// through PendingHistory and are never changed once written.
package job
