// Package queue holds the per-contractor work queue.
//
// A Queue is loaded with every active entry (current and queued) of one contractor,
// mutated in memory and saved as a whole inside the unit of work that locked the
// contractor row. Active positions are always 1..k with the current entry at 1.
package queue
