package services

import (
	"cmp"
	"errors"
	"slices"
	"time"

	"dispatch/internal/core/domain/model/contractor"
	"dispatch/internal/core/domain/model/job"
	"dispatch/internal/core/domain/model/kernel"
)

// ErrNoCandidate is returned when no contractor is eligible for a job. It is an expected
// outcome, not a failure.
var ErrNoCandidate = errors.New("no eligible contractor")

// Candidate is a contractor together with the facts the selector needs about it today.
type Candidate struct {
	Contractor  *contractor.Contractor
	ActiveJobs  int
	HasTimeOff  bool
	HasOverride bool
}

// ContractorSelector chooses which contractor receives a job.
//
// Eligible contractors are available, have no approved time off or availability override
// today, and cover the job location with their service radius. Among them an empty queue
// wins, then the higher tier, then the fewer active jobs, then the longest wait since the
// last assignment (never assigned first). The contractor id breaks remaining ties.
//
// Example:
//
//	selector := services.NewContractorSelector()
//	winner, err := selector.Select(j, candidates, previousContractorID)
//	if errors.Is(err, services.ErrNoCandidate) {
//	    // leave the job waiting
//	}
type ContractorSelector struct{}

// NewContractorSelector returns a stateless selector.
func NewContractorSelector() ContractorSelector {
	return ContractorSelector{}
}

// Select returns the best candidate for the job, skipping excluded contractor ids.
//
// Parameters:
//   - j: the job to place; only its location is consulted
//   - candidates: every contractor to consider, with today's queue length and calendar state
//   - exclude: contractor ids that must not receive the job
//
// Returns:
//   - the winning contractor
//   - ErrNoCandidate when nobody is eligible
//   - a validation error when the job or a candidate contractor is not constructed
func (s ContractorSelector) Select(j *job.Job, candidates []Candidate, exclude ...kernel.UUID) (*contractor.Contractor, error) {
	ranked, err := s.Rank(j, candidates, exclude...)
	if err != nil {
		return nil, err
	}
	if len(ranked) == 0 {
		return nil, ErrNoCandidate
	}
	return ranked[0].Contractor, nil
}

// Rank returns the eligible candidates ordered best first.
//
// The returned slice is new; candidates is not reordered. Select takes its first element.
func (s ContractorSelector) Rank(j *job.Job, candidates []Candidate, exclude ...kernel.UUID) ([]Candidate, error) {
	if err := j.Validate(); err != nil {
		return nil, err
	}

	eligible := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if err := c.Contractor.Validate(); err != nil {
			return nil, err
		}
		if kernel.ContainsUUID(exclude, c.Contractor.ID()) {
			continue
		}
		if !c.Contractor.IsAvailable() || c.HasTimeOff || c.HasOverride {
			continue
		}
		serves, err := c.Contractor.Serves(j.Location())
		if err != nil {
			return nil, err
		}
		if !serves {
			continue
		}
		eligible = append(eligible, c)
	}

	slices.SortFunc(eligible, compareCandidates)
	return eligible, nil
}

// compareCandidates only looks at whether a queue is empty first; the exact number of
// active jobs is a later criterion, after tier.
func compareCandidates(a, b Candidate) int {
	if c := cmp.Compare(min(a.ActiveJobs, 1), min(b.ActiveJobs, 1)); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Contractor.Tier(), a.Contractor.Tier()); c != 0 {
		return c
	}
	if c := cmp.Compare(a.ActiveJobs, b.ActiveJobs); c != 0 {
		return c
	}
	if c := compareLastAssigned(a.Contractor.LastAssignedAt(), b.Contractor.LastAssignedAt()); c != 0 {
		return c
	}
	return a.Contractor.ID().Compare(b.Contractor.ID())
}

// compareLastAssigned puts never-assigned contractors first, then the oldest timestamp.
func compareLastAssigned(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return a.Compare(*b)
}
