package services

import (
	"cmp"
	"slices"
	"time"

	"dispatch/internal/core/domain/model/bid"
)

// Score weights of the normalized price, time and quality components.
const (
	PriceWeight   = 0.4
	TimeWeight    = 0.3
	QualityWeight = 0.3
)

// BidRanker recomputes ranks over the pending bids of one job from scratch.
//
// priceRank orders by amount ascending, timeRank by estimated duration ascending and
// qualityRank by contractor rating descending; bids without a duration or rating rank
// last. Ties keep insertion order. Each rank r of N bids is normalized as (N-r+1)/N
// and the score is their weighted sum. Bids that are no longer pending keep their
// last ranking.
//
// Example:
//
//	ranker := services.NewBidRanker()
//	if err := ranker.Rank(bids); err != nil {
//	    return err
//	}
//	for _, b := range bids {
//	    if b.IsPending() {
//	        fmt.Println(b.ID(), b.Ranking().Score)
//	    }
//	}
type BidRanker struct{}

// NewBidRanker returns a stateless ranker; one value can be shared between goroutines.
func NewBidRanker() BidRanker {
	return BidRanker{}
}

// Rank overwrites the ranking of every pending bid in bids. bids may hold bids in any
// status and must all belong to one job. It fails only when a bid is not constructed.
//
// Example, three pending bids on one job:
//
//	A: 100.00, 2h, rating 4.5   -> price 1, time 2, quality 1
//	B: 120.00, 1h, rating 4.0   -> price 2, time 1, quality 2
//	C: 150.00, no estimate, unrated -> price 3, time 3, quality 3
//
//	A.Score = 0.4*3/3 + 0.3*2/3 + 0.3*3/3 = 0.9
func (r BidRanker) Rank(bids []*bid.Bid) error {
	pending := make([]*bid.Bid, 0, len(bids))
	for _, b := range bids {
		if err := b.Validate(); err != nil {
			return err
		}
		if b.IsPending() {
			pending = append(pending, b)
		}
	}
	slices.SortStableFunc(pending, func(a, b *bid.Bid) int {
		return a.CreatedAt().Compare(b.CreatedAt())
	})

	n := len(pending)
	if n == 0 {
		return nil
	}

	priceRanks := ranksBy(pending, func(a, b *bid.Bid) int {
		return a.Amount().Compare(b.Amount())
	})
	timeRanks := ranksBy(pending, func(a, b *bid.Bid) int {
		return compareMissingLast(a.EstimatedDuration(), b.EstimatedDuration(), cmp.Compare[time.Duration])
	})
	qualityRanks := ranksBy(pending, func(a, b *bid.Bid) int {
		return compareMissingLast(a.ContractorRating(), b.ContractorRating(), func(x, y float64) int {
			return cmp.Compare(y, x)
		})
	})

	for i, b := range pending {
		ranking := bid.Ranking{
			PriceRank:   priceRanks[i],
			TimeRank:    timeRanks[i],
			QualityRank: qualityRanks[i],
		}
		ranking.Score = PriceWeight*normalize(ranking.PriceRank, n) +
			TimeWeight*normalize(ranking.TimeRank, n) +
			QualityWeight*normalize(ranking.QualityRank, n)
		if err := b.SetRanking(ranking); err != nil {
			return err
		}
	}
	return nil
}

// Lowest returns the pending bid with price rank 1, or nil.
//
// It relies on the rankings set by Rank. Ties on amount go to the earlier bid, so the
// result is deterministic for auto-accept.
func (r BidRanker) Lowest(bids []*bid.Bid) *bid.Bid {
	for _, b := range bids {
		if b.IsPending() && b.Ranking() != nil && b.Ranking().PriceRank == 1 {
			return b
		}
	}
	return nil
}

// ranksBy returns the 1-based rank of each bid in its original slice position.
func ranksBy(bids []*bid.Bid, compare func(a, b *bid.Bid) int) []int {
	order := make([]int, len(bids))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(i, j int) int {
		return compare(bids[i], bids[j])
	})

	ranks := make([]int, len(bids))
	for rank, idx := range order {
		ranks[idx] = rank + 1
	}
	return ranks
}

// compareMissingLast orders nil after every value.
func compareMissingLast[T any](a, b *T, compare func(x, y T) int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return compare(*a, *b)
}

// normalize maps rank 1 of n to 1.0 and rank n to 1/n.
func normalize(rank, n int) float64 {
	return float64(n-rank+1) / float64(n)
}
