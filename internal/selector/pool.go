// Package selector implements the weighted-random content draw and the
// outcome-feedback weight adjustment shared by every content pool. The two
// pools in the system (free-text words, themed mode items) differ only in how
// an item is identified, so the algorithm is generic over the payload type.
package selector

import (
	"math/rand"
	"sort"

	"github.com/nico/impostor-party-server/internal/domain"
)

// Weight bounds. Adjust never moves a weight outside this range.
const (
	MinWeight = 10
	MaxWeight = 500
)

// Outcome is a qualitative round result reported back against an item.
type Outcome string

const (
	OutcomePlayersWon  Outcome = "players_won"
	OutcomeImpostorWon Outcome = "impostor_won"
	OutcomeAbandoned   Outcome = "abandoned"
)

// Valid reports whether o is a known outcome value.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomePlayersWon, OutcomeImpostorWon, OutcomeAbandoned:
		return true
	}
	return false
}

// Delta returns the weight adjustment for an outcome. Abandonment is
// penalized twice as hard as either win is rewarded; the asymmetry is
// deliberate, an abandoned round is a much stronger signal that the content
// fell flat.
func (o Outcome) Delta() int {
	switch o {
	case OutcomePlayersWon:
		return 5
	case OutcomeImpostorWon:
		return 3
	case OutcomeAbandoned:
		return -10
	}
	return 0
}

// Entry pairs an arbitrary payload with its draw weight.
type Entry[T any] struct {
	Item   T
	Weight int
}

// PickIndex draws one entry by weighted random and returns its index in
// entries. It walks the slice in order subtracting weights from a uniform
// draw in [0, totalWeight); the first entry at which the remainder drops to
// zero or below wins. If rounding slack leaves the walk exhausted, the last
// entry is returned rather than an error.
func PickIndex[T any](entries []Entry[T], r *rand.Rand) (int, error) {
	if len(entries) == 0 {
		return 0, domain.ErrEmptyPool
	}

	total := 0
	for _, e := range entries {
		total += e.Weight
	}
	if total <= 0 {
		return 0, domain.ErrEmptyPool
	}

	draw := r.Float64() * float64(total)
	for i, e := range entries {
		draw -= float64(e.Weight)
		if draw <= 0 {
			return i, nil
		}
	}

	return len(entries) - 1, nil
}

// Pick is PickIndex for callers that only need the payload.
func Pick[T any](entries []Entry[T], r *rand.Rand) (T, error) {
	i, err := PickIndex(entries, r)
	if err != nil {
		var zero T
		return zero, err
	}
	return entries[i].Item, nil
}

// Adjust applies an outcome's delta to a weight and clamps the result.
func Adjust(weight int, outcome Outcome) int {
	return Clamp(weight + outcome.Delta())
}

// Clamp bounds a weight to [MinWeight, MaxWeight].
func Clamp(weight int) int {
	if weight < MinWeight {
		return MinWeight
	}
	if weight > MaxWeight {
		return MaxWeight
	}
	return weight
}

// TopByWeight returns up to limit entries sorted by weight descending.
// The input slice is not modified.
func TopByWeight[T any](entries []Entry[T], limit int) []Entry[T] {
	sorted := make([]Entry[T], len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Weight > sorted[j].Weight
	})
	if limit >= 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// Summary holds aggregate weight statistics over a pool.
type Summary struct {
	Count     int     `json:"count"`
	AvgWeight float64 `json:"avgWeight"`
	MaxWeight int     `json:"maxWeight"`
	MinWeight int     `json:"minWeight"`
}

// Summarize computes count/average/max/min over the given entries.
func Summarize[T any](entries []Entry[T]) Summary {
	if len(entries) == 0 {
		return Summary{}
	}

	s := Summary{
		Count:     len(entries),
		MaxWeight: entries[0].Weight,
		MinWeight: entries[0].Weight,
	}
	total := 0
	for _, e := range entries {
		total += e.Weight
		if e.Weight > s.MaxWeight {
			s.MaxWeight = e.Weight
		}
		if e.Weight < s.MinWeight {
			s.MinWeight = e.Weight
		}
	}
	s.AvgWeight = float64(total) / float64(len(entries))
	return s
}
