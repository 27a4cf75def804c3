package session

import (
	"sort"

	"tastetrail/internal/models"
)

// SortKey selects the ranking axis used for display.
type SortKey string

const (
	// SortByMatch orders by the discovery capability's fit confidence.
	SortByMatch SortKey = "match"
	// SortByRating orders by star rating.
	SortByRating SortKey = "rating"
)

// Present combines the last result set with the session's locally-authored
// reviews and orders it by the chosen key. The merge is computed fresh on
// every call and never written back into the stored results: each
// restaurant's display reviews are its local reviews (newest first) followed
// by the server-supplied ones, unmodified. Missing scores and ratings sort
// as zero; equal keys keep their incoming relative order.
func Present(results []models.Restaurant, localReviews map[string][]models.Review, key SortKey) []models.Restaurant {
	out := make([]models.Restaurant, len(results))
	for i, r := range results {
		out[i] = r
		if local := localReviews[r.Name]; len(local) > 0 {
			merged := make([]models.Review, 0, len(local)+len(r.Reviews))
			merged = append(merged, local...)
			merged = append(merged, r.Reviews...)
			out[i].Reviews = merged
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		switch key {
		case SortByRating:
			return out[i].Rating > out[j].Rating
		default:
			return out[i].MatchScore > out[j].MatchScore
		}
	})
	return out
}

// Present returns the session's restaurants merged with its local reviews
// and sorted by the given key.
func (s *Session) Present(key SortKey) []models.Restaurant {
	s.mu.RLock()
	results := s.restaurants
	local := s.localReviews
	s.mu.RUnlock()
	return Present(results, local, key)
}
