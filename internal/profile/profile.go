// Package profile holds the session's active taste profile and its three
// mutation surfaces: the preference form, quick mission presets, and the
// flavor game. Every mutation path keeps the compulsory health tags present.
package profile

import (
	"fmt"
	"sync"

	"tastetrail/internal/models"
)

// Mission is a quick preset pairing a display title and icon with a
// free-text discovery query.
type Mission struct {
	Title string `json:"title"`
	Query string `json:"query"`
	Icon  string `json:"icon"`
}

// Missions is the built-in mission catalog.
var Missions = []Mission{
	{Title: "Healthy Mumbai", Query: "High protein street food in Mumbai", Icon: "🇮🇳"},
	{Title: "Tokyo Night", Query: "Romantic Sushi in Shibuya with city views", Icon: "🇯🇵"},
	{Title: "Vegan Paris", Query: "Plant-based fine dining in Le Marais", Icon: "🇫🇷"},
	{Title: "Keto NY", Query: "Steakhouse with keto sides in Manhattan", Icon: "🇺🇸"},
}

// MissionByTitle looks up a catalog entry.
func MissionByTitle(title string) (Mission, error) {
	for _, m := range Missions {
		if m.Title == title {
			return m, nil
		}
	}
	return Mission{}, fmt.Errorf("unknown mission: %s", title)
}

// Store owns the current taste profile. Reads return copies; mutations
// replace the whole value, so concurrent readers never see a partial update.
type Store struct {
	mu      sync.RWMutex
	current models.TasteProfile
}

// NewStore creates a store seeded with the session default profile.
func NewStore() *Store {
	return &Store{current: models.DefaultProfile()}
}

// Current returns a snapshot of the active profile.
func (s *Store) Current() models.TasteProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneProfile(s.current)
}

// SetFromForm replaces the whole profile with the submitted form values,
// re-adding the compulsory feature tags if the form dropped them.
func (s *Store) SetFromForm(p models.TasteProfile) models.TasteProfile {
	p.Features = mergeFeatures(p.Features)
	s.mu.Lock()
	s.current = cloneProfile(p)
	s.mu.Unlock()
	return p
}

// ApplyMission resets the profile to the defaults for the given preset: the
// mission query becomes the free-text notes, the search radius goes global,
// and features carry the compulsory trio plus a trending tag.
func (s *Store) ApplyMission(m Mission) models.TasteProfile {
	p := models.DefaultProfile()
	p.CustomNotes = m.Query
	p.MaxDistance = "Global"
	p.Features = mergeFeatures([]string{"trending"})

	s.mu.Lock()
	s.current = cloneProfile(p)
	s.mu.Unlock()
	return p
}

// GamePartial carries the fields the flavor game is allowed to contribute.
type GamePartial struct {
	FavoriteFlavors []string `json:"favoriteFlavors"`
	Features        []string `json:"features"`
}

// MergeFromGame shallow-merges the game's partial profile into the current
// one. Features are merged as a set union including the compulsory trio,
// never replaced outright.
func (s *Store) MergeFromGame(partial GamePartial) models.TasteProfile {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := cloneProfile(s.current)
	if len(partial.FavoriteFlavors) > 0 {
		p.FavoriteFlavors = append([]string{}, partial.FavoriteFlavors...)
	}
	p.Features = mergeFeatures(append(append([]string{}, p.Features...), partial.Features...))

	s.current = p
	return cloneProfile(p)
}

// mergeFeatures deduplicates the given tags and guarantees the compulsory
// trio is present. First occurrence wins the position, so the result is
// deterministic for a given input.
func mergeFeatures(features []string) []string {
	seen := make(map[string]bool, len(features)+len(models.CompulsoryFeatures))
	merged := make([]string, 0, len(features)+len(models.CompulsoryFeatures))
	for _, f := range features {
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		merged = append(merged, f)
	}
	for _, f := range models.CompulsoryFeatures {
		if !seen[f] {
			seen[f] = true
			merged = append(merged, f)
		}
	}
	return merged
}

func cloneProfile(p models.TasteProfile) models.TasteProfile {
	out := p
	out.DietaryPreferences = append([]string{}, p.DietaryPreferences...)
	out.PreferredTextures = append([]string{}, p.PreferredTextures...)
	out.PreferredCuisines = append([]string{}, p.PreferredCuisines...)
	out.Features = append([]string{}, p.Features...)
	out.PreferredFlourTypes = append([]string{}, p.PreferredFlourTypes...)
	out.SeatingPreferences = append([]string{}, p.SeatingPreferences...)
	out.Facilities = append([]string{}, p.Facilities...)
	out.SpecialDecor = append([]string{}, p.SpecialDecor...)
	out.FavoriteFlavors = append([]string{}, p.FavoriteFlavors...)
	return out
}
