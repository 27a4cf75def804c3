package profile

import (
	"testing"

	"tastetrail/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStoreDefaults(t *testing.T) {
	s := NewStore()
	p := s.Current()

	assert.True(t, p.HasCompulsoryFeatures())
	assert.Equal(t, "25km", p.MaxDistance)
	assert.Equal(t, "Lively", p.Atmosphere)
	assert.Empty(t, p.CustomNotes)
}

func TestSetFromForm(t *testing.T) {
	tests := []struct {
		name     string
		features []string
	}{
		{name: "form keeps compulsory tags", features: []string{"Healthy Choice", "Low Sugar", "High Protein", "budget"}},
		{name: "form dropped compulsory tags", features: []string{"budget", "trending"}},
		{name: "empty features", features: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			form := models.DefaultProfile()
			form.CustomNotes = "late night ramen"
			form.Features = tt.features

			got := s.SetFromForm(form)

			assert.True(t, got.HasCompulsoryFeatures())
			assert.Equal(t, "late night ramen", s.Current().CustomNotes)
			for _, f := range tt.features {
				assert.Contains(t, got.Features, f)
			}
		})
	}
}

func TestApplyMission(t *testing.T) {
	s := NewStore()

	for _, m := range Missions {
		t.Run(m.Title, func(t *testing.T) {
			got := s.ApplyMission(m)

			assert.Equal(t, m.Query, got.CustomNotes)
			assert.Equal(t, "Global", got.MaxDistance)
			assert.Contains(t, got.Features, "trending")
			assert.True(t, got.HasCompulsoryFeatures())
		})
	}
}

func TestMissionByTitle(t *testing.T) {
	m, err := MissionByTitle("Tokyo Night")
	require.NoError(t, err)
	assert.Equal(t, "Romantic Sushi in Shibuya with city views", m.Query)

	_, err = MissionByTitle("Mars Station")
	assert.Error(t, err)
}

func TestMergeFromGame(t *testing.T) {
	s := NewStore()
	s.SetFromForm(func() models.TasteProfile {
		p := models.DefaultProfile()
		p.Features = []string{"budget"}
		p.CustomNotes = "something smoky"
		return p
	}())

	got := s.MergeFromGame(GamePartial{
		FavoriteFlavors: []string{"umami", "spicy"},
		Features:        []string{"street-food"},
	})

	// Union of prior, game-derived, and compulsory tags.
	assert.Contains(t, got.Features, "budget")
	assert.Contains(t, got.Features, "street-food")
	assert.True(t, got.HasCompulsoryFeatures())
	assert.Equal(t, []string{"umami", "spicy"}, got.FavoriteFlavors)

	// Unrelated fields survive the shallow merge.
	assert.Equal(t, "something smoky", got.CustomNotes)
}

func TestMergeFromGameEmptyPartial(t *testing.T) {
	s := NewStore()
	before := s.Current()

	got := s.MergeFromGame(GamePartial{})

	assert.True(t, got.HasCompulsoryFeatures())
	assert.Equal(t, before.FavoriteFlavors, got.FavoriteFlavors)
}

func TestCurrentReturnsCopy(t *testing.T) {
	s := NewStore()
	p := s.Current()
	p.Features[0] = "mutated"

	assert.True(t, s.Current().HasCompulsoryFeatures())
}

func TestMergeFeaturesDeduplicates(t *testing.T) {
	merged := mergeFeatures([]string{"trending", "trending", "", "Low Sugar"})

	counts := map[string]int{}
	for _, f := range merged {
		counts[f]++
	}
	for f, n := range counts {
		assert.Equal(t, 1, n, "feature %q duplicated", f)
	}
	assert.NotContains(t, merged, "")
}
