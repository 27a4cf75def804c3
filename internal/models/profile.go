package models

// TasteProfile is the structured preference record that drives every
// discovery query. Any subset of fields may be empty; an empty string or
// slice means "no preference".
type TasteProfile struct {
	DietaryPreferences []string `json:"dietaryPreferences"`
	PreferredTextures  []string `json:"preferredTextures"`
	PreferredCuisines  []string `json:"preferredCuisines"`
	Features           []string `json:"features"`
	Atmosphere         string   `json:"atmosphere"`
	DiningTheme        string   `json:"diningTheme"`
	Budget             string   `json:"budget"`
	CustomNotes        string   `json:"customNotes"`
	Occasion           string   `json:"occasion"`
	MaxDistance        string   `json:"maxDistance"`
	AgeGroup           string   `json:"ageGroup"`
	ComfortPreference  string   `json:"comfortPreference"`
	HealthGoal         string   `json:"healthGoal"`
	ShowDealsOnly      bool     `json:"showDealsOnly,omitempty"`
	IsHealthyScout     bool     `json:"isHealthyScout,omitempty"`
	OnlineOrderingOnly bool     `json:"onlineOrderingOnly,omitempty"`
	DeliveryPriority   string   `json:"deliveryPriority,omitempty"`
	PreferredFlourTypes []string `json:"preferredFlourTypes"`
	SeatingPreferences  []string `json:"seatingPreferences"`
	Facilities          []string `json:"facilities"`
	MusicVibe           string   `json:"musicVibe"`
	SpecialDecor        []string `json:"specialDecor"`
	NoiseLevel          string   `json:"noiseLevel"`
	LightingStyle       string   `json:"lightingStyle"`
	FavoriteFlavors     []string `json:"favoriteFlavors"`
}

// CompulsoryFeatures are the health tags that must survive every profile
// mutation. Callers merge features, never replace them outright.
var CompulsoryFeatures = []string{"Healthy Choice", "Low Sugar", "High Protein"}

// DefaultProfile returns the profile a session starts with.
func DefaultProfile() TasteProfile {
	return TasteProfile{
		DietaryPreferences: []string{},
		PreferredTextures:  []string{},
		PreferredCuisines:  []string{},
		Features:           append([]string{}, CompulsoryFeatures...),
		Atmosphere:         "Lively",
		DiningTheme:        "Casual",
		Budget:             "₹₹",
		MaxDistance:        "25km",
		MusicVibe:          "Soft Background",
		NoiseLevel:         "Moderate",
		LightingStyle:      "Bright Casual",
		PreferredFlourTypes: []string{},
		SeatingPreferences:  []string{},
		Facilities:          []string{},
		SpecialDecor:        []string{},
		FavoriteFlavors:     []string{},
	}
}

// HasCompulsoryFeatures reports whether the profile still carries the full
// compulsory tag set.
func (p TasteProfile) HasCompulsoryFeatures() bool {
	for _, want := range CompulsoryFeatures {
		found := false
		for _, f := range p.Features {
			if f == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
