package discovery

import (
	"context"
	"strings"

	"tastetrail/internal/models"
)

// MockFinder is the canned demo capability. It is synchronous, local,
// deterministic for a given query, never fails, and returns no sources.
type MockFinder struct{}

// NewMockFinder returns the demo finder.
func NewMockFinder() *MockFinder { return &MockFinder{} }

// Find keys a canned result set off the free-text craving notes, falling
// back to the voice query when the notes are empty.
func (m *MockFinder) Find(_ context.Context, q Query) (*Result, error) {
	query := q.Profile.CustomNotes
	if query == "" {
		query = q.VoiceQuery
	}
	return &Result{
		Restaurants: MockRestaurants(query),
		Sources:     []models.GroundingSource{},
		Raw:         "Demo results loaded.",
	}, nil
}

// MockRestaurants picks the canned set matching the query text.
func MockRestaurants(query string) []models.Restaurant {
	q := strings.ToLower(query)
	switch {
	case strings.Contains(q, "sushi") || strings.Contains(q, "japan"):
		return cannedSet(sushiSet)
	case strings.Contains(q, "pizza") || strings.Contains(q, "ital"):
		return cannedSet(pizzaSet)
	default:
		return cannedSet(streetFoodSet)
	}
}

// cannedSet deep-copies a canned list so callers can never mutate the
// shared fixtures.
func cannedSet(set []models.Restaurant) []models.Restaurant {
	out := make([]models.Restaurant, len(set))
	for i, r := range set {
		out[i] = r
		out[i].Reviews = append([]models.Review{}, r.Reviews...)
	}
	return out
}

var sushiSet = []models.Restaurant{
	{
		Name:        "Sushi Zen",
		Cuisine:     "Japanese",
		Rating:      4.8,
		PriceRange:  "₹₹₹",
		Description: "Intimate omakase counter with fish flown in daily.",
		Address:     "12 Lantern Lane, Shibuya",
		MatchScore:  96,
		WhyMatch:    "Omakase pacing fits a quiet, high-protein evening.",
		Reviews: []models.Review{
			{Author: "Mika", Text: "The toro melted instantly.", Rating: 5, Sentiment: models.SentimentPositive},
			{Author: "Dev", Text: "Pricey but worth every yen.", Rating: 4, Sentiment: models.SentimentPositive},
		},
		FlavorProfile: &models.FlavorProfile{Spicy: 10, Sweet: 25, Umami: 95},
		PopularDishes: []models.PopularDish{{Name: "Chef's Omakase", Price: "₹₹₹"}},
		HealthScore:   88,
	},
	{
		Name:        "Kaiten Express",
		Cuisine:     "Japanese",
		Rating:      4.2,
		PriceRange:  "₹₹",
		Description: "Conveyor-belt sushi with a daily low-sugar board.",
		Address:     "88 Harbor Road",
		MatchScore:  84,
		WhyMatch:    "Fast seats and a dedicated low-sugar selection.",
		Reviews: []models.Review{
			{Author: "Ana", Text: "Great quick lunch.", Rating: 4, Sentiment: models.SentimentPositive},
		},
		FlavorProfile: &models.FlavorProfile{Spicy: 15, Sweet: 30, Umami: 80},
	},
}

var pizzaSet = []models.Restaurant{
	{
		Name:        "Forno Nonna",
		Cuisine:     "Italian",
		Rating:      4.6,
		PriceRange:  "₹₹",
		Description: "Wood-fired sourdough pies with whole-wheat bases.",
		Address:     "3 Olive Court",
		MatchScore:  92,
		WhyMatch:    "Whole-wheat crust option matches the flour preference.",
		Reviews: []models.Review{
			{Author: "Luca", Text: "Crust like Naples.", Rating: 5, Sentiment: models.SentimentPositive},
			{Author: "Priya", Text: "A bit loud on weekends.", Rating: 3, Sentiment: models.SentimentNeutral},
		},
		FlavorProfile: &models.FlavorProfile{Spicy: 20, Sweet: 35, Umami: 70},
	},
	{
		Name:        "Margherita Lab",
		Cuisine:     "Italian",
		Rating:      4.3,
		PriceRange:  "₹₹",
		Description: "Minimalist menu, maximal tomatoes.",
		Address:     "41 Basil Street",
		MatchScore:  81,
		WhyMatch:    "Simple menu suits a casual family table.",
		Reviews:     []models.Review{},
	},
}

var streetFoodSet = []models.Restaurant{
	{
		Name:        "Tikka Nodes",
		Cuisine:     "Indian",
		Rating:      4.7,
		PriceRange:  "₹",
		Description: "Grilled high-protein street tikka, counter seating only.",
		Address:     "Stall 7, Carter Market",
		MatchScore:  94,
		WhyMatch:    "Grilled tikka hits the high-protein requirement head on.",
		Reviews: []models.Review{
			{Author: "Ravi", Text: "Best chaat on the block.", Rating: 5, Sentiment: models.SentimentPositive},
			{Author: "Sam", Text: "Queue moves slowly at peak.", Rating: 3, Sentiment: models.SentimentNeutral},
		},
		FlavorProfile: &models.FlavorProfile{Spicy: 75, Sweet: 20, Umami: 60},
		HealthScore:   79,
	},
	{
		Name:        "Green Bowl Collective",
		Cuisine:     "Fusion",
		Rating:      4.4,
		PriceRange:  "₹₹",
		Description: "Build-your-own grain bowls with macro counts on the board.",
		Address:     "19 Mill Road",
		MatchScore:  87,
		WhyMatch:    "Macro-labelled bowls line up with the health goal.",
		Reviews: []models.Review{
			{Author: "Lena", Text: "Love the quinoa base.", Rating: 4, Sentiment: models.SentimentPositive},
		},
		HealthScore: 91,
	},
	{
		Name:        "Midnight Dosa",
		Cuisine:     "South Indian",
		Rating:      4.1,
		PriceRange:  "₹",
		Description: "Paper dosas until 3am, filter coffee all night.",
		Address:     "2 Junction Cross",
		MatchScore:  76,
		WhyMatch:    "Late hours cover post-event cravings.",
		Reviews:     []models.Review{},
	},
}
