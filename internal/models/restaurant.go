package models

// Restaurant is an immutable search result snapshot. Results are never
// persisted or deduplicated across searches.
type Restaurant struct {
	Name           string   `json:"name"`
	Cuisine        string   `json:"cuisine"`
	Rating         float64  `json:"rating"`
	PriceRange     string   `json:"priceRange"`
	Description    string   `json:"description"`
	Address        string   `json:"address"`
	Phone          string   `json:"phone,omitempty"`
	OperatingHours string   `json:"operatingHours,omitempty"`
	MatchScore     float64  `json:"matchScore"`
	WhyMatch       string   `json:"whyMatch"`
	Reviews        []Review `json:"reviews"`

	FlavorProfile *FlavorProfile `json:"flavorProfile,omitempty"`

	// Ordering-platform deep links.
	SwiggyURL   string `json:"swiggyUrl,omitempty"`
	ZomatoURL   string `json:"zomatoUrl,omitempty"`
	MagicpinURL string `json:"magicpinUrl,omitempty"`
	UberEatsURL string `json:"uberEatsUrl,omitempty"`
	OrderURL    string `json:"orderUrl,omitempty"`
	MapsURL     string `json:"mapsUrl,omitempty"`

	Location      *Coordinates  `json:"location,omitempty"`
	PopularDishes []PopularDish `json:"popularDishes,omitempty"`

	HealthScore           float64  `json:"healthScore,omitempty"`
	NutritionalHighlights []string `json:"nutritionalHighlights,omitempty"`
	AllergenAlerts        []string `json:"allergenAlerts,omitempty"`

	BestPlatform string `json:"bestPlatform,omitempty"`
	ActiveDeal   string `json:"activeDeal,omitempty"`
}

// FlavorProfile holds per-axis flavor intensity on a 0-100 scale.
type FlavorProfile struct {
	Spicy int `json:"spicy"`
	Sweet int `json:"sweet"`
	Umami int `json:"umami"`
}

// Coordinates is a geographic point.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// PopularDish is a signature dish surfaced with a restaurant match.
type PopularDish struct {
	Name        string `json:"name"`
	Price       string `json:"price,omitempty"`
	Description string `json:"description,omitempty"`
	OrderURL    string `json:"orderUrl,omitempty"`
}

// Review sentiment classifications.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// Review is a single restaurant review, either scouted by the discovery
// capability or authored locally during the session.
type Review struct {
	Author          string         `json:"author"`
	Text            string         `json:"text"`
	Rating          float64        `json:"rating"`
	Sentiment       string         `json:"sentiment"`
	Date            string         `json:"date,omitempty"`
	IsUserGenerated bool           `json:"isUserGenerated,omitempty"`
	Images          []string       `json:"images,omitempty"`
	Metrics         *ReviewMetrics `json:"metrics,omitempty"`
}

// ReviewMetrics scores a review along independent quality axes.
type ReviewMetrics struct {
	Taste        float64 `json:"taste"`
	Health       float64 `json:"health"`
	Presentation float64 `json:"presentation"`
	Delivery     float64 `json:"delivery"`
}

// GroundingSource is an attribution record accompanying a result set. It is
// carried alongside the restaurant list, not attached to individual results.
type GroundingSource struct {
	Title string `json:"title,omitempty"`
	URI   string `json:"uri"`
}
