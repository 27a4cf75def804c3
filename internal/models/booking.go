package models

// Booking status values.
const (
	BookingConfirmed = "confirmed"
	BookingPending   = "pending"
	BookingCancelled = "cancelled"
)

// Booking is created client-side when a booking flow is confirmed. Bookings
// are session-scoped and never removed.
type Booking struct {
	ID             string `json:"id"`
	RestaurantName string `json:"restaurantName"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	Guests         int    `json:"guests"`
	Status         string `json:"status"`
	Cuisine        string `json:"cuisine,omitempty"`
	Address        string `json:"address,omitempty"`
}

// User is the identity record persisted across sessions.
type User struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Gender string   `json:"gender"`
	Age    int      `json:"age"`
	Avatar string   `json:"avatar,omitempty"`
	Email  string   `json:"email,omitempty"`
	Phone  string   `json:"phone,omitempty"`
	Badges []string `json:"badges,omitempty"`
}

// ActiveOrder is the ephemeral order-progress notification shown while a
// mock delivery is underway.
type ActiveOrder struct {
	RestaurantName string `json:"restaurantName"`
	Status         string `json:"status"`
	Progress       int    `json:"progress"`
}
