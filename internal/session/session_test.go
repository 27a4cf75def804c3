package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"tastetrail/internal/discovery"
	"tastetrail/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSpeaker captures everything spoken during a test.
type recordingSpeaker struct {
	mu     sync.Mutex
	spoken []string
}

func (r *recordingSpeaker) Speak(_ context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spoken = append(r.spoken, text)
	return nil
}

func (r *recordingSpeaker) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.spoken)
}

func testUser() models.User {
	return models.User{ID: "u1", Name: "Asha", Gender: "female", Age: 29}
}

func resultSet(restaurants ...models.Restaurant) *discovery.Result {
	return &discovery.Result{
		Restaurants: restaurants,
		Sources:     []models.GroundingSource{{Title: "Guide", URI: "https://example.com"}},
	}
}

func TestCompleteSearchAppliesLatest(t *testing.T) {
	s := New(testUser(), nil)
	defer s.Close()

	s.BeginSearch(1)
	assert.True(t, s.Loading())

	applied := s.CompleteSearch(1, resultSet(models.Restaurant{Name: "Sushi Zen"}), nil)
	assert.True(t, applied)
	assert.False(t, s.Loading())
	require.Len(t, s.Restaurants(), 1)
	assert.Len(t, s.Sources(), 1)
}

func TestCompleteSearchDiscardsStale(t *testing.T) {
	s := New(testUser(), nil)
	defer s.Close()

	s.BeginSearch(1)
	s.BeginSearch(2)

	// The slow first search resolves after the second was dispatched.
	applied := s.CompleteSearch(1, resultSet(models.Restaurant{Name: "Stale Place"}), nil)
	assert.False(t, applied)
	assert.Empty(t, s.Restaurants())
	assert.True(t, s.Loading(), "stale completion must not clear the newer in-flight marker")

	applied = s.CompleteSearch(2, resultSet(models.Restaurant{Name: "Fresh Place"}), nil)
	assert.True(t, applied)
	assert.Equal(t, "Fresh Place", s.Restaurants()[0].Name)
}

func TestCompleteSearchErrorKeepsPriorResults(t *testing.T) {
	s := New(testUser(), nil)
	defer s.Close()

	s.BeginSearch(1)
	require.True(t, s.CompleteSearch(1, resultSet(models.Restaurant{Name: "Sushi Zen"}), nil))

	s.BeginSearch(2)
	scoutErr := discovery.NewScoutError(discovery.CodeNetworkError, errors.New("dial timeout"))
	require.True(t, s.CompleteSearch(2, nil, scoutErr))

	require.NotNil(t, s.LastError())
	assert.Equal(t, discovery.CodeNetworkError, s.LastError().Code)
	// Result and source lists are unchanged from their prior values.
	require.Len(t, s.Restaurants(), 1)
	assert.Equal(t, "Sushi Zen", s.Restaurants()[0].Name)
	assert.Len(t, s.Sources(), 1)
}

func TestBeginSearchClearsLastError(t *testing.T) {
	s := New(testUser(), nil)
	defer s.Close()

	s.BeginSearch(1)
	s.CompleteSearch(1, nil, discovery.NewScoutError(discovery.CodeLogicCrash, errors.New("boom")))
	require.NotNil(t, s.LastError())

	s.BeginSearch(2)
	assert.Nil(t, s.LastError())
}

func TestPresentSortsByMatchScore(t *testing.T) {
	results := []models.Restaurant{
		{Name: "B", MatchScore: 80, Rating: 4.9},
		{Name: "A", MatchScore: 95, Rating: 3.1},
		{Name: "C", Rating: 4.5}, // missing score sorts as zero
	}

	got := Present(results, nil, SortByMatch)

	require.Len(t, got, 3)
	assert.Equal(t, "A", got[0].Name)
	assert.Equal(t, "B", got[1].Name)
	assert.Equal(t, "C", got[2].Name)
}

func TestPresentSortsByRating(t *testing.T) {
	results := []models.Restaurant{
		{Name: "B", MatchScore: 80, Rating: 4.9},
		{Name: "A", MatchScore: 95, Rating: 3.1},
		{Name: "C", MatchScore: 99}, // missing rating sorts as zero
	}

	got := Present(results, nil, SortByRating)

	assert.Equal(t, "B", got[0].Name)
	assert.Equal(t, "A", got[1].Name)
	assert.Equal(t, "C", got[2].Name)
}

func TestPresentEqualKeysKeepOrder(t *testing.T) {
	results := []models.Restaurant{
		{Name: "First", MatchScore: 90},
		{Name: "Second", MatchScore: 90},
		{Name: "Third", MatchScore: 90},
	}

	got := Present(results, nil, SortByMatch)

	assert.Equal(t, "First", got[0].Name)
	assert.Equal(t, "Second", got[1].Name)
	assert.Equal(t, "Third", got[2].Name)
}

func TestPresentMergesLocalReviewsFirst(t *testing.T) {
	server := []models.Review{
		{Author: "Mika", Text: "great", Rating: 5, Sentiment: models.SentimentPositive},
		{Author: "Dev", Text: "good", Rating: 4, Sentiment: models.SentimentPositive},
	}
	results := []models.Restaurant{{Name: "Sushi Zen", MatchScore: 96, Reviews: server}}
	local := map[string][]models.Review{
		"Sushi Zen": {{Author: "Asha", Text: "mine", Rating: 5, IsUserGenerated: true}},
	}

	got := Present(results, local, SortByMatch)

	require.Len(t, got[0].Reviews, 3)
	assert.Equal(t, "Asha", got[0].Reviews[0].Author)
	assert.Equal(t, "Mika", got[0].Reviews[1].Author)
	// The stored result set is left untouched.
	assert.Len(t, results[0].Reviews, 2)
}

func TestSessionPresentComputedFresh(t *testing.T) {
	s := New(testUser(), nil)
	defer s.Close()

	s.BeginSearch(1)
	require.True(t, s.CompleteSearch(1, resultSet(models.Restaurant{
		Name:    "Sushi Zen",
		Reviews: []models.Review{{Author: "Mika"}, {Author: "Dev"}},
	}), nil))

	assert.Len(t, s.Present(SortByMatch)[0].Reviews, 2)

	s.AddLocalReview("Sushi Zen", models.Review{Author: "Asha", Text: "mine", Rating: 5})
	got := s.Present(SortByMatch)
	require.Len(t, got[0].Reviews, 3)
	assert.Equal(t, "Asha", got[0].Reviews[0].Author)
	assert.True(t, got[0].Reviews[0].IsUserGenerated)

	// Stored results stay unmodified under the merge.
	assert.Len(t, s.Restaurants()[0].Reviews, 2)
}

func TestAddLocalReviewNewestFirst(t *testing.T) {
	s := New(testUser(), nil)
	defer s.Close()

	s.AddLocalReview("Tikka Nodes", models.Review{Author: "first"})
	s.AddLocalReview("Tikka Nodes", models.Review{Author: "second"})

	local := s.LocalReviews()["Tikka Nodes"]
	require.Len(t, local, 2)
	assert.Equal(t, "second", local[0].Author)
}

func TestBookingGate(t *testing.T) {
	speaker := &recordingSpeaker{}
	s := New(testUser(), speaker)
	defer s.Close()

	s.BeginSearch(1)
	require.True(t, s.CompleteSearch(1, resultSet(models.Restaurant{Name: "Sushi Zen"}), nil))

	// Before any assistant interaction: rejected, exactly one spoken prompt.
	_, err := s.RequestBooking("Sushi Zen")
	assert.ErrorIs(t, err, ErrAssistantRequired)
	assert.Equal(t, 1, speaker.count())

	// After one recorded interaction: the flow opens, no further prompts.
	s.RecordAssistantInteraction()
	r, err := s.RequestBooking("Sushi Zen")
	require.NoError(t, err)
	assert.Equal(t, "Sushi Zen", r.Name)
	assert.Equal(t, 1, speaker.count())
}

func TestRequestBookingUnknownRestaurant(t *testing.T) {
	s := New(testUser(), nil)
	defer s.Close()
	s.RecordAssistantInteraction()

	_, err := s.RequestBooking("Nowhere")
	assert.ErrorIs(t, err, ErrUnknownRestaurant)
}

func TestConfirmBookingPrepends(t *testing.T) {
	s := New(testUser(), nil)
	defer s.Close()

	first := s.ConfirmBooking(models.Booking{RestaurantName: "Sushi Zen", Date: "2026-08-30", Time: "19:00", Guests: 2})
	second := s.ConfirmBooking(models.Booking{RestaurantName: "Forno Nonna", Date: "2026-09-01", Time: "20:00", Guests: 4})

	assert.NotEmpty(t, first.ID)
	assert.Equal(t, models.BookingConfirmed, first.Status)

	bookings := s.Bookings()
	require.Len(t, bookings, 2)
	assert.Equal(t, second.RestaurantName, bookings[0].RestaurantName)
}

func TestReset(t *testing.T) {
	s := New(testUser(), nil)
	defer s.Close()

	s.BeginSearch(1)
	s.CompleteSearch(1, nil, discovery.NewScoutError(discovery.CodeLogicCrash, errors.New("boom")))

	s.Reset()

	assert.Nil(t, s.LastError())
	assert.Empty(t, s.Restaurants())
	assert.Empty(t, s.Sources())
	assert.False(t, s.Loading())
}

func TestScheduleMockOrderFires(t *testing.T) {
	s := New(testUser(), nil)
	defer s.Close()

	s.ScheduleMockOrder(10*time.Millisecond, models.ActiveOrder{
		RestaurantName: "Sushi Zen",
		Status:         "Chef preparing your order...",
		Progress:       65,
	})

	require.Eventually(t, func() bool { return s.ActiveOrder() != nil }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "Sushi Zen", s.ActiveOrder().RestaurantName)
}

func TestScheduleMockOrderStopsOnClose(t *testing.T) {
	s := New(testUser(), nil)

	s.ScheduleMockOrder(50*time.Millisecond, models.ActiveOrder{RestaurantName: "Sushi Zen"})
	s.Close()

	time.Sleep(100 * time.Millisecond)
	assert.Nil(t, s.ActiveOrder())
}
