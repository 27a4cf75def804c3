// Package session owns all state scoped to one active user session: the
// taste profile, the last search outcome, locally-authored reviews, bookings
// and the assistant-interaction flag. Every mutation is a full replace or a
// structural copy of the affected slice, so readers never observe a
// half-updated value.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"tastetrail/internal/discovery"
	"tastetrail/internal/models"
	"tastetrail/internal/profile"
	"tastetrail/internal/speech"
)

// ErrAssistantRequired is returned when a booking is attempted before any
// assistant interaction this session.
var ErrAssistantRequired = errors.New("assistant interaction required before booking")

// ErrUnknownRestaurant is returned when a booking names a restaurant that is
// not in the last result set.
var ErrUnknownRestaurant = errors.New("restaurant not in current results")

const bookingGatePrompt = "Hold on! You need to interact with Chef Gully first. Tap his mic for a quick chat!"

// Session is the per-user state container. Durable identity and onboarding
// flags live elsewhere; everything here is discarded when the session ends.
type Session struct {
	User    models.User
	Profile *profile.Store

	speaker speech.Speaker
	ctx     context.Context
	cancel  context.CancelFunc

	mu            sync.RWMutex
	restaurants   []models.Restaurant
	sources       []models.GroundingSource
	loading       bool
	lastErr       *discovery.ScoutError
	hasSearched   bool
	latestSeq     uint64
	localReviews  map[string][]models.Review
	bookings      []models.Booking
	assistantSeen bool
	location      *models.Coordinates
	cityName      string
	activeOrder   *models.ActiveOrder
}

// New creates a session for the given user. The session context bounds its
// fire-and-forget work; Close cancels it.
func New(user models.User, speaker speech.Speaker) *Session {
	if speaker == nil {
		speaker = speech.Noop{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		User:         user,
		Profile:      profile.NewStore(),
		speaker:      speaker,
		ctx:          ctx,
		cancel:       cancel,
		localReviews: make(map[string][]models.Review),
	}
}

// Context returns the session lifetime context.
func (s *Session) Context() context.Context { return s.ctx }

// Close tears the session down and stops any outstanding timers.
func (s *Session) Close() { s.cancel() }

// BeginSearch marks a dispatch as in flight. Sequence numbers are issued
// monotonically by the orchestrator; the highest dispatched number is the
// only one whose completion will be accepted.
func (s *Session) BeginSearch(seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq > s.latestSeq {
		s.latestSeq = seq
	}
	s.loading = true
	s.hasSearched = true
	s.lastErr = nil
}

// CompleteSearch applies a finished search. Completions for anything other
// than the latest dispatch are discarded, so a slow stale response can never
// clobber a faster newer one. A classified error leaves the prior results
// and sources untouched. Reports whether the completion was applied.
func (s *Session) CompleteSearch(seq uint64, result *discovery.Result, scoutErr *discovery.ScoutError) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.latestSeq {
		return false
	}
	s.loading = false

	if scoutErr != nil {
		s.lastErr = scoutErr
		return true
	}

	s.restaurants = append([]models.Restaurant{}, result.Restaurants...)
	s.sources = append([]models.GroundingSource{}, result.Sources...)
	s.lastErr = nil
	return true
}

// Loading reports whether a search is in flight.
func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// LastError returns the last classified search failure, if any.
func (s *Session) LastError() *discovery.ScoutError {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Restaurants returns a copy of the last successful result set.
func (s *Session) Restaurants() []models.Restaurant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Restaurant{}, s.restaurants...)
}

// Sources returns a copy of the citation list from the last successful
// search.
func (s *Session) Sources() []models.GroundingSource {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.GroundingSource{}, s.sources...)
}

// Reset clears the search state, returning the session to the input form.
// This is the single recovery action offered after a classified failure.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.restaurants = nil
	s.sources = nil
	s.lastErr = nil
	s.hasSearched = false
	s.loading = false
}

// AddLocalReview prepends a locally-authored review for the named
// restaurant. Local reviews are session-only and are never sent back to the
// discovery capability.
func (s *Session) AddLocalReview(restaurantName string, review models.Review) {
	review.IsUserGenerated = true
	if review.Date == "" {
		review.Date = time.Now().Format("2006-01-02")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	updated := make(map[string][]models.Review, len(s.localReviews)+1)
	for k, v := range s.localReviews {
		updated[k] = v
	}
	updated[restaurantName] = append([]models.Review{review}, s.localReviews[restaurantName]...)
	s.localReviews = updated
}

// LocalReviews returns a snapshot of the local review map.
func (s *Session) LocalReviews() map[string][]models.Review {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]models.Review, len(s.localReviews))
	for k, v := range s.localReviews {
		out[k] = append([]models.Review{}, v...)
	}
	return out
}

// RecordAssistantInteraction marks that the user has talked to the
// assistant this session, unlocking the booking flow.
func (s *Session) RecordAssistantInteraction() {
	s.mu.Lock()
	s.assistantSeen = true
	s.mu.Unlock()
}

// HasAssistantInteraction reports whether the booking gate is open.
func (s *Session) HasAssistantInteraction() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.assistantSeen
}

// RequestBooking opens the booking flow for the named restaurant. Until the
// user has interacted with the assistant this session, the request is
// rejected with a single spoken prompt and no flow opens. The gate is a
// product rule and is preserved as is.
func (s *Session) RequestBooking(restaurantName string) (models.Restaurant, error) {
	s.mu.RLock()
	seen := s.assistantSeen
	restaurants := s.restaurants
	s.mu.RUnlock()

	if !seen {
		if err := s.speaker.Speak(s.ctx, bookingGatePrompt); err != nil {
			log.Printf("booking gate prompt failed: %v", err)
		}
		return models.Restaurant{}, ErrAssistantRequired
	}

	for _, r := range restaurants {
		if r.Name == restaurantName {
			return r, nil
		}
	}
	return models.Restaurant{}, ErrUnknownRestaurant
}

// ConfirmBooking prepends a confirmed booking. Bookings are never removed
// during a session.
func (s *Session) ConfirmBooking(b models.Booking) models.Booking {
	if b.ID == "" {
		b.ID = fmt.Sprintf("bk-%d", time.Now().UnixNano())
	}
	if b.Status == "" {
		b.Status = models.BookingConfirmed
	}

	s.mu.Lock()
	s.bookings = append([]models.Booking{b}, s.bookings...)
	s.mu.Unlock()
	return b
}

// Bookings returns the session's bookings, newest first.
func (s *Session) Bookings() []models.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Booking{}, s.bookings...)
}

// SetLocation records the user's coordinates.
func (s *Session) SetLocation(c models.Coordinates) {
	s.mu.Lock()
	s.location = &c
	s.mu.Unlock()
}

// Location returns the recorded coordinates, if any.
func (s *Session) Location() *models.Coordinates {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.location == nil {
		return nil
	}
	c := *s.location
	return &c
}

// SetCityName records the resolved city name.
func (s *Session) SetCityName(name string) {
	s.mu.Lock()
	s.cityName = name
	s.mu.Unlock()
}

// CityName returns the resolved city name, or empty if unresolved.
func (s *Session) CityName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cityName
}

// ScheduleMockOrder arms the delayed order-progress notification. The timer
// is bound to the session context and stops on Close.
func (s *Session) ScheduleMockOrder(delay time.Duration, order models.ActiveOrder) {
	go func() {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-s.ctx.Done():
		case <-timer.C:
			s.mu.Lock()
			s.activeOrder = &order
			s.mu.Unlock()
		}
	}()
}

// ActiveOrder returns the current mock order notification, if armed and
// fired.
func (s *Session) ActiveOrder() *models.ActiveOrder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.activeOrder == nil {
		return nil
	}
	o := *s.activeOrder
	return &o
}
