// Package api exposes the discovery service over HTTP. Each authenticated
// user owns one live session; the handlers are thin adapters over the
// profile store, the search orchestrator and the session state.
package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tmc/langchaingo/llms"

	"tastetrail/internal/assistant"
	"tastetrail/internal/config"
	"tastetrail/internal/geo"
	"tastetrail/internal/models"
	"tastetrail/internal/monitoring"
	"tastetrail/internal/profile"
	"tastetrail/internal/scout"
	"tastetrail/internal/session"
	"tastetrail/internal/speech"
	"tastetrail/internal/store"
)

// Server is the main API handler for the discovery service.
type Server struct {
	Router *gin.Engine

	cfg      *config.Config
	store    *store.Store
	orch     *scout.Orchestrator
	geocoder geo.Geocoder
	speaker  speech.Speaker
	chatLLM  llms.LLM
	monitor  *monitoring.Monitor

	mu       sync.Mutex
	sessions map[string]*session.Session
}

// NewServer wires the API. geocoder, speaker and chatLLM may be nil; the
// corresponding capabilities then degrade to no-ops.
func NewServer(cfg *config.Config, st *store.Store, orch *scout.Orchestrator, geocoder geo.Geocoder, speaker speech.Speaker, chatLLM llms.LLM, monitor *monitoring.Monitor) *Server {
	if speaker == nil {
		speaker = speech.Noop{}
	}
	if monitor == nil {
		monitor = monitoring.NewMonitor()
	}

	s := &Server{
		Router:   gin.Default(),
		cfg:      cfg,
		store:    st,
		orch:     orch,
		geocoder: geocoder,
		speaker:  speaker,
		chatLLM:  chatLLM,
		monitor:  monitor,
		sessions: make(map[string]*session.Session),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all API endpoints
func (s *Server) setupRoutes() {
	// Health check
	s.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "TasteTrail API is running"})
	})

	s.Router.POST("/api/v1/login", s.Login)

	v1 := s.Router.Group("/api/v1")
	v1.Use(AuthMiddleware(s.cfg.JWTSecret))
	{
		// Taste profile
		v1.GET("/profile", s.GetProfile)
		v1.PUT("/profile", s.ReplaceProfile)
		v1.GET("/missions", s.ListMissions)
		v1.POST("/profile/mission", s.ApplyMission)
		v1.POST("/profile/game", s.MergeGameProfile)

		// Discovery
		v1.POST("/search", s.Search)
		v1.GET("/restaurants", s.GetRestaurants)
		v1.GET("/sources", s.GetSources)
		v1.POST("/search/reset", s.ResetSearch)

		// Reviews and bookings
		v1.POST("/restaurants/:name/reviews", s.AddReview)
		v1.POST("/bookings/request", s.RequestBooking)
		v1.POST("/bookings", s.ConfirmBooking)
		v1.GET("/bookings", s.GetBookings)

		// Assistant
		v1.POST("/assistant/interactions", s.RecordInteraction)
		v1.GET("/assistant/ws", s.AssistantSocket)

		// Location and ambient state
		v1.POST("/location", s.SetLocation)
		v1.GET("/orders/active", s.GetActiveOrder)
		v1.GET("/stats", s.GetStats)

		// Onboarding flags
		v1.GET("/onboarding", s.GetOnboarding)
		v1.POST("/onboarding/tutorial", s.CompleteTutorial)
		v1.POST("/onboarding/game", s.CompleteFlavorGame)
	}
}

// sessionFor returns the live session for userID, reviving it from the
// durable store after a restart.
func (s *Server) sessionFor(userID string) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[userID]; ok {
		return sess, nil
	}

	user, err := s.store.GetUser(userID)
	if err != nil {
		return nil, err
	}
	sess := s.newSession(user)
	s.sessions[userID] = sess
	return sess, nil
}

func (s *Server) newSession(user models.User) *session.Session {
	sess := session.New(user, s.speaker)
	sess.ScheduleMockOrder(s.cfg.MockOrderDelay(), models.ActiveOrder{
		RestaurantName: "Sushi Zen",
		Status:         "Chef preparing your order...",
		Progress:       65,
	})
	return sess
}

func (s *Server) currentSession(c *gin.Context) (*session.Session, bool) {
	userID := c.GetString("userID")
	sess, err := s.sessionFor(userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unknown user"})
		return nil, false
	}
	return sess, true
}

// Login persists the identity record, opens a session and issues a token.
func (s *Server) Login(c *gin.Context) {
	var user models.User
	if err := c.ShouldBindJSON(&user); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if user.ID == "" || user.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id and name are required"})
		return
	}

	if err := s.store.SaveUser(user); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	token, err := issueToken(s.cfg.JWTSecret, user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	if old, ok := s.sessions[user.ID]; ok {
		old.Close()
	}
	s.sessions[user.ID] = s.newSession(user)
	s.mu.Unlock()

	flags, err := s.store.Flags(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user, "onboarding": flags})
}

// Profile handlers

func (s *Server) GetProfile(c *gin.Context) {
	sess, ok := s.currentSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sess.Profile.Current())
}

func (s *Server) ReplaceProfile(c *gin.Context) {
	sess, ok := s.currentSession(c)
	if !ok {
		return
	}

	var p models.TasteProfile
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, sess.Profile.SetFromForm(p))
}

func (s *Server) ListMissions(c *gin.Context) {
	c.JSON(http.StatusOK, profile.Missions)
}

// ApplyMission applies a preset and immediately runs the search in demo
// mode, matching the quick-mission flow.
func (s *Server) ApplyMission(c *gin.Context) {
	sess, ok := s.currentSession(c)
	if !ok {
		return
	}

	var req struct {
		Title string `json:"title"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mission, err := profile.MissionByTitle(req.Title)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	p := sess.Profile.ApplyMission(mission)
	outcome := s.orch.Search(c.Request.Context(), sess, p, scout.Options{DemoMode: true})
	s.renderOutcome(c, outcome)
}

func (s *Server) MergeGameProfile(c *gin.Context) {
	sess, ok := s.currentSession(c)
	if !ok {
		return
	}

	var partial profile.GamePartial
	if err := c.ShouldBindJSON(&partial); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, sess.Profile.MergeFromGame(partial))
}

// Discovery handlers

func (s *Server) Search(c *gin.Context) {
	sess, ok := s.currentSession(c)
	if !ok {
		return
	}

	var req struct {
		Profile    models.TasteProfile `json:"profile"`
		PhotoB64   string              `json:"photo,omitempty"`
		VoiceQuery string              `json:"voiceQuery,omitempty"`
		DemoMode   bool                `json:"demoMode,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome := s.orch.Search(c.Request.Context(), sess, req.Profile, scout.Options{
		PhotoB64:   req.PhotoB64,
		VoiceQuery: req.VoiceQuery,
		DemoMode:   req.DemoMode,
	})
	s.renderOutcome(c, outcome)
}

// renderOutcome maps a search outcome to a response. Every classified error
// renders the same generic sync-failure shape; the client offers a single
// reset action regardless of code.
func (s *Server) renderOutcome(c *gin.Context, outcome *scout.Outcome) {
	if outcome.Stale {
		c.JSON(http.StatusConflict, gin.H{"error": "superseded by a newer search"})
		return
	}
	if outcome.Err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":     "sync failure",
			"errorCode": outcome.Err.Code,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"restaurants": outcome.Restaurants,
		"sources":     outcome.Sources,
	})
}

func (s *Server) GetRestaurants(c *gin.Context) {
	sess, ok := s.currentSession(c)
	if !ok {
		return
	}

	key := session.SortByMatch
	if c.Query("sort") == string(session.SortByRating) {
		key = session.SortByRating
	}

	c.JSON(http.StatusOK, gin.H{
		"restaurants": sess.Present(key),
		"loading":     sess.Loading(),
	})
}

func (s *Server) GetSources(c *gin.Context) {
	sess, ok := s.currentSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"sources": sess.Sources()})
}

func (s *Server) ResetSearch(c *gin.Context) {
	sess, ok := s.currentSession(c)
	if !ok {
		return
	}
	sess.Reset()
	c.JSON(http.StatusOK, gin.H{"message": "Search state cleared"})
}

// Review and booking handlers

func (s *Server) AddReview(c *gin.Context) {
	sess, ok := s.currentSession(c)
	if !ok {
		return
	}

	var review models.Review
	if err := c.ShouldBindJSON(&review); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if review.Author == "" {
		review.Author = sess.User.Name
	}

	sess.AddLocalReview(c.Param("name"), review)
	c.JSON(http.StatusCreated, review)
}

// RequestBooking opens the booking flow for a restaurant, subject to the
// assistant-interaction gate.
func (s *Server) RequestBooking(c *gin.Context) {
	sess, ok := s.currentSession(c)
	if !ok {
		return
	}

	var req struct {
		RestaurantName string `json:"restaurantName"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	restaurant, err := sess.RequestBooking(req.RestaurantName)
	if errors.Is(err, session.ErrAssistantRequired) {
		monitoring.BookingGateRejections.Inc()
		c.JSON(http.StatusPreconditionFailed, gin.H{"error": "Chat with Chef Gully before booking"})
		return
	}
	if errors.Is(err, session.ErrUnknownRestaurant) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Restaurant not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"restaurant": restaurant})
}

func (s *Server) ConfirmBooking(c *gin.Context) {
	sess, ok := s.currentSession(c)
	if !ok {
		return
	}

	if !sess.HasAssistantInteraction() {
		monitoring.BookingGateRejections.Inc()
		c.JSON(http.StatusPreconditionFailed, gin.H{"error": "Chat with Chef Gully before booking"})
		return
	}

	var booking models.Booking
	if err := c.ShouldBindJSON(&booking); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if booking.RestaurantName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "restaurantName is required"})
		return
	}

	confirmed := sess.ConfirmBooking(booking)
	monitoring.BookingsTotal.Inc()
	c.JSON(http.StatusCreated, confirmed)
}

func (s *Server) GetBookings(c *gin.Context) {
	sess, ok := s.currentSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": sess.Bookings()})
}

// Assistant handlers

func (s *Server) RecordInteraction(c *gin.Context) {
	sess, ok := s.currentSession(c)
	if !ok {
		return
	}
	sess.RecordAssistantInteraction()
	c.JSON(http.StatusOK, gin.H{"message": "Interaction recorded"})
}

func (s *Server) AssistantSocket(c *gin.Context) {
	sess, ok := s.currentSession(c)
	if !ok {
		return
	}
	assistant.Serve(c, sess, s.chatLLM, s.orch)
}

// Location and ambient state handlers

// SetLocation records coordinates and resolves the city name in the
// background, bounded by the session lifetime. A failed lookup is silent.
func (s *Server) SetLocation(c *gin.Context) {
	sess, ok := s.currentSession(c)
	if !ok {
		return
	}

	var coords models.Coordinates
	if err := c.ShouldBindJSON(&coords); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess.SetLocation(coords)

	if s.geocoder != nil {
		go func() {
			ctx, cancel := context.WithTimeout(sess.Context(), 10*time.Second)
			defer cancel()
			city, err := s.geocoder.CityName(ctx, coords.Lat, coords.Lng)
			if err != nil {
				log.Printf("reverse geocode failed: %v", err)
				return
			}
			sess.SetCityName(city)
		}()
	}

	c.JSON(http.StatusOK, gin.H{"cityName": sess.CityName()})
}

func (s *Server) GetActiveOrder(c *gin.Context) {
	sess, ok := s.currentSession(c)
	if !ok {
		return
	}
	order := sess.ActiveOrder()
	if order == nil {
		c.JSON(http.StatusNoContent, nil)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.monitor.GetMetrics())
}

// Onboarding handlers

func (s *Server) GetOnboarding(c *gin.Context) {
	flags, err := s.store.Flags(c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, flags)
}

func (s *Server) CompleteTutorial(c *gin.Context) {
	if err := s.store.MarkTutorialSeen(c.GetString("userID")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Tutorial completed"})
}

// CompleteFlavorGame marks the onboarding game done and merges its partial
// profile into the session.
func (s *Server) CompleteFlavorGame(c *gin.Context) {
	sess, ok := s.currentSession(c)
	if !ok {
		return
	}

	var partial profile.GamePartial
	if err := c.ShouldBindJSON(&partial); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	merged := sess.Profile.MergeFromGame(partial)
	if err := s.store.MarkFlavorGameDone(c.GetString("userID")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, merged)
}

// Close tears down all live sessions.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		sess.Close()
	}
	s.sessions = make(map[string]*session.Session)
}
