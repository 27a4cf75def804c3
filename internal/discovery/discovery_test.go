package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"testing"

	"tastetrail/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "dial tcp: i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{name: "net.Error", err: timeoutErr{}, want: CodeNetworkError},
		{name: "wrapped net.Error", err: fmt.Errorf("find: %w", timeoutErr{}), want: CodeNetworkError},
		{name: "context deadline", err: context.DeadlineExceeded, want: CodeNetworkError},
		{name: "json syntax", err: jsonErr(), want: CodeInvalidResponse},
		{name: "quota text", err: errors.New("openai: quota exceeded for project"), want: CodeQuotaExceeded},
		{name: "rate limit text", err: errors.New("status 429: rate limit"), want: CodeQuotaExceeded},
		{name: "connection refused text", err: errors.New("dial: connection refused"), want: CodeNetworkError},
		{name: "anything else", err: errors.New("nil map write"), want: CodeLogicCrash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			assert.Equal(t, tt.want, got.Code)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestClassifyPassesThroughScoutErrors(t *testing.T) {
	orig := NewScoutError(CodeQuotaExceeded, errors.New("429"))
	got := Classify(fmt.Errorf("search failed: %w", orig))
	assert.Equal(t, CodeQuotaExceeded, got.Code)
}

func jsonErr() error {
	var v map[string]any
	return json.Unmarshal([]byte("{nope"), &v)
}

func TestParseScoutResponse(t *testing.T) {
	body := `{"restaurants":[{"name":"Sushi Zen","cuisine":"Japanese","rating":4.8,"matchScore":96,"whyMatch":"fits"}],"sources":[{"title":"Guide","uri":"https://example.com"}]}`

	result, err := parseScoutResponse(body)
	require.NoError(t, err)
	require.Len(t, result.Restaurants, 1)
	assert.Equal(t, "Sushi Zen", result.Restaurants[0].Name)
	assert.NotNil(t, result.Restaurants[0].Reviews)
	require.Len(t, result.Sources, 1)
	assert.Equal(t, "https://example.com", result.Sources[0].URI)
}

func TestParseScoutResponseFenced(t *testing.T) {
	body := "```json\n{\"restaurants\":[{\"name\":\"Forno Nonna\",\"matchScore\":92}]}\n```"

	result, err := parseScoutResponse(body)
	require.NoError(t, err)
	assert.Equal(t, "Forno Nonna", result.Restaurants[0].Name)
	assert.NotNil(t, result.Sources)
}

func TestParseScoutResponseFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: "here are some great places!"},
		{name: "empty list", body: `{"restaurants":[]}`},
		{name: "wrong shape", body: `{"restaurants":"none"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseScoutResponse(tt.body)
			require.Error(t, err)
			assert.Equal(t, CodeInvalidResponse, Classify(err).Code)
		})
	}
}

func TestMockFinder(t *testing.T) {
	finder := NewMockFinder()

	profile := models.DefaultProfile()
	profile.CustomNotes = "sushi"

	result, err := finder.Find(context.Background(), Query{Profile: profile})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Restaurants)
	assert.Empty(t, result.Sources)
	assert.Equal(t, "Sushi Zen", result.Restaurants[0].Name)
}

func TestMockFinderFallsBackToVoice(t *testing.T) {
	finder := NewMockFinder()

	result, err := finder.Find(context.Background(), Query{
		Profile:    models.DefaultProfile(),
		VoiceQuery: "pizza near me",
	})
	require.NoError(t, err)
	assert.Equal(t, "Forno Nonna", result.Restaurants[0].Name)
}

func TestMockRestaurantsCopiesFixtures(t *testing.T) {
	first := MockRestaurants("sushi")
	first[0].Name = "clobbered"
	first[0].Reviews = append(first[0].Reviews, models.Review{Author: "x"})

	second := MockRestaurants("sushi")
	assert.Equal(t, "Sushi Zen", second[0].Name)
	assert.Len(t, second[0].Reviews, 2)
}

func TestBuildPromptSkipsEmptyFacets(t *testing.T) {
	f := NewLLMFinder(nil)

	profile := models.TasteProfile{
		PreferredCuisines: []string{"Indian"},
		CustomNotes:       "smoky tandoor",
	}
	prompt := f.buildPrompt(Query{Profile: profile, User: models.User{Name: "Asha"}})

	assert.Contains(t, prompt, "Preferred cuisines: Indian")
	assert.Contains(t, prompt, "Craving notes: smoky tandoor")
	assert.Contains(t, prompt, "Asha")
	assert.NotContains(t, prompt, "Atmosphere:")
	assert.NotContains(t, prompt, "Music vibe:")
}

func TestBuildPromptIncludesModalities(t *testing.T) {
	f := NewLLMFinder(nil)

	prompt := f.buildPrompt(Query{
		Profile:    models.DefaultProfile(),
		Location:   &models.Coordinates{Lat: 19.076, Lng: 72.8777},
		VoiceQuery: "somewhere with rooftop seats",
	})

	assert.Contains(t, prompt, "19.07600,72.87770")
	assert.Contains(t, prompt, "rooftop seats")
}
