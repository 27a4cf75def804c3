package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"tastetrail/internal/models"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
)

// LLMFinder is the live discovery capability backed by a chat model. The
// model is asked for strict JSON; anything that fails to decode is surfaced
// as INVALID_RESPONSE.
type LLMFinder struct {
	model       llms.LLM
	modelName   string
	maxResults  int
	temperature float64
}

// LLMOption configures an LLMFinder.
type LLMOption func(*LLMFinder)

// WithModelName overrides the model requested per call.
func WithModelName(name string) LLMOption {
	return func(f *LLMFinder) { f.modelName = name }
}

// WithMaxResults caps the number of restaurants requested.
func WithMaxResults(n int) LLMOption {
	return func(f *LLMFinder) {
		if n > 0 {
			f.maxResults = n
		}
	}
}

// NewLLMFinder wraps an existing chat model.
func NewLLMFinder(model llms.LLM, opts ...LLMOption) *LLMFinder {
	f := &LLMFinder{
		model:       model,
		maxResults:  8,
		temperature: 0.4,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewOpenAIFinder builds a finder over an OpenAI-compatible endpoint.
func NewOpenAIFinder(apiKey, baseURL, modelName string, opts ...LLMOption) (*LLMFinder, error) {
	clientOpts := []openai.Option{openai.WithToken(apiKey)}
	if baseURL != "" {
		clientOpts = append(clientOpts, openai.WithBaseURL(baseURL))
	}
	if modelName != "" {
		clientOpts = append(clientOpts, openai.WithModel(modelName))
	}

	client, err := openai.New(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create discovery client: %w", err)
	}

	opts = append([]LLMOption{WithModelName(modelName)}, opts...)
	return NewLLMFinder(client, opts...), nil
}

// llmPayload mirrors the JSON shape the prompt demands.
type llmPayload struct {
	Restaurants []models.Restaurant      `json:"restaurants"`
	Sources     []models.GroundingSource `json:"sources"`
}

// Find runs one discovery round trip and classifies any failure.
func (f *LLMFinder) Find(ctx context.Context, q Query) (*Result, error) {
	prompt := f.buildPrompt(q)

	content := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, scoutSystemPrompt),
		llms.TextParts(schema.ChatMessageTypeHuman, prompt),
	}
	if q.PhotoB64 != "" {
		content = append(content, llms.MessageContent{
			Role: schema.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.BinaryPart("image/jpeg", []byte(q.PhotoB64)),
				llms.TextPart("Use this dish photo as an additional craving signal."),
			},
		})
	}

	callOpts := []llms.CallOption{
		llms.WithTemperature(f.temperature),
		llms.WithJSONMode(),
	}
	if f.modelName != "" {
		callOpts = append(callOpts, llms.WithModel(f.modelName))
	}

	response, err := f.model.GenerateContent(ctx, content, callOpts...)
	if err != nil {
		return nil, Classify(err)
	}
	if response == nil || len(response.Choices) == 0 {
		return nil, NewScoutError(CodeInvalidResponse, fmt.Errorf("empty response from discovery model"))
	}

	result, err := parseScoutResponse(response.Choices[0].Content)
	if err != nil {
		return nil, Classify(err)
	}
	return result, nil
}

const scoutSystemPrompt = `You are a restaurant discovery scout. You match diners to restaurants based on a structured taste profile. Respond with a single JSON object and nothing else, shaped as {"restaurants": [...], "sources": [...]}. Each restaurant needs name, cuisine, rating (0-5), priceRange, description, address, matchScore (0-100 confidence the place fits the profile), whyMatch (one sentence), and reviews (author, text, rating, sentiment one of positive/neutral/negative). Each source needs uri and optionally title.`

// buildPrompt flattens the taste profile into the scout request. Empty
// facets mean "no preference" and are skipped.
func (f *LLMFinder) buildPrompt(q Query) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Find up to %d restaurants for %s.\n", f.maxResults, orUnknown(q.User.Name))

	p := q.Profile
	writeList(&b, "Dietary restrictions", p.DietaryPreferences)
	writeList(&b, "Preferred textures", p.PreferredTextures)
	writeList(&b, "Preferred cuisines", p.PreferredCuisines)
	writeList(&b, "Wanted features", p.Features)
	writeField(&b, "Atmosphere", p.Atmosphere)
	writeField(&b, "Dining theme", p.DiningTheme)
	writeField(&b, "Budget", p.Budget)
	writeField(&b, "Occasion", p.Occasion)
	writeField(&b, "Max distance", p.MaxDistance)
	writeField(&b, "Age group", p.AgeGroup)
	writeField(&b, "Comfort style", p.ComfortPreference)
	writeField(&b, "Health goal", p.HealthGoal)
	writeList(&b, "Flour preferences", p.PreferredFlourTypes)
	writeList(&b, "Seating preferences", p.SeatingPreferences)
	writeList(&b, "Required facilities", p.Facilities)
	writeField(&b, "Music vibe", p.MusicVibe)
	writeList(&b, "Decor", p.SpecialDecor)
	writeField(&b, "Noise level", p.NoiseLevel)
	writeField(&b, "Lighting", p.LightingStyle)
	writeList(&b, "Favorite flavors", p.FavoriteFlavors)
	writeField(&b, "Craving notes", p.CustomNotes)

	if q.Location != nil {
		fmt.Fprintf(&b, "Diner location: %.5f,%.5f\n", q.Location.Lat, q.Location.Lng)
	}
	if q.VoiceQuery != "" {
		fmt.Fprintf(&b, "Spoken request (highest priority): %s\n", q.VoiceQuery)
	}

	return b.String()
}

func writeField(b *strings.Builder, label, value string) {
	if value != "" {
		fmt.Fprintf(b, "%s: %s\n", label, value)
	}
}

func writeList(b *strings.Builder, label string, values []string) {
	if len(values) > 0 {
		fmt.Fprintf(b, "%s: %s\n", label, strings.Join(values, ", "))
	}
}

func orUnknown(name string) string {
	if name == "" {
		return "a diner"
	}
	return name
}

// parseScoutResponse decodes the model output, tolerating markdown fences
// around the JSON body.
func parseScoutResponse(raw string) (*Result, error) {
	body := strings.TrimSpace(raw)
	body = strings.TrimPrefix(body, "```json")
	body = strings.TrimPrefix(body, "```")
	body = strings.TrimSuffix(body, "```")
	body = strings.TrimSpace(body)

	var payload llmPayload
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return nil, NewScoutError(CodeInvalidResponse, err)
	}
	if len(payload.Restaurants) == 0 {
		return nil, NewScoutError(CodeInvalidResponse, fmt.Errorf("discovery response carried no restaurants"))
	}

	for i := range payload.Restaurants {
		if payload.Restaurants[i].Reviews == nil {
			payload.Restaurants[i].Reviews = []models.Review{}
		}
	}
	if payload.Sources == nil {
		payload.Sources = []models.GroundingSource{}
	}

	return &Result{
		Restaurants: payload.Restaurants,
		Sources:     payload.Sources,
		Raw:         raw,
	}, nil
}
