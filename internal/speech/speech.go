// Package speech provides the best-effort spoken narration capability.
// Speaking is fire-and-forget; callers ignore the returned error unless they
// need it for logging.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Speaker narrates short confirmations to the user.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// HTTPSpeaker forwards narration requests to an external text-to-speech
// endpoint.
type HTTPSpeaker struct {
	endpoint string
	voice    string
	client   *http.Client
}

// NewHTTPSpeaker builds a speaker for the given TTS endpoint.
func NewHTTPSpeaker(endpoint, voice string) *HTTPSpeaker {
	return &HTTPSpeaker{
		endpoint: endpoint,
		voice:    voice,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// Speak posts the utterance. A non-200 reply is an error so callers can log
// it, but nothing downstream depends on the outcome.
func (s *HTTPSpeaker) Speak(ctx context.Context, text string) error {
	payload, err := json.Marshal(map[string]string{"text": text, "voice": s.voice})
	if err != nil {
		return fmt.Errorf("failed to marshal speech request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to build speech request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach speech service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("speech service returned status: %d", resp.StatusCode)
	}
	return nil
}

// Noop is a speaker that says nothing. Used when no TTS endpoint is
// configured.
type Noop struct{}

// Speak does nothing.
func (Noop) Speak(context.Context, string) error { return nil }
