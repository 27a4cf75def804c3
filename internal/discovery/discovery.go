// Package discovery wraps the external restaurant discovery capability. The
// finder boundary is the only place failures are classified; everything
// below it is mapped to one of the ScoutError codes before reaching session
// state.
package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"

	"tastetrail/internal/models"
)

// ErrorCode identifies a classified discovery failure.
type ErrorCode string

const (
	CodeNetworkError    ErrorCode = "NETWORK_ERROR"
	CodeInvalidResponse ErrorCode = "INVALID_RESPONSE"
	CodeQuotaExceeded   ErrorCode = "QUOTA_EXCEEDED"
	CodeLogicCrash      ErrorCode = "LOGIC_CRASH"
)

// ScoutError is a classified discovery failure. Callers render a generic
// retry affordance for any code; there is no per-code messaging.
type ScoutError struct {
	Code  ErrorCode
	cause error
}

func (e *ScoutError) Error() string {
	if e.cause == nil {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %v", e.Code, e.cause)
}

func (e *ScoutError) Unwrap() error { return e.cause }

// NewScoutError wraps cause with a classification code.
func NewScoutError(code ErrorCode, cause error) *ScoutError {
	return &ScoutError{Code: code, cause: cause}
}

// Classify maps an arbitrary failure to the closed error taxonomy. Already
// classified errors pass through unchanged; anything unrecognized becomes
// the LOGIC_CRASH catch-all.
func Classify(err error) *ScoutError {
	var scout *ScoutError
	if errors.As(err, &scout) {
		return scout
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewScoutError(CodeNetworkError, err)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return NewScoutError(CodeInvalidResponse, err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "quota") || strings.Contains(msg, "rate limit") || strings.Contains(msg, "429"):
		return NewScoutError(CodeQuotaExceeded, err)
	case strings.Contains(msg, "connection refused") || strings.Contains(msg, "no such host") || strings.Contains(msg, "timeout"):
		return NewScoutError(CodeNetworkError, err)
	}

	return NewScoutError(CodeLogicCrash, err)
}

// Query carries one discovery request. Location, photo and voice query are
// optional modalities.
type Query struct {
	Profile    models.TasteProfile
	Location   *models.Coordinates
	PhotoB64   string
	User       models.User
	VoiceQuery string
}

// Result is a successful discovery outcome: ranked restaurants plus a
// possibly empty citation list.
type Result struct {
	Restaurants []models.Restaurant      `json:"restaurants"`
	Sources     []models.GroundingSource `json:"sources"`
	Raw         string                   `json:"-"`
}

// Finder is the discovery capability. Implementations return either a
// result or a *ScoutError.
type Finder interface {
	Find(ctx context.Context, q Query) (*Result, error)
}
