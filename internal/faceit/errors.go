package faceit

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// APIError represents an error response from the FACEIT API
type APIError struct {
	Endpoint   string
	StatusCode int
	Message    string
	Cause      error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("FACEIT API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// RateLimitError represents a rate limit rejection that survived the retry budget
type RateLimitError struct {
	Endpoint string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited by FACEIT API: %s", e.Endpoint)
}

// MissingCredentialError represents a missing API credential
type MissingCredentialError struct {
	Variable string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("missing credential: %s is not set", e.Variable)
}

// PlayerNotFoundError represents a nickname that resolves to no player
type PlayerNotFoundError struct {
	Nickname string
}

func (e *PlayerNotFoundError) Error() string {
	return fmt.Sprintf("player not found: %q", e.Nickname)
}

// MatchNotFoundError represents a match id that resolves to no match
type MatchNotFoundError struct {
	MatchID string
}

func (e *MatchNotFoundError) Error() string {
	return fmt.Sprintf("match not found: %s", e.MatchID)
}

// ResolutionExhaustedError represents a player with no discoverable active match
type ResolutionExhaustedError struct {
	Nickname string
	Tried    []string
}

func (e *ResolutionExhaustedError) Error() string {
	if len(e.Tried) == 0 {
		return fmt.Sprintf("no active match found for %q", e.Nickname)
	}
	return fmt.Sprintf("no active match found for %q (tried: %s)", e.Nickname, strings.Join(e.Tried, ", "))
}

// FactionAttributionError represents a tracked player missing from both match rosters
type FactionAttributionError struct {
	Nickname string
	MatchID  string
	Rosters  map[string][]string
}

func (e *FactionAttributionError) Error() string {
	keys := make([]string, 0, len(e.Rosters))
	for key := range e.Rosters {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	previews := make([]string, 0, len(keys))
	for _, key := range keys {
		previews = append(previews, fmt.Sprintf("%s: [%s]", key, strings.Join(e.Rosters[key], ", ")))
	}
	return fmt.Sprintf("player %q not found in rosters of match %s (%s)", e.Nickname, e.MatchID, strings.Join(previews, "; "))
}

// NewAPIError creates a new FACEIT API error
func NewAPIError(endpoint string, statusCode int, message string, cause error) *APIError {
	return &APIError{
		Endpoint:   endpoint,
		StatusCode: statusCode,
		Message:    message,
		Cause:      cause,
	}
}

// NewRateLimitError creates a new rate limit error
func NewRateLimitError(endpoint string) *RateLimitError {
	return &RateLimitError{Endpoint: endpoint}
}

// NewMissingCredentialError creates a new missing credential error
func NewMissingCredentialError(variable string) *MissingCredentialError {
	return &MissingCredentialError{Variable: variable}
}

// NewPlayerNotFoundError creates a new player not found error
func NewPlayerNotFoundError(nickname string) *PlayerNotFoundError {
	return &PlayerNotFoundError{Nickname: nickname}
}

// NewMatchNotFoundError creates a new match not found error
func NewMatchNotFoundError(matchID string) *MatchNotFoundError {
	return &MatchNotFoundError{MatchID: matchID}
}

// NewResolutionExhaustedError creates a new resolution exhausted error
func NewResolutionExhaustedError(nickname string, tried []string) *ResolutionExhaustedError {
	return &ResolutionExhaustedError{
		Nickname: nickname,
		Tried:    tried,
	}
}

// NewFactionAttributionError creates a new faction attribution error
func NewFactionAttributionError(nickname, matchID string, rosters map[string][]string) *FactionAttributionError {
	return &FactionAttributionError{
		Nickname: nickname,
		MatchID:  matchID,
		Rosters:  rosters,
	}
}

// MapStatusError maps FACEIT API response codes to specific error types
func MapStatusError(endpoint string, statusCode int, body string) error {
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return NewAPIError(endpoint, statusCode, "credentials rejected", nil)
	case statusCode == http.StatusTooManyRequests:
		return NewRateLimitError(endpoint)
	case statusCode >= 500:
		return NewAPIError(endpoint, statusCode, "upstream unavailable", nil)
	default:
		message := strings.TrimSpace(body)
		if message == "" {
			message = "unexpected response"
		}
		if len(message) > 200 {
			message = message[:200]
		}
		return NewAPIError(endpoint, statusCode, message, nil)
	}
}
