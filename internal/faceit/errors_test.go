package faceit

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessages(t *testing.T) {
	assert.Contains(t, NewPlayerNotFoundError("donk").Error(), `"donk"`)
	assert.Contains(t, NewMatchNotFoundError("1-abc").Error(), "1-abc")
	assert.Contains(t, NewMissingCredentialError("FACEIT_API_KEY").Error(), "FACEIT_API_KEY")
	assert.Contains(t, NewRateLimitError("/matches/1-abc").Error(), "/matches/1-abc")

	apiErr := NewAPIError("/players", 502, "upstream unavailable", nil)
	assert.Contains(t, apiErr.Error(), "502")
	assert.Contains(t, apiErr.Error(), "/players")
}

func TestResolutionExhaustedMessage(t *testing.T) {
	err := NewResolutionExhaustedError("donk", []string{"profile scan", "web lookup", "recent history"})
	assert.Contains(t, err.Error(), `"donk"`)
	assert.Contains(t, err.Error(), "profile scan, web lookup, recent history")

	bare := NewResolutionExhaustedError("donk", nil)
	assert.NotContains(t, bare.Error(), "tried")
}

func TestFactionAttributionMessageIsStable(t *testing.T) {
	err := NewFactionAttributionError("donk", "1-abc", map[string][]string{
		"faction2": {"zont1x", "magixx"},
		"faction1": {"sh1ro", "chopper"},
	})

	first := err.Error()
	for i := 0; i < 10; i++ {
		require.Equal(t, first, err.Error(), "roster previews must render in a stable order")
	}
	assert.Contains(t, first, "faction1: [sh1ro, chopper]; faction2: [zont1x, magixx]")
}

func TestMapStatusError(t *testing.T) {
	var rateErr *RateLimitError
	assert.ErrorAs(t, MapStatusError("/players", http.StatusTooManyRequests, ""), &rateErr)

	var apiErr *APIError
	err := MapStatusError("/players", http.StatusUnauthorized, "")
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Message, "credentials rejected")

	err = MapStatusError("/players", http.StatusServiceUnavailable, "")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "upstream unavailable", apiErr.Message)

	err = MapStatusError("/players", http.StatusTeapot, "short and stout")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "short and stout", apiErr.Message)
}
