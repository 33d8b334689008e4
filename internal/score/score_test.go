package score

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cs2tools/live-winprob/internal/config"
	"github.com/cs2tools/live-winprob/internal/faceit"
	"github.com/cs2tools/live-winprob/internal/transport"
)

const testMatchID = "1-abcdefab-1234-5678-9abc-def012345678"

// fakeUpstream scripts the three score endpoints
type fakeUpstream struct {
	dataMatch faceit.Document
	webV2     faceit.Document
	webV1     faceit.Document
}

func (f *fakeUpstream) handler() http.Handler {
	writeJSON := func(w http.ResponseWriter, doc faceit.Document) {
		if doc == nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(doc)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/matches/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, f.dataMatch)
	})
	mux.HandleFunc("/match/v2/match/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, f.webV2)
	})
	mux.HandleFunc("/match/v1/matches/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, f.webV1)
	})
	return mux
}

func newTestFetcher(t *testing.T, fake *fakeUpstream) *Fetcher {
	t.Helper()

	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)

	tcfg := transport.DefaultHTTPClientConfig()
	tcfg.RetryWait = 10 * time.Millisecond
	tcfg.RateLimit = 1000
	tcfg.Burst = 100
	httpClient := transport.NewRateLimitedHTTPClient(tcfg, nil)
	t.Cleanup(func() { _ = httpClient.Close() })

	fcfg := &config.FaceitConfig{
		APIKey:     "test-key",
		DataAPIURL: server.URL,
		WebAPIURL:  server.URL,
		Game:       "cs2",
	}
	data, err := faceit.NewClient(fcfg, httpClient, nil, nil)
	require.NoError(t, err)

	return NewFetcher(data, faceit.NewWebClient(fcfg, httpClient, nil), nil)
}

func TestFetchFromDataAPIResultsScore(t *testing.T) {
	f := newTestFetcher(t, &fakeUpstream{
		dataMatch: faceit.Document{
			"results": map[string]interface{}{
				"score": map[string]interface{}{"faction1": 7, "faction2": 4},
			},
			"teams": map[string]interface{}{
				"faction1": map[string]interface{}{"side": "CT"},
				"faction2": map[string]interface{}{"side": "t"},
			},
		},
	})

	live := f.Fetch(context.Background(), testMatchID, "faction1", "faction2")
	assert.Equal(t, 7, live.Our)
	assert.Equal(t, 4, live.Enemy)
	assert.Equal(t, SourceDataAPI, live.Source)
	assert.Equal(t, "CT", live.OurSide)
	assert.Equal(t, "T", live.EnemySide, "side labels are canonicalized")
}

func TestFetchDataAPIExplicitZeroTeamScore(t *testing.T) {
	f := newTestFetcher(t, &fakeUpstream{
		dataMatch: faceit.Document{
			"teams": map[string]interface{}{
				"faction1": map[string]interface{}{"score": 0},
				"faction2": map[string]interface{}{"score": 0},
			},
		},
	})

	live := f.Fetch(context.Background(), testMatchID, "faction1", "faction2")
	assert.Equal(t, SourceDataAPI, live.Source, "an explicit zero team score is a real observation")
	assert.Equal(t, 0, live.Our)
}

func TestFetchFallsThroughToWebV2(t *testing.T) {
	f := newTestFetcher(t, &fakeUpstream{
		webV2: faceit.Document{
			"payload": map[string]interface{}{
				"teams": map[string]interface{}{
					"faction1": map[string]interface{}{
						"stats": map[string]interface{}{"score": 9},
						"score": 2,
					},
					"faction2": map[string]interface{}{"score": 6},
				},
			},
		},
	})

	live := f.Fetch(context.Background(), testMatchID, "faction1", "faction2")
	assert.Equal(t, SourceWebV2, live.Source)
	assert.Equal(t, 9, live.Our, "a non-zero stats score beats the plain team score")
	assert.Equal(t, 6, live.Enemy)
}

func TestFetchFallsThroughToWebV1(t *testing.T) {
	f := newTestFetcher(t, &fakeUpstream{
		webV1: faceit.Document{
			"payload": map[string]interface{}{
				"results": map[string]interface{}{
					"score": map[string]interface{}{"faction1": 3, "faction2": 8},
				},
			},
		},
	})

	live := f.Fetch(context.Background(), testMatchID, "faction1", "faction2")
	assert.Equal(t, SourceWebV1, live.Source)
	assert.Equal(t, 3, live.Our)
	assert.Equal(t, 8, live.Enemy)
}

func TestFetchAllSourcesDarkReportsUnavailable(t *testing.T) {
	f := newTestFetcher(t, &fakeUpstream{})

	live := f.Fetch(context.Background(), testMatchID, "faction1", "faction2")
	assert.Equal(t, SourceUnavailable, live.Source)
	assert.Zero(t, live.Our)
	assert.Zero(t, live.Enemy)
}

func TestFetchZeroZeroResultsMapFallsThrough(t *testing.T) {
	// a zero-zero results map on the data API is trivial; the web v1 map
	// behaves the same, so the fetch ends unavailable
	f := newTestFetcher(t, &fakeUpstream{
		dataMatch: faceit.Document{
			"results": map[string]interface{}{
				"score": map[string]interface{}{"faction1": 0, "faction2": 0},
			},
		},
		webV1: faceit.Document{
			"payload": map[string]interface{}{
				"score": map[string]interface{}{"faction1": 0, "faction2": 0},
			},
		},
	})

	live := f.Fetch(context.Background(), testMatchID, "faction1", "faction2")
	assert.Equal(t, SourceUnavailable, live.Source)
}

func TestFetchCanonicalFactionKeyFallback(t *testing.T) {
	f := newTestFetcher(t, &fakeUpstream{
		dataMatch: faceit.Document{
			"results": map[string]interface{}{
				"score": map[string]interface{}{"faction1": 5, "faction2": 2},
			},
		},
	})

	// the attribution produced custom keys but the score map uses the
	// canonical faction spellings
	live := f.Fetch(context.Background(), testMatchID, "team_red", "team_blue")
	assert.Equal(t, 5, live.Our)
	assert.Equal(t, 2, live.Enemy)
}

func TestChanged(t *testing.T) {
	base := LiveScore{Our: 5, Enemy: 3}
	assert.False(t, base.Changed(LiveScore{Our: 5, Enemy: 3}))
	assert.True(t, base.Changed(LiveScore{Our: 5, Enemy: 4}))
	assert.True(t, base.Changed(LiveScore{Our: 6, Enemy: 3}))
	assert.True(t, LiveScore{}.Changed(base))
}
