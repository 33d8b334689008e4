package faceit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWebClient(t *testing.T, serverURL string) *WebClient {
	t.Helper()
	httpClient := testTransport()
	t.Cleanup(func() { _ = httpClient.Close() })

	return NewWebClient(testFaceitConfig(serverURL), httpClient, nil)
}

func TestWebClientBrowserFingerprint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "Chrome")
		assert.Equal(t, browserAccept, r.Header.Get("Accept"))
		assert.Equal(t, browserLanguage, r.Header.Get("Accept-Language"))
		assert.Empty(t, r.Header.Get("Authorization"), "web API requests must not carry credentials")
		w.Write([]byte(`{"payload": {}}`))
	}))
	defer server.Close()

	webClient := newTestWebClient(t, server.URL)

	_, err := webClient.MatchV2(context.Background(), "1-abc")
	require.NoError(t, err)
}

func TestUserMatchesByState(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/match/v1/matches/groupByState", r.URL.Path)
		assert.Equal(t, "user-1", r.URL.Query().Get("userId"))
		w.Write([]byte(`{"payload": {"ONGOING": [{"id": "1-abc"}]}}`))
	}))
	defer server.Close()

	webClient := newTestWebClient(t, server.URL)

	doc, err := webClient.UserMatchesByState(context.Background(), "user-1")
	require.NoError(t, err)

	ongoing := doc.Sub("payload").List("ONGOING")
	require.Len(t, ongoing, 1)
	assert.Equal(t, "1-abc", AsDocument(ongoing[0]).String("id"))
}

func TestWebMatchPaths(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Write([]byte(`{"payload": {}}`))
	}))
	defer server.Close()

	webClient := newTestWebClient(t, server.URL)

	_, err := webClient.MatchV2(context.Background(), "1-abc")
	require.NoError(t, err)
	_, err = webClient.MatchV1(context.Background(), "1-abc")
	require.NoError(t, err)

	assert.Equal(t, []string{"/match/v2/match/1-abc", "/match/v1/matches/1-abc"}, paths)
}

func TestWebNotFoundReturnsNil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	webClient := newTestWebClient(t, server.URL)

	doc, err := webClient.MatchV1(context.Background(), "1-gone")
	require.NoError(t, err)
	assert.Nil(t, doc)
}
