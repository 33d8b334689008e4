package faceit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cs2tools/live-winprob/internal/config"
	"github.com/cs2tools/live-winprob/internal/transport"
)

// Browser fingerprint for the public web API, which rejects requests
// that look like bots
const (
	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	browserAccept    = "application/json, text/plain, */*"
	browserLanguage  = "en-US,en;q=0.9"
)

// WebClient implements the unauthenticated FACEIT web API client. It
// covers live match state the Data API does not expose.
type WebClient struct {
	httpClient *transport.RateLimitedHTTPClient
	baseURL    string
	logger     *logrus.Logger
}

// NewWebClient creates a new web API client
func NewWebClient(cfg *config.FaceitConfig, httpClient *transport.RateLimitedHTTPClient, logger *logrus.Logger) *WebClient {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	return &WebClient{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(cfg.WebAPIURL, "/"),
		logger:     logger,
	}
}

func (w *WebClient) get(ctx context.Context, path string, query url.Values) (Document, error) {
	endpoint := w.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", browserAccept)
	req.Header.Set("Accept-Language", browserLanguage)
	req.Header.Set("Referer", "https://www.faceit.com/")

	w.logger.WithField("endpoint", path).Debug("FACEIT web API request")

	start := time.Now()
	resp, err := w.httpClient.Do(ctx, req)
	if err != nil {
		RecordWebRequest(time.Since(start), false)
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		RecordWebRequest(time.Since(start), true)
		RecordNotFound()
		return nil, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		RecordWebRequest(time.Since(start), false)
		RecordRateLimit()
		return nil, NewRateLimitError(path)
	case resp.StatusCode != http.StatusOK:
		RecordWebRequest(time.Since(start), false)
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, MapStatusError(path, resp.StatusCode, string(body))
	}

	var doc Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		RecordWebRequest(time.Since(start), false)
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	RecordWebRequest(time.Since(start), true)

	return doc, nil
}

// UserMatchesByState fetches a user's current matches grouped by state
func (w *WebClient) UserMatchesByState(ctx context.Context, userID string) (Document, error) {
	query := url.Values{}
	query.Set("userId", userID)
	return w.get(ctx, "/match/v1/matches/groupByState", query)
}

// MatchV2 fetches the v2 web representation of a match
func (w *WebClient) MatchV2(ctx context.Context, matchID string) (Document, error) {
	return w.get(ctx, "/match/v2/match/"+url.PathEscape(matchID), nil)
}

// MatchV1 fetches the v1 web representation of a match
func (w *WebClient) MatchV1(ctx context.Context, matchID string) (Document, error) {
	return w.get(ctx, "/match/v1/matches/"+url.PathEscape(matchID), nil)
}
