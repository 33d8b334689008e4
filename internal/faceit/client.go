// Package faceit provides clients for the FACEIT Data API and the
// undocumented web API behind faceit.com.
package faceit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cs2tools/live-winprob/internal/config"
	"github.com/cs2tools/live-winprob/internal/transport"
)

// Client implements the FACEIT Data API v4 REST client
type Client struct {
	httpClient *transport.RateLimitedHTTPClient
	config     *config.FaceitConfig
	baseURL    string
	apiKey     string
	game       string
	cache      *ResponseCache
	logger     *logrus.Logger
}

// NewClient creates a new Data API client
func NewClient(
	cfg *config.FaceitConfig,
	httpClient *transport.RateLimitedHTTPClient,
	responseCache *ResponseCache,
	logger *logrus.Logger,
) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, NewMissingCredentialError("FACEIT_API_KEY")
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	return &Client{
		httpClient: httpClient,
		config:     cfg,
		baseURL:    strings.TrimSuffix(cfg.DataAPIURL, "/"),
		apiKey:     strings.TrimSpace(cfg.APIKey),
		game:       cfg.Game,
		cache:      responseCache,
		logger:     logger,
	}, nil
}

// Game returns the configured game identifier
func (c *Client) Game() string {
	return c.game
}

// get performs a GET request against the Data API. A 404 yields a nil
// Document without an error so callers can treat absence as a signal.
func (c *Client) get(ctx context.Context, path string, query url.Values, cacheable bool) (Document, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	if cacheable && c.cache != nil {
		if doc, found := c.cache.Get(endpoint); found {
			return doc, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	c.logger.WithField("endpoint", path).Debug("FACEIT Data API request")

	start := time.Now()
	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		RecordDataRequest(time.Since(start), false)
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		RecordDataRequest(time.Since(start), true)
		RecordNotFound()
		return nil, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		RecordDataRequest(time.Since(start), false)
		RecordRateLimit()
		return nil, NewRateLimitError(path)
	case resp.StatusCode != http.StatusOK:
		RecordDataRequest(time.Since(start), false)
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, MapStatusError(path, resp.StatusCode, string(body))
	}

	var doc Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		RecordDataRequest(time.Since(start), false)
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	RecordDataRequest(time.Since(start), true)

	if cacheable && c.cache != nil {
		c.cache.Set(endpoint, doc)
	}
	return doc, nil
}

// PlayerByNickname fetches a player profile by exact nickname
func (c *Client) PlayerByNickname(ctx context.Context, nickname string) (Document, error) {
	query := url.Values{}
	query.Set("nickname", nickname)
	query.Set("game", c.game)
	return c.get(ctx, "/players", query, true)
}

// SearchPlayers searches player nicknames by prefix
func (c *Client) SearchPlayers(ctx context.Context, nickname string, limit int) ([]Document, error) {
	query := url.Values{}
	query.Set("nickname", nickname)
	query.Set("game", c.game)
	query.Set("limit", strconv.Itoa(limit))

	doc, err := c.get(ctx, "/search/players", query, true)
	if err != nil || doc == nil {
		return nil, err
	}

	items := doc.List("items")
	results := make([]Document, 0, len(items))
	for _, item := range items {
		if entry := AsDocument(item); entry != nil {
			results = append(results, entry)
		}
	}
	return results, nil
}

// PlayerByID fetches a player profile by id
func (c *Client) PlayerByID(ctx context.Context, playerID string) (Document, error) {
	return c.get(ctx, "/players/"+url.PathEscape(playerID), nil, true)
}

// PlayerStats fetches recent match stats for a player
func (c *Client) PlayerStats(ctx context.Context, playerID string, limit int) (Document, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	return c.get(ctx, "/players/"+url.PathEscape(playerID)+"/games/"+c.game+"/stats", query, true)
}

// PlayerHistory fetches the recent match history for a player
func (c *Client) PlayerHistory(ctx context.Context, playerID string, from time.Time, limit int) (Document, error) {
	query := url.Values{}
	query.Set("game", c.game)
	query.Set("from", strconv.FormatInt(from.Unix(), 10))
	query.Set("limit", strconv.Itoa(limit))
	return c.get(ctx, "/players/"+url.PathEscape(playerID)+"/history", query, false)
}

// Match fetches match details. Live payloads change between polls so
// they are never cached.
func (c *Client) Match(ctx context.Context, matchID string) (Document, error) {
	return c.get(ctx, "/matches/"+url.PathEscape(matchID), nil, false)
}
