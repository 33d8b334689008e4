// Package score reads the live round score of a match, falling through
// the Data API and two web API generations until one yields a value.
package score

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/cs2tools/live-winprob/internal/faceit"
	"github.com/cs2tools/live-winprob/internal/norm"
)

// Score sources, in the order they are tried
const (
	SourceDataAPI     = "data_api_v4"
	SourceWebV2       = "web_api_v2"
	SourceWebV1       = "web_api_v1"
	SourceUnavailable = "unavailable"
)

// Side key spellings tried on team payloads
var sideKeys = []string{"side", "current_side", "currentSide", "team_side", "teamSide", "starting_side", "startingSide"}

// LiveScore is one observation of the match score
type LiveScore struct {
	Our       int
	Enemy     int
	Source    string
	OurSide   string
	EnemySide string
}

// Changed reports whether the round score moved since a previous
// observation
func (s LiveScore) Changed(prev LiveScore) bool {
	return s.Our != prev.Our || s.Enemy != prev.Enemy
}

// Fetcher reads live scores through the API cascade
type Fetcher struct {
	data   *faceit.Client
	web    *faceit.WebClient
	logger *logrus.Logger
}

// NewFetcher creates a new score fetcher
func NewFetcher(data *faceit.Client, web *faceit.WebClient, logger *logrus.Logger) *Fetcher {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	return &Fetcher{
		data:   data,
		web:    web,
		logger: logger,
	}
}

// Fetch returns the current score. Source failures fall through to the
// next source instead of surfacing, so a poll can never error out; a
// fully dark board reports the unavailable source with a zero score.
func (f *Fetcher) Fetch(ctx context.Context, matchID, ourKey, enemyKey string) LiveScore {
	match, err := f.data.Match(ctx, matchID)
	if err != nil {
		f.logger.WithError(err).Debug("Data API score fetch failed")
	} else if match != nil {
		if live, ok := fromDataAPI(match, ourKey, enemyKey); ok {
			return live
		}
	}

	v2, err := f.web.MatchV2(ctx, matchID)
	if err != nil {
		f.logger.WithError(err).Debug("Web v2 score fetch failed")
	} else if payload := v2.Sub("payload"); payload != nil {
		if live, ok := fromWebV2(payload, ourKey, enemyKey); ok {
			return live
		}
	}

	v1, err := f.web.MatchV1(ctx, matchID)
	if err != nil {
		f.logger.WithError(err).Debug("Web v1 score fetch failed")
	} else if payload := v1.Sub("payload"); payload != nil {
		if live, ok := fromWebV1(payload, ourKey, enemyKey); ok {
			return live
		}
	}

	return LiveScore{Source: SourceUnavailable}
}

// fromDataAPI reads the results score map, requiring a non-zero value,
// then the per-team score fields, where explicit presence is enough
func fromDataAPI(match faceit.Document, ourKey, enemyKey string) (LiveScore, bool) {
	teams := match.Sub("teams")

	if scoreMap := match.Sub("results").Sub("score"); len(scoreMap) > 0 {
		our := mappedScore(scoreMap, ourKey, "faction1")
		enemy := mappedScore(scoreMap, enemyKey, "faction2")
		if our > 0 || enemy > 0 {
			return withSides(LiveScore{Our: our, Enemy: enemy, Source: SourceDataAPI}, teams, ourKey, enemyKey), true
		}
	}

	our, ourPresent := presentScore(teams.Sub(ourKey), "score")
	enemy, enemyPresent := presentScore(teams.Sub(enemyKey), "score")
	if ourPresent || enemyPresent {
		return withSides(LiveScore{Our: our, Enemy: enemy, Source: SourceDataAPI}, teams, ourKey, enemyKey), true
	}

	return LiveScore{}, false
}

// fromWebV2 reads per-team scores, preferring a non-zero stats score
// over the plain team score, then falls back to the payload score map,
// which counts even at zero
func fromWebV2(payload faceit.Document, ourKey, enemyKey string) (LiveScore, bool) {
	teams := payload.Sub("teams")
	ourTeam := webTeam(teams, ourKey, "faction1")
	enemyTeam := webTeam(teams, enemyKey, "faction2")

	our, ourPresent := v2TeamScore(ourTeam)
	enemy, enemyPresent := v2TeamScore(enemyTeam)
	if ourPresent || enemyPresent {
		live := LiveScore{Our: our, Enemy: enemy, Source: SourceWebV2, OurSide: sideOf(ourTeam), EnemySide: sideOf(enemyTeam)}
		return live, true
	}

	if scoreMap := payload.Sub("score"); len(scoreMap) > 0 {
		live := LiveScore{
			Our:       mappedScore(scoreMap, ourKey, "faction1"),
			Enemy:     mappedScore(scoreMap, enemyKey, "faction2"),
			Source:    SourceWebV2,
			OurSide:   sideOf(ourTeam),
			EnemySide: sideOf(enemyTeam),
		}
		return live, true
	}

	return LiveScore{}, false
}

// fromWebV1 reads the results or payload score map, requiring a
// non-zero value
func fromWebV1(payload faceit.Document, ourKey, enemyKey string) (LiveScore, bool) {
	scoreMap := payload.Sub("results").Sub("score")
	if scoreMap == nil {
		scoreMap = payload.Sub("score")
	}
	if len(scoreMap) == 0 {
		return LiveScore{}, false
	}

	our := mappedScore(scoreMap, ourKey, "faction1")
	enemy := mappedScore(scoreMap, enemyKey, "faction2")
	if our > 0 || enemy > 0 {
		return LiveScore{Our: our, Enemy: enemy, Source: SourceWebV1}, true
	}
	return LiveScore{}, false
}

// mappedScore reads a faction score from a score map with the canonical
// faction key as fallback
func mappedScore(scoreMap faceit.Document, key, fallbackKey string) int {
	if v, ok := scoreMap.Int(key); ok {
		return v
	}
	if v, ok := scoreMap.Int(fallbackKey); ok {
		return v
	}
	return 0
}

// presentScore distinguishes an explicit zero from an absent field
func presentScore(team faceit.Document, key string) (int, bool) {
	raw, present := team[key]
	if !present || raw == nil {
		return 0, false
	}
	if v, ok := team.Int(key); ok {
		return v, true
	}
	return 0, true
}

// v2TeamScore prefers a present non-zero stats score, then the plain
// team score field
func v2TeamScore(team faceit.Document) (int, bool) {
	if v, ok := presentScore(team.Sub("stats"), "score"); ok && v != 0 {
		return v, true
	}
	return presentScore(team, "score")
}

func webTeam(teams faceit.Document, key, fallbackKey string) faceit.Document {
	if team := teams.Sub(key); team != nil {
		return team
	}
	return teams.Sub(fallbackKey)
}

func withSides(live LiveScore, teams faceit.Document, ourKey, enemyKey string) LiveScore {
	live.OurSide = sideOf(teams.Sub(ourKey))
	live.EnemySide = sideOf(teams.Sub(enemyKey))
	return live
}

// sideOf reads the team side from the known key spellings, on the team
// itself first and its stats object second
func sideOf(team faceit.Document) string {
	if team == nil {
		return ""
	}
	for _, key := range sideKeys {
		if side := norm.CanonicalSide(team.String(key)); side != "" {
			return side
		}
	}
	stats := team.Sub("stats")
	for _, key := range sideKeys {
		if side := norm.CanonicalSide(stats.String(key)); side != "" {
			return side
		}
	}
	return ""
}
