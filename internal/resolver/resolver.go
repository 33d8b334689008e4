// Package resolver turns a FACEIT nickname into a running match: it
// resolves the profile, discovers the active match id through a tier
// cascade, and attributes the player to a faction.
package resolver

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cs2tools/live-winprob/internal/config"
	"github.com/cs2tools/live-winprob/internal/faceit"
	"github.com/cs2tools/live-winprob/internal/norm"
)

// Resolution methods, ordered from most to least direct
const (
	MethodForced  = "forced id"
	MethodProfile = "profile scan"
	MethodWeb     = "web state lookup"
	MethodHistory = "recent history"
)

const searchFallbackLimit = 5

// MatchInfo is the product of match resolution
type MatchInfo struct {
	MatchID string
	Match   faceit.Document
	Method  string
}

// Resolver discovers active matches through the FACEIT APIs
type Resolver struct {
	data   *faceit.Client
	web    *faceit.WebClient
	cfg    *config.ResolverConfig
	logger *logrus.Logger
}

// NewResolver creates a new resolver
func NewResolver(data *faceit.Client, web *faceit.WebClient, cfg *config.ResolverConfig, logger *logrus.Logger) *Resolver {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	return &Resolver{
		data:   data,
		web:    web,
		cfg:    cfg,
		logger: logger,
	}
}

// ResolvePlayer resolves a nickname to a full profile, trying the exact
// lookup first and falling back to prefix search
func (r *Resolver) ResolvePlayer(ctx context.Context, nickname string) (faceit.Player, error) {
	doc, err := r.data.PlayerByNickname(ctx, nickname)
	if err != nil {
		return faceit.Player{}, err
	}
	if doc == nil {
		doc, err = r.searchProfile(ctx, nickname)
		if err != nil {
			return faceit.Player{}, err
		}
	}
	if doc == nil {
		return faceit.Player{}, faceit.NewPlayerNotFoundError(nickname)
	}

	player := faceit.PlayerFromDocument(doc, r.data.Game())
	if player.ID == "" {
		return faceit.Player{}, faceit.NewPlayerNotFoundError(nickname)
	}

	r.logger.WithFields(logrus.Fields{
		"nickname":  player.Nickname,
		"player_id": player.ID,
		"elo":       player.Elo,
	}).Info("Player resolved")

	return player, nil
}

// searchProfile falls back to the search endpoint, preferring an exact
// nickname hit over the first result
func (r *Resolver) searchProfile(ctx context.Context, nickname string) (faceit.Document, error) {
	results, err := r.data.SearchPlayers(ctx, nickname, searchFallbackLimit)
	if err != nil || len(results) == 0 {
		return nil, err
	}

	wanted := norm.CanonicalNick(nickname)
	chosen := results[0]
	for _, result := range results {
		if norm.CanonicalNick(result.String("nickname")) == wanted {
			chosen = result
			break
		}
	}

	id := chosen.String("player_id", "playerId", "id", "guid")
	if id == "" {
		return nil, nil
	}

	r.logger.WithFields(logrus.Fields{
		"nickname": chosen.String("nickname"),
		"query":    nickname,
	}).Info("Nickname resolved through search")

	return r.data.PlayerByID(ctx, id)
}

// ResolveMatch finds the player's current match. A forced id wins when
// plausible; otherwise the profile payloads, the web state lookup, and
// the recent history are tried in order. Finding an id commits to it.
func (r *Resolver) ResolveMatch(ctx context.Context, player faceit.Player) (MatchInfo, error) {
	var tried []string

	if forced := strings.TrimSpace(r.cfg.ForcedMatchID); forced != "" {
		if norm.PlausibleMatchID(forced) {
			return r.ensureMatch(ctx, MatchInfo{MatchID: forced, Method: MethodForced})
		}
		r.logger.WithField("match_id", forced).Warn("Ignoring implausible forced match id")
	}

	tried = append(tried, MethodProfile)
	if id := activeMatchID(player.Raw, r.data.Game(), r.cfg.MaxSearchDepth); id != "" {
		return r.ensureMatch(ctx, MatchInfo{MatchID: id, Method: MethodProfile})
	}
	detail, err := r.data.PlayerByID(ctx, player.ID)
	if err != nil {
		return MatchInfo{}, err
	}
	if id := activeMatchID(detail, r.data.Game(), r.cfg.MaxSearchDepth); id != "" {
		return r.ensureMatch(ctx, MatchInfo{MatchID: id, Method: MethodProfile})
	}

	// the web API is an undocumented surface, treat failures as a miss
	tried = append(tried, MethodWeb)
	groups, err := r.web.UserMatchesByState(ctx, player.ID)
	if err != nil {
		r.logger.WithError(err).Debug("Web state lookup failed")
	} else if id := matchIDFromStateGroups(groups); id != "" {
		return r.ensureMatch(ctx, MatchInfo{MatchID: id, Method: MethodWeb})
	}

	tried = append(tried, MethodHistory)
	info, err := r.matchFromHistory(ctx, player.ID)
	if err != nil {
		return MatchInfo{}, err
	}
	if info.MatchID != "" {
		r.logger.WithFields(logrus.Fields{
			"match_id": info.MatchID,
			"method":   info.Method,
		}).Info("Active match resolved")
		return info, nil
	}

	return MatchInfo{}, faceit.NewResolutionExhaustedError(player.Nickname, tried)
}

// matchFromHistory walks the most recent matches looking for one that is
// still running. A match with no status and no completion timestamp is
// kept as a low confidence candidate when the config allows it.
func (r *Resolver) matchFromHistory(ctx context.Context, playerID string) (MatchInfo, error) {
	from := time.Now().Add(-r.cfg.HistoryLookback())
	history, err := r.data.PlayerHistory(ctx, playerID, from, r.cfg.HistoryCandidates)
	if err != nil {
		return MatchInfo{}, err
	}

	var unknown MatchInfo
	for _, item := range history.List("items") {
		entry := faceit.AsDocument(item)
		if entry == nil {
			continue
		}
		id := entry.String("match_id")
		if !norm.PlausibleMatchID(id) {
			continue
		}

		match, err := r.data.Match(ctx, id)
		if err != nil {
			return MatchInfo{}, err
		}
		if match == nil {
			continue
		}

		status := match.String("status")
		if IsActiveStatus(status) {
			return MatchInfo{MatchID: id, Match: match, Method: MethodHistory}, nil
		}
		if r.cfg.UnknownStatusActive && unknown.MatchID == "" && status == "" && match.String("finished_at") == "" {
			unknown = MatchInfo{MatchID: id, Match: match, Method: MethodHistory}
		}
	}

	if unknown.MatchID != "" {
		r.logger.WithField("match_id", unknown.MatchID).Info("Treating match with unknown status as possibly active")
	}
	return unknown, nil
}

// ensureMatch fetches the match payload when the tier only produced an id
func (r *Resolver) ensureMatch(ctx context.Context, info MatchInfo) (MatchInfo, error) {
	if info.Match == nil {
		match, err := r.data.Match(ctx, info.MatchID)
		if err != nil {
			return MatchInfo{}, err
		}
		if match == nil {
			return MatchInfo{}, faceit.NewMatchNotFoundError(info.MatchID)
		}
		info.Match = match
	}

	r.logger.WithFields(logrus.Fields{
		"match_id": info.MatchID,
		"method":   info.Method,
	}).Info("Active match resolved")

	return info, nil
}
