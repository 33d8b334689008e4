// Package stats aggregates recent player form from FACEIT match records
// and turns it into the feature vectors the probability model consumes.
package stats

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/cs2tools/live-winprob/internal/config"
	"github.com/cs2tools/live-winprob/internal/faceit"
	"github.com/cs2tools/live-winprob/internal/probability"
)

// Neutral priors applied to players with no usable recent records
const (
	NeutralKD         = 1.0
	NeutralWinrate    = 0.5
	NeutralMapWinrate = 0.5
	NeutralHSPct      = 0.0
	NeutralAvgKills   = 15.0
)

// PlayerMetrics holds the aggregated recent form of one player
type PlayerMetrics struct {
	PlayerID   string
	Nickname   string
	Elo        int
	SkillLevel int
	KD         float64
	Winrate    float64
	MapWinrate float64
	HSPct      float64
	AvgKills   float64
	Matches    int
	MapMatches int
	// MapFallback marks a map winrate that fell back to the overall
	// winrate because no recent match was played on the map
	MapFallback bool
}

// Features maps the metrics onto the probability model inputs
func (m PlayerMetrics) Features() probability.Features {
	return probability.Features{
		Elo:        float64(m.Elo),
		KD:         m.KD,
		Winrate:    m.Winrate,
		MapWinrate: m.MapWinrate,
		HSPct:      m.HSPct,
		AvgKills:   m.AvgKills,
	}
}

// SampleQuality labels how much recent data backs the metrics
func (m PlayerMetrics) SampleQuality() string {
	switch {
	case m.Matches < 10:
		return "LOW"
	case m.Matches < 20:
		return "MEDIUM"
	default:
		return "HIGH"
	}
}

// RosterEntry identifies one player to collect metrics for
type RosterEntry struct {
	PlayerID string
	Nickname string
}

// Engine collects player metrics through the Data API
type Engine struct {
	client *faceit.Client
	cfg    *config.StatsConfig
	logger *logrus.Logger
}

// NewEngine creates a new stats engine
func NewEngine(client *faceit.Client, cfg *config.StatsConfig, logger *logrus.Logger) *Engine {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	return &Engine{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// Collect fetches metrics for a roster concurrently. Results keep the
// roster order. A player whose fetch fails degrades to neutral priors
// instead of aborting the collection; only cancellation is fatal.
func (e *Engine) Collect(ctx context.Context, roster []RosterEntry, mapName string) ([]PlayerMetrics, error) {
	results := make([]PlayerMetrics, len(roster))

	g, ctx := errgroup.WithContext(ctx)
	if e.cfg.FanOutLimit > 0 {
		g.SetLimit(e.cfg.FanOutLimit)
	}

	for i, entry := range roster {
		i, entry := i, entry
		g.Go(func() error {
			metrics, err := e.PlayerMetrics(ctx, entry, mapName)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				e.logger.WithError(err).WithField("player", entry.Nickname).Warn("Player metrics unavailable, using neutral priors")
				results[i] = neutralMetrics(entry, mapName)
				return nil
			}
			results[i] = metrics
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// neutralMetrics is the prior-only entry for a player whose stats could
// not be fetched
func neutralMetrics(entry RosterEntry, mapName string) PlayerMetrics {
	metrics := PlayerMetrics{
		PlayerID:   entry.PlayerID,
		Nickname:   entry.Nickname,
		Elo:        faceit.DefaultElo,
		SkillLevel: faceit.DefaultSkillLevel,
	}
	aggregateRecords(&metrics, nil, mapName)
	return metrics
}

// PlayerMetrics fetches and aggregates one player's recent form
func (e *Engine) PlayerMetrics(ctx context.Context, entry RosterEntry, mapName string) (PlayerMetrics, error) {
	metrics := PlayerMetrics{
		PlayerID:   entry.PlayerID,
		Nickname:   entry.Nickname,
		Elo:        faceit.DefaultElo,
		SkillLevel: faceit.DefaultSkillLevel,
	}

	statsDoc, err := e.client.PlayerStats(ctx, entry.PlayerID, e.cfg.Lookback)
	if err != nil {
		return PlayerMetrics{}, err
	}
	aggregateRecords(&metrics, recordsFromStats(statsDoc), mapName)

	detail, err := e.client.PlayerByID(ctx, entry.PlayerID)
	if err != nil {
		return PlayerMetrics{}, err
	}
	if detail != nil {
		player := faceit.PlayerFromDocument(detail, e.client.Game())
		metrics.Elo = player.Elo
		metrics.SkillLevel = player.SkillLevel
		if metrics.Nickname == "" {
			metrics.Nickname = player.Nickname
		}
	}

	e.logger.WithFields(logrus.Fields{
		"player":  metrics.Nickname,
		"matches": metrics.Matches,
		"kd":      metrics.KD,
	}).Debug("Player metrics collected")

	return metrics, nil
}

// AverageElo averages roster elo, zero for an empty roster
func AverageElo(players []PlayerMetrics) float64 {
	if len(players) == 0 {
		return 0
	}
	total := 0
	for _, p := range players {
		total += p.Elo
	}
	return float64(total) / float64(len(players))
}

func recordsFromStats(statsDoc faceit.Document) []faceit.Document {
	items := statsDoc.List("items")
	records := make([]faceit.Document, 0, len(items))
	for _, item := range items {
		if rec := faceit.AsDocument(item).Sub("stats"); rec != nil {
			records = append(records, rec)
		}
	}
	return records
}

// aggregateRecords folds match records into metrics. A record whose
// numeric fields cannot be read is dropped entirely.
func aggregateRecords(metrics *PlayerMetrics, records []faceit.Document, mapName string) {
	mapClean := strings.ReplaceAll(strings.ToLower(mapName), "de_", "")

	var kills, deaths, headshots float64
	var matches, wins, mapTotal, mapWins int

	for _, rec := range records {
		k, ok := statFloat(rec, 0, "Kills", "kills")
		if !ok {
			continue
		}
		d, ok := statFloat(rec, 1, "Deaths", "deaths")
		if !ok {
			continue
		}
		h, ok := statFloat(rec, 0, "Headshots", "headshots")
		if !ok {
			continue
		}
		win := statString(rec, "0", "Result", "result") == "1"
		recMap := strings.ReplaceAll(strings.ToLower(statString(rec, "", "Map", "map")), "de_", "")

		matches++
		kills += k
		deaths += d
		headshots += h
		if win {
			wins++
		}
		if mapClean != "" && strings.Contains(recMap, mapClean) {
			mapTotal++
			if win {
				mapWins++
			}
		}
	}

	metrics.Matches = matches
	metrics.MapMatches = mapTotal
	metrics.MapFallback = mapTotal == 0

	if matches == 0 {
		metrics.KD = NeutralKD
		metrics.Winrate = NeutralWinrate
		metrics.MapWinrate = NeutralMapWinrate
		metrics.HSPct = NeutralHSPct
		metrics.AvgKills = NeutralAvgKills
		return
	}

	den := deaths
	if den < 1 {
		den = 1
	}
	killsDen := kills
	if killsDen < 1 {
		killsDen = 1
	}

	metrics.KD = kills / den
	metrics.Winrate = float64(wins) / float64(matches)
	metrics.AvgKills = kills / float64(matches)
	metrics.HSPct = headshots / killsDen
	if mapTotal > 0 {
		metrics.MapWinrate = float64(mapWins) / float64(mapTotal)
	} else {
		metrics.MapWinrate = metrics.Winrate
	}
}

// statFloat reads the first present key as a float. A present value
// that cannot be coerced invalidates the record.
func statFloat(rec faceit.Document, fallback float64, keys ...string) (float64, bool) {
	for _, key := range keys {
		raw, present := rec[key]
		if !present {
			continue
		}
		switch v := raw.(type) {
		case float64:
			return v, true
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return 0, false
			}
			return f, true
		default:
			return 0, false
		}
	}
	return fallback, true
}

// statString reads the first present key coerced to a string
func statString(rec faceit.Document, fallback string, keys ...string) string {
	for _, key := range keys {
		if raw, present := rec[key]; present {
			return fmt.Sprint(raw)
		}
	}
	return fallback
}
