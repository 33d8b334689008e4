// Package session orchestrates one analysis run: resolve the player and
// their match, attribute factions, collect metrics, compute the pre-match
// estimate, then poll the live score until the match ends.
package session

import (
	"context"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/cs2tools/live-winprob/internal/config"
	"github.com/cs2tools/live-winprob/internal/display"
	"github.com/cs2tools/live-winprob/internal/emitter"
	"github.com/cs2tools/live-winprob/internal/faceit"
	"github.com/cs2tools/live-winprob/internal/logger"
	"github.com/cs2tools/live-winprob/internal/metrics"
	"github.com/cs2tools/live-winprob/internal/probability"
	"github.com/cs2tools/live-winprob/internal/resolver"
	"github.com/cs2tools/live-winprob/internal/score"
	"github.com/cs2tools/live-winprob/internal/stats"
)

// Session states
const (
	StateInit     = "INIT"
	StateResolved = "RESOLVED"
	StatePolling  = "POLLING"
	StateTerminal = "TERMINAL"
)

const totalSteps = 4

// PlayerResolver resolves nicknames and active matches
type PlayerResolver interface {
	ResolvePlayer(ctx context.Context, nickname string) (faceit.Player, error)
	ResolveMatch(ctx context.Context, player faceit.Player) (resolver.MatchInfo, error)
}

// MetricsCollector collects recent form for a roster
type MetricsCollector interface {
	Collect(ctx context.Context, roster []stats.RosterEntry, mapName string) ([]stats.PlayerMetrics, error)
}

// ScoreSource reads the live round score of a match
type ScoreSource interface {
	Fetch(ctx context.Context, matchID, ourKey, enemyKey string) score.LiveScore
}

// Session drives one analysis run from resolution to the terminal event
type Session struct {
	id       string
	cfg      *config.Config
	resolver PlayerResolver
	stats    MetricsCollector
	prob     *probability.Engine
	scores   ScoreSource
	emit     *emitter.Emitter
	display  *display.Renderer
	logger   *logrus.Logger
	slog     *logger.SessionLogger

	mu    sync.Mutex
	state string
}

// New creates a new session with a fresh id
func New(cfg *config.Config, res PlayerResolver, collector MetricsCollector, prob *probability.Engine, scores ScoreSource, emit *emitter.Emitter, renderer *display.Renderer, log *logrus.Logger) *Session {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}

	id := uuid.NewString()
	return &Session{
		id:       id,
		cfg:      cfg,
		resolver: res,
		stats:    collector,
		prob:     prob,
		scores:   scores,
		emit:     emit,
		display:  renderer,
		logger:   log,
		slog:     logger.NewSessionLogger(log, id),
		state:    StateInit,
	}
}

// ID returns the session id carried by every emitted event
func (s *Session) ID() string {
	return s.id
}

// State returns the current session state
func (s *Session) State() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(state string) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// Run executes the full session. It returns nil when the match reaches
// its terminal state or once mode completes, the context error on
// cancellation, and the failure otherwise.
func (s *Session) Run(ctx context.Context, nickname string) error {
	s.slog.LogSessionStart(nickname, s.cfg.Resolver.ForcedMatchID, s.cfg.PollInterval().Seconds(), s.cfg.Polling.Once)

	s.display.Step(1, totalSteps, fmt.Sprintf("Resolving player %s...", nickname))
	player, err := s.resolver.ResolvePlayer(ctx, nickname)
	if err != nil {
		return err
	}

	s.display.Step(2, totalSteps, "Looking for an active match...")
	info, err := s.resolver.ResolveMatch(ctx, player)
	if err != nil {
		return err
	}
	metrics.RecordResolverTier(info.Method)
	s.setState(StateResolved)

	attr, err := resolver.Attribute(info.Match, info.MatchID, player, nickname)
	if err != nil {
		return err
	}
	mapName := resolver.MapName(info.Match)

	s.display.Step(3, totalSteps, "Collecting player metrics...")
	our, enemy, err := s.collectTeams(ctx, attr, mapName)
	if err != nil {
		return err
	}

	analysis := s.analyze(player, info, attr, mapName, our, enemy)
	if err := s.emit.Emit(analysis); err != nil {
		return err
	}
	s.display.Analysis(analysis)
	s.slog.LogAnalysisComplete(info.MatchID, mapName, analysis.Our.Score, analysis.Enemy.Score, analysis.BaseProb)
	metrics.UpdateProbabilities(analysis.BaseProb, analysis.BaseProb)

	s.display.Step(4, totalSteps, "Starting live polling...")
	return s.poll(ctx, info.MatchID, attr, analysis.BaseProb)
}

// collectTeams fans both rosters out as one collection then splits the
// results back into factions
func (s *Session) collectTeams(ctx context.Context, attr resolver.Attribution, mapName string) ([]stats.PlayerMetrics, []stats.PlayerMetrics, error) {
	roster := make([]stats.RosterEntry, 0, len(attr.OurRoster)+len(attr.EnemyRoster))
	for _, m := range attr.OurRoster {
		roster = append(roster, stats.RosterEntry{PlayerID: m.PlayerID, Nickname: m.Nickname})
	}
	for _, m := range attr.EnemyRoster {
		roster = append(roster, stats.RosterEntry{PlayerID: m.PlayerID, Nickname: m.Nickname})
	}

	collected, err := s.stats.Collect(ctx, roster, mapName)
	if err != nil {
		return nil, nil, err
	}

	split := len(attr.OurRoster)
	return collected[:split], collected[split:], nil
}

// analyze computes the pre-match estimate and builds the analysis event
func (s *Session) analyze(player faceit.Player, info resolver.MatchInfo, attr resolver.Attribution, mapName string, our, enemy []stats.PlayerMetrics) emitter.InitialAnalysis {
	ourScore := s.prob.TeamScore(features(our))
	enemyScore := s.prob.TeamScore(features(enemy))
	baseProb := s.prob.BaseProbability(ourScore, enemyScore)

	ourElo := stats.AverageElo(our)
	enemyElo := stats.AverageElo(enemy)

	favored := attr.OurName
	if baseProb < 0.5 {
		favored = attr.EnemyName
	}

	return emitter.InitialAnalysis{
		Type:        emitter.TypeInitialAnalysis,
		OK:          true,
		SessionID:   s.id,
		Nickname:    player.Nickname,
		PlayerID:    player.ID,
		MatchID:     info.MatchID,
		MapName:     mapName,
		RoundTarget: s.cfg.Model.RoundTarget,
		Our:         s.teamAnalysis(attr.OurKey, attr.OurName, our, ourScore, ourElo),
		Enemy:       s.teamAnalysis(attr.EnemyKey, attr.EnemyName, enemy, enemyScore, enemyElo),
		EloGap:      ourElo - enemyElo,
		BaseProb:    baseProb,
		Favored:     favored,
		Confidence:  confidenceLabel(baseProb),
	}
}

// teamAnalysis builds one faction's event block
func (s *Session) teamAnalysis(key, name string, players []stats.PlayerMetrics, teamScore, avgElo float64) emitter.TeamAnalysis {
	lines := make([]emitter.PlayerLine, 0, len(players))
	for _, p := range players {
		lines = append(lines, emitter.PlayerLine{
			Nickname:   p.Nickname,
			PlayerID:   p.PlayerID,
			Elo:        p.Elo,
			SkillLevel: p.SkillLevel,
			KD:         p.KD,
			Winrate:    p.Winrate,
			MapWinrate: p.MapWinrate,
			HSPct:      p.HSPct,
			AvgKills:   p.AvgKills,
			Matches:    p.Matches,
			MapMatches: p.MapMatches,
			Score:      s.prob.PlayerScore(p.Features()),
		})
	}

	return emitter.TeamAnalysis{
		FactionKey:    key,
		Name:          name,
		AvgElo:        avgElo,
		Score:         teamScore,
		SampleQuality: teamSampleQuality(players),
		Players:       lines,
	}
}

// poll runs the live polling loop until the match ends or the context is
// cancelled. Cancellation returns immediately without a terminal event.
func (s *Session) poll(ctx context.Context, matchID string, attr resolver.Attribution, baseProb float64) error {
	s.setState(StatePolling)

	var prev score.LiveScore
	poll := 0
	emitted := 0

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		poll++
		start := time.Now()
		live := s.scores.Fetch(ctx, matchID, attr.OurKey, attr.EnemyKey)
		metrics.RecordPoll(time.Since(start).Seconds())
		metrics.RecordScoreSource(live.Source)

		if live.Source == score.SourceUnavailable {
			s.display.NoData(poll)
			s.slog.LogPollUnchanged(poll, prev.Our, prev.Enemy)
			metrics.RecordSuppressedPoll()
		} else {
			snap := s.prob.Estimate(baseProb, live.Our, live.Enemy)

			if poll == 1 || live.Changed(prev) {
				update := emitter.LiveUpdate{
					Type:        emitter.TypeLiveUpdate,
					SessionID:   s.id,
					MatchID:     matchID,
					Poll:        poll,
					OurRounds:   live.Our,
					EnemyRounds: live.Enemy,
					OurSide:     live.OurSide,
					EnemySide:   live.EnemySide,
					Source:      live.Source,
					BaseProb:    snap.Base,
					ScoreProb:   snap.Score,
					DynamicProb: snap.Dynamic,
					ImpliedOdds: probability.ImpliedOdds(snap.Dynamic).StringFixed(2),
				}
				if err := s.emit.Emit(update); err != nil {
					return err
				}
				s.display.LiveUpdate(update)
				s.slog.LogPollUpdate(poll, live.Our, live.Enemy, live.Source, snap.Dynamic)
				metrics.RecordUpdateEmitted()
				metrics.UpdateProbabilities(snap.Base, snap.Dynamic)
				metrics.UpdateScore(live.Our, live.Enemy)
				emitted++
			} else {
				s.slog.LogPollUnchanged(poll, live.Our, live.Enemy)
				metrics.RecordSuppressedPoll()
			}
			prev = live

			target := s.cfg.Model.RoundTarget
			if live.Our >= target || live.Enemy >= target {
				return s.finish(matchID, attr, live, poll)
			}
		}

		if s.cfg.Polling.Once {
			return nil
		}

		timer := time.NewTimer(s.pollDelay(live.Source))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// pollDelay stretches the interval after a poll that found no usable
// score, giving a throttled or dark upstream room to recover
func (s *Session) pollDelay(src string) time.Duration {
	delay := s.cfg.PollInterval()
	if src == score.SourceUnavailable {
		delay += s.cfg.RateLimitBackoff()
	}
	return delay
}

// finish emits the terminal event and marks the session terminal
func (s *Session) finish(matchID string, attr resolver.Attribution, live score.LiveScore, polls int) error {
	winner := attr.OurName
	winnerIsOurs := live.Our > live.Enemy
	if !winnerIsOurs {
		winner = attr.EnemyName
	}

	over := emitter.MatchOver{
		Type:         emitter.TypeMatchOver,
		SessionID:    s.id,
		MatchID:      matchID,
		Winner:       winner,
		WinnerIsOurs: winnerIsOurs,
		OurRounds:    live.Our,
		EnemyRounds:  live.Enemy,
		Polls:        polls,
	}
	if err := s.emit.Emit(over); err != nil {
		return err
	}
	s.display.MatchOver(over)
	s.slog.LogMatchOver(winner, live.Our, live.Enemy, polls)
	metrics.RecordMatchCompleted()
	s.setState(StateTerminal)

	return nil
}

func features(players []stats.PlayerMetrics) []probability.Features {
	out := make([]probability.Features, 0, len(players))
	for _, p := range players {
		out = append(out, p.Features())
	}
	return out
}

// teamSampleQuality is the weakest player label on the roster
func teamSampleQuality(players []stats.PlayerMetrics) string {
	rank := map[string]int{"LOW": 0, "MEDIUM": 1, "HIGH": 2}
	worst := "HIGH"
	if len(players) == 0 {
		return "LOW"
	}
	for _, p := range players {
		if rank[p.SampleQuality()] < rank[worst] {
			worst = p.SampleQuality()
		}
	}
	return worst
}

// confidenceLabel buckets the pre-match estimate by its distance from a
// coin flip
func confidenceLabel(baseProb float64) string {
	gap := math.Abs(baseProb - 0.5)
	switch {
	case gap < 0.05:
		return "even"
	case gap < 0.15:
		return "slight"
	case gap < 0.30:
		return "clear"
	default:
		return "heavy"
	}
}
