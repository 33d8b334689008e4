// Package logger provides polling-session logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// SessionLogger provides dedicated logging for a live polling session.
type SessionLogger struct {
	*logrus.Entry
}

// NewSessionLogger creates a new session logger bound to a session id.
func NewSessionLogger(baseLogger *logrus.Logger, sessionID string) *SessionLogger {
	return &SessionLogger{
		Entry: baseLogger.WithFields(logrus.Fields{
			"component":  "session",
			"session_id": sessionID,
		}),
	}
}

// LogSessionStart logs the start of a polling session.
func (sl *SessionLogger) LogSessionStart(nickname, matchID string, intervalSeconds float64, once bool) {
	sl.WithFields(logrus.Fields{
		"nickname":         nickname,
		"match_id":         matchID,
		"interval_seconds": intervalSeconds,
		"single_shot":      once,
	}).Info("Polling session started")
}

// LogAnalysisComplete logs the pre-match analysis result.
func (sl *SessionLogger) LogAnalysisComplete(matchID, mapName string, ourScore, enemyScore, baseProb float64) {
	sl.WithFields(logrus.Fields{
		"match_id":    matchID,
		"map":         mapName,
		"our_score":   ourScore,
		"enemy_score": enemyScore,
		"base_prob":   baseProb,
	}).Info("Pre-match analysis completed")
}

// LogPollUpdate logs an emitted live update.
func (sl *SessionLogger) LogPollUpdate(poll int, ourRounds, enemyRounds int, source string, dynamicProb float64) {
	sl.WithFields(logrus.Fields{
		"poll":         poll,
		"our_rounds":   ourRounds,
		"enemy_rounds": enemyRounds,
		"score_source": source,
		"dynamic_prob": dynamicProb,
	}).Info("Live update emitted")
}

// LogPollUnchanged logs a tick suppressed because the score did not move.
func (sl *SessionLogger) LogPollUnchanged(poll int, ourRounds, enemyRounds int) {
	sl.WithFields(logrus.Fields{
		"poll":         poll,
		"our_rounds":   ourRounds,
		"enemy_rounds": enemyRounds,
	}).Debug("Score unchanged, update suppressed")
}

// LogMatchOver logs the terminal transition.
func (sl *SessionLogger) LogMatchOver(winner string, ourRounds, enemyRounds, polls int) {
	sl.WithFields(logrus.Fields{
		"winner":       winner,
		"our_rounds":   ourRounds,
		"enemy_rounds": enemyRounds,
		"polls":        polls,
	}).Info("Match over, session terminal")
}

// LogSessionStats logs periodic session counters.
func (sl *SessionLogger) LogSessionStats(polls, emitted int, cacheHits, cacheMisses int64) {
	sl.WithFields(logrus.Fields{
		"polls":        polls,
		"emitted":      emitted,
		"cache_hits":   cacheHits,
		"cache_misses": cacheMisses,
	}).Info("Session statistics")
}
