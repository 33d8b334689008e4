// Package probability implements the win probability model: weighted
// player skill scores, the pre-match logistic estimate, the race-to-target
// score estimate, and the progress-weighted blend of the two.
package probability

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/cs2tools/live-winprob/internal/config"
	"github.com/cs2tools/live-winprob/internal/norm"
)

// Features holds the per-player skill inputs of the pre-match model
type Features struct {
	Elo        float64
	KD         float64
	Winrate    float64
	MapWinrate float64
	HSPct      float64
	AvgKills   float64
}

// Snapshot bundles the probabilities computed for one poll
type Snapshot struct {
	Base    float64
	Score   float64
	Dynamic float64
}

// Engine evaluates the probability model for one model configuration
type Engine struct {
	cfg *config.ModelConfig
}

// NewEngine creates a new probability engine
func NewEngine(cfg *config.ModelConfig) *Engine {
	return &Engine{cfg: cfg}
}

// PlayerScore computes the weighted skill score of one player in [0, 1]
func (e *Engine) PlayerScore(f Features) float64 {
	w := e.cfg.Weights
	b := e.cfg.Bounds

	score := w.Elo*norm.Scale(f.Elo, b.Elo.Min, b.Elo.Max) +
		w.KD*norm.Scale(f.KD, b.KD.Min, b.KD.Max) +
		w.Winrate*norm.Scale(f.Winrate, b.Winrate.Min, b.Winrate.Max) +
		w.MapWinrate*norm.Scale(f.MapWinrate, b.MapWinrate.Min, b.MapWinrate.Max) +
		w.HSPct*norm.Scale(f.HSPct, b.HSPct.Min, b.HSPct.Max) +
		w.AvgKills*norm.Scale(f.AvgKills, b.AvgKills.Min, b.AvgKills.Max)

	return norm.Clamp01(score)
}

// TeamScore averages player scores. An empty roster scores zero.
func (e *Engine) TeamScore(features []Features) float64 {
	total := 0.0
	for _, f := range features {
		total += e.PlayerScore(f)
	}
	count := len(features)
	if count < 1 {
		count = 1
	}
	return total / float64(count)
}

// BaseProbability maps the team score edge through a logistic curve,
// clamped away from certainty
func (e *Engine) BaseProbability(ourScore, enemyScore float64) float64 {
	edge := ourScore - enemyScore
	raw := 1.0 / (1.0 + math.Exp(-e.cfg.Steepness*edge))
	return norm.Clamp(raw, e.cfg.BaseClampMin, e.cfg.BaseClampMax)
}

// RoundWinProbability shrinks the pre-match estimate toward a coin flip
// before it feeds the per-round model
func (e *Engine) RoundWinProbability(baseProb float64) float64 {
	return 0.5 + (norm.Clamp01(baseProb)-0.5)*e.cfg.Influence
}

// ScoreProbability computes the probability of winning the race to the
// round target from the current score, given a per-round win probability.
// dp[a][b] is the win probability needing a rounds while the enemy needs b.
func (e *Engine) ScoreProbability(ourRounds, enemyRounds int, roundWinP float64) float64 {
	target := e.cfg.RoundTarget
	p := norm.Clamp(roundWinP, e.cfg.BaseClampMin, e.cfg.BaseClampMax)

	needUs := target - ourRounds
	needEnemy := target - enemyRounds
	if needUs <= 0 {
		return 1.0
	}
	if needEnemy <= 0 {
		return 0.0
	}

	dp := make([][]float64, needUs+1)
	for a := range dp {
		dp[a] = make([]float64, needEnemy+1)
	}
	for b := 1; b <= needEnemy; b++ {
		dp[0][b] = 1.0
	}
	for a := 1; a <= needUs; a++ {
		for b := 1; b <= needEnemy; b++ {
			dp[a][b] = p*dp[a-1][b] + (1.0-p)*dp[a][b-1]
		}
	}
	return dp[needUs][needEnemy]
}

// Blend mixes the pre-match and score estimates. The score estimate
// gains weight with match progress and with the round gap, so early
// polls lean on skill while late or lopsided ones follow the board.
func (e *Engine) Blend(baseProb, scoreProb float64, ourRounds, enemyRounds int) float64 {
	target := e.cfg.RoundTarget

	maxRounds := 2 * (target - 1)
	if maxRounds < 1 {
		maxRounds = 1
	}
	progress := norm.Clamp01(float64(ourRounds+enemyRounds) / float64(maxRounds))
	weight := math.Pow(progress, e.cfg.ProgressExponent)
	if weight < e.cfg.WeightFloor {
		weight = e.cfg.WeightFloor
	}

	gapDen := target - 1
	if gapDen < 1 {
		gapDen = 1
	}
	gapBoost := norm.Clamp01(math.Abs(float64(ourRounds-enemyRounds))/float64(gapDen)) * e.cfg.GapInfluence

	weight = norm.Clamp(weight+gapBoost, e.cfg.WeightFloor, e.cfg.WeightCeiling)

	dynamic := baseProb*(1.0-weight) + scoreProb*weight
	return norm.Clamp(dynamic, e.cfg.DynamicClampMin, e.cfg.DynamicClampMax)
}

// Estimate computes the full snapshot for one live score
func (e *Engine) Estimate(baseProb float64, ourRounds, enemyRounds int) Snapshot {
	roundWin := e.RoundWinProbability(baseProb)
	scoreProb := e.ScoreProbability(ourRounds, enemyRounds, roundWin)

	return Snapshot{
		Base:    baseProb,
		Score:   scoreProb,
		Dynamic: e.Blend(baseProb, scoreProb, ourRounds, enemyRounds),
	}
}

// ImpliedOdds converts a win probability to fair decimal odds
func ImpliedOdds(p float64) decimal.Decimal {
	if p <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(1.0 / p).Round(2)
}
