// Package display renders the human-readable console view of a session.
// It mirrors the numbers carried by the JSON events without owning any of
// the computation.
package display

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/cs2tools/live-winprob/internal/emitter"
)

// Renderer writes formatted session output to a stream
type Renderer struct {
	out      io.Writer
	barWidth int
}

// NewRenderer creates a new console renderer
func NewRenderer(out io.Writer, barWidth int) *Renderer {
	if barWidth < 10 {
		barWidth = 40
	}
	return &Renderer{out: out, barWidth: barWidth}
}

// Step prints a numbered progress line
func (r *Renderer) Step(n, total int, text string) {
	fmt.Fprintf(r.out, "[%d/%d] %s\n", n, total, text)
}

// Analysis prints the pre-match breakdown: both team tables, the
// probability bar, and the verdict line
func (r *Renderer) Analysis(a emitter.InitialAnalysis) {
	fmt.Fprintf(r.out, "\nMatch %s", a.MatchID)
	if a.MapName != "" {
		fmt.Fprintf(r.out, " on %s", a.MapName)
	}
	fmt.Fprintf(r.out, " (first to %d)\n\n", a.RoundTarget)

	r.teamTable(a.Our)
	r.teamTable(a.Enemy)

	fmt.Fprintf(r.out, "Avg elo: %.0f vs %.0f (gap %+.0f)  |  sample quality: %s\n\n",
		a.Our.AvgElo, a.Enemy.AvgElo, a.EloGap, a.SampleQualityLabel())

	fmt.Fprintf(r.out, "Pre-match win probability: %s %.1f%%\n", r.bar(a.BaseProb), a.BaseProb*100)
	if a.Confidence == "even" {
		fmt.Fprintf(r.out, "Verdict: even match\n\n")
	} else {
		fmt.Fprintf(r.out, "Verdict: %s %s favorite\n\n", a.Favored, a.Confidence)
	}
}

// teamTable prints one faction's per-player metrics
func (r *Renderer) teamTable(team emitter.TeamAnalysis) {
	fmt.Fprintf(r.out, "%s (score %.3f)\n", team.Name, team.Score)

	w := tabwriter.NewWriter(r.out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  PLAYER\tELO\tLVL\tK/D\tWIN%\tMAP%\tHS%\tAVG K\tMATCHES")
	for _, p := range team.Players {
		mapCol := fmt.Sprintf("%.0f", p.MapWinrate*100)
		if p.MapMatches == 0 {
			// overall winrate stood in for an unplayed map
			mapCol += "*"
		}
		fmt.Fprintf(w, "  %s\t%d\t%d\t%.2f\t%.0f\t%s\t%.0f\t%.1f\t%d\n",
			p.Nickname, p.Elo, p.SkillLevel, p.KD, p.Winrate*100, mapCol, p.HSPct*100, p.AvgKills, p.Matches)
	}
	w.Flush()
	fmt.Fprintln(r.out)
}

// LiveUpdate prints one emitted poll line
func (r *Renderer) LiveUpdate(u emitter.LiveUpdate) {
	side := ""
	if u.OurSide != "" {
		side = fmt.Sprintf(" [%s]", u.OurSide)
	}
	fmt.Fprintf(r.out, "Poll %d: %d-%d%s  %s %.1f%%  (fair odds %s, source %s)\n",
		u.Poll, u.OurRounds, u.EnemyRounds, side, r.bar(u.DynamicProb), u.DynamicProb*100, u.ImpliedOdds, u.Source)
}

// NoData prints the placeholder line for a poll with no usable score
func (r *Renderer) NoData(poll int) {
	fmt.Fprintf(r.out, "Poll %d: no score data yet\n", poll)
}

// MatchOver prints the terminal line
func (r *Renderer) MatchOver(m emitter.MatchOver) {
	fmt.Fprintf(r.out, "\nMatch over: %s wins %d-%d\n", m.Winner, m.OurRounds, m.EnemyRounds)
}

// Error prints a fatal diagnostic
func (r *Renderer) Error(err error) {
	fmt.Fprintf(r.out, "Error: %v\n", err)
}

// bar renders a fixed-width probability bar
func (r *Renderer) bar(p float64) string {
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	filled := int(p*float64(r.barWidth) + 0.5)
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", r.barWidth-filled) + "]"
}
