package emitter

// Event discriminators carried in the "type" field
const (
	TypeInitialAnalysis = "initial_analysis"
	TypeLiveUpdate      = "live_update"
	TypeMatchOver       = "match_over"
)

// PlayerLine is one player's metrics inside an analysis event
type PlayerLine struct {
	Nickname   string  `json:"nickname"`
	PlayerID   string  `json:"player_id"`
	Elo        int     `json:"elo"`
	SkillLevel int     `json:"skill_level"`
	KD         float64 `json:"kd"`
	Winrate    float64 `json:"winrate"`
	MapWinrate float64 `json:"map_winrate"`
	HSPct      float64 `json:"hs_pct"`
	AvgKills   float64 `json:"avg_kills"`
	Matches    int     `json:"matches_analyzed"`
	MapMatches int     `json:"map_matches"`
	Score      float64 `json:"score"`
}

// TeamAnalysis aggregates one faction inside an analysis event
type TeamAnalysis struct {
	FactionKey    string       `json:"faction_key"`
	Name          string       `json:"name"`
	AvgElo        float64      `json:"avg_elo"`
	Score         float64      `json:"score"`
	SampleQuality string       `json:"sample_quality"`
	Players       []PlayerLine `json:"players"`
}

// InitialAnalysis is the pre-match event emitted once after resolution
type InitialAnalysis struct {
	Type        string       `json:"type"`
	OK          bool         `json:"ok"`
	SessionID   string       `json:"session_id"`
	Nickname    string       `json:"nickname"`
	PlayerID    string       `json:"player_id"`
	MatchID     string       `json:"match_id"`
	MapName     string       `json:"map,omitempty"`
	RoundTarget int          `json:"round_target"`
	Our         TeamAnalysis `json:"our_team"`
	Enemy       TeamAnalysis `json:"enemy_team"`
	EloGap      float64      `json:"elo_gap"`
	BaseProb    float64      `json:"base_prob"`
	Favored     string       `json:"favored"`
	Confidence  string       `json:"confidence"`
}

// SampleQualityLabel returns the weaker of the two team sample labels
func (a InitialAnalysis) SampleQualityLabel() string {
	rank := map[string]int{"LOW": 0, "MEDIUM": 1, "HIGH": 2}
	if rank[a.Our.SampleQuality] <= rank[a.Enemy.SampleQuality] {
		return a.Our.SampleQuality
	}
	return a.Enemy.SampleQuality
}

// LiveUpdate carries one poll's score and probabilities
type LiveUpdate struct {
	Type        string  `json:"type"`
	SessionID   string  `json:"session_id"`
	MatchID     string  `json:"match_id"`
	Poll        int     `json:"poll"`
	OurRounds   int     `json:"our_rounds"`
	EnemyRounds int     `json:"enemy_rounds"`
	OurSide     string  `json:"our_side,omitempty"`
	EnemySide   string  `json:"enemy_side,omitempty"`
	Source      string  `json:"source"`
	BaseProb    float64 `json:"base_prob"`
	ScoreProb   float64 `json:"score_prob"`
	DynamicProb float64 `json:"dynamic_prob"`
	ImpliedOdds string  `json:"implied_odds"`
}

// MatchOver is the terminal event of a polling session
type MatchOver struct {
	Type         string `json:"type"`
	SessionID    string `json:"session_id"`
	MatchID      string `json:"match_id"`
	Winner       string `json:"winner"`
	WinnerIsOurs bool   `json:"winner_is_ours"`
	OurRounds    int    `json:"our_rounds"`
	EnemyRounds  int    `json:"enemy_rounds"`
	Polls        int    `json:"polls"`
}

// MatchResolved is the single event of the stand-alone resolver
type MatchResolved struct {
	OK       bool   `json:"ok"`
	Nickname string `json:"nickname"`
	PlayerID string `json:"player_id"`
	SteamID  string `json:"steam_id,omitempty"`
	MatchID  string `json:"match_id"`
	Status   string `json:"status,omitempty"`
	Method   string `json:"method"`
	RoomURL  string `json:"room_url"`
}

// ErrorEvent reports a fatal failure on the event stream
type ErrorEvent struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// NewErrorEvent builds the error shape from any error
func NewErrorEvent(err error) ErrorEvent {
	return ErrorEvent{OK: false, Error: err.Error()}
}
