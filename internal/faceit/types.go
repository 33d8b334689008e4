package faceit

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Document is a decoded FACEIT payload. Responses vary between API
// surfaces and casing conventions, so readers coerce leniently and
// treat absent or malformed fields as zero values.
type Document map[string]interface{}

// AsDocument converts a decoded JSON value to a Document
func AsDocument(v interface{}) Document {
	if doc, ok := v.(map[string]interface{}); ok {
		return Document(doc)
	}
	return nil
}

// Has reports whether the key is present
func (d Document) Has(key string) bool {
	_, ok := d[key]
	return ok
}

// Sub returns the nested object under key, or nil
func (d Document) Sub(key string) Document {
	if d == nil {
		return nil
	}
	return AsDocument(d[key])
}

// List returns the array under key, or nil
func (d Document) List(key string) []interface{} {
	if d == nil {
		return nil
	}
	if items, ok := d[key].([]interface{}); ok {
		return items
	}
	return nil
}

// String returns the first non-empty scalar across keys, coerced to a
// trimmed string
func (d Document) String(keys ...string) string {
	if d == nil {
		return ""
	}
	for _, key := range keys {
		if s := coerceString(d[key]); s != "" {
			return s
		}
	}
	return ""
}

// Int returns the first numeric value across keys
func (d Document) Int(keys ...string) (int, bool) {
	if d == nil {
		return 0, false
	}
	for _, key := range keys {
		raw, ok := d[key]
		if !ok {
			continue
		}
		if n, ok := coerceInt(raw); ok {
			return n, true
		}
	}
	return 0, false
}

// Float returns the first float value across keys
func (d Document) Float(keys ...string) (float64, bool) {
	if d == nil {
		return 0, false
	}
	for _, key := range keys {
		raw, ok := d[key]
		if !ok {
			continue
		}
		if f, ok := coerceFloat(raw); ok {
			return f, true
		}
	}
	return 0, false
}

func coerceString(raw interface{}) string {
	switch v := raw.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

func coerceInt(raw interface{}) (int, bool) {
	switch v := raw.(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n), true
		}
		if f, err := v.Float64(); err == nil {
			return int(f), true
		}
		return 0, false
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n, true
		}
		return 0, false
	default:
		return 0, false
	}
}

func coerceFloat(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f, true
		}
		return 0, false
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f, true
		}
		return 0, false
	default:
		return 0, false
	}
}

// Player is the subset of a FACEIT profile the estimator works with.
// Raw keeps the full payload for deep match id discovery.
type Player struct {
	ID         string
	Nickname   string
	Elo        int
	SkillLevel int
	Raw        Document
}

// Default profile values for players whose game entry carries no data
const (
	DefaultElo        = 1000
	DefaultSkillLevel = 5
)

// PlayerFromDocument builds a Player from a profile payload
func PlayerFromDocument(doc Document, game string) Player {
	player := Player{
		ID:         doc.String("player_id", "playerId", "id", "guid"),
		Nickname:   doc.String("nickname", "nick", "name"),
		Elo:        DefaultElo,
		SkillLevel: DefaultSkillLevel,
		Raw:        doc,
	}

	entry := doc.Sub("games").Sub(game)
	if elo, ok := entry.Int("faceit_elo", "faceitElo", "elo"); ok && elo > 0 {
		player.Elo = elo
		player.SkillLevel = SkillLevelForElo(elo)
	}
	if level, ok := entry.Int("skill_level", "skillLevel", "level"); ok && level > 0 {
		player.SkillLevel = level
	}
	return player
}

// Elo floors of skill levels 1 through 10
var skillLevelThresholds = []int{500, 750, 900, 1050, 1200, 1350, 1530, 1750, 2000, 2250}

// SkillLevelForElo derives the skill level a profile would show for an
// elo, used when the payload carries no explicit level
func SkillLevelForElo(elo int) int {
	level := 1
	for i, floor := range skillLevelThresholds {
		if elo >= floor {
			level = i + 1
		}
	}
	return level
}

// SteamID reads the player's Steam id from the profile, trying the
// top-level field, the platforms map, and the per-game player id
func (p Player) SteamID(game string) string {
	if id := p.Raw.String("steam_id_64", "steamId64"); id != "" {
		return id
	}
	if id := p.Raw.Sub("platforms").String("steam"); id != "" {
		return id
	}
	return p.Raw.Sub("games").Sub(game).String("game_player_id", "gamePlayerId")
}
