package resolver

import (
	"sort"

	"github.com/cs2tools/live-winprob/internal/faceit"
	"github.com/cs2tools/live-winprob/internal/norm"
)

// Key orders tried when reading member payloads
var (
	memberIDKeys   = []string{"player_id", "playerId", "id", "user_id", "userId", "faceit_id", "faceitId"}
	memberNickKeys = []string{"nickname", "nick", "name", "game_player_name", "gamePlayerName"}
	rosterKeys     = []string{"roster", "players", "members", "lineup", "line_up"}
)

const rosterPreviewLimit = 5

// Member identifies one roster player
type Member struct {
	PlayerID string
	Nickname string
}

// Attribution names the tracked player's faction and its opponent
type Attribution struct {
	OurKey      string
	EnemyKey    string
	OurName     string
	EnemyName   string
	OurRoster   []Member
	EnemyRoster []Member
}

// Attribute locates the tracked player inside the match rosters, by id
// first and nickname second, and derives both factions from the hit
func Attribute(match faceit.Document, matchID string, player faceit.Player, inputNickname string) (Attribution, error) {
	teams := match.Sub("teams")

	keys := make([]string, 0, len(teams))
	for key := range teams {
		if teams.Sub(key) != nil {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	if len(keys) < 2 {
		return Attribution{}, faceit.NewFactionAttributionError(inputNickname, matchID, rosterPreviews(teams, keys))
	}

	ourKey := ""
	if player.ID != "" {
		for _, key := range keys {
			for _, member := range teamMembers(teams.Sub(key)) {
				if memberID(member) == player.ID {
					ourKey = key
					break
				}
			}
			if ourKey != "" {
				break
			}
		}
	}

	if ourKey == "" {
		wanted := map[string]struct{}{}
		for _, nick := range []string{inputNickname, player.Nickname} {
			if folded := norm.CanonicalNick(nick); folded != "" {
				wanted[folded] = struct{}{}
			}
		}
		for _, key := range keys {
			for _, member := range teamMembers(teams.Sub(key)) {
				if _, ok := wanted[norm.CanonicalNick(memberNick(member))]; ok {
					ourKey = key
					break
				}
			}
			if ourKey != "" {
				break
			}
		}
	}

	if ourKey == "" {
		return Attribution{}, faceit.NewFactionAttributionError(inputNickname, matchID, rosterPreviews(teams, keys))
	}

	enemyKey := ""
	for _, key := range keys {
		if key != ourKey {
			enemyKey = key
			break
		}
	}

	return Attribution{
		OurKey:      ourKey,
		EnemyKey:    enemyKey,
		OurName:     TeamName(teams.Sub(ourKey), ourKey),
		EnemyName:   TeamName(teams.Sub(enemyKey), enemyKey),
		OurRoster:   rosterOf(teams.Sub(ourKey)),
		EnemyRoster: rosterOf(teams.Sub(enemyKey)),
	}, nil
}

// TeamName returns the display name of a faction, falling back to its key
func TeamName(team faceit.Document, key string) string {
	if name := team.String("name", "team_name", "teamName"); name != "" {
		return name
	}
	return key
}

// MapName extracts the picked map from the match voting payload, trying
// the map vote first and the location vote as a fallback
func MapName(match faceit.Document) string {
	voting := match.Sub("voting")
	for _, key := range []string{"map", "location"} {
		vote := voting.Sub(key)
		if vote == nil {
			continue
		}
		if items := vote.List("pick"); len(items) > 0 {
			if first, ok := items[0].(string); ok && first != "" {
				return first
			}
		}
		if pick := vote.String("pick", "name"); pick != "" {
			return pick
		}
	}
	return ""
}

// teamMembers collects roster members from every container shape the
// API emits: lists of members, id-keyed maps, and the captain field.
// A map entry missing its own id inherits the map key.
func teamMembers(team faceit.Document) []faceit.Document {
	var members []faceit.Document

	for _, key := range rosterKeys {
		switch value := team[key].(type) {
		case []interface{}:
			for _, raw := range value {
				if member := faceit.AsDocument(raw); member != nil {
					members = append(members, member)
				}
			}
		case map[string]interface{}:
			ids := make([]string, 0, len(value))
			for id := range value {
				ids = append(ids, id)
			}
			sort.Strings(ids)

			for _, id := range ids {
				member := faceit.AsDocument(value[id])
				if member == nil {
					continue
				}
				if memberID(member) == "" {
					enriched := faceit.Document{"player_id": id}
					for k, v := range member {
						enriched[k] = v
					}
					member = enriched
				}
				members = append(members, member)
			}
		}
	}

	switch captain := team["captain"].(type) {
	case map[string]interface{}:
		members = append(members, faceit.Document(captain))
	case string:
		if captain != "" {
			members = append(members, faceit.Document{"player_id": captain})
		}
	}

	return members
}

func memberID(member faceit.Document) string {
	return member.String(memberIDKeys...)
}

func memberNick(member faceit.Document) string {
	return member.String(memberNickKeys...)
}

// rosterOf flattens a faction into member entries, dropping duplicates
// by player id
func rosterOf(team faceit.Document) []Member {
	seen := map[string]struct{}{}
	var roster []Member
	for _, member := range teamMembers(team) {
		id := memberID(member)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		roster = append(roster, Member{PlayerID: id, Nickname: memberNick(member)})
	}
	return roster
}

// rosterPreviews builds the short per-faction member listing used in
// attribution failure diagnostics
func rosterPreviews(teams faceit.Document, keys []string) map[string][]string {
	previews := make(map[string][]string, len(keys))
	for _, key := range keys {
		var labels []string
		seen := map[string]struct{}{}
		for _, member := range teamMembers(teams.Sub(key)) {
			label := memberNick(member)
			if label == "" {
				label = memberID(member)
			}
			if label == "" {
				continue
			}
			if _, dup := seen[label]; dup {
				continue
			}
			seen[label] = struct{}{}
			labels = append(labels, label)
			if len(labels) >= rosterPreviewLimit {
				break
			}
		}
		previews[key] = labels
	}
	return previews
}
