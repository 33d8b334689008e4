package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cs2tools/live-winprob/internal/faceit"
)

func rosterList(members ...map[string]interface{}) []interface{} {
	list := make([]interface{}, 0, len(members))
	for _, m := range members {
		list = append(list, m)
	}
	return list
}

func twoFactionMatch() faceit.Document {
	return faceit.Document{
		"match_id": fixtureMatchID,
		"teams": map[string]interface{}{
			"faction1": map[string]interface{}{
				"name": "Team Spirit",
				"roster": rosterList(
					map[string]interface{}{"player_id": "p-donk", "nickname": "donk"},
					map[string]interface{}{"player_id": "p-sh1ro", "nickname": "sh1ro"},
				),
			},
			"faction2": map[string]interface{}{
				"name": "NAVI",
				"roster": rosterList(
					map[string]interface{}{"player_id": "p-b1t", "nickname": "b1t"},
					map[string]interface{}{"player_id": "p-jl", "nickname": "jL"},
				),
			},
		},
	}
}

func TestAttributeByID(t *testing.T) {
	match := twoFactionMatch()

	attr, err := Attribute(match, fixtureMatchID, faceit.Player{ID: "p-jl", Nickname: "jL"}, "jL")
	require.NoError(t, err)

	assert.Equal(t, "faction2", attr.OurKey)
	assert.Equal(t, "faction1", attr.EnemyKey)
	assert.Equal(t, "NAVI", attr.OurName)
	assert.Equal(t, "Team Spirit", attr.EnemyName)
	require.Len(t, attr.OurRoster, 2)
	assert.Equal(t, "b1t", attr.OurRoster[0].Nickname)
}

func TestAttributeByNickname(t *testing.T) {
	match := twoFactionMatch()

	// no id hit, nickname folding ignores case and whitespace
	attr, err := Attribute(match, fixtureMatchID, faceit.Player{ID: "p-unknown", Nickname: "other"}, "Do Nk")
	require.NoError(t, err)
	assert.Equal(t, "faction1", attr.OurKey)
}

func TestAttributeResolvedNicknameCounts(t *testing.T) {
	match := twoFactionMatch()

	attr, err := Attribute(match, fixtureMatchID, faceit.Player{ID: "p-unknown", Nickname: "SH1RO"}, "someone-else")
	require.NoError(t, err)
	assert.Equal(t, "faction1", attr.OurKey)
}

func TestAttributeIDBeatsNickname(t *testing.T) {
	match := twoFactionMatch()

	// the id pass runs across every faction before nicknames are tried
	attr, err := Attribute(match, fixtureMatchID, faceit.Player{ID: "p-b1t", Nickname: "donk"}, "donk")
	require.NoError(t, err)
	assert.Equal(t, "faction2", attr.OurKey)
}

func TestAttributeDictRosterInheritsKey(t *testing.T) {
	match := faceit.Document{
		"teams": map[string]interface{}{
			"faction1": map[string]interface{}{
				"players": map[string]interface{}{
					"p-anon": map[string]interface{}{"nickname": "anon"},
				},
			},
			"faction2": map[string]interface{}{
				"roster": rosterList(map[string]interface{}{"player_id": "p-x", "nickname": "x"}),
			},
		},
	}

	attr, err := Attribute(match, fixtureMatchID, faceit.Player{ID: "p-anon"}, "anon")
	require.NoError(t, err)
	assert.Equal(t, "faction1", attr.OurKey)
	require.Len(t, attr.OurRoster, 1)
	assert.Equal(t, "p-anon", attr.OurRoster[0].PlayerID)
}

func TestAttributeCaptainOnly(t *testing.T) {
	match := faceit.Document{
		"teams": map[string]interface{}{
			"faction1": map[string]interface{}{"captain": "p-cap"},
			"faction2": map[string]interface{}{
				"captain": map[string]interface{}{"player_id": "p-other", "nickname": "other"},
			},
		},
	}

	attr, err := Attribute(match, fixtureMatchID, faceit.Player{ID: "p-cap"}, "cap")
	require.NoError(t, err)
	assert.Equal(t, "faction1", attr.OurKey)
}

func TestAttributeMissingPlayer(t *testing.T) {
	match := twoFactionMatch()

	_, err := Attribute(match, fixtureMatchID, faceit.Player{ID: "p-nobody", Nickname: "nobody"}, "nobody")
	require.Error(t, err)

	var attrErr *faceit.FactionAttributionError
	require.ErrorAs(t, err, &attrErr)
	assert.Equal(t, fixtureMatchID, attrErr.MatchID)
	assert.ElementsMatch(t, []string{"donk", "sh1ro"}, attrErr.Rosters["faction1"])
	assert.ElementsMatch(t, []string{"b1t", "jL"}, attrErr.Rosters["faction2"])
}

func TestAttributePreviewsAreBounded(t *testing.T) {
	big := make([]interface{}, 0, 8)
	for _, nick := range []string{"a", "b", "c", "d", "e", "f", "a", "g"} {
		big = append(big, map[string]interface{}{"player_id": "p-" + nick, "nickname": nick})
	}
	match := faceit.Document{
		"teams": map[string]interface{}{
			"faction1": map[string]interface{}{"roster": big},
			"faction2": map[string]interface{}{"roster": rosterList()},
		},
	}

	_, err := Attribute(match, fixtureMatchID, faceit.Player{ID: "p-none"}, "none")
	var attrErr *faceit.FactionAttributionError
	require.ErrorAs(t, err, &attrErr)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, attrErr.Rosters["faction1"], "previews are deduped and capped at five")
}

func TestAttributeNeedsTwoFactions(t *testing.T) {
	match := faceit.Document{
		"teams": map[string]interface{}{
			"faction1": map[string]interface{}{"roster": rosterList(
				map[string]interface{}{"player_id": "p-donk", "nickname": "donk"},
				map[string]interface{}{"player_id": "p-sh1ro", "nickname": "sh1ro"},
			)},
		},
	}

	_, err := Attribute(match, fixtureMatchID, faceit.Player{ID: "p"}, "p")
	require.Error(t, err)

	var attrErr *faceit.FactionAttributionError
	require.ErrorAs(t, err, &attrErr, "a malformed faction layout is an attribution failure")
	assert.Equal(t, fixtureMatchID, attrErr.MatchID)
	assert.ElementsMatch(t, []string{"donk", "sh1ro"}, attrErr.Rosters["faction1"])
}

func TestTeamNameFallsBackToKey(t *testing.T) {
	assert.Equal(t, "faction2", TeamName(faceit.Document{}, "faction2"))
	assert.Equal(t, "NAVI", TeamName(faceit.Document{"name": "NAVI"}, "faction2"))
}

func TestMapName(t *testing.T) {
	match := faceit.Document{
		"voting": map[string]interface{}{
			"map": map[string]interface{}{
				"pick": []interface{}{"de_mirage", "de_nuke"},
			},
		},
	}
	assert.Equal(t, "de_mirage", MapName(match))

	scalar := faceit.Document{
		"voting": map[string]interface{}{
			"map": map[string]interface{}{"pick": "de_inferno"},
		},
	}
	assert.Equal(t, "de_inferno", MapName(scalar))

	assert.Empty(t, MapName(faceit.Document{}))
}
