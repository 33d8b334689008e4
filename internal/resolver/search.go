package resolver

import (
	"sort"
	"strings"

	"github.com/cs2tools/live-winprob/internal/faceit"
	"github.com/cs2tools/live-winprob/internal/norm"
)

// Match states that count as active, lowercased for comparison
var activeStatuses = map[string]struct{}{
	"ongoing":          {},
	"in_progress":      {},
	"started":          {},
	"ready":            {},
	"configuring":      {},
	"live":             {},
	"voting":           {},
	"captains_picking": {},
}

// statePriority orders the groupByState buckets from most to least
// likely to hold the match currently being played
var statePriority = []string{
	"ONGOING",
	"READY",
	"CONFIGURING",
	"VOTING",
	"LIVE",
	"STARTED",
	"IN_PROGRESS",
}

// Profile keys that may carry a match id directly
var deepSearchKeys = map[string]struct{}{
	"active_match_id":  {},
	"ongoing_match_id": {},
	"current_match_id": {},
	"match_id":         {},
	"faceit_match_id":  {},
}

// IsActiveStatus reports whether a match status marks a running match
func IsActiveStatus(status string) bool {
	_, ok := activeStatuses[strings.ToLower(strings.TrimSpace(status))]
	return ok
}

// activeMatchID scans a profile payload for a plausible match id, first
// through the known direct locations, then through a bounded deep search.
func activeMatchID(doc faceit.Document, game string, maxDepth int) string {
	if doc == nil {
		return ""
	}

	direct := []string{
		doc.String("active_match_id"),
		doc.String("ongoing_match_id"),
		doc.String("match_id"),
		doc.Sub("games").Sub(game).String("active_match_id"),
		doc.Sub("games").Sub(game).String("match_id"),
	}
	for _, candidate := range direct {
		if norm.PlausibleMatchID(candidate) {
			return candidate
		}
	}

	return deepSearchMatchID(doc, maxDepth)
}

type searchNode struct {
	value interface{}
	depth int
}

// deepSearchMatchID walks nested payloads breadth first with an explicit
// worklist. Keys are visited in sorted order so the result is stable.
func deepSearchMatchID(doc faceit.Document, maxDepth int) string {
	work := []searchNode{{value: map[string]interface{}(doc), depth: 0}}

	for len(work) > 0 {
		node := work[0]
		work = work[1:]

		switch value := node.value.(type) {
		case map[string]interface{}:
			keys := make([]string, 0, len(value))
			for key := range value {
				keys = append(keys, key)
			}
			sort.Strings(keys)

			for _, key := range keys {
				child := value[key]
				if _, match := deepSearchKeys[strings.ToLower(key)]; match {
					if s, ok := child.(string); ok {
						if candidate := strings.TrimSpace(s); norm.PlausibleMatchID(candidate) {
							return candidate
						}
					}
				}
				if node.depth < maxDepth {
					work = append(work, searchNode{value: child, depth: node.depth + 1})
				}
			}
		case []interface{}:
			if node.depth < maxDepth {
				for _, child := range value {
					work = append(work, searchNode{value: child, depth: node.depth + 1})
				}
			}
		}
	}
	return ""
}

// matchIDFromStateGroups extracts a match id from a groupByState payload,
// preferring the priority states and falling back to any non-empty group
func matchIDFromStateGroups(doc faceit.Document) string {
	payload := doc.Sub("payload")
	if payload == nil {
		return ""
	}

	for _, state := range statePriority {
		if id := matchIDFromGroup(payload.List(state)); id != "" {
			return id
		}
	}

	states := make([]string, 0, len(payload))
	for state := range payload {
		states = append(states, state)
	}
	sort.Strings(states)

	for _, state := range states {
		if id := matchIDFromGroup(payload.List(state)); id != "" {
			return id
		}
	}
	return ""
}

func matchIDFromGroup(items []interface{}) string {
	for _, item := range items {
		entry := faceit.AsDocument(item)
		if entry == nil {
			continue
		}
		if id := entry.String("id", "match_id"); norm.PlausibleMatchID(id) {
			return id
		}
	}
	return ""
}
