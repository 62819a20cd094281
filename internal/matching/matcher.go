package matching

import (
	"strings"
	"studiosync/internal/models"
)

// Match reconciles one registry record against the cycle's live stats. Tiers
// are evaluated in strict priority order and the first hit wins:
//
//  1. canonical channel id equality (case-insensitive)
//  2. normalized @handle equality (either registry field vs either live field)
//  3. display name equality or substring containment (last resort, known to
//     produce false positives on colliding names)
//
// Live records are scanned in input order, so the result is deterministic for
// a given input set. Two registry records may match the same live record;
// the registry is administrator-curated and small, so this is accepted.
func Match(rec models.RegistryRecord, live []models.LiveStatsRecord) (models.LiveStatsRecord, bool) {
	if rec.HasCanonicalID() {
		want := strings.ToLower(rec.ExternalID)
		for _, lv := range live {
			if strings.ToLower(lv.ChannelID) == want {
				return lv, true
			}
		}
	}

	recHandles := handleSet(rec.ExternalID, rec.Handle)
	if len(recHandles) > 0 {
		for _, lv := range live {
			for lh := range handleSet(lv.Handle) {
				if _, ok := recHandles[lh]; ok {
					return lv, true
				}
			}
		}
	}

	name := strings.ToLower(strings.TrimSpace(rec.Name))
	if name != "" {
		for _, lv := range live {
			title := strings.ToLower(strings.TrimSpace(lv.DisplayTitle))
			if title == "" {
				continue
			}
			if title == name || strings.Contains(title, name) || strings.Contains(name, title) {
				return lv, true
			}
		}
	}

	return models.LiveStatsRecord{}, false
}

// NormalizeHandle lower-cases a public handle and guarantees the "@" prefix.
// Canonical channel ids and empty values normalize to "".
func NormalizeHandle(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return ""
	}
	if strings.HasPrefix(s, "@") {
		return s
	}
	if strings.HasPrefix(s, strings.ToLower(models.CanonicalChannelPrefix)) {
		return ""
	}
	return "@" + s
}

func handleSet(values ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if h := NormalizeHandle(v); h != "" {
			set[h] = struct{}{}
		}
	}
	return set
}
