package matching

import (
	"studiosync/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch_CanonicalID(t *testing.T) {
	rec := models.RegistryRecord{ID: "k1", Name: "Kamz", ExternalID: "UCabc"}
	live := []models.LiveStatsRecord{
		{ChannelID: "UCxyz", DisplayTitle: "Unrelated"},
		{ChannelID: "UCabc", DisplayTitle: "Kamz Inkzone", Subscribers: 173445},
	}

	lv, ok := Match(rec, live)
	require.True(t, ok)
	assert.Equal(t, "UCabc", lv.ChannelID)
	assert.Equal(t, int64(173445), lv.Subscribers)
}

func TestMatch_CanonicalID_CaseInsensitive(t *testing.T) {
	rec := models.RegistryRecord{Name: "Kamz", ExternalID: "ucABC"}
	live := []models.LiveStatsRecord{{ChannelID: "UCabc", DisplayTitle: "Kamz"}}

	_, ok := Match(rec, live)
	assert.True(t, ok)
}

func TestMatch_CanonicalIDBeatsNameContainment(t *testing.T) {
	// A different live record whose title contains the registry name must not
	// steal the match from the exact id.
	rec := models.RegistryRecord{Name: "Kamz", ExternalID: "UCabc"}
	live := []models.LiveStatsRecord{
		{ChannelID: "UCother", DisplayTitle: "Kamz Fanpage"},
		{ChannelID: "UCabc", DisplayTitle: "Completely Different Title"},
	}

	lv, ok := Match(rec, live)
	require.True(t, ok)
	assert.Equal(t, "UCabc", lv.ChannelID)
}

func TestMatch_HandleEquality(t *testing.T) {
	rec := models.RegistryRecord{Name: "Nova", ExternalID: "@NovaPlays"}
	live := []models.LiveStatsRecord{
		{ChannelID: "UC1", Handle: "@someoneelse", DisplayTitle: "Else"},
		{ChannelID: "UC2", Handle: "@novaplays", DisplayTitle: "Nova Plays"},
	}

	lv, ok := Match(rec, live)
	require.True(t, ok)
	assert.Equal(t, "UC2", lv.ChannelID)
}

func TestMatch_SecondaryHandle(t *testing.T) {
	rec := models.RegistryRecord{Name: "Nova", ExternalID: "UCmissing", Handle: "NovaPlays"}
	live := []models.LiveStatsRecord{{ChannelID: "UC2", Handle: "@novaplays", DisplayTitle: "x"}}

	lv, ok := Match(rec, live)
	require.True(t, ok)
	assert.Equal(t, "UC2", lv.ChannelID)
}

func TestMatch_HandleNormalizedOnLiveSide(t *testing.T) {
	// Provider payloads sometimes carry the custom URL without the "@".
	rec := models.RegistryRecord{Name: "Nova", ExternalID: "@NovaPlays"}
	live := []models.LiveStatsRecord{{ChannelID: "UC2", Handle: "NovaPlays", DisplayTitle: "x"}}

	lv, ok := Match(rec, live)
	require.True(t, ok)
	assert.Equal(t, "UC2", lv.ChannelID)
}

func TestMatch_NameContainment_BothDirections(t *testing.T) {
	live := []models.LiveStatsRecord{{ChannelID: "UC9", DisplayTitle: "Kamz Inkzone"}}

	_, ok := Match(models.RegistryRecord{Name: "Kamz", ExternalID: "@nomatch"}, live)
	assert.True(t, ok, "registry name contained in live title")

	_, ok = Match(models.RegistryRecord{Name: "The Kamz Inkzone Channel", ExternalID: "@nomatch"}, live)
	assert.True(t, ok, "live title contained in registry name")
}

func TestMatch_NoMatch(t *testing.T) {
	rec := models.RegistryRecord{Name: "Ghost", ExternalID: "UCghost"}
	live := []models.LiveStatsRecord{{ChannelID: "UCabc", DisplayTitle: "Kamz"}}

	_, ok := Match(rec, live)
	assert.False(t, ok)
}

func TestMatch_EmptyLiveSet(t *testing.T) {
	rec := models.RegistryRecord{Name: "Ghost", ExternalID: "UCghost"}

	_, ok := Match(rec, nil)
	assert.False(t, ok)
}

func TestMatch_Idempotent(t *testing.T) {
	recs := []models.RegistryRecord{
		{ID: "a", Name: "Kamz", ExternalID: "UCabc"},
		{ID: "b", Name: "Nova", ExternalID: "@novaplays"},
		{ID: "c", Name: "Ghost", ExternalID: "UCmissing"},
	}
	live := []models.LiveStatsRecord{
		{ChannelID: "UCabc", Handle: "@kamz", DisplayTitle: "Kamz Inkzone"},
		{ChannelID: "UCnova", Handle: "@novaplays", DisplayTitle: "Nova Plays"},
	}

	type outcome struct {
		id string
		ok bool
	}
	run := func() []outcome {
		out := make([]outcome, 0, len(recs))
		for _, rec := range recs {
			lv, ok := Match(rec, live)
			out = append(out, outcome{id: lv.ChannelID, ok: ok})
		}
		return out
	}

	assert.Equal(t, run(), run())
}

func TestNormalizeHandle(t *testing.T) {
	assert.Equal(t, "@kamz", NormalizeHandle("@Kamz"))
	assert.Equal(t, "@kamz", NormalizeHandle("Kamz"))
	assert.Equal(t, "@kamz", NormalizeHandle("  @KAMZ  "))
	assert.Equal(t, "", NormalizeHandle(""))
	assert.Equal(t, "", NormalizeHandle("UCabc"), "canonical ids are not handles")
}
