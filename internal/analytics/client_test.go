package analytics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"studiosync/internal/structures"
	"studiosync/internal/testutil"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(baseURL string) Client {
	conf := &structures.Config{
		Provider: structures.ProviderConfig{
			BaseURL:       baseURL,
			RatePerSecond: 1000,
			Burst:         1000,
		},
	}
	return NewHTTPClient(conf, &testutil.MockLogger{})
}

func TestChannelByID_DecodesStringStatistics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/channels", r.URL.Path)
		assert.Equal(t, "UCabc", r.URL.Query().Get("id"))
		assert.Equal(t, "testkey", r.URL.Query().Get("key"))
		assert.Equal(t, "snippet,statistics", r.URL.Query().Get("part"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"items": [{
				"id": "UCabc",
				"snippet": {
					"title": "Kamz Inkzone",
					"customUrl": "@kamzinkzone",
					"thumbnails": {"default": {"url": "https://img.example/logo.png"}}
				},
				"statistics": {
					"subscriberCount": "173445",
					"viewCount": "8200154",
					"videoCount": "321"
				}
			}]
		}`))
	}))
	defer srv.Close()

	rec, err := testClient(srv.URL).ChannelByID(context.Background(), "testkey", "UCabc")
	require.NoError(t, err)
	assert.Equal(t, "UCabc", rec.ChannelID)
	assert.Equal(t, "@kamzinkzone", rec.Handle)
	assert.Equal(t, "Kamz Inkzone", rec.DisplayTitle)
	assert.Equal(t, "https://img.example/logo.png", rec.LogoURL)
	assert.Equal(t, int64(173445), rec.Subscribers)
	assert.Equal(t, int64(8200154), rec.Views)
	assert.Equal(t, int64(321), rec.Uploads)
}

func TestChannelByHandle_UsesForHandleParam(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "@kamz", r.URL.Query().Get("forHandle"))
		_, _ = w.Write([]byte(`{"items":[{"id":"UCabc","snippet":{"title":"Kamz"},"statistics":{"subscriberCount":"5"}}]}`))
	}))
	defer srv.Close()

	rec, err := testClient(srv.URL).ChannelByHandle(context.Background(), "k", "@kamz")
	require.NoError(t, err)
	assert.Equal(t, int64(5), rec.Subscribers)
}

func TestChannel_EmptyItemsIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).ChannelByID(context.Background(), "k", "UCnope")
	assert.ErrorIs(t, err, ErrChannelNotFound)
}

func TestChannel_Forbidden403IsQuota(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"errors":[{"reason":"quotaExceeded"}]}}`, http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).ChannelByID(context.Background(), "k", "UCabc")
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestChannel_ServerErrorIsGenericError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).ChannelByID(context.Background(), "k", "UCabc")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrQuotaExceeded)
}

func TestRecentActivity_DecodesAndFlagsLive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "UCabc", r.URL.Query().Get("channelId"))
		assert.Equal(t, "date", r.URL.Query().Get("order"))
		assert.Equal(t, "3", r.URL.Query().Get("maxResults"))

		_, _ = w.Write([]byte(`{
			"items": [
				{
					"id": {"videoId": "vid1"},
					"snippet": {
						"channelId": "UCabc",
						"title": "Fresh Upload",
						"publishedAt": "2025-03-01T12:00:00Z",
						"liveBroadcastContent": "none",
						"thumbnails": {"medium": {"url": "https://img.example/t1.jpg"}}
					}
				},
				{
					"id": {"videoId": "vid2"},
					"snippet": {
						"channelId": "UCabc",
						"title": "Live Now",
						"publishedAt": "2025-03-01T13:00:00Z",
						"liveBroadcastContent": "live"
					}
				},
				{"id": {}, "snippet": {"title": "playlist entry, skipped"}}
			]
		}`))
	}))
	defer srv.Close()

	events, err := testClient(srv.URL).RecentActivity(context.Background(), "k", "UCabc", 3)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "vid1", events[0].ID)
	assert.Equal(t, "VIDEO", events[0].Type)
	assert.False(t, events[0].IsLive)
	assert.Equal(t, "https://www.youtube.com/watch?v=vid1", events[0].URL)
	assert.Equal(t, int64(1740830400000), events[0].Timestamp)

	assert.Equal(t, "LIVE", events[1].Type)
	assert.True(t, events[1].IsLive)
}
