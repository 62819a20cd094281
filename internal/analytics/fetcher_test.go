package analytics

import (
	"context"
	"errors"
	"studiosync/internal/models"
	"studiosync/internal/testutil"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scripted provider client
type fakeClient struct {
	channels map[string]models.LiveStatsRecord
	failIDs  map[string]error
	events   map[string][]models.ActivityEvent
	calls    []string
}

func (f *fakeClient) lookup(id string) (*models.LiveStatsRecord, error) {
	f.calls = append(f.calls, id)
	if err, ok := f.failIDs[id]; ok {
		return nil, err
	}
	if rec, ok := f.channels[id]; ok {
		return &rec, nil
	}
	return nil, ErrChannelNotFound
}

func (f *fakeClient) ChannelByID(_ context.Context, _, id string) (*models.LiveStatsRecord, error) {
	return f.lookup(id)
}

func (f *fakeClient) ChannelByHandle(_ context.Context, _, handle string) (*models.LiveStatsRecord, error) {
	return f.lookup(handle)
}

func (f *fakeClient) RecentActivity(_ context.Context, _, channelID string, _ int) ([]models.ActivityEvent, error) {
	f.calls = append(f.calls, channelID)
	if err, ok := f.failIDs[channelID]; ok {
		return nil, err
	}
	return f.events[channelID], nil
}

func newTestFetcher(client Client, keys ...string) *Fetcher {
	pool := NewKeyPool(poolConfig(keys...), &testutil.MockLogger{})
	return NewFetcher(pool, client, &testutil.MockLogger{})
}

func TestFetchBatch_PartialFailureIsolated(t *testing.T) {
	client := &fakeClient{
		channels: map[string]models.LiveStatsRecord{
			"UCgood": {ChannelID: "UCgood", DisplayTitle: "Good", Subscribers: 100},
		},
		failIDs: map[string]error{"UCbad": errors.New("connection reset")},
	}
	f := newTestFetcher(client, "AIzaSyOnlyKey0000001")

	res := f.FetchBatch(context.Background(), []string{"UCgood", "UCbad"})

	assert.False(t, res.QuotaExceeded)
	require.Contains(t, res.Stats, "UCgood")
	assert.NotContains(t, res.Stats, "UCbad")
	require.Len(t, res.Trace, 2)
	assert.Equal(t, models.TraceSuccess, res.Trace[0].Status)
	assert.Equal(t, int64(100), res.Trace[0].Count)
	assert.Equal(t, models.TraceError, res.Trace[1].Status)
	assert.Contains(t, res.Trace[1].Error, "connection reset")
}

func TestFetchBatch_QuotaStopsRemainderWithoutRotation(t *testing.T) {
	client := &fakeClient{
		channels: map[string]models.LiveStatsRecord{
			"UCa": {ChannelID: "UCa", Subscribers: 1},
			"UCc": {ChannelID: "UCc", Subscribers: 3},
		},
		failIDs: map[string]error{"UCb": ErrQuotaExceeded},
	}
	f := newTestFetcher(client, "AIzaSyFirstKey000001", "AIzaSySecondKey00002")

	res := f.FetchBatch(context.Background(), []string{"UCa", "UCb", "UCc"})

	assert.True(t, res.QuotaExceeded)
	assert.Contains(t, res.Stats, "UCa")
	// UCc is failed with a quota marker, not retried on the second key.
	assert.NotContains(t, res.Stats, "UCc")
	assert.Equal(t, []string{"UCa", "UCb"}, client.calls)
	require.Len(t, res.Trace, 3)
	assert.Equal(t, models.TraceError, res.Trace[2].Status)
	assert.Contains(t, res.Trace[2].Error, "quota")
}

func TestFetchBatch_NoKeysMeansQuotaExceeded(t *testing.T) {
	f := newTestFetcher(&fakeClient{})

	res := f.FetchBatch(context.Background(), []string{"UCa"})

	assert.True(t, res.QuotaExceeded)
	assert.Empty(t, res.Stats)
	require.Len(t, res.Trace, 1)
	assert.Equal(t, models.TraceError, res.Trace[0].Status)
}

func TestFetchBatch_DedupesIdentifiers(t *testing.T) {
	client := &fakeClient{
		channels: map[string]models.LiveStatsRecord{
			"UCa": {ChannelID: "UCa"},
		},
	}
	f := newTestFetcher(client, "AIzaSyOnlyKey0000001")

	res := f.FetchBatch(context.Background(), []string{"UCa", "UCa", " ", "UCa"})

	assert.Equal(t, []string{"UCa"}, client.calls)
	assert.Len(t, res.Trace, 1)
}

func TestFetchBatch_HandlesGoThroughHandleLookup(t *testing.T) {
	client := &fakeClient{
		channels: map[string]models.LiveStatsRecord{
			"@kamz": {ChannelID: "UCabc", Handle: "@kamz", Subscribers: 9},
		},
	}
	f := newTestFetcher(client, "AIzaSyOnlyKey0000001")

	res := f.FetchBatch(context.Background(), []string{"@kamz"})

	require.Contains(t, res.Stats, "@kamz")
	assert.Equal(t, "UCabc", res.Stats["@kamz"].ChannelID)
}

func TestFetchActivity_CollectsEventsPerChannel(t *testing.T) {
	client := &fakeClient{
		events: map[string][]models.ActivityEvent{
			"UCa": {{ID: "v1", ChannelID: "UCa"}, {ID: "v2", ChannelID: "UCa"}},
			"UCb": {{ID: "v3", ChannelID: "UCb"}},
		},
	}
	f := newTestFetcher(client, "AIzaSyOnlyKey0000001")

	res := f.FetchActivity(context.Background(), []string{"UCa", "UCb"}, 5)

	assert.False(t, res.QuotaExceeded)
	assert.Len(t, res.Events, 3)
	require.Len(t, res.Trace, 2)
	assert.Equal(t, int64(2), res.Trace[0].Count)
	assert.Equal(t, int64(1), res.Trace[1].Count)
}

func TestFetchActivity_QuotaStopsRemainder(t *testing.T) {
	client := &fakeClient{
		failIDs: map[string]error{"UCa": ErrQuotaExceeded},
		events:  map[string][]models.ActivityEvent{"UCb": {{ID: "v1"}}},
	}
	f := newTestFetcher(client, "AIzaSyOnlyKey0000001")

	res := f.FetchActivity(context.Background(), []string{"UCa", "UCb"}, 5)

	assert.True(t, res.QuotaExceeded)
	assert.Empty(t, res.Events)
	assert.Equal(t, []string{"UCa"}, client.calls)
}
