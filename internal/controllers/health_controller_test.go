package controllers

import (
	"net/http"
	"net/http/httptest"
	"studiosync/internal/models"
	"studiosync/internal/services"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	svc := &stubService{
		statsView: services.StatsView{
			Snapshot: models.StatsSnapshot{FetchedAt: 1740830400000},
			State:    services.StateWarm,
		},
		pulseView: services.PulseView{State: services.StateCold},
	}
	reg := &stubRegistry{records: []models.RegistryRecord{
		{ID: "k1", Name: "Kamz", ExternalID: "UCabc"},
	}}
	hc := NewHealthController(svc, reg)

	rec := httptest.NewRecorder()
	hc.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Clients)
	assert.Equal(t, "warm", resp.StatsState)
	assert.Equal(t, "cold", resp.PulseState)
	assert.Equal(t, int64(1740830400000), resp.LastFetchedAt)
	assert.GreaterOrEqual(t, resp.UptimeSeconds, float64(0))
}

func TestHealth_RejectsNonGet(t *testing.T) {
	hc := NewHealthController(&stubService{}, &stubRegistry{})

	rec := httptest.NewRecorder()
	hc.Health(rec, httptest.NewRequest(http.MethodPost, "/health", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0h0m42s", formatDuration(42*time.Second))
	assert.Equal(t, "1h2m3s", formatDuration(time.Hour+2*time.Minute+3*time.Second))
	assert.Equal(t, "25h0m1s", formatDuration(25*time.Hour+time.Second))
}
