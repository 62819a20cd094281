package controllers

import (
	"fmt"
	"net/http"
	"studiosync/internal/registry"
	"studiosync/internal/services"
	"time"

	json "github.com/goccy/go-json"
)

type HealthController struct {
	service   services.SyncServiceInterface
	registry  registry.StoreInterface
	startTime time.Time
}

type healthResponse struct {
	Status        string  `json:"status"`
	Uptime        string  `json:"uptime"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Clients       int     `json:"clients"`
	StatsState    string  `json:"stats_state"`
	PulseState    string  `json:"pulse_state"`
	LastFetchedAt int64   `json:"last_fetched_at"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	stats := hc.service.Stats()
	pulse := hc.service.Pulse(false)

	uptime := time.Since(hc.startTime)
	resp := healthResponse{
		Status:        "ok",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
		Clients:       hc.registry.Count(),
		StatsState:    string(stats.State),
		PulseState:    string(pulse.State),
		LastFetchedAt: stats.Snapshot.FetchedAt,
	}

	gson, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(service services.SyncServiceInterface, store registry.StoreInterface) *HealthController {
	return &HealthController{
		service:   service,
		registry:  store,
		startTime: time.Now(),
	}
}
