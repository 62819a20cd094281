package controllers

import (
	"context"
	"errors"
	"net/http"
	"studiosync/internal/analytics"
	"studiosync/internal/models"
	"studiosync/internal/providers"
	"studiosync/internal/registry"
	"studiosync/internal/services"

	json "github.com/goccy/go-json"
)

const maxRequestBodySize = 1 << 20 // 1 MB

const (
	cacheKeyClients    = "clients"
	cacheKeyStats      = "stats"
	cacheKeyPulse      = "pulse"
	cacheKeyPulseDebug = "pulse:debug"
)

type ApiController struct {
	logger   providers.Logger
	service  services.SyncServiceInterface
	registry registry.StoreInterface
	pool     *analytics.KeyPool
	cache    providers.CacheProviderInterface
}

func NewApiController(logger providers.Logger, service services.SyncServiceInterface, store registry.StoreInterface, pool *analytics.KeyPool, cache providers.CacheProviderInterface) *ApiController {
	return &ApiController{
		logger:   logger,
		service:  service,
		registry: store,
		pool:     pool,
		cache:    cache,
	}
}

type clientsResponse struct {
	Clients []models.RegistryRecord `json:"clients"`
}

type statsResponse struct {
	Stats         []models.EnrichedClient `json:"stats"`
	FetchedAt     int64                   `json:"fetchedAt"`
	State         services.SyncState      `json:"state"`
	QuotaExceeded bool                    `json:"quotaExceeded"`
}

type pulseDebug struct {
	Trace      []models.TraceEntry `json:"trace"`
	KeyPresent bool                `json:"keyPresent"`
	KeyCount   int                 `json:"keyCount"`
	KeyValid   bool                `json:"keyValid"`
}

type pulseResponse struct {
	Activities    []models.ActivityEvent        `json:"activities"`
	Meta          map[string]models.ChannelMeta `json:"meta"`
	Ts            int64                         `json:"ts"`
	State         services.SyncState            `json:"state"`
	QuotaExceeded bool                          `json:"quotaExceeded"`
	Debug         *pulseDebug                   `json:"debug,omitempty"`
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		writeRawJSON(w, http.StatusOK, data)
		return
	}

	result, err := compute()
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(cacheKey, gson)
	writeRawJSON(w, http.StatusOK, gson)
}

func writeRawJSON(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeRawJSON(w, status, gson)
}

func (ac *ApiController) ListClients(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, cacheKeyClients, func() (any, error) {
		return clientsResponse{Clients: ac.registry.List()}, nil
	})
}

func (ac *ApiController) CreateClient(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var rec models.RegistryRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	created, err := ac.registry.Create(rec)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ac.cache.Del(cacheKeyClients)
	ac.logger.Infof(providers.TypePost, "Client created: %s (%s)", created.Name, created.ID)
	writeJSON(w, http.StatusCreated, created)
}

func (ac *ApiController) UpdateClient(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	id := r.PathValue("id")

	var rec models.RegistryRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	updated, err := ac.registry.Update(id, rec)
	if errors.Is(err, registry.ErrNotFound) {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ac.cache.Del(cacheKeyClients)
	writeJSON(w, http.StatusOK, updated)
}

func (ac *ApiController) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	err := ac.registry.Delete(id)
	if errors.Is(err, registry.ErrNotFound) {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Del(cacheKeyClients)
	w.WriteHeader(http.StatusNoContent)
}

func (ac *ApiController) BulkDeleteClients(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload struct {
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	deleted := ac.registry.DeleteBulk(payload.IDs)
	ac.cache.Del(cacheKeyClients)
	writeJSON(w, http.StatusOK, map[string]int{"deleted": deleted})
}

func (ac *ApiController) GetStats(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, cacheKeyStats, func() (any, error) {
		view := ac.service.Stats()
		stats := view.Snapshot.Clients
		if stats == nil {
			stats = []models.EnrichedClient{}
		}
		return statsResponse{
			Stats:         stats,
			FetchedAt:     view.Snapshot.FetchedAt,
			State:         view.State,
			QuotaExceeded: view.QuotaExceeded,
		}, nil
	})
}

func (ac *ApiController) GetPulse(w http.ResponseWriter, r *http.Request) {
	debug := r.URL.Query().Get("debug") == "1"
	cacheKey := cacheKeyPulse
	if debug {
		cacheKey = cacheKeyPulseDebug
	}

	ac.serveFromCacheOrCompute(w, cacheKey, func() (any, error) {
		view := ac.service.Pulse(debug)
		resp := pulseResponse{
			Activities:    view.Snapshot.Activities,
			Meta:          view.Snapshot.Meta,
			Ts:            view.Snapshot.Ts,
			State:         view.State,
			QuotaExceeded: view.QuotaExceeded,
		}
		if resp.Activities == nil {
			resp.Activities = []models.ActivityEvent{}
		}
		if debug {
			active, _ := ac.pool.CountByStatus()
			resp.Debug = &pulseDebug{
				Trace:      view.Snapshot.Trace,
				KeyPresent: ac.pool.Size() > 0,
				KeyCount:   ac.pool.Size(),
				KeyValid:   active > 0,
			}
		}
		return resp, nil
	})
}

// ForceStatsSync runs one registry cycle immediately. The service's in-flight
// latch makes this idempotent with a scheduled cycle already running.
func (ac *ApiController) ForceStatsSync(w http.ResponseWriter, r *http.Request) {
	if err := ac.service.SyncStats(context.Background()); err != nil {
		ac.logger.Errorf(providers.TypeSync, "Forced stats cycle failed: %s", err)
	}
	ac.cache.Del(cacheKeyStats)

	view := ac.service.Stats()
	writeJSON(w, http.StatusOK, map[string]any{
		"state":         view.State,
		"fetchedAt":     view.Snapshot.FetchedAt,
		"quotaExceeded": view.QuotaExceeded,
	})
}

func (ac *ApiController) ForcePulseSync(w http.ResponseWriter, r *http.Request) {
	if err := ac.service.SyncPulse(context.Background()); err != nil {
		ac.logger.Errorf(providers.TypeSync, "Forced pulse cycle failed: %s", err)
	}
	ac.cache.Del(cacheKeyPulse)
	ac.cache.Del(cacheKeyPulseDebug)

	view := ac.service.Pulse(false)
	writeJSON(w, http.StatusOK, map[string]any{
		"state":         view.State,
		"ts":            view.Snapshot.Ts,
		"quotaExceeded": view.QuotaExceeded,
	})
}

func (ac *ApiController) GetQuotaStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"keys": ac.pool.ListStatus(),
	})
}
