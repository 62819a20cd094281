package internal

import (
	"net/http"
	"studiosync/internal/controllers"
	"studiosync/internal/providers"
	"studiosync/internal/structures"
)

func InitRoutes(apiController *controllers.ApiController, conf *structures.Config) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	gated := func(h http.HandlerFunc) http.Handler {
		return providers.RequireBearer(conf, h)
	}

	routers.Get("/clients", http.HandlerFunc(apiController.ListClients))
	routers.Post("/clients", gated(apiController.CreateClient))
	routers.Put("/clients/{id}", gated(apiController.UpdateClient))
	routers.Delete("/clients/{id}", gated(apiController.DeleteClient))
	routers.Delete("/clients/bulk", gated(apiController.BulkDeleteClients))
	routers.Get("/clients/stats", http.HandlerFunc(apiController.GetStats))
	routers.Get("/clients/pulse", http.HandlerFunc(apiController.GetPulse))
	routers.Post("/clients/sync", gated(apiController.ForceStatsSync))
	routers.Post("/clients/pulse/sync", gated(apiController.ForcePulseSync))
	routers.Get("/admin/yt-quota", gated(apiController.GetQuotaStatus))
	return routers
}
