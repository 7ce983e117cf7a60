package handler

import (
	"database/sql"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"busgallery/docs"
	"busgallery/internal/http/middleware"
	"busgallery/internal/service"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	DB      *sql.DB
	Ingest  service.IngestService
	Catalog service.CatalogService
	Upload  UploadOptions
	// APIKey guards write routes; empty disables the check.
	APIKey string
	// Gatherer backs /metrics; nil leaves the route out.
	Gatherer prometheus.Gatherer
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", LivenessProbe())

	if d.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}
		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}
		return swagger.HandlerDefault(c)
	})

	api := app.Group("/api", middleware.APIKey(d.APIKey))

	// All methods reach the handler so non-POST gets the endpoint's own 405 body.
	api.All("/uploadBusImages", UploadBusImages(d.Ingest, d.Upload))

	api.Get("/getBuses", GetBuses(d.Catalog))
	api.Get("/categories", ListCategories(d.Catalog))
	api.Get("/categories/:id/models", ListModels(d.Catalog))
	api.Get("/models/:id/buses", ListBuses(d.Catalog))
	api.Get("/buses/:id/images", ListBusImages(d.Catalog))
	api.Get("/assets/*", DownloadAsset(d.Catalog))
}
