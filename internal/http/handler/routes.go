package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"taskapi/internal/http/middleware"
	"taskapi/internal/registry"
	"taskapi/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay minimal; business logic lives in the service layer.
func RegisterRoutes(app *fiber.App, db *sql.DB, reg *registry.Registry, svc service.InvocationService, metrics *middleware.PrometheusMiddleware) {
	// Readiness: checks DB connectivity only
	app.Get("/health", HealthCheck(db))
	// Simple liveness probe
	app.Get("/healthz", LivenessProbe())

	// Component registry listing
	app.Get("/components", ListComponents(reg))

	// Invocations
	app.Post("/invocations", CreateInvocation(svc, metrics))
	app.Get("/invocations", ListInvocations(svc))
	app.Get("/invocations/:id", GetInvocation(svc))
	app.Get("/invocations/:id/archive", GetInvocationArchive(svc))
	app.Delete("/invocations/:id", DeleteInvocation(svc))
}
